package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"masjid/internal/cache"
	applog "masjid/internal/log"
	"masjid/internal/middleware/ratelimit"
	"masjid/internal/middleware/security"
	"masjid/internal/middleware/trace"
	"masjid/internal/services"
)

const (
	readyTimeout         = 2 * time.Second
	cacheCleanupInterval = time.Minute
)

// Options carries the server's collaborators.
type Options struct {
	Records *services.RecordService
	Reports *services.ReportService
	// Ready probes the record backend for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
	// Caches are expired in the background while the server runs.
	Caches *cache.Manager
	// RequestsPerMinute limits POST requests per client.
	RequestsPerMinute int
	Logger            *applog.Logger
}

// Server is the back-office API: record collections, the dashboard and
// report downloads.
type Server struct {
	http.Server

	records *services.RecordService
	reports *services.ReportService
	ready   func(ctx context.Context) error
	logger  *applog.Logger
	events  *applog.StructuredLogger

	caches       *cache.Manager
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	clientIP     *security.ClientIP
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Background cache expiry starts immediately and stops on
// Shutdown.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	caches := opts.Caches
	if caches == nil {
		caches = cache.NewManager(logger)
	}

	s := &Server{
		records:  opts.Records,
		reports:  opts.Reports,
		ready:    opts.Ready,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		events:   applog.NewStructuredLogger(logger),
		caches:   caches,
		clientIP: security.NewClientIP(),
	}
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: opts.RequestsPerMinute,
		Logger:            logger,
	})
	s.tracer = trace.NewMiddleware(logger, s.clientIP.Extract)

	mux := http.NewServeMux()
	limited := s.limiter.Middleware(s.clientIP.Extract, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/donors", listHandler(s, pickDonors))
	mux.Handle("POST /api/donors", limited(createHandler(s, s.createDonor)))
	mux.HandleFunc("GET /api/donations", listHandler(s, pickDonations))
	mux.Handle("POST /api/donations", limited(createHandler(s, s.createDonation)))
	mux.HandleFunc("GET /api/expenses", listHandler(s, pickExpenses))
	mux.Handle("POST /api/expenses", limited(createHandler(s, s.createExpense)))
	mux.HandleFunc("GET /api/projects", listHandler(s, pickProjects))
	mux.Handle("POST /api/projects", limited(createHandler(s, s.createProject)))
	mux.HandleFunc("GET /api/staff", listHandler(s, pickStaff))
	mux.Handle("POST /api/staff", limited(createHandler(s, s.createStaffMember)))

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/reports", s.handleReport)
	mux.Handle("POST /api/reports", limited(http.HandlerFunc(s.handleReport)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.caches.StartCleanup(cacheCleanupInterval)
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()

		metrics := s.tracer.GetMetrics()
		s.logger.Info("HTTP server shutting down",
			"total_requests", metrics.TotalRequests,
			"avg_response_us", metrics.AverageResponseTime,
			"rate_limited", s.limiter.GetMetrics().TotalHits)

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				applog.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "backend unavailable").Write(w)
			return
		}
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
