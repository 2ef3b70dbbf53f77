package http

import (
	"errors"
	"net/http"

	"masjid/internal/core"
	applog "masjid/internal/log"
	"masjid/internal/report"
	"masjid/internal/services"
)

// dashboardResponse adds display strings next to the raw totals.
type dashboardResponse struct {
	report.Dashboard
	Display map[string]string `json:"display"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpFetch)
		return
	}
	cur := s.reports.Currency()
	NewResponse().JSON(dashboardResponse{
		Dashboard: d,
		Display: map[string]string{
			"totalDonations": cur.Format(d.TotalDonations),
			"atyatDonations": cur.Format(d.AtyatDonations),
			"totalExpenses":  cur.Format(d.TotalExpenses),
			"totalBudget":    cur.Format(d.TotalBudget),
			"balance":        cur.Format(d.Balance),
		},
	}).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	req, err := ParseReportRequest(r)
	if err != nil {
		s.writeError(w, r, err, applog.OpGenerate)
		return
	}
	doc, err := s.reports.Generate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, applog.OpGenerate)
		return
	}
	NewResponse().
		Header("Cache-Control", "no-store").
		Attachment(doc.Name, doc.ContentType, doc.Bytes).
		Write(w)
}

// statusFor maps error classes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadBody),
		errors.Is(err, report.ErrValidation),
		errors.Is(err, core.ErrDateFormat),
		errors.Is(err, services.ErrInvalidRecord),
		errors.Is(err, services.ErrUnknownReference):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, report.ErrEmptyDataset),
		errors.Is(err, report.ErrMissingDataset):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Client errors echo the error
// text; server errors are logged and answered generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Request rejected",
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
		ErrorResponse(status, err.Error()).Write(w)
		return
	}

	s.events.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, operation,
		applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()))
	msg := "internal error"
	if errors.Is(err, report.ErrRender) {
		msg = report.ErrRender.Error()
	}
	InternalServerError(msg).Write(w)
}
