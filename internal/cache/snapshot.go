package cache

import (
	"context"
	"sync/atomic"
	"time"

	applog "masjid/internal/log"
	"masjid/internal/report"

	"golang.org/x/sync/singleflight"
)

const (
	snapshotKey = "snapshot"
	// loadTimeout bounds a shared load once it no longer follows any
	// single caller's context.
	loadTimeout = 30 * time.Second
)

// Loader reads a full dataset from the record backend.
type Loader func(ctx context.Context) (report.Dataset, error)

// Snapshots caches the full record dataset for report and dashboard reads.
// Concurrent misses share one backend load. Callers must treat the returned
// dataset as read-only.
type Snapshots struct {
	lru    *LRUCache[report.Dataset]
	group  singleflight.Group
	load   Loader
	gen    atomic.Uint64
	logger *applog.Logger
}

func NewSnapshots(ttl time.Duration, load Loader, logger *applog.Logger) *Snapshots {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Snapshots{
		lru:    NewLRUCache[report.Dataset](1, ttl),
		load:   load,
		logger: logger.WithComponent(applog.ComponentCache),
	}
}

// Get returns the cached dataset or loads a fresh one. A caller whose ctx
// ends stops waiting; the shared load keeps running for the others.
func (s *Snapshots) Get(ctx context.Context) (report.Dataset, error) {
	if ds, ok := s.lru.Get(snapshotKey); ok {
		return ds, nil
	}
	gen := s.gen.Load()
	ch := s.group.DoChan(snapshotKey, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		ds, err := s.load(lctx)
		if err != nil {
			return report.Dataset{}, err
		}
		// A write during the load makes this result stale.
		if s.gen.Load() == gen {
			s.lru.Set(snapshotKey, ds)
		}
		return ds, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return report.Dataset{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return report.Dataset{}, res.Err
	}
	s.logger.DebugContext(ctx, "Snapshot loaded",
		applog.FieldOperation, applog.OpFetch,
		"shared", res.Shared)
	return res.Val.(report.Dataset), nil
}

// Invalidate drops the cached dataset after a write.
func (s *Snapshots) Invalidate() {
	s.gen.Add(1)
	s.lru.Purge()
	s.group.Forget(snapshotKey)
}

func (s *Snapshots) CleanExpired() int {
	return s.lru.CleanExpired()
}
