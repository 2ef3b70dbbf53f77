package services

import (
	"context"

	applog "masjid/internal/log"
	"masjid/internal/report"
)

// ReportService turns report requests into documents over the cached
// record snapshot.
type ReportService struct {
	gen       *report.Generator
	snapshots Snapshots
	events    *applog.StructuredLogger
}

func NewReportService(gen *report.Generator, snapshots Snapshots, logger *applog.Logger) *ReportService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ReportService{
		gen:       gen,
		snapshots: snapshots,
		events:    applog.NewStructuredLogger(logger),
	}
}

// Generate rejects invalid requests and unsupported formats before any
// record is read, then renders the report.
func (s *ReportService) Generate(ctx context.Context, req report.Request) (*report.Document, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := req.Format.Supported(); err != nil {
		return nil, err
	}

	ds, err := s.snapshots.Get(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.gen.Generate(ctx, req, ds)
	if err != nil {
		return nil, err
	}
	s.events.LogReportGenerated(ctx, string(req.Kind), string(req.Format), doc.Entries, doc.Skipped, doc.Pages, len(doc.Bytes))
	return doc, nil
}

// Dashboard summarizes the current snapshot.
func (s *ReportService) Dashboard(ctx context.Context) (report.Dashboard, error) {
	ds, err := s.snapshots.Get(ctx)
	if err != nil {
		return report.Dashboard{}, err
	}
	return report.Summarize(ds), nil
}

// Currency formats amounts the way reports do.
func (s *ReportService) Currency() report.Currency {
	return s.gen.Currency()
}
