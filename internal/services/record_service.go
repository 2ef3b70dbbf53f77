package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"masjid/internal/core"
	applog "masjid/internal/log"
	"masjid/internal/records"
	"masjid/internal/report"
)

var (
	// ErrInvalidRecord wraps every core validation failure on create.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrUnknownReference is returned when a record points at a donor,
	// project or staff member that does not exist.
	ErrUnknownReference = errors.New("unknown reference")
)

// Publisher announces stored records to the sync worker.
type Publisher interface {
	PublishRecordSync(ctx context.Context, kind, id string) error
}

// Snapshots is the cached view over the record store.
type Snapshots interface {
	Get(ctx context.Context) (report.Dataset, error)
	Invalidate()
}

// RecordService orchestrates record writes across the store, the snapshot
// cache and AMQP.
type RecordService struct {
	store     records.Store
	snapshots Snapshots
	publisher Publisher
	logger    *applog.Logger
	events    *applog.StructuredLogger
}

// NewRecordService wires the service. publisher may be nil when AMQP is
// disabled.
func NewRecordService(store records.Store, snapshots Snapshots, publisher Publisher, logger *applog.Logger) *RecordService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &RecordService{
		store:     store,
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentRecords),
		events:    applog.NewStructuredLogger(logger),
	}
}

// Snapshot returns every collection as one consistent dataset.
func (s *RecordService) Snapshot(ctx context.Context) (report.Dataset, error) {
	ds, err := s.snapshots.Get(ctx)
	if err != nil {
		return report.Dataset{}, fmt.Errorf("load snapshot: %w", err)
	}
	return ds, nil
}

func (s *RecordService) CreateDonor(ctx context.Context, d core.Donor) (core.Donor, error) {
	d.Name = strings.TrimSpace(d.Name)
	if err := d.Validate(); err != nil {
		return core.Donor{}, invalid(err)
	}
	out, err := s.store.AddDonor(ctx, d)
	if err != nil {
		return core.Donor{}, fmt.Errorf("save donor: %w", err)
	}
	s.stored(ctx, records.KindDonors, out.ID)
	return out, nil
}

// CreateDonation resolves the donor and project names from their ids before
// storing, so listings and reports never need a join.
func (s *RecordService) CreateDonation(ctx context.Context, d core.Donation) (core.Donation, error) {
	if d.DonorID != "" || d.ProjectID != "" {
		ds, err := s.Snapshot(ctx)
		if err != nil {
			return core.Donation{}, err
		}
		if d.DonorID != "" {
			donor, ok := find(ds.Donors, func(x core.Donor) bool { return x.ID == d.DonorID })
			if !ok {
				return core.Donation{}, fmt.Errorf("%w: donor %q", ErrUnknownReference, d.DonorID)
			}
			d.DonorName = donor.Name
		}
		if d.ProjectID != "" {
			p, ok := find(ds.Projects, func(x core.Project) bool { return x.ID == d.ProjectID })
			if !ok {
				return core.Donation{}, fmt.Errorf("%w: project %q", ErrUnknownReference, d.ProjectID)
			}
			d.ProjectName = p.Name
		}
	}
	if err := d.Validate(); err != nil {
		return core.Donation{}, invalid(err)
	}
	out, err := s.store.AddDonation(ctx, d)
	if err != nil {
		return core.Donation{}, fmt.Errorf("save donation: %w", err)
	}
	s.stored(ctx, records.KindDonations, out.ID)
	return out, nil
}

// CreateExpense prefills a salaries expense from the staff member's salary
// and checks that referenced staff and projects exist.
func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.StaffMemberID != "" || e.ProjectID != "" {
		ds, err := s.Snapshot(ctx)
		if err != nil {
			return core.Expense{}, err
		}
		if e.Category == core.CategorySalaries && e.StaffMemberID != "" {
			if _, ok := find(ds.Staff, func(x core.StaffMember) bool { return x.ID == e.StaffMemberID }); !ok {
				return core.Expense{}, fmt.Errorf("%w: staff member %q", ErrUnknownReference, e.StaffMemberID)
			}
			e.PrefillSalary(ds.Staff)
		}
		if e.Category == core.CategoryProjects && e.ProjectID != "" {
			if _, ok := find(ds.Projects, func(x core.Project) bool { return x.ID == e.ProjectID }); !ok {
				return core.Expense{}, fmt.Errorf("%w: project %q", ErrUnknownReference, e.ProjectID)
			}
		}
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, invalid(err)
	}
	out, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.stored(ctx, records.KindExpenses, out.ID)
	return out, nil
}

func (s *RecordService) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return core.Project{}, invalid(err)
	}
	out, err := s.store.AddProject(ctx, p)
	if err != nil {
		return core.Project{}, fmt.Errorf("save project: %w", err)
	}
	s.stored(ctx, records.KindProjects, out.ID)
	return out, nil
}

func (s *RecordService) CreateStaffMember(ctx context.Context, m core.StaffMember) (core.StaffMember, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return core.StaffMember{}, invalid(err)
	}
	out, err := s.store.AddStaffMember(ctx, m)
	if err != nil {
		return core.StaffMember{}, fmt.Errorf("save staff member: %w", err)
	}
	s.stored(ctx, records.KindStaff, out.ID)
	return out, nil
}

// stored runs the post-write steps. The record is already saved, so a
// publish failure is logged and left to the worker's pending sweep.
func (s *RecordService) stored(ctx context.Context, kind records.Kind, id string) {
	s.snapshots.Invalidate()
	s.events.LogRecordCreated(ctx, string(kind), id)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, string(kind), id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			applog.FieldRecordKind, string(kind),
			applog.FieldRecordID, id,
			applog.FieldError, err)
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
}

func find[T any](in []T, match func(T) bool) (T, bool) {
	for _, v := range in {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
