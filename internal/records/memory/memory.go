package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"masjid/internal/core"
	"masjid/internal/report"
)

// SeedFile is the name of the optional seed inside the data directory.
const SeedFile = "seed.json"

// Store keeps every collection in process memory.
type Store struct {
	mu   sync.Mutex
	data report.Dataset
}

func New(seed report.Dataset) *Store {
	return &Store{data: seed}
}

// NewFromDir seeds the store from <dir>/seed.json when present. A missing
// file yields an empty store.
func NewFromDir(dir string) (*Store, error) {
	b, err := os.ReadFile(filepath.Join(dir, SeedFile))
	if os.IsNotExist(err) {
		return New(report.Dataset{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed report.Dataset
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return New(seed), nil
}

func (s *Store) ListDonors(_ context.Context) ([]core.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Donor(nil), s.data.Donors...), nil
}

func (s *Store) ListDonations(_ context.Context) ([]core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Donation(nil), s.data.Donations...), nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.data.Expenses...), nil
}

func (s *Store) ListProjects(_ context.Context) ([]core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Project(nil), s.data.Projects...), nil
}

func (s *Store) ListStaff(_ context.Context) ([]core.StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.StaffMember(nil), s.data.Staff...), nil
}

func (s *Store) AddDonor(_ context.Context, d core.Donor) (core.Donor, error) {
	if err := d.Validate(); err != nil {
		return core.Donor{}, err
	}
	d.ID = newID(d.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Donors = append(s.data.Donors, d)
	return d, nil
}

func (s *Store) AddDonation(_ context.Context, d core.Donation) (core.Donation, error) {
	if err := d.Validate(); err != nil {
		return core.Donation{}, err
	}
	d.ID = newID(d.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Donations = append(s.data.Donations, d)
	return d, nil
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = newID(e.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Expenses = append(s.data.Expenses, e)
	return e, nil
}

func (s *Store) AddProject(_ context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	p.ID = newID(p.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Projects = append(s.data.Projects, p)
	return p, nil
}

func (s *Store) AddStaffMember(_ context.Context, m core.StaffMember) (core.StaffMember, error) {
	if err := m.Validate(); err != nil {
		return core.StaffMember{}, err
	}
	m.ID = newID(m.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Staff = append(s.data.Staff, m)
	return m, nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
