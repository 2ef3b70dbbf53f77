package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"masjid/internal/core"
	"masjid/internal/records"
	"masjid/internal/report"
)

var _ records.Store = (*Store)(nil)

func TestNewFromDirSeed(t *testing.T) {
	dir := t.TempDir()
	seed := `{
		"donors": [{"id": "d1", "name": "Aisha", "number": "0300", "address": "Karachi"}],
		"donations": [
			{"id": "x1", "donor": "Aisha", "date": "01/01/23", "amount": 500, "type": "general", "isAnonymous": false},
			{"id": "x2", "donor": "Bilal", "date": "32/13/23", "amount": "250", "type": "friday", "isAnonymous": false}
		],
		"projects": [{"id": "p1", "name": "Well", "budget": 1000, "startDate": "2023-03-01", "endDate": "", "status": "Running"}]
	}`
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("NewFromDir: %v", err)
	}
	ctx := context.Background()
	donations, _ := s.ListDonations(ctx)
	if len(donations) != 2 {
		t.Fatalf("donations = %d", len(donations))
	}
	if donations[0].Date.ISO() != "2023-01-01" || donations[1].Date.Valid() {
		t.Fatalf("dates not normalized: %+v", donations)
	}
	if donations[1].Amount.Value() != 250 {
		t.Fatalf("string amount not decoded: %v", donations[1].Amount)
	}
	projects, _ := s.ListProjects(ctx)
	if projects[0].StartDate.ISO() != "2023-03-01" || projects[0].EndDate.Valid() {
		t.Fatalf("project dates: %+v", projects[0])
	}
}

func TestNewFromDirMissingSeed(t *testing.T) {
	s, err := NewFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewFromDir: %v", err)
	}
	donors, _ := s.ListDonors(context.Background())
	if len(donors) != 0 {
		t.Fatalf("donors = %d", len(donors))
	}
}

func TestAddAssignsIDAndValidates(t *testing.T) {
	s := New(report.Dataset{})
	ctx := context.Background()

	d, err := s.AddDonor(ctx, core.Donor{Name: "Omar"})
	if err != nil || d.ID == "" {
		t.Fatalf("AddDonor = %+v, %v", d, err)
	}
	if _, err := s.AddDonor(ctx, core.Donor{}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := s.AddExpense(ctx, core.Expense{Date: core.NewDate(2023, 1, 1), Amount: 5, Category: core.CategoryUtility}); !errors.Is(err, core.ErrMissingUtility) {
		t.Fatalf("expected ErrMissingUtility, got %v", err)
	}

	list, _ := s.ListDonors(ctx)
	list[0].Name = "changed"
	again, _ := s.ListDonors(ctx)
	if again[0].Name != "Omar" {
		t.Fatal("list must return a copy")
	}
}
