// Package records defines the ports to the record store and the snapshot
// fetch the report generator runs on.
package records

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"masjid/internal/core"
	"masjid/internal/report"
)

// Kind names a record collection.
type Kind string

const (
	KindDonors    Kind = "donors"
	KindDonations Kind = "donations"
	KindExpenses  Kind = "expenses"
	KindProjects  Kind = "projects"
	KindStaff     Kind = "staff"
)

// Kinds lists every collection.
var Kinds = []Kind{KindDonors, KindDonations, KindExpenses, KindProjects, KindStaff}

func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Ports for record backends.
type (
	Reader interface {
		ListDonors(ctx context.Context) ([]core.Donor, error)
		ListDonations(ctx context.Context) ([]core.Donation, error)
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		ListProjects(ctx context.Context) ([]core.Project, error)
		ListStaff(ctx context.Context) ([]core.StaffMember, error)
	}

	// Writer stores a new record and returns it with its assigned ID.
	Writer interface {
		AddDonor(ctx context.Context, d core.Donor) (core.Donor, error)
		AddDonation(ctx context.Context, d core.Donation) (core.Donation, error)
		AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		AddProject(ctx context.Context, p core.Project) (core.Project, error)
		AddStaffMember(ctx context.Context, s core.StaffMember) (core.StaffMember, error)
	}

	Store interface {
		Reader
		Writer
	}
)

// Fetch loads every collection concurrently. The reads are independent and
// complete in any order; the first failure cancels the others and no partial
// snapshot is returned.
func Fetch(ctx context.Context, r Reader) (report.Dataset, error) {
	var ds report.Dataset
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Donors, err = r.ListDonors(ctx)
		return wrap(KindDonors, err)
	})
	g.Go(func() (err error) {
		ds.Donations, err = r.ListDonations(ctx)
		return wrap(KindDonations, err)
	})
	g.Go(func() (err error) {
		ds.Expenses, err = r.ListExpenses(ctx)
		return wrap(KindExpenses, err)
	})
	g.Go(func() (err error) {
		ds.Projects, err = r.ListProjects(ctx)
		return wrap(KindProjects, err)
	})
	g.Go(func() (err error) {
		ds.Staff, err = r.ListStaff(ctx)
		return wrap(KindStaff, err)
	})
	if err := g.Wait(); err != nil {
		return report.Dataset{}, err
	}
	return ds, nil
}

func wrap(k Kind, err error) error {
	if err != nil {
		return fmt.Errorf("list %s: %w", k, err)
	}
	return nil
}
