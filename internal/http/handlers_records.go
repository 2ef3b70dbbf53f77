package http

import (
	"context"
	"net/http"

	"masjid/internal/core"
	applog "masjid/internal/log"
	"masjid/internal/report"
)

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func pickDonors(ds report.Dataset) []core.Donor       { return ds.Donors }
func pickDonations(ds report.Dataset) []core.Donation { return ds.Donations }
func pickExpenses(ds report.Dataset) []core.Expense   { return ds.Expenses }
func pickProjects(ds report.Dataset) []core.Project   { return ds.Projects }
func pickStaff(ds report.Dataset) []core.StaffMember  { return ds.Staff }

// listHandler serves one collection from the cached snapshot.
func listHandler[T any](s *Server, pick func(report.Dataset) []T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := s.records.Snapshot(r.Context())
		if err != nil {
			s.writeError(w, r, err, applog.OpList)
			return
		}
		items := pick(ds)
		if items == nil {
			items = []T{}
		}
		NewResponse().JSON(listResponse[T]{Items: items, Count: len(items)}).Write(w)
	}
}

// createHandler decodes one record, stores it and answers 201 with the
// stored record, id included.
func createHandler[T any](s *Server, create func(context.Context, T) (T, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := decodeJSON(r, &in); err != nil {
			s.writeError(w, r, err, applog.OpCreate)
			return
		}
		out, err := create(r.Context(), in)
		if err != nil {
			s.writeError(w, r, err, applog.OpCreate)
			return
		}
		NewResponse().Status(http.StatusCreated).JSON(out).Write(w)
	})
}

// Ids are always assigned by the store.

func (s *Server) createDonor(ctx context.Context, d core.Donor) (core.Donor, error) {
	d.ID = ""
	return s.records.CreateDonor(ctx, d)
}

func (s *Server) createDonation(ctx context.Context, d core.Donation) (core.Donation, error) {
	d.ID = ""
	return s.records.CreateDonation(ctx, d)
}

func (s *Server) createExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = ""
	return s.records.CreateExpense(ctx, e)
}

func (s *Server) createProject(ctx context.Context, p core.Project) (core.Project, error) {
	p.ID = ""
	return s.records.CreateProject(ctx, p)
}

func (s *Server) createStaffMember(ctx context.Context, m core.StaffMember) (core.StaffMember, error) {
	m.ID = ""
	return s.records.CreateStaffMember(ctx, m)
}
