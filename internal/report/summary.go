package report

import (
	"sort"

	"masjid/internal/core"
)

// RecentLimit is how many of the latest records the dashboard lists.
const RecentLimit = 5

// Dashboard is the back-office landing summary.
type Dashboard struct {
	TotalDonations  float64         `json:"totalDonations"`
	AtyatDonations  float64         `json:"atyatDonations"`
	TotalExpenses   float64         `json:"totalExpenses"`
	TotalBudget     float64         `json:"totalBudget"`
	Balance         float64         `json:"balance"`
	RecentDonations []core.Donation `json:"recentDonations"`
	RecentExpenses  []core.Expense  `json:"recentExpenses"`
	RecentProjects  []core.Project  `json:"recentProjects"`
	Counts          map[string]int  `json:"counts"`
}

// Summarize builds the dashboard with the same aggregations as the reports.
func Summarize(ds Dataset) Dashboard {
	d := Dashboard{
		TotalDonations: Sum(ds.Donations),
		AtyatDonations: SumWhere(ds.Donations, func(x core.Donation) bool { return x.Type == core.DonationAtyat }),
		TotalExpenses:  Sum(ds.Expenses),
		TotalBudget:    Sum(ds.Projects),
		Balance:        Balance(ds.Donations, ds.Expenses),
	}
	d.RecentDonations = latest(ds.Donations)
	d.RecentExpenses = latest(ds.Expenses)
	d.RecentProjects = latest(ds.Projects)
	d.Counts = map[string]int{
		"donors":    len(ds.Donors),
		"donations": len(ds.Donations),
		"expenses":  len(ds.Expenses),
		"projects":  len(ds.Projects),
		"staff":     len(ds.Staff),
	}
	return d
}

// latest returns up to RecentLimit records, newest first. Records with an
// invalid date sort last.
func latest[T Dated](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := out[i].RangeDate()
		dj, _ := out[j].RangeDate()
		if di.Valid() != dj.Valid() {
			return di.Valid()
		}
		return di.After(dj.Time)
	})
	if len(out) > RecentLimit {
		out = out[:RecentLimit]
	}
	return out
}
