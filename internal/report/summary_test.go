package report

import (
	"testing"

	"masjid/internal/core"
)

func TestSummarize(t *testing.T) {
	ds := Dataset{
		Donors: []core.Donor{{ID: "x"}},
		Donations: []core.Donation{
			{ID: "1", Date: core.NewDate(2023, 1, 1), Amount: 500, Type: core.DonationGeneral},
			{ID: "2", Date: core.NewDate(2023, 6, 15), Amount: 250, Type: core.DonationAtyat},
			{ID: "3", Date: core.Date{Raw: "bad"}, Amount: -40, Type: core.DonationAtyat},
		},
		Expenses: []core.Expense{{ID: "e", Date: core.NewDate(2023, 2, 1), Amount: 100}},
		Projects: []core.Project{{ID: "p", Budget: 2000, StartDate: core.NewDate(2023, 1, 1)}},
	}

	d := Summarize(ds)
	if d.TotalDonations != 750 || d.AtyatDonations != 250 {
		t.Fatalf("donation totals: %+v", d)
	}
	if d.TotalExpenses != 100 || d.TotalBudget != 2000 || d.Balance != 650 {
		t.Fatalf("totals: %+v", d)
	}
	if len(d.RecentDonations) != 3 || d.RecentDonations[0].ID != "2" || d.RecentDonations[2].ID != "3" {
		t.Fatalf("recent donations should be newest first with invalid dates last: %+v", d.RecentDonations)
	}
	if d.Counts["donors"] != 1 || d.Counts["donations"] != 3 {
		t.Fatalf("counts: %v", d.Counts)
	}
}

func TestSummarizeLimitsRecent(t *testing.T) {
	var ex []core.Expense
	for i := 1; i <= 8; i++ {
		ex = append(ex, core.Expense{Date: core.NewDate(2023, 1, i), Amount: 1})
	}
	d := Summarize(Dataset{Expenses: ex})
	if len(d.RecentExpenses) != RecentLimit || d.RecentExpenses[0].Date.Day() != 8 {
		t.Fatalf("unexpected recent expenses: %d", len(d.RecentExpenses))
	}
}
