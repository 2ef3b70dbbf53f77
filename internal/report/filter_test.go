package report

import (
	"reflect"
	"testing"
	"time"

	"masjid/internal/core"
)

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseStoredDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func mustRange(t *testing.T, start, end string) Range {
	t.Helper()
	rng, err := NewRange(start, end, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return rng
}

func TestFilterByRangeInclusiveBounds(t *testing.T) {
	donations := []core.Donation{
		{ID: "before", Date: mustDate(t, "31/12/22"), Amount: 1},
		{ID: "start", Date: mustDate(t, "01/01/23"), Amount: 1},
		{ID: "middle", Date: mustDate(t, "15/06/23"), Amount: 1},
		{ID: "end", Date: mustDate(t, "31/12/23"), Amount: 1},
		{ID: "after", Date: mustDate(t, "01/01/24"), Amount: 1},
	}
	got := FilterByRange(donations, mustRange(t, "2023-01-01", "2023-12-31"))

	var ids []string
	for _, d := range got.Records {
		ids = append(ids, d.ID)
	}
	want := []string{"start", "middle", "end"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	if got.Skipped != 0 {
		t.Fatalf("skipped = %d", got.Skipped)
	}
}

func TestFilterByRangeSkipsMalformedDates(t *testing.T) {
	var bad core.Date
	if err := bad.UnmarshalJSON([]byte(`"32/13/23"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	donations := []core.Donation{
		{ID: "ok", Date: mustDate(t, "10/10/23"), Amount: 5},
		{ID: "bad", Date: bad, Amount: 5},
	}
	got := FilterByRange(donations, mustRange(t, "", ""))
	if len(got.Records) != 1 || got.Records[0].ID != "ok" {
		t.Fatalf("unexpected records %+v", got.Records)
	}
	if got.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", got.Skipped)
	}
}

func TestFilterByRangeIsIdempotent(t *testing.T) {
	expenses := []core.Expense{
		{ID: "a", Date: mustDate(t, "05/03/23")},
		{ID: "b", Date: mustDate(t, "01/02/23")},
		{ID: "c", Date: mustDate(t, "20/09/23")},
		{ID: "d", Date: mustDate(t, "20/09/22")},
	}
	rng := mustRange(t, "2023-01-01", "2023-06-30")
	once := FilterByRange(expenses, rng)
	twice := FilterByRange(once.Records, rng)
	if !reflect.DeepEqual(once.Records, twice.Records) {
		t.Fatalf("second pass changed result: %v vs %v", once.Records, twice.Records)
	}
	if once.Records[0].ID != "a" || once.Records[1].ID != "b" {
		t.Fatalf("input order not kept: %v", once.Records)
	}
}

func TestFilterByRangeProjectsUseStartDate(t *testing.T) {
	projects := []core.Project{
		{ID: "in", StartDate: core.NewDate(2023, 3, 1), EndDate: core.NewDate(2025, 1, 1)},
		{ID: "out", StartDate: core.NewDate(2022, 3, 1), EndDate: core.NewDate(2023, 5, 1)},
	}
	got := FilterByRange(projects, mustRange(t, "2023-01-01", "2023-12-31"))
	if len(got.Records) != 1 || got.Records[0].ID != "in" {
		t.Fatalf("got %+v", got.Records)
	}
}

func TestFilterByRangeDonorsPassThrough(t *testing.T) {
	donors := []core.Donor{{ID: "2", Name: "Zaid"}, {ID: "1", Name: "Ali"}}
	got := FilterByRange(donors, mustRange(t, "2030-01-01", "2030-01-02"))
	if !reflect.DeepEqual(got.Records, donors) {
		t.Fatalf("donors should be unfiltered, got %+v", got.Records)
	}
}

func TestNewRangeSentinels(t *testing.T) {
	rng := mustRange(t, "", "")
	if rng.Start.Year() != 1970 || rng.End.ISO() != "2024-06-01" {
		t.Fatalf("unexpected sentinels %s..%s", rng.Start.ISO(), rng.End.ISO())
	}
	if _, err := NewRange("01/01/23", "", time.Now()); err == nil {
		t.Fatal("expected error for non-ISO bound")
	}
}
