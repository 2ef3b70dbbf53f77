package report

import (
	"time"

	"masjid/internal/core"
)

// Dated is a record a report range can be applied to. ok is false for
// records without a date, which always pass the filter.
type Dated interface {
	RangeDate() (d core.Date, ok bool)
}

// Range is an inclusive window of calendar days.
type Range struct {
	Start core.Date
	End   core.Date
}

// NewRange parses YYYY-MM-DD bounds. Empty bounds widen the range.
func NewRange(start, end string, now time.Time) (Range, error) {
	s, err := core.ParseInputDate(start, core.StartBound, now)
	if err != nil {
		return Range{}, err
	}
	e, err := core.ParseInputDate(end, core.EndBound, now)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: s, End: e}, nil
}

// Contains reports whether d falls on or between the bounds. Invalid dates
// are never contained.
func (r Range) Contains(d core.Date) bool {
	if !d.Valid() {
		return false
	}
	day := core.DateOf(d.Time)
	return !day.Before(r.Start.Time) && !day.After(r.End.Time)
}

// Filtered is the result of FilterByRange. Skipped counts records dropped
// because their date could not be parsed.
type Filtered[T any] struct {
	Records []T
	Skipped int
}

// FilterByRange keeps records whose date is inside rng, in input order.
func FilterByRange[T Dated](records []T, rng Range) Filtered[T] {
	out := Filtered[T]{Records: make([]T, 0, len(records))}
	for _, r := range records {
		d, ok := r.RangeDate()
		if !ok {
			out.Records = append(out.Records, r)
			continue
		}
		if !d.Valid() {
			out.Skipped++
			continue
		}
		if rng.Contains(d) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}
