package report

import "masjid/internal/core"

// Valued is a record with a currency value to aggregate: the amount of a
// donation or expense, the budget of a project.
type Valued interface {
	Value() float64
}

// Sum adds the values of records. Empty input sums to 0.
func Sum[T Valued](records []T) float64 {
	return SumWhere(records, nil)
}

// SumWhere adds the values of the records keep accepts. A nil keep accepts
// everything.
func SumWhere[T Valued](records []T, keep func(T) bool) float64 {
	var total float64
	for _, r := range records {
		if keep != nil && !keep(r) {
			continue
		}
		total += r.Value()
	}
	return total
}

// Balance is donations minus expenses and may be negative.
func Balance(donations []core.Donation, expenses []core.Expense) float64 {
	return Sum(donations) - Sum(expenses)
}
