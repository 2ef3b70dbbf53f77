package report

import (
	"math"
	"testing"

	"masjid/internal/core"
)

func TestSum(t *testing.T) {
	donations := []core.Donation{{Amount: 500}, {Amount: 250}, {Amount: 0.25}}
	var manual float64
	for _, d := range donations {
		manual += float64(d.Amount)
	}
	if got := Sum(donations); got != manual || got != 750.25 {
		t.Fatalf("Sum = %v, manual %v", got, manual)
	}
	reversed := []core.Donation{donations[2], donations[1], donations[0]}
	if Sum(reversed) != Sum(donations) {
		t.Fatal("sum depends on order")
	}
	if Sum([]core.Expense{}) != 0 || Sum[core.Project](nil) != 0 {
		t.Fatal("empty input must sum to 0")
	}
}

func TestSumCoercesBadValues(t *testing.T) {
	expenses := []core.Expense{
		{Amount: 100},
		{Amount: -50},
		{Amount: core.Amount(math.NaN())},
		{Amount: core.Amount(math.Inf(1))},
	}
	if got := Sum(expenses); got != 100 {
		t.Fatalf("Sum = %v, want 100", got)
	}
	projects := []core.Project{{Budget: 1000}, {Budget: 250}}
	if got := Sum(projects); got != 1250 {
		t.Fatalf("budget sum = %v", got)
	}
}

func TestBalance(t *testing.T) {
	cases := []struct {
		name      string
		donations []core.Donation
		expenses  []core.Expense
		want      float64
	}{
		{"positive", []core.Donation{{Amount: 1000}}, []core.Expense{{Amount: 400}}, 600},
		{"negative", []core.Donation{{Amount: 100}}, []core.Expense{{Amount: 400}, {Amount: 50}}, -350},
		{"empty", nil, nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Balance(tc.donations, tc.expenses)
			if got != tc.want || got != Sum(tc.donations)-Sum(tc.expenses) {
				t.Fatalf("Balance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSumWhere(t *testing.T) {
	donations := []core.Donation{
		{Amount: 10, Type: core.DonationAtyat},
		{Amount: 20, Type: core.DonationGeneral},
		{Amount: 5, Type: core.DonationAtyat},
	}
	got := SumWhere(donations, func(d core.Donation) bool { return d.Type == core.DonationAtyat })
	if got != 15 {
		t.Fatalf("SumWhere = %v", got)
	}
}

func TestCurrencyFormat(t *testing.T) {
	c := NewCurrency("")
	cases := map[float64]string{
		750:        "PKR 750.00",
		1234.5:     "PKR 1,234.50",
		1000000:    "PKR 1,000,000.00",
		-350:       "PKR -350.00",
		-1234.5:    "PKR -1,234.50",
		math.NaN(): "PKR 0.00",
		-0.001:     "PKR 0.00",
		-0.006:     "PKR -0.01",
	}
	for v, want := range cases {
		if got := c.Format(v); got != want {
			t.Errorf("Format(%v) = %q, want %q", v, got, want)
		}
	}
	for _, v := range []float64{0.3 - (0.1 + 0.2), math.Copysign(0, -1)} {
		if got := c.Format(v); got != "PKR 0.00" {
			t.Errorf("Format(%v) = %q, want PKR 0.00", v, got)
		}
	}
	if got := NewCurrency("usd").Format(3); got != "USD 3.00" {
		t.Errorf("got %q", got)
	}
}
