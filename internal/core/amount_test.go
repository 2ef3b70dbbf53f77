package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestAmountValueCoercion(t *testing.T) {
	cases := []struct {
		in   Amount
		want float64
	}{
		{500, 500},
		{0, 0},
		{-10, 0},
		{Amount(math.NaN()), 0},
		{Amount(math.Inf(1)), 0},
		{12.5, 12.5},
	}
	for _, tc := range cases {
		if got := tc.in.Value(); got != tc.want {
			t.Errorf("Amount(%v).Value() = %v, want %v", float64(tc.in), got, tc.want)
		}
	}
}

func TestAmountJSON(t *testing.T) {
	var got []Amount
	if err := json.Unmarshal([]byte(`[250, "1000", "abc", null, "-5", "12,5", "1,500"]`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []float64{250, 1000, 0, 0, 0, 0, 1500}
	for i := range want {
		if got[i].Value() != want[i] {
			t.Errorf("element %d = %v, want %v", i, got[i].Value(), want[i])
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"1":         1,
		"1.23":      1.23,
		"1,5":       0,
		"1,500":     1500,
		"12,345":    12345,
		"1,234,567": 1234567,
		"1,234.50":  1234.5,
		"1,500.00":  1500,
		"12,34":     0,
		"1234,567":  0,
		",500":      0,
		"1.5,0":     0,
		" 2.50 ":    2.5,
		"-1":        0,
		"abc":       0,
		"":          0,
	}
	for in, want := range cases {
		if got := ParseAmount(in); got != want {
			t.Errorf("ParseAmount(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAmountValidate(t *testing.T) {
	if err := Amount(1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := Amount(0).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := Amount(-3).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}
