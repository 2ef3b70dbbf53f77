// Package core provides the record types shared by the store, the HTTP API
// and the report generator.
//
// This file contains the currency value type and its defensive decoding:
// stored amounts may arrive as numbers, numeric strings or garbage, and the
// aggregations must never see NaN.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a currency value in major units.
type Amount float64

// Value returns the amount for arithmetic. Negative, NaN and infinite values
// count as 0.
func (a Amount) Value() float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// Validate is used when accepting new records; unlike Value it rejects
// rather than coerces.
func (a Amount) Validate() error {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Anything else
// decodes to 0.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*a = Amount(ParseAmount(s))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value())
}

// ParseAmount converts user or stored input to a float. Commas are only
// accepted as thousands separators between groups of three digits, so
// "1,500" is 1500 and "1,5" is rejected. Unparseable input yields 0.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		var ok bool
		if s, ok = stripGrouping(s); !ok {
			return 0
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Amount(f).Value()
}

// stripGrouping removes thousands separators from the integer part of s.
func stripGrouping(s string) (string, bool) {
	whole, frac, hasFrac := strings.Cut(s, ".")
	if strings.Contains(frac, ",") {
		return "", false
	}
	groups := strings.Split(strings.TrimLeft(whole, "+-"), ",")
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	out := strings.ReplaceAll(whole, ",", "")
	if hasFrac {
		out += "." + frac
	}
	return out, true
}
