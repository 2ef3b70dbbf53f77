package report

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = "PKR"

// Currency formats amounts as "<code> <grouped value>", e.g. "PKR 1,234.50".
type Currency struct {
	Code    string
	printer *message.Printer
}

func NewCurrency(code string) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	return Currency{Code: code, printer: message.NewPrinter(language.English)}
}

// Format keeps the sign of v so a negative balance stays visible. Values
// are rounded to cents first.
func (c Currency) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	p := c.printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	code := c.Code
	if code == "" {
		code = DefaultCurrency
	}
	return code + " " + p.Sprintf("%.2f", v)
}
