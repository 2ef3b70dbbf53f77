package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	storedLayout = "02/01/06"
	inputLayout  = "2006-01-02"
)

// Bound selects the sentinel used by ParseInputDate for an empty input.
type Bound int

const (
	StartBound Bound = iota
	EndBound
)

// ErrDateFormat matches every *DateFormatError.
var ErrDateFormat = errors.New("date format error")

// DateFormatError reports a date string that does not match the expected layout.
type DateFormatError struct {
	Value  string
	Layout string
	Reason string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date %q (want %s): %s", e.Value, e.Layout, e.Reason)
}

func (e *DateFormatError) Is(target error) bool {
	return target == ErrDateFormat
}

// Date is a calendar day at UTC midnight. Raw keeps the text it was decoded
// from so an invalid value can be reported and written back unchanged.
type Date struct {
	time.Time
	Raw string
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Valid reports whether the date holds a parsed instant.
func (d Date) Valid() bool {
	return !d.IsZero()
}

// Stored renders the DD/MM/YY form used by donation and expense records.
func (d Date) Stored() string {
	if !d.Valid() {
		return d.Raw
	}
	return d.Format(storedLayout)
}

// ISO renders YYYY-MM-DD.
func (d Date) ISO() string {
	if !d.Valid() {
		return d.Raw
	}
	return d.Format(inputLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Stored())
}

// UnmarshalJSON accepts DD/MM/YY, YYYY-MM-DD and epoch milliseconds (as a
// number or a numeric string). Anything else yields an invalid Date rather
// than an error so one bad record does not reject a whole payload.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	parsed, err := ParseAnyDate(s)
	if err != nil {
		*d = Date{Raw: s}
		return nil
	}
	*d = parsed
	return nil
}

// ParseStoredDate parses the DD/MM/YY form; the year is 2000+YY.
func ParseStoredDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{Raw: s}, &DateFormatError{Value: s, Layout: "DD/MM/YY", Reason: "expected three parts"}
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" || len(p) > 2 || !allDigits(p) {
			return Date{Raw: s}, &DateFormatError{Value: s, Layout: "DD/MM/YY", Reason: "non-numeric part " + strconv.Quote(p)}
		}
		nums[i], _ = strconv.Atoi(p)
	}
	if len(parts[2]) != 2 {
		return Date{Raw: s}, &DateFormatError{Value: s, Layout: "DD/MM/YY", Reason: "year must have two digits"}
	}
	d, ok := calendarDate(2000+nums[2], nums[1], nums[0])
	if !ok {
		return Date{Raw: s}, &DateFormatError{Value: s, Layout: "DD/MM/YY", Reason: "no such calendar day"}
	}
	d.Raw = s
	return d, nil
}

// ParseInputDate parses a date-picker value (YYYY-MM-DD). An empty value maps
// to the epoch for StartBound and to the day of now for EndBound, so an
// omitted bound never narrows a range.
func ParseInputDate(s string, b Bound, now time.Time) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if b == StartBound {
			return DateOf(time.Unix(0, 0)), nil
		}
		return DateOf(now), nil
	}
	t, err := time.Parse(inputLayout, s)
	if err != nil {
		return Date{Raw: s}, &DateFormatError{Value: s, Layout: "YYYY-MM-DD", Reason: err.Error()}
	}
	d := DateOf(t)
	d.Raw = s
	return d, nil
}

// ParseAnyDate normalizes the date shapes found in ingested records: the
// stored DD/MM/YY form, ISO dates from the project forms, and epoch
// milliseconds from the remote API.
func ParseAnyDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, "/") == 2 {
		return ParseStoredDate(s)
	}
	if strings.Count(s, "-") == 2 && len(s) == len(inputLayout) {
		t, err := time.Parse(inputLayout, s)
		if err != nil {
			return Date{Raw: s}, &DateFormatError{Value: s, Layout: "YYYY-MM-DD", Reason: err.Error()}
		}
		d := DateOf(t)
		d.Raw = s
		return d, nil
	}
	if len(s) >= 9 && allDigits(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			d := DateOf(time.UnixMilli(ms))
			d.Raw = s
			return d, nil
		}
	}
	return Date{Raw: s}, &DateFormatError{Value: s, Layout: "DD/MM/YY", Reason: "unrecognized date"}
}

// Ordinal returns the English suffix for a day of the month.
func Ordinal(day int) string {
	if day%100 > 10 && day%100 < 20 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// FormatDisplay renders "21st June, 2023".
func FormatDisplay(d Date) string {
	if !d.Valid() {
		return d.Raw
	}
	return fmt.Sprintf("%d%s %s, %d", d.Day(), Ordinal(d.Day()), d.Month(), d.Year())
}

// FormatLongDate renders "June 21, 2023".
func FormatLongDate(d Date) string {
	if !d.Valid() {
		return d.Raw
	}
	return d.Format("January 2, 2006")
}

func calendarDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 {
		return Date{}, false
	}
	d := NewDate(year, month, day)
	if d.Day() != day || int(d.Month()) != month {
		return Date{}, false
	}
	return d, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
