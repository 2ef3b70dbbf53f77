package report

import (
	"errors"
	"strings"
	"time"

	"masjid/internal/core"
)

type Kind string

const (
	KindDonations Kind = "donations"
	KindExpenses  Kind = "expenses"
	KindProjects  Kind = "projects"
	KindDonors    Kind = "donors"
	KindAccounts  Kind = "accounts"
)

// Kinds lists the selectable report kinds in menu order.
var Kinds = []Kind{KindDonations, KindExpenses, KindProjects, KindDonors, KindAccounts}

func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Title is the capitalized kind used in report titles.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatExcel, FormatCSV:
		return true
	}
	return false
}

// Supported returns an *UnsupportedFormatError for formats that are offered
// but not produced.
func (f Format) Supported() error {
	if f != FormatPDF {
		return &UnsupportedFormatError{Format: f}
	}
	return nil
}

// Request is a user's report selection. Start and End are YYYY-MM-DD.
type Request struct {
	Kind   Kind   `json:"kind"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Format Format `json:"format"`
}

// Normalize trims and lowercases the selection fields.
func (r Request) Normalize() Request {
	r.Kind = Kind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	r.Format = Format(strings.ToLower(strings.TrimSpace(string(r.Format))))
	r.Start = strings.TrimSpace(r.Start)
	r.End = strings.TrimSpace(r.End)
	return r
}

// Validate checks every field and reports all problems at once.
func (r Request) Validate() error {
	var problems []string
	switch {
	case r.Kind == "":
		problems = append(problems, "report kind is required")
	case !r.Kind.Valid():
		problems = append(problems, "unknown report kind "+string(r.Kind))
	}
	var start, end core.Date
	var startErr, endErr error
	if r.Start == "" {
		problems = append(problems, "start date is required")
	} else if start, startErr = core.ParseInputDate(r.Start, core.StartBound, time.Time{}); startErr != nil {
		problems = append(problems, "start date: "+startErr.Error())
	}
	if r.End == "" {
		problems = append(problems, "end date is required")
	} else if end, endErr = core.ParseInputDate(r.End, core.EndBound, time.Time{}); endErr != nil {
		problems = append(problems, "end date: "+endErr.Error())
	}
	if start.Valid() && end.Valid() && end.Before(start.Time) {
		problems = append(problems, "end date is before start date")
	}
	switch {
	case r.Format == "":
		problems = append(problems, "format is required")
	case !r.Format.Valid():
		problems = append(problems, "unknown format "+string(r.Format))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Range resolves the request bounds. Empty bounds fall back to the
// ParseInputDate sentinels so callers other than Validate may omit them.
func (r Request) Range(now time.Time) (Range, error) {
	rng, err := NewRange(r.Start, r.End, now)
	if err != nil {
		var dfe *core.DateFormatError
		if errors.As(err, &dfe) {
			return Range{}, &ValidationError{Problems: []string{dfe.Error()}}
		}
		return Range{}, err
	}
	return rng, nil
}

// Filename is the download name of the finished document.
func (r Request) Filename() string {
	if r.Kind == KindAccounts {
		return "accounting_report." + string(FormatPDF)
	}
	return string(r.Kind) + "_report." + string(FormatPDF)
}
