package report

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"masjid/internal/core"
	applog "masjid/internal/log"
)

// DefaultOrgName is the organization shown in titles when none is configured.
const DefaultOrgName = "Masjid"

// Dataset is a resident snapshot of every record collection.
type Dataset struct {
	Donors    []core.Donor       `json:"donors"`
	Donations []core.Donation    `json:"donations"`
	Expenses  []core.Expense     `json:"expenses"`
	Projects  []core.Project     `json:"projects"`
	Staff     []core.StaffMember `json:"staff"`
}

// Document is a finished report. Entries and Skipped describe the filtered
// set it was built from.
type Document struct {
	Name        string
	ContentType string
	Bytes       []byte
	Entries     int
	Skipped     int
	Pages       int
}

type Options struct {
	OrgName  string
	Currency string
	Logo     LogoSource
	Geometry Geometry
	Renderer Renderer
	Logger   *applog.Logger

	// Now and ReportNumber default to the wall clock and a random six digit
	// number.
	Now          func() time.Time
	ReportNumber func() string
}

// Generator builds report documents from a Dataset. It keeps no state
// between calls.
type Generator struct {
	org      string
	currency Currency
	logo     LogoSource
	geometry Geometry
	renderer Renderer
	logger   *applog.Logger
	now      func() time.Time
	number   func() string
}

func NewGenerator(opts Options) *Generator {
	g := &Generator{
		org:      strings.TrimSpace(opts.OrgName),
		currency: NewCurrency(opts.Currency),
		logo:     opts.Logo,
		geometry: opts.Geometry,
		renderer: opts.Renderer,
		logger:   opts.Logger,
		now:      opts.Now,
		number:   opts.ReportNumber,
	}
	if g.org == "" {
		g.org = DefaultOrgName
	}
	if g.geometry == (Geometry{}) {
		g.geometry = DefaultGeometry()
	}
	if g.renderer == nil {
		g.renderer = NewPDFRenderer(g.geometry)
	}
	if g.logger == nil {
		g.logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentReport)
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.number == nil {
		g.number = randomReportNumber
	}
	return g
}

// Currency returns the formatter used for amounts.
func (g *Generator) Currency() Currency { return g.currency }

// Generate validates req, filters data to its range and renders the report.
// It returns either a complete document or an error, never both.
func (g *Generator) Generate(ctx context.Context, req Request, data Dataset) (*Document, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := req.Format.Supported(); err != nil {
		return nil, err
	}
	rng, err := req.Range(g.now())
	if err != nil {
		return nil, err
	}

	var (
		l       Layout
		entries int
		skipped int
	)
	if req.Kind == KindAccounts {
		l, entries, skipped, err = g.accounts(rng, data)
	} else {
		l, entries, skipped, err = g.single(req.Kind, rng, data)
	}
	if skipped > 0 {
		g.logger.WarnContext(ctx, "Records with unparseable dates excluded from report",
			applog.NewFields().WithReport(string(req.Kind), string(req.Format)).WithCounts(entries, skipped).ToSlice()...)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if g.logo != nil {
		logo, err := g.logo()
		if err == nil {
			err = checkLogo(logo)
		}
		if err != nil {
			return nil, &RenderError{Stage: "logo", Err: err}
		}
		l.Header.Logo = logo
	}

	pages := Stamp(g.geometry.Paginate(l))
	if len(pages) == 0 {
		return nil, &RenderError{Stage: "layout", Err: fmt.Errorf("no pages laid out")}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := g.renderer.Render(ctx, l, pages)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &RenderError{Stage: "pdf", Err: err}
	}
	if len(b) == 0 {
		return nil, &RenderError{Stage: "pdf", Err: fmt.Errorf("empty document")}
	}

	return &Document{
		Name:        req.Filename(),
		ContentType: ContentTypePDF,
		Bytes:       b,
		Entries:     entries,
		Skipped:     skipped,
		Pages:       len(pages),
	}, nil
}

func (g *Generator) header(title string, rng Range, meta ...string) Header {
	lines := []string{
		"Report No: " + g.number(),
		fmt.Sprintf("Period: %s - %s", core.FormatLongDate(rng.Start), core.FormatLongDate(rng.End)),
	}
	return Header{
		Title:    title,
		Initials: initials(g.org),
		Meta:     append(lines, meta...),
	}
}

func (g *Generator) totals(entries int, total *float64) string {
	s := fmt.Sprintf("Total Entries: %d", entries)
	if total != nil {
		s += "    Total Amount: " + g.currency.Format(*total)
	}
	return s
}

// single builds a one-table report. Entries and the total are computed from
// the same filtered slice that fills the table.
func (g *Generator) single(kind Kind, rng Range, data Dataset) (Layout, int, int, error) {
	var (
		t       Table
		entries int
		skipped int
		total   *float64
	)
	switch kind {
	case KindDonations:
		f := FilterByRange(data.Donations, rng)
		rows := sortedByDate(f.Records)
		t = Table{Columns: donationColumns}
		for i, d := range rows {
			t.AddRow(ToneNone, fmt.Sprint(i+1), core.FormatDisplay(d.Date), d.DisplayDonor(),
				g.currency.Format(d.Value()), d.Type.Label(), d.DisplayProject())
		}
		entries, skipped, total = len(rows), f.Skipped, ptr(Sum(rows))
	case KindExpenses:
		f := FilterByRange(data.Expenses, rng)
		rows := sortedByDate(f.Records)
		t = Table{Columns: expenseColumns}
		for i, e := range rows {
			t.AddRow(ToneNone, fmt.Sprint(i+1), core.FormatDisplay(e.Date), string(e.Category),
				g.currency.Format(e.Value()), e.Notes)
		}
		entries, skipped, total = len(rows), f.Skipped, ptr(Sum(rows))
	case KindProjects:
		f := FilterByRange(data.Projects, rng)
		rows := sortedByDate(f.Records)
		t = Table{Columns: projectColumns}
		for i, p := range rows {
			t.AddRow(ToneNone, fmt.Sprint(i+1), p.Name, g.currency.Format(p.Value()),
				core.FormatDisplay(p.StartDate), displayOrDash(p.EndDate), string(p.Status))
		}
		entries, skipped, total = len(rows), f.Skipped, ptr(Sum(rows))
	case KindDonors:
		rows := FilterByRange(data.Donors, rng).Records
		t = Table{Columns: donorColumns}
		for i, d := range rows {
			t.AddRow(ToneNone, fmt.Sprint(i+1), d.Name, d.Number, d.Address)
		}
		entries = len(rows)
	default:
		return Layout{}, 0, 0, &ValidationError{Problems: []string{"unknown report kind " + string(kind)}}
	}
	if entries == 0 {
		return Layout{}, 0, skipped, &EmptyDatasetError{Kind: kind}
	}

	meta := []string{fmt.Sprintf("Total Entries: %d", entries)}
	if total != nil {
		meta = append(meta, "Total Amount: "+g.currency.Format(*total))
	}
	t.Total = g.totals(entries, total)
	return Layout{
		Header: g.header(fmt.Sprintf("%s %s Report", g.org, kind.Title()), rng, meta...),
		Tables: []Table{t},
	}, entries, skipped, nil
}

type ledgerEntry struct {
	date        core.Date
	tone        Tone
	description string
	amount      float64
}

// accounts builds the combined accounting report: summary, ledger and the
// two breakdowns.
func (g *Generator) accounts(rng Range, data Dataset) (Layout, int, int, error) {
	df := FilterByRange(data.Donations, rng)
	ef := FilterByRange(data.Expenses, rng)
	skipped := df.Skipped + ef.Skipped

	var missing []Kind
	if len(df.Records) == 0 {
		missing = append(missing, KindDonations)
	}
	if len(ef.Records) == 0 {
		missing = append(missing, KindExpenses)
	}
	if len(missing) > 0 {
		return Layout{}, 0, skipped, &MissingDatasetError{Missing: missing}
	}

	donations := sortedByDate(df.Records)
	expenses := sortedByDate(ef.Records)
	totalIn, totalOut := Sum(donations), Sum(expenses)

	summary := Table{Title: "Summary", Columns: summaryColumns}
	summary.AddRow(ToneNone, "Total Donations", g.currency.Format(totalIn))
	summary.AddRow(ToneNone, "Total Expenses", g.currency.Format(totalOut))
	summary.AddRow(ToneNone, "Balance", g.currency.Format(totalIn-totalOut))

	entries := make([]ledgerEntry, 0, len(donations)+len(expenses))
	for _, d := range donations {
		entries = append(entries, ledgerEntry{date: d.Date, tone: ToneDonation, description: d.DisplayDonor(), amount: d.Value()})
	}
	for _, e := range expenses {
		entries = append(entries, ledgerEntry{date: e.Date, tone: ToneExpense, description: string(e.Category), amount: e.Value()})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].date.Before(entries[j].date.Time) })

	ledger := Table{Title: "Combined Ledger", Columns: ledgerColumns}
	for _, e := range entries {
		origin := "Donation"
		if e.tone == ToneExpense {
			origin = "Expense"
		}
		ledger.AddRow(e.tone, core.FormatDisplay(e.date), origin, e.description, g.currency.Format(e.amount))
	}

	dt := Table{Title: "Donations", Columns: donationBreakdownColumns, Total: g.totals(len(donations), &totalIn)}
	for _, d := range donations {
		dt.AddRow(ToneNone, core.FormatDisplay(d.Date), d.DisplayDonor(), d.Type.Label(), g.currency.Format(d.Value()))
	}
	et := Table{Title: "Expenses", Columns: expenseBreakdownColumns, Total: g.totals(len(expenses), &totalOut)}
	for _, e := range expenses {
		et.AddRow(ToneNone, core.FormatDisplay(e.Date), string(e.Category), e.Notes, g.currency.Format(e.Value()))
	}

	return Layout{
		Header: g.header("Accounting Report", rng, fmt.Sprintf("Total Entries: %d", len(entries))),
		Tables: []Table{summary, ledger, dt, et},
	}, len(entries), skipped, nil
}

var (
	donationColumns = []Column{
		{Header: "No", Span: 1, Align: AlignCenter},
		{Header: "Date", Span: 2},
		{Header: "Donor", Span: 3},
		{Header: "Amount", Span: 2, Align: AlignRight},
		{Header: "Type", Span: 2},
		{Header: "Project", Span: 2},
	}
	expenseColumns = []Column{
		{Header: "No", Span: 1, Align: AlignCenter},
		{Header: "Date", Span: 2},
		{Header: "Category", Span: 2},
		{Header: "Amount", Span: 2, Align: AlignRight},
		{Header: "Notes", Span: 5},
	}
	projectColumns = []Column{
		{Header: "No", Span: 1, Align: AlignCenter},
		{Header: "Name", Span: 3},
		{Header: "Budget", Span: 2, Align: AlignRight},
		{Header: "Start Date", Span: 2},
		{Header: "End Date", Span: 2},
		{Header: "Status", Span: 2},
	}
	donorColumns = []Column{
		{Header: "No", Span: 1, Align: AlignCenter},
		{Header: "Name", Span: 3},
		{Header: "Number", Span: 3},
		{Header: "Address", Span: 5},
	}
	summaryColumns = []Column{
		{Header: "Item", Span: 6},
		{Header: "Amount", Span: 6, Align: AlignRight},
	}
	ledgerColumns = []Column{
		{Header: "Date", Span: 3},
		{Header: "Type", Span: 2},
		{Header: "Description", Span: 4},
		{Header: "Amount", Span: 3, Align: AlignRight},
	}
	donationBreakdownColumns = []Column{
		{Header: "Date", Span: 3},
		{Header: "Donor", Span: 4},
		{Header: "Type", Span: 2},
		{Header: "Amount", Span: 3, Align: AlignRight},
	}
	expenseBreakdownColumns = []Column{
		{Header: "Date", Span: 3},
		{Header: "Category", Span: 2},
		{Header: "Notes", Span: 4},
		{Header: "Amount", Span: 3, Align: AlignRight},
	}
)

// sortedByDate returns a copy of records stable-sorted by ascending date.
func sortedByDate[T Dated](records []T) []T {
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := out[i].RangeDate()
		dj, _ := out[j].RangeDate()
		return di.Before(dj.Time)
	})
	return out
}

func displayOrDash(d core.Date) string {
	if !d.Valid() {
		return "-"
	}
	return core.FormatDisplay(d)
}

func initials(org string) string {
	var b strings.Builder
	for _, w := range strings.Fields(org) {
		b.WriteString(strings.ToUpper(string([]rune(w)[:1])))
		if b.Len() >= 3 {
			break
		}
	}
	return b.String()
}

func ptr(v float64) *float64 { return &v }

func randomReportNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
