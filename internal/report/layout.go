package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Align is the horizontal alignment of a column.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Tone marks the origin of a ledger row. It only affects shading.
type Tone int

const (
	ToneNone Tone = iota
	ToneDonation
	ToneExpense
)

// charsPerSpan approximates how many characters of body text fit in one of
// the twelve grid columns of an A4 page.
const charsPerSpan = 10

type Column struct {
	Header string
	Span   int
	Align  Align
}

// Fit truncates s to what the column can show on one line.
func (c Column) Fit(s string) string {
	limit := c.Span * charsPerSpan
	if limit <= 3 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

type Row struct {
	Cells []string
	Tone  Tone
}

// Table is one section of a report. Title is optional; Total is the footer
// total line printed after the last row.
type Table struct {
	Title   string
	Columns []Column
	Rows    []Row
	Total   string
}

// AddRow appends a row, fitting each cell to its column.
func (t *Table) AddRow(tone Tone, cells ...string) {
	fitted := make([]string, len(t.Columns))
	for i := range t.Columns {
		if i < len(cells) {
			fitted[i] = t.Columns[i].Fit(strings.TrimSpace(cells[i]))
		}
	}
	t.Rows = append(t.Rows, Row{Cells: fitted, Tone: tone})
}

// Header is the block at the top of the first page.
type Header struct {
	Title    string
	Initials string
	Logo     []byte
	Meta     []string
}

// Layout is the complete content of a report before pagination.
type Layout struct {
	Header Header
	Tables []Table
}

type BlockKind int

const (
	BlockHeader BlockKind = iota
	BlockTitle
	BlockColumns
	BlockRow
	BlockTotal
	BlockSpacer
)

// Block is a placed piece of content. Table and Row index into the Layout
// for the block kinds that need them.
type Block struct {
	Kind   BlockKind
	Height float64
	Table  int
	Row    int
}

// Page holds the blocks placed on one page. Number and Total are set by
// Stamp once every page is known.
type Page struct {
	Blocks []Block
	Number int
	Total  int
}

func (p Page) Used() float64 {
	var h float64
	for _, b := range p.Blocks {
		h += b.Height
	}
	return h
}

// Footer is the page label printed at the bottom of every page.
func (p Page) Footer() string {
	return fmt.Sprintf("Page %d of %d", p.Number, p.Total)
}

// Geometry holds the page content height and the fixed block heights, in
// millimetres.
type Geometry struct {
	Content float64
	Footer  float64
	Header  float64
	Title   float64
	Columns float64
	Row     float64
	Total   float64
	Spacer  float64
}

// DefaultGeometry fits A4 portrait with 15mm top and 10mm bottom margins,
// leaving a little slack so the PDF engine never breaks a page on its own.
func DefaultGeometry() Geometry {
	return Geometry{
		Content: 270,
		Footer:  8,
		Header:  38,
		Title:   9,
		Columns: 8,
		Row:     7,
		Total:   9,
		Spacer:  6,
	}
}

// Paginate places every block of l onto pages. A section title is only
// placed where its column header and first row also fit, and column headers
// are repeated at the top of each continuation page.
func (g Geometry) Paginate(l Layout) []Page {
	p := &paginator{avail: g.Content - g.Footer}
	p.newPage()
	p.place(Block{Kind: BlockHeader, Height: g.Header})

	for ti, t := range l.Tables {
		if ti > 0 && !p.empty() {
			if p.fits(g.Spacer) {
				p.place(Block{Kind: BlockSpacer, Height: g.Spacer})
			} else {
				p.newPage()
			}
		}

		lead := g.Columns
		if len(t.Rows) > 0 {
			lead += g.Row
		}
		if t.Title != "" {
			lead += g.Title
		}
		if !p.fits(lead) {
			p.newPage()
		}
		if t.Title != "" {
			p.place(Block{Kind: BlockTitle, Height: g.Title, Table: ti})
		}
		p.place(Block{Kind: BlockColumns, Height: g.Columns, Table: ti})

		for ri := range t.Rows {
			if !p.fits(g.Row) {
				p.newPage()
				p.place(Block{Kind: BlockColumns, Height: g.Columns, Table: ti})
			}
			p.place(Block{Kind: BlockRow, Height: g.Row, Table: ti, Row: ri})
		}

		if t.Total != "" {
			if !p.fits(g.Total) {
				p.newPage()
			}
			p.place(Block{Kind: BlockTotal, Height: g.Total, Table: ti})
		}
	}
	return p.pages
}

type paginator struct {
	avail float64
	used  float64
	pages []Page
}

func (p *paginator) newPage() {
	p.pages = append(p.pages, Page{})
	p.used = 0
}

func (p *paginator) empty() bool { return p.used == 0 }

// fits is always true on an empty page so oversized blocks still make
// progress.
func (p *paginator) fits(h float64) bool {
	return p.empty() || p.used+h <= p.avail
}

func (p *paginator) place(b Block) {
	cur := &p.pages[len(p.pages)-1]
	cur.Blocks = append(cur.Blocks, b)
	p.used += b.Height
}

// Stamp numbers the pages. It must run after pagination is complete since
// the total is only known then.
func Stamp(pages []Page) []Page {
	out := make([]Page, len(pages))
	for i, pg := range pages {
		pg.Number = i + 1
		pg.Total = len(pages)
		out[i] = pg
	}
	return out
}
