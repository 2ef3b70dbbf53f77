package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ContentTypePDF is the media type of rendered documents.
const ContentTypePDF = "application/pdf"

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Renderer turns stamped pages into document bytes.
type Renderer interface {
	Render(ctx context.Context, l Layout, pages []Page) ([]byte, error)
}

// LogoSource supplies the header logo. A nil source draws a placeholder.
type LogoSource func() ([]byte, error)

// FileLogo reads a PNG logo from path on every call.
func FileLogo(path string) LogoSource {
	return func() ([]byte, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read logo: %w", err)
		}
		return b, nil
	}
}

func checkLogo(b []byte) error {
	if !bytes.HasPrefix(b, pngMagic) {
		return errors.New("logo is not a PNG image")
	}
	return nil
}

var (
	headerFill   = &props.Color{Red: 225, Green: 230, Blue: 235}
	donationFill = &props.Color{Red: 232, Green: 245, Blue: 233}
	expenseFill  = &props.Color{Red: 253, Green: 236, Blue: 234}
	mutedText    = &props.Color{Red: 90, Green: 90, Blue: 90}
)

// PDFRenderer draws pages with maroto. Every Page becomes exactly one PDF
// page: the blocks are followed by a filler row and the page footer.
type PDFRenderer struct {
	Geometry Geometry
}

func NewPDFRenderer(g Geometry) *PDFRenderer {
	return &PDFRenderer{Geometry: g}
}

func (r *PDFRenderer) Render(ctx context.Context, l Layout, pages []Page) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Vertical).
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		WithBottomMargin(10).
		Build()

	m := maroto.New(cfg)
	for _, pg := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.AddPages(r.page(l, pg))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func (r *PDFRenderer) page(l Layout, pg Page) core.Page {
	g := r.Geometry
	p := page.New()
	for _, b := range pg.Blocks {
		p.Add(r.block(l, b)...)
	}
	if filler := g.Content - g.Footer - pg.Used(); filler > 0 {
		p.Add(row.New(filler))
	}
	return p.Add(
		row.New(1).Add(line.NewCol(12)),
		row.New(g.Footer-1).Add(
			text.NewCol(12, pg.Footer(), props.Text{Size: 8, Align: align.Right, Top: 2, Color: mutedText}),
		),
	)
}

func (r *PDFRenderer) block(l Layout, b Block) []core.Row {
	g := r.Geometry
	switch b.Kind {
	case BlockHeader:
		return r.header(l.Header)
	case BlockSpacer:
		return []core.Row{row.New(b.Height)}
	case BlockTitle:
		return []core.Row{row.New(b.Height).Add(
			text.NewCol(12, l.Tables[b.Table].Title, props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}),
		)}
	case BlockColumns:
		t := l.Tables[b.Table]
		cols := make([]core.Col, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = cell(c, c.Header, true)
		}
		return []core.Row{row.New(g.Columns).Add(cols...).WithStyle(&props.Cell{BackgroundColor: headerFill})}
	case BlockRow:
		t := l.Tables[b.Table]
		rw := t.Rows[b.Row]
		cols := make([]core.Col, len(t.Columns))
		for i, c := range t.Columns {
			var v string
			if i < len(rw.Cells) {
				v = rw.Cells[i]
			}
			cols[i] = cell(c, v, false)
		}
		out := row.New(g.Row).Add(cols...)
		if fill := toneFill(rw.Tone); fill != nil {
			out = out.WithStyle(&props.Cell{BackgroundColor: fill})
		}
		return []core.Row{out}
	case BlockTotal:
		return []core.Row{row.New(b.Height).Add(
			text.NewCol(12, l.Tables[b.Table].Total, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 3}),
		)}
	}
	return nil
}

func (r *PDFRenderer) header(h Header) []core.Row {
	logo := col.New(3)
	if len(h.Logo) > 0 {
		logo.Add(image.NewFromBytes(h.Logo, extension.Png, props.Rect{Center: true, Percent: 90}))
	} else {
		logo.Add(text.New(h.Initials, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center, Top: 10}))
		logo.WithStyle(&props.Cell{BorderType: border.Full})
	}

	info := col.New(9).Add(text.New(h.Title, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}))
	for i, m := range h.Meta {
		info.Add(text.New(m, props.Text{Size: 9, Align: align.Right, Top: 9 + float64(i)*5, Color: mutedText}))
	}

	return []core.Row{
		row.New(30).Add(logo, info),
		row.New(4).Add(line.NewCol(12)),
		row.New(r.Geometry.Header - 34),
	}
}

func cell(c Column, v string, heading bool) core.Col {
	p := props.Text{Size: 8, Top: 2, Left: 1, Right: 1}
	switch c.Align {
	case AlignRight:
		p.Align = align.Right
	case AlignCenter:
		p.Align = align.Center
	default:
		p.Align = align.Left
	}
	if heading {
		p.Style = fontstyle.Bold
	}
	return col.New(c.Span).Add(text.New(v, p))
}

func toneFill(t Tone) *props.Color {
	switch t {
	case ToneDonation:
		return donationFill
	case ToneExpense:
		return expenseFill
	}
	return nil
}
