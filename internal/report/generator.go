package report

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageHeight      = 297.0
	marginLeft      = 10.0
	marginTop       = 15.0
	bottomThreshold = pageHeight - 20.0
	rowHeight       = 7.0
	summaryHeight   = 4 * rowHeight
	chartWidth      = 120.0
	chartHeight     = chartWidth / 2 // 600x300 PNG

	// MaxDescriptionChars is how much of a description fits in its column.
	MaxDescriptionChars = 20

	timestampLayout = "02/01/2006 15:04"
	chartImageName  = "summary-chart"
)

// column is one table column: header text, width and alignment.
type column struct {
	title string
	width float64
	align string
}

var columns = []column{
	{"ID", 14, "R"},
	{"Date", 32, "L"},
	{"Type", 22, "L"},
	{"Category", 40, "L"},
	{"Description", 50, "L"},
	{"Value", 32, "R"},
}

// Document is a rendered report.
type Document struct {
	Bytes   []byte
	Pages   int
	Summary Summary
}

// Generator renders PDF statements.
type Generator struct {
	chart bool
	now   func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithChart enables or disables the income/expense bar chart.
func WithChart(enabled bool) Option {
	return func(g *Generator) {
		g.chart = enabled
	}
}

// WithClock replaces the clock used for the "generated at" line.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator creates a Generator. The chart is enabled by default.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		chart: true,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders txs, in the given order, for ownerName. An empty
// periodLabel is printed as "All history". Zero transactions produce a
// single page with zero totals.
func (g *Generator) Generate(txs []*domain.Transaction, ownerName, periodLabel string) (*Document, error) {
	summary := Summarize(txs)
	if periodLabel == "" {
		periodLabel = "All history"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Cash statement", true)
	pdf.SetCreator("caixa", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Cash statement"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Owner: "+ownerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Period: "+periodLabel), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated at: "+g.now().UTC().Format(timestampLayout)+" UTC", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	setBodyFont(pdf)
	for _, t := range txs {
		if pdf.GetY()+rowHeight > bottomThreshold {
			pdf.AddPage()
			setBodyFont(pdf)
		}

		cells := []string{
			fmt.Sprint(t.ID),
			t.CreatedAt.UTC().Format(timestampLayout),
			string(t.Type),
			tr(truncate(t.Category, MaxDescriptionChars*2)),
			tr(truncate(t.Description, MaxDescriptionChars)),
			t.Amount.StringFixed(domain.AmountScale),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, rowHeight, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.GetY()+rowHeight+summaryHeight > bottomThreshold {
		pdf.AddPage()
	}
	pdf.Ln(rowHeight / 2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, rowHeight, "Summary", "", 1, "L", false, 0, "")
	setBodyFont(pdf)
	pdf.CellFormat(0, rowHeight, "Total income: "+summary.TotalIncome.StringFixed(domain.AmountScale), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, rowHeight, "Total expense: "+summary.TotalExpense.StringFixed(domain.AmountScale), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, rowHeight, "Net: "+summary.Net.StringFixed(domain.AmountScale), "", 1, "L", false, 0, "")

	if g.chart && chartable(summary) {
		png, err := renderChart(summary)
		if err != nil {
			return nil, err
		}
		if pdf.GetY()+rowHeight+chartHeight > bottomThreshold {
			pdf.AddPage()
		}
		pdf.Ln(rowHeight / 2)

		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(chartImageName, opts, bytes.NewReader(png))
		pdf.ImageOptions(chartImageName, marginLeft, pdf.GetY(), chartWidth, 0, true, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	return &Document{
		Bytes:   buf.Bytes(),
		Pages:   pdf.PageCount(),
		Summary: summary,
	}, nil
}

func setBodyFont(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "", 9)
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
