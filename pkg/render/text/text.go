// Package text renders packed grids for terminals with lipgloss.
//
// Every tile becomes a bordered cell of fixed size; banner tiles get a thick
// border and a marker so the row layout stays readable without images.
package text

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/feedwatch/sourcegrid/pkg/render"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

const (
	// DefaultCellWidth is the inner width of a cell in terminal columns.
	DefaultCellWidth = 28

	// BannerMark prefixes the title of banner tiles.
	BannerMark = "▣"

	cellLines = 5
)

var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")

	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleCompany = lipgloss.NewStyle().Foreground(colorGray)
	styleDate    = lipgloss.NewStyle().Foreground(colorDim)
)

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	cellWidth int
	header    bool
}

// WithCellWidth sets the inner width of each cell.
func WithCellWidth(n int) Option {
	return func(r *renderer) {
		if n > 0 {
			r.cellWidth = n
		}
	}
}

// WithoutHeader omits the "Showing a-b of n" line.
func WithoutHeader() Option { return func(r *renderer) { r.header = false } }

// CellWidthFor returns the widest cell that fits columns cells into a
// terminal of termWidth columns, bounded below by 10.
func CellWidthFor(termWidth, columns int) int {
	if columns < 1 {
		columns = 1
	}
	// two border columns per cell
	return max(termWidth/columns-2, 10)
}

// Render draws g row by row. Tiles keep their packed order left to right.
func Render(g render.Grid, opts ...Option) string {
	r := renderer{cellWidth: DefaultCellWidth, header: true}
	for _, opt := range opts {
		opt(&r)
	}

	var b strings.Builder
	if r.header {
		b.WriteString(styleHeader.Render(fmt.Sprintf("%s · %d columns", g.Window, g.Columns)))
		b.WriteString("\n")
	}
	if len(g.Rows) == 0 {
		b.WriteString(styleCompany.Render("No sources."))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([]string, 0, len(g.Rows))
	for _, row := range g.Rows {
		cells := make([]string, 0, len(row))
		for _, s := range row {
			cells = append(cells, r.cell(s))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")
	return b.String()
}

func (r renderer) cell(s rss.Source) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorDim).
		Width(r.cellWidth).
		Height(cellLines).
		MaxHeight(cellLines + 2)

	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = s.URL
	}
	if s.HasBanner() {
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(colorCyan)
		title = BannerMark + " " + title
	}

	lines := []string{
		styleTitle.Render(truncate(fmt.Sprintf("#%d %s", s.ID, title), r.cellWidth*2)),
	}
	if c := s.Companies(); c != "" {
		lines = append(lines, styleCompany.Render(truncate(c, r.cellWidth)))
	}
	if t, ok := s.Published(); ok {
		lines = append(lines, styleDate.Render(t.Format("2006-01-02 15:04")))
	}
	return style.Render(strings.Join(lines, "\n"))
}

// truncate shortens s to n runes, ending with an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
