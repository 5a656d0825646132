package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aidanlsb/magpie/internal/expr"
	"github.com/aidanlsb/magpie/internal/model"
)

// Alignment represents column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// ColumnDef defines a column in a ResultsTable.
type ColumnDef struct {
	Name       string         // Header label
	WidthRatio float64        // Proportion of available width (0.0-1.0), 0 means fixed width
	MinWidth   int            // Minimum width in characters
	MaxWidth   int            // Maximum width (0 = no limit)
	Align      Alignment      // Text alignment
	Style      lipgloss.Style // Style to apply to cells in this column
}

// ResultsTable renders query results as a minimal bordered table.
type ResultsTable struct {
	display *DisplayContext
	columns []ColumnDef
	rows    [][]string
}

// NewResultsTable creates a ResultsTable with the given display context
// and column layout.
func NewResultsTable(display *DisplayContext, columns []ColumnDef) *ResultsTable {
	return &ResultsTable{
		display: display,
		columns: columns,
	}
}

// AddRow adds a row of cell values.
func (t *ResultsTable) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// calculateWidths computes column widths based on terminal size and
// column definitions.
func (t *ResultsTable) calculateWidths() []int {
	widths := make([]int, len(t.columns))

	var totalRatio float64
	var fixedWidth int
	const columnPadding = 2

	for i, col := range t.columns {
		if col.WidthRatio == 0 {
			widths[i] = col.MinWidth
			if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
				widths[i] = col.MaxWidth
			}
			fixedWidth += widths[i]
		} else {
			totalRatio += col.WidthRatio
		}
	}

	totalPadding := (len(t.columns) - 1) * columnPadding
	leftMargin := 2
	available := t.display.TermWidth - fixedWidth - totalPadding - leftMargin
	if available < 0 {
		available = 0
	}

	for i, col := range t.columns {
		if col.WidthRatio > 0 {
			ratio := col.WidthRatio / totalRatio
			width := int(float64(available) * ratio)
			if width < col.MinWidth {
				width = col.MinWidth
			}
			if col.MaxWidth > 0 && width > col.MaxWidth {
				width = col.MaxWidth
			}
			widths[i] = width
		}
	}
	return widths
}

// Render generates the table output, header row first.
func (t *ResultsTable) Render() string {
	if len(t.rows) == 0 {
		return ""
	}

	widths := t.calculateWidths()

	header := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = col.Name
	}

	tbl := table.New().
		Border(lipgloss.Border{
			Top:    "─",
			Bottom: "─",
			Left:   "",
			Right:  "",
			Middle: "─",
		}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		BorderHeader(true).
		BorderStyle(Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col >= len(t.columns) {
				return lipgloss.NewStyle()
			}

			colDef := t.columns[col]
			style := colDef.Style
			if row == table.HeaderRow {
				style = Bold
			}
			style = style.Width(widths[col])

			switch colDef.Align {
			case AlignRight:
				style = style.Align(lipgloss.Right)
			case AlignCenter:
				style = style.Align(lipgloss.Center)
			default:
				style = style.Align(lipgloss.Left)
			}

			if col < len(t.columns)-1 {
				style = style.PaddingRight(2)
			}
			return style
		}).
		Headers(header...).
		Rows(t.rows...)

	return tbl.Render()
}

// RenderResultsTable renders a result set as a table over the given
// columns. Column widths share the terminal evenly within bounds.
func RenderResultsTable(display *DisplayContext, rs *model.ResultSet, columns []string) string {
	if len(rs.Notes) == 0 {
		return Hint("no results")
	}

	defs := make([]ColumnDef, len(columns))
	ratio := 1.0 / float64(len(columns))
	for i, col := range columns {
		defs[i] = ColumnDef{
			Name:       col,
			WidthRatio: ratio,
			MinWidth:   8,
			MaxWidth:   60,
		}
	}

	t := NewResultsTable(display, defs)
	for _, note := range rs.Notes {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = TruncateWithEllipsis(expr.Stringify(note.Properties[col]), 60)
		}
		t.AddRow(cells...)
	}
	return t.Render()
}

// RenderResultsList renders a result set as a flat list of note paths.
func RenderResultsList(rs *model.ResultSet) string {
	if len(rs.Notes) == 0 {
		return Hint("no results")
	}
	l := NewList()
	for _, note := range rs.Notes {
		l.Add(Accent.Render(note.Path))
	}
	return l.String()
}

// RenderResultsCards renders a result set as one block per note: the
// path, then the note's properties indented beneath it.
func RenderResultsCards(rs *model.ResultSet, columns []string) string {
	if len(rs.Notes) == 0 {
		return Hint("no results")
	}

	var b strings.Builder
	for i, note := range rs.Notes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(AccentBold.Render(note.Path))
		b.WriteString("\n")
		for _, col := range columns {
			value := expr.Stringify(note.Properties[col])
			if value == "" {
				continue
			}
			fmt.Fprintf(&b, "  %s %s\n", Muted.Render(col+":"), value)
		}
	}
	return b.String()
}

// TruncateWithEllipsis truncates a string to maxLen, adding ellipsis if
// needed. It tries to break at word boundaries.
func TruncateWithEllipsis(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}

	truncated := s[:maxLen-3]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > maxLen/2 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
