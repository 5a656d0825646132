// Package export renders a result set as CSV, JSON or a Markdown table.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"github.com/aidanlsb/magpie/internal/expr"
	"github.com/aidanlsb/magpie/internal/model"
)

// Format selects an export serialization.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or markdown)", s)
}

// Extension returns the file extension for a format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Render serializes a result set. Columns come from the caller (usually
// the view definition); when empty they are inferred from the first
// result's properties, sorted for stable output.
func Render(rs *model.ResultSet, format Format, columns []string) (string, error) {
	cols := resolveColumns(rs, columns)
	switch format {
	case FormatCSV:
		return renderCSV(rs, cols)
	case FormatJSON:
		return renderJSON(rs)
	case FormatMarkdown:
		return renderMarkdown(rs, cols), nil
	}
	return "", fmt.Errorf("unknown export format %q", format)
}

// Filename builds a default export file name from the base and view names.
func Filename(baseName, viewName string, format Format) string {
	return fmt.Sprintf("%s-%s.%s", slug.Make(baseName), slug.Make(viewName), format.Extension())
}

func resolveColumns(rs *model.ResultSet, columns []string) []string {
	if len(columns) > 0 {
		return columns
	}
	if len(rs.Notes) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rs.Notes[0].Properties))
	for k := range rs.Notes[0].Properties {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// renderCSV writes a header row plus one row per result. Fields holding a
// comma, quote or newline are quote-wrapped with internal quotes doubled;
// null values become empty fields.
func renderCSV(rs *model.ResultSet, cols []string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(cols); err != nil {
		return "", err
	}
	row := make([]string, len(cols))
	for _, n := range rs.Notes {
		for i, col := range cols {
			row[i] = expr.Stringify(n.Properties[col])
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func renderJSON(rs *model.ResultSet) (string, error) {
	rows := make([]map[string]interface{}, 0, len(rs.Notes))
	for _, n := range rs.Notes {
		rows = append(rows, n.Properties)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func renderMarkdown(rs *model.ResultSet, cols []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Base Export: %s\n\n", rs.View)
	fmt.Fprintf(&b, "Total results: %d\n\n", rs.Total)

	if len(cols) == 0 {
		return b.String()
	}

	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, n := range rs.Notes {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = escapeMarkdownCell(expr.Stringify(n.Properties[col]))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// escapeMarkdownCell keeps pipe characters and newlines from breaking
// table layout.
func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
