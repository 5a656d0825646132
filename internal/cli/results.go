// Package cli implements the command-line interface.
// This file defines shared JSON result types for consistent CLI output.
package cli

import (
	"sort"

	"github.com/aidanlsb/magpie/internal/base"
	"github.com/aidanlsb/magpie/internal/model"
)

// NoteResult represents one evaluated note in query results.
// Used by: query, export
type NoteResult struct {
	Path       string                 `json:"path"`
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties"`
	Content    string                 `json:"content,omitempty"`
}

// QueryData is the data payload for query results.
// Used by: query
type QueryData struct {
	Base    string       `json:"base"`
	View    string       `json:"view"`
	Notes   []NoteResult `json:"notes"`
	Total   int          `json:"total"`
	Skipped int          `json:"skipped,omitempty"`
}

// ViewInfo describes one view of a base.
// Used by: views
type ViewInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Limit   int      `json:"limit,omitempty"`
	Columns []string `json:"columns,omitempty"`
}

// buildQueryData converts a result set into the JSON payload shape.
func buildQueryData(b *base.Base, rs *model.ResultSet) *QueryData {
	notes := make([]NoteResult, 0, len(rs.Notes))
	for _, n := range rs.Notes {
		notes = append(notes, NoteResult{
			Path:       n.Path,
			Name:       n.Name,
			Properties: n.Properties,
			Content:    n.Content,
		})
	}
	return &QueryData{
		Base:    b.Name,
		View:    rs.View,
		Notes:   notes,
		Total:   rs.Total,
		Skipped: rs.Skipped,
	}
}

// displayColumns picks the columns for table and card rendering: the
// view's columns when declared, otherwise the first result's property
// keys in sorted order.
func displayColumns(view *base.View, rs *model.ResultSet) []string {
	if len(view.Columns) > 0 {
		return view.Columns
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
