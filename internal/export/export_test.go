package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aidanlsb/magpie/internal/model"
)

func sampleResults() *model.ResultSet {
	return &model.ResultSet{
		View:  "Open projects",
		Total: 3,
		Notes: []model.EvaluatedNote{
			{Path: "a.md", Properties: map[string]interface{}{"name": "alpha", "priority": 5, "due": nil}},
			{Path: "b.md", Properties: map[string]interface{}{"name": "beta", "priority": 1, "due": "2026-02-01"}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
		ok    bool
	}{
		{"csv", FormatCSV, true},
		{"CSV", FormatCSV, true},
		{"json", FormatJSON, true},
		{"markdown", FormatMarkdown, true},
		{"md", FormatMarkdown, true},
		{"xml", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseFormat(%q) should fail", tt.input)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := Render(sampleResults(), FormatCSV, []string{"name", "priority", "due"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "name,priority,due\n" +
		"alpha,5,\n" +
		"beta,1,2026-02-01\n"
	if out != want {
		t.Errorf("csv = %q, want %q", out, want)
	}
}

func TestRenderCSVEscaping(t *testing.T) {
	rs := &model.ResultSet{
		View:  "v",
		Total: 1,
		Notes: []model.EvaluatedNote{
			{Properties: map[string]interface{}{
				"tricky":    `a,"b"`,
				"multiline": "line1\nline2",
				"plain":     "simple",
			}},
		},
	}
	out, err := Render(rs, FormatCSV, []string{"tricky", "multiline", "plain"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.SplitN(out, "\n", 2)
	if lines[0] != "tricky,multiline,plain" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(out, `"a,""b"""`) {
		t.Errorf("comma+quote value not escaped: %q", out)
	}
	if !strings.Contains(out, "\"line1\nline2\"") {
		t.Errorf("newline value not quoted: %q", out)
	}
	if strings.Contains(out, `"simple"`) {
		t.Errorf("plain ASCII value should not be quoted: %q", out)
	}
}

func TestRenderCSVInfersColumns(t *testing.T) {
	out, err := Render(sampleResults(), FormatCSV, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Inferred columns come from the first result, sorted.
	if !strings.HasPrefix(out, "due,name,priority\n") {
		t.Errorf("csv = %q", out)
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(sampleResults(), FormatJSON, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["name"] != "alpha" || rows[1]["priority"] != float64(1) {
		t.Errorf("rows = %v", rows)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(sampleResults(), FormatMarkdown, []string{"name", "priority"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# Base Export: Open projects\n\n" +
		"Total results: 3\n\n" +
		"| name | priority |\n" +
		"| --- | --- |\n" +
		"| alpha | 5 |\n" +
		"| beta | 1 |\n"
	if out != want {
		t.Errorf("markdown = %q, want %q", out, want)
	}
}

func TestRenderMarkdownEscapesPipes(t *testing.T) {
	rs := &model.ResultSet{
		View:  "v",
		Total: 1,
		Notes: []model.EvaluatedNote{
			{Properties: map[string]interface{}{"title": "a | b"}},
		},
	}
	out, err := Render(rs, FormatMarkdown, []string{"title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `a \| b`) {
		t.Errorf("pipe not escaped: %q", out)
	}
}

func TestRenderMarkdownEmptyResults(t *testing.T) {
	rs := &model.ResultSet{View: "empty", Total: 0}
	out, err := Render(rs, FormatMarkdown, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Total results: 0") {
		t.Errorf("markdown = %q", out)
	}
	if strings.Contains(out, "|") {
		t.Errorf("empty result set should not render a table: %q", out)
	}
}

func TestFilename(t *testing.T) {
	got := Filename("My Projects", "Open Tasks!", FormatCSV)
	if got != "my-projects-open-tasks.csv" {
		t.Errorf("filename = %q", got)
	}
	if got := Filename("b", "v", FormatMarkdown); got != "b-v.md" {
		t.Errorf("filename = %q", got)
	}
}
