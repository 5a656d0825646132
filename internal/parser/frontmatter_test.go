package parser

import (
	"testing"
	"time"
)

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantNil    bool
		wantFields map[string]interface{}
	}{
		{
			name:    "no frontmatter",
			content: "# Just a heading\n\nBody text.",
			wantNil: true,
		},
		{
			name:    "unclosed frontmatter",
			content: "---\nstatus: open\nno closing",
			wantNil: true,
		},
		{
			name:    "simple fields",
			content: "---\nstatus: open\npriority: 3\n---\n\nBody.",
			wantFields: map[string]interface{}{
				"status":   "open",
				"priority": 3,
			},
		},
		{
			name:       "empty frontmatter",
			content:    "---\n---\nBody.",
			wantFields: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, err := ParseFrontmatter(tt.content)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if fm != nil {
					t.Fatalf("expected nil frontmatter, got %+v", fm)
				}
				return
			}
			if fm == nil {
				t.Fatal("expected frontmatter, got nil")
			}
			if len(fm.Fields) != len(tt.wantFields) {
				t.Fatalf("fields = %+v, want %+v", fm.Fields, tt.wantFields)
			}
			for k, want := range tt.wantFields {
				if got := fm.Fields[k]; got != want {
					t.Errorf("field %s = %v (%T), want %v (%T)", k, got, got, want, want)
				}
			}
		})
	}
}

func TestParseFrontmatterDates(t *testing.T) {
	fm, err := ParseFrontmatter("---\ndue: 2025-06-15\n---\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	due, ok := fm.Fields["due"].(time.Time)
	if !ok {
		t.Fatalf("due = %T, want time.Time", fm.Fields["due"])
	}
	if due.Format("2006-01-02") != "2025-06-15" {
		t.Errorf("due = %v", due)
	}
	if due.Hour() != 0 || due.Minute() != 0 {
		t.Errorf("date-only value not truncated to midnight: %v", due)
	}
}

func TestParseFrontmatterLists(t *testing.T) {
	fm, err := ParseFrontmatter("---\ntags:\n  - project\n  - active\n---\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags, ok := fm.Fields["tags"].([]interface{})
	if !ok {
		t.Fatalf("tags = %T, want []interface{}", fm.Fields["tags"])
	}
	if len(tags) != 2 || tags[0] != "project" || tags[1] != "active" {
		t.Errorf("tags = %v", tags)
	}
}

func TestParseFrontmatterMalformed(t *testing.T) {
	_, err := ParseFrontmatter("---\n: : :\n\t bad yaml [\n---\n")
	if err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestBody(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"with frontmatter", "---\nstatus: open\n---\nThe body.", "The body."},
		{"without frontmatter", "Just text.", "Just text."},
		{"unclosed", "---\nstatus: open\nrest", "---\nstatus: open\nrest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Body(tt.content); got != tt.want {
				t.Errorf("Body() = %q, want %q", got, tt.want)
			}
		})
	}
}
