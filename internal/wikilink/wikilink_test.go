package wikilink

import "testing"

func TestParseExact(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTarget  string
		wantDisplay string
		wantOK      bool
	}{
		{"simple", "[[projects/website]]", "projects/website", "", true},
		{"display", "[[people/alice|Alice]]", "people/alice", "Alice", true},
		{"whitespace", "  [[ notes/x ]]  ", "notes/x", "", true},
		{"not a link", "projects/website", "", "", false},
		{"empty target", "[[]]", "", "", false},
		{"nested brackets", "[[[ref]]]", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, display, ok := ParseExact(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if target != tt.wantTarget {
				t.Errorf("target = %q, want %q", target, tt.wantTarget)
			}
			if display != tt.wantDisplay {
				t.Errorf("display = %q, want %q", display, tt.wantDisplay)
			}
		})
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"[[projects/website]]", "projects/website"},
		{"[[people/alice|Alice]]", "people/alice"},
		{"projects/website", "projects/website"},
		{"  plain  ", "plain"},
	}

	for _, tt := range tests {
		if got := Strip(tt.input); got != tt.want {
			t.Errorf("Strip(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindAll(t *testing.T) {
	text := "See [[projects/website]] and [[people/alice|Alice]] for details."
	matches := FindAll(text)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Target != "projects/website" {
		t.Errorf("first target = %q", matches[0].Target)
	}
	if matches[1].Target != "people/alice" || matches[1].Display != "Alice" {
		t.Errorf("second match = %+v", matches[1])
	}
}
