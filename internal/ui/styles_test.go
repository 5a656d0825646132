package ui

import "testing"

func TestNormalizeAccentColor(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"39", "39", true},
		{"0", "0", true},
		{"255", "255", true},
		{"#a78bfa", "#A78BFA", true},
		{"#A78BFA", "#A78BFA", true},
		{" 39 ", "39", true},
		{"256", "", false},
		{"-1", "", false},
		{"#fff", "", false},
		{"#gggggg", "", false},
		{"purple", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeAccentColor(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("normalizeAccentColor(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestConfigureTheme(t *testing.T) {
	orig := accentColor
	defer func() {
		accentColor = orig
		ConfigureTheme(orig)
	}()

	ConfigureTheme("39")
	if got, ok := AccentColor(); !ok || got != "39" {
		t.Errorf("AccentColor = %q, %v", got, ok)
	}

	// Invalid values keep the current accent.
	ConfigureTheme("not-a-color")
	if got, _ := AccentColor(); got != "39" {
		t.Errorf("invalid accent should be ignored, got %q", got)
	}
}
