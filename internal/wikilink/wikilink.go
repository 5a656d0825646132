// Package wikilink provides canonical parsing/scanning of [[wikilinks]].
//
// Wikilink grammar:
//   [[target]]
//   [[target|display text]]
//
// The target and display text are trimmed of surrounding whitespace. This
// package intentionally does not understand markdown code fences; callers
// decide whether scanning is enabled for a given region.
package wikilink

import (
	"regexp"
	"strings"
)

// Match represents a wikilink found in a string.
type Match struct {
	Target  string
	Display string // empty when no |display part is present
	Start   int
	End     int
}

// re matches [[target]] or [[target|display]].
// The target cannot contain [ or ] to avoid matching nested bracket syntax.
var re = regexp.MustCompile(`\[\[([^\]\[|]+)(?:\|([^\]]+))?\]\]`)

// Strip removes surrounding [[ ]] brackets and any |display suffix from a
// link literal. Plain strings pass through unchanged.
func Strip(s string) string {
	if target, _, ok := ParseExact(s); ok {
		return target
	}
	return strings.TrimSpace(s)
}

// ParseExact parses a string that is exactly a wikilink literal.
func ParseExact(s string) (target, display string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[[") || !strings.HasSuffix(s, "]]") {
		return "", "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "[["), "]]")
	if strings.ContainsAny(inner, "[]") {
		return "", "", false
	}
	parts := strings.SplitN(inner, "|", 2)
	target = strings.TrimSpace(parts[0])
	if target == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		display = strings.TrimSpace(parts[1])
	}
	return target, display, true
}

// FindAll finds all wikilinks in a block of text.
func FindAll(text string) []Match {
	var out []Match
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		target := strings.TrimSpace(text[m[2]:m[3]])
		if target == "" {
			continue
		}
		match := Match{Target: target, Start: m[0], End: m[1]}
		if m[4] >= 0 {
			match.Display = strings.TrimSpace(text[m[4]:m[5]])
		}
		out = append(out, match)
	}
	return out
}
