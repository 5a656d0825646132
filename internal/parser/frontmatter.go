// Package parser handles parsing markdown notes: YAML frontmatter and
// body-level tags and links.
package parser

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/magpie/internal/dates"
)

// Frontmatter represents parsed frontmatter data.
type Frontmatter struct {
	// Fields are the frontmatter key/value pairs.
	Fields map[string]interface{}

	// Raw is the raw frontmatter content.
	Raw string

	// EndLine is the line where frontmatter ends (1-indexed).
	EndLine int
}

// FrontmatterBounds returns the opening and closing frontmatter line indices.
// It only detects frontmatter when the first line is '---'.
// If frontmatter is present but unclosed, endLine is -1.
func FrontmatterBounds(lines []string) (startLine int, endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0, -1, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return 0, i, true
		}
	}

	return 0, -1, true
}

// ParseFrontmatter parses YAML frontmatter from markdown content.
// Returns nil if no frontmatter is found.
func ParseFrontmatter(content string) (*Frontmatter, error) {
	lines := strings.Split(content, "\n")

	_, endLine, ok := FrontmatterBounds(lines)
	if !ok {
		return nil, nil
	}
	if endLine == -1 {
		return nil, nil // No closing ---
	}

	frontmatterContent := strings.Join(lines[1:endLine], "\n")

	var yamlData map[string]interface{}
	if err := yaml.Unmarshal([]byte(frontmatterContent), &yamlData); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter as YAML: %w", err)
	}

	// YAML can decode an empty document (or comments/whitespace only) into a nil map.
	// We still consider this "frontmatter present" because it affects body line offsets.
	if yamlData == nil {
		yamlData = map[string]interface{}{}
	}

	fm := &Frontmatter{
		Raw:     frontmatterContent,
		EndLine: endLine + 1, // +1 for 1-indexed lines
		Fields:  make(map[string]interface{}, len(yamlData)),
	}

	for key, value := range yamlData {
		fm.Fields[key] = normalizeYAMLValue(value)
	}

	return fm, nil
}

// Body returns the markdown content after the frontmatter block.
func Body(content string) string {
	lines := strings.Split(content, "\n")
	_, endLine, ok := FrontmatterBounds(lines)
	if !ok || endLine == -1 {
		return content
	}
	return strings.Join(lines[endLine+1:], "\n")
}

// normalizeYAMLValue converts YAML scalars into the shapes the evaluator
// expects: numbers stay as int/float64, dates stay as time.Time, nested
// maps and sequences are normalized recursively.
func normalizeYAMLValue(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		// YAML parses unquoted dates as time.Time. Keep date-only values
		// truncated so they compare equal to parsed "YYYY-MM-DD" strings.
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return dates.Midnight(v)
		}
		return v
	case []interface{}:
		items := make([]interface{}, 0, len(v))
		for _, item := range v {
			items = append(items, normalizeYAMLValue(item))
		}
		return items
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, item := range v {
			m[k] = normalizeYAMLValue(item)
		}
		return m
	default:
		return value
	}
}
