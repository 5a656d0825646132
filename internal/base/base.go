// Package base defines and loads base files: the declarative query
// definitions magpie runs against a vault.
//
// A base file is YAML:
//
//	filters:            # global filter tree, applies to every view
//	  and:
//	    - 'status != "archived"'
//	formulas:           # named derived properties
//	  double: "number(note.priority) * 2"
//	views:
//	  - name: Open projects
//	    kind: table
//	    filters: 'status == "open"'
//	    order: [priority desc, file.name]
//	    limit: 20
//	    columns: [file.name, status, formula.double]
package base

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/magpie/internal/filter"
)

// ViewKind is the presentation style of a view.
type ViewKind string

const (
	KindTable ViewKind = "table"
	KindCards ViewKind = "cards"
	KindList  ViewKind = "list"
)

// SortKey is one entry of a view's order list: a property path plus
// direction.
type SortKey struct {
	Path       string
	Descending bool
}

// UnmarshalYAML accepts "path", "path asc" or "path desc".
func (s *SortKey) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	fields := strings.Fields(raw)
	switch len(fields) {
	case 1:
		s.Path = fields[0]
	case 2:
		s.Path = fields[0]
		switch strings.ToLower(fields[1]) {
		case "asc":
		case "desc":
			s.Descending = true
		default:
			return fmt.Errorf("sort direction must be asc or desc, got %q", fields[1])
		}
	default:
		return fmt.Errorf("invalid sort key %q", raw)
	}
	return nil
}

// View is a named configuration applied on top of a base's global filters.
// Immutable once loaded.
type View struct {
	Name    string       `yaml:"name"`
	Kind    ViewKind     `yaml:"kind"`
	Filters *filter.Node `yaml:"filters"`
	Order   []SortKey    `yaml:"order"`
	Limit   int          `yaml:"limit"`
	Columns []string     `yaml:"columns"`

	// IncludeContent requests note bodies in the result. Off by default:
	// bodies can be large and most consumers need only properties.
	IncludeContent bool `yaml:"include_content"`
}

// Base is a loaded base file: global filters, formulas and views.
type Base struct {
	// Name is the base's display name, defaulting to the file stem.
	Name string `yaml:"name"`

	// Filters apply to every view of this base.
	Filters *filter.Node `yaml:"filters"`

	// Formulas are named expressions available as formula.<name>.
	Formulas map[string]string `yaml:"formulas"`

	// Views are the base's view definitions. At least one is required.
	Views []View `yaml:"views"`
}

// ParseError reports a structurally invalid base definition. It is fatal
// to the query: nothing is evaluated for a base that fails to load.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid base: %s", e.Reason)
	}
	return fmt.Sprintf("invalid base %s: %s", e.Path, e.Reason)
}

// Parse decodes and validates a base definition from YAML.
func Parse(data []byte, path string) (*Base, error) {
	var b Base
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}
	if err := b.validate(); err != nil {
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}
	if b.Name == "" {
		b.Name = stem(path)
	}
	return &b, nil
}

func (b *Base) validate() error {
	if len(b.Views) == 0 {
		return fmt.Errorf("at least one view is required")
	}
	seen := make(map[string]struct{}, len(b.Views))
	for i := range b.Views {
		v := &b.Views[i]
		if v.Name == "" {
			return fmt.Errorf("view %d: name is required", i)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("duplicate view name %q", v.Name)
		}
		seen[v.Name] = struct{}{}
		switch v.Kind {
		case "":
			v.Kind = KindTable
		case KindTable, KindCards, KindList:
		default:
			return fmt.Errorf("view %q: unknown kind %q", v.Name, v.Kind)
		}
		if v.Limit < 0 {
			return fmt.Errorf("view %q: limit must not be negative", v.Name)
		}
	}
	return nil
}

// View returns the named view, or the first view when name is empty.
func (b *Base) View(name string) (*View, bool) {
	if name == "" {
		if len(b.Views) == 0 {
			return nil, false
		}
		return &b.Views[0], true
	}
	for i := range b.Views {
		if b.Views[i].Name == name {
			return &b.Views[i], true
		}
	}
	return nil, false
}

func stem(path string) string {
	base := path
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".yaml")
	base = strings.TrimSuffix(base, ".yml")
	base = strings.TrimSuffix(base, ".base")
	return base
}
