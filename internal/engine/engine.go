// Package engine runs base views against a vault store: enumerate notes,
// build per-note evaluation contexts, filter, sort, limit and project.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aidanlsb/magpie/internal/base"
	"github.com/aidanlsb/magpie/internal/dates"
	"github.com/aidanlsb/magpie/internal/expr"
	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/formula"
	"github.com/aidanlsb/magpie/internal/model"
	"github.com/aidanlsb/magpie/internal/props"
)

// Store is the document store collaborator. It must tolerate concurrent
// external mutation: a note may vanish between List and Read.
type Store interface {
	// List enumerates the notes in the vault.
	List(ctx context.Context) ([]model.Note, error)

	// Read returns a note's body content.
	Read(ctx context.Context, path string) (string, error)

	// Metadata returns the derived tags/links snapshot for a note.
	// ok is false when no snapshot is available; callers degrade to empty.
	Metadata(path string) (meta model.Metadata, ok bool)
}

// ErrViewNotFound reports that a requested view name does not exist in the
// base. Fatal: nothing is evaluated.
var ErrViewNotFound = errors.New("view not found")

// Warning is a non-fatal problem encountered while running a query:
// an expression that failed to evaluate, or a note that could not be read.
type Warning struct {
	Path    string
	Message string
}

// Options adjust a single run.
type Options struct {
	// Limit overrides the view's limit when positive.
	Limit int

	// IncludeContent forces note bodies into the result even when the
	// view doesn't request them.
	IncludeContent bool
}

// Runner executes base views. The zero value is not usable; construct
// with New.
type Runner struct {
	store    Store
	formulas *formula.Engine

	// CoerceDateKeys enables the date-like key name heuristic at context
	// build time. On by default; configurable because sort and comparison
	// semantics depend on it.
	CoerceDateKeys bool

	// Now anchors now()/today() for the whole run so every note sees the
	// same clock. Zero means time.Now() at Run entry.
	Now time.Time
}

// New creates a Runner over a store. The formula engine may be shared
// across runs; pass nil to use a fresh private one.
func New(store Store, formulas *formula.Engine) *Runner {
	if formulas == nil {
		formulas = formula.NewEngine()
	}
	return &Runner{store: store, formulas: formulas, CoerceDateKeys: true}
}

// evaluated pairs a note with its built context for the sort/project
// stages.
type evaluated struct {
	note model.Note
	ctx  *expr.Context
}

// Run executes one view of a base and returns the result set.
// Fatal errors (unknown view, enumeration failure) abort; per-note
// evaluation and read failures degrade and are reported as warnings.
func (r *Runner) Run(ctx context.Context, b *base.Base, viewName string, opts Options) (*model.ResultSet, []Warning, error) {
	view, ok := b.View(viewName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrViewNotFound, viewName)
	}

	now := r.Now
	if now.IsZero() {
		now = time.Now()
	}

	notes, err := r.store.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list notes: %w", err)
	}

	var warnings []Warning
	var matched []evaluated

	for _, note := range notes {
		// Scans over large vaults are the main latency source; stay
		// interruptible between notes.
		if err := ctx.Err(); err != nil {
			return nil, warnings, err
		}

		ectx := r.buildContext(note, b.Formulas, now, func(format string, args ...interface{}) {
			warnings = append(warnings, Warning{Path: note.Path, Message: fmt.Sprintf(format, args...)})
		})

		if !filter.Matches(b.Filters, ectx) {
			continue
		}
		if !filter.Matches(view.Filters, ectx) {
			continue
		}
		matched = append(matched, evaluated{note: note, ctx: ectx})
	}

	sortMatched(matched, view.Order)

	total := len(matched)

	limit := view.Limit
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	result := &model.ResultSet{
		Total: total,
		View:  view.Name,
		Notes: make([]model.EvaluatedNote, 0, len(matched)),
	}

	includeContent := view.IncludeContent || opts.IncludeContent
	for _, m := range matched {
		row := project(m, view.Columns)
		if includeContent {
			content, err := r.store.Read(ctx, m.note.Path)
			if err != nil {
				// The note vanished or became unreadable between
				// enumeration and read: skip it, keep the skip observable.
				result.Skipped++
				warnings = append(warnings, Warning{Path: m.note.Path, Message: fmt.Sprintf("read failed: %v", err)})
				continue
			}
			row.Content = content
		}
		result.Notes = append(result.Notes, row)
	}

	return result, warnings, nil
}

// buildContext assembles the evaluation context for one note: file
// properties, date-coerced note properties and formula values.
func (r *Runner) buildContext(note model.Note, formulas map[string]string, now time.Time, diag func(string, ...interface{})) *expr.Context {
	meta, _ := r.store.Metadata(note.Path)

	noteProps := note.Frontmatter
	if r.CoerceDateKeys {
		noteProps = coerceDateKeys(noteProps)
	}
	if noteProps == nil {
		noteProps = map[string]interface{}{}
	}

	ectx := &expr.Context{
		File:        props.Resolve(note, meta),
		Note:        noteProps,
		Frontmatter: note.Frontmatter,
		Now:         now,
		Diag:        diag,
	}
	if ectx.Frontmatter == nil {
		ectx.Frontmatter = map[string]interface{}{}
	}

	// Formula values feed later filter/sort/projection passes. A failing
	// formula is nil and reported, it never aborts the others.
	values, errs := r.formulas.EvaluateAll(note.Path, formulas, ectx)
	ectx.Formula = values
	for name, err := range errs {
		diag("formula %s: %v", name, err)
	}
	return ectx
}

// dateKeyNames are the exact key names coerced in addition to any key
// containing "date".
var dateKeyNames = map[string]struct{}{
	"due":      {},
	"start":    {},
	"end":      {},
	"created":  {},
	"modified": {},
}

// isDateKey applies the date-like key name heuristic.
func isDateKey(key string) bool {
	if strings.Contains(strings.ToLower(key), "date") {
		return true
	}
	_, ok := dateKeyNames[key]
	return ok
}

// coerceDateKeys pre-parses date-like string values into dates. Values
// that don't parse keep their raw string form. Best effort; the original
// map is never mutated.
func coerceDateKeys(fm map[string]interface{}) map[string]interface{} {
	if fm == nil {
		return nil
	}
	out := make(map[string]interface{}, len(fm))
	for key, value := range fm {
		out[key] = value
		if !isDateKey(key) {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		if dates.IsValidDate(s) {
			if t, err := dates.ParseDate(s); err == nil {
				out[key] = t
			}
		} else if dates.IsValidDatetime(s) {
			if t, err := dates.ParseDatetime(s); err == nil {
				out[key] = t
			}
		}
	}
	return out
}

// sortMatched applies a stable multi-key sort. Notes with null on a sort
// key sort after notes with non-null values on that key, regardless of
// the key's direction.
func sortMatched(matched []evaluated, order []base.SortKey) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(matched, func(i, j int) bool {
		for _, key := range order {
			iVal := expr.ResolvePath(key.Path, matched[i].ctx)
			jVal := expr.ResolvePath(key.Path, matched[j].ctx)

			iNil, jNil := iVal == nil, jVal == nil
			if iNil && jNil {
				continue
			}
			if iNil || jNil {
				return jNil // non-null before null, independent of direction
			}

			cmp := expr.Compare(iVal, jVal)
			if cmp == 0 {
				continue
			}
			if key.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// project reduces one evaluated note to a result row. With columns, the
// property map holds exactly those paths, resolved through the evaluator's
// path rules rather than literal key lookup.
func project(m evaluated, columns []string) model.EvaluatedNote {
	row := model.EvaluatedNote{
		Path:        m.note.Path,
		Name:        m.note.Name,
		Frontmatter: m.note.Frontmatter,
		FileProps:   m.ctx.File.Map(),
		Formulas:    m.ctx.Formula,
	}

	if len(columns) > 0 {
		row.Properties = make(map[string]interface{}, len(columns))
		for _, col := range columns {
			row.Properties[col] = expr.ResolvePath(col, m.ctx)
		}
		return row
	}

	row.Properties = make(map[string]interface{}, len(m.ctx.Note)+2)
	for k, v := range m.ctx.Note {
		row.Properties[k] = v
	}
	row.Properties["file"] = row.FileProps
	if len(row.Formulas) > 0 {
		row.Properties["formula"] = row.Formulas
	}
	return row
}
