// Package formula evaluates named formula expressions per note, with
// memoization keyed by (note path, expression text).
package formula

import (
	"sync"

	"github.com/aidanlsb/magpie/internal/expr"
)

// Engine owns the formula cache. A fresh engine per query is valid; a
// longer-lived engine must be invalidated via Clear/ClearPath when notes
// change. The cache is content-addressed, so concurrent writers racing to
// populate the same key compute the same value; the mutex only guards the
// map itself.
type Engine struct {
	mu    sync.Mutex
	cache map[cacheKey]interface{}
}

type cacheKey struct {
	path string
	expr string
}

// NewEngine creates an empty formula engine.
func NewEngine() *Engine {
	return &Engine{cache: make(map[cacheKey]interface{})}
}

// Evaluate evaluates one formula expression for the note identified by
// path, consulting the cache first. Evaluation failure yields nil and the
// error; the nil result is not cached so a later fix is picked up.
func (e *Engine) Evaluate(path, expression string, ctx *expr.Context) (interface{}, error) {
	key := cacheKey{path: path, expr: expression}

	e.mu.Lock()
	if v, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()

	v, err := expr.Evaluate(expression, ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[key] = v
	e.mu.Unlock()
	return v, nil
}

// EvaluateAll evaluates a named set of formulas for one note. A formula
// that fails evaluates to nil; the others still run. The returned errs map
// holds the failure per formula name for diagnostics.
func (e *Engine) EvaluateAll(path string, defs map[string]string, ctx *expr.Context) (values map[string]interface{}, errs map[string]error) {
	values = make(map[string]interface{}, len(defs))
	for name, expression := range defs {
		v, err := e.Evaluate(path, expression, ctx)
		if err != nil {
			values[name] = nil
			if errs == nil {
				errs = make(map[string]error)
			}
			errs[name] = err
			continue
		}
		values[name] = v
	}
	return values, errs
}

// Clear drops the entire cache.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[cacheKey]interface{})
}

// ClearPath drops all cached values for one note path. Called when a
// change notification reports that the note was modified.
func (e *Engine) ClearPath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.cache {
		if key.path == path {
			delete(e.cache, key)
		}
	}
}

// Len returns the number of cached entries.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}
