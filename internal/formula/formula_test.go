package formula

import (
	"testing"

	"github.com/aidanlsb/magpie/internal/expr"
)

func testContext(priority interface{}) *expr.Context {
	fm := map[string]interface{}{"priority": priority}
	return &expr.Context{Note: fm, Frontmatter: fm}
}

func TestEvaluateAll(t *testing.T) {
	e := NewEngine()
	ctx := testContext("4")

	values, errs := e.EvaluateAll("notes/a.md", map[string]string{
		"double": "number(note.priority) * 2",
		"label":  `"p" + priority`,
	}, ctx)

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if values["double"] != float64(8) {
		t.Errorf("double = %v, want 8", values["double"])
	}
	if values["label"] != "p4" {
		t.Errorf("label = %v, want p4", values["label"])
	}
}

func TestEvaluateAllFailureIsolation(t *testing.T) {
	e := NewEngine()
	ctx := testContext(2)

	values, errs := e.EvaluateAll("notes/a.md", map[string]string{
		"good": "priority + 1",
		"bad":  "bogus(priority)",
	}, ctx)

	if values["good"] != float64(3) {
		t.Errorf("good = %v, want 3", values["good"])
	}
	if v, ok := values["bad"]; !ok || v != nil {
		t.Errorf("bad = %v (present=%v), want nil present", v, ok)
	}
	if len(errs) != 1 || errs["bad"] == nil {
		t.Errorf("errs = %v, want one error for bad", errs)
	}
}

func TestMemoization(t *testing.T) {
	e := NewEngine()

	// First evaluation caches by (path, expression text).
	v, err := e.Evaluate("notes/a.md", "priority * 2", testContext(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != float64(6) {
		t.Fatalf("v = %v, want 6", v)
	}

	// Same path and expression: cached value wins even though the context
	// changed (cache keys are content-addressed per note).
	v, err = e.Evaluate("notes/a.md", "priority * 2", testContext(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != float64(6) {
		t.Errorf("v = %v, want cached 6", v)
	}

	// Different note path misses the cache.
	v, err = e.Evaluate("notes/b.md", "priority * 2", testContext(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != float64(200) {
		t.Errorf("v = %v, want 200", v)
	}

	if e.Len() != 3 {
		t.Errorf("cache size = %d, want 3", e.Len())
	}
}

func TestSharedExpressionTextSharesCache(t *testing.T) {
	e := NewEngine()
	ctx := testContext(5)

	values, errs := e.EvaluateAll("notes/a.md", map[string]string{
		"a": "priority * 2",
		"b": "priority * 2",
	}, ctx)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if values["a"] != values["b"] {
		t.Errorf("a = %v, b = %v, want identical", values["a"], values["b"])
	}
	// Two formulas, one expression text: one cache entry.
	if e.Len() != 1 {
		t.Errorf("cache size = %d, want 1", e.Len())
	}
}

func TestClearPath(t *testing.T) {
	e := NewEngine()

	if _, err := e.Evaluate("notes/a.md", "priority", testContext(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Evaluate("notes/b.md", "priority", testContext(2)); err != nil {
		t.Fatal(err)
	}

	e.ClearPath("notes/a.md")
	if e.Len() != 1 {
		t.Fatalf("cache size = %d, want 1 after ClearPath", e.Len())
	}

	// a re-evaluates fresh, b stays cached.
	v, _ := e.Evaluate("notes/a.md", "priority", testContext(9))
	if v != 9 {
		t.Errorf("a = %v, want 9", v)
	}
	v, _ = e.Evaluate("notes/b.md", "priority", testContext(9))
	if v != 2 {
		t.Errorf("b = %v, want cached 2", v)
	}

	e.Clear()
	if e.Len() != 0 {
		t.Errorf("cache size = %d, want 0 after Clear", e.Len())
	}
}
