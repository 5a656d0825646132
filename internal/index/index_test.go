package index

import (
	"errors"
	"testing"

	"github.com/aidanlsb/magpie/internal/model"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestPutGet(t *testing.T) {
	idx := openTestIndex(t)

	meta := model.Metadata{Tags: []string{"project", "2024"}, Links: []string{"other"}}
	if err := idx.Put("a.md", 100, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := idx.Get("a.md", 100)
	if !ok {
		t.Fatal("Get should hit")
	}
	if len(got.Tags) != 2 || got.Tags[0] != "project" {
		t.Errorf("tags = %v", got.Tags)
	}
	if len(got.Links) != 1 || got.Links[0] != "other" {
		t.Errorf("links = %v", got.Links)
	}
}

func TestGetStaleMtime(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Put("a.md", 100, model.Metadata{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := idx.Get("a.md", 200); ok {
		t.Error("mismatched mtime should miss")
	}
	if _, ok := idx.Get("missing.md", 100); ok {
		t.Error("unknown path should miss")
	}
}

func TestPutReplaces(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Put("a.md", 100, model.Metadata{Tags: []string{"old"}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Put("a.md", 200, model.Metadata{Tags: []string{"new"}}); err != nil {
		t.Fatal(err)
	}

	got, ok := idx.Get("a.md", 200)
	if !ok || len(got.Tags) != 1 || got.Tags[0] != "new" {
		t.Errorf("got = %v, %v", got, ok)
	}
}

func TestNilSlicesRoundTripEmpty(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Put("a.md", 1, model.Metadata{}); err != nil {
		t.Fatal(err)
	}
	got, ok := idx.Get("a.md", 1)
	if !ok {
		t.Fatal("Get should hit")
	}
	if got.Tags == nil || got.Links == nil {
		t.Errorf("nil slices should come back empty, got %+v", got)
	}
}

func TestRemoveAndPaths(t *testing.T) {
	idx := openTestIndex(t)

	for _, p := range []string{"b.md", "a.md", "c.md"} {
		if err := idx.Put(p, 1, model.Metadata{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := idx.Remove("b.md"); err != nil {
		t.Fatal(err)
	}
	if err := idx.Remove("absent.md"); err != nil {
		t.Errorf("removing absent path should not error: %v", err)
	}

	paths, err := idx.Paths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || paths[0] != "a.md" || paths[1] != "c.md" {
		t.Errorf("paths = %v", paths)
	}
}

func TestPrune(t *testing.T) {
	idx := openTestIndex(t)

	for _, p := range []string{"keep.md", "drop1.md", "drop2.md"} {
		if err := idx.Put(p, 1, model.Metadata{}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := idx.Prune(map[string]struct{}{"keep.md": {}})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	paths, _ := idx.Paths()
	if len(paths) != 1 || paths[0] != "keep.md" {
		t.Errorf("paths = %v", paths)
	}
}

func TestRebuildLock(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireRebuildLock(dir)
	if err != nil {
		t.Fatalf("AcquireRebuildLock: %v", err)
	}

	if _, err := AcquireRebuildLock(dir); !errors.Is(err, ErrLocked) {
		t.Errorf("second acquire = %v, want ErrLocked", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	lock2, err := AcquireRebuildLock(dir)
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	lock2.Release()
}
