// Package vault is the filesystem-backed document store: it enumerates
// the markdown notes of a vault directory, parses their frontmatter and
// derives tag/link metadata, caching the derived part in the index.
package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aidanlsb/magpie/internal/index"
	"github.com/aidanlsb/magpie/internal/model"
	"github.com/aidanlsb/magpie/internal/parser"
)

// ignoredDirs are never descended into while walking a vault.
var ignoredDirs = map[string]struct{}{
	index.DirName:  {},
	".git":         {},
	".trash":       {},
	".obsidian":    {},
	"node_modules": {},
}

// Vault reads notes from a directory tree. An optional index caches
// derived metadata across processes; without one everything is computed
// per run.
type Vault struct {
	path string
	idx  *index.Index

	mu   sync.RWMutex
	meta map[string]model.Metadata
}

// Open opens a vault rooted at path. The index may be nil.
func Open(path string, idx *index.Index) (*Vault, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", path)
	}
	return &Vault{
		path: path,
		idx:  idx,
		meta: make(map[string]model.Metadata),
	}, nil
}

// Path returns the vault's root directory.
func (v *Vault) Path() string {
	return v.path
}

// List enumerates the vault's markdown notes, sorted by path. Notes that
// fail to read or parse are skipped; a vanished note must not fail the
// whole enumeration.
func (v *Vault) List(ctx context.Context) ([]model.Note, error) {
	paths, err := v.walkPaths()
	if err != nil {
		return nil, err
	}

	notes := make([]model.Note, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		note, ok := v.loadNote(rel)
		if !ok {
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// Read returns a note's body, with frontmatter stripped.
func (v *Vault) Read(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(v.path, filepath.FromSlash(path)))
	if err != nil {
		return "", err
	}
	return parser.Body(string(data)), nil
}

// Metadata returns the derived tags/links for a note listed during this
// run. ok is false for paths List never saw.
func (v *Vault) Metadata(path string) (model.Metadata, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	meta, ok := v.meta[path]
	return meta, ok
}

// Rebuild re-derives metadata for every note in the vault and refreshes
// the index, pruning entries for deleted notes. Parsing fans out across
// CPUs; the first error cancels the rest. Returns the number of notes
// indexed.
func (v *Vault) Rebuild(ctx context.Context) (int, error) {
	paths, err := v.walkPaths()
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, rel := range paths {
		rel := rel
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			full := filepath.Join(v.path, filepath.FromSlash(rel))
			info, err := os.Stat(full)
			if err != nil {
				return nil // deleted mid-rebuild
			}
			data, err := os.ReadFile(full)
			if err != nil {
				return nil
			}
			meta := deriveMetadata(string(data))

			v.mu.Lock()
			v.meta[rel] = meta
			v.mu.Unlock()

			if v.idx != nil {
				return v.idx.Put(rel, info.ModTime().Unix(), meta)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if v.idx != nil {
		keep := make(map[string]struct{}, len(paths))
		for _, p := range paths {
			keep[p] = struct{}{}
		}
		if _, err := v.idx.Prune(keep); err != nil {
			return len(paths), err
		}
	}
	return len(paths), nil
}

// Refresh re-derives metadata for one note, updating the index. Called by
// the watcher on file change.
func (v *Vault) Refresh(path string) error {
	full := filepath.Join(v.path, filepath.FromSlash(path))
	info, err := os.Stat(full)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return err
	}
	meta := deriveMetadata(string(data))

	v.mu.Lock()
	v.meta[path] = meta
	v.mu.Unlock()

	if v.idx != nil {
		return v.idx.Put(path, info.ModTime().Unix(), meta)
	}
	return nil
}

// Forget drops a note's metadata, from memory and the index. Called by
// the watcher on file removal.
func (v *Vault) Forget(path string) error {
	v.mu.Lock()
	delete(v.meta, path)
	v.mu.Unlock()

	if v.idx != nil {
		return v.idx.Remove(path)
	}
	return nil
}

// walkPaths returns the vault's markdown note paths, relative to the
// root with forward slashes, sorted.
func (v *Vault) walkPaths() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(v.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries don't fail enumeration
		}
		if d.IsDir() {
			name := d.Name()
			if _, skip := ignoredDirs[name]; skip {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") && path != v.path {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.path, path)
		if err != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// loadNote reads and parses one note, populating the metadata cache as a
// side effect. ok is false when the note can't be read or parsed.
func (v *Vault) loadNote(rel string) (model.Note, bool) {
	full := filepath.Join(v.path, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return model.Note{}, false
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return model.Note{}, false
	}

	content := string(data)
	fm, err := parser.ParseFrontmatter(content)
	var fields map[string]interface{}
	if err == nil && fm != nil {
		fields = fm.Fields
	}

	name := strings.TrimSuffix(filepath.Base(rel), ".md")
	folder := filepath.ToSlash(filepath.Dir(rel))
	if folder == "." {
		folder = ""
	}

	mtime := info.ModTime()
	note := model.Note{
		Path:        rel,
		Name:        name,
		Folder:      folder,
		Ext:         ".md",
		Size:        info.Size(),
		Ctime:       mtime,
		Mtime:       mtime,
		Frontmatter: fields,
	}

	v.ensureMetadata(rel, mtime.Unix(), content, fields)
	return note, true
}

// ensureMetadata fills the in-memory metadata map for one note, taking a
// fresh index entry when available and deriving otherwise.
func (v *Vault) ensureMetadata(rel string, mtime int64, content string, fm map[string]interface{}) {
	if v.idx != nil {
		if meta, ok := v.idx.Get(rel, mtime); ok {
			v.mu.Lock()
			v.meta[rel] = meta
			v.mu.Unlock()
			return
		}
	}

	meta := deriveMetadataWithFrontmatter(content, fm)
	v.mu.Lock()
	v.meta[rel] = meta
	v.mu.Unlock()

	if v.idx != nil {
		v.idx.Put(rel, mtime, meta) // best effort, cache only
	}
}

// deriveMetadata extracts tags and links from a raw note.
func deriveMetadata(content string) model.Metadata {
	var fields map[string]interface{}
	if fm, err := parser.ParseFrontmatter(content); err == nil && fm != nil {
		fields = fm.Fields
	}
	return deriveMetadataWithFrontmatter(content, fields)
}

func deriveMetadataWithFrontmatter(content string, fm map[string]interface{}) model.Metadata {
	body := parser.Body(content)
	tags := parser.ExtractTags(body)
	tags = append(tags, frontmatterTags(fm)...)
	return model.Metadata{
		Tags:  dedupeSorted(tags),
		Links: parser.ExtractLinks(body),
	}
}

// frontmatterTags reads the conventional "tags" frontmatter key: a list
// of strings or a single string.
func frontmatterTags(fm map[string]interface{}) []string {
	raw, ok := fm["tags"]
	if !ok {
		return nil
	}
	var out []string
	switch t := raw.(type) {
	case string:
		out = append(out, normalizeTag(t))
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, normalizeTag(s))
			}
		}
	}
	return out
}

func normalizeTag(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "#")
}

func dedupeSorted(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
