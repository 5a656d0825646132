// Package testutil provides reusable test utilities for magpie
// integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestVault represents a temporary vault for testing.
type TestVault struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestVault creates a new test vault builder.
// Call Build() to create the actual vault directory.
func NewTestVault(t *testing.T) *TestVault {
	t.Helper()
	return &TestVault{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file to the vault.
// The path is relative to the vault root.
func (v *TestVault) WithFile(path, content string) *TestVault {
	v.files[path] = content
	return v
}

// WithNote adds a markdown note with frontmatter and body.
func (v *TestVault) WithNote(path, frontmatter, body string) *TestVault {
	content := "---\n" + frontmatter + "---\n" + body
	return v.WithFile(path, content)
}

// WithBase adds a base definition file to the vault.
func (v *TestVault) WithBase(name, yaml string) *TestVault {
	return v.WithFile(name+".base", yaml)
}

// WithMagpieYAML sets the magpie.yaml content for the vault.
func (v *TestVault) WithMagpieYAML(yaml string) *TestVault {
	v.files["magpie.yaml"] = yaml
	return v
}

// Build creates the vault directory and all configured files.
// Returns the TestVault for method chaining.
func (v *TestVault) Build() *TestVault {
	v.t.Helper()

	v.Path = v.t.TempDir()
	for path, content := range v.files {
		v.writeFile(path, content)
	}
	return v
}

// writeFile writes a file to the vault, creating directories as needed.
func (v *TestVault) writeFile(relPath, content string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		v.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// WriteFile writes a file into an already-built vault.
func (v *TestVault) WriteFile(relPath, content string) {
	v.t.Helper()
	v.writeFile(relPath, content)
}

// RemoveFile deletes a file from an already-built vault.
func (v *TestVault) RemoveFile(relPath string) {
	v.t.Helper()
	if err := os.Remove(filepath.Join(v.Path, relPath)); err != nil {
		v.t.Fatalf("failed to remove file %s: %v", relPath, err)
	}
}

// ReadFile reads a file from the vault.
// Returns the content as a string.
func (v *TestVault) ReadFile(relPath string) string {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		v.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the vault.
func (v *TestVault) FileExists(relPath string) bool {
	v.t.Helper()
	_, err := os.Stat(filepath.Join(v.Path, relPath))
	return err == nil
}

// ProjectsBase returns a base definition used across integration tests.
func ProjectsBase() string {
	return `filters:
  and:
    - 'status != "archived"'
formulas:
  double: "number(note.priority) * 2"
views:
  - name: open
    kind: table
    filters: 'status == "open"'
    order: [priority desc, file.name]
    columns: [file.name, status, priority, formula.double]
  - name: all
    kind: list
`
}
