package base

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// baseExtensions are the file name shapes recognized as base files.
func isBaseFile(name string) bool {
	return strings.HasSuffix(name, ".base") ||
		strings.HasSuffix(name, ".base.yaml") ||
		strings.HasSuffix(name, ".base.yml")
}

// Discover lists base files in a vault, as paths relative to the vault
// root, sorted for stable output. Hidden directories are skipped.
func Discover(vaultPath string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(vaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries don't fail discovery
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != vaultPath {
				return filepath.SkipDir
			}
			return nil
		}
		if isBaseFile(d.Name()) {
			rel, _ := filepath.Rel(vaultPath, path)
			found = append(found, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// Load reads and parses a base file. The name argument may be a path
// relative to the vault root, with or without a base extension.
func Load(vaultPath, name string) (*Base, error) {
	for _, candidate := range candidatePaths(name) {
		full := filepath.Join(vaultPath, filepath.FromSlash(candidate))
		data, err := os.ReadFile(full)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read base %s: %w", candidate, err)
		}
		return Parse(data, candidate)
	}
	return nil, fmt.Errorf("base not found: %s", name)
}

func candidatePaths(name string) []string {
	if isBaseFile(name) {
		return []string{name}
	}
	return []string{
		name + ".base",
		name + ".base.yaml",
		name + ".base.yml",
	}
}
