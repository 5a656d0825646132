// Package watcher monitors a vault for changes and keeps the metadata
// index and formula caches current, so long-running query sessions see
// edits without a manual reindex.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/magpie/internal/formula"
	"github.com/aidanlsb/magpie/internal/index"
	"github.com/aidanlsb/magpie/internal/vault"
)

// Watcher monitors a vault directory and refreshes derived state on change.
type Watcher struct {
	vault    *vault.Vault
	formulas *formula.Engine

	debounceDelay time.Duration
	debug         bool

	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	mu        sync.Mutex

	onRefresh func(path string, err error)
}

// Config holds configuration options for the Watcher.
type Config struct {
	Vault         *vault.Vault
	Formulas      *formula.Engine              // optional; refreshed paths get their cache cleared
	DebounceDelay time.Duration                // Default: 100ms
	Debug         bool
	OnRefresh     func(path string, err error) // Optional callback
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Vault == nil {
		return nil, fmt.Errorf("vault is required")
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}

	return &Watcher{
		vault:         cfg.Vault,
		formulas:      cfg.Formulas,
		debounceDelay: debounce,
		debug:         cfg.Debug,
		pending:       make(map[string]time.Time),
		onRefresh:     cfg.OnRefresh,
	}, nil
}

// Start begins watching the vault for file changes.
// It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.vault.Path()); err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}

	w.logDebug("Watching vault: %s", w.vault.Path())

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logDebug("Watcher error: %v", err)
		}
	}
}

// RefreshFile re-derives one note's metadata and invalidates its formula
// cache. Can be called directly without starting the watcher.
func (w *Watcher) RefreshFile(path string) error {
	rel, err := w.relPath(path)
	if err != nil {
		return err
	}
	if err := w.vault.Refresh(rel); err != nil {
		return err
	}
	if w.formulas != nil {
		w.formulas.ClearPath(rel)
	}
	return nil
}

// RemoveFile forgets a deleted note.
func (w *Watcher) RemoveFile(path string) error {
	rel, err := w.relPath(path)
	if err != nil {
		return err
	}
	if err := w.vault.Forget(rel); err != nil {
		return err
	}
	if w.formulas != nil {
		w.formulas.ClearPath(rel)
	}
	return nil
}

func (w *Watcher) relPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path), nil
	}
	rel, err := filepath.Rel(w.vault.Path(), path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !strings.HasSuffix(path, ".md") {
		// But watch new directories.
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.addWatchRecursive(path)
			}
		}
		return
	}

	if w.shouldIgnore(path) {
		return
	}

	w.logDebug("Event: %s %s", event.Op, path)

	switch {
	case event.Op&fsnotify.Write != 0, event.Op&fsnotify.Create != 0:
		w.scheduleRefresh(path)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		if err := w.RemoveFile(path); err != nil {
			w.logDebug("Failed to remove from index: %v", err)
		}
	}
}

// scheduleRefresh adds a file to the pending queue with debouncing.
func (w *Watcher) scheduleRefresh(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

// processDebounced processes pending refresh requests after debounce delay.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending checks for files ready to refresh (past debounce delay).
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	ready := make([]string, 0)

	for path, scheduledAt := range w.pending {
		if now.Sub(scheduledAt) >= w.debounceDelay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		err := w.RefreshFile(path)
		if w.onRefresh != nil {
			w.onRefresh(path, err)
		}
		if err != nil {
			w.logDebug("Failed to refresh %s: %v", path, err)
		} else {
			w.logDebug("Refreshed: %s", path)
		}
	}
}

// addWatchRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if w.shouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logDebug("Failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

// shouldIgnore returns true if the path should be ignored.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.vault.Path(), path)
	if err != nil {
		return false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	for _, part := range parts {
		if part == index.DirName || part == ".git" || part == ".trash" || part == "node_modules" {
			return true
		}
	}
	return false
}

// shouldIgnoreDir returns true if the directory should not be watched.
func (w *Watcher) shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	return base == index.DirName || base == ".git" || base == ".trash" || base == "node_modules"
}

// logDebug logs a debug message if debug mode is enabled.
func (w *Watcher) logDebug(format string, args ...interface{}) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[magpie-watcher] "+format+"\n", args...)
	}
}
