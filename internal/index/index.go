// Package index caches derived note metadata (tags, links) in SQLite so
// repeated queries don't re-parse every note body. Entries are keyed by
// path and validated against file mtime; a stale or missing entry means
// the caller re-derives and writes back.
package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/magpie/internal/model"
	"github.com/aidanlsb/magpie/internal/sqlutil"
)

// DirName is the vault-local directory holding the index database.
const DirName = ".magpie"

// ErrLocked indicates another process holds the rebuild lock.
var ErrLocked = errors.New("index is locked for rebuild")

const schemaVersion = 1

// Index is the metadata cache handle. Safe for concurrent use.
type Index struct {
	db *sql.DB
}

// Open opens or creates the index database under <vault>/.magpie/index.db.
func Open(vaultPath string) (*Index, error) {
	dbDir := filepath.Join(vaultPath, DirName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", DirName, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dbDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (x *Index) initialize() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			path  TEXT PRIMARY KEY,
			mtime INTEGER NOT NULL,
			tags  TEXT NOT NULL,
			links TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := x.db.Exec(stmt); err != nil {
			return fmt.Errorf("initialize index: %w", err)
		}
	}

	var version int
	err := x.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = x.db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
		return err
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		// Incompatible layout: the cache is disposable, start over.
		if _, err := x.db.Exec(`DELETE FROM notes`); err != nil {
			return err
		}
		_, err = x.db.Exec(`UPDATE meta SET value = ? WHERE key = 'schema_version'`, schemaVersion)
		return err
	}
	return nil
}

// Close closes the underlying database.
func (x *Index) Close() error {
	return x.db.Close()
}

// Get returns the cached metadata for a note when the cached mtime matches.
// A mismatch means the file changed since indexing; the entry is treated
// as absent.
func (x *Index) Get(path string, mtime int64) (model.Metadata, bool) {
	var cachedMtime int64
	var tagsJSON, linksJSON string
	err := x.db.QueryRow(
		`SELECT mtime, tags, links FROM notes WHERE path = ?`, path,
	).Scan(&cachedMtime, &tagsJSON, &linksJSON)
	if err != nil || cachedMtime != mtime {
		return model.Metadata{}, false
	}

	var meta model.Metadata
	if json.Unmarshal([]byte(tagsJSON), &meta.Tags) != nil {
		return model.Metadata{}, false
	}
	if json.Unmarshal([]byte(linksJSON), &meta.Links) != nil {
		return model.Metadata{}, false
	}
	return meta, true
}

// Put stores the metadata for a note, replacing any previous entry.
func (x *Index) Put(path string, mtime int64, meta model.Metadata) error {
	tagsJSON, err := json.Marshal(emptyIfNil(meta.Tags))
	if err != nil {
		return err
	}
	linksJSON, err := json.Marshal(emptyIfNil(meta.Links))
	if err != nil {
		return err
	}
	_, err = x.db.Exec(
		`INSERT INTO notes (path, mtime, tags, links) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET mtime = excluded.mtime, tags = excluded.tags, links = excluded.links`,
		path, mtime, string(tagsJSON), string(linksJSON),
	)
	return err
}

// Remove deletes a note's entry. Removing an absent path is not an error.
func (x *Index) Remove(path string) error {
	_, err := x.db.Exec(`DELETE FROM notes WHERE path = ?`, path)
	return err
}

// Paths returns every indexed path, for staleness sweeps after a rebuild.
func (x *Index) Paths() ([]string, error) {
	rows, err := x.db.Query(`SELECT path FROM notes ORDER BY path`)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (string, error) {
		var p string
		err := rows.Scan(&p)
		return p, err
	})
}

// Prune removes entries whose path is not in keep. Called after a full
// rebuild to drop notes deleted from the vault.
func (x *Index) Prune(keep map[string]struct{}) (int, error) {
	paths, err := x.Paths()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, p := range paths {
		if _, ok := keep[p]; ok {
			continue
		}
		if err := x.Remove(p); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Clear drops all entries.
func (x *Index) Clear() error {
	_, err := x.db.Exec(`DELETE FROM notes`)
	return err
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// RebuildLock guards full index rebuilds against concurrent processes.
type RebuildLock struct {
	file *os.File
}

// AcquireRebuildLock takes the vault's exclusive rebuild lock without
// blocking. Returns ErrLocked when another process holds it.
func AcquireRebuildLock(vaultPath string) (*RebuildLock, error) {
	dbDir := filepath.Join(vaultPath, DirName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", DirName, err)
	}

	lockFile, err := os.OpenFile(filepath.Join(dbDir, "index.lock"), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open index lock: %w", err)
	}
	if err := lockFileExclusiveNonBlocking(lockFile); err != nil {
		lockFile.Close()
		if isWouldBlockError(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire index lock: %w", err)
	}
	return &RebuildLock{file: lockFile}, nil
}

// Release drops the rebuild lock.
func (l *RebuildLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
