// Package model defines the core data types shared across magpie packages.
package model

import "time"

// Note represents a markdown note in the vault.
// Notes are enumerated by the vault store; the engine holds only read
// references for the duration of one query.
type Note struct {
	// Path is the note's path relative to the vault root, e.g. "projects/website.md".
	Path string `json:"path"`

	// Name is the file name without extension.
	Name string `json:"name"`

	// Folder is the containing directory relative to the vault root ("" for root).
	Folder string `json:"folder"`

	// Ext is the file extension including the dot, e.g. ".md".
	Ext string `json:"ext"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Ctime and Mtime are the file creation and modification times.
	// Ctime falls back to Mtime on filesystems that don't track creation time.
	Ctime time.Time `json:"ctime"`
	Mtime time.Time `json:"mtime"`

	// Frontmatter contains the parsed YAML frontmatter values.
	// Nil when the note has no frontmatter.
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
}

// Metadata is the derived metadata snapshot for a note: its tags and
// outgoing links. It may be stale or absent; consumers treat absence as
// empty tags/links and never fail a query over it.
type Metadata struct {
	// Tags are the note's tags, normalized without the leading '#'.
	// Includes both frontmatter tags and inline body tags.
	Tags []string `json:"tags"`

	// Links are the targets of the note's outgoing links.
	Links []string `json:"links"`
}

// EvaluatedNote is one row of a query result: a note plus everything the
// evaluator derived for it.
type EvaluatedNote struct {
	Path string `json:"path"`
	Name string `json:"name"`

	// Properties is the merged namespace used for projection: frontmatter
	// values (date-coerced), file.* properties and formula.* values.
	Properties map[string]interface{} `json:"properties"`

	// Frontmatter is the raw frontmatter map.
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`

	// FileProps are the file-intrinsic properties keyed without the "file." prefix.
	FileProps map[string]interface{} `json:"file,omitempty"`

	// Formulas are the evaluated formula values keyed by formula name.
	Formulas map[string]interface{} `json:"formulas,omitempty"`

	// Content is the note body. Populated only when the view requests it.
	Content string `json:"content,omitempty"`
}

// ResultSet is the outcome of running one view of a base.
type ResultSet struct {
	// Notes are the evaluated result rows, filtered, sorted and limited.
	Notes []EvaluatedNote `json:"notes"`

	// Total is the number of notes matching the filters before any limit.
	Total int `json:"total"`

	// View is the name of the view that produced this result, if any.
	View string `json:"view,omitempty"`

	// Skipped counts notes dropped because the store failed to read them.
	// Skips degrade the result instead of failing the query, but they must
	// stay observable so silent data loss is diagnosable.
	Skipped int `json:"skipped,omitempty"`
}
