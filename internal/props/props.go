// Package props exposes the file-intrinsic property namespace for a note.
//
// Resolution is a pure function of the note and its metadata snapshot: it
// never fails and never touches the filesystem. Missing metadata degrades
// to empty tags/links.
package props

import (
	"time"

	"github.com/aidanlsb/magpie/internal/model"
)

// FileProps are the properties addressable under "file." in expressions.
type FileProps struct {
	Name   string
	Path   string
	Folder string
	Ext    string
	Size   int64
	Ctime  time.Time
	Mtime  time.Time
	Tags   []string
	Links  []string
}

// Resolve builds the file property namespace for a note.
// meta may be the zero value when no metadata snapshot exists.
func Resolve(note model.Note, meta model.Metadata) FileProps {
	fp := FileProps{
		Name:   note.Name,
		Path:   note.Path,
		Folder: note.Folder,
		Ext:    note.Ext,
		Size:   note.Size,
		Ctime:  note.Ctime,
		Mtime:  note.Mtime,
		Tags:   meta.Tags,
		Links:  meta.Links,
	}
	if fp.Tags == nil {
		fp.Tags = []string{}
	}
	if fp.Links == nil {
		fp.Links = []string{}
	}
	return fp
}

// Map returns the properties as a map keyed without the "file." prefix,
// for projection and JSON output.
func (fp FileProps) Map() map[string]interface{} {
	return map[string]interface{}{
		"name":   fp.Name,
		"path":   fp.Path,
		"folder": fp.Folder,
		"ext":    fp.Ext,
		"size":   fp.Size,
		"ctime":  fp.Ctime,
		"mtime":  fp.Mtime,
		"tags":   fp.Tags,
		"links":  fp.Links,
	}
}

// Get looks up a single file property by name. Unknown names yield nil.
func (fp FileProps) Get(name string) interface{} {
	switch name {
	case "name":
		return fp.Name
	case "path":
		return fp.Path
	case "folder":
		return fp.Folder
	case "ext":
		return fp.Ext
	case "size":
		return fp.Size
	case "ctime":
		return fp.Ctime
	case "mtime":
		return fp.Mtime
	case "tags":
		return fp.Tags
	case "links":
		return fp.Links
	default:
		return nil
	}
}
