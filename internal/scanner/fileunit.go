package scanner

import (
	"errors"
	"path"
	"time"
)

// ErrRead marks a per-item failure: the unit could not be opened, read, or
// stat'd. The enumerator and pipeline record it and continue.
var ErrRead = errors.New("file unit unreadable")

// ErrContainer marks an unreadable or corrupt archive container. All of the
// container's entries are skipped; the scan continues.
var ErrContainer = errors.New("archive container unreadable")

// entrySeparator joins an archive path with an internal entry path to form
// a logical unit path, e.g. "sets/alpha.zip#Alpha (USA).bin".
const entrySeparator = "#"

// FileUnit is one scannable item: a real file, or a virtual (archive,
// internal entry) pair. Units are immutable; durable state lives in the
// RomRecord produced downstream.
type FileUnit struct {
	// Path is the logical identity of the unit.
	Path string
	// ArchivePath is the container file holding the entry; empty for real files.
	ArchivePath string
	// EntryPath is the path inside the container; empty for real files.
	EntryPath string
	Size      int64
	ModTime   time.Time
}

// InArchive reports whether the unit is an archive-internal entry.
func (u FileUnit) InArchive() bool {
	return u.ArchivePath != ""
}

// DeclaredName is the base name compared against catalog-declared names.
func (u FileUnit) DeclaredName() string {
	if u.EntryPath != "" {
		return path.Base(u.EntryPath)
	}
	return path.Base(u.Path)
}

// Item is one element of the enumeration sequence: a unit, or an error
// marker for an item that could not be produced. One bad file never stops
// the scan. Error markers carry the filesystem path they refer to (a file,
// directory, or container) so downstream passes can tell an errored path
// apart from a vanished one.
type Item struct {
	Unit FileUnit
	Path string
	Err  error
}

func unitPath(archivePath, entryPath string) string {
	return archivePath + entrySeparator + entryPath
}
