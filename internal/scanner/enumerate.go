package scanner

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Options configure enumeration behavior.
type Options struct {
	// Scope restricts the walk to relative sub-paths of each root. Empty
	// means the whole root.
	Scope []string
	// SkipHidden skips dot-prefixed files and directories.
	SkipHidden bool
	// IncludeArchiveFiles yields the container file itself in addition to
	// its internal entries.
	IncludeArchiveFiles bool
}

// Enumerate produces a lazy, finite, non-restartable sequence of file units
// under the given roots. Directories recurse; recognized archive containers
// expand into one virtual unit per internal entry. Per-item failures become
// error markers in the sequence rather than aborting it.
func Enumerate(roots []string, opts Options) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, root := range roots {
			if len(opts.Scope) == 0 {
				if !walkPath(root, opts, yield) {
					return
				}
				continue
			}
			for _, sub := range opts.Scope {
				if !walkPath(filepath.Join(root, sub), opts, yield) {
					return
				}
			}
		}
	}
}

func walkPath(start string, opts Options, yield func(Item) bool) bool {
	stop := false
	_ = filepath.WalkDir(start, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if !yield(Item{Path: path, Err: fmt.Errorf("%w: %s: %v", ErrRead, path, walkErr)}) {
				stop = true
				return fs.SkipAll
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if opts.SkipHidden && hidden(d.Name()) && path != start {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if !emitFile(path, d, opts, yield) {
			stop = true
			return fs.SkipAll
		}
		return nil
	})
	return !stop
}

func emitFile(path string, d fs.DirEntry, opts Options, yield func(Item) bool) bool {
	if IsArchive(path) {
		units, err := listArchive(path)
		if err != nil {
			// One error marker for the container; its entries are skipped.
			if !yield(Item{Path: path, Err: err}) {
				return false
			}
		} else {
			for _, unit := range units {
				if opts.SkipHidden && hidden(unit.DeclaredName()) {
					continue
				}
				if !yield(Item{Unit: unit}) {
					return false
				}
			}
		}
		if !opts.IncludeArchiveFiles {
			return true
		}
	}

	info, err := d.Info()
	if err != nil {
		return yield(Item{Path: path, Err: fmt.Errorf("%w: %s: %v", ErrRead, path, err)})
	}
	return yield(Item{Unit: FileUnit{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Stat refreshes size and modification time for a unit's backing file. For
// archive entries the container's attributes decide staleness, since entry
// metadata cannot change without the container changing.
func Stat(unit FileUnit) (os.FileInfo, error) {
	target := unit.Path
	if unit.InArchive() {
		target = unit.ArchivePath
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, target, err)
	}
	return info, nil
}
