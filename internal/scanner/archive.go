package scanner

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// IsArchive reports whether the path names a container the scanner expands.
func IsArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".gz":
		return true
	default:
		return false
	}
}

// listArchive yields one virtual FileUnit per internal entry of a container.
// Directory entries are skipped. A failure to open or decode the container
// is reported as ErrContainer for the whole archive.
func listArchive(path string) ([]FileUnit, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return listZip(path)
	case ".gz":
		return listGzip(path)
	default:
		return nil, fmt.Errorf("%w: %s: unrecognized container", ErrContainer, path)
	}
}

func listZip(path string) ([]FileUnit, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainer, path, err)
	}
	defer reader.Close()

	units := make([]FileUnit, 0, len(reader.File))
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		units = append(units, FileUnit{
			Path:        unitPath(path, entry.Name),
			ArchivePath: path,
			EntryPath:   entry.Name,
			Size:        int64(entry.UncompressedSize64),
			ModTime:     entry.Modified,
		})
	}
	return units, nil
}

// listGzip treats a .gz file as a single-entry container. The uncompressed
// size comes from the ISIZE trailer (modulo 2^32, per the gzip format).
func listGzip(path string) ([]FileUnit, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainer, path, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainer, path, err)
	}
	defer file.Close()

	header, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainer, path, err)
	}
	entryName := header.Name
	modTime := header.ModTime
	_ = header.Close()

	if entryName == "" {
		entryName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if modTime.IsZero() {
		modTime = info.ModTime()
	}

	size, err := gzipTrailerSize(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainer, path, err)
	}

	return []FileUnit{{
		Path:        unitPath(path, entryName),
		ArchivePath: path,
		EntryPath:   entryName,
		Size:        size,
		ModTime:     modTime,
	}}, nil
}

func gzipTrailerSize(file *os.File) (int64, error) {
	var trailer [4]byte
	if _, err := file.Seek(-4, io.SeekEnd); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(file, trailer[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint32(trailer[:])), nil
}

// StreamOpener opens byte streams for any FileUnit, including
// archive-internal entries, abstracting over the container format.
type StreamOpener interface {
	Open(unit FileUnit) (io.ReadCloser, error)
}

// NewOpener returns the default StreamOpener for local files, zip entries,
// and gzip members.
func NewOpener() StreamOpener {
	return fsOpener{}
}

type fsOpener struct{}

func (fsOpener) Open(unit FileUnit) (io.ReadCloser, error) {
	if !unit.InArchive() {
		file, err := os.Open(unit.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRead, unit.Path, err)
		}
		return file, nil
	}

	switch strings.ToLower(filepath.Ext(unit.ArchivePath)) {
	case ".zip":
		return openZipEntry(unit)
	case ".gz":
		return openGzipEntry(unit)
	default:
		return nil, fmt.Errorf("%w: %s: unrecognized container", ErrContainer, unit.ArchivePath)
	}
}

func openZipEntry(unit FileUnit) (io.ReadCloser, error) {
	reader, err := zip.OpenReader(unit.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainer, unit.ArchivePath, err)
	}
	for _, entry := range reader.File {
		if entry.Name != unit.EntryPath {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			_ = reader.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrRead, unit.Path, err)
		}
		return &compositeCloser{Reader: rc, closers: []io.Closer{rc, reader}}, nil
	}
	_ = reader.Close()
	return nil, fmt.Errorf("%w: %s: entry not found", ErrRead, unit.Path)
}

func openGzipEntry(unit FileUnit) (io.ReadCloser, error) {
	file, err := os.Open(unit.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainer, unit.ArchivePath, err)
	}
	reader, err := gzip.NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrContainer, unit.ArchivePath, err)
	}
	return &compositeCloser{Reader: reader, closers: []io.Closer{reader, file}}, nil
}

type compositeCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *compositeCloser) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
