package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// WriteFile creates a file (and parent directories) under dir for tests.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// WriteZip creates a zip archive under dir whose entries map entry name to
// content.
func WriteZip(t testing.TB, dir, name string, entries map[string][]byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer file.Close()

	writer := zip.NewWriter(file)
	for entryName, content := range entries {
		entry, err := writer.Create(entryName)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", entryName, err)
		}
		if _, err := entry.Write(content); err != nil {
			t.Fatalf("write zip entry %s: %v", entryName, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip %s: %v", name, err)
	}
	return path
}

// WriteGzip creates a gzip member under dir holding content, with the
// original file name recorded in the header.
func WriteGzip(t testing.TB, dir, name, memberName string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer file.Close()

	writer := gzip.NewWriter(file)
	writer.Name = memberName
	if _, err := writer.Write(content); err != nil {
		t.Fatalf("write gzip member: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close gzip %s: %v", name, err)
	}
	return path
}
