package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"romdex/internal/catalog"
	"romdex/internal/config"
	"romdex/internal/datfile"
)

// loadCatalogIndex builds the matching index from either an explicit DAT
// file or every catalog found under the configured catalog directory.
// Entries keep per-file import order so tie-breaking stays stable: the
// first-imported catalog wins.
func loadCatalogIndex(cfg *config.Config, datPath string) (*catalog.Index, error) {
	paths, err := catalogPaths(cfg, datPath)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	var merged []catalog.Entry
	for _, path := range paths {
		_, entries, err := datfile.ParseFile(path)
		if err != nil {
			if errors.Is(err, datfile.ErrNoEntries) {
				continue
			}
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		offset := len(merged)
		for i := range entries {
			entries[i].Seq += offset
		}
		merged = append(merged, entries...)
	}
	if len(merged) == 0 {
		return nil, nil
	}
	return catalog.Build(merged), nil
}

func catalogPaths(cfg *config.Config, datPath string) ([]string, error) {
	if datPath = strings.TrimSpace(datPath); datPath != "" {
		expanded, err := config.ExpandPath(datPath)
		if err != nil {
			return nil, err
		}
		return []string{expanded}, nil
	}

	if cfg.Paths.CatalogDir == "" {
		return nil, nil
	}
	dirEntries, err := os.ReadDir(cfg.Paths.CatalogDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog directory: %w", err)
	}

	var paths []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".dat", ".xml":
			paths = append(paths, filepath.Join(cfg.Paths.CatalogDir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
