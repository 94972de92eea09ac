package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// Roots are the collection directories scanned for files.
	Roots []string `toml:"roots"`
	// DataDir holds the collection database and lock file.
	DataDir string `toml:"data_dir"`
	// CatalogDir is searched for DAT catalog files.
	CatalogDir string `toml:"catalog_dir"`
	LogDir     string `toml:"log_dir"`
}

// Scan contains configuration for the scan pipeline.
type Scan struct {
	// Workers bounds hash-stage parallelism. Zero derives a default from
	// the number of available CPUs, clamped to [1, 8].
	Workers int `toml:"workers"`
	// QueueDepth bounds how far enumeration may run ahead of hashing.
	QueueDepth int `toml:"queue_depth"`
	// BatchSize and BatchIntervalSeconds control persistence flushing;
	// whichever threshold is crossed first triggers a flush.
	BatchSize            int  `toml:"batch_size"`
	BatchIntervalSeconds int  `toml:"batch_interval_seconds"`
	SkipHidden           bool `toml:"skip_hidden"`
	// IncludeArchiveFiles yields the container file itself in addition to
	// its internal entries.
	IncludeArchiveFiles bool `toml:"include_archive_files"`
	// MemoryHighWatermarkMiB pauses admission of new files when the heap
	// grows past it; MemoryLowWatermarkMiB resumes admission. Zero
	// disables the gate.
	MemoryHighWatermarkMiB int `toml:"memory_high_watermark_mib"`
	MemoryLowWatermarkMiB  int `toml:"memory_low_watermark_mib"`
}

// OneGame contains configuration for one-release-per-title resolution.
type OneGame struct {
	RegionPriority   []string `toml:"region_priority"`
	LanguagePriority []string `toml:"language_priority"`
	PreferParent     bool     `toml:"prefer_parent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for romdex.
//
// Sections by subsystem:
//   - Paths: scan roots, database directory, catalog directory
//   - Scan: pipeline parallelism, batching, and memory limits
//   - OneGame: region/language priorities for canonical release selection
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scan    Scan    `toml:"scan"`
	OneGame OneGame `toml:"onegame"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/romdex/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("romdex.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the scanner and store require.
// CatalogDir is created on a best-effort basis so startup succeeds when the
// catalog share is temporarily offline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.CatalogDir) != "" {
		_ = os.MkdirAll(c.Paths.CatalogDir, 0o755)
	}
	return nil
}

// DatabasePath returns the location of the collection database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "collection.db")
}

// LockPath returns the location of the collection lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "collection.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
