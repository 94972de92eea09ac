// Package testsupport provides shared fixtures for tests: temp-dir backed
// configs, an opened store, and fixture file writers.
package testsupport

import (
	"path/filepath"
	"testing"

	"romdex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Roots = []string{filepath.Join(base, "roms")}
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.CatalogDir = filepath.Join(base, "catalogs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Scan.Workers = 2
	cfg.Scan.QueueDepth = 16
	cfg.Scan.BatchSize = 8
	cfg.Scan.BatchIntervalSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWorkers overrides hash-stage parallelism on the test config.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.Workers = workers
	}
}

// WithRoots replaces the scan roots on the test config.
func WithRoots(roots ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.Roots = roots
	}
}
