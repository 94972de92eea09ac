package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"romdex/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to report exists=false")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Scan.Workers < 1 {
		t.Fatalf("expected derived worker count, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.QueueDepth != 256 {
		t.Fatalf("unexpected queue depth: %d", cfg.Scan.QueueDepth)
	}
	if !cfg.Scan.SkipHidden {
		t.Fatal("expected skip_hidden default true")
	}
	if len(cfg.OneGame.RegionPriority) == 0 {
		t.Fatal("expected default region priority")
	}
}

func TestLoadExpandsRoots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
roots = ["./collection", "  "]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if len(cfg.Paths.Roots) != 1 {
		t.Fatalf("expected blank roots dropped, got %v", cfg.Paths.Roots)
	}
	if !filepath.IsAbs(cfg.Paths.Roots[0]) {
		t.Fatalf("expected root expanded to absolute path, got %q", cfg.Paths.Roots[0])
	}
}

func TestValidateRejectsWatermarkInversion(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Workers = 2
	cfg.Scan.MemoryHighWatermarkMiB = 100
	cfg.Scan.MemoryLowWatermarkMiB = 200

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected watermark validation error")
	}
	if !strings.Contains(err.Error(), "memory_low_watermark_mib") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadZeroWatermarkDisablesMemoryGate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[scan]
memory_high_watermark_mib = 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scan.MemoryHighWatermarkMiB != 0 {
		t.Fatalf("high watermark = %d, want 0", cfg.Scan.MemoryHighWatermarkMiB)
	}
	if cfg.Scan.MemoryLowWatermarkMiB != 0 {
		t.Fatalf("low watermark = %d, want 0 alongside disabled gate", cfg.Scan.MemoryLowWatermarkMiB)
	}
}

func TestLoadDerivesLowWatermark(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[scan]
memory_high_watermark_mib = 400
memory_low_watermark_mib = 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scan.MemoryLowWatermarkMiB != 300 {
		t.Fatalf("low watermark = %d, want 300", cfg.Scan.MemoryLowWatermarkMiB)
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Workers = 1
	cfg.Logging.Format = "yaml"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected log format validation error")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected sample format: %q", cfg.Logging.Format)
	}
}
