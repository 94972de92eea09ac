package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output does not mention target path:\n%s", out)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if out, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with overwrite: %v\n%s", err, out)
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	configPath, root := writeTestEnvironment(t)

	out, err := runCommand(t, "config", "show", "--config", configPath)
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if !strings.Contains(out, root) {
		t.Fatalf("show output missing configured root:\n%s", out)
	}
	if !strings.Contains(out, "[scan]") {
		t.Fatalf("show output missing scan section:\n%s", out)
	}
}
