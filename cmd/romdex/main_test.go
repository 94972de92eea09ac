package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDat = `<?xml version="1.0"?>
<datafile>
  <header>
    <name>Test System</name>
    <version>1.0</version>
  </header>
  <game name="Alpha (USA)">
    <description>Alpha (USA)</description>
    <release name="Alpha (USA)" region="USA" language="En"/>
    <rom name="Alpha (USA).bin" size="9" crc="cbf43926"
         md5="25f9e794323b453885f5181f1b624d0b"
         sha1="f7c3bc1d808e04732adf679965ccc34ca7ae3441"/>
  </game>
  <game name="Alpha (Europe)" cloneof="Alpha (USA)">
    <description>Alpha (Europe)</description>
    <rom name="Alpha (Europe).bin" size="3" crc="352441c2"
         md5="900150983cd24fb0d6963f7d28e17f72"
         sha1="a9993e364706816aba3e25717850c26c9cd0d89d"/>
  </game>
</datafile>`

// writeTestEnvironment lays out a config file, a collection root, and a
// catalog directory under a temp base, returning the config path and root.
func writeTestEnvironment(t *testing.T) (configPath, root string) {
	t.Helper()

	base := t.TempDir()
	root = filepath.Join(base, "roms")
	for _, dir := range []string{root, filepath.Join(base, "catalogs")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	datPath := filepath.Join(base, "catalogs", "test.dat")
	if err := os.WriteFile(datPath, []byte(testDat), 0o644); err != nil {
		t.Fatalf("write dat: %v", err)
	}

	configPath = filepath.Join(base, "romdex.toml")
	body := fmt.Sprintf(`[paths]
roots = [%q]
data_dir = %q
catalog_dir = %q
log_dir = %q

[scan]
workers = 2
`, root, filepath.Join(base, "data"), filepath.Join(base, "catalogs"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, root
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestScanThenReport(t *testing.T) {
	configPath, root := writeTestEnvironment(t)
	if err := os.WriteFile(filepath.Join(root, "Alpha (USA).bin"), []byte("123456789"), 0o644); err != nil {
		t.Fatalf("write rom: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray.bin"), []byte("stray"), 0o644); err != nil {
		t.Fatalf("write rom: %v", err)
	}

	out, err := runCommand(t, "--config", configPath, "--drive", "test-drive", "scan")
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}
	if !strings.Contains(out, "completed") {
		t.Fatalf("scan output missing completed status:\n%s", out)
	}

	out, err = runCommand(t, "--config", configPath, "--drive", "test-drive", "--json", "report")
	if err != nil {
		t.Fatalf("report: %v\n%s", err, out)
	}

	var records []reportRecordJSON
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode report JSON: %v\n%s", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d:\n%s", len(records), out)
	}

	statuses := make(map[string]string, len(records))
	for _, record := range records {
		statuses[filepath.Base(record.Path)] = record.Status
	}
	if statuses["Alpha (USA).bin"] != "verified" {
		t.Fatalf("alpha status = %q, want verified", statuses["Alpha (USA).bin"])
	}
	if statuses["stray.bin"] != "not_in_dat" {
		t.Fatalf("stray status = %q, want not_in_dat", statuses["stray.bin"])
	}
}

func TestReportStatusFilterRejectsUnknown(t *testing.T) {
	configPath, _ := writeTestEnvironment(t)

	out, err := runCommand(t, "--config", configPath, "report", "--status", "bogus")
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected unknown status error, got err=%v out=%s", err, out)
	}
}

func TestJobsListsHistory(t *testing.T) {
	configPath, root := writeTestEnvironment(t)
	if err := os.WriteFile(filepath.Join(root, "a.bin"), []byte("abc"), 0o644); err != nil {
		t.Fatalf("write rom: %v", err)
	}

	if out, err := runCommand(t, "--config", configPath, "--drive", "test-drive", "scan"); err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}

	out, err := runCommand(t, "--config", configPath, "--drive", "test-drive", "jobs")
	if err != nil {
		t.Fatalf("jobs: %v\n%s", err, out)
	}
	if !strings.Contains(out, "completed") || !strings.Contains(out, "scan") {
		t.Fatalf("jobs output missing scan history:\n%s", out)
	}
}

func TestOneGameResolvesFamilies(t *testing.T) {
	configPath, _ := writeTestEnvironment(t)

	out, err := runCommand(t, "--config", configPath, "--json", "onegame")
	if err != nil {
		t.Fatalf("onegame: %v\n%s", err, out)
	}

	var selections []onegameSelectionJSON
	if err := json.Unmarshal([]byte(out), &selections); err != nil {
		t.Fatalf("decode onegame JSON: %v\n%s", err, out)
	}
	if len(selections) != 1 {
		t.Fatalf("expected 1 family, got %d:\n%s", len(selections), out)
	}
	if selections[0].Chosen != "Alpha (USA).bin" {
		t.Fatalf("chosen = %q, want Alpha (USA).bin", selections[0].Chosen)
	}
}

func TestVerifyRematchesAfterCatalogChange(t *testing.T) {
	configPath, root := writeTestEnvironment(t)
	if err := os.WriteFile(filepath.Join(root, "Renamed.bin"), []byte("123456789"), 0o644); err != nil {
		t.Fatalf("write rom: %v", err)
	}

	if out, err := runCommand(t, "--config", configPath, "--drive", "test-drive", "scan"); err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}

	out, err := runCommand(t, "--config", configPath, "--drive", "test-drive", "--json", "report", "--status", "wrong_name")
	if err != nil {
		t.Fatalf("report: %v\n%s", err, out)
	}
	var records []reportRecordJSON
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode report JSON: %v\n%s", err, out)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 wrong_name record, got %d:\n%s", len(records), out)
	}

	if out, err := runCommand(t, "--config", configPath, "--drive", "test-drive", "verify"); err != nil {
		t.Fatalf("verify: %v\n%s", err, out)
	}
}
