package dedupe_test

import (
	"testing"
	"time"

	"romdex/internal/dedupe"
	"romdex/internal/fingerprint"
	"romdex/internal/romstore"
	"romdex/internal/verify"
)

func record(path string, scannedAt time.Time, fp fingerprint.Fingerprint) *romstore.RomRecord {
	return &romstore.RomRecord{
		DriveID:     "drive-1",
		Path:        path,
		Size:        fp.Size,
		Fingerprint: &fp,
		Status:      verify.StatusVerified,
		ScannedAt:   scannedAt,
	}
}

func sameFP() fingerprint.Fingerprint {
	return fingerprint.Fingerprint{
		Size:  16,
		CRC32: "cbf43926",
		MD5:   "0123456789abcdef0123456789abcdef",
		SHA1:  "0123456789abcdef0123456789abcdef01234567",
	}
}

func TestDetectMarksAllButCanonical(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	a := record("/roms/a.bin", early, sameFP())
	b := record("/roms/backup/a.bin", late, sameFP())

	groups := dedupe.Detect([]*romstore.RomRecord{b, a})
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	if groups[0].Canonical != a {
		t.Fatalf("expected earliest scan canonical, got %s", groups[0].Canonical.Path)
	}
	if a.Status != verify.StatusVerified {
		t.Fatalf("canonical status must be untouched, got %s", a.Status)
	}
	if b.Status != verify.StatusDuplicate {
		t.Fatalf("expected duplicate status, got %s", b.Status)
	}
}

func TestDetectTieBreaksByPath(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	short := record("/r/a.bin", at, sameFP())
	long := record("/roms/deep/a.bin", at, sameFP())
	lexic := record("/r/b.bin", at, sameFP())

	groups := dedupe.Detect([]*romstore.RomRecord{long, lexic, short})
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	if groups[0].Canonical != short {
		t.Fatalf("expected shortest then lexicographic path, got %s", groups[0].Canonical.Path)
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := record("/roms/a.bin", at, sameFP())
	b := record("/roms/b.bin", at.Add(time.Minute), sameFP())

	first := dedupe.Detect([]*romstore.RomRecord{a, b})
	second := dedupe.Detect([]*romstore.RomRecord{b, a})

	if first[0].Canonical.Path != second[0].Canonical.Path {
		t.Fatalf("canonical changed between runs: %s vs %s",
			first[0].Canonical.Path, second[0].Canonical.Path)
	}
}

func TestDetectIgnoresIncompleteFingerprints(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	complete := record("/roms/a.bin", at, sameFP())
	partial := record("/roms/b.bin", at, sameFP())
	partial.Fingerprint = &fingerprint.Fingerprint{Size: 16, CRC32: "cbf43926"}
	unhashed := record("/roms/c.bin", at, sameFP())
	unhashed.Fingerprint = nil

	groups := dedupe.Detect([]*romstore.RomRecord{complete, partial, unhashed})
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
	if partial.Status == verify.StatusDuplicate || unhashed.Status == verify.StatusDuplicate {
		t.Fatal("unhashed records must never be marked duplicate")
	}
}

func TestDetectSeparatesDistinctContent(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	other := sameFP()
	other.SHA1 = "ffffffffffffffffffffffffffffffffffffffff"

	a := record("/roms/a.bin", at, sameFP())
	b := record("/roms/b.bin", at, other)

	groups := dedupe.Detect([]*romstore.RomRecord{a, b})
	if len(groups) != 0 {
		t.Fatalf("same size+crc with different sha1 must not group, got %d groups", len(groups))
	}
}
