package catalog_test

import (
	"testing"

	"romdex/internal/catalog"
	"romdex/internal/fingerprint"
)

func fp(size int64, crc, md5, sha1 string) fingerprint.Fingerprint {
	return fingerprint.Fingerprint{Size: size, CRC32: crc, MD5: md5, SHA1: sha1}
}

func TestBuildNormalizesDeclaredHashes(t *testing.T) {
	idx := catalog.Build([]catalog.Entry{
		{Name: "game.bin", Title: "Game", Fingerprint: fp(10, "CBF43926", "AA", "BB")},
	})

	got := idx.Lookup(10, "cbf43926")
	if len(got) != 1 {
		t.Fatalf("expected lookup hit after normalization, got %d entries", len(got))
	}
}

func TestLookupReturnsAllCollidingCandidates(t *testing.T) {
	idx := catalog.Build([]catalog.Entry{
		{Name: "a.bin", Title: "A", Fingerprint: fp(64, "deadbeef", "md5-a", "sha-a")},
		{Name: "b.bin", Title: "B", Fingerprint: fp(64, "deadbeef", "md5-b", "sha-b")},
		{Name: "c.bin", Title: "C", Fingerprint: fp(65, "deadbeef", "md5-c", "sha-c")},
	})

	got := idx.Lookup(64, "deadbeef")
	if len(got) != 2 {
		t.Fatalf("expected both colliding entries, got %d", len(got))
	}
	if idx.Lookup(66, "deadbeef") != nil {
		t.Fatal("expected no candidates for unknown size")
	}
}

func TestResolveExactPrefersDeclaredName(t *testing.T) {
	shared := fp(64, "deadbeef", "same-md5", "same-sha")
	idx := catalog.Build([]catalog.Entry{
		{Name: "first.bin", Title: "First", Fingerprint: shared},
		{Name: "second.bin", Title: "Second", Fingerprint: shared},
	})

	candidates := idx.Lookup(64, "deadbeef")
	match := catalog.ResolveExact(shared, "second.bin", candidates)
	if match == nil || match.Name != "second.bin" {
		t.Fatalf("expected name-equal candidate to win, got %+v", match)
	}
}

func TestResolveExactFallsBackToImportOrder(t *testing.T) {
	shared := fp(64, "deadbeef", "same-md5", "same-sha")
	idx := catalog.Build([]catalog.Entry{
		{Name: "first.bin", Title: "First", Fingerprint: shared},
		{Name: "second.bin", Title: "Second", Fingerprint: shared},
	})

	match := catalog.ResolveExact(shared, "unrelated.bin", idx.Lookup(64, "deadbeef"))
	if match == nil || match.Name != "first.bin" {
		t.Fatalf("expected first-imported candidate, got %+v", match)
	}
}

func TestResolveExactRejectsPartialHashAgreement(t *testing.T) {
	idx := catalog.Build([]catalog.Entry{
		{Name: "a.bin", Title: "A", Fingerprint: fp(64, "deadbeef", "md5-a", "sha-a")},
	})

	// Same size+CRC but different MD5/SHA1 must not resolve.
	probe := fp(64, "deadbeef", "md5-x", "sha-x")
	if match := catalog.ResolveExact(probe, "a.bin", idx.Lookup(64, "deadbeef")); match != nil {
		t.Fatalf("expected nil for partial agreement, got %+v", match)
	}
}

func TestFamiliesIncludeParentAndClones(t *testing.T) {
	idx := catalog.Build([]catalog.Entry{
		{Name: "game (usa).bin", Title: "Game (USA)", Fingerprint: fp(1, "01", "a", "b")},
		{Name: "game (eur).bin", Title: "Game (Europe)", Parent: "Game (USA)", Fingerprint: fp(1, "02", "c", "d")},
		{Name: "other.bin", Title: "Other", Fingerprint: fp(2, "03", "e", "f")},
	})

	family := idx.Family("Game (USA)")
	if len(family) != 2 {
		t.Fatalf("expected parent plus clone, got %d entries", len(family))
	}
	if len(idx.Families()) != 2 {
		t.Fatalf("expected two families, got %d", len(idx.Families()))
	}
}
