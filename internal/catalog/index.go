package catalog

import (
	"romdex/internal/fingerprint"
)

type sizeCRCKey struct {
	size int64
	crc  string
}

// Index is a derived, rebuildable lookup structure over a set of entries.
// The primary key is (size, CRC32); several entries may share a key, either
// through genuine CRC collisions or near-duplicate dumps, and Lookup returns
// all of them. Families groups entries by parent title for clone walking.
type Index struct {
	byKey    map[sizeCRCKey][]*Entry
	families map[string][]*Entry
	entries  []*Entry
}

// Build constructs the index in one pass over the entries. Declared hashes
// are normalized to lowercase hex so computed fingerprints compare directly.
// Seq is assigned from slice order when not already set by the reader.
func Build(entries []Entry) *Index {
	idx := &Index{
		byKey:    make(map[sizeCRCKey][]*Entry, len(entries)),
		families: make(map[string][]*Entry),
		entries:  make([]*Entry, 0, len(entries)),
	}

	for i := range entries {
		entry := entries[i]
		entry.Fingerprint.Normalize()
		if entry.Seq == 0 && i > 0 {
			entry.Seq = i
		}

		stored := &entry
		idx.entries = append(idx.entries, stored)

		key := sizeCRCKey{size: entry.Fingerprint.Size, crc: entry.Fingerprint.CRC32}
		idx.byKey[key] = append(idx.byKey[key], stored)

		family := entry.FamilyTitle()
		idx.families[family] = append(idx.families[family], stored)
	}

	return idx
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns all indexed entries in import order.
func (idx *Index) Entries() []*Entry {
	return idx.entries
}

// Lookup returns every entry sharing the given size and CRC32. The result
// may be empty, or hold multiple candidates for colliding dumps.
func (idx *Index) Lookup(size int64, crc string) []*Entry {
	return idx.byKey[sizeCRCKey{size: size, crc: crc}]
}

// ResolveExact narrows candidates to the single entry whose full declared
// fingerprint equals fp. Ties between duplicate catalog entries are broken
// by preferring the entry whose declared name equals declaredName, then by
// lowest import sequence, so resolution is stable across runs.
func ResolveExact(fp fingerprint.Fingerprint, declaredName string, candidates []*Entry) *Entry {
	var best *Entry
	for _, candidate := range candidates {
		if !candidate.Fingerprint.Equal(fp) {
			continue
		}
		if candidate.Name == declaredName {
			return candidate
		}
		if best == nil || candidate.Seq < best.Seq {
			best = candidate
		}
	}
	return best
}

// Families returns the parent-title grouping: every entry keyed by the
// family it belongs to, including the parent entry itself.
func (idx *Index) Families() map[string][]*Entry {
	return idx.families
}

// Family returns the entries belonging to one parent title.
func (idx *Index) Family(title string) []*Entry {
	return idx.families[title]
}
