package dedupe

import (
	"sort"

	"romdex/internal/romstore"
	"romdex/internal/verify"
)

// Group is a set of records sharing one complete fingerprint tuple.
type Group struct {
	Key       string
	Canonical *romstore.RomRecord
	Copies    []*romstore.RomRecord
}

// Detect groups records by full (size, crc32, md5, sha1) tuple and selects
// one canonical copy per group. Every other member is marked Duplicate.
// Records without a complete fingerprint never participate.
//
// Canonical selection is deterministic regardless of input order: earliest
// scan timestamp wins, ties break to the shortest path, then the
// lexicographically smallest path.
func Detect(records []*romstore.RomRecord) []Group {
	byKey := make(map[string][]*romstore.RomRecord)
	var keys []string
	for _, record := range records {
		if !record.Hashed() {
			continue
		}
		key := record.Fingerprint.Key()
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], record)
	}
	sort.Strings(keys)

	var groups []Group
	for _, key := range keys {
		members := byKey[key]
		if len(members) < 2 {
			continue
		}

		sort.Slice(members, func(i, j int) bool {
			return lessCanonical(members[i], members[j])
		})

		canonical := members[0]
		copies := members[1:]
		for _, copy := range copies {
			copy.Status = verify.StatusDuplicate
		}
		groups = append(groups, Group{Key: key, Canonical: canonical, Copies: copies})
	}
	return groups
}

func lessCanonical(a, b *romstore.RomRecord) bool {
	if !a.ScannedAt.Equal(b.ScannedAt) {
		return a.ScannedAt.Before(b.ScannedAt)
	}
	if len(a.Path) != len(b.Path) {
		return len(a.Path) < len(b.Path)
	}
	return a.Path < b.Path
}
