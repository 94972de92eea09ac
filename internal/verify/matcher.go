package verify

import (
	"romdex/internal/catalog"
	"romdex/internal/fingerprint"
)

// Match classifies a complete fingerprint plus declared file name against
// the catalog index. It returns exactly one status and, when content was
// identified, the matched entry.
//
// A size+CRC32 hit without full-hash confirmation is never accepted as
// verified: that case is classified BadDump because the content differs
// from every known-good variant sharing the CRC. This rule is the matcher's
// core trust guarantee.
func Match(idx *catalog.Index, fp fingerprint.Fingerprint, declaredName string) (Status, *catalog.Entry) {
	candidates := idx.Lookup(fp.Size, fp.CRC32)
	if len(candidates) == 0 {
		return StatusNotInDat, nil
	}

	entry := catalog.ResolveExact(fp, declaredName, candidates)
	if entry == nil {
		// CRC/size coincidence: same key, different content.
		return StatusBadDump, nil
	}

	if entry.Flagged() {
		return StatusBadDump, entry
	}
	if declaredName != entry.Name {
		return StatusWrongName, entry
	}
	return StatusVerified, entry
}
