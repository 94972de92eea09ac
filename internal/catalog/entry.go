package catalog

import (
	"strings"

	"romdex/internal/fingerprint"
)

// Entry is one reference record from an imported catalog. Entries are
// immutable once imported; Seq preserves document order so ambiguous
// matches resolve deterministically.
type Entry struct {
	// Seq is the zero-based position of this entry in catalog import order.
	Seq int
	// Name is the declared file name of the dump.
	Name string
	// Title is the logical game title owning this dump.
	Title string
	// Parent is the title this release is a clone of. Empty means the
	// entry is itself a parent.
	Parent string
	// Fingerprint is the declared known-good identity.
	Fingerprint fingerprint.Fingerprint
	// Flags declared by the cataloging group.
	NoDump   bool
	BadDump  bool
	Verified bool
	// Region and language tags, e.g. "USA", "Europe", "En", "Ja".
	Regions   []string
	Languages []string
}

// IsParent reports whether this entry heads its own parent/clone family.
func (e *Entry) IsParent() bool {
	return strings.TrimSpace(e.Parent) == ""
}

// FamilyTitle returns the parent title this entry belongs to: its own title
// for parents, the referenced parent title for clones.
func (e *Entry) FamilyTitle() string {
	if parent := strings.TrimSpace(e.Parent); parent != "" {
		return parent
	}
	return e.Title
}

// Flagged reports whether the catalog marks this dump as not trustworthy.
func (e *Entry) Flagged() bool {
	return e.NoDump || e.BadDump
}
