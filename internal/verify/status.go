package verify

import "strings"

// Status is the verification outcome for one scanned file. Exactly one
// status applies to a record at any time.
type Status string

const (
	StatusUnknown Status = "unknown"
	// StatusVerified: full fingerprint equals a known-good catalog entry
	// and the file carries the declared name.
	StatusVerified Status = "verified"
	// StatusNotInDat: no catalog entry shares the file's size and CRC32.
	StatusNotInDat Status = "not_in_dat"
	// StatusBadDump: the content differs from every known-good variant
	// sharing its size and CRC32, or the matched entry is flagged
	// nodump/baddump.
	StatusBadDump Status = "bad_dump"
	// StatusWrongName: content matches a known-good entry but the file
	// name differs from the declared name.
	StatusWrongName Status = "wrong_name"
	// StatusDuplicate: identical content exists elsewhere in the
	// collection and another copy was chosen as canonical.
	StatusDuplicate Status = "duplicate"
)

var statusSet = map[Status]struct{}{
	StatusUnknown:   {},
	StatusVerified:  {},
	StatusNotInDat:  {},
	StatusBadDump:   {},
	StatusWrongName: {},
	StatusDuplicate: {},
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}
