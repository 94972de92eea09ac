package fingerprint

import (
	"fmt"
	"strings"
)

// Fingerprint identifies file content by size plus three digests. Hash
// fields hold fixed-length lowercase hex: 8 characters for CRC32, 32 for
// MD5, 40 for SHA-1.
type Fingerprint struct {
	Size  int64
	CRC32 string
	MD5   string
	SHA1  string
}

// Complete reports whether all three digests are present. Partial
// fingerprints must never be persisted as final.
func (f Fingerprint) Complete() bool {
	return len(f.CRC32) == 8 && len(f.MD5) == 32 && len(f.SHA1) == 40
}

// Equal reports whether two fingerprints describe identical content.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Size == other.Size &&
		f.CRC32 == other.CRC32 &&
		f.MD5 == other.MD5 &&
		f.SHA1 == other.SHA1
}

// Key returns the full (size, crc32, md5, sha1) tuple as a grouping key.
func (f Fingerprint) Key() string {
	return fmt.Sprintf("%d:%s:%s:%s", f.Size, f.CRC32, f.MD5, f.SHA1)
}

// Normalize lowercases hash fields in place so catalog-declared hashes and
// computed hashes compare byte-for-byte.
func (f *Fingerprint) Normalize() {
	f.CRC32 = strings.ToLower(strings.TrimSpace(f.CRC32))
	f.MD5 = strings.ToLower(strings.TrimSpace(f.MD5))
	f.SHA1 = strings.ToLower(strings.TrimSpace(f.SHA1))
}
