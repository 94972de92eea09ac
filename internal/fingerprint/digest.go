package fingerprint

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"
)

// copyChunkSize bounds per-read memory while keeping large sequential reads
// efficient on spinning disks.
const copyChunkSize = 256 << 10

// crcTable is the reflected 0xEDB88320 table shared by the zip and DAT
// ecosystems (register init 0xFFFFFFFF, final XOR 0xFFFFFFFF).
var crcTable = crc32.MakeTable(crc32.IEEE)

// Compute reads the stream exactly once and produces a complete Fingerprint.
// All three digests accumulate in a single pass; the stream is never
// rewound or buffered whole. On a read failure no partial fingerprint is
// returned — the caller must treat the item as errored, not hashed.
func Compute(r io.Reader) (Fingerprint, error) {
	crcHash := crc32.New(crcTable)
	md5Hash := md5.New()
	sha1Hash := sha1.New()

	sink := io.MultiWriter(crcHash, md5Hash, sha1Hash)
	buf := make([]byte, copyChunkSize)
	size, err := io.CopyBuffer(sink, r, buf)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("hash stream: %w", err)
	}

	return Fingerprint{
		Size:  size,
		CRC32: fmt.Sprintf("%08x", crcHash.Sum32()),
		MD5:   hex.EncodeToString(md5Hash.Sum(nil)),
		SHA1:  hex.EncodeToString(sha1Hash.Sum(nil)),
	}, nil
}
