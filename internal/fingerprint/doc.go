// Package fingerprint computes the multi-algorithm content identity used to
// verify files against reference catalogs.
//
// A Fingerprint combines size, CRC32, MD5, and SHA-1. Compute accumulates
// all three digests in one sequential pass over the stream so very large
// files are hashed without re-reading and without holding content in memory.
package fingerprint
