// Package verify classifies fingerprinted files against a catalog index.
//
// Classification is strict by design: partial hash agreement (size and
// CRC32 without MD5/SHA-1 confirmation) reports a bad dump rather than a
// verified file, and ambiguity between duplicate catalog entries resolves
// deterministically by declared name and then import order.
package verify
