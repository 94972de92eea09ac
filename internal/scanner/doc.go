// Package scanner discovers scannable file units under collection roots.
//
// Enumeration is lazy and tolerant: directories recurse, zip and gzip
// containers expand into virtual per-entry units, and per-item failures
// surface as error markers inside the sequence so a single unreadable file
// or corrupt archive never aborts a scan. The StreamOpener abstraction
// hands the hashing stage a byte stream for any unit regardless of where
// its bytes actually live.
package scanner
