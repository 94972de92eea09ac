// Package dedupe finds identical content across a scanned collection.
//
// Grouping requires the full fingerprint tuple, never size or CRC alone,
// and canonical selection is a deterministic function of the records so
// repeated runs agree on which copy survives.
package dedupe
