// Package catalog models reference catalog entries and the lookup index the
// verification matcher consults.
//
// Lookup is keyed by (size, CRC32) and intentionally returns every candidate
// sharing that key; narrowing to a single entry requires full fingerprint
// equality via ResolveExact. Entries also carry parent/clone references,
// grouped by family so release resolution never re-scans the catalog.
package catalog
