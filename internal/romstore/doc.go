// Package romstore persists scanned collection records and scan job history
// in SQLite.
//
// The Store owns the database connection, schema initialization, and the
// flock-guarded lock file that serializes access between processes. Record
// writes always arrive in batches: SaveBatch upserts by (drive_id, path)
// inside one transaction so a scan never issues per-file writes. Scan jobs
// are kept as append-mostly history rows.
//
// Treat this package as the single source of truth for record semantics;
// schema changes bump the version in schema.go.
package romstore
