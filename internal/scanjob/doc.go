// Package scanjob orchestrates collection scans: the job state machine,
// progress reporting to sinks, and the concurrent enumerate-hash-match
// pipeline that fills the collection store.
package scanjob
