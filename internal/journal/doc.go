// Package journal persists wire traffic to a local SQLite database for
// post-mortem inspection.
//
// Recording is best-effort: inserts run on a single writer goroutine
// behind a bounded queue, and records are dropped rather than ever
// blocking the protocol path.
package journal
