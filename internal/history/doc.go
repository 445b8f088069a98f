// Package history keeps a small SQLite log of subtitle requests: what was
// uploaded, which backend handled it and how it ended. The server records
// every request on a best-effort basis and prunes old rows at startup; the
// CLI reads it back for the history command and the /api/history endpoint.
//
// The database lives at <paths.state_dir>/history.db and uses WAL mode with
// a busy timeout. Writes retry briefly on SQLITE_BUSY. The schema is
// versioned; a mismatch is reported rather than migrated.
package history
