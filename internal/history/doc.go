// Package history persists one row per sync run in a SQLite database so
// operators can review past runs with `bget history`.
//
// The schema is embedded and versioned; a version mismatch is reported
// rather than migrated. Writes retry briefly on SQLITE_BUSY because a cron
// run and an interactive `bget history` may touch the file at once.
package history
