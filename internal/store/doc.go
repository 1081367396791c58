// Package store is the SQLite statement journal.
//
// A run records one compilation: the engine version it targeted, the
// grammar variant that was selected and every statement produced, in
// order. Statement ids are computed by ir.StatementID, so writing the same
// run twice is a no-op (ON CONFLICT DO NOTHING).
//
// Reads are ordered by created_at and id for runs and by seq for
// statements, which keeps listings stable across invocations.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
