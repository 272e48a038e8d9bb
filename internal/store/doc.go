// Package store provides a SQLite-backed ledger of translation sessions.
//
// Every compiled session is recorded once, keyed by its session ID:
//   - sessions: timestamps, translator version, program and config fingerprints, abort error
//   - session_classes: emitted and skipped classes in order
//   - violations, warnings, validation_errors: diagnostics in order
//   - counters: session statistics
//   - units: emitted unit names with domain-separated content hashes
//
// # Deterministic Query Results
//
// Child rows carry a seq column and are always read ORDER BY seq ASC.
// Sessions are listed in insertion order.
//
// # Connections
//
// Every connection is opened with WAL journaling, NORMAL sync, a five
// second busy timeout and foreign keys enforced. The pool holds one
// connection, which also keeps ":memory:" ledgers alive for the life of
// the Store. PRAGMA user_version tracks applied migrations.
package store
