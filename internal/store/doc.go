// Package store provides durable SQLite storage for the sighting pipeline:
// the master coordinate catalog, imported sighting rows, and recorded
// classification runs with their per-row assignments.
//
// The database is a single file opened with WAL mode so the HTTP viewer can
// read while an ingest or classify command writes. Schema changes are
// tracked with PRAGMA user_version migrations.
package store
