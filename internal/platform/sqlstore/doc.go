// Package sqlstore provides SQL implementations of the storage interfaces
// defined in the internal/store package. The same queries run against
// PostgreSQL (through pgx) and SQLite (through modernc.org/sqlite); sqlx
// rebinds placeholders for whichever driver is in use.
//
// The package also owns the schema: migrations are embedded and applied
// with goose.
package sqlstore
