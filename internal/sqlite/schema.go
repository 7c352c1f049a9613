package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL. Every statement is idempotent so Attach can run it against an
// existing database file.
const (
	createProperties = `CREATE TABLE IF NOT EXISTS properties (
    name TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    created_at INTEGER NOT NULL
);`

	// value has no declared type, so SQLite keeps the storage class the codec
	// chose (INTEGER, REAL, TEXT or BLOB). absent is authoritative: a NULL
	// value with absent = 0 is an empty blob.
	createVersions = `CREATE TABLE IF NOT EXISTS versions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    property TEXT NOT NULL,
    subject_id TEXT NOT NULL,
    added_at INTEGER NOT NULL,
    absent INTEGER NOT NULL DEFAULT 0,
    value,
    FOREIGN KEY (property) REFERENCES properties(name)
);`
)

// Index DDL. History reads by (property, subject) dominate.
const (
	idxVersionsSubject = `CREATE INDEX IF NOT EXISTS idx_versions_subject ON versions(property, subject_id, added_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createProperties,
	createVersions,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxVersionsSubject,
}

// pragmas configure every connection. The backend keeps a single connection
// so these apply for its whole lifetime.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

func applySchema(db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("executing %q: %w", p, err)
		}
	}
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
