// Package db persists indexed document chunks and their embedding vectors
// in SQLite.
package db

import (
	"database/sql"
	"fmt"

	"kbbot/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS index_meta (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS documents (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				source       TEXT NOT NULL UNIQUE,
				content_hash TEXT NOT NULL,
				indexed_at   TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS chunks (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
				seq         INTEGER NOT NULL,
				page        INTEGER NOT NULL DEFAULT 0,
				section     TEXT NOT NULL DEFAULT '',
				content     TEXT NOT NULL,
				token_count INTEGER NOT NULL,
				embedding   BLOB NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);

			INSERT INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetMeta reads an index metadata value, returning "" when absent.
func (d *DB) GetMeta(key string) string {
	var value string
	d.sql.QueryRow("SELECT value FROM index_meta WHERE key = ?", key).Scan(&value)
	return value
}

// SetMeta stores an index metadata value.
func (d *DB) SetMeta(key, value string) error {
	_, err := d.sql.Exec(
		"INSERT INTO index_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}
