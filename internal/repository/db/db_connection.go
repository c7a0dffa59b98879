package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// Init opens/creates a SQLite DB file and ensures tables exist.
func Init(path string) (*sql.DB, error) {
	conn, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite tolerates a single writer; keep the pool at one connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return conn, nil
}

const schemaStores = `
CREATE TABLE IF NOT EXISTS stores (
    id INTEGER PRIMARY KEY,
    timezone TEXT NOT NULL DEFAULT 'America/Chicago',
    created_at TIMESTAMP NOT NULL
);
`

const schemaBusinessHours = `
CREATE TABLE IF NOT EXISTS business_hours (
    store_id INTEGER NOT NULL REFERENCES stores(id),
    day_of_week INTEGER NOT NULL,
    start_local TEXT NOT NULL,
    end_local TEXT NOT NULL,
    PRIMARY KEY (store_id, day_of_week)
);
`

const schemaStoreStatus = `
CREATE TABLE IF NOT EXISTS store_status (
    store_id INTEGER NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    status TEXT NOT NULL
);
`

const schemaStoreStatusIndex = `
CREATE INDEX IF NOT EXISTS ix_store_status_store_id_timestamp
    ON store_status (store_id, timestamp);
`

const schemaReports = `
CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    requested_at TIMESTAMP NOT NULL,
    generated_at TIMESTAMP
);
`

const schemaReportItems = `
CREATE TABLE IF NOT EXISTS report_items (
    report_id TEXT NOT NULL REFERENCES reports(id),
    store_id INTEGER NOT NULL,
    uptime_last_hour INTEGER NOT NULL,
    uptime_last_day INTEGER NOT NULL,
    uptime_last_week INTEGER NOT NULL,
    downtime_last_hour INTEGER NOT NULL,
    downtime_last_day INTEGER NOT NULL,
    downtime_last_week INTEGER NOT NULL
);
`

const schemaReportItemsIndex = `
CREATE INDEX IF NOT EXISTS ix_report_items_report_id
    ON report_items (report_id);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(conn *sql.DB) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaStores,
		schemaBusinessHours,
		schemaStoreStatus,
		schemaStoreStatusIndex,
		schemaReports,
		schemaReportItems,
		schemaReportItemsIndex,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
