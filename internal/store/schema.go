package store

import (
	"context"
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

var tables = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		language TEXT NOT NULL,
		created_at TEXT NOT NULL,
		file_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		cycle_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS nodes (
		scan_id TEXT NOT NULL,
		id TEXT NOT NULL,
		kind TEXT NOT NULL CHECK(kind IN ('file', 'external', 'unresolved')),
		PRIMARY KEY (scan_id, id),
		FOREIGN KEY (scan_id) REFERENCES scans(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS edges (
		scan_id TEXT NOT NULL,
		from_node TEXT NOT NULL,
		to_node TEXT NOT NULL,
		kinds TEXT NOT NULL,
		weight INTEGER NOT NULL CHECK(weight >= 1),
		PRIMARY KEY (scan_id, from_node, to_node),
		FOREIGN KEY (scan_id) REFERENCES scans(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS cycles (
		scan_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		severity TEXT NOT NULL,
		length INTEGER NOT NULL,
		affected INTEGER NOT NULL,
		description TEXT NOT NULL,
		nodes_json TEXT NOT NULL,
		PRIMARY KEY (scan_id, position),
		FOREIGN KEY (scan_id) REFERENCES scans(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		scan_id TEXT NOT NULL,
		path TEXT NOT NULL,
		language TEXT NOT NULL,
		lines_of_code INTEGER NOT NULL,
		total_complexity INTEGER NOT NULL,
		max_complexity INTEGER NOT NULL,
		average_complexity REAL NOT NULL,
		maintainability_index REAL NOT NULL CHECK(maintainability_index >= 0.0 AND maintainability_index <= 100.0),
		PRIMARY KEY (scan_id, path),
		FOREIGN KEY (scan_id) REFERENCES scans(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS functions (
		scan_id TEXT NOT NULL,
		path TEXT NOT NULL,
		name TEXT NOT NULL,
		start_line INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		cyclomatic INTEGER NOT NULL CHECK(cyclomatic >= 1),
		params INTEGER NOT NULL,
		max_nesting INTEGER NOT NULL,
		FOREIGN KEY (scan_id) REFERENCES scans(id) ON DELETE CASCADE
	)`,
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_edges_to_node ON edges(scan_id, to_node)",
	"CREATE INDEX IF NOT EXISTS idx_functions_cyclomatic ON functions(scan_id, cyclomatic)",
	"CREATE INDEX IF NOT EXISTS idx_cycles_severity ON cycles(scan_id, severity)",
}

func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		for _, stmt := range tables {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to create table: %w", err)
			}
		}
		for _, stmt := range indexes {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}
		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

func (db *DB) runMigrations() error {
	version, err := db.schemaVersion()
	if err != nil {
		return err
	}
	switch {
	case version == 0:
		return db.initializeSchema()
	case version > currentSchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	db.logger.Debug("Database schema is up to date", "version", version)
	return nil
}

func (db *DB) schemaVersion() (int, error) {
	var name string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&name)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return version, err
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}
