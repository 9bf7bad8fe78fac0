package storage

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	SQL         string
	Description string
	Version     int
}

// migrationManager handles database schema migrations
type migrationManager struct {
	db *sql.DB
}

// newMigrationManager creates a new migration manager
func newMigrationManager(db *sql.DB) *migrationManager {
	return &migrationManager{db: db}
}

// getCurrentVersion returns the current schema version
func (m *migrationManager) getCurrentVersion() (int, error) {
	createVersionTable := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := m.db.Exec(createVersionTable); err != nil {
		return 0, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := m.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}

	return version, nil
}

// applyMigration applies a single migration
func (m *migrationManager) applyMigration(migration Migration) error {
	if _, err := m.getCurrentVersion(); err != nil {
		return fmt.Errorf("failed to initialize schema version: %w", err)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err := tx.Exec(migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration %d (%s): %w",
			migration.Version, migration.Description, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}

	return nil
}

// runMigrations applies all pending migrations
func (m *migrationManager) runMigrations() error {
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, migration := range getMigrations() {
		if migration.Version > currentVersion {
			if err := m.applyMigration(migration); err != nil {
				return fmt.Errorf("failed to apply migration: %w", err)
			}
		}
	}

	return nil
}

// getMigrations returns all available migrations in order
func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Initial schema creation",
			SQL: `
				-- Recorded comparison runs
				CREATE TABLE IF NOT EXISTS comparison_runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					expected_file TEXT NOT NULL,
					new_file TEXT NOT NULL,
					status TEXT NOT NULL,
					cells_compared INTEGER NOT NULL DEFAULT 0,
					mismatch_count INTEGER NOT NULL DEFAULT 0,
					error_message TEXT,
					duration_ms INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				-- Per-cell mismatches of a run
				CREATE TABLE IF NOT EXISTS mismatches (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id INTEGER NOT NULL,
					column_name TEXT NOT NULL,
					row_number INTEGER NOT NULL,
					expected_value TEXT NOT NULL,
					actual_value TEXT NOT NULL,
					FOREIGN KEY (run_id) REFERENCES comparison_runs(id) ON DELETE CASCADE
				);

				CREATE INDEX IF NOT EXISTS idx_runs_created_at ON comparison_runs(created_at);
				CREATE INDEX IF NOT EXISTS idx_runs_status ON comparison_runs(status);
				CREATE INDEX IF NOT EXISTS idx_mismatches_run_id ON mismatches(run_id);
			`,
		},
		{
			Version:     2,
			Description: "Index file pair lookups",
			SQL: `
				CREATE INDEX IF NOT EXISTS idx_runs_files ON comparison_runs(expected_file, new_file);
			`,
		},
	}
}
