package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tablediff/tablediff/internal/errors"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "STORAGE_CONNECTION", "failed to open history database").
			WithSeverity(errors.SeverityCritical).
			WithGuidance("Check database file permissions and available disk space").
			WithContext("path", dbPath)
	}

	// Foreign keys for run -> mismatch cascade, WAL for concurrent reads
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	migrationMgr := newMigrationManager(db)
	if err := migrationMgr.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

// SaveRun saves a comparison run and sets its ID
func (s *SQLiteStorage) SaveRun(run *ComparisonRun) error {
	query := `
		INSERT INTO comparison_runs (expected_file, new_file, status, cells_compared,
			mismatch_count, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	result, err := s.db.Exec(query, run.ExpectedFile, run.NewFile, string(run.Status),
		run.CellsCompared, run.MismatchCount, run.ErrorMessage, run.DurationMs, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save comparison run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run ID: %w", err)
	}
	run.ID = id

	return nil
}

// SaveMismatches saves the mismatches of a run in a single transaction
func (s *SQLiteStorage) SaveMismatches(runID int64, mismatches []*MismatchRecord) error {
	if len(mismatches) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare(`
		INSERT INTO mismatches (run_id, column_name, row_number, expected_value, actual_value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mismatch insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range mismatches {
		result, err := stmt.Exec(runID, m.Column, m.Row, m.Expected, m.Actual)
		if err != nil {
			return fmt.Errorf("failed to save mismatch: %w", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			m.ID = id
		}
		m.RunID = runID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mismatches: %w", err)
	}

	return nil
}

// GetRun retrieves a comparison run by ID
func (s *SQLiteStorage) GetRun(id int64) (*ComparisonRun, error) {
	query := `
		SELECT id, expected_file, new_file, status, cells_compared,
			mismatch_count, error_message, duration_ms, created_at
		FROM comparison_runs
		WHERE id = ?
	`

	run, err := scanRun(s.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewError(errors.ErrorTypeStorage, "RUN_NOT_FOUND",
				fmt.Sprintf("comparison run %d not found", id)).
				WithGuidance("Use 'tablediff history' to list recorded runs")
		}
		return nil, fmt.Errorf("failed to get comparison run: %w", err)
	}

	return run, nil
}

// ListRuns retrieves comparison runs matching the filters, newest first
func (s *SQLiteStorage) ListRuns(filters RunFilters) ([]*ComparisonRun, error) {
	query := `
		SELECT id, expected_file, new_file, status, cells_compared,
			mismatch_count, error_message, duration_ms, created_at
		FROM comparison_runs
	`

	var conditions []string
	var args []interface{}

	if filters.ExpectedFile != "" {
		conditions = append(conditions, "expected_file = ?")
		args = append(args, filters.ExpectedFile)
	}
	if filters.NewFile != "" {
		conditions = append(conditions, "new_file = ?")
		args = append(args, filters.NewFile)
	}
	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filters.Status))
	}
	if !filters.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filters.Since)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comparison runs: %w", err)
	}
	defer rows.Close()

	var runs []*ComparisonRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comparison run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparison runs: %w", err)
	}

	return runs, nil
}

// GetMismatches retrieves the recorded mismatches of a run in report order
func (s *SQLiteStorage) GetMismatches(runID int64) ([]*MismatchRecord, error) {
	query := `
		SELECT id, run_id, column_name, row_number, expected_value, actual_value
		FROM mismatches
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mismatches: %w", err)
	}
	defer rows.Close()

	var mismatches []*MismatchRecord
	for rows.Next() {
		var m MismatchRecord
		if err := rows.Scan(&m.ID, &m.RunID, &m.Column, &m.Row, &m.Expected, &m.Actual); err != nil {
			return nil, fmt.Errorf("failed to scan mismatch: %w", err)
		}
		mismatches = append(mismatches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mismatches: %w", err)
	}

	return mismatches, nil
}

// CleanupOldRuns deletes runs created before the cutoff and returns the
// number deleted. Their mismatches go with them via the foreign key.
func (s *SQLiteStorage) CleanupOldRuns(olderThan time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM comparison_runs WHERE created_at < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}

	return deleted, nil
}

// GetStats returns database size and record counts
func (s *SQLiteStorage) GetStats() (*DatabaseStats, error) {
	stats := &DatabaseStats{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM comparison_runs").Scan(&stats.Runs); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM mismatches").Scan(&stats.Mismatches); err != nil {
		return nil, fmt.Errorf("failed to count mismatches: %w", err)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := s.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}
	stats.DatabaseSizeBytes = pageCount * pageSize

	return stats, nil
}

// VacuumDatabase reclaims unused space
func (s *SQLiteStorage) VacuumDatabase() error {
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanner abstracts sql.Row and sql.Rows for scanRun
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*ComparisonRun, error) {
	var run ComparisonRun
	var status string
	var errorMessage sql.NullString

	err := sc.Scan(&run.ID, &run.ExpectedFile, &run.NewFile, &status,
		&run.CellsCompared, &run.MismatchCount, &errorMessage,
		&run.DurationMs, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}

	return &run, nil
}
