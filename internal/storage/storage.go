// Package storage provides persistence for comparison-run history
package storage

import (
	"time"
)

// Storage defines the interface for history persistence
type Storage interface {
	SaveRun(run *ComparisonRun) error
	SaveMismatches(runID int64, mismatches []*MismatchRecord) error
	GetRun(id int64) (*ComparisonRun, error)
	ListRuns(filters RunFilters) ([]*ComparisonRun, error)
	GetMismatches(runID int64) ([]*MismatchRecord, error)

	// Data retention and maintenance
	CleanupOldRuns(olderThan time.Time) (int64, error)
	GetStats() (*DatabaseStats, error)
	VacuumDatabase() error

	Close() error
}

// RunStatus is the outcome of a recorded comparison
type RunStatus string

const (
	RunStatusOK       RunStatus = "ok"       // tables agreed on every cell
	RunStatusMismatch RunStatus = "mismatch" // value mismatches were found
	RunStatusError    RunStatus = "error"    // comparison aborted (parse or structural failure)
)

// ComparisonRun is one recorded execution of a comparison
type ComparisonRun struct {
	ID            int64     `json:"id"`
	ExpectedFile  string    `json:"expected_file"`
	NewFile       string    `json:"new_file"`
	Status        RunStatus `json:"status"`
	CellsCompared int       `json:"cells_compared"`
	MismatchCount int       `json:"mismatch_count"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// MismatchRecord is one persisted cell mismatch
type MismatchRecord struct {
	ID       int64  `json:"id"`
	RunID    int64  `json:"run_id"`
	Column   string `json:"column"`
	Row      int    `json:"row"` // 1-based, as reported
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// RunFilters represents filters for querying comparison runs
type RunFilters struct {
	ExpectedFile string
	NewFile      string
	Status       RunStatus
	Since        time.Time
	Limit        int
}

// DatabaseStats contains database size and record count information
type DatabaseStats struct {
	DatabaseSizeBytes int64 `json:"database_size_bytes"`
	Runs              int64 `json:"runs"`
	Mismatches        int64 `json:"mismatches"`
}

// NewStorage creates a new SQLite storage instance.
// This is a convenience function that wraps NewSQLiteStorage.
func NewStorage(dbPath string) (Storage, error) {
	return NewSQLiteStorage(dbPath)
}
