package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tablediff/tablediff/internal/errors"
)

// MemoryStorage implements the Storage interface in memory. It backs the
// --no-history mode and tests; nothing survives process exit.
type MemoryStorage struct {
	mu         sync.RWMutex
	runs       map[int64]*ComparisonRun
	mismatches map[int64][]*MismatchRecord
	nextRunID  int64
	nextMisID  int64
}

// NewMemoryStorage creates a new in-memory storage instance
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		runs:       make(map[int64]*ComparisonRun),
		mismatches: make(map[int64][]*MismatchRecord),
		nextRunID:  1,
		nextMisID:  1,
	}
}

// SaveRun saves a comparison run and sets its ID
func (s *MemoryStorage) SaveRun(run *ComparisonRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	run.ID = s.nextRunID
	s.nextRunID++

	stored := *run
	s.runs[run.ID] = &stored

	return nil
}

// SaveMismatches saves the mismatches of a run
func (s *MemoryStorage) SaveMismatches(runID int64, mismatches []*MismatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("comparison run %d not found", runID)
	}

	for _, m := range mismatches {
		m.ID = s.nextMisID
		s.nextMisID++
		m.RunID = runID

		stored := *m
		s.mismatches[runID] = append(s.mismatches[runID], &stored)
	}

	return nil
}

// GetRun retrieves a comparison run by ID
func (s *MemoryStorage) GetRun(id int64) (*ComparisonRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, errors.NewError(errors.ErrorTypeStorage, "RUN_NOT_FOUND",
			fmt.Sprintf("comparison run %d not found", id)).
			WithGuidance("Use 'tablediff history' to list recorded runs")
	}

	result := *run
	return &result, nil
}

// ListRuns retrieves comparison runs matching the filters, newest first
func (s *MemoryStorage) ListRuns(filters RunFilters) ([]*ComparisonRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []*ComparisonRun
	for _, run := range s.runs {
		if filters.ExpectedFile != "" && run.ExpectedFile != filters.ExpectedFile {
			continue
		}
		if filters.NewFile != "" && run.NewFile != filters.NewFile {
			continue
		}
		if filters.Status != "" && run.Status != filters.Status {
			continue
		}
		if !filters.Since.IsZero() && run.CreatedAt.Before(filters.Since) {
			continue
		}

		result := *run
		runs = append(runs, &result)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if filters.Limit > 0 && len(runs) > filters.Limit {
		runs = runs[:filters.Limit]
	}

	return runs, nil
}

// GetMismatches retrieves the recorded mismatches of a run in report order
func (s *MemoryStorage) GetMismatches(runID int64) ([]*MismatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*MismatchRecord
	for _, m := range s.mismatches[runID] {
		copied := *m
		result = append(result, &copied)
	}

	return result, nil
}

// CleanupOldRuns deletes runs created before the cutoff
func (s *MemoryStorage) CleanupOldRuns(olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if run.CreatedAt.Before(olderThan) {
			delete(s.runs, id)
			delete(s.mismatches, id)
			deleted++
		}
	}

	return deleted, nil
}

// GetStats returns record counts; size is always zero in memory
func (s *MemoryStorage) GetStats() (*DatabaseStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &DatabaseStats{
		Runs: int64(len(s.runs)),
	}
	for _, ms := range s.mismatches {
		stats.Mismatches += int64(len(ms))
	}

	return stats, nil
}

// VacuumDatabase is a no-op for in-memory storage
func (s *MemoryStorage) VacuumDatabase() error {
	return nil
}

// Close is a no-op for in-memory storage
func (s *MemoryStorage) Close() error {
	return nil
}
