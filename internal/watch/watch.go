// Package watch re-runs a file comparison on a schedule
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tablediff/tablediff/internal/diff"
	"github.com/tablediff/tablediff/internal/logging"
	"github.com/tablediff/tablediff/internal/storage"
)

// Status describes a running watcher
type Status struct {
	ExpectedFile string     `json:"expected_file"`
	NewFile      string     `json:"new_file"`
	Schedule     string     `json:"schedule"`
	StartedAt    time.Time  `json:"started_at"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	RunCount     int64      `json:"run_count"`
	ErrorCount   int64      `json:"error_count"`
	LastMismatch int        `json:"last_mismatch_count"`
	Running      bool       `json:"running"`
}

// Watcher periodically re-compares a file pair as the generating test
// suite rewrites the new file. Each pass is recorded to storage.
type Watcher struct {
	cron     *cron.Cron
	expected string
	newFile  string
	opts     diff.Options
	storage  storage.Storage
	logger   *logging.Logger

	// OnResult, when set, is invoked after every pass with the partial
	// result and comparison error. Used by the watch command to print
	// mismatch lines as they are found.
	OnResult func(*diff.Result, error)

	mu         sync.Mutex
	running    bool
	schedule   string
	startedAt  time.Time
	lastRunAt  time.Time
	runCount   int64
	errorCount int64
	lastCount  int
}

// NewWatcher creates a watcher for one file pair
func NewWatcher(expectedFile, newFile string, opts diff.Options, store storage.Storage, logger *logging.Logger) *Watcher {
	return &Watcher{
		cron:     cron.New(),
		expected: expectedFile,
		newFile:  newFile,
		opts:     opts,
		storage:  store,
		logger:   logger.WithComponent("watch"),
	}
}

// Start schedules the comparison and begins running it. The schedule is
// a cron expression, including the @every form.
func (w *Watcher) Start(ctx context.Context, schedule string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher is already running")
	}

	_, err := w.cron.AddFunc(schedule, func() {
		w.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	w.running = true
	w.schedule = schedule
	w.startedAt = time.Now()
	w.cron.Start()

	w.logger.Info("Watch started",
		"expected_file", w.expected,
		"new_file", w.newFile,
		"schedule", schedule)

	return nil
}

// Stop halts the schedule and waits for a running pass to complete
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		w.logger.Warn("Timeout waiting for comparison pass to complete")
	}

	w.logger.Info("Watch stopped")
}

// RunOnce performs a single comparison pass immediately, outside the
// schedule. Watch mode calls it once at startup so the first report does
// not wait for the first tick.
func (w *Watcher) RunOnce(ctx context.Context) (*diff.Result, error) {
	return w.runOnce(ctx)
}

func (w *Watcher) runOnce(ctx context.Context) (*diff.Result, error) {
	result, err := diff.CompareFiles(w.expected, w.newFile, w.opts)

	w.mu.Lock()
	w.lastRunAt = time.Now()
	w.runCount++
	if err != nil {
		w.errorCount++
	}
	if result != nil {
		w.lastCount = len(result.Mismatches)
	}
	w.mu.Unlock()

	switch {
	case err != nil && result == nil:
		// Parse or IO failure, nothing was compared
		w.logger.LogError(ctx, err, "Comparison pass failed")
	case err != nil:
		w.logger.LogError(ctx, err, "Comparison aborted on structural mismatch")
	case result.HasMismatches():
		w.logger.Warn("Value mismatches found",
			"mismatches", len(result.Mismatches),
			"cells_compared", result.CellsCompared)
	default:
		w.logger.Debug("Files agree",
			"cells_compared", result.CellsCompared)
	}

	if result != nil && w.storage != nil {
		if _, recErr := storage.RecordResult(w.storage, result, err); recErr != nil {
			w.logger.LogError(ctx, recErr, "Failed to record comparison run")
		}
	}

	if w.OnResult != nil {
		w.OnResult(result, err)
	}

	return result, err
}

// Status returns a snapshot of the watcher state
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := Status{
		ExpectedFile: w.expected,
		NewFile:      w.newFile,
		Schedule:     w.schedule,
		StartedAt:    w.startedAt,
		RunCount:     w.runCount,
		ErrorCount:   w.errorCount,
		LastMismatch: w.lastCount,
		Running:      w.running,
	}
	if !w.lastRunAt.IsZero() {
		t := w.lastRunAt
		status.LastRunAt = &t
	}

	return status
}
