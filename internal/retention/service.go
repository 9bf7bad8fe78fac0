// Package retention prunes old comparison runs from history storage
package retention

import (
	"context"
	"sync"
	"time"

	"github.com/tablediff/tablediff/internal/config"
	"github.com/tablediff/tablediff/internal/logging"
	"github.com/tablediff/tablediff/internal/storage"
)

// Service periodically deletes comparison runs older than the configured
// retention period. It is started alongside watch mode; one-shot commands
// use 'tablediff cleanup' instead.
type Service struct {
	storage storage.Storage
	config  config.HistoryConfig
	logger  *logging.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewService creates a new retention service
func NewService(store storage.Storage, cfg config.HistoryConfig, logger *logging.Logger) *Service {
	return &Service{
		storage: store,
		config:  cfg,
		logger:  logger.WithComponent("retention"),
	}
}

// Start begins periodic cleanup. It returns immediately; cleanup runs on
// a background goroutine until Stop is called or the context ends.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || !s.config.AutoCleanup || s.config.RetentionDays <= 0 {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx)
}

// Stop halts periodic cleanup and waits for the current pass to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	// One pass up front so long-running watches do not wait a full
	// interval before pruning.
	s.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(ctx)
		}
	}
}

// Cleanup deletes runs older than the retention period and returns the
// number deleted.
func (s *Service) Cleanup() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	return s.storage.CleanupOldRuns(cutoff)
}

func (s *Service) cleanup(ctx context.Context) {
	deleted, err := s.Cleanup()
	if err != nil {
		s.logger.LogError(ctx, err, "History cleanup failed")
		return
	}
	if deleted > 0 {
		s.logger.Info("Pruned old comparison runs",
			"deleted", deleted,
			"retention_days", s.config.RetentionDays)
	}
}
