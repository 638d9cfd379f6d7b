package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/loginguard/internal/services"
)

// SweepManager periodically removes expired attempt records from the store.
// It complements the guard service's opportunistic sweep: a quiet endpoint
// still gets its records reclaimed.
type SweepManager struct {
	store    services.AttemptStore
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweepManager creates a new sweep manager
func NewSweepManager(store services.AttemptStore, logger *slog.Logger, interval time.Duration) *SweepManager {
	return &SweepManager{
		store:    store,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep task
func (sm *SweepManager) Start(ctx context.Context) {
	ticker := time.NewTicker(sm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	sm.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			sm.runSweep(ctx)
		case <-sm.stopCh:
			sm.logger.Info("sweep manager stopped")
			return
		case <-ctx.Done():
			sm.logger.Info("sweep manager context cancelled")
			return
		}
	}
}

// runSweep removes expired attempt records from the store
func (sm *SweepManager) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := sm.store.Sweep(sweepCtx, time.Now())
	if err != nil {
		sm.logger.Error("failed to sweep expired attempt records", slog.Any("error", err))
		return
	}

	if removed > 0 {
		sm.logger.Info("attempt record sweep completed", slog.Int64("records_removed", removed))
	}
}

// Stop signals the sweep manager to stop
func (sm *SweepManager) Stop() {
	close(sm.stopCh)
}
