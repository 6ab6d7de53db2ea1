// Package worker hosts the background loop that sweeps expired auth states
// out of the state store.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
)

// DefaultInterval is the default sweep interval.
const DefaultInterval = time.Minute

// Janitor periodically removes expired auth states. Abandoned login attempts
// leave states behind that no callback will ever consume.
type Janitor struct {
	stateStore driven.AuthStateStore
	logger     *slog.Logger
	interval   time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// JanitorConfig holds configuration for the janitor.
type JanitorConfig struct {
	StateStore driven.AuthStateStore
	Logger     *slog.Logger
	Interval   time.Duration
}

// NewJanitor creates a new state janitor.
func NewJanitor(cfg JanitorConfig) *Janitor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Janitor{
		stateStore: cfg.StateStore,
		logger:     logger,
		interval:   interval,
	}
}

// Start begins the sweep loop.
// It runs until Stop is called or the context is cancelled.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	j.mu.Unlock()

	j.logger.Info("janitor starting", "interval", j.interval)

	go j.sweepLoop(ctx)
	return nil
}

// Stop gracefully stops the janitor.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	close(j.stopCh)
	j.mu.Unlock()

	<-j.doneCh

	j.mu.Lock()
	j.running = false
	j.mu.Unlock()

	j.logger.Info("janitor stopped")
}

func (j *Janitor) sweepLoop(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor context cancelled")
			return
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	start := time.Now()
	if err := j.stateStore.Cleanup(ctx); err != nil {
		j.logger.Error("state cleanup failed", "error", err)
		return
	}
	j.logger.Debug("state cleanup completed", "duration", time.Since(start))
}
