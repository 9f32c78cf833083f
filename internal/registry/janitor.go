package registry

import (
	"context"
	"sync"
	"time"

	"github.com/keithhb33/MathVis/internal/logger"
)

// Janitor retention defaults.
const (
	DefaultRetention     = 24 * time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// Janitor periodically evicts terminal jobs older than the retention window.
// Pending jobs are left alone no matter how old they are.
type Janitor struct {
	store     Store
	retention time.Duration
	interval  time.Duration
}

// NewJanitor creates a janitor for the given store. Non-positive durations
// fall back to the defaults.
func NewJanitor(store Store, retention, interval time.Duration) *Janitor {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Janitor{store: store, retention: retention, interval: interval}
}

// Run sweeps the store until the context is cancelled. Launch it as a
// goroutine alongside the server.
func (j *Janitor) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger.Infof("Job janitor started (retention %s, sweep every %s)", j.retention, j.interval)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Job janitor received shutdown signal, stopping...")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.retention)
	evicted, err := j.store.Evict(ctx, cutoff)
	if err != nil {
		logger.Errorf("Job janitor sweep failed: %v", err)
		return
	}
	if evicted > 0 {
		logger.Infof("Job janitor evicted %d expired job(s)", evicted)
	}
}
