// Package scheduler owns the periodic background jobs: the upstream call
// budget reset, quote-cache cleanup and the daily balance snapshot.
package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lifedash/portfolio-engine/internal/config"
	"github.com/lifedash/portfolio-engine/internal/quotecache"
)

// Snapshotter records a balance-history row per account for a date.
// *service.SnapshotService satisfies this interface.
type Snapshotter interface {
	SnapshotAll(date time.Time) error
}

// Scheduler wraps a cron runner with the application's three standing jobs.
type Scheduler struct {
	cron *cron.Cron
}

// New registers the standing jobs and returns a stopped scheduler.
//
// The rate-limit window reset is fixed at once per minute to match the
// upstream provider's per-minute budget; the other two schedules come from
// configuration.
func New(cfg *config.Config, cache *quotecache.Cache, limiter *quotecache.Limiter, snapshots Snapshotter) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc("* * * * *", limiter.Reset); err != nil {
		return nil, fmt.Errorf("failed to schedule rate-limit reset: %w", err)
	}

	if _, err := c.AddFunc(cfg.Cache.CleanupSchedule, func() {
		if evicted := cache.Cleanup(cfg.Cache.CleanupMaxAge); evicted > 0 {
			log.Printf("scheduler: evicted %d stale quotes from cache", evicted)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule cache cleanup: %w", err)
	}

	if _, err := c.AddFunc(cfg.Snapshot.Schedule, func() {
		date := time.Now().UTC()
		if err := snapshots.SnapshotAll(date); err != nil {
			log.Printf("scheduler: daily snapshot failed: %v", err)
			return
		}
		log.Printf("scheduler: recorded balance snapshots for %s", date.Format("2006-01-02"))
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule daily snapshot: %w", err)
	}

	return &Scheduler{cron: c}, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
