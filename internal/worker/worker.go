// Package worker runs periodic housekeeping for the download manager.
package worker

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cesargomez89/tubedrums/internal/logger"
)

type Sweeper interface {
	SweepFinished(olderThan time.Duration) int
}

type CachePurger interface {
	PurgeExpired() (int64, error)
}

// Retention drops old finished job records and expired catalog cache rows on
// a cron schedule. A zero retention keeps job records forever.
type Retention struct {
	cron      *cron.Cron
	Sweeper   Sweeper
	Purger    CachePurger
	Logger    *logger.Logger
	Schedule  string
	Retention time.Duration
	started   bool
	mu        sync.Mutex
}

func NewRetention(sweeper Sweeper, purger CachePurger, retention time.Duration, schedule string, log *logger.Logger) *Retention {
	if log == nil {
		log = logger.Default()
	}
	return &Retention{
		cron:      cron.New(),
		Sweeper:   sweeper,
		Purger:    purger,
		Logger:    log.WithComponent("retention"),
		Schedule:  schedule,
		Retention: retention,
	}
}

func (r *Retention) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Retention <= 0 && r.Purger == nil {
		r.Logger.Info("Retention disabled")
		return nil
	}
	if _, err := r.cron.AddFunc(r.Schedule, r.RunOnce); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", r.Schedule, err)
	}
	r.cron.Start()
	r.started = true
	r.Logger.Info("Starting retention", "schedule", r.Schedule, "retention", r.Retention)
	return nil
}

// Stop waits for a running sweep to finish.
func (r *Retention) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return
	}
	r.Logger.Info("Stopping retention")
	<-r.cron.Stop().Done()
	r.started = false
}

func (r *Retention) RunOnce() {
	if r.Retention > 0 && r.Sweeper != nil {
		if n := r.Sweeper.SweepFinished(r.Retention); n > 0 {
			r.Logger.Debug("Finished downloads swept", "count", n)
		}
	}
	if r.Purger != nil {
		n, err := r.Purger.PurgeExpired()
		if err != nil {
			r.Logger.Warn("Failed to purge expired cache entries", "error", err)
			return
		}
		if n > 0 {
			r.Logger.Debug("Expired cache entries purged", "count", n)
		}
	}
}
