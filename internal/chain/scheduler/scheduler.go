package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"momentum-backend/internal/chain/usecase"
)

// ExpiryScheduler runs the expired-chain sweep on a cron schedule.
type ExpiryScheduler struct {
	fanout   usecase.ChainFanoutUsecase
	schedule string
	cron     *cron.Cron
}

// NewExpiryScheduler creates a new scheduler. schedule is a standard
// cron expression; the production default is "0 */12 * * *".
func NewExpiryScheduler(fanout usecase.ChainFanoutUsecase, schedule string) *ExpiryScheduler {
	return &ExpiryScheduler{
		fanout:   fanout,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the sweep job and begins the cron loop.
func (s *ExpiryScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[Sweeper] Expiry scheduler started (schedule: %s)", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler. Does not interrupt a sweep that
// is already running.
func (s *ExpiryScheduler) Stop() {
	s.cron.Stop()
	log.Println("[Sweeper] Expiry scheduler stopped")
}

// runSweep executes one sweep. A failed run is only logged: the batch
// is all-or-nothing and the next scheduled run re-queries from scratch,
// so cleanup stays eventually consistent across failures.
func (s *ExpiryScheduler) runSweep() {
	runID := uuid.New().String()[:8]
	log.Printf("[Sweeper] Run %s: sweeping expired chains", runID)

	deleted, err := s.fanout.SweepExpiredChains(context.Background(), time.Now())
	if err != nil {
		log.Printf("[Sweeper] Run %s failed: %v", runID, err)
		return
	}
	log.Printf("[Sweeper] Run %s finished, removed %d chains", runID, deleted)
}
