package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fadhlanhapp/manpower-backend/logger"
)

// staleGrace is added to the poll window before a session counts as abandoned
const staleGrace = time.Minute

// SessionExpirer times out payment sessions still open before a cutoff
type SessionExpirer interface {
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron    *cron.Cron
	store   SessionExpirer
	maxAge  time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewScheduler creates a scheduler that sweeps payment sessions left open
// longer than pollWindow plus a grace minute. spec is a six-field cron
// expression; an empty spec registers no job.
func NewScheduler(spec string, store SessionExpirer, pollWindow time.Duration) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:    c,
		store:   store,
		maxAge:  pollWindow + staleGrace,
		timeout: 30 * time.Second,
		now:     time.Now,
	}

	if spec != "" {
		if _, err := s.cron.AddFunc(spec, s.SweepStaleSessions); err != nil {
			return nil, fmt.Errorf("register stale session sweep %q: %w", spec, err)
		}
	}

	return s, nil
}

// SweepStaleSessions marks abandoned INITIATED sessions as TIMED_OUT
func (s *Scheduler) SweepStaleSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cutoff := s.now().Add(-s.maxAge)
	n, err := s.store.ExpireStale(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to sweep stale payment sessions", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("Timed out stale payment sessions", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	logger.Info("Starting scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}
