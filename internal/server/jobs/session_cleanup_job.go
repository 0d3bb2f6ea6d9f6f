// Package jobs holds background work run on a cron schedule.
package jobs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/logging"
	"github.com/robfig/cron/v3"
)

// SessionPurger removes expired sessions and reports how many were deleted.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SessionCleanupJob deletes expired session rows.
type SessionCleanupJob struct {
	purger  SessionPurger
	logger  logging.Logger
	timeout time.Duration
}

func NewSessionCleanupJob(p SessionPurger, l logging.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{
		purger:  p,
		logger:  l.With("job", "session_cleanup"),
		timeout: 30 * time.Second,
	}
}

// Run is an interface method of cron.Job.
func (j *SessionCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		j.logger.Warn(ctx, "session cleanup failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info(ctx, "expired sessions removed", "count", n)
	}
}

// NewScheduler returns a stopped cron scheduler with job registered under
// schedule. Overlapping runs are skipped.
func NewScheduler(schedule string, job cron.Job, l logging.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger)))
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, err
	}
	l.Debug(context.Background(), "job scheduled", "schedule", schedule)
	return c, nil
}
