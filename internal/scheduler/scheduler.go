// Package scheduler fires the batch run once a day at a fixed wall-clock
// time in an explicitly configured timezone.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"jobfeed/internal/model"
)

// Task is the work the scheduler triggers.
type Task func(ctx context.Context)

// DailyScheduler runs a task at hour:minute in loc, every day. It runs in
// the background, independent of the request-serving path; the same task
// can also be invoked directly (manual trigger) while the scheduler is
// live.
type DailyScheduler struct {
	hour   int
	minute int
	loc    *time.Location
	task   Task
	clock  model.Clock
	logger *slog.Logger
}

// NewDaily creates a scheduler firing at hour:minute in loc.
func NewDaily(hour, minute int, loc *time.Location, task Task, clock model.Clock, logger *slog.Logger) *DailyScheduler {
	return &DailyScheduler{
		hour:   hour,
		minute: minute,
		loc:    loc,
		task:   task,
		clock:  clock,
		logger: logger,
	}
}

// NextRun returns the next occurrence of the configured wall-clock time,
// strictly after now. DST transitions resolve through the location: the
// scheduler always targets the local hour:minute, not a fixed interval.
func (s *DailyScheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks, firing the task at each scheduled time, until ctx is
// cancelled. It returns nil on cancellation (graceful shutdown).
func (s *DailyScheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"at", timeOfDay(s.hour, s.minute),
		"timezone", s.loc.String(),
	)

	for {
		next := s.NextRun(s.clock.Now())
		s.logger.Info("next scheduled batch", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(s.clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("shutting down scheduler")
			return nil
		case <-timer.C:
			s.task(ctx)
		}
	}
}

func timeOfDay(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04")
}
