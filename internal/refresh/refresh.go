// Package refresh periodically recomputes the current month so that API
// requests are served from a warm cache.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "mediacal/internal/log"
	"mediacal/internal/service"
)

// Warmer is the part of the layout service the scheduler drives.
type Warmer interface {
	CurrentMonth() (int, time.Month)
	Refresh(ctx context.Context, year int, month time.Month) service.MonthLayout
}

// Scheduler runs Warm on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	warmer   Warmer
	schedule string
}

// New validates schedule (standard 5-field cron, or descriptors like
// "@every 5m") and returns a stopped Scheduler.
func New(schedule string, warmer Warmer, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))
	s := &Scheduler{cron: c, warmer: warmer, schedule: schedule}

	if _, err := c.AddFunc(schedule, func() { s.Warm(context.Background()) }); err != nil {
		return nil, fmt.Errorf("refresh: invalid schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start launches the cron loop in the background.
func (s *Scheduler) Start() {
	appLog.Info("refresh scheduler started", "schedule", s.schedule)
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	appLog.Info("refresh scheduler stopped")
}

// Warm recomputes the current month and the next one, which is where the
// user usually navigates.
func (s *Scheduler) Warm(ctx context.Context) {
	year, month := s.warmer.CurrentMonth()
	next := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)

	for _, m := range []struct {
		year  int
		month time.Month
	}{{year, month}, {next.Year(), next.Month()}} {
		ml := s.warmer.Refresh(ctx, m.year, m.month)
		appLog.Info("month layout refreshed",
			"year", m.year,
			"month", int(m.month),
			"events", len(ml.Events),
			"degraded", ml.Degraded,
		)
	}
}
