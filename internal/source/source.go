// Package source provides the collaborators that supply campaign events to
// the calendar: built-in demo data, a local file, a campaign backend over
// HTTP and ICS feeds.
//
// Month arguments are time.Month values (January == 1).
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLog "mediacal/internal/log"
	"mediacal/internal/model"
)

var ErrUnsupportedFormat = errors.New("source: unsupported file format")

// Source returns the raw events to show on a month view. Implementations
// may be slow or fail; callers decide how to degrade.
type Source interface {
	EventsForMonth(ctx context.Context, year int, month time.Month) ([]model.RawEvent, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context, year int, month time.Month) ([]model.RawEvent, error)

func (f Func) EventsForMonth(ctx context.Context, year int, month time.Month) ([]model.RawEvent, error) {
	return f(ctx, year, month)
}

// Named attaches a label to a Source for logging.
type Named struct {
	Name string
	Source
}

// Multi merges several sources in order. A failing source is logged and
// skipped; the events of the others are still returned together with the
// joined error.
type Multi []Named

func (m Multi) EventsForMonth(ctx context.Context, year int, month time.Month) ([]model.RawEvent, error) {
	var (
		all  []model.RawEvent
		errs []error
	)
	for _, s := range m {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		events, err := s.EventsForMonth(ctx, year, month)
		all = append(all, events...)
		if err != nil {
			appLog.Error("event source failed", err, "source", s.Name, "year", year, "month", int(month), "partial", len(events))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		appLog.Debug("event source fetched", "source", s.Name, "year", year, "month", int(month), "count", len(events))
	}
	return all, errors.Join(errs...)
}

// ForRange collects the events overlapping [from, to] by querying every
// month the range touches. Events reported by several months are kept once.
func ForRange(ctx context.Context, src Source, from, to model.Date) ([]model.RawEvent, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("source: range end %s is before start %s", to, from)
	}

	type key struct {
		id         int
		title      string
		start, end model.Date
	}
	seen := make(map[key]bool)
	var out []model.RawEvent

	for m := model.NewDate(from.Year(), from.Month(), 1); !m.After(to); m = model.NewDate(m.Year(), m.Month()+1, 1) {
		events, err := src.EventsForMonth(ctx, m.Year(), m.Month())
		if err != nil {
			return out, err
		}
		for _, ev := range events {
			if ev.StartDate.After(to) || ev.EndDate.Before(from) {
				continue
			}
			k := key{ev.ID, ev.Title, ev.StartDate, ev.EndDate}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, ev)
		}
	}
	return out, nil
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}
