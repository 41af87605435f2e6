// Package service turns a month request into a laid-out calendar: it pulls
// raw events from the configured sources, normalizes and orders them, and
// runs the layout. Source failures never reach the layout; they degrade to
// an empty event list.
package service

import (
	"context"
	"sync"
	"time"

	"mediacal/internal/calendar"
	appLog "mediacal/internal/log"
	"mediacal/internal/model"
	"mediacal/internal/source"
)

// MonthLayout is the computed view of one month.
type MonthLayout struct {
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	Today      model.Date              `json:"today"`
	RangeStart model.Date              `json:"range_start"`
	RangeEnd   model.Date              `json:"range_end"`
	Events     []model.NormalizedEvent `json:"-"`
	Weeks      []model.CalendarWeek    `json:"weeks"`
	// Degraded is set when a source failed and the layout may be incomplete.
	Degraded bool `json:"degraded,omitempty"`
}

// Options configures a Service.
type Options struct {
	Icons    *calendar.IconTable
	Geometry calendar.Geometry
	// Location decides the current date. Nil means time.Local.
	Location *time.Location
	// CacheTTL bounds how long a month layout is reused. Zero disables
	// caching.
	CacheTTL time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

type cacheEntry struct {
	layout    MonthLayout
	today     model.Date
	updatedAt time.Time
}

type monthKey struct {
	year  int
	month time.Month
}

// Service computes month layouts. It is safe for concurrent use.
type Service struct {
	src      source.Source
	icons    *calendar.IconTable
	layout   *calendar.Layout
	location *time.Location
	ttl      time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	cache map[monthKey]cacheEntry
}

// New creates a Service reading events from src.
func New(src source.Source, opts Options) *Service {
	if opts.Icons == nil {
		opts.Icons = calendar.DefaultIconTable()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		src:      src,
		icons:    opts.Icons,
		layout:   calendar.NewLayout(opts.Geometry),
		location: opts.Location,
		ttl:      opts.CacheTTL,
		now:      opts.Now,
		cache:    make(map[monthKey]cacheEntry),
	}
}

// Today returns the current date in the service's location.
func (s *Service) Today() model.Date {
	return model.DateOf(s.now().In(s.location))
}

// CurrentMonth returns the year and month containing Today.
func (s *Service) CurrentMonth() (int, time.Month) {
	today := s.Today()
	return today.Year(), today.Month()
}

// Month returns the layout for (year, month), served from cache when fresh.
// A cached layout is recomputed when the date has changed since, so the
// today marker never goes stale.
func (s *Service) Month(ctx context.Context, year int, month time.Month) MonthLayout {
	key := monthKey{year, month}
	today := s.Today()

	if s.ttl > 0 {
		s.mu.RLock()
		entry, ok := s.cache[key]
		s.mu.RUnlock()
		if ok && entry.today.Equal(today) && s.now().Sub(entry.updatedAt) < s.ttl {
			return entry.layout
		}
	}
	return s.recompute(ctx, key, today)
}

// Refresh recomputes (year, month) regardless of the cache and stores the
// result.
func (s *Service) Refresh(ctx context.Context, year int, month time.Month) MonthLayout {
	return s.recompute(ctx, monthKey{year, month}, s.Today())
}

func (s *Service) recompute(ctx context.Context, key monthKey, today model.Date) MonthLayout {
	ml := s.compute(ctx, key.year, key.month, today)

	// Degraded layouts are not cached so the next request retries the source.
	if s.ttl > 0 && !ml.Degraded {
		s.mu.Lock()
		s.cache[key] = cacheEntry{layout: ml, today: today, updatedAt: s.now()}
		s.mu.Unlock()
	}
	return ml
}

// Invalidate drops every cached layout.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[monthKey]cacheEntry)
	s.mu.Unlock()
}

func (s *Service) compute(ctx context.Context, year int, month time.Month, today model.Date) MonthLayout {
	started := time.Now()
	degraded := false

	raw, err := s.src.EventsForMonth(ctx, year, month)
	if err != nil {
		appLog.Error("event fetch failed; laying out available events only", err, "year", year, "month", int(month), "available", len(raw))
		degraded = true
	}

	events := calendar.OrderForLayout(calendar.Normalize(raw, s.icons))
	weeks := s.layout.Weeks(year, month, events, today)
	start, end := calendar.GridBounds(year, month)

	appLog.Debug("month layout computed",
		"year", year,
		"month", int(month),
		"events", len(events),
		"weeks", len(weeks),
		"elapsed", time.Since(started),
	)

	return MonthLayout{
		Year:       year,
		Month:      int(month),
		Today:      today,
		RangeStart: start,
		RangeEnd:   end,
		Events:     events,
		Weeks:      weeks,
		Degraded:   degraded,
	}
}
