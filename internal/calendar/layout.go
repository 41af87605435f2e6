// Package calendar computes the month-view layout: the Monday-start week
// grid, the row each event occupies in a week, and the flags that mark
// segments continuing across week and month boundaries.
//
// Everything here is pure. Callers hand in already fetched events and an
// explicit "today"; nothing reads the clock or performs I/O.
package calendar

import (
	"time"

	"mediacal/internal/model"
)

// Layout generates month grids with a given row geometry.
type Layout struct {
	Geometry Geometry
}

// NewLayout returns a Layout. Zero fields in g fall back to DefaultGeometry.
func NewLayout(g Geometry) *Layout {
	if g.MinWeekHeight <= 0 {
		g.MinWeekHeight = DefaultGeometry.MinWeekHeight
	}
	if g.BaseHeight <= 0 {
		g.BaseHeight = DefaultGeometry.BaseHeight
	}
	if g.RowHeight <= 0 {
		g.RowHeight = DefaultGeometry.RowHeight
	}
	return &Layout{Geometry: g}
}

// Weeks builds the grid for (year, month) and packs events into every week,
// in week order. Events are packed in the order given.
func (l *Layout) Weeks(year int, month time.Month, events []model.NormalizedEvent, today model.Date) []model.CalendarWeek {
	_, calendarEnd := GridBounds(year, month)

	weeks := BuildWeeks(year, month, today)
	for i := range weeks {
		bars := PackWeek(weeks[i], events, calendarEnd, year, month)
		weeks[i].Events = bars
		weeks[i].Height = l.Geometry.WeekHeight(bars)
	}
	return weeks
}

// GenerateCalendarWeeks is Weeks with DefaultGeometry.
func GenerateCalendarWeeks(year int, month time.Month, events []model.NormalizedEvent, today model.Date) []model.CalendarWeek {
	return NewLayout(DefaultGeometry).Weeks(year, month, events, today)
}
