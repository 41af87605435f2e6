package calendar

import (
	"time"

	"mediacal/internal/model"
)

// Geometry holds the pixel constants used to size a week row.
type Geometry struct {
	MinWeekHeight int
	BaseHeight    int
	RowHeight     int
}

// DefaultGeometry matches the month view's stylesheet.
var DefaultGeometry = Geometry{
	MinWeekHeight: 140,
	BaseHeight:    80,
	RowHeight:     36,
}

// WeekHeight returns max(MinWeekHeight, BaseHeight+(maxRow+1)*RowHeight).
// A week without bars gets MinWeekHeight.
func (g Geometry) WeekHeight(bars []model.EventBar) int {
	maxRow := -1
	for _, b := range bars {
		if b.Row > maxRow {
			maxRow = b.Row
		}
	}
	h := g.BaseHeight + (maxRow+1)*g.RowHeight
	if h < g.MinWeekHeight {
		return g.MinWeekHeight
	}
	return h
}

// rowGrid tracks occupied columns per row. Rows are appended on demand, so
// there is no ceiling on the number of overlapping events.
type rowGrid struct {
	rows [][7]bool
}

// place assigns the first row whose columns [from, to] are all free, marks
// them occupied and returns the row index.
func (g *rowGrid) place(from, to int) int {
	for r := range g.rows {
		if g.free(r, from, to) {
			g.mark(r, from, to)
			return r
		}
	}
	g.rows = append(g.rows, [7]bool{})
	r := len(g.rows) - 1
	g.mark(r, from, to)
	return r
}

func (g *rowGrid) free(r, from, to int) bool {
	for c := from; c <= to; c++ {
		if g.rows[r][c] {
			return false
		}
	}
	return true
}

func (g *rowGrid) mark(r, from, to int) {
	for c := from; c <= to; c++ {
		g.rows[r][c] = true
	}
}

// EffectiveEnd returns the date used for overlap and span computation:
// calendarEnd for events flagged as continuing into the next month, the
// event's own end date otherwise.
func EffectiveEnd(ev model.NormalizedEvent, calendarEnd model.Date) model.Date {
	if ev.ContinuesNextMonth {
		return calendarEnd
	}
	return ev.EndDate
}

// PackWeek places every event overlapping the week into first-fit rows, in
// the order given. year and month identify the displayed month.
func PackWeek(week model.CalendarWeek, events []model.NormalizedEvent, calendarEnd model.Date, year int, month time.Month) []model.EventBar {
	first, last := week.First(), week.Last()

	bars := make([]model.EventBar, 0)
	var grid rowGrid

	for _, ev := range events {
		end := EffectiveEnd(ev, calendarEnd)
		if ev.StartDate.After(last) || end.Before(first) {
			continue
		}

		startCol, endCol := -1, -1
		for i, day := range week.Days {
			if day.Date.Before(ev.StartDate) || day.Date.After(end) {
				continue
			}
			if startCol < 0 {
				startCol = i
			}
			endCol = i
		}
		// An event whose end precedes its start covers no column.
		if startCol < 0 {
			continue
		}

		continuesNext := ev.EndDate.YearMonthAfter(year, month)
		bars = append(bars, model.EventBar{
			Event:                 ev,
			Row:                   grid.place(startCol, endCol),
			StartCol:              startCol,
			Span:                  endCol - startCol + 1,
			IsStart:               !ev.StartDate.Before(first) && !ev.StartDate.After(last),
			IsEnd:                 !end.Before(first) && !end.After(last),
			ComesFromPreviousWeek: ev.StartDate.Before(first),
			StartsInPreviousMonth: ev.StartDate.YearMonthBefore(year, month),
			ContinuesNextMonth:    continuesNext,
			IsLastVisibleSegment:  continuesNext && endCol == 6,
		})
	}
	return bars
}
