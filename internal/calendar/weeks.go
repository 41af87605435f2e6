package calendar

import (
	"time"

	"mediacal/internal/model"
)

// GridBounds returns the first and last day of the month grid for
// (year, month): the Monday on or before the 1st and the Sunday on or after
// the last day of the month.
func GridBounds(year int, month time.Month) (start, end model.Date) {
	first := model.NewDate(year, month, 1)
	last := model.NewDate(year, month+1, 0)

	// Sunday is weekday 0 but the last column of a Monday-start week.
	back := 6
	if wd := first.Weekday(); wd != time.Sunday {
		back = int(wd) - 1
	}
	forward := 0
	if wd := last.Weekday(); wd != time.Sunday {
		forward = 7 - int(wd)
	}

	return first.AddDays(-back), last.AddDays(forward)
}

// BuildWeeks returns the Monday-to-Sunday weeks covering the month, days
// only. today marks the IsToday cell; pass the zero Date for none.
func BuildWeeks(year int, month time.Month, today model.Date) []model.CalendarWeek {
	start, end := GridBounds(year, month)

	weeks := make([]model.CalendarWeek, 0, 6)
	for day := start; !day.After(end); {
		var w model.CalendarWeek
		for i := 0; i < 7; i++ {
			w.Days[i] = model.CalendarDay{
				Date:           day,
				DayNumber:      day.Day(),
				IsCurrentMonth: day.Month() == month,
				IsToday:        !today.IsZero() && day.Equal(today),
			}
			day = day.AddDays(1)
		}
		weeks = append(weeks, w)
	}
	return weeks
}
