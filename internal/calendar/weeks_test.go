package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mediacal/internal/model"
)

func TestBuildWeeks_ContiguousMondayToSunday(t *testing.T) {
	for year := 2020; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			weeks := BuildWeeks(year, month, model.Date{})
			require.GreaterOrEqual(t, len(weeks), 4, "%d-%02d", year, month)
			require.LessOrEqual(t, len(weeks), 6, "%d-%02d", year, month)

			require.Equal(t, time.Monday, weeks[0].First().Weekday())
			require.Equal(t, time.Sunday, weeks[len(weeks)-1].Last().Weekday())

			prev := weeks[0].First().AddDays(-1)
			inMonth := 0
			for _, w := range weeks {
				for _, d := range w.Days {
					require.True(t, d.Date.Equal(prev.AddDays(1)), "gap or repeat at %s", d.Date)
					require.Equal(t, d.Date.Month() == month, d.IsCurrentMonth, "%s", d.Date)
					require.Equal(t, d.Date.Day(), d.DayNumber)
					if d.IsCurrentMonth {
						inMonth++
					}
					prev = d.Date
				}
			}
			require.Equal(t, model.NewDate(year, month+1, 0).Day(), inMonth)
		}
	}
}

func TestBuildWeeks_NoPaddingWhenMonthAligned(t *testing.T) {
	// February 2021 starts on a Monday and ends on a Sunday.
	weeks := BuildWeeks(2021, time.February, model.Date{})
	require.Len(t, weeks, 4)
	require.Equal(t, model.MustParseDate("2021-02-01"), weeks[0].First())
	require.Equal(t, model.MustParseDate("2021-02-28"), weeks[3].Last())
	for _, w := range weeks {
		for _, d := range w.Days {
			require.True(t, d.IsCurrentMonth)
		}
	}
}

func TestGridBounds(t *testing.T) {
	tests := []struct {
		year       int
		month      time.Month
		start, end string
	}{
		{2025, time.June, "2025-05-26", "2025-07-06"},      // 1st is a Sunday
		{2025, time.September, "2025-09-01", "2025-10-05"}, // 1st is a Monday
		{2025, time.December, "2025-12-01", "2026-01-04"},
		{2026, time.February, "2026-01-26", "2026-03-01"},
	}
	for _, tt := range tests {
		start, end := GridBounds(tt.year, tt.month)
		require.Equal(t, tt.start, start.String(), "%d-%02d", tt.year, tt.month)
		require.Equal(t, tt.end, end.String(), "%d-%02d", tt.year, tt.month)
	}
}

func TestBuildWeeks_TodayMarker(t *testing.T) {
	today := model.MustParseDate("2025-06-18")
	weeks := BuildWeeks(2025, time.June, today)

	marked := 0
	for _, w := range weeks {
		for _, d := range w.Days {
			if d.IsToday {
				marked++
				require.Equal(t, today, d.Date)
			}
		}
	}
	require.Equal(t, 1, marked)

	// A "today" outside the grid marks nothing.
	weeks = BuildWeeks(2025, time.June, model.MustParseDate("2025-09-01"))
	for _, w := range weeks {
		for _, d := range w.Days {
			require.False(t, d.IsToday)
		}
	}
}
