package calendar

import (
	"slices"
	"strings"

	"mediacal/internal/model"
)

// OrderForLayout returns a copy of events sorted so that first-fit packing
// is reproducible: earlier start first, then longer events, then lower id,
// then title. Duration uses the event's own end date, not the end it is
// clipped to by continues_next_month.
func OrderForLayout(events []model.NormalizedEvent) []model.NormalizedEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b model.NormalizedEvent) int {
		if a.StartDate.Before(b.StartDate) {
			return -1
		}
		if a.StartDate.After(b.StartDate) {
			return 1
		}
		da := a.StartDate.DaysUntil(a.EndDate)
		db := b.StartDate.DaysUntil(b.EndDate)
		if da != db {
			return db - da
		}
		if a.ID != b.ID {
			return a.ID - b.ID
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out
}
