package calendar

import "mediacal/internal/model"

// Normalize maps raw events into display-ready events, one for one and in
// the same order. Inputs are not modified. A nil icon table means the
// default table.
func Normalize(raw []model.RawEvent, icons *IconTable) []model.NormalizedEvent {
	out := make([]model.NormalizedEvent, 0, len(raw))
	for _, ev := range raw {
		out = append(out, NormalizeEvent(ev, icons))
	}
	return out
}

// NormalizeEvent normalizes a single event.
func NormalizeEvent(ev model.RawEvent, icons *IconTable) model.NormalizedEvent {
	n := model.NormalizedEvent{
		ID:                     ev.ID,
		Title:                  ev.Title,
		LabName:                ev.LabName,
		MediaTypeName:          ev.MediaTypeDetail.Name,
		MediaIcon:              icons.Icon(ev.MediaTypeDetail.Name),
		Description:            ev.Description,
		Color:                  ev.MediaTypeDetail.Color,
		StartDate:              ev.StartDate,
		EndDate:                ev.EndDate,
		ContinuesNextMonth:     boolOrFalse(ev.ContinuesNextMonth),
		ComesFromPreviousMonth: boolOrFalse(ev.ComesFromPreviousMonth),
		Active:                 ev.Active,
	}
	if ev.OriginalEndDate != nil {
		d := *ev.OriginalEndDate
		n.OriginalEndDate = &d
	}
	return n
}

func boolOrFalse(b *bool) bool {
	return b != nil && *b
}
