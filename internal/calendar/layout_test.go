package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mediacal/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestNormalize(t *testing.T) {
	raw := []model.RawEvent{
		{
			ID:              1,
			Title:           "Caudalie",
			LabName:         "Caudalie",
			MediaTypeDetail: model.MediaTypeDetail{ID: 1, Name: "TV/Radio", Color: "#1A7D7252"},
			StartDate:       model.MustParseDate("2025-06-02"),
			EndDate:         model.MustParseDate("2025-06-07"),
			Description:     "Vinoperfect",
			Active:          true,
		},
		{
			ID:                     2,
			MediaTypeDetail:        model.MediaTypeDetail{Name: "Holographic"},
			ContinuesNextMonth:     boolPtr(true),
			ComesFromPreviousMonth: boolPtr(false),
		},
	}

	got := Normalize(raw, nil)
	require.Len(t, got, 2)

	require.Equal(t, "mdi-television", got[0].MediaIcon)
	require.Equal(t, "TV/Radio", got[0].MediaTypeName)
	require.Equal(t, "#1A7D7252", got[0].Color)
	require.Equal(t, "Caudalie", got[0].LabName)
	require.False(t, got[0].ContinuesNextMonth)
	require.False(t, got[0].ComesFromPreviousMonth)
	require.Nil(t, got[0].OriginalEndDate)

	require.Equal(t, DefaultIcon, got[1].MediaIcon)
	require.True(t, got[1].ContinuesNextMonth)
	require.False(t, got[1].ComesFromPreviousMonth)
}

func TestNormalize_CopiesOriginalEndDate(t *testing.T) {
	orig := model.MustParseDate("2025-07-08")
	raw := []model.RawEvent{{ID: 1, OriginalEndDate: &orig}}

	got := Normalize(raw, nil)
	require.NotNil(t, got[0].OriginalEndDate)
	require.Equal(t, orig, *got[0].OriginalEndDate)

	*got[0].OriginalEndDate = orig.AddDays(1)
	require.Equal(t, "2025-07-08", raw[0].OriginalEndDate.String())
}

func TestIconTable(t *testing.T) {
	icons := DefaultIconTable()
	tests := map[string]string{
		"tv":              "mdi-television",
		"TV/Radio":        "mdi-television",
		"Social Media":    "mdi-share-variant",
		"Réseaux sociaux": "mdi-share-variant",
		"PHARMACIE":       "mdi-medical-bag",
		"radio":           "mdi-radio",
		"Presse":          "mdi-newspaper",
		"Digital":         "mdi-laptop",
		"outdoor":         "mdi-billboard",
		"Events":          "mdi-calendar-account",
		"webinar":         "mdi-video-account",
		"":                DefaultIcon,
		"podcast":         DefaultIcon,
	}
	for name, want := range tests {
		require.Equal(t, want, icons.Icon(name), name)
	}
}

func TestIconTable_Overrides(t *testing.T) {
	icons := NewIconTable(map[string]string{
		"Podcast": "mdi-microphone",
		"radio":   "",
		"*":       "mdi-help",
	})
	require.Equal(t, "mdi-microphone", icons.Icon("podcast"))
	require.Equal(t, "mdi-help", icons.Icon("radio"))
	require.Equal(t, "mdi-help", icons.Icon("unknown"))
	require.Equal(t, "mdi-laptop", icons.Icon("digital"))
}

func TestGenerateCalendarWeeks_Empty(t *testing.T) {
	weeks := GenerateCalendarWeeks(2025, time.June, nil, model.Date{})
	require.Len(t, weeks, 6)
	for _, w := range weeks {
		require.Empty(t, w.Events)
		require.Equal(t, 140, w.Height)
	}
}

func TestGenerateCalendarWeeks_JuneCampaigns(t *testing.T) {
	events := []model.NormalizedEvent{
		event(1, "2025-06-01", "2025-06-17"),
		event(2, "2025-06-02", "2025-06-07"),
		event(3, "2025-06-02", "2025-06-08"),
		event(4, "2025-06-30", "2025-07-08"),
		event(5, "2025-06-02", "2025-06-05"),
	}
	weeks := GenerateCalendarWeeks(2025, time.June, events, model.MustParseDate("2025-06-10"))
	require.Len(t, weeks, 6)

	// May 26 - Jun 1: only event 1, on Sunday.
	require.Len(t, weeks[0].Events, 1)
	require.Equal(t, 6, weeks[0].Events[0].StartCol)
	require.Equal(t, 140, weeks[0].Height)

	// Jun 2 - Jun 8: four stacked events.
	rows := map[int]int{}
	for _, b := range weeks[1].Events {
		rows[b.Event.ID] = b.Row
	}
	require.Equal(t, map[int]int{1: 0, 2: 1, 3: 2, 5: 3}, rows)
	require.Equal(t, 80+4*36, weeks[1].Height)

	// Jun 16 - Jun 22: event 1 ends on Tuesday.
	require.Len(t, weeks[3].Events, 1)
	require.Equal(t, 2, weeks[3].Events[0].Span)
	require.True(t, weeks[3].Events[0].IsEnd)

	// Jun 30 - Jul 6: event 4 runs to the end of the grid.
	require.Len(t, weeks[5].Events, 1)
	require.True(t, weeks[5].Events[0].IsLastVisibleSegment)

	require.True(t, weeks[2].Days[1].IsToday)
}

func TestLayout_CustomGeometry(t *testing.T) {
	l := NewLayout(Geometry{RowHeight: 50})
	require.Equal(t, 140, l.Geometry.MinWeekHeight)
	require.Equal(t, 80, l.Geometry.BaseHeight)

	events := []model.NormalizedEvent{
		event(1, "2025-06-02", "2025-06-03"),
		event(2, "2025-06-02", "2025-06-03"),
	}
	weeks := l.Weeks(2025, time.June, events, model.Date{})
	require.Equal(t, 180, weeks[1].Height)
}

func TestOrderForLayout(t *testing.T) {
	events := []model.NormalizedEvent{
		event(3, "2025-06-05", "2025-06-06"),
		event(2, "2025-06-02", "2025-06-04"),
		event(1, "2025-06-02", "2025-06-10"),
		event(4, "2025-06-02", "2025-06-04"),
	}
	ordered := OrderForLayout(events)

	ids := make([]int, 0, len(ordered))
	for _, ev := range ordered {
		ids = append(ids, ev.ID)
	}
	require.Equal(t, []int{1, 2, 4, 3}, ids)
	require.Equal(t, 3, events[0].ID, "input is not reordered")

	reversed := []model.NormalizedEvent{events[3], events[2], events[1], events[0]}
	require.Equal(t, ordered, OrderForLayout(reversed))
}

func TestOrderForLayout_UsesOwnEndDate(t *testing.T) {
	// Clipped to month end when laid out, but its own end is the earliest.
	clipped := event(1, "2025-06-28", "2025-07-01")
	clipped.ContinuesNextMonth = true
	longer := event(2, "2025-06-28", "2025-07-10")

	ordered := OrderForLayout([]model.NormalizedEvent{clipped, longer})
	require.Equal(t, 2, ordered[0].ID)
	require.Equal(t, 1, ordered[1].ID)
}
