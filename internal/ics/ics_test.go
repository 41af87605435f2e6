package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func calendarBody(events ...string) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//mediacal//test//EN",
	}
	for _, ev := range events {
		lines = append(lines, strings.Split(strings.TrimSpace(ev), "\n")...)
	}
	lines = append(lines, "END:VCALENDAR")
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

const allDayCampaign = `
BEGIN:VEVENT
UID:campaign-1@agency
DTSTAMP:20250501T000000Z
SUMMARY:Roche summer
DESCRIPTION:Campagne digitale
CATEGORIES:Digital,Online
COLOR:#FF69B4
DTSTART;VALUE=DATE:20250602
DTEND;VALUE=DATE:20250606
END:VEVENT`

const weeklyWebinar = `
BEGIN:VEVENT
UID:webinar@agency
DTSTAMP:20250501T000000Z
SUMMARY:Weekly webinar
DTSTART:20250603T090000Z
DTEND:20250603T100000Z
RRULE:FREQ=WEEKLY;COUNT=10
EXDATE:20250610T090000Z
END:VEVENT`

const noUID = `
BEGIN:VEVENT
DTSTAMP:20250501T000000Z
SUMMARY:Broken
DTSTART;VALUE=DATE:20250602
END:VEVENT`

func TestParseICS(t *testing.T) {
	src := Source{ID: "agency", Name: "Agency"}
	events, err := ParseICS(src, calendarBody(allDayCampaign, weeklyWebinar, noUID))
	require.NoError(t, err)
	require.Len(t, events, 2)

	campaign := events[0]
	require.Equal(t, "campaign-1@agency", campaign.UID)
	require.Equal(t, "Roche summer", campaign.Summary)
	require.Equal(t, []string{"Digital", "Online"}, campaign.Categories)
	require.Equal(t, "#FF69B4", campaign.Color)
	require.True(t, campaign.AllDay)
	require.Equal(t, src, campaign.Source)

	webinar := events[1]
	require.False(t, webinar.AllDay)
	require.Equal(t, "FREQ=WEEKLY;COUNT=10", webinar.RawRRule)
	require.Len(t, webinar.ExDates, 1)
}

func TestParseICS_EmptyBody(t *testing.T) {
	_, err := ParseICS(Source{ID: "x"}, nil)
	require.ErrorIs(t, err, ErrEmptyBody)
}

func TestExpandOccurrences(t *testing.T) {
	events, err := ParseICS(Source{ID: "agency"}, calendarBody(allDayCampaign, weeklyWebinar))
	require.NoError(t, err)

	res, err := ExpandOccurrences(events, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
	})
	require.NoError(t, err)

	var webinarDays []int
	for _, occ := range res.Occurrences {
		if occ.UID == "webinar@agency" {
			webinarDays = append(webinarDays, occ.Start.Day())
			require.Equal(t, time.Hour, occ.End.Sub(occ.Start))
		}
	}
	// June 10 is excluded.
	require.Equal(t, []int{3, 17, 24}, webinarDays)
	require.Equal(t, "campaign-1@agency", res.Occurrences[0].UID)
	require.Empty(t, res.TruncatedEvents)
}

func TestExpandOccurrences_Cap(t *testing.T) {
	events, err := ParseICS(Source{ID: "agency"}, calendarBody(weeklyWebinar))
	require.NoError(t, err)

	res, err := ExpandOccurrences(events, ExpandConfig{
		DisplayLocation:        time.UTC,
		RangeStart:             time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:               time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxOccurrencesPerEvent: 2,
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 2)
	require.Equal(t, []string{"webinar@agency"}, res.TruncatedEvents)
}

func TestExpandOccurrences_InvalidRange(t *testing.T) {
	_, err := ExpandOccurrences(nil, ExpandConfig{
		RangeStart: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestFetcher_ConditionalRequestsAndFallback(t *testing.T) {
	body := calendarBody(allDayCampaign)
	var hits atomic.Int32
	var failing atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if failing.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(t.TempDir(), srv.Client())
	src := Source{ID: "agency", URL: srv.URL + "/feed.ics?token=secret"}

	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	require.False(t, res.FromCache)
	require.Equal(t, body, res.Body)

	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	require.True(t, res.FromCache)
	require.Equal(t, body, res.Body)

	failing.Store(true)
	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	require.True(t, res.FromCache)
	require.EqualValues(t, 3, hits.Load())

	results, errs := f.FetchAll(context.Background(), []Source{src, {ID: "empty"}})
	require.Len(t, results, 1)
	require.Len(t, errs, 1)
}

func TestRedactURL(t *testing.T) {
	require.Equal(t, "https://calendar.example.com/...(redacted)", redactURL("https://calendar.example.com/private/abc.ics?token=1"))
	require.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
