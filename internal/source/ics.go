package source

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"mediacal/internal/calendar"
	"mediacal/internal/config"
	"mediacal/internal/ics"
	appLog "mediacal/internal/log"
	"mediacal/internal/model"
)

// ICS turns ICS feed occurrences into campaign events. Every occurrence
// overlapping the month grid becomes one event.
type ICS struct {
	feeds    []config.ICSConfig
	fetcher  *ics.Fetcher
	location *time.Location
}

// NewICS builds an ICS source. loc decides which calendar day a timed
// occurrence falls on; nil means time.Local.
func NewICS(feeds []config.ICSConfig, fetcher *ics.Fetcher, loc *time.Location) *ICS {
	if loc == nil {
		loc = time.Local
	}
	return &ICS{feeds: feeds, fetcher: fetcher, location: loc}
}

func (s *ICS) EventsForMonth(ctx context.Context, year int, month time.Month) ([]model.RawEvent, error) {
	sources := make([]ics.Source, 0, len(s.feeds))
	byID := make(map[string]config.ICSConfig, len(s.feeds))
	for _, feed := range s.feeds {
		if feed.URL == "" {
			continue
		}
		id := feed.ID
		if id == "" {
			id = feed.Name
		}
		if id == "" {
			id = feed.URL
		}
		byID[id] = feed
		sources = append(sources, ics.Source{ID: id, Name: feed.Name, URL: feed.URL})
	}
	if len(sources) == 0 {
		return []model.RawEvent{}, nil
	}

	results, errs := s.fetcher.FetchAll(ctx, sources)
	if len(results) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var parsed []ics.ParsedEvent
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics source: parse failed", err, "id", res.Source.ID)
			errs = append(errs, fmt.Errorf("ics %s: %w", res.Source.ID, err))
			continue
		}
		parsed = append(parsed, events...)
	}

	gridStart, gridEnd := calendar.GridBounds(year, month)
	expanded, err := ics.ExpandOccurrences(parsed, ics.ExpandConfig{
		DisplayLocation: s.location,
		RangeStart:      gridStart.In(s.location),
		RangeEnd:        gridEnd.AddDays(1).In(s.location).Add(-time.Second),
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.RawEvent, 0, len(expanded.Occurrences))
	for _, occ := range expanded.Occurrences {
		ev := OccurrenceToEvent(occ, byID[occ.SourceID], year, month)
		if ev.StartDate.After(gridEnd) || ev.EndDate.Before(gridStart) {
			continue
		}
		out = append(out, ev)
	}
	// Feeds that failed contribute nothing; the caller still gets the rest.
	return out, errors.Join(errs...)
}

// OccurrenceToEvent maps one occurrence to a raw event displayed on the
// (year, month) view. The first category names the media type; the feed's
// media type and colour fill in what the VEVENT lacks.
func OccurrenceToEvent(occ ics.Occurrence, feed config.ICSConfig, year int, month time.Month) model.RawEvent {
	mediaType := feed.MediaType
	if len(occ.Categories) > 0 {
		mediaType = occ.Categories[0]
	}
	color := feed.Color
	if occ.Color != "" {
		color = occ.Color
	}
	labName := occ.SourceName
	if labName == "" {
		labName = occ.SourceID
	}

	start := model.DateOf(occ.Start)
	// End is exclusive; step back into the last covered day.
	lastInstant := occ.End
	if lastInstant.After(occ.Start) {
		lastInstant = lastInstant.Add(-time.Nanosecond)
	} else {
		lastInstant = occ.Start
	}
	end := model.DateOf(lastInstant)

	ev := model.RawEvent{
		ID:              occurrenceID(occ),
		Title:           occ.Summary,
		LabName:         labName,
		MediaTypeDetail: model.MediaTypeDetail{Name: mediaType, Color: color},
		StartDate:       start,
		EndDate:         end,
		Description:     occ.Description,
		Active:          true,
		Products:        []int{},
	}

	continues := end.YearMonthAfter(year, month)
	fromPrevious := start.YearMonthBefore(year, month)
	ev.ContinuesNextMonth = &continues
	ev.ComesFromPreviousMonth = &fromPrevious
	if continues {
		original := end
		ev.OriginalEndDate = &original
	}
	return ev
}

// occurrenceID derives a stable positive id from UID and instance.
func occurrenceID(occ ics.Occurrence) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(occ.SourceID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(occ.UID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(occ.InstanceKey))
	return int(h.Sum32() & 0x7fffffff)
}
