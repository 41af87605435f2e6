package ics

import (
	"errors"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	appLog "mediacal/internal/log"
)

const defaultMaxOccurrencesPerEvent = 5000

var ErrInvalidRange = errors.New("ics: range end is before range start")

// Occurrence is one concrete instance of a (possibly recurring) VEVENT.
type Occurrence struct {
	SourceID   string
	SourceName string
	UID        string
	// InstanceKey distinguishes instances of a recurring event.
	InstanceKey string

	Summary     string
	Description string
	Categories  []string
	Color       string

	AllDay bool

	// Start / End are in the display location. For all-day occurrences End
	// is exclusive (midnight after the last day).
	Start time.Time
	End   time.Time
}

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the zone occurrences are converted to. Nil means
	// time.Local.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the occurrences returned (inclusive).
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero means 5000.
	MaxOccurrencesPerEvent int
}

// ExpandResult holds the occurrences and the UIDs that hit the cap.
type ExpandResult struct {
	Occurrences     []Occurrence
	TruncatedEvents []string
}

// ExpandOccurrences expands parsed events into occurrences overlapping the
// configured range, applying RRULE, EXDATE and RECURRENCE-ID overrides.
// Occurrences are sorted by start time, then UID.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, ErrInvalidRange
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	uids := make([]string, 0)

	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	for _, uid := range uids {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseByUID[uid] {
			var occ []Occurrence
			var hitCap bool
			if ev.RawRRule == "" {
				occ = expandSingleEvent(ev, ov, cfg)
			} else {
				occ, hitCap = expandRecurringEvent(ev, ov, cfg)
			}
			truncated = truncated || hitCap
			result.Occurrences = append(result.Occurrences, occ...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("ics expand truncated occurrences", "uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	slices.SortStableFunc(result.Occurrences, func(a, b Occurrence) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		if a.UID < b.UID {
			return -1
		}
		if a.UID > b.UID {
			return 1
		}
		return 0
	})

	return result, nil
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []Occurrence {
	start, end := ev.Start, ev.End
	if o, ok := findOverrideForStart(overrides, start); ok {
		ev = o
		start, end = o.Start, o.End
	}
	if !timeRangesOverlap(start, end, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []Occurrence{makeOccurrence(ev, start, end, cfg.DisplayLocation)}
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)

	// Widen the window by the event duration so that instances starting
	// before the range but still running inside it are kept.
	loc := ev.Start.Location()
	occTimes := set.Between(cfg.RangeStart.Add(-dur).In(loc), cfg.RangeEnd.In(loc), true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]Occurrence, 0, len(occTimes))
	for _, occStart := range occTimes {
		baseEv := ev
		start, end := occStart, occStart.Add(dur)

		if o, ok := findOverrideForStart(overrides, occStart); ok {
			baseEv = o
			start, end = o.Start, o.End
		}
		if !timeRangesOverlap(start, end, cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		out = append(out, makeOccurrence(baseEv, start, end, cfg.DisplayLocation))
	}
	return out, hitCap
}

// findOverrideForStart returns the override whose RECURRENCE-ID equals start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func makeOccurrence(ev ParsedEvent, start, end time.Time, displayLoc *time.Location) Occurrence {
	occ := Occurrence{
		SourceID:    ev.Source.ID,
		SourceName:  ev.Source.Name,
		UID:         ev.UID,
		Summary:     ev.Summary,
		Description: ev.Description,
		Categories:  ev.Categories,
		Color:       ev.Color,
		AllDay:      ev.AllDay,
		Start:       start,
		End:         end,
	}
	// All-day dates are wall-clock dates; shifting them to another zone
	// would move them to the neighbouring day.
	if !ev.AllDay {
		occ.Start = start.In(displayLoc)
		occ.End = end.In(displayLoc)
	}
	occ.InstanceKey = occ.Start.Format(time.RFC3339)
	return occ
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
