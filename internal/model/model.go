package model

// MediaTypeDetail describes the media channel of a campaign event.
type MediaTypeDetail struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// RawEvent is a campaign event as delivered by an event source. It is
// read-only to the layout code.
//
// The optional continuation flags are pointers so that "absent" can be told
// apart from an explicit false.
type RawEvent struct {
	ID              int             `json:"id" yaml:"id"`
	Title           string          `json:"title" yaml:"title"`
	Lab             int             `json:"lab" yaml:"lab"`
	LabName         string          `json:"lab_name" yaml:"lab_name"`
	MediaType       int             `json:"media_type" yaml:"media_type"`
	MediaTypeDetail MediaTypeDetail `json:"media_type_detail" yaml:"media_type_detail"`
	StartDate       Date            `json:"start_date" yaml:"start_date"`
	EndDate         Date            `json:"end_date" yaml:"end_date"`
	Description     string          `json:"description" yaml:"description"`
	Active          bool            `json:"active" yaml:"active"`
	Products        []int           `json:"products" yaml:"products"`

	ContinuesNextMonth     *bool `json:"continues_next_month,omitempty" yaml:"continues_next_month,omitempty"`
	OriginalEndDate        *Date `json:"original_end_date,omitempty" yaml:"original_end_date,omitempty"`
	ComesFromPreviousMonth *bool `json:"comes_from_previous_month,omitempty" yaml:"comes_from_previous_month,omitempty"`
}

// NormalizedEvent is the display-ready projection of a RawEvent.
type NormalizedEvent struct {
	ID                     int    `json:"id"`
	Title                  string `json:"title"`
	LabName                string `json:"lab_name"`
	MediaTypeName          string `json:"media_type_name"`
	MediaIcon              string `json:"media_icon"`
	Description            string `json:"description"`
	Color                  string `json:"color"`
	StartDate              Date   `json:"start_date"`
	EndDate                Date   `json:"end_date"`
	ContinuesNextMonth     bool   `json:"continues_next_month"`
	OriginalEndDate        *Date  `json:"original_end_date,omitempty"`
	ComesFromPreviousMonth bool   `json:"comes_from_previous_month"`
	Active                 bool   `json:"active"`
}

// CalendarDay is a single cell of the month grid.
type CalendarDay struct {
	Date           Date `json:"date"`
	DayNumber      int  `json:"day_number"`
	IsCurrentMonth bool `json:"is_current_month"`
	IsToday        bool `json:"is_today"`
}

// EventBar places one event inside one week.
//
// StartCol is the Monday-based column (0-6) and StartCol+Span-1 never
// exceeds 6.
type EventBar struct {
	Event                 NormalizedEvent `json:"event"`
	Row                   int             `json:"row"`
	StartCol              int             `json:"start_col"`
	Span                  int             `json:"span"`
	IsStart               bool            `json:"is_start"`
	IsEnd                 bool            `json:"is_end"`
	ComesFromPreviousWeek bool            `json:"comes_from_previous_week"`
	StartsInPreviousMonth bool            `json:"starts_in_previous_month"`
	ContinuesNextMonth    bool            `json:"continues_next_month"`
	IsLastVisibleSegment  bool            `json:"is_last_visible_segment"`
}

// EndCol is the last column covered by the bar.
func (b EventBar) EndCol() int {
	return b.StartCol + b.Span - 1
}

// CalendarWeek is one Monday-to-Sunday row of the month grid.
type CalendarWeek struct {
	Days   [7]CalendarDay `json:"days"`
	Events []EventBar     `json:"events"`
	Height int            `json:"height"`
}

// First returns the Monday of the week.
func (w CalendarWeek) First() Date { return w.Days[0].Date }

// Last returns the Sunday of the week.
func (w CalendarWeek) Last() Date { return w.Days[6].Date }
