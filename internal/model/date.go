package model

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the interchange format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time-of-day. Internally it is anchored at
// UTC midnight so that day arithmetic never crosses a DST transition.
type Date struct {
	t time.Time
}

// NewDate returns the date y-m-d. Out-of-range values are normalized the
// same way time.Date does (e.g. day 0 is the last day of the previous month).
func NewDate(y int, m time.Month, d int) Date {
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("model: invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals; it panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) AddDays(n int) Date    { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Before(o Date) bool    { return d.t.Before(o.t) }
func (d Date) After(o Date) bool     { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool     { return d.t.Equal(o.t) }
func (d Date) Time() time.Time       { return d.t }
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// DaysUntil returns the number of days from d to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// YearMonthBefore reports whether d's (year, month) precedes (y, m).
func (d Date) YearMonthBefore(y int, m time.Month) bool {
	return d.Year() < y || (d.Year() == y && d.Month() < m)
}

// YearMonthAfter reports whether d's (year, month) follows (y, m).
func (d Date) YearMonthAfter(y int, m time.Month) bool {
	return d.Year() > y || (d.Year() == y && d.Month() > m)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML emits the date as a plain string scalar.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML reads the raw scalar text, bypassing YAML's own timestamp
// resolution.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("model: date must be a scalar, got kind %d at line %d", value.Kind, value.Line)
	}
	return d.UnmarshalText([]byte(value.Value))
}
