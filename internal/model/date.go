package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time component. The zero value is the
// zero date. Internally it is the date's midnight in UTC, which makes Date
// values comparable regardless of the location they were derived in.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf extracts the calendar date of ts as observed in loc.
func DateOf(ts time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := ts.In(loc).Date()
	return NewDate(y, m, d)
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// Time returns the date's midnight in UTC.
func (d Date) Time() time.Time { return d.t }

// StartOfDayIn returns the first instant of the date in loc.
func (d Date) StartOfDayIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, 0, 0, loc)
}

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string { return d.t.Format(DateLayout) }

// MarshalJSON encodes the date as a "2006-01-02" JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON decodes a "2006-01-02" JSON string.
func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("date must be a %q string", DateLayout)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
