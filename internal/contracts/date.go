package contracts

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 layout used for calendar dates
const DateFormat = "2006-01-02"

// Date is a calendar day with no time-of-day or zone.
// Two timestamps on the same trading day map to the same Date regardless of clock time.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date (2025-12-32 becomes 2026-01-01)
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{t.Year(), t.Month(), t.Day()}
}

// DateOf returns the calendar date of t as observed in loc
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return NewDate(t.In(loc).Date())
}

// DateOfUnix returns the calendar date of a unix timestamp (seconds) in loc
func DateOfUnix(sec int64, loc *time.Location) Date {
	return DateOf(time.Unix(sec, 0), loc)
}

// ParseDate parses an ISO date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want %s: %w", s, DateFormat, err)
	}
	return NewDate(t.Date()), nil
}

// MustParseDate is like ParseDate but panics on error
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Before reports whether d is before x
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Equal reports whether d and x are the same day
func (d Date) Equal(x Date) bool { return d == x }

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool { return d == Date{} }

// AddDays returns d shifted by n days
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// Start returns midnight of d in loc
func (d Date) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc)
}

func (d Date) String() string { return d.time().Format(DateFormat) }

// MarshalJSON encodes the date as an ISO string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO date string
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
