package core

import (
	"fmt"
	"time"
)

// DateFormat is the layout used for due dates on the wire.
const DateFormat = "2006-01-02"

// readDateFormat also accepts single-digit month and day.
const readDateFormat = "2006-1-2"

type (
	// Date is a calendar day with no time of day and no zone. The zero value
	// means "no date".
	Date struct {
		y int
		m time.Month
		d int
	}

	// MonthKey identifies a calendar month bucket.
	MonthKey struct {
		Year  int
		Month time.Month
	}
)

// NewDate returns a normalized Date, so NewDate(2025, 1, 32) is 2025-02-01.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{t.Year(), t.Month(), t.Day()}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses YYYY-MM-DD. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, DateFormat, err)
	}
	return DateOf(t), nil
}

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

// Compare returns -1, 0 or +1 comparing d with x field by field.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	default:
		return cmpInt(d.d, x.d)
	}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.y, int(d.m), d.d)
}

// MonthKey returns the month bucket the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.y, Month: d.m}
}

// Compare orders month keys chronologically.
func (k MonthKey) Compare(x MonthKey) int {
	if k.Year != x.Year {
		return cmpInt(k.Year, x.Year)
	}
	return cmpInt(int(k.Month), int(x.Month))
}

// String formats the key as YYYY-MM.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
