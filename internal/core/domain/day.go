package domain

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire format for calendar dates.
const DayLayout = "2006-01-02"

// StartOfDay truncates t to midnight of its calendar day in loc. Two instants
// that fall on the same date in loc always yield the same value.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// AddDays moves a normalized day by n calendar days, staying on midnight
// across DST changes.
func AddDays(day time.Time, n int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return StartOfDay(day.In(loc).AddDate(0, 0, n), loc)
}

// DayKey formats a normalized day as YYYY-MM-DD in loc.
func DayKey(day time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return day.In(loc).Format(DayLayout)
}

// ParseDay accepts either a YYYY-MM-DD calendar date, interpreted in loc, or
// an RFC 3339 timestamp. The result is normalized with StartOfDay. An empty
// string yields the zero time so callers can default to today.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(DayLayout, s, loc); err == nil {
		return StartOfDay(t, loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return StartOfDay(t, loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD or RFC 3339", ErrValidation, s)
}
