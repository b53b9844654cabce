// ABOUTME: Calendar-day arithmetic for reminder evaluation
// ABOUTME: Parses stored date strings and counts whole days between calendar dates
package alerts

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate parses a stored date string. Date-only values are placed in loc;
// timestamps with an offset are converted to loc so their calendar day is
// the one a user in loc would see.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return t.In(loc), nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// StartOfDay zeroes the time-of-day of t in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// civil maps the calendar date of t onto UTC midnight so that differences
// are exact multiples of 24h regardless of DST.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the signed number of calendar days from today to date.
// Time-of-day on either side is ignored: the same calendar day is 0.
func DaysUntil(date, today time.Time) int {
	return int(civil(date).Sub(civil(today)).Hours() / 24)
}

// AnnualOccurrence places date's month and day in today's year. Feb 29 in a
// non-leap year rolls to Mar 1.
func AnnualOccurrence(date, today time.Time) time.Time {
	return time.Date(today.Year(), date.Month(), date.Day(), 0, 0, 0, 0, today.Location())
}

// UpcomingOccurrence is AnnualOccurrence, except that once this year's date
// has passed it moves to next year's date when that one is at most lead days
// away. Otherwise the passed date is returned and its negative day count stands.
func UpcomingOccurrence(date, today time.Time, lead int) time.Time {
	this := AnnualOccurrence(date, today)
	if DaysUntil(this, today) >= 0 {
		return this
	}
	next := time.Date(today.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, today.Location())
	if DaysUntil(next, today) <= lead {
		return next
	}
	return this
}

// FormatDay renders the calendar date used in alert ids and ledger entries.
func FormatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
