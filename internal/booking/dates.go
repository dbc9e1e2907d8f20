package booking

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Today returns the ISO date for now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(dateLayout)
}

// ParseDate validates an ISO calendar date and returns it normalized.
func ParseDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t.Format(dateLayout), nil
}

// ClampDate never lets a date fall before today. ISO dates order lexically.
func ClampDate(date, today string) string {
	if date < today {
		return today
	}
	return date
}

// FormatDate renders an ISO date the way the booking page header shows it,
// e.g. "Tuesday, Jan 28, 2025".
func FormatDate(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, Jan 2, 2006")
}
