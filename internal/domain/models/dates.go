package models

import (
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDate accepts a calendar day ("2006-01-02") or an RFC3339 timestamp and
// returns the UTC midnight of that day.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if t, err := time.Parse(dayLayout, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return StartOfDay(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrInvalidInput, value)
}

// StartOfDay truncates t to midnight UTC of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}
