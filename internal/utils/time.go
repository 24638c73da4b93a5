package utils

import (
	"fmt"
	"time"

	"parkwatch/internal/models"
)

// ParseTimeISO accepts RFC 3339 timestamps from request payloads.
func ParseTimeISO(timeStr string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", models.ErrValidation, timeStr)
	}
	return t, nil
}

func FormatTimeISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// MinutesBetween truncates toward zero, matching the statistics accumulator.
func MinutesBetween(start, end time.Time) int {
	return int(end.Sub(start).Minutes())
}
