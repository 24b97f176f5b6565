package storage

import (
	"fmt"
	"time"
)

// timeLayout is fixed-width on purpose: every serialized timestamp has the
// same length, so TEXT-column comparisons order chronologically.
const timeLayout = "2006-01-02 15:04:05.000000000"

func timeText(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeText(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullableTimeText(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeText(*t)
	return &s
}

func parseNullableTimeText(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseTimeText(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
