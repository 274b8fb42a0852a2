package event

import (
	"strings"
	"time"
)

const (
	// DateLayout is the ISO calendar date used in the feed
	DateLayout = "2006-01-02"
	// ClockLayout is the short local clock time used in the feed
	ClockLayout = "15:04"
)

// ParseDate parses an ISO feed date. Returns false for empty or malformed input.
func ParseDate(dateText string) (time.Time, bool) {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, dateText)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseStart parses a start timestamp as published by event APIs.
// Supports "2026-03-13 20:00:00", "2026-03-13T20:00:00", RFC 3339 and a bare date.
func ParseStart(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		time.RFC3339,
		DateLayout,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Day truncates t to midnight in its own location
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Window is the inclusive range of calendar days a run collects
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow returns the window from today to today + days
func NewWindow(now time.Time, days int) Window {
	today := Day(now)
	return Window{From: today, To: today.AddDate(0, 0, days)}
}

// Contains reports whether the ISO date lies inside the window.
// Unparseable dates are outside.
func (w Window) Contains(dateText string) bool {
	d, ok := ParseDate(dateText)
	if !ok {
		return false
	}
	from := w.From.Format(DateLayout)
	to := w.To.Format(DateLayout)
	iso := d.Format(DateLayout)
	return iso >= from && iso <= to
}

// Reached reports whether the ISO date is at or beyond the end of the window
func (w Window) Reached(dateText string) bool {
	d, ok := ParseDate(dateText)
	if !ok {
		return false
	}
	return d.Format(DateLayout) >= w.To.Format(DateLayout)
}
