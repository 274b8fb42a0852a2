// Package filter selects events from a published feed.
//
// All criteria are combined with AND; the values inside one criterion are
// combined with OR. An empty filter matches everything.
//
// Example usage:
//
//	// Bachata in Bern on weekends
//	f := filter.New()
//	f.Regions = []region.Region{region.Bern}
//	f.Styles = []style.Code{style.Bachata}
//	f.WeekendsOnly = true
//
//	matching := f.Apply(events)
package filter

import (
	"strings"
	"time"

	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/region"
	"github.com/aendu/latin-events/internal/style"
)

// Filter represents event filtering criteria
type Filter struct {
	// Date range, inclusive calendar days
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	Regions []region.Region `json:"regions,omitempty"`

	// An event matches if it carries any of the styles.
	Styles []style.Code `json:"styles,omitempty"`

	// Case-insensitive substring match on the city
	Cities []string `json:"cities,omitempty"`

	// Case-insensitive substring match on name, host and labels
	Terms []string `json:"terms,omitempty"`

	Sources []string `json:"sources,omitempty"`

	WeekendsOnly bool `json:"weekends_only,omitempty"`
}

// New creates an empty filter that matches all events.
func New() *Filter {
	return &Filter{}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Regions) == 0 &&
		len(f.Styles) == 0 &&
		len(f.Cities) == 0 &&
		len(f.Terms) == 0 &&
		len(f.Sources) == 0 &&
		!f.WeekendsOnly
}

// Matches reports whether evt passes every active criterion. Events without
// a parseable date never match a date or weekend criterion.
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if f.DateFrom != nil || f.DateTo != nil || f.WeekendsOnly {
		day, ok := event.ParseDate(evt.Date)
		if !ok {
			return false
		}
		if f.DateFrom != nil && day.Before(calendarDay(*f.DateFrom)) {
			return false
		}
		if f.DateTo != nil && day.After(calendarDay(*f.DateTo)) {
			return false
		}
		if f.WeekendsOnly && !isWeekend(day) {
			return false
		}
	}

	if len(f.Regions) > 0 && !containsRegion(f.Regions, evt.Region) {
		return false
	}
	if len(f.Styles) > 0 && !anyStyle(f.Styles, evt.Styles) {
		return false
	}
	if len(f.Cities) > 0 && !containsAny(evt.City, f.Cities) {
		return false
	}
	if len(f.Terms) > 0 {
		haystack := strings.Join(append([]string{evt.Name, evt.Host}, evt.Labels...), " ")
		if !containsAny(haystack, f.Terms) {
			return false
		}
	}
	if len(f.Sources) > 0 && !equalsAny(evt.Source, f.Sources) {
		return false
	}
	return true
}

// Apply returns the matching events in their original order.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}
	out := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			out = append(out, evt)
		}
	}
	return out
}

// calendarDay maps t to its calendar date at midnight UTC, the form
// event.ParseDate returns.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func containsRegion(regions []region.Region, r region.Region) bool {
	for _, candidate := range regions {
		if candidate == r {
			return true
		}
	}
	return false
}

func anyStyle(wanted, have []style.Code) bool {
	for _, w := range wanted {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func equalsAny(s string, values []string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
