package event

import (
	"sort"
	"strings"
)

// Less orders events by date, then clock time, then case-folded name
func Less(a, b *Event) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// Sort orders events in feed order. Events with equal keys keep their
// relative order.
func Sort(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return Less(events[i], events[j])
	})
}

// Span returns the first and last date of events, skipping unparseable dates
func Span(events []*Event) (first, last string) {
	for _, evt := range events {
		if _, ok := ParseDate(evt.Date); !ok {
			continue
		}
		if first == "" || evt.Date < first {
			first = evt.Date
		}
		if last == "" || evt.Date > last {
			last = evt.Date
		}
	}
	return first, last
}
