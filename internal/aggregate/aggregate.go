// Package aggregate merges the event batches of all sources into a single
// feed: invalid records are dropped, near-duplicates collapsed and the result
// ordered deterministically.
//
// Deduplication keeps the first accepted record among near-duplicates. A
// later duplicate never fills in fields of the accepted one, even when it
// carries richer data such as a flyer.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/aendu/latin-events/internal/event"
)

// ErrNoEvents is returned when no record survives filtering and deduplication.
var ErrNoEvents = errors.New("no events produced")

// DefaultThreshold requires names to be identical after normalization.
const DefaultThreshold = 1.0

// Options configure an aggregation.
type Options struct {
	// Threshold is the minimum similarity in [0, 1] for two normalized names
	// on the same date to count as duplicates.
	Threshold float64
	// Matcher scores normalized names. Defaults to LevenshteinMatcher.
	Matcher Matcher
}

// Option mutates Options.
type Option func(*Options)

// WithThreshold sets the similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(o *Options) {
		o.Threshold = threshold
	}
}

// WithMatcher replaces the similarity function.
func WithMatcher(m Matcher) Option {
	return func(o *Options) {
		if m != nil {
			o.Matcher = m
		}
	}
}

func newOptions(opts []Option) (Options, error) {
	o := Options{Threshold: DefaultThreshold, Matcher: LevenshteinMatcher{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return o, fmt.Errorf("similarity threshold %.2f outside [0, 1]", o.Threshold)
	}
	return o, nil
}

// Report summarizes what an aggregation did with its input.
type Report struct {
	Input      int `json:"input"`
	Invalid    int `json:"invalid"`
	Duplicates int `json:"duplicates"`
	Output     int `json:"output"`
}

// Aggregate merges batches into one deduplicated, sorted feed.
// It returns ErrNoEvents when nothing survives.
func Aggregate(batches [][]*event.Event, opts ...Option) ([]*event.Event, error) {
	events, _, err := AggregateWithReport(batches, opts...)
	return events, err
}

// AggregateWithReport is Aggregate that also reports the record counts.
// Input records are never modified; the result shares their pointers.
func AggregateWithReport(batches [][]*event.Event, opts ...Option) ([]*event.Event, Report, error) {
	var report Report

	o, err := newOptions(opts)
	if err != nil {
		return nil, report, err
	}

	accepted := make([]*event.Event, 0)
	byDate := make(map[string][]*event.Event)

	for _, batch := range batches {
		for _, candidate := range batch {
			report.Input++

			if !candidate.Valid() {
				report.Invalid++
				continue
			}

			if isDuplicate(candidate, byDate[candidate.Date], o) {
				report.Duplicates++
				continue
			}

			accepted = append(accepted, candidate)
			byDate[candidate.Date] = append(byDate[candidate.Date], candidate)
		}
	}

	event.Sort(accepted)
	report.Output = len(accepted)

	if len(accepted) == 0 {
		return nil, report, fmt.Errorf("%w: %d input records, %d invalid, %d duplicates",
			ErrNoEvents, report.Input, report.Invalid, report.Duplicates)
	}
	return accepted, report, nil
}

// isDuplicate compares candidate against the already accepted records of
// the same date.
func isDuplicate(candidate *event.Event, sameDate []*event.Event, o Options) bool {
	for _, existing := range sameDate {
		if Similar(existing.Name, candidate.Name, o.Threshold, o.Matcher) {
			return true
		}
	}
	return false
}
