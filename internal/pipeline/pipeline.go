// Package pipeline runs one crawl: fetch every source in order, keep a
// snapshot per source, aggregate the batches and publish the feed.
//
// A run is a full recompute with no state carried over from earlier runs.
// Nothing is published when no usable event remains.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aendu/latin-events/internal/aggregate"
	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/logger"
	"github.com/aendu/latin-events/internal/metrics"
	"github.com/aendu/latin-events/internal/source"
)

var (
	// ErrNoData means there was nothing to publish.
	ErrNoData = errors.New("no events to publish")
	// ErrSourceFailed is returned in strict mode when any source failed.
	ErrSourceFailed = errors.New("source failed")
)

// Publisher writes the combined feed.
type Publisher interface {
	Publish(events []*event.Event) error
}

// SnapshotStore keeps the last good batch of each source.
type SnapshotStore interface {
	WriteSnapshot(source string, events []*event.Event) error
	LoadSnapshot(source string) ([]*event.Event, error)
}

// Batch is the outcome of one source.
type Batch struct {
	Source string
	Events []*event.Event
	Err    error
}

// SourceReport summarises a batch.
type SourceReport struct {
	Name   string `json:"name"`
	Events int    `json:"events"`
	First  string `json:"first_date,omitempty"`
	Last   string `json:"last_date,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result describes a finished run.
type Result struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration_ns"`
	Sources   []SourceReport   `json:"sources"`
	Report    aggregate.Report `json:"report"`
	Events    []*event.Event   `json:"events,omitempty"`
	Published bool             `json:"published"`
}

// Runner wires the sources to the publisher.
type Runner struct {
	Sources   []source.Source
	Publisher Publisher
	Calendar  Publisher         // optional, failures are only logged
	Snapshots SnapshotStore     // optional
	Metrics   *metrics.Recorder // optional
	Logger    *logger.Logger    // defaults to logger.Default()
	Threshold *float64          // similarity threshold, nil means aggregate.DefaultThreshold
	Strict    bool              // fail the run on any source error
	Now       func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) begin() (*Result, *logger.Logger) {
	res := &Result{RunID: uuid.NewString(), StartedAt: r.now()}
	base := r.Logger
	if base == nil {
		base = logger.Default()
	}
	return res, base.With(logger.Fields{"run_id": res.RunID})
}

// Run fetches every source and publishes the combined feed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res, log := r.begin()
	log.Info("run started", logger.Fields{"sources": len(r.Sources)})

	batches := r.fetchAll(ctx, log)
	if err := ctx.Err(); err != nil {
		return r.finish(res, batches, log, fmt.Errorf("run canceled: %w", err))
	}

	if r.Strict {
		var failed []error
		for _, b := range batches {
			if b.Err != nil {
				failed = append(failed, b.Err)
			}
		}
		if len(failed) > 0 {
			err := fmt.Errorf("%w: %w", ErrSourceFailed, errors.Join(failed...))
			return r.finish(res, batches, log, err)
		}
	}

	return r.publish(res, batches, log)
}

// Combine aggregates and publishes batches collected elsewhere, such as the
// stored per-source snapshots.
func (r *Runner) Combine(batches []Batch) (*Result, error) {
	res, log := r.begin()
	log.Info("combining stored batches", logger.Fields{"batches": len(batches)})
	return r.publish(res, batches, log)
}

// LoadSnapshots reads the stored batch of every named source in order.
// Missing snapshots produce empty batches.
func LoadSnapshots(store SnapshotStore, names []string) ([]Batch, error) {
	batches := make([]Batch, 0, len(names))
	for _, name := range names {
		events, err := store.LoadSnapshot(name)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot for %s: %w", name, err)
		}
		batches = append(batches, Batch{Source: name, Events: events})
	}
	return batches, nil
}

func (r *Runner) fetchAll(ctx context.Context, log *logger.Logger) []Batch {
	batches := make([]Batch, 0, len(r.Sources))
	for _, src := range r.Sources {
		if ctx.Err() != nil {
			break
		}
		name := src.Name()
		start := time.Now()
		events, err := src.Fetch(ctx)
		fields := logger.Fields{
			"source":   name,
			"duration": time.Since(start).String(),
		}

		if err != nil {
			r.Metrics.FetchFailed(name)
			log.Error("source failed", fields, err)
			batches = append(batches, Batch{Source: name, Err: err})
			continue
		}

		r.Metrics.Fetched(name, len(events))
		first, last := event.Span(events)
		fields["events"] = len(events)
		fields["first_date"] = first
		fields["last_date"] = last
		log.Info("source fetched", fields)

		if r.Snapshots != nil && len(events) > 0 {
			if err := r.Snapshots.WriteSnapshot(name, events); err != nil {
				log.Warn("snapshot not written", logger.Fields{"source": name, "error": err.Error()})
			}
		}
		batches = append(batches, Batch{Source: name, Events: events})
	}
	return batches
}

func (r *Runner) publish(res *Result, batches []Batch, log *logger.Logger) (*Result, error) {
	inputs := make([][]*event.Event, 0, len(batches))
	total := 0
	for _, b := range batches {
		if b.Err == nil {
			inputs = append(inputs, b.Events)
			total += len(b.Events)
		}
	}
	if total == 0 {
		return r.finish(res, batches, log, fmt.Errorf("%w: no source returned events (%s)", ErrNoData, summarize(batches)))
	}

	opts := []aggregate.Option{}
	if r.Threshold != nil {
		opts = append(opts, aggregate.WithThreshold(*r.Threshold))
	}
	combined, report, err := aggregate.AggregateWithReport(inputs, opts...)
	res.Report = report
	if err != nil {
		if errors.Is(err, aggregate.ErrNoEvents) {
			err = fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return r.finish(res, batches, log, err)
	}
	r.Metrics.Aggregated(report.Output, report.Duplicates, report.Invalid)

	if err := r.Publisher.Publish(combined); err != nil {
		return r.finish(res, batches, log, fmt.Errorf("publishing feed: %w", err))
	}
	res.Events = combined
	res.Published = true
	if r.Calendar != nil {
		if err := r.Calendar.Publish(combined); err != nil {
			log.Warn("calendar not published", logger.Fields{"error": err.Error()})
		}
	}
	return r.finish(res, batches, log, nil)
}

func (r *Runner) finish(res *Result, batches []Batch, log *logger.Logger, err error) (*Result, error) {
	res.Duration = r.now().Sub(res.StartedAt)
	res.Sources = make([]SourceReport, 0, len(batches))
	for _, b := range batches {
		sr := SourceReport{Name: b.Source, Events: len(b.Events)}
		sr.First, sr.Last = event.Span(b.Events)
		if b.Err != nil {
			sr.Error = b.Err.Error()
		}
		res.Sources = append(res.Sources, sr)
	}

	status := metrics.StatusSuccess
	switch {
	case err == nil:
	case errors.Is(err, ErrNoData):
		status = metrics.StatusNoData
	default:
		status = metrics.StatusError
	}
	r.Metrics.RunFinished(status, res.Duration, r.now())

	fields := logger.Fields{
		"status":     status,
		"input":      res.Report.Input,
		"invalid":    res.Report.Invalid,
		"duplicates": res.Report.Duplicates,
		"published":  res.Report.Output,
		"duration":   res.Duration.String(),
	}
	if err != nil {
		log.Error("run failed", fields, err)
		return res, err
	}
	first, last := event.Span(res.Events)
	fields["first_date"] = first
	fields["last_date"] = last
	log.Info("run finished", fields)
	return res, nil
}

func summarize(batches []Batch) string {
	if len(batches) == 0 {
		return "no sources"
	}
	parts := make([]string, 0, len(batches))
	for _, b := range batches {
		if b.Err != nil {
			parts = append(parts, b.Source+": failed")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d", b.Source, len(b.Events)))
	}
	return strings.Join(parts, ", ")
}
