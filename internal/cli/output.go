package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aendu/latin-events/internal/aggregate"
	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/pipeline"
	"github.com/aendu/latin-events/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	RunID      string                  `json:"run_id"`
	CheckedAt  time.Time               `json:"checked_at"`
	FeedPath   string                  `json:"feed_path"`
	MirrorPath string                  `json:"mirror_path"`
	Sources    []pipeline.SourceReport `json:"sources"`
	Report     aggregate.Report        `json:"report"`
	EventCount int                     `json:"event_count"`
	FirstDate  string                  `json:"first_date,omitempty"`
	LastDate   string                  `json:"last_date,omitempty"`
	Events     []*event.Event          `json:"events,omitempty"`
}

func newOutputResult(res *pipeline.Result, store *storage.Store) *OutputResult {
	first, last := event.Span(res.Events)
	return &OutputResult{
		RunID:      res.RunID,
		CheckedAt:  res.StartedAt,
		FeedPath:   store.FeedPath(),
		MirrorPath: store.MirrorPath(),
		Sources:    res.Sources,
		Report:     res.Report,
		EventCount: len(res.Events),
		FirstDate:  first,
		LastDate:   last,
		Events:     res.Events,
	}
}

// WriteOutput writes the result in the specified format. The event list is
// only included when verbose is set.
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		if !verbose {
			trimmed := *result
			trimmed.Events = nil
			result = &trimmed
		}
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	for _, src := range result.Sources {
		switch {
		case src.Error != "":
			fmt.Fprintf(w, "%s: FAILED: %s\n", src.Name, src.Error)
		case src.Events == 0:
			fmt.Fprintf(w, "%s: no events\n", src.Name)
		default:
			fmt.Fprintf(w, "%s: %d events (%s to %s)\n", src.Name, src.Events, src.First, src.Last)
		}
	}

	if verbose && len(result.Events) > 0 {
		fmt.Fprintln(w)
		writeEvents(w, result.Events)
	}

	fmt.Fprintf(w, "\nPublished %d events", result.EventCount)
	if result.FirstDate != "" {
		fmt.Fprintf(w, " (%s to %s)", result.FirstDate, result.LastDate)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n  %s\n", result.FeedPath, result.MirrorPath)
	if result.Report.Duplicates > 0 || result.Report.Invalid > 0 {
		fmt.Fprintf(w, "Dropped %d duplicates and %d invalid records\n", result.Report.Duplicates, result.Report.Invalid)
	}
	return nil
}

func writeEvents(w io.Writer, events []*event.Event) {
	for _, evt := range events {
		fmt.Fprintf(w, "%s %-5s  %s\n", evt.Date, evt.Time, evt.Name)
		fmt.Fprintf(w, "      %s, %s [%s]\n", evt.City, evt.Region, evt.StyleCell())
	}
}
