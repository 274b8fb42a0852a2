// Package source defines the contract between the pipeline and the event
// source adapters, together with the pieces every adapter shares: bounded
// pagination and an HTTP client with per-request timeouts and retries.
package source

import (
	"context"
	"fmt"

	"github.com/aendu/latin-events/internal/event"
)

// Source is one upstream origin of dance events.
type Source interface {
	// Name is the source tag written to the feed, e.g. "latino.ch".
	Name() string
	// Fetch retrieves and maps all listings of the current window.
	Fetch(ctx context.Context) ([]*event.Event, error)
}

// Page is the outcome of one pagination step.
type Page[C any] struct {
	Events []*event.Event
	// Next is the cursor for the following step. Ignored when More is false.
	Next C
	More bool
}

// StepFunc fetches the page at cursor.
type StepFunc[C any] func(ctx context.Context, cursor C) (Page[C], error)

// Result is what Paginate collected.
type Result struct {
	Events []*event.Event
	Pages  int
	// Truncated is set when the page limit stopped a source that still
	// reported more pages.
	Truncated bool
}

// Paginate evaluates step from start until a page reports no more data or
// maxPages pages were fetched. A step error aborts pagination and is
// returned with the page number.
func Paginate[C any](ctx context.Context, start C, maxPages int, step StepFunc[C]) (Result, error) {
	var res Result
	if maxPages <= 0 {
		return res, fmt.Errorf("invalid page limit %d", maxPages)
	}

	cursor := start
	for res.Pages < maxPages {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		page, err := step(ctx, cursor)
		res.Pages++
		if err != nil {
			return res, fmt.Errorf("page %d: %w", res.Pages, err)
		}
		res.Events = append(res.Events, page.Events...)

		if !page.More {
			return res, nil
		}
		cursor = page.Next
	}

	res.Truncated = true
	return res, nil
}

// Func adapts a function to Source, which is handy for tests and for
// feeding previously stored batches through the pipeline.
type Func struct {
	SourceName string
	FetchFunc  func(ctx context.Context) ([]*event.Event, error)
}

// Name returns the source tag.
func (f Func) Name() string { return f.SourceName }

// Fetch calls FetchFunc.
func (f Func) Fetch(ctx context.Context) ([]*event.Event, error) {
	return f.FetchFunc(ctx)
}
