package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aendu/latin-events/internal/config"
	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/logger"
	"github.com/aendu/latin-events/internal/source"
)

const (
	BachataBernSource = "bachata-bern.ch"
	tribeEventsPath   = "/wp-json/tribe/events/v1/events/"
)

// BachataBern reads the Tribe Events REST API of bachata-bern.ch.
type BachataBern struct {
	client  *source.Client
	cfg     config.BachataBern
	daySpan int
	now     func() time.Time
}

// NewBachataBern creates the bachata-bern.ch adapter.
func NewBachataBern(client *source.Client, cfg config.BachataBern, daySpan int, now func() time.Time) *BachataBern {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 100
	}
	return &BachataBern{client: client, cfg: cfg, daySpan: daySpan, now: now}
}

// Name returns the source tag.
func (b *BachataBern) Name() string { return BachataBernSource }

// tribePage is one page of the Tribe Events listing.
type tribePage struct {
	Events     []tribeEvent `json:"events"`
	Total      int          `json:"total"`
	TotalPages int          `json:"total_pages"`
}

type tribeEvent struct {
	Title      string           `json:"title"`
	URL        string           `json:"url"`
	StartDate  string           `json:"start_date"`
	Image      json.RawMessage  `json:"image"` // object, or false without image
	Venue      json.RawMessage  `json:"venue"` // object, or [] without venue
	Organizer  []tribeOrganizer `json:"organizer"`
	Categories []tribeTerm      `json:"categories"`
	Tags       []tribeTerm      `json:"tags"`
}

type tribeImage struct {
	URL string `json:"url"`
}

type tribeVenue struct {
	Address flexString `json:"address"`
	City    flexString `json:"city"`
	Zip     flexString `json:"zip"`
}

type tribeOrganizer struct {
	Organizer string `json:"organizer"`
}

type tribeTerm struct {
	Name string `json:"name"`
}

// flexString accepts JSON strings and numbers; anything else decodes as "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*f = flexString(data)
	default:
		*f = ""
	}
	return nil
}

// decodeObject fills v when raw is a JSON object and leaves it zero otherwise.
func decodeObject(raw json.RawMessage, v interface{}) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Debug("ignoring malformed tribe object", logger.Fields{"error": err.Error()})
	}
}

// Fetch pages through the API for the collection window.
func (b *BachataBern) Fetch(ctx context.Context) ([]*event.Event, error) {
	window := event.NewWindow(b.now(), b.daySpan)
	endpoint, err := url.JoinPath(b.cfg.BaseURL, tribeEventsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing base url: %w", BachataBernSource, err)
	}
	// JoinPath drops the trailing slash the API expects.
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	step := func(ctx context.Context, page int) (source.Page[int], error) {
		params := url.Values{
			"page":       {strconv.Itoa(page)},
			"per_page":   {strconv.Itoa(b.cfg.PerPage)},
			"start_date": {window.From.Format(event.DateLayout) + " 00:00:00"},
			"end_date":   {window.To.Format(event.DateLayout) + " 23:59:59"},
			"status":     {"publish"},
		}
		body, err := b.client.Get(ctx, endpoint, params, nil)
		if err != nil {
			return source.Page[int]{}, err
		}

		var data tribePage
		if err := json.Unmarshal(body, &data); err != nil {
			return source.Page[int]{}, fmt.Errorf("decoding response: %w", err)
		}

		events := make([]*event.Event, 0, len(data.Events))
		for _, item := range data.Events {
			events = append(events, buildTribeEvent(item))
		}

		totalPages := data.TotalPages
		if totalPages <= 0 {
			totalPages = 1
		}
		return source.Page[int]{Events: events, Next: page + 1, More: page < totalPages}, nil
	}

	res, err := source.Paginate(ctx, 1, b.cfg.MaxPages, step)
	if err != nil {
		return nil, fmt.Errorf("%s: fetching %w", BachataBernSource, err)
	}
	if res.Truncated {
		logger.Warn("page limit reached", logger.Fields{
			"source": BachataBernSource,
			"pages":  res.Pages,
		})
	}

	col := newCollector(window)
	for _, evt := range res.Events {
		col.add(evt)
	}
	event.Sort(col.events)
	return col.events, nil
}

func buildTribeEvent(item tribeEvent) *event.Event {
	d := event.Draft{
		Name:   html.UnescapeString(item.Title),
		URL:    item.URL,
		Host:   tribeHost(item.Organizer),
		Source: BachataBernSource,
		Labels: tribeLabels(item),
	}

	if start, ok := event.ParseStart(item.StartDate); ok {
		d.Date = start.Format(event.DateLayout)
		d.Time = start.Format(event.ClockLayout)
	}

	var venue tribeVenue
	decodeObject(item.Venue, &venue)
	d.City = tribeCity(venue)

	var image tribeImage
	decodeObject(item.Image, &image)
	d.Flyer = image.URL

	return event.New(d)
}

// tribeCity renders "zip city", falling back to the street address.
func tribeCity(v tribeVenue) string {
	var parts []string
	if v.Zip != "" {
		parts = append(parts, string(v.Zip))
	}
	if v.City != "" {
		parts = append(parts, string(v.City))
	}
	if len(parts) == 0 && v.Address != "" {
		parts = append(parts, string(v.Address))
	}
	return event.CleanText(html.UnescapeString(strings.Join(parts, " ")))
}

func tribeHost(organizers []tribeOrganizer) string {
	for _, org := range organizers {
		if name := event.CleanText(html.UnescapeString(org.Organizer)); name != "" {
			return name
		}
	}
	return ""
}

func tribeLabels(item tribeEvent) []string {
	var out []string
	for _, term := range append(append([]tribeTerm{}, item.Categories...), item.Tags...) {
		if name := event.CleanText(html.UnescapeString(term.Name)); name != "" {
			out = append(out, name)
		}
	}
	return out
}
