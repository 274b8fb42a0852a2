package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/aendu/latin-events/internal/config"
	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/source"
)

// New returns the enabled adapters in feed priority order: latino.ch first,
// then bachata-bern.ch. Earlier sources win when the aggregator finds
// duplicates.
func New(cfg *config.Config, client *source.Client, now func() time.Time) []source.Source {
	if now == nil {
		loc := cfg.Location()
		now = func() time.Time { return time.Now().In(loc) }
	}

	var sources []source.Source
	if cfg.Latino.Enabled {
		sources = append(sources, NewLatino(client, cfg.Latino, cfg.DaySpan, now))
	}
	if cfg.BachataBern.Enabled {
		sources = append(sources, NewBachataBern(client, cfg.BachataBern, cfg.DaySpan, now))
	}
	return sources
}

// SourceNames lists the tags of every known adapter, in priority order.
func SourceNames() []string {
	return []string{LatinoSource, BachataBernSource}
}

// collector keeps the first listing per (date, time, name, city) and drops
// dates outside the window.
type collector struct {
	window event.Window
	seen   map[string]bool
	events []*event.Event
	last   string // latest valid date seen, in or out of the window
}

func newCollector(window event.Window) *collector {
	return &collector{window: window, seen: make(map[string]bool)}
}

// add reports whether evt was new to this pass.
func (c *collector) add(evt *event.Event) bool {
	key := evt.Key()
	if c.seen[key] {
		return false
	}
	c.seen[key] = true

	if _, ok := event.ParseDate(evt.Date); ok && evt.Date > c.last {
		c.last = evt.Date
	}
	if c.window.Contains(evt.Date) {
		c.events = append(c.events, evt)
	}
	return true
}

// resolve makes ref absolute against base. Unparseable refs are returned trimmed.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
