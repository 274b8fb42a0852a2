package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/aendu/latin-events/internal/config"
	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/logger"
	"github.com/aendu/latin-events/internal/source"
)

const (
	LatinoSource = "latino.ch"
	latinoPath   = "/events"
)

// Latino pages through the latino.ch event listing.
//
// The first request loads the regular listing. Further pages replay the
// infinite-scroll request, which returns the next chunk of listing markup
// after the last date heading already seen.
type Latino struct {
	client  *source.Client
	cfg     config.Latino
	daySpan int
	now     func() time.Time
}

// NewLatino creates the latino.ch adapter.
func NewLatino(client *source.Client, cfg config.Latino, daySpan int, now func() time.Time) *Latino {
	if cfg.MaxIdlePages <= 0 {
		cfg.MaxIdlePages = 2
	}
	if cfg.Locale == "" {
		cfg.Locale = "de"
	}
	return &Latino{client: client, cfg: cfg, daySpan: daySpan, now: now}
}

// Name returns the source tag.
func (l *Latino) Name() string { return LatinoSource }

type latinoCursor struct {
	lastDate string // data-date of the last heading seen
	idle     int    // consecutive pages without new listings
}

// Fetch collects listings until the window end is reached or the listing
// stops producing new data.
func (l *Latino) Fetch(ctx context.Context) ([]*event.Event, error) {
	base, err := url.Parse(l.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing base url: %w", LatinoSource, err)
	}
	listing := base.JoinPath(latinoPath).String()
	window := event.NewWindow(l.now(), l.daySpan)
	col := newCollector(window)

	step := func(ctx context.Context, cur latinoCursor) (source.Page[latinoCursor], error) {
		body, err := l.fetchChunk(ctx, listing, cur.lastDate)
		if err != nil {
			return source.Page[latinoCursor]{}, err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return source.Page[latinoCursor]{}, nil
		}

		events, markers, err := parseEvents(bytes.NewReader(body), base)
		if err != nil {
			return source.Page[latinoCursor]{}, err
		}

		added := 0
		for _, evt := range events {
			if col.add(evt) {
				added++
			}
		}

		next := cur
		if len(markers) > 0 {
			next.lastDate = markers[len(markers)-1]
		}
		if added == 0 {
			next.idle++
		} else {
			next.idle = 0
		}

		logger.Debug("latino.ch page parsed", logger.Fields{
			"listings":  len(events),
			"new":       added,
			"last_date": next.lastDate,
		})

		more := true
		switch {
		case col.last != "" && window.Reached(col.last):
			more = false
		case len(markers) == 0:
			more = false
		case next.idle >= l.cfg.MaxIdlePages:
			more = false
		}
		return source.Page[latinoCursor]{Next: next, More: more}, nil
	}

	res, err := source.Paginate(ctx, latinoCursor{}, l.cfg.MaxPages, step)
	if err != nil {
		return nil, fmt.Errorf("%s: fetching %w", LatinoSource, err)
	}
	if res.Truncated {
		logger.Warn("page limit reached", logger.Fields{
			"source": LatinoSource,
			"pages":  res.Pages,
		})
	}

	event.Sort(col.events)
	return col.events, nil
}

func (l *Latino) fetchChunk(ctx context.Context, listing, lastDate string) ([]byte, error) {
	params := url.Values{"locale": {l.cfg.Locale}}
	var header http.Header
	if lastDate != "" {
		params.Set("format", "js")
		params.Set("filter[last_date]", lastDate)
		header = http.Header{}
		header.Set("X-Requested-With", "XMLHttpRequest")
		header.Set("Accept", "text/javascript, text/html, application/xhtml+xml, */*")
	}
	return l.client.Get(ctx, listing, params, header)
}

// parseEvents extracts the listings of one chunk together with the date
// headings it contains. Every div.event belongs to the nearest preceding
// h3[data-date]; blocks before the first heading are skipped.
func parseEvents(r io.Reader, base *url.URL) ([]*event.Event, []string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing HTML: %w", err)
	}

	events := make([]*event.Event, 0)
	var markers []string
	current := ""

	// The group selector yields headings and blocks in document order.
	doc.Find("h3[data-date], div.event").Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "h3" {
			current = event.CleanText(sel.AttrOr("data-date", ""))
			if current != "" {
				markers = append(markers, current)
			}
			return
		}
		if current == "" {
			return
		}
		events = append(events, buildFromBlock(sel, current, base)...)
	})

	return events, markers, nil
}

func buildFromBlock(sel *goquery.Selection, date string, base *url.URL) []*event.Event {
	host, city := extractAddress(sel)
	d := event.Draft{
		Date:   date,
		Flyer:  extractFlyer(sel, base),
		URL:    extractURL(sel, base),
		Host:   host,
		City:   city,
		Source: LatinoSource,
		Labels: extractLabels(sel),
	}

	if sel.HasClass("cluster") {
		return buildFromCluster(sel, d)
	}

	d.Time = sel.Find(".col-xs-5 span").First().Text()
	d.Name = sel.Find(".title").First().Text()
	return []*event.Event{event.New(d)}
}

// buildFromCluster expands a block listing several parties at the same
// venue into one event per title line.
func buildFromCluster(sel *goquery.Selection, shared event.Draft) []*event.Event {
	title := sel.Find(".title").First()
	if title.Length() == 0 {
		return nil
	}

	var events []*event.Event
	title.Find("li").Each(func(_ int, li *goquery.Selection) {
		item := li.Clone()
		span := item.Find("span").First()
		clock := event.CleanText(span.Text())
		span.Remove()

		name := event.CleanText(item.Text())
		if name == "" {
			return
		}
		d := shared
		d.Time = clock
		d.Name = name
		events = append(events, event.New(d))
	})
	return events
}

func extractAddress(sel *goquery.Selection) (host, city string) {
	address := sel.Find(".address").First()
	if address.Length() == 0 {
		return "", ""
	}
	host = event.CleanText(address.Find("div.line").First().Text())
	city = event.CleanText(address.Find("b.line").First().Text())
	return host, city
}

func extractLabels(sel *goquery.Selection) []string {
	var out []string
	sel.Find(".label").Each(func(_ int, label *goquery.Selection) {
		if text := event.CleanText(label.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func extractFlyer(sel *goquery.Selection, base *url.URL) string {
	src, ok := sel.Find("img").First().Attr("src")
	if !ok {
		return ""
	}
	return resolve(base, src)
}

func extractURL(sel *goquery.Selection, base *url.URL) string {
	if href, ok := sel.ParentsFiltered("a[href]").First().Attr("href"); ok {
		return resolve(base, href)
	}
	if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
		return resolve(base, href)
	}
	return ""
}
