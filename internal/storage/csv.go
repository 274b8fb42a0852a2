package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/labels"
	"github.com/aendu/latin-events/internal/region"
	"github.com/aendu/latin-events/internal/style"
)

// Header is the fixed column order of every feed and snapshot file.
var Header = []string{"date", "time", "name", "flyer", "url", "host", "city", "region", "source", "style", "labels"}

// EncodeFeed renders events as CSV with the header row first.
func EncodeFeed(events []*event.Event) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, evt := range events {
		if evt == nil {
			continue
		}
		row := []string{
			evt.Date,
			evt.Time,
			evt.Name,
			evt.Flyer,
			evt.URL,
			evt.Host,
			evt.City,
			string(evt.Region),
			evt.Source,
			evt.StyleCell(),
			evt.LabelsCell(),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeFeed reads a feed written by EncodeFeed or by an older crawler.
// Columns are matched by header name, so missing source or style columns
// are tolerated. Rows without a known region are classified again from
// their city.
func DecodeFeed(r io.Reader) ([]*event.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(head))
	for i, name := range head {
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["date"]; !ok {
		return nil, fmt.Errorf("missing date column in header %v", head)
	}

	var events []*event.Event
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		evt := &event.Event{
			Date:   strings.TrimSpace(field("date")),
			Time:   strings.TrimSpace(field("time")),
			Name:   field("name"),
			Flyer:  field("flyer"),
			URL:    field("url"),
			Host:   field("host"),
			City:   field("city"),
			Source: field("source"),
			Labels: labels.Parse(field("labels")),
			Styles: style.Parse(field("style")),
		}
		if reg, ok := region.Parse(field("region")); ok {
			evt.Region = reg
		} else {
			evt.Region = region.Classify(evt.City)
		}
		events = append(events, evt)
	}
	return events, nil
}

// ReadEvents decodes the feed at path. A missing file yields no events and
// no error.
func ReadEvents(path string) ([]*event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() // nolint:errcheck

	events, err := DecodeFeed(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return events, nil
}
