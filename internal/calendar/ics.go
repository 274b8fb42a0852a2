// Package calendar renders the published feed as an iCalendar file that
// calendar apps can subscribe to.
package calendar

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aendu/latin-events/internal/event"
)

const (
	ProdID = "-//latin-events//latin-events//EN"

	// eventDuration is assumed for listings with a start time; sources do
	// not publish an end.
	eventDuration = 4 * time.Hour

	// maxLineOctets is the RFC 5545 content line limit.
	maxLineOctets = 75
)

// Store persists the rendered calendar.
type Store interface {
	WriteCalendar(data []byte) error
}

// Writer publishes the calendar next to the feed.
type Writer struct {
	Store    Store
	Location *time.Location
	Now      func() time.Time
}

// Publish renders events and hands them to the store.
func (w *Writer) Publish(events []*event.Event) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	if err := w.Store.WriteCalendar(Encode(events, w.Location, now())); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// Encode renders events as a single VCALENDAR. Events with a start time are
// placed in loc and written in UTC; the others become all-day entries.
// Events without a parseable date are skipped.
func Encode(events []*event.Event, loc *time.Location, stamp time.Time) []byte {
	if loc == nil {
		loc = time.UTC
	}
	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+ProdID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	writeLine(&ics, "X-WR-CALNAME:Latin Dance Events")

	for _, evt := range events {
		day, ok := event.ParseDate(evt.Date)
		if !ok {
			continue
		}
		writeEvent(&ics, evt, day, loc, stamp)
	}

	writeLine(&ics, "END:VCALENDAR")
	return []byte(ics.String())
}

func writeEvent(ics *strings.Builder, evt *event.Event, day time.Time, loc *time.Location, stamp time.Time) {
	writeLine(ics, "BEGIN:VEVENT")
	writeLine(ics, "UID:"+uid(evt))
	writeLine(ics, "DTSTAMP:"+formatICSTime(stamp))

	if clock, err := time.Parse(event.ClockLayout, evt.Time); err == nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
		writeLine(ics, "DTSTART:"+formatICSTime(start))
		writeLine(ics, "DTEND:"+formatICSTime(start.Add(eventDuration)))
	} else {
		writeLine(ics, "DTSTART;VALUE=DATE:"+day.Format("20060102"))
		writeLine(ics, "DTEND;VALUE=DATE:"+day.AddDate(0, 0, 1).Format("20060102"))
	}

	writeLine(ics, "SUMMARY:"+escapeICS(evt.Name))
	if evt.City != "" {
		writeLine(ics, "LOCATION:"+escapeICS(evt.City))
	}
	writeLine(ics, "DESCRIPTION:"+escapeICS(description(evt)))
	if len(evt.Styles) > 0 {
		names := make([]string, len(evt.Styles))
		for i, code := range evt.Styles {
			names[i] = escapeICS(code.Name())
		}
		writeLine(ics, "CATEGORIES:"+strings.Join(names, ","))
	}
	if evt.URL != "" {
		writeLine(ics, "URL:"+evt.URL)
	}
	if evt.Flyer != "" {
		writeLine(ics, "ATTACH:"+evt.Flyer)
	}
	writeLine(ics, "STATUS:CONFIRMED")
	writeLine(ics, "TRANSP:TRANSPARENT")
	writeLine(ics, "END:VEVENT")
}

func description(evt *event.Event) string {
	var lines []string
	if evt.Host != "" {
		lines = append(lines, "Host: "+evt.Host)
	}
	lines = append(lines, "Region: "+evt.Region.String())
	if labels := evt.LabelsCell(); labels != "" {
		lines = append(lines, "Labels: "+strings.ReplaceAll(labels, "|", ", "))
	}
	if evt.Source != "" {
		lines = append(lines, "Source: "+evt.Source)
	}
	return strings.Join(lines, "\n")
}

// uid is stable across runs as long as the listing does not change.
func uid(evt *event.Event) string {
	sum := sha1.Sum([]byte(evt.Key()))
	return hex.EncodeToString(sum[:10]) + "@latin-events"
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine folds line at 75 octets without splitting UTF-8 sequences and
// terminates it with CRLF.
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines carry a leading space
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}
