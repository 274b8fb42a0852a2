package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aendu/latin-events/internal/event"
)

var stamp = time.Date(2025, 4, 30, 5, 15, 0, 0, time.UTC)

func zurich(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Zurich")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	return loc
}

func TestEncode(t *testing.T) {
	events := []*event.Event{
		event.New(event.Draft{
			Date:   "2025-05-01",
			Time:   "21:00",
			Name:   "Salsa Night, Live Band",
			URL:    "https://www.latino.ch/events/salsa-night",
			Flyer:  "https://www.latino.ch/flyers/salsa.jpg",
			Host:   "Kaufleuten",
			City:   "8001 Zürich",
			Source: "latino.ch",
			Labels: []string{"Party", "Salsa"},
		}),
	}

	ics := string(Encode(events, zurich(t), stamp))
	unfolded := strings.ReplaceAll(ics, "\r\n ", "")

	requiredFields := []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"PRODID:-//latin-events//latin-events//EN\r\n",
		"BEGIN:VEVENT\r\n",
		"DTSTAMP:20250430T051500Z\r\n",
		"DTSTART:20250501T190000Z\r\n", // 21:00 CEST
		"DTEND:20250501T230000Z\r\n",
		"SUMMARY:Salsa Night\\, Live Band\r\n",
		"LOCATION:8001 Zürich\r\n",
		"DESCRIPTION:Host: Kaufleuten\\nRegion: Region Zürich\\nLabels: party\\, salsa\\nSource: latino.ch\r\n",
		"CATEGORIES:Salsa\r\n",
		"URL:https://www.latino.ch/events/salsa-night\r\n",
		"ATTACH:https://www.latino.ch/flyers/salsa.jpg\r\n",
		"END:VEVENT\r\n",
		"END:VCALENDAR\r\n",
	}
	for _, field := range requiredFields {
		if !strings.Contains(unfolded, field) {
			t.Errorf("ICS missing %q", field)
		}
	}
}

func TestEncode_AllDayAndInvalid(t *testing.T) {
	events := []*event.Event{
		event.New(event.Draft{Date: "2025-05-03", Name: "Bachata Weekend"}),
		event.New(event.Draft{Date: "someday", Name: "Broken"}),
	}

	ics := string(Encode(events, nil, stamp))

	if strings.Count(ics, "BEGIN:VEVENT") != 1 {
		t.Fatalf("want exactly one VEVENT, got:\n%s", ics)
	}
	if !strings.Contains(ics, "DTSTART;VALUE=DATE:20250503\r\n") || !strings.Contains(ics, "DTEND;VALUE=DATE:20250504\r\n") {
		t.Errorf("all-day dates missing:\n%s", ics)
	}
	if strings.Contains(ics, "LOCATION:") || strings.Contains(ics, "URL:") {
		t.Error("empty fields must be omitted")
	}
}

func TestEncode_StableUID(t *testing.T) {
	a := event.New(event.Draft{Date: "2025-05-01", Time: "21:00", Name: "Salsa Night", City: "Bern"})
	b := event.New(event.Draft{Date: "2025-05-01", Time: "21:00", Name: "Salsa Night", City: "Bern"})
	c := event.New(event.Draft{Date: "2025-05-02", Time: "21:00", Name: "Salsa Night", City: "Bern"})

	if uid(a) != uid(b) {
		t.Error("identical listings must share a UID")
	}
	if uid(a) == uid(c) {
		t.Error("different dates must produce different UIDs")
	}
	if !strings.HasSuffix(uid(a), "@latin-events") {
		t.Errorf("uid = %q", uid(a))
	}
}

func TestEscapeICS(t *testing.T) {
	got := escapeICS("Salsa; Bachata, Kizomba\\Zouk\nLive")
	want := "Salsa\\; Bachata\\, Kizomba\\\\Zouk\\nLive"
	if got != want {
		t.Errorf("escapeICS() = %q, want %q", got, want)
	}
}

func TestWriteLine_Folds(t *testing.T) {
	var b strings.Builder
	line := "SUMMARY:" + strings.Repeat("ä", 60) // 128 octets

	writeLine(&b, line)

	out := b.String()
	parts := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	if len(parts) < 2 {
		t.Fatalf("line not folded: %q", out)
	}
	for i, part := range parts {
		if len(part) > maxLineOctets {
			t.Errorf("part %d has %d octets", i, len(part))
		}
		if i > 0 && !strings.HasPrefix(part, " ") {
			t.Errorf("continuation %d must start with a space", i)
		}
		if !utf8.ValidString(strings.TrimPrefix(part, " ")) {
			t.Errorf("part %d splits a UTF-8 sequence", i)
		}
	}

	unfolded := strings.ReplaceAll(strings.TrimSuffix(out, "\r\n"), "\r\n ", "")
	if unfolded != line {
		t.Errorf("unfolded = %q, want %q", unfolded, line)
	}
}

type fakeStore struct {
	data []byte
	err  error
}

func (f *fakeStore) WriteCalendar(data []byte) error {
	f.data = data
	return f.err
}

func TestWriter_Publish(t *testing.T) {
	store := &fakeStore{}
	w := &Writer{Store: store, Now: func() time.Time { return stamp }}

	err := w.Publish([]*event.Event{event.New(event.Draft{Date: "2025-05-01", Name: "Salsa"})})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !strings.Contains(string(store.data), "DTSTAMP:20250430T051500Z") {
		t.Errorf("calendar not written: %s", store.data)
	}

	store.err = errors.New("disk full")
	if err := w.Publish(nil); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Publish() error = %v, want wrapped store error", err)
	}
}
