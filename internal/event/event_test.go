package event

import (
	"reflect"
	"testing"

	"github.com/aendu/latin-events/internal/region"
	"github.com/aendu/latin-events/internal/style"
)

func TestNew(t *testing.T) {
	evt := New(Draft{
		Date:   " 2026-03-13 ",
		Time:   " 21:00 ",
		Name:   "  SBK   Party\n",
		Flyer:  "https://example.com/flyer.jpg",
		URL:    "https://example.com/event",
		Host:   " Tanzwerk  ",
		City:   "3011   Bern",
		Source: "latino.ch",
		Labels: []string{"Social Dance", "Workshop", "social dance"},
	})

	if evt.Date != "2026-03-13" {
		t.Errorf("expected date '2026-03-13', got '%s'", evt.Date)
	}
	if evt.Time != "21:00" {
		t.Errorf("expected time '21:00', got '%s'", evt.Time)
	}
	if evt.Name != "SBK Party" {
		t.Errorf("expected name 'SBK Party', got '%s'", evt.Name)
	}
	if evt.City != "3011 Bern" {
		t.Errorf("expected city '3011 Bern', got '%s'", evt.City)
	}
	if evt.Host != "Tanzwerk" {
		t.Errorf("expected host 'Tanzwerk', got '%s'", evt.Host)
	}
	if evt.Region != region.Bern {
		t.Errorf("expected region %q, got %q", region.Bern, evt.Region)
	}
	if want := []string{"party", "workshop"}; !reflect.DeepEqual(evt.Labels, want) {
		t.Errorf("expected labels %v, got %v", want, evt.Labels)
	}
	if want := []style.Code{style.Bachata, style.Kizomba, style.Salsa}; !reflect.DeepEqual(evt.Styles, want) {
		t.Errorf("expected styles %v, got %v", want, evt.Styles)
	}
}

func TestNew_DefaultRegion(t *testing.T) {
	evt := New(Draft{Date: "2026-03-13", Name: "Latin Night"})

	if evt.Region != region.Default {
		t.Errorf("expected default region, got %q", evt.Region)
	}
	if evt.StyleCell() != "O" {
		t.Errorf("expected style cell 'O', got %q", evt.StyleCell())
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		evt  *Event
		want bool
	}{
		{"valid", &Event{Date: "2026-03-13", Name: "Salsa Night"}, true},
		{"missing date", &Event{Name: "Salsa Night"}, false},
		{"missing name", &Event{Date: "2026-03-13"}, false},
		{"blank name", &Event{Date: "2026-03-13", Name: "   "}, false},
		{"unparseable date", &Event{Date: "13.03.2026", Name: "Salsa Night"}, false},
		{"nil event", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.evt.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	a := &Event{Date: "2026-03-13", Time: "20:00", Name: "Salsa", City: "Bern"}
	b := &Event{Date: "2026-03-13", Time: "20:00", Name: "Salsa", City: "Bern", URL: "https://other"}
	c := &Event{Date: "2026-03-13", Time: "21:00", Name: "Salsa", City: "Bern"}

	if a.Key() != b.Key() {
		t.Error("events differing only in URL should share a key")
	}
	if a.Key() == c.Key() {
		t.Error("events with different times should not share a key")
	}
}

func TestCells(t *testing.T) {
	evt := &Event{
		Labels: []string{"workshop", "party"},
		Styles: []style.Code{style.Salsa, style.Bachata},
	}

	if got := evt.LabelsCell(); got != "party|workshop" {
		t.Errorf("LabelsCell() = %q, want %q", got, "party|workshop")
	}
	if got := evt.StyleCell(); got != "B|S" {
		t.Errorf("StyleCell() = %q, want %q", got, "B|S")
	}

	empty := &Event{}
	if got := empty.StyleCell(); got != "" {
		t.Errorf("StyleCell() for event without styles = %q, want empty", got)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"  a  ", "a"},
		{"a\n\tb   c", "a b c"},
	}

	for _, tt := range tests {
		if got := CleanText(tt.input); got != tt.expected {
			t.Errorf("CleanText(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
