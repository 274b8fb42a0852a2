package filter

import (
	"testing"
	"time"

	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/region"
	"github.com/aendu/latin-events/internal/style"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func sampleEvents() []*event.Event {
	return []*event.Event{
		event.New(event.Draft{Date: "2025-05-01", Time: "21:00", Name: "Salsa Night", Host: "Kaufleuten", City: "8001 Zürich", Source: "latino.ch", Labels: []string{"Party"}}),
		event.New(event.Draft{Date: "2025-05-03", Time: "20:30", Name: "Bachata Sensual Night", City: "3011 Bern", Source: "bachata-bern.ch"}),
		event.New(event.Draft{Date: "2025-05-04", Name: "SBK Sunday", City: "Lausanne", Source: "latino.ch"}),
		{Date: "soon", Name: "Broken", Region: region.Bern},
	}
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"empty filter", New(), true},
		{"date from", &Filter{DateFrom: timePtr(time.Now())}, false},
		{"weekends only", &Filter{WeekendsOnly: true}, false},
		{"region", &Filter{Regions: []region.Region{region.Bern}}, false},
		{"style", &Filter{Styles: []style.Code{style.Salsa}}, false},
		{"term", &Filter{Terms: []string{"night"}}, false},
		{"source", &Filter{Sources: []string{"latino.ch"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("Filter.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	may2 := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	may3 := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{
			name:   "empty filter keeps everything",
			filter: New(),
			want:   []string{"Salsa Night", "Bachata Sensual Night", "SBK Sunday", "Broken"},
		},
		{
			name:   "date from skips unparseable dates",
			filter: &Filter{DateFrom: timePtr(may2)},
			want:   []string{"Bachata Sensual Night", "SBK Sunday"},
		},
		{
			name:   "inclusive date range",
			filter: &Filter{DateFrom: timePtr(may3), DateTo: timePtr(may3)},
			want:   []string{"Bachata Sensual Night"},
		},
		{
			name:   "weekends only",
			filter: &Filter{WeekendsOnly: true},
			want:   []string{"Bachata Sensual Night", "SBK Sunday"},
		},
		{
			name:   "region",
			filter: &Filter{Regions: []region.Region{region.Bern, region.West}},
			want:   []string{"Bachata Sensual Night", "SBK Sunday", "Broken"},
		},
		{
			name:   "any of the styles",
			filter: &Filter{Styles: []style.Code{style.Kizomba}},
			want:   []string{"SBK Sunday"},
		},
		{
			name:   "city substring ignores case",
			filter: &Filter{Cities: []string{"zürich", "LAUSANNE"}},
			want:   []string{"Salsa Night", "SBK Sunday"},
		},
		{
			name:   "terms match name host and labels",
			filter: &Filter{Terms: []string{"kaufleuten"}},
			want:   []string{"Salsa Night"},
		},
		{
			name:   "source",
			filter: &Filter{Sources: []string{"Bachata-Bern.ch"}},
			want:   []string{"Bachata Sensual Night"},
		},
		{
			name: "criteria are combined",
			filter: &Filter{
				Styles:       []style.Code{style.Bachata},
				WeekendsOnly: true,
				Regions:      []region.Region{region.West},
			},
			want: []string{"SBK Sunday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(sampleEvents())
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() returned %d events, want %d", len(got), len(tt.want))
			}
			for i, evt := range got {
				if evt.Name != tt.want[i] {
					t.Errorf("event %d = %q, want %q", i, evt.Name, tt.want[i])
				}
			}
		})
	}
}
