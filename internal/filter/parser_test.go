package filter

import (
	"testing"
	"time"

	"github.com/aendu/latin-events/internal/region"
	"github.com/aendu/latin-events/internal/style"
)

func TestParseDateRange(t *testing.T) {
	// Wednesday
	now := time.Date(2025, 4, 30, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{input: "2025-05-01", wantFrom: "2025-05-01", wantTo: "2025-05-01"},
		{input: "2025-05-01..2025-05-31", wantFrom: "2025-05-01", wantTo: "2025-05-31"},
		{input: "2025-05-01 .. 2025-05-03", wantFrom: "2025-05-01", wantTo: "2025-05-03"},
		{input: "2025-02", wantFrom: "2025-02-01", wantTo: "2025-02-28"},
		{input: "today", wantFrom: "2025-04-30", wantTo: "2025-04-30"},
		{input: "Weekend", wantFrom: "2025-05-03", wantTo: "2025-05-04"},
		{input: "Mar 1-15", wantFrom: "2026-03-01", wantTo: "2026-03-15"},
		{input: "May 1-15", wantFrom: "2025-05-01", wantTo: "2025-05-15"},
		{input: "April 20 - May 5", wantFrom: "2025-04-20", wantTo: "2025-05-05"},
		{input: "Dec 20 - Jan 5", wantFrom: "2025-12-20", wantTo: "2026-01-05"},
		{input: "june", wantFrom: "2025-06-01", wantTo: "2025-06-30"},
		{input: "", wantErr: true},
		{input: "2025-05-31..2025-05-01", wantErr: true},
		{input: "2025-13", wantErr: true},
		{input: "Mar 0-15", wantErr: true},
		{input: "next week", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			from, to, err := ParseDateRange(tt.input, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDateRange(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDateRange(%q) error = %v", tt.input, err)
			}
			if got := from.Format("2006-01-02"); got != tt.wantFrom {
				t.Errorf("from = %s, want %s", got, tt.wantFrom)
			}
			if got := to.Format("2006-01-02"); got != tt.wantTo {
				t.Errorf("to = %s, want %s", got, tt.wantTo)
			}
		})
	}
}

func TestParseDateRange_WeekendOnSunday(t *testing.T) {
	sunday := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)

	from, to, err := ParseDateRange("weekend", sunday)
	if err != nil {
		t.Fatalf("ParseDateRange() error = %v", err)
	}
	if from.Format("2006-01-02") != "2025-05-03" || to.Format("2006-01-02") != "2025-05-04" {
		t.Errorf("weekend = %s..%s, want the running weekend", from, to)
	}
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		input   string
		want    region.Region
		wantErr bool
	}{
		{input: "Region Bern", want: region.Bern},
		{input: "bern", want: region.Bern},
		{input: "zurich", want: region.Zurich},
		{input: "Zürich", want: region.Zurich},
		{input: "tessin", want: region.Tessin},
		{input: "aarau", want: region.SolothurnAarau},
		{input: "schweiz", wantErr: true},
		{input: "Mars", wantErr: true},
		{input: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRegion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRegion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    style.Code
		wantErr bool
	}{
		{input: "B", want: style.Bachata},
		{input: "s", want: style.Salsa},
		{input: "Kizomba", want: style.Kizomba},
		{input: "zouk", want: style.Zouk},
		{input: "tango", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStyle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStyle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStyle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
