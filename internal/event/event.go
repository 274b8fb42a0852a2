package event

import (
	"regexp"
	"strings"

	"github.com/aendu/latin-events/internal/labels"
	"github.com/aendu/latin-events/internal/region"
	"github.com/aendu/latin-events/internal/style"
)

// Event is one dance event listing in the combined feed
type Event struct {
	Date   string        `json:"date"` // ISO date, YYYY-MM-DD
	Time   string        `json:"time,omitempty"`
	Name   string        `json:"name"`
	Flyer  string        `json:"flyer,omitempty"`
	URL    string        `json:"url,omitempty"`
	Host   string        `json:"host,omitempty"`
	City   string        `json:"city,omitempty"`
	Region region.Region `json:"region"`
	Source string        `json:"source,omitempty"`
	Labels []string      `json:"labels,omitempty"`
	Styles []style.Code  `json:"style,omitempty"`
}

// Draft holds the raw values a source adapter extracted for one listing
type Draft struct {
	Date   string
	Time   string
	Name   string
	Flyer  string
	URL    string
	Host   string
	City   string
	Source string
	Labels []string
	// Detail is optional detail-page text, only used for style detection
	Detail string
}

// New builds an Event from a draft, cleaning the text fields and deriving
// region, labels and styles
func New(d Draft) *Event {
	name := CleanText(d.Name)
	host := CleanText(d.Host)
	city := CleanText(d.City)
	lbls := labels.Normalize(d.Labels)

	return &Event{
		Date:   strings.TrimSpace(d.Date),
		Time:   CleanText(d.Time),
		Name:   name,
		Flyer:  strings.TrimSpace(d.Flyer),
		URL:    strings.TrimSpace(d.URL),
		Host:   host,
		City:   city,
		Region: region.Classify(city),
		Source: strings.TrimSpace(d.Source),
		Labels: lbls,
		Styles: style.Detect(name, lbls, d.Detail, host),
	}
}

// Valid reports whether the event carries the required name and a parseable date
func (e *Event) Valid() bool {
	if e == nil || strings.TrimSpace(e.Name) == "" {
		return false
	}
	_, ok := ParseDate(e.Date)
	return ok
}

// Key identifies a listing within a single source pass
func (e *Event) Key() string {
	return strings.Join([]string{e.Date, e.Time, e.Name, e.City}, "\x1f")
}

// LabelsCell renders the labels as a sorted "|"-joined cell
func (e *Event) LabelsCell() string {
	return labels.Cell(e.Labels)
}

// StyleCell renders the styles as a sorted "|"-joined cell. Events without
// styles render an empty cell.
func (e *Event) StyleCell() string {
	if len(e.Styles) == 0 {
		return ""
	}
	return style.Cell(e.Styles)
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs and trims the result
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
