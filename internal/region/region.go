// Package region maps free-text Swiss localities to the coarse regions used
// by the event feed.
//
// Classification first looks for known town names, then falls back to the
// first four-digit postal code in the text. Anything else lands in the
// default region, so Classify never fails.
package region

import (
	"regexp"
	"strconv"
	"strings"
)

// Region is one of the fixed geographic buckets of the feed.
type Region string

const (
	Bern           Region = "Region Bern"
	Zurich         Region = "Region Zürich"
	East           Region = "Ost Schweiz"
	Central        Region = "Zentral Schweiz"
	SolothurnAarau Region = "Region Solothurn & Aarau"
	West           Region = "West Schweiz"
	Wallis         Region = "Wallis"
	Tessin         Region = "Tessin"
	Basel          Region = "Region Basel"

	// Default is used when a locality is empty or unknown.
	Default = Zurich
)

var all = []Region{Bern, Zurich, East, Central, SolothurnAarau, West, Wallis, Tessin, Basel}

// All returns every region in a stable order.
func All() []Region {
	out := make([]Region, len(all))
	copy(out, all)
	return out
}

// Valid reports whether r is part of the enumeration.
func (r Region) Valid() bool {
	for _, candidate := range all {
		if r == candidate {
			return true
		}
	}
	return false
}

func (r Region) String() string {
	return string(r)
}

// Parse returns the region named by s, or false if s is not one of them.
func Parse(s string) (Region, bool) {
	r := Region(strings.TrimSpace(s))
	return r, r.Valid()
}

type needle struct {
	text   string
	region Region
}

// Order matters: the first needle contained in the locality wins.
var needles = []needle{
	{"bern", Bern},
	{"thun", Bern},
	{"biel", Bern},
	{"fribourg", Bern},
	{"friburg", Bern},
	{"düdingen", Bern},
	{"zürich", Zurich},
	{"zuerich", Zurich},
	{"zurich", Zurich},
	{"winterthur", Zurich},
	{"schaffhausen", East},
	{"luzern", Central},
	{"kriens", Central},
	{"rotkreuz", Central},
	{"zug", Central},
	{"solothurn", SolothurnAarau},
	{"aarau", SolothurnAarau},
	{"wohlen", SolothurnAarau},
	{"olten", SolothurnAarau},
	{"st. gallen", East},
	{"st gallen", East},
	{"st.gallen", East},
	{"chur", East},
	{"konstanz", East},
	{"rapperswil-jona", East},
	{"lausanne", West},
	{"geneva", West},
	{"genève", West},
	{"neuchâtel", West},
	{"neuchatel", West},
	{"sion", Wallis},
	{"martigny", Wallis},
	{"brig", Wallis},
	{"lugano", Tessin},
	{"locarno", Tessin},
	{"basel", Basel},
}

// postalRange covers codes in [lo, hi).
type postalRange struct {
	lo, hi int
	region Region
}

const maxPostal = 10000

// Evaluated in order, first match wins.
var postalRanges = []postalRange{
	{1000, 1700, West},
	{2000, 3000, West},
	{1700, 1800, Bern},
	{3000, 3900, Bern},
	{1800, 2000, Wallis},
	{3900, 4000, Wallis},
	{4000, 4500, Basel},
	{4500, 6000, SolothurnAarau},
	{6000, 6500, Central},
	{6500, 7000, Tessin},
	{7000, 8000, East},
	{8200, maxPostal, East},
}

var postalPattern = regexp.MustCompile(`\d{4}`)

// Classify returns the region for a locality such as "3011 Bern" or
// "Dachstock, Reitschule". It never fails.
func Classify(locality string) Region {
	if strings.TrimSpace(locality) == "" {
		return Default
	}

	lc := strings.ToLower(locality)
	for _, n := range needles {
		if strings.Contains(lc, n.text) {
			return n.region
		}
	}

	if code, ok := PostalCode(locality); ok {
		return FromPostalCode(code)
	}
	return Default
}

// PostalCode extracts the first four-digit group of s.
func PostalCode(s string) (int, bool) {
	match := postalPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	code, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return code, true
}

// FromPostalCode maps a Swiss postal code to its region.
func FromPostalCode(code int) Region {
	for _, pr := range postalRanges {
		if code >= pr.lo && code < pr.hi {
			return pr.region
		}
	}
	return Default
}
