package aggregate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Matcher scores the similarity of two normalized names in [0, 1], where 1
// means identical.
type Matcher interface {
	Similarity(a, b string) float64
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(a, b string) float64

// Similarity calls f(a, b).
func (f MatcherFunc) Similarity(a, b string) float64 {
	return f(a, b)
}

// LevenshteinMatcher scores names by edit distance relative to the longer
// name.
type LevenshteinMatcher struct{}

// Similarity returns 1 - distance/max(len(a), len(b)), counted in runes.
func (LevenshteinMatcher) Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName folds a name to lower case and collapses every run of
// characters outside [a-z0-9] into a single space.
func NormalizeName(name string) string {
	return strings.TrimSpace(nonAlphanumeric.ReplaceAllString(strings.ToLower(name), " "))
}

// Similar reports whether two event names denote the same event: their
// normalized forms are equal, or m scores them at or above threshold.
// Empty names are never similar.
func Similar(a, b string, threshold float64, m Matcher) bool {
	if a == "" || b == "" {
		return false
	}
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == nb {
		return true
	}
	if m == nil {
		m = LevenshteinMatcher{}
	}
	return m.Similarity(na, nb) >= threshold
}
