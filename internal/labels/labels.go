// Package labels canonicalizes the free-text category and tag labels that
// event sources attach to their listings.
package labels

import (
	"regexp"
	"sort"
	"strings"
)

// Delimiter joins labels inside a feed cell.
const Delimiter = "|"

// replacements collapses verbose source labels into short canonical tags.
var replacements = map[string]string{
	"social dance":          "party",
	"bachata party schweiz": "party",
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize lower-cases and trims each label, applies the synonym table and
// drops empty values and duplicates. First-occurrence order is preserved.
func Normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, label := range raw {
		value := strings.ToLower(strings.TrimSpace(whitespace.ReplaceAllString(label, " ")))
		if canonical, ok := replacements[value]; ok {
			value = canonical
		}
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

// Cell renders labels for a feed cell: unique, sorted and "|"-joined.
func Cell(values []string) string {
	unique := Normalize(values)
	sort.Strings(unique)
	return strings.Join(unique, Delimiter)
}

// Parse reads a feed cell back into normalized labels.
func Parse(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	return Normalize(strings.Split(cell, Delimiter))
}
