// Package style infers the dance styles an event covers from its free text.
//
// Detection favours precision: only explicit style keywords or well-known
// abbreviations such as "SBK" produce a concrete style. Generic latin party
// wording, or no hint at all, maps to Other.
package style

import (
	"regexp"
	"sort"
	"strings"
)

// Code is the one-letter identifier of a dance style.
type Code string

const (
	Salsa   Code = "S"
	Bachata Code = "B"
	Kizomba Code = "K"
	Zouk    Code = "Z"
	Other   Code = "O"
)

// Delimiter joins codes inside a feed cell.
const Delimiter = "|"

var names = map[Code]string{
	Salsa:   "Salsa",
	Bachata: "Bachata",
	Kizomba: "Kizomba",
	Zouk:    "Zouk",
	Other:   "Other",
}

// Valid reports whether c is a known style code.
func (c Code) Valid() bool {
	_, ok := names[c]
	return ok
}

// Name returns the human readable style name.
func (c Code) Name() string {
	if n, ok := names[c]; ok {
		return n
	}
	return string(c)
}

type combination struct {
	styles  []Code
	pattern *regexp.Regexp
}

// Abbreviations that name several styles at once, longest first.
var combinations = []combination{
	{[]Code{Salsa, Bachata, Kizomba, Zouk}, regexp.MustCompile(`\bsbkz\b`)},
	{[]Code{Salsa, Bachata, Kizomba}, regexp.MustCompile(`\bsbk\b`)},
	{[]Code{Salsa, Bachata}, regexp.MustCompile(`\bsb\b`)},
	{[]Code{Salsa, Zouk}, regexp.MustCompile(`\bsz\b`)},
	{[]Code{Bachata, Kizomba}, regexp.MustCompile(`\bbk\b`)},
	{[]Code{Bachata, Zouk}, regexp.MustCompile(`\bbz\b`)},
}

type keywordSet struct {
	style    Code
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

var keywords = []keywordSet{
	{Salsa, compileAll(
		`\bsalsa\b`,
		`\bcasino\b`,
		`\bson\b`,
		`\btimba\b`,
		`\bru(e|é)da\b`,
		`\bmambo\b`,
		`\bon\s*1\b`,
		`\bon\s*2\b`,
		`\bcubana\b`,
		`\bcuban\b`,
	)},
	{Bachata, compileAll(
		`\bbachata\b`,
		`\bsensual\b`,
		`\bbachata\s*fusion\b`,
		`\bd(o|ó|minican)\s*bachata\b`,
	)},
	{Kizomba, compileAll(
		`\bkizomba\b`,
		`\burban\s*kiz+\b`,
		`\bkiz+\b`,
		`\bkizz\b`,
		`\bkiz\s*fusion\b`,
	)},
	{Zouk, compileAll(
		`\bzouk\b`,
		`\blambazouk\b`,
		`\bzouklove\b`,
	)},
}

var whitespace = regexp.MustCompile(`\s+`)

// Detect infers the styles of an event from its name, labels, optional
// detail page text and host. The result is normalized: sorted, unique and
// never empty.
func Detect(name string, labels []string, detail, host string) []Code {
	haystack := strings.Join([]string{name, strings.Join(labels, " "), detail, host}, " ")
	folded := strings.ToLower(whitespace.ReplaceAllString(haystack, " "))

	var found []Code
	for _, combo := range combinations {
		if combo.pattern.MatchString(folded) {
			found = append(found, combo.styles...)
		}
	}

	for _, set := range keywords {
		for _, pattern := range set.patterns {
			if pattern.MatchString(folded) {
				found = append(found, set.style)
				break
			}
		}
	}

	if len(found) == 0 && strings.Contains(folded, "latin") {
		found = append(found, Other)
	}

	return Normalize(found)
}

// Normalize drops unknown codes and duplicates and returns the codes in
// sorted order. An empty result becomes {Other}.
func Normalize(codes []Code) []Code {
	seen := make(map[Code]bool, len(codes))
	out := make([]Code, 0, len(codes))
	for _, c := range codes {
		c = Code(strings.ToUpper(strings.TrimSpace(string(c))))
		if !c.Valid() || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, Other)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Cell renders codes for a feed cell, e.g. "B|S".
func Cell(codes []Code) string {
	normalized := Normalize(codes)
	parts := make([]string, len(normalized))
	for i, c := range normalized {
		parts[i] = string(c)
	}
	return strings.Join(parts, Delimiter)
}

// Parse reads a feed cell back into codes. An empty cell yields nil so that
// feeds without a style column stay without styles.
func Parse(cell string) []Code {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, Delimiter)
	codes := make([]Code, 0, len(parts))
	for _, p := range parts {
		codes = append(codes, Code(p))
	}
	return Normalize(codes)
}
