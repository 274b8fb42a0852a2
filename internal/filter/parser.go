package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/region"
	"github.com/aendu/latin-events/internal/style"
)

const monthPattern = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|september|oct|october|nov|november|dec|december)`

var (
	isoRangePattern  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s*\.\.\s*(\d{4}-\d{2}-\d{2})$`)
	isoMonthPattern  = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	sameMonthPattern = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossPattern     = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	monthOnlyPattern = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
)

// ParseDateRange parses a date range relative to now.
//
// Supported formats:
//   - "2025-05-01" - a single day
//   - "2025-05-01..2025-05-31" - inclusive ISO range
//   - "2025-05" - an entire month
//   - "today", "weekend" - today, or the current or next Saturday and Sunday
//   - "Mar 1-15", "March 1 - April 15", "March" - month names
//
// Month names without a year refer to the current year, or to the next one
// when the month has already passed. Both returned times are midnight in
// the location of now.
func ParseDateRange(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}
	loc := now.Location()
	today := event.Day(now)

	switch strings.ToLower(input) {
	case "today":
		return span(today, today)
	case "weekend":
		sat := today.AddDate(0, 0, (int(time.Saturday)-int(today.Weekday())+7)%7)
		if today.Weekday() == time.Sunday {
			sat = today.AddDate(0, 0, -1)
		}
		return span(sat, sat.AddDate(0, 0, 1))
	}

	if t, err := time.ParseInLocation(event.DateLayout, input, loc); err == nil {
		return span(t, t)
	}

	if m := isoRangePattern.FindStringSubmatch(input); m != nil {
		from, err := time.ParseInLocation(event.DateLayout, m[1], loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date: %s", m[1])
		}
		to, err := time.ParseInLocation(event.DateLayout, m[2], loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date: %s", m[2])
		}
		return span(from, to)
	}

	if m := isoMonthPattern.FindStringSubmatch(input); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return nil, nil, fmt.Errorf("invalid month: %s", m[2])
		}
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		return span(from, from.AddDate(0, 1, -1))
	}

	if m := sameMonthPattern.FindStringSubmatch(input); m != nil {
		month := parseMonth(m[1])
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[3])
		if err != nil {
			return nil, nil, err
		}
		year := yearForMonth(month, now)
		return span(time.Date(year, month, day1, 0, 0, 0, 0, loc), time.Date(year, month, day2, 0, 0, 0, 0, loc))
	}

	if m := crossPattern.FindStringSubmatch(input); m != nil {
		month1, month2 := parseMonth(m[1]), parseMonth(m[3])
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[4])
		if err != nil {
			return nil, nil, err
		}
		year1 := yearForMonth(month1, now)
		year2 := year1
		// If month2 < month1, assume month2 is in the next year
		if month2 < month1 {
			year2++
		}
		return span(time.Date(year1, month1, day1, 0, 0, 0, 0, loc), time.Date(year2, month2, day2, 0, 0, 0, 0, loc))
	}

	if m := monthOnlyPattern.FindStringSubmatch(input); m != nil {
		month := parseMonth(m[1])
		from := time.Date(yearForMonth(month, now), month, 1, 0, 0, 0, 0, loc)
		return span(from, from.AddDate(0, 1, -1))
	}

	return nil, nil, fmt.Errorf("invalid date range %q. Use '2025-05-01', '2025-05-01..2025-05-31', '2025-05', 'weekend', 'Mar 1-15' or 'March'", input)
}

func span(from, to time.Time) (*time.Time, *time.Time, error) {
	if from.After(to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	return &from, &to, nil
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("invalid day: %s", s)
	}
	return day, nil
}

// parseMonth converts a month name to time.Month
func parseMonth(name string) time.Month {
	name = strings.ToLower(strings.TrimSpace(name))

	months := map[string]time.Month{
		"jan": time.January, "january": time.January,
		"feb": time.February, "february": time.February,
		"mar": time.March, "march": time.March,
		"apr": time.April, "april": time.April,
		"may": time.May,
		"jun": time.June, "june": time.June,
		"jul": time.July, "july": time.July,
		"aug": time.August, "august": time.August,
		"sep": time.September, "september": time.September,
		"oct": time.October, "october": time.October,
		"nov": time.November, "november": time.November,
		"dec": time.December, "december": time.December,
	}

	return months[name]
}

// yearForMonth returns the year of the next occurrence of month.
func yearForMonth(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}

var umlauts = strings.NewReplacer("ä", "a", "ö", "o", "ü", "u", "é", "e", "è", "e")

func fold(s string) string {
	return umlauts.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// ParseRegion resolves a region by exact name or by a unique case- and
// accent-insensitive fragment, so "bern", "zurich" and "Tessin" all work.
func ParseRegion(s string) (region.Region, error) {
	if r, ok := region.Parse(s); ok {
		return r, nil
	}
	needle := fold(s)
	if needle == "" {
		return "", fmt.Errorf("region cannot be empty")
	}
	var found []region.Region
	for _, r := range region.All() {
		if strings.Contains(fold(string(r)), needle) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", fmt.Errorf("unknown region %q", s)
	default:
		return "", fmt.Errorf("ambiguous region %q matches %d regions", s, len(found))
	}
}

// ParseStyle accepts a style code such as "B" or a name such as "bachata".
func ParseStyle(s string) (style.Code, error) {
	value := strings.TrimSpace(s)
	if code := style.Code(strings.ToUpper(value)); code.Valid() {
		return code, nil
	}
	for _, code := range []style.Code{style.Salsa, style.Bachata, style.Kizomba, style.Zouk, style.Other} {
		if strings.EqualFold(code.Name(), value) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", s)
}
