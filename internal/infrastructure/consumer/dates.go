package consumer

import (
	"regexp"
	"time"
)

// datePatterns pairs a regular expression with the layouts its matches
// are tried against.
var datePatterns = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`), []string{"2006-01-02"}},
	{regexp.MustCompile(`\b(\d{1,2}\.\d{1,2}\.\d{4})\b`), []string{"2.1.2006", "02.01.2006"}},
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), []string{"1/2/2006", "01/02/2006"}},
	{regexp.MustCompile(`\b([A-Z][a-z]+ \d{1,2}, \d{4})\b`), []string{"January 2, 2006"}},
	{regexp.MustCompile(`\b(\d{1,2} [A-Z][a-z]+ \d{4})\b`), []string{"2 January 2006"}},
}

// maxSuggestedDates bounds how many date suggestions are extracted
const maxSuggestedDates = 10

// ParseDates scans text for date expressions and returns the parsed
// values in order of appearance, deduplicated. Dates far in the future
// or implausibly old are dropped.
func ParseDates(text string, now time.Time) []time.Time {
	seen := map[time.Time]bool{}
	var dates []time.Time

	for _, pattern := range datePatterns {
		for _, match := range pattern.re.FindAllStringSubmatch(text, -1) {
			parsed, ok := tryLayouts(match[1], pattern.layouts)
			if !ok {
				continue
			}
			if parsed.After(now) || parsed.Year() < 1900 {
				continue
			}
			if seen[parsed] {
				continue
			}
			seen[parsed] = true
			dates = append(dates, parsed)
			if len(dates) >= maxSuggestedDates {
				return dates
			}
		}
	}
	return dates
}

func tryLayouts(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
