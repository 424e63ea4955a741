package classify

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var ordinalSuffix = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\b`)

// datetimePatterns are tried before datePatterns so "August 7, 2025
// at 11:59 PM" is not truncated to its date prefix.
var datetimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.? \d{1,2},? \d{4},?(?: at)? \d{1,2}:\d{2}(?::\d{2})?\s?(?:AM|PM)?\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}/\d{1,2}/\d{2,4},? \d{1,2}:\d{2}(?::\d{2})?\s?(?:AM|PM)?\b`),
	regexp.MustCompile(`(?i)\b\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2})?\b`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.? \d{1,2},? \d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
}

// ExtractExpiration scans page text for an expiration date. Dates
// without a zone are interpreted in loc and the result is always UTC.
// Sites frequently print dates without a year, or print last season's
// date on a renewed pass, so a parsed time earlier than now rolls
// forward one year.
func ExtractExpiration(text string, loc *time.Location, now time.Time) (time.Time, bool) {
	cleaned := ordinalSuffix.ReplaceAllString(text, "$1")

	for _, group := range [][]*regexp.Regexp{datetimePatterns, datePatterns} {
		for _, pattern := range group {
			for _, candidate := range pattern.FindAllString(cleaned, -1) {
				// "September 15, 2025 at 11:59 PM" parses once the
				// filler word is gone
				candidate = strings.ReplaceAll(candidate, " at ", " ")
				parsed, err := dateparse.ParseIn(candidate, loc)
				if err != nil {
					continue
				}
				parsed = parsed.UTC()
				if parsed.Before(now) {
					parsed = parsed.AddDate(1, 0, 0)
				}
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
