package ingestion

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layouts tried after dateparse gives up. Funding sites use a few spellings
// dateparse rejects, mostly month names without commas.
var deadlineLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006.01.02",
	"02.01.2006",
}

// datePattern matches the date spellings that appear in deadline prose:
// month-name dates, slash dates, and ISO dates.
var datePattern = regexp.MustCompile(
	`\b(?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}|\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}-\d{1,2}-\d{4})\b`)

// ParseDeadline parses a deadline from a date string or a snippet of prose
// containing one. Returns the zero time and false when no date can be
// resolved. All parsed times are UTC.
func ParseDeadline(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if t, err := dateparse.ParseAny(text); err == nil {
		return t.UTC(), true
	}

	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}

	// The string may be prose around a date rather than a bare date
	if m := datePattern.FindString(text); m != "" && m != text {
		return ParseDeadline(m)
	}

	return time.Time{}, false
}
