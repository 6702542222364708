package helper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the normalized representation of calendar dates
// leaving the process (packets, prompts, database rows).
const DateLayout = "2006-01-02"

var (
	isoDatePattern     = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})(?:[T ].*)?$`)
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
	ordinalPattern     = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
	spacePattern       = regexp.MustCompile(`\s+`)
	monthDotPattern    = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.`)
	septPattern        = regexp.MustCompile(`(?i)\bSept\b`)
)

var textualLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 January, 2006",
	"2 Jan 2006",
	"2 Jan, 2006",
	"January-2-2006",
	"Jan-2-2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate converts an external date string into a calendar date at UTC midnight.
// Numeric D/M/Y strings are read day first unless the first field cannot be a day of a month.
func ParseDate(s string) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, NewError("parse date", fmt.Errorf("empty date"))
	}

	if m := isoDatePattern.FindStringSubmatch(raw); m != nil {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return Midnight(t), nil
		}
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), raw)
	}

	if m := numericDatePattern.FindStringSubmatch(raw); m != nil {
		first, second, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		day, month := first, second
		if first <= 12 && second > 12 {
			day, month = second, first
		}
		return buildDate(year, month, day, raw)
	}

	cleaned := canonicalMonths(raw)
	cleaned = ordinalPattern.ReplaceAllString(cleaned, "$1")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "."))
	for _, layout := range textualLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return Midnight(t), nil
		}
	}

	return time.Time{}, NewError("parse date", fmt.Errorf("unrecognized date %q", raw))
}

// NormalizeDate parses s and formats it as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return FormatDate(t), nil
}

// FormatDate formats a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight drops the clock part of t, keeping its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// canonicalMonths rewrites month abbreviations to the three letter form time.Parse
// accepts: "Aug." becomes "Aug" and "Sept" becomes "Sep".
func canonicalMonths(s string) string {
	s = monthDotPattern.ReplaceAllString(s, "$1")
	return septPattern.ReplaceAllString(s, "Sep")
}

func buildDate(year, month, day int, raw string) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, NewError("parse date", fmt.Errorf("invalid date %q", raw))
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, NewError("parse date", fmt.Errorf("invalid day in %q", raw))
	}
	return t, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
