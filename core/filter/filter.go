package filter

import (
	"regexp"
	"strings"
	"time"

	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
)

// MinCandidates is how many original candidates survive when the heuristic drops all of them.
const MinCandidates = 2

// RecencyKeywords mark a candidate as recent when it carries no explicit date.
var RecencyKeywords = []string{"latest", "recent", "today", "breaking", "live", "update"}

var candidateDateRegexes = []*regexp.Regexp{
	regexp.MustCompile(`20\d{2}[/-]\d{2}[/-]\d{2}`),
	regexp.MustCompile(`\d{2}[/-]\d{2}[/-]20\d{2}`),
	regexp.MustCompile(`(?i)(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?[- ]?\d{1,2}(?:st|nd|rd|th)?[,\- ]*20\d{2}`),
}

var separatorRegex = regexp.MustCompile(`[,\-\s]+`)

// FilterCandidates keeps candidates likely to describe events inside bounds.
// Without a constraint the input is returned unchanged. A candidate with an explicit
// date is kept iff one of its dates lies in bounds; a candidate without one is kept
// iff its title or snippet contains a recency keyword. If nothing survives, the first
// MinCandidates originals are returned.
func FilterCandidates(candidates []model.Candidate, bounds model.TimeBounds, now time.Time) []model.Candidate {
	if !bounds.HasConstraint {
		return candidates
	}

	kept := []model.Candidate{}
	for _, c := range candidates {
		dates := CandidateDates(c)
		if len(dates) > 0 {
			for _, d := range dates {
				if bounds.Contains(d) {
					kept = append(kept, c)
					break
				}
			}
			continue
		}
		if hasRecencyKeyword(c) {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		n := MinCandidates
		if len(candidates) < n {
			n = len(candidates)
		}
		return append([]model.Candidate{}, candidates[:n]...)
	}
	return kept
}

// CandidateDates returns the explicit dates found in url, title and snippet.
// Matches that cannot be parsed are ignored.
func CandidateDates(c model.Candidate) []time.Time {
	text := c.URL + " " + c.Title + " " + c.Snippet

	dates := []time.Time{}
	for _, re := range candidateDateRegexes {
		for _, m := range re.FindAllString(text, -1) {
			if t, err := parseCandidateDate(m); err == nil {
				dates = append(dates, t)
			}
		}
	}
	return dates
}

func parseCandidateDate(s string) (time.Time, error) {
	if t, err := helper.ParseDate(s); err == nil {
		return t, nil
	}
	return helper.ParseDate(separatorRegex.ReplaceAllString(s, " "))
}

func hasRecencyKeyword(c model.Candidate) bool {
	text := strings.ToLower(c.Title + " " + c.Snippet)
	for _, kw := range RecencyKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// FilterEvents keeps events whose start date lies in bounds, both ends inclusive.
// Without a constraint the input is returned unchanged. Events without a start date
// or with an unparseable one are dropped. Relative starts count as now.
func FilterEvents(events []model.DiscreteEvent, bounds model.TimeBounds, now time.Time) []model.DiscreteEvent {
	if !bounds.HasConstraint {
		return events
	}

	kept := []model.DiscreteEvent{}
	for _, e := range events {
		start, ok := EventStart(e, now)
		if ok && bounds.Contains(start) {
			kept = append(kept, e)
		}
	}
	return kept
}

// EventStart resolves the start date of e, using now for relative markers.
func EventStart(e model.DiscreteEvent, now time.Time) (time.Time, bool) {
	if e.StartDate == "" {
		return time.Time{}, false
	}
	if model.IsRelativeDate(e.StartDate) {
		return helper.Midnight(now), true
	}
	t, err := helper.ParseDate(e.StartDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
