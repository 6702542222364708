package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/siherrmann/eventer/model"
)

const (
	MaxDates           = 20
	MaxEventNames      = 20
	MaxCasualtyNumbers = 10
	minPlausibleYear   = 2000
	maxPlausibleYear   = 2030
)

const monthPattern = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

var (
	numericDateRegex = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	isoDateRegex     = regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`)
	textualDateRegex = []*regexp.Regexp{
		regexp.MustCompile(`\b` + monthPattern + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthPattern + `\.?,?\s+\d{4}\b`),
	}

	deathRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d[\d,]*)\s+(?:people\s+|persons\s+)?(?:were\s+|have\s+been\s+)?(?:killed|dead|deaths|died|fatalities)`),
		regexp.MustCompile(`(?i)death\s+toll\s+(?:of\s+|at\s+|rose\s+to\s+|rises\s+to\s+)?(\d[\d,]*)`),
	}
	injuredRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d[\d,]*)\s+(?:people\s+|persons\s+)?(?:were\s+|have\s+been\s+)?(?:injured|wounded|hurt)`),
	}
	displacedRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d[\d,]*)\s+(?:people\s+|persons\s+)?(?:were\s+|have\s+been\s+)?(?:missing|displaced|evacuated|affected)`),
	}

	eventNameRegexes = []struct {
		re        *regexp.Regexp
		eventType model.EventType
	}{
		{regexp.MustCompile(`(?:[Cc]yclone|[Hh]urricane|[Tt]yphoon)\s+([A-Z][a-z]+)`), model.EventCyclone},
		{regexp.MustCompile(`(?i)(?:flood|flooding)\s+(?:in|at|near)\s+([\w\s]+?)(?:\.|,|$)`), model.EventFlood},
		{regexp.MustCompile(`(?i)(?:earthquake|quake|tremor)(?:\s+of)?\s+(?:magnitude\s+)?(\d+(?:\.\d+)?)`), model.EventEarthquake},
		{regexp.MustCompile(`(?i)(?:landslide|mudslide)s?\s+(?:in|at|near)\s+([\w\s]+?)(?:\.|,|$)`), model.EventLandslide},
		{regexp.MustCompile(`(?i)(?:drought|water crisis)\s+(?:in|at)\s+([\w\s]+?)(?:\.|,|$)`), model.EventDrought},
	}
)

// Extractor detects dates, locations, casualties and disaster keywords.
// It is immutable after construction and safe for concurrent use.
type Extractor struct {
	locations []locationMatcher
	families  []familyMatcher
	keywords  []keywordMatcher
}

type locationMatcher struct {
	name string
	re   *regexp.Regexp
}

type familyMatcher struct {
	eventType model.EventType
	res       []*regexp.Regexp
}

type keywordMatcher struct {
	keyword string
	re      *regexp.Regexp
}

var defaultExtractor = NewExtractor()

// NewExtractor builds an extractor over the built-in gazetteer plus extraLocations.
func NewExtractor(extraLocations ...string) *Extractor {
	e := &Extractor{}

	seen := map[string]bool{}
	for _, loc := range append(append([]string{}, Locations...), extraLocations...) {
		loc = strings.TrimSpace(loc)
		key := strings.ToLower(loc)
		if loc == "" || seen[key] {
			continue
		}
		seen[key] = true
		e.locations = append(e.locations, locationMatcher{name: loc, re: wordRegex(loc, true)})
	}

	for _, t := range model.EventTypes {
		f := familyMatcher{eventType: t}
		for _, kw := range KeywordFamilies[t] {
			f.res = append(f.res, wordRegex(kw, false))
		}
		e.families = append(e.families, f)
	}

	for _, kw := range DisasterKeywords {
		e.keywords = append(e.keywords, keywordMatcher{keyword: kw, re: wordRegex(kw, false)})
	}

	return e
}

// wordRegex matches phrase case-insensitively starting at a word boundary.
// With exact set the match must also end at a word boundary.
func wordRegex(phrase string, exact bool) *regexp.Regexp {
	parts := strings.Fields(regexp.QuoteMeta(phrase))
	pattern := `(?i)\b` + strings.Join(parts, `\s+`)
	if exact {
		pattern += `\b`
	}
	return regexp.MustCompile(pattern)
}

// ExtractEntities runs all detectors with the default gazetteer.
func ExtractEntities(units []model.ContentUnit) *model.ExtractedEntities {
	return defaultExtractor.ExtractEntities(units)
}

// ExtractDates finds date strings with the default extractor.
func ExtractDates(text string) []string {
	return defaultExtractor.ExtractDates(text)
}

// ExtractLocations finds gazetteer locations with the default extractor.
func ExtractLocations(text string) []string {
	return defaultExtractor.ExtractLocations(text)
}

// DetectEventTypes finds disaster families with the default extractor.
func DetectEventTypes(text string) []model.EventType {
	return defaultExtractor.DetectEventTypes(text)
}

// ExtractEntities aggregates evidence over the full text of all units
// and records dates and locations for every unit separately.
func (e *Extractor) ExtractEntities(units []model.ContentUnit) *model.ExtractedEntities {
	entities := model.NewExtractedEntities()

	texts := make([]string, 0, len(units))
	for _, u := range units {
		content := u.Content()
		texts = append(texts, content)

		if dates := e.ExtractDates(content); len(dates) > 0 {
			entities.UnitDates[u.ID] = dates
		}
		if locations := e.ExtractLocations(content); len(locations) > 0 {
			entities.UnitLocations[u.ID] = locations
		}
	}
	full := strings.Join(texts, "\n")

	entities.Dates = limit(e.ExtractDates(full), MaxDates)
	entities.Locations = e.ExtractLocations(full)
	entities.CasualtyNumbers = limitInts(ExtractCasualties(full), MaxCasualtyNumbers)
	entities.EventNames = limit(ExtractEventNames(full), MaxEventNames)

	for _, t := range e.DetectEventTypes(full) {
		entities.EventKeywords = appendUnique(entities.EventKeywords, string(t))
	}
	for _, k := range e.keywords {
		if k.re.MatchString(full) {
			entities.EventKeywords = appendUnique(entities.EventKeywords, k.keyword)
		}
	}

	return entities
}

type match struct {
	index int
	text  string
}

// ExtractDates returns distinct date strings in order of appearance.
// Numeric dates with a year outside 2000-2030 are dropped.
func (e *Extractor) ExtractDates(text string) []string {
	var matches []match

	for _, loc := range numericDateRegex.FindAllStringSubmatchIndex(text, -1) {
		year := text[loc[6]:loc[7]]
		if plausibleYear(year) {
			matches = append(matches, match{index: loc[0], text: text[loc[0]:loc[1]]})
		}
	}
	for _, loc := range isoDateRegex.FindAllStringSubmatchIndex(text, -1) {
		if plausibleYear(text[loc[2]:loc[3]]) {
			matches = append(matches, match{index: loc[0], text: text[loc[0]:loc[1]]})
		}
	}
	for _, re := range textualDateRegex {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			matches = append(matches, match{index: loc[0], text: text[loc[0]:loc[1]]})
		}
	}

	return orderedDistinct(matches)
}

// ExtractLocations returns the gazetteer names found in text in order of appearance.
func (e *Extractor) ExtractLocations(text string) []string {
	var matches []match
	for _, l := range e.locations {
		if loc := l.re.FindStringIndex(text); loc != nil {
			matches = append(matches, match{index: loc[0], text: l.name})
		}
	}
	return orderedDistinct(matches)
}

// DetectEventTypes returns the disaster families mentioned in text, strongest first.
func (e *Extractor) DetectEventTypes(text string) []model.EventType {
	type hit struct {
		eventType model.EventType
		count     int
		first     int
	}
	var hits []hit
	for _, f := range e.families {
		h := hit{eventType: f.eventType, first: len(text)}
		for _, re := range f.res {
			locs := re.FindAllStringIndex(text, -1)
			h.count += len(locs)
			if len(locs) > 0 && locs[0][0] < h.first {
				h.first = locs[0][0]
			}
		}
		if h.count > 0 {
			hits = append(hits, h)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		return hits[i].first < hits[j].first
	})

	types := make([]model.EventType, 0, len(hits))
	for _, h := range hits {
		types = append(types, h.eventType)
	}
	return types
}

// ExtractCasualties returns every casualty number in order of appearance.
func ExtractCasualties(text string) []int {
	var matches []match
	for _, group := range [][]*regexp.Regexp{deathRegexes, injuredRegexes, displacedRegexes} {
		for _, re := range group {
			for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
				matches = append(matches, match{index: loc[2], text: text[loc[2]:loc[3]]})
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].index < matches[j].index })

	numbers := []int{}
	for _, m := range matches {
		if n, ok := parseCount(m.text); ok {
			numbers = append(numbers, n)
		}
	}
	return numbers
}

// ExtractCasualtyCounts splits casualty mentions into deaths, injured and displaced.
// The first number of each category wins.
func ExtractCasualtyCounts(text string) model.Casualties {
	return model.Casualties{
		Deaths:    firstCount(text, deathRegexes),
		Injured:   firstCount(text, injuredRegexes),
		Displaced: firstCount(text, displacedRegexes),
	}
}

// ExtractEventNames finds named events like "cyclone: Dana" or "earthquake: 6.1".
func ExtractEventNames(text string) []string {
	var matches []match
	for _, p := range eventNameRegexes {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			name := strings.TrimSpace(text[loc[2]:loc[3]])
			if name == "" {
				continue
			}
			matches = append(matches, match{index: loc[0], text: string(p.eventType) + ": " + name})
		}
	}
	return orderedDistinct(matches)
}

func firstCount(text string, res []*regexp.Regexp) int {
	best, bestIndex := 0, -1
	for _, re := range res {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if bestIndex >= 0 && loc[2] > bestIndex {
			continue
		}
		if n, ok := parseCount(text[loc[2]:loc[3]]); ok {
			best, bestIndex = n, loc[2]
		}
	}
	return best
}

func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func plausibleYear(s string) bool {
	year, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	if len(s) == 2 {
		year += 2000
	}
	return year >= minPlausibleYear && year <= maxPlausibleYear
}

func orderedDistinct(matches []match) []string {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].index < matches[j].index })
	out := []string{}
	seen := map[string]bool{}
	for _, m := range matches {
		key := strings.ToLower(m.text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m.text)
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func limit(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func limitInts(list []int, n int) []int {
	if len(list) > n {
		return list[:n]
	}
	return list
}
