package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/siherrmann/eventer/core/extract"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
)

const fallbackDescriptionLength = 200

// ColumnRoles maps table columns to the fields they carry. -1 means absent.
type ColumnRoles struct {
	Date      int
	Location  int
	Magnitude int
	Deaths    int
}

var roleKeywords = []struct {
	keywords []string
	set      func(r *ColumnRoles, i int)
}{
	{[]string{"date", "time", "year"}, func(r *ColumnRoles, i int) { r.Date = i }},
	{[]string{"location", "place", "region", "state"}, func(r *ColumnRoles, i int) { r.Location = i }},
	{[]string{"magnitude", "mw", "richter"}, func(r *ColumnRoles, i int) { r.Magnitude = i }},
	{[]string{"death", "casualt", "killed"}, func(r *ColumnRoles, i int) { r.Deaths = i }},
}

// DetectColumnRoles assigns roles by substring match on lowercased headers.
// A later matching column overrides an earlier one.
func DetectColumnRoles(headers []string) ColumnRoles {
	roles := ColumnRoles{Date: -1, Location: -1, Magnitude: -1, Deaths: -1}
	for i, h := range headers {
		h = strings.ToLower(h)
		for _, rk := range roleKeywords {
			for _, k := range rk.keywords {
				if strings.Contains(h, k) {
					rk.set(&roles, i)
					break
				}
			}
		}
	}
	return roles
}

// Usable reports whether rows can yield events at all.
func (r ColumnRoles) Usable() bool {
	return r.Date >= 0 || r.Location >= 0
}

func (r ColumnRoles) maxIndex() int {
	m := r.Date
	for _, i := range []int{r.Location, r.Magnitude, r.Deaths} {
		if i > m {
			m = i
		}
	}
	return m
}

// Fallback derives events unit by unit without the oracle.
func Fallback(in Input) []model.DiscreteEvent {
	entities := in.Entities
	if entities == nil {
		entities = model.NewExtractedEntities()
	}
	defaultType := model.ParseEventType(in.Meta.DisasterType)

	events := []model.DiscreteEvent{}
	for _, u := range in.Units {
		var (
			e  model.DiscreteEvent
			ok bool
		)
		switch u.Kind {
		case model.UnitTableRow:
			e, ok = tableRowEvent(u, defaultType)
		case model.UnitParagraph:
			e, ok = paragraphEvent(u, entities, defaultType)
		}
		if ok {
			events = append(events, e)
		}
	}
	return events
}

func tableRowEvent(u model.ContentUnit, defaultType model.EventType) (model.DiscreteEvent, bool) {
	roles := DetectColumnRoles(u.Headers)
	if !roles.Usable() || len(u.Cells) <= roles.maxIndex() {
		return model.DiscreteEvent{}, false
	}

	date := ""
	if raw, ok := u.Cell(roles.Date); ok {
		date = cellDate(raw)
	}
	location, _ := u.Cell(roles.Location)
	if date == "" && location == "" {
		return model.DiscreteEvent{}, false
	}
	mag, _ := u.Cell(roles.Magnitude)
	deaths := 0
	if raw, ok := u.Cell(roles.Deaths); ok {
		deaths = parseNumber(raw)
	}

	eventType := resolveType(defaultType, u.TableCaption+" "+u.Content())
	description := typeTitle(eventType) + " event"
	if mag != "" {
		description += fmt.Sprintf(" (magnitude %s)", mag)
	}

	locations := []string{}
	if location != "" {
		locations = append(locations, location)
	}
	casualties := model.Casualties{Deaths: deaths}

	return model.DiscreteEvent{
		ID:              "fallback_" + u.ID,
		Type:            eventType,
		Description:     description,
		StartDate:       date,
		PrimaryLocation: location,
		Locations:       locations,
		Casualties:      casualties,
		Severity:        model.ComputeSeverity(casualties.Total(), len(locations)),
		SourceUnitIDs:   []string{u.ID},
		Confidence:      fallbackConfidence(date, location),
		Source:          model.SourceFallbackTable,
		Magnitude:       mag,
	}, true
}

func paragraphEvent(u model.ContentUnit, entities *model.ExtractedEntities, defaultType model.EventType) (model.DiscreteEvent, bool) {
	if len(u.Text) < MinParagraphLength {
		return model.DiscreteEvent{}, false
	}

	rawDates, ok := entities.UnitDates[u.ID]
	if !ok {
		rawDates = extract.ExtractDates(u.Text)
	}
	locations, ok := entities.UnitLocations[u.ID]
	if !ok {
		locations = extract.ExtractLocations(u.Text)
	}

	dates := []string{}
	for _, d := range rawDates {
		if n, err := helper.NormalizeDate(d); err == nil && !containsExact(dates, n) {
			dates = append(dates, n)
		}
	}
	// Chronological, so start and end span the dates the paragraph mentions.
	sort.Strings(dates)
	if len(dates) == 0 && len(locations) == 0 {
		return model.DiscreteEvent{}, false
	}

	e := model.DiscreteEvent{
		ID:            "fallback_" + u.ID,
		Type:          resolveType(defaultType, u.Text),
		Description:   extract.Summarize(u.Text, fallbackDescriptionLength),
		Locations:     append([]string{}, locations...),
		Casualties:    extract.ExtractCasualtyCounts(u.Text),
		SourceUnitIDs: []string{u.ID},
		Source:        model.SourceFallbackParagraph,
	}
	if len(dates) > 0 {
		e.StartDate = dates[0]
	}
	if len(dates) > 1 {
		e.EndDate = dates[len(dates)-1]
	}
	if len(locations) > 0 {
		e.PrimaryLocation = locations[0]
	}
	e.Severity = model.ComputeSeverity(e.Casualties.Total(), len(e.Locations))
	e.Confidence = fallbackConfidence(e.StartDate, e.PrimaryLocation)
	return e, true
}

// cellDate normalizes a table date cell, falling back to the first date found inside it.
// A cell with digits that is no calendar date, such as a bare year, is kept verbatim;
// FilterEvents drops it under a time constraint.
func cellDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if n, err := helper.NormalizeDate(raw); err == nil {
		return n
	}
	for _, d := range extract.ExtractDates(raw) {
		if n, err := helper.NormalizeDate(d); err == nil {
			return n
		}
	}
	if strings.ContainsAny(raw, "0123456789") {
		return raw
	}
	return ""
}

func resolveType(defaultType model.EventType, text string) model.EventType {
	if defaultType != model.EventUnknown {
		return defaultType
	}
	if types := extract.DetectEventTypes(text); len(types) > 0 {
		return types[0]
	}
	return model.EventUnknown
}

// fallbackConfidence never exceeds medium.
func fallbackConfidence(date, location string) model.Level {
	if date != "" && location != "" {
		return model.LevelMedium
	}
	return model.LevelLow
}

func typeTitle(t model.EventType) string {
	s := string(t)
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsExact(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
