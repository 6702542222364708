package model

import "strings"

// EventType is the disaster family of an event.
type EventType string

const (
	EventFlood      EventType = "flood"
	EventCyclone    EventType = "cyclone"
	EventEarthquake EventType = "earthquake"
	EventLandslide  EventType = "landslide"
	EventDrought    EventType = "drought"
	EventUnknown    EventType = "unknown"
)

// EventTypes lists the known disaster families.
var EventTypes = []EventType{EventFlood, EventCyclone, EventEarthquake, EventLandslide, EventDrought}

// ParseEventType maps free text like "Floods" or "cyclonic storm" to an event type.
func ParseEventType(s string) EventType {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range EventTypes {
		if strings.HasPrefix(s, string(t)) {
			return t
		}
	}
	switch s {
	case "flooding", "inundation", "deluge":
		return EventFlood
	case "hurricane", "typhoon", "storm", "cyclonic storm":
		return EventCyclone
	case "quake", "tremor", "seismic":
		return EventEarthquake
	case "mudslide", "slope failure":
		return EventLandslide
	case "dry spell", "water crisis":
		return EventDrought
	}
	return EventUnknown
}

// Level is used for both severity and confidence.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel maps a string to a level, returning def for anything unknown.
func ParseLevel(s string, def Level) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow
	case LevelMedium:
		return LevelMedium
	case LevelHigh:
		return LevelHigh
	}
	return def
}

// Extraction methods recorded on events and packets.
const (
	SourceOracle            = "llm_clustering"
	SourceFallbackTable     = "fallback_table"
	SourceFallbackParagraph = "fallback_paragraph"
)

// RelativeDatePrefix marks a date phrase that could not be resolved to a calendar date yet.
const RelativeDatePrefix = "RELATIVE:"

// IsRelativeDate reports whether s is a relative date marker.
func IsRelativeDate(s string) bool {
	return strings.HasPrefix(s, RelativeDatePrefix)
}

// Casualties are impact counts of one event.
type Casualties struct {
	Deaths    int `json:"deaths"`
	Injured   int `json:"injured"`
	Displaced int `json:"displaced"`
}

// Total sums all casualty categories.
func (c Casualties) Total() int {
	return c.Deaths + c.Injured + c.Displaced
}

// DiscreteEvent is one dated or located disaster occurrence.
// Dates are YYYY-MM-DD or a RELATIVE: marker, an empty EndDate means ongoing.
type DiscreteEvent struct {
	ID              string     `json:"event_id"`
	Type            EventType  `json:"event_type"`
	Description     string     `json:"description"`
	StartDate       string     `json:"start_date,omitempty"`
	EndDate         string     `json:"end_date,omitempty"`
	PrimaryLocation string     `json:"primary_location,omitempty"`
	Locations       []string   `json:"locations"`
	Casualties      Casualties `json:"casualties"`
	Severity        Level      `json:"severity"`
	SourceUnitIDs   []string   `json:"content_ids"`
	Confidence      Level      `json:"confidence"`
	Source          string     `json:"source"`
	Magnitude       string     `json:"magnitude,omitempty"`
}

// Ongoing reports whether the event has a start but no end.
func (e DiscreteEvent) Ongoing() bool {
	return e.StartDate != "" && e.EndDate == ""
}

// HasEvidence reports whether the event has at least a date or a location.
func (e DiscreteEvent) HasEvidence() bool {
	return e.StartDate != "" || e.PrimaryLocation != "" || len(e.Locations) > 0
}

// ComputeSeverity derives severity from the summed casualties and the number of distinct locations.
func ComputeSeverity(totalCasualties int, numLocations int) Level {
	switch {
	case totalCasualties > 100 || numLocations > 3:
		return LevelHigh
	case totalCasualties > 10 || numLocations > 1:
		return LevelMedium
	default:
		return LevelLow
	}
}
