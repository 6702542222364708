package model

// ExtractedEntities aggregates the raw evidence found in one document.
// UnitDates and UnitLocations map unit ids to what was detected inside that unit.
type ExtractedEntities struct {
	Dates           []string            `json:"dates"`
	Locations       []string            `json:"locations"`
	EventKeywords   []string            `json:"event_keywords"`
	EventNames      []string            `json:"event_names"`
	CasualtyNumbers []int               `json:"casualty_numbers"`
	UnitDates       map[string][]string `json:"unit_dates,omitempty"`
	UnitLocations   map[string][]string `json:"unit_locations,omitempty"`
}

// NewExtractedEntities returns an empty aggregate with initialized maps.
func NewExtractedEntities() *ExtractedEntities {
	return &ExtractedEntities{
		Dates:           []string{},
		Locations:       []string{},
		EventKeywords:   []string{},
		EventNames:      []string{},
		CasualtyNumbers: []int{},
		UnitDates:       map[string][]string{},
		UnitLocations:   map[string][]string{},
	}
}

// Empty reports whether nothing at all was detected.
func (e *ExtractedEntities) Empty() bool {
	return e == nil || (len(e.Dates) == 0 && len(e.Locations) == 0 && len(e.EventKeywords) == 0 && len(e.CasualtyNumbers) == 0)
}
