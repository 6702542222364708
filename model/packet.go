package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/siherrmann/eventer/helper"
)

// Packet constants shared by the assembler and the storage layer.
const (
	PacketType          = "discrete_disaster_event"
	PacketSchemaVersion = "2.1"
	RetentionDays       = 365
	PriorityHigh        = "high"
	PriorityNormal      = "normal"
)

// EventPacket is the external record of one surviving event.
type EventPacket struct {
	PacketID      string           `json:"packet_id"`
	PacketType    string           `json:"packet_type"`
	SchemaVersion string           `json:"schema_version"`
	Timestamp     time.Time        `json:"timestamp"`
	Event         PacketEvent      `json:"event"`
	Temporal      PacketTemporal   `json:"temporal"`
	Spatial       PacketSpatial    `json:"spatial"`
	Impact        PacketImpact     `json:"impact"`
	Source        PacketSource     `json:"source"`
	Meta          PacketMeta       `json:"metadata"`
	Processing    PacketProcessing `json:"processing_instructions"`
}

type PacketEvent struct {
	EventID     string    `json:"event_id"`
	EventType   EventType `json:"event_type"`
	EventName   string    `json:"event_name"`
	Description string    `json:"description"`
	Severity    Level     `json:"severity"`
	Magnitude   string    `json:"magnitude,omitempty"`
}

// PacketTemporal holds the event dates. A nil EndDate means the event is ongoing.
type PacketTemporal struct {
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
	AllDatesMentioned []string `json:"all_dates_mentioned"`
	IsOngoing         bool     `json:"is_ongoing"`
}

type PacketSpatial struct {
	PrimaryLocation   *string  `json:"primary_location"`
	AffectedLocations []string `json:"affected_locations"`
	NumLocations      int      `json:"num_locations"`
}

type PacketImpact struct {
	Deaths        int `json:"deaths"`
	Injured       int `json:"injured"`
	Displaced     int `json:"displaced"`
	TotalAffected int `json:"total_affected"`
}

type PacketSource struct {
	URL                 string    `json:"url"`
	Domain              string    `json:"domain"`
	Title               string    `json:"title"`
	CollectionTimestamp time.Time `json:"collection_timestamp"`
	ContentIDs          []string  `json:"content_ids"`
}

type PacketMeta struct {
	DisasterType     string  `json:"disaster_type"`
	RelevanceScore   float64 `json:"relevance_score"`
	Confidence       Level   `json:"confidence"`
	ExtractionMethod string  `json:"extraction_method"`
}

type PacketProcessing struct {
	Priority                  string `json:"priority"`
	RequiresNLP               bool   `json:"requires_nlp"`
	RequiresGeoCoding         bool   `json:"requires_geo_coding"`
	RequiresTimeNormalization bool   `json:"requires_time_normalization"`
	RetentionDays             int    `json:"retention_days"`
}

// StartDate returns the start date or an empty string.
func (p *EventPacket) StartDate() string {
	if p.Temporal.StartDate == nil {
		return ""
	}
	return *p.Temporal.StartDate
}

// EndDate returns the end date or an empty string.
func (p *EventPacket) EndDate() string {
	if p.Temporal.EndDate == nil {
		return ""
	}
	return *p.Temporal.EndDate
}

// PrimaryLocation returns the primary location or an empty string.
func (p *EventPacket) PrimaryLocation() string {
	if p.Spatial.PrimaryLocation == nil {
		return ""
	}
	return *p.Spatial.PrimaryLocation
}

// Value implements the driver.Valuer interface for JSONB storage
func (p EventPacket) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for JSONB retrieval
func (p *EventPacket) Scan(value interface{}) error {
	if value == nil {
		*p = EventPacket{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}
	return json.Unmarshal(b, p)
}
