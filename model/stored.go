package model

import (
	"time"
)

// StoredEvent is a row of the disaster_events table.
type StoredEvent struct {
	ID                int64       `json:"id"`
	PacketID          string      `json:"packet_id"`
	PacketType        string      `json:"packet_type"`
	DisasterType      string      `json:"disaster_type"`
	EventType         string      `json:"event_type"`
	EventStartDate    *time.Time  `json:"event_start_date,omitempty"`
	EventEndDate      *time.Time  `json:"event_end_date,omitempty"`
	DurationDays      *int        `json:"duration_days,omitempty"`
	PrimaryLocation   string      `json:"primary_location"`
	AffectedLocations []string    `json:"affected_locations"`
	LocationCount     int         `json:"location_count"`
	Deaths            int         `json:"deaths"`
	Injured           int         `json:"injured"`
	Displaced         int         `json:"displaced"`
	Affected          int         `json:"affected"`
	Severity          string      `json:"severity"`
	SourceURL         string      `json:"source_url"`
	SourceDomain      string      `json:"source_domain"`
	SourceTitle       string      `json:"source_title"`
	RelevanceScore    float64     `json:"relevance_score"`
	Priority          string      `json:"priority"`
	RetentionDays     int         `json:"retention_days"`
	RawPacket         EventPacket `json:"raw_packet"`
	Similarity        float64     `json:"similarity,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// EventQuery filters stored events. Zero fields are ignored.
type EventQuery struct {
	DisasterType string
	Location     string
	From         *time.Time
	To           *time.Time
	Limit        int
}

// EventSummary aggregates all stored events.
type EventSummary struct {
	TotalEvents    int64     `json:"total_events"`
	ByDisasterType Breakdown `json:"by_disaster_type"`
	BySeverity     Breakdown `json:"by_severity"`
	TotalDeaths    int64     `json:"total_deaths"`
	TotalInjured   int64     `json:"total_injured"`
	TotalDisplaced int64     `json:"total_displaced"`
	TotalAffected  int64     `json:"total_affected"`
}
