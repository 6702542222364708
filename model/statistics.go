package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/siherrmann/eventer/helper"
)

// Breakdown counts occurrences per key, stored as JSONB.
type Breakdown map[string]int

// Value implements the driver.Valuer interface for database storage
func (b Breakdown) Value() (driver.Value, error) {
	if b == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(b)
}

// Scan implements the sql.Scanner interface for database retrieval
func (b *Breakdown) Scan(value interface{}) error {
	if value == nil {
		*b = Breakdown{}
		return nil
	}
	raw, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}
	return json.Unmarshal(raw, b)
}

// Statistics summarizes one processing batch.
type Statistics struct {
	ID                    int64     `json:"id"`
	MessagesConsumed      int       `json:"messages_consumed"`
	MessagesStored        int       `json:"messages_stored"`
	MessagesFailed        int       `json:"messages_failed"`
	DisasterTypeBreakdown Breakdown `json:"disaster_type_breakdown"`
	SeverityBreakdown     Breakdown `json:"severity_breakdown"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	CreatedAt             time.Time `json:"created_at"`
}

// NewStatistics returns empty batch statistics.
func NewStatistics() *Statistics {
	return &Statistics{
		DisasterTypeBreakdown: Breakdown{},
		SeverityBreakdown:     Breakdown{},
	}
}

// Record counts one packet. stored is false when the sink rejected it.
func (s *Statistics) Record(p *EventPacket, stored bool) {
	s.MessagesConsumed++
	if !stored {
		s.MessagesFailed++
		return
	}
	s.MessagesStored++
	if s.DisasterTypeBreakdown == nil {
		s.DisasterTypeBreakdown = Breakdown{}
	}
	if s.SeverityBreakdown == nil {
		s.SeverityBreakdown = Breakdown{}
	}
	s.DisasterTypeBreakdown[p.Meta.DisasterType]++
	s.SeverityBreakdown[string(p.Event.Severity)]++
}

// Merge adds the counts of other into s.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	s.MessagesConsumed += other.MessagesConsumed
	s.MessagesStored += other.MessagesStored
	s.MessagesFailed += other.MessagesFailed
	s.ProcessingTimeSeconds += other.ProcessingTimeSeconds
	if s.DisasterTypeBreakdown == nil {
		s.DisasterTypeBreakdown = Breakdown{}
	}
	if s.SeverityBreakdown == nil {
		s.SeverityBreakdown = Breakdown{}
	}
	for k, v := range other.DisasterTypeBreakdown {
		s.DisasterTypeBreakdown[k] += v
	}
	for k, v := range other.SeverityBreakdown {
		s.SeverityBreakdown[k] += v
	}
}
