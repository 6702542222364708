package pipeline

import (
	"context"
	"time"

	"github.com/siherrmann/eventer/model"
)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// LocationFunc finds place names in text that the gazetteer may not know.
type LocationFunc func(text string) ([]string, error)

// Sink receives every assembled packet.
type Sink interface {
	StorePacket(ctx context.Context, packet *model.EventPacket) error
}

// VectorSink is a Sink that can also store an embedding of the packet description.
type VectorSink interface {
	Sink
	StorePacketWithEmbedding(ctx context.Context, packet *model.EventPacket, embedding []float32) error
}

// Request is the read-only context of one user request.
// It is built once and shared by every document of the request.
type Request struct {
	Query  string
	Bounds model.TimeBounds
	Now    time.Time
}

// NewRequest creates a request. A zero now means time.Now.
func NewRequest(query string, bounds model.TimeBounds, now time.Time) Request {
	if now.IsZero() {
		now = time.Now()
	}
	return Request{Query: query, Bounds: bounds, Now: now}
}

// Result describes what happened to one document.
type Result struct {
	URL        string                   `json:"url"`
	Skipped    bool                     `json:"skipped"`
	SkipReason string                   `json:"skip_reason,omitempty"`
	Score      int                      `json:"validation_score"`
	Entities   *model.ExtractedEntities `json:"entities,omitempty"`
	Events     []model.DiscreteEvent    `json:"events"`
	Dropped    int                      `json:"dropped"`
	Packets    []model.EventPacket      `json:"packets"`
	Stored     int                      `json:"stored"`
	Failed     int                      `json:"failed"`
	FailedIDs  []string                 `json:"failed_ids,omitempty"`
}

// FailedPacket reports whether storing the packet with id failed.
func (r *Result) FailedPacket(id string) bool {
	for _, f := range r.FailedIDs {
		if f == id {
			return true
		}
	}
	return false
}
