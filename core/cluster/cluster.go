package cluster

import (
	"context"
	"log/slog"
	"time"

	"github.com/siherrmann/eventer/metrics"
	"github.com/siherrmann/eventer/model"
)

const DefaultTimeout = 60 * time.Second

// Input is everything the clusterer knows about one document.
type Input struct {
	Units    []model.ContentUnit
	Entities *model.ExtractedEntities
	Bounds   model.TimeBounds
	Meta     model.SourceMetadata
}

// EventProposer asks an external oracle to group content into events.
type EventProposer interface {
	ProposeEvents(ctx context.Context, prompt string) ([]model.DiscreteEvent, error)
}

// Clusterer groups content units into discrete events. The oracle result is used
// when it yields at least one event, otherwise the deterministic fallback runs.
// The two results are never merged.
type Clusterer struct {
	proposer EventProposer
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Clusterer.
type Option func(*Clusterer)

// WithTimeout bounds the oracle call.
func WithTimeout(d time.Duration) Option {
	return func(c *Clusterer) { c.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Clusterer) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Clusterer) { c.metrics = m }
}

// NewClusterer creates a clusterer. A nil proposer means fallback only.
func NewClusterer(proposer EventProposer, opts ...Option) *Clusterer {
	c := &Clusterer{
		proposer: proposer,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Cluster never fails. Units without evidence produce no events.
func (c *Clusterer) Cluster(ctx context.Context, units []model.ContentUnit, entities *model.ExtractedEntities, bounds model.TimeBounds, meta model.SourceMetadata) []model.DiscreteEvent {
	if entities == nil {
		entities = model.NewExtractedEntities()
	}
	in := Input{Units: units, Entities: entities, Bounds: bounds, Meta: meta}

	if events := c.propose(ctx, in); len(events) > 0 {
		c.record(events)
		return events
	}

	c.metrics.Fallback("clustering")
	events := Fallback(in)
	c.logger.Info("clustered with fallback", slog.String("url", meta.URL), slog.Int("events", len(events)))
	c.record(events)
	return events
}

func (c *Clusterer) propose(ctx context.Context, in Input) []model.DiscreteEvent {
	if c.proposer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	proposed, err := c.proposer.ProposeEvents(ctx, BuildPrompt(in))
	c.metrics.OracleCall("clustering", err)
	if err != nil {
		c.logger.Warn("event clustering oracle failed", slog.String("url", in.Meta.URL), slog.String("error", err.Error()))
		return nil
	}

	defaultType := model.ParseEventType(in.Meta.DisasterType)
	events := make([]model.DiscreteEvent, 0, len(proposed))
	for _, e := range proposed {
		if !e.HasEvidence() {
			continue
		}
		if e.Type == model.EventUnknown || e.Type == "" {
			e.Type = defaultType
		}
		if e.Source == "" {
			e.Source = model.SourceOracle
		}
		events = append(events, e)
	}
	c.logger.Info("clustered with oracle", slog.String("url", in.Meta.URL), slog.Int("events", len(events)))
	return events
}

func (c *Clusterer) record(events []model.DiscreteEvent) {
	for _, e := range events {
		c.metrics.Event(string(e.Type), e.Source)
	}
}
