package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/eventer/core/cluster"
	"github.com/siherrmann/eventer/core/extract"
	"github.com/siherrmann/eventer/core/filter"
	"github.com/siherrmann/eventer/core/packet"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/metrics"
	"github.com/siherrmann/eventer/model"
)

// Pipeline runs the per-document stages in order:
// validation, entity extraction, clustering, event filtering, assembly and storage.
// It holds no per-document state, so one Pipeline may process documents concurrently.
type Pipeline struct {
	Extractor      *extract.Extractor
	Clusterer      *cluster.Clusterer
	Embedder       EmbedFunc    // Optional
	Locator        LocationFunc // Optional
	Sink           Sink         // Optional
	SkipValidation bool
	PacketOptions  []packet.Option

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewPipeline creates a pipeline with the default gazetteer.
func NewPipeline(clusterer *cluster.Clusterer, logger *slog.Logger, m *metrics.Metrics) *Pipeline {
	if clusterer == nil {
		clusterer = cluster.NewClusterer(nil, cluster.WithLogger(logger), cluster.WithMetrics(m))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Extractor: extract.NewExtractor(),
		Clusterer: clusterer,
		logger:    logger,
		metrics:   m,
	}
}

// SetEmbedder sets the function used to embed packet descriptions before storage
func (p *Pipeline) SetEmbedder(embedder EmbedFunc) {
	p.Embedder = embedder
}

// SetLocator sets the named entity location finder
func (p *Pipeline) SetLocator(locator LocationFunc) {
	p.Locator = locator
}

// SetSink sets the packet sink
func (p *Pipeline) SetSink(sink Sink) {
	p.Sink = sink
}

// Process runs one document through the pipeline. Only sink failures are returned,
// joined, after every packet has been attempted.
func (p *Pipeline) Process(ctx context.Context, req Request, doc *model.Document) (*Result, error) {
	start := time.Now()
	res := &Result{
		URL:     doc.Source.URL,
		Events:  []model.DiscreteEvent{},
		Packets: []model.EventPacket{},
	}

	if !p.SkipValidation {
		v := extract.ValidateContent(doc)
		res.Score = v.Score
		if !v.Valid {
			res.Skipped = true
			res.SkipReason = v.Reason
			p.logger.Info("skipping document", slog.String("url", doc.Source.URL), slog.String("reason", v.Reason), slog.Int("score", v.Score))
			p.metrics.Document("skipped", time.Since(start))
			return res, nil
		}
	}

	units := doc.Units()
	entities := p.Extractor.ExtractEntities(units)
	if p.Locator != nil {
		p.addLocations(entities, doc.Text())
	}
	res.Entities = entities

	events := p.Clusterer.Cluster(ctx, units, entities, req.Bounds, doc.Source)
	kept := filter.FilterEvents(events, req.Bounds, req.Now)
	res.Events = kept
	res.Dropped = len(events) - len(kept)
	p.metrics.Filtered("events", res.Dropped)

	opts := append([]packet.Option{packet.WithClock(func() time.Time { return req.Now })}, p.PacketOptions...)
	res.Packets = packet.AssembleAll(kept, doc.Source, opts...)

	var errs []error
	if p.Sink != nil {
		for i := range res.Packets {
			if err := p.store(ctx, &res.Packets[i]); err != nil {
				res.Failed++
				res.FailedIDs = append(res.FailedIDs, res.Packets[i].PacketID)
				errs = append(errs, err)
				p.metrics.Packet(false)
				p.logger.Error("error storing packet", slog.String("packet_id", res.Packets[i].PacketID), slog.String("error", err.Error()))
				continue
			}
			res.Stored++
			p.metrics.Packet(true)
		}
	}

	p.logger.Info("processed document",
		slog.String("url", doc.Source.URL),
		slog.Int("paragraphs", doc.Source.Metadata.Int("paragraph_count")),
		slog.Int("tables", doc.Source.Metadata.Int("table_count")),
		slog.Int("events", len(events)),
		slog.Int("dropped", res.Dropped),
		slog.Int("packets", len(res.Packets)),
		slog.Int("stored", res.Stored),
	)
	p.metrics.Document("processed", time.Since(start))
	return res, errors.Join(errs...)
}

func (p *Pipeline) addLocations(entities *model.ExtractedEntities, text string) {
	locations, err := p.Locator(text)
	if err != nil {
		p.logger.Warn("error finding locations", slog.String("error", err.Error()))
		return
	}
	for _, l := range locations {
		if l == "" || containsFold(entities.Locations, l) {
			continue
		}
		entities.Locations = append(entities.Locations, l)
	}
}

func (p *Pipeline) store(ctx context.Context, pk *model.EventPacket) error {
	if vs, ok := p.Sink.(VectorSink); ok && p.Embedder != nil {
		embedding, err := p.Embedder(EmbeddingText(pk))
		if err == nil {
			return helper.NewError("store packet", vs.StorePacketWithEmbedding(ctx, pk, embedding))
		}
		p.logger.Warn("error embedding packet, storing without embedding", slog.String("packet_id", pk.PacketID), slog.String("error", err.Error()))
	}
	return helper.NewError("store packet", p.Sink.StorePacket(ctx, pk))
}

// EmbeddingText is the text embedded for similarity search of a packet.
func EmbeddingText(pk *model.EventPacket) string {
	parts := []string{string(pk.Event.EventType), pk.Event.Description}
	if loc := pk.PrimaryLocation(); loc != "" {
		parts = append(parts, loc)
	}
	if start := pk.StartDate(); start != "" {
		parts = append(parts, start)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
