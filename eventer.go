package eventer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/siherrmann/eventer/config"
	"github.com/siherrmann/eventer/core/cluster"
	"github.com/siherrmann/eventer/core/extract"
	"github.com/siherrmann/eventer/core/filter"
	"github.com/siherrmann/eventer/core/pipeline"
	"github.com/siherrmann/eventer/core/timebounds"
	"github.com/siherrmann/eventer/database"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/metrics"
	"github.com/siherrmann/eventer/model"
	"github.com/siherrmann/eventer/oracle"
	loadSql "github.com/siherrmann/eventer/sql"
	"golang.org/x/sync/errgroup"
)

// Eventer wires the extraction pipeline to its oracle, metrics and optional storage.
type Eventer struct {
	Config     *config.Config
	DB         *helper.Database              // Optional
	Events     *database.EventsDBHandler     // Optional
	Statistics *database.StatisticsDBHandler // Optional
	Oracle     oracle.Provider               // Optional
	Resolver   *timebounds.Resolver
	Pipeline   *pipeline.Pipeline
	Metrics    *metrics.Metrics

	clock func() time.Time
	log   *slog.Logger
}

// Option configures an Eventer.
type Option func(*Eventer)

// WithProvider replaces the oracle built from the configuration.
func WithProvider(p oracle.Provider) Option {
	return func(e *Eventer) { e.Oracle = p }
}

// WithLogger replaces the pretty stdout logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Eventer) { e.log = l }
}

// WithClock sets the time source used for requests and candidate filtering.
func WithClock(clock func() time.Time) Option {
	return func(e *Eventer) { e.clock = clock }
}

// New creates an Eventer. A nil dbConfig runs without storage.
func New(cfg *config.Config, dbConfig *helper.DatabaseConfiguration, opts ...Option) (*Eventer, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	e := &Eventer{
		Config:  cfg,
		Metrics: metrics.New(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = helper.NewLogger(os.Stdout, helper.ParseLevel(cfg.Log.Level))
	}

	if e.Oracle == nil && cfg.OracleEnabled() {
		provider, err := oracle.New(cfg.Oracle.Provider, cfg.Oracle.APIKey, cfg.Oracle.Model, cfg.Oracle.Endpoint, cfg.Oracle.Timeout, e.log)
		if err != nil {
			return nil, helper.NewError("create oracle", err)
		}
		e.Oracle = oracle.NewLimited(provider, cfg.Oracle.MinInterval)
	}

	e.Resolver = timebounds.NewResolver(
		e.Oracle,
		timebounds.WithClock(e.clock),
		timebounds.WithTimeout(cfg.Oracle.BoundsTimeout),
		timebounds.WithLogger(e.log),
		timebounds.WithMetrics(e.Metrics),
	)

	var proposer cluster.EventProposer
	if e.Oracle != nil {
		proposer = cluster.NewOracleProposer(e.Oracle, e.log)
	}
	clusterer := cluster.NewClusterer(
		proposer,
		cluster.WithTimeout(cfg.Oracle.ClusterTimeout),
		cluster.WithLogger(e.log),
		cluster.WithMetrics(e.Metrics),
	)

	e.Pipeline = pipeline.NewPipeline(clusterer, e.log, e.Metrics)
	e.Pipeline.Extractor = extract.NewExtractor(cfg.Pipeline.ExtraLocations...)
	e.Pipeline.SkipValidation = cfg.Pipeline.SkipValidation

	if dbConfig != nil {
		if err := e.connect(dbConfig); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (e *Eventer) connect(dbConfig *helper.DatabaseConfiguration) error {
	db := helper.NewDatabase("eventer", dbConfig, e.log)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return helper.NewError("initialize database extensions", err)
	}

	events, err := database.NewEventsDBHandler(db, e.Config.Database.EmbeddingDim, e.Config.Database.ForceReload)
	if err != nil {
		return helper.NewError("create events handler", err)
	}

	statistics, err := database.NewStatisticsDBHandler(db, e.Config.Database.ForceReload)
	if err != nil {
		return helper.NewError("create statistics handler", err)
	}

	e.DB = db
	e.Events = events
	e.Statistics = statistics
	e.Pipeline.SetSink(events)
	return nil
}

// Close closes the database connection
func (e *Eventer) Close() error {
	return e.DB.Close()
}

// UseEmbeddings embeds every stored packet with the default sentence model.
func (e *Eventer) UseEmbeddings() error {
	if e.Config.Database.EmbeddingDim != pipeline.EmbeddingDimensions {
		return helper.NewError("use embeddings", fmt.Errorf("embedding dimension %d does not match the default model (%d)", e.Config.Database.EmbeddingDim, pipeline.EmbeddingDimensions))
	}
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}
	e.Pipeline.SetEmbedder(embedder)
	return nil
}

// UseLocator adds locations found by the named entity model.
func (e *Eventer) UseLocator() error {
	locator, err := pipeline.DefaultLocator()
	if err != nil {
		return helper.NewError("create default locator", err)
	}
	e.Pipeline.SetLocator(locator)
	return nil
}

// ResolveBounds derives the time window of a query.
func (e *Eventer) ResolveBounds(ctx context.Context, query string) model.TimeBounds {
	return e.Resolver.Resolve(ctx, query)
}

// NewRequest resolves the bounds of query once for all documents of a request.
func (e *Eventer) NewRequest(ctx context.Context, query string) pipeline.Request {
	return pipeline.NewRequest(query, e.ResolveBounds(ctx, query), e.clock())
}

// SelectCandidates drops excluded domains, scores the rest and keeps those
// that may fall inside bounds, highest score first.
func (e *Eventer) SelectCandidates(candidates []model.Candidate, bounds model.TimeBounds) []model.Candidate {
	scored := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if extract.IsExcludedDomain(c.URL) {
			continue
		}
		c.RelevanceScore = extract.ScoreCandidate(c)
		scored = append(scored, c)
	}
	e.Metrics.Filtered("domains", len(candidates)-len(scored))

	kept := filter.FilterCandidates(scored, bounds, e.clock())
	e.Metrics.Filtered("candidates", len(scored)-len(kept))

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	return kept
}

// ProcessHTML parses a page and runs it through the pipeline.
// disasterType may be empty when unknown.
func (e *Eventer) ProcessHTML(ctx context.Context, req pipeline.Request, html string, pageURL string, disasterType string) (*pipeline.Result, error) {
	doc, err := extract.ParseHTML(html, pageURL)
	if err != nil {
		return nil, helper.NewError("parse html", err)
	}
	doc.Source.DisasterType = disasterType
	doc.Source.Query = req.Query
	return e.ProcessDocument(ctx, req, doc)
}

// ProcessDocument runs one document through the pipeline.
func (e *Eventer) ProcessDocument(ctx context.Context, req pipeline.Request, doc *model.Document) (*pipeline.Result, error) {
	if doc == nil {
		return nil, helper.NewError("process document", fmt.Errorf("document is nil"))
	}
	return e.Pipeline.Process(ctx, req, doc)
}

// ProcessDocuments runs documents concurrently with the configured number of
// workers. Results keep the order of docs. The batch statistics are stored when
// a database is connected. Errors of single documents are joined, never abort the batch.
func (e *Eventer) ProcessDocuments(ctx context.Context, req pipeline.Request, docs []*model.Document) ([]*pipeline.Result, *model.Statistics, error) {
	start := time.Now()
	results := make([]*pipeline.Result, len(docs))
	errs := make([]error, len(docs))

	var mu sync.Mutex
	stats := model.NewStatistics()

	workers := e.Config.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, doc := range docs {
		g.Go(func() error {
			res, err := e.ProcessDocument(ctx, req, doc)
			results[i] = res
			errs[i] = err

			if res != nil {
				batch := batchStatistics(res)
				mu.Lock()
				stats.Merge(batch)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.ProcessingTimeSeconds = time.Since(start).Seconds()

	var joined []error
	for i, err := range errs {
		if err != nil {
			joined = append(joined, helper.NewError(fmt.Sprintf("document %d", i), err))
		}
	}

	if e.Statistics != nil {
		if err := e.Statistics.InsertStatistics(ctx, stats); err != nil {
			joined = append(joined, helper.NewError("insert statistics", err))
		}
	}

	e.log.Info("processed batch",
		slog.Int("documents", len(docs)),
		slog.Int("packets", stats.MessagesConsumed),
		slog.Int("stored", stats.MessagesStored),
		slog.Int("failed", stats.MessagesFailed),
	)

	return results, stats, errors.Join(joined...)
}

// batchStatistics counts the packets of one result. Without a sink every
// packet counts as stored.
func batchStatistics(res *pipeline.Result) *model.Statistics {
	stats := model.NewStatistics()
	for i := range res.Packets {
		p := &res.Packets[i]
		stats.Record(p, !res.FailedPacket(p.PacketID))
	}
	return stats
}
