package timebounds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/metrics"
	"github.com/siherrmann/eventer/model"
	"github.com/siherrmann/eventer/oracle"
)

const (
	// DefaultWindow is the lookback used when no bounds can be resolved.
	DefaultWindow      = 7 * 24 * time.Hour
	DefaultDescription = "past week (default)"
	DefaultTimeout     = 30 * time.Second

	maxTokens = 256
)

// Resolver turns a natural language query into a date window using an oracle.
type Resolver struct {
	provider oracle.Provider
	clock    func() time.Time
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the source of "today".
func WithClock(clock func() time.Time) Option {
	return func(r *Resolver) { r.clock = clock }
}

// WithTimeout bounds each oracle call.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a resolver. A nil provider always yields the default window.
func NewResolver(provider oracle.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		provider: provider,
		clock:    time.Now,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Default returns the past week ending at the calendar date of now, without a constraint.
func Default(now time.Time) model.TimeBounds {
	today := helper.Midnight(now)
	return model.TimeBounds{
		StartDate:     today.Add(-DefaultWindow),
		EndDate:       today,
		HasConstraint: false,
		Description:   DefaultDescription,
	}
}

type reply struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Description   string `json:"temporal_description"`
	HasConstraint *bool  `json:"has_time_constraint"`
}

// Resolve never fails. Any oracle problem returns Default for the current clock.
func (r *Resolver) Resolve(ctx context.Context, query string) model.TimeBounds {
	now := r.clock()
	if r.provider == nil || !r.provider.Available() {
		r.metrics.Fallback("time_bounds")
		return Default(now)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.provider.Generate(ctx, oracle.Request{
		SystemPrompt: "You are a temporal reasoning assistant. Respond with JSON only.",
		UserPrompt:   Prompt(query, now),
		MaxTokens:    maxTokens,
	})
	r.metrics.OracleCall("time_bounds", err)
	if err != nil {
		r.logger.Warn("time bounds oracle failed, using default window", slog.String("query", query), slog.String("error", err.Error()))
		r.metrics.Fallback("time_bounds")
		return Default(now)
	}

	bounds, err := parseReply(resp.Content)
	if err != nil {
		r.logger.Warn("time bounds reply rejected, using default window", slog.String("query", query), slog.String("error", err.Error()))
		r.metrics.Fallback("time_bounds")
		return Default(now)
	}

	r.logger.Debug("resolved time bounds",
		slog.String("query", query),
		slog.String("start", helper.FormatDate(bounds.StartDate)),
		slog.String("end", helper.FormatDate(bounds.EndDate)),
		slog.Bool("constraint", bounds.HasConstraint),
	)
	return bounds
}

func parseReply(content string) (model.TimeBounds, error) {
	var raw reply
	if err := oracle.DecodeJSON(content, &raw); err != nil {
		return model.TimeBounds{}, err
	}

	start, err := helper.ParseDate(raw.StartDate)
	if err != nil {
		return model.TimeBounds{}, helper.NewError("start date", err)
	}
	end, err := helper.ParseDate(raw.EndDate)
	if err != nil {
		return model.TimeBounds{}, helper.NewError("end date", err)
	}
	if start.After(end) {
		start, end = end, start
	}

	bounds := model.TimeBounds{
		StartDate:     start,
		EndDate:       end,
		HasConstraint: raw.HasConstraint == nil || *raw.HasConstraint,
		Description:   strings.TrimSpace(raw.Description),
	}
	if bounds.Description == "" {
		bounds.Description = fmt.Sprintf("%s to %s", helper.FormatDate(start), helper.FormatDate(end))
	}
	return bounds, nil
}

// Prompt builds the time bounds instruction for query relative to today.
func Prompt(query string, today time.Time) string {
	t := helper.Midnight(today)
	day := func(d int) string { return helper.FormatDate(t.AddDate(0, 0, -d)) }
	now := helper.FormatDate(t)

	var b strings.Builder
	fmt.Fprintf(&b, "Today's date is %s.\n\n", now)
	fmt.Fprintf(&b, "Determine the date range the following search query refers to:\n\"%s\"\n\n", query)
	b.WriteString("Examples:\n")
	fmt.Fprintf(&b, "- \"past week\" -> %s to %s\n", day(7), now)
	fmt.Fprintf(&b, "- \"yesterday\" -> %s to %s\n", day(1), day(1))
	fmt.Fprintf(&b, "- \"last month\" -> %s to %s\n", day(30), now)
	fmt.Fprintf(&b, "- \"past 3 days\" -> %s to %s\n", day(3), now)
	fmt.Fprintf(&b, "- \"latest\" or \"recent\" -> %s to %s\n", day(7), now)
	fmt.Fprintf(&b, "- \"2024\" -> 2024-01-01 to 2024-12-31\n")
	fmt.Fprintf(&b, "- no time reference -> %s to %s with has_time_constraint false\n\n", day(30), now)
	b.WriteString("Respond with JSON only in this format:\n")
	b.WriteString(`{"start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD", "temporal_description": "short description", "has_time_constraint": true}`)
	b.WriteString("\n")
	return b.String()
}
