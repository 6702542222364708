package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
	"github.com/siherrmann/eventer/oracle"
)

const proposerMaxTokens = 4096

// OracleProposer asks an oracle provider for events and validates the reply.
type OracleProposer struct {
	provider oracle.Provider
	logger   *slog.Logger
}

// NewOracleProposer returns nil if provider is nil, so the clusterer runs fallback only.
func NewOracleProposer(provider oracle.Provider, logger *slog.Logger) *OracleProposer {
	if provider == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OracleProposer{provider: provider, logger: logger}
}

// ProposeEvents sends the prompt and parses the reply. Malformed events are skipped.
func (p *OracleProposer) ProposeEvents(ctx context.Context, prompt string) ([]model.DiscreteEvent, error) {
	if p == nil || !p.provider.Available() {
		return nil, helper.NewError("propose events", fmt.Errorf("oracle not available"))
	}

	resp, err := p.provider.Generate(ctx, oracle.Request{
		SystemPrompt: "You extract disaster events from web content. Respond with JSON only.",
		UserPrompt:   prompt,
		MaxTokens:    proposerMaxTokens,
	})
	if err != nil {
		return nil, helper.NewError("propose events", err)
	}

	events, skipped, err := ParseEvents(resp.Content)
	if err != nil {
		return nil, helper.NewError("propose events", err)
	}
	if skipped > 0 {
		p.logger.Warn("skipped malformed oracle events", slog.Int("skipped", skipped))
	}
	return events, nil
}

type replyEvent struct {
	ID              string          `json:"event_id"`
	Type            string          `json:"event_type"`
	Description     string          `json:"description"`
	StartDate       *string         `json:"start_date"`
	EndDate         *string         `json:"end_date"`
	Locations       []string        `json:"locations"`
	PrimaryLocation *string         `json:"primary_location"`
	ContentIDs      []string        `json:"content_ids"`
	Casualties      replyCasualties `json:"casualties"`
	Severity        string          `json:"severity"`
	Magnitude       json.RawMessage `json:"magnitude"`
}

type replyCasualties struct {
	Deaths    count `json:"deaths"`
	Injured   count `json:"injured"`
	Displaced count `json:"displaced"`
}

// count accepts numbers, numeric strings like "1,200" and null.
type count int

var digitsRegex = regexp.MustCompile(`\d[\d,]*`)

func (c *count) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	*c = count(parseNumber(s))
	return nil
}

// parseNumber returns the first non-negative integer in s, or 0.
func parseNumber(s string) int {
	m := digitsRegex.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// ParseEvents decodes an oracle reply of the form {"events": [...]}.
// It returns the valid events and the number of skipped entries.
func ParseEvents(content string) ([]model.DiscreteEvent, int, error) {
	var raw struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := oracle.DecodeJSON(content, &raw); err != nil {
		return nil, 0, err
	}

	events := []model.DiscreteEvent{}
	skipped := 0
	for i, msg := range raw.Events {
		var re replyEvent
		if err := json.Unmarshal(msg, &re); err != nil {
			skipped++
			continue
		}
		e, ok := re.toEvent(i)
		if !ok {
			skipped++
			continue
		}
		events = append(events, e)
	}
	return events, skipped, nil
}

func (r replyEvent) toEvent(index int) (model.DiscreteEvent, bool) {
	e := model.DiscreteEvent{
		ID:          strings.TrimSpace(r.ID),
		Type:        model.ParseEventType(r.Type),
		Description: strings.TrimSpace(r.Description),
		StartDate:   normalizeDate(r.StartDate),
		EndDate:     normalizeDate(r.EndDate),
		Casualties: model.Casualties{
			Deaths:    int(r.Casualties.Deaths),
			Injured:   int(r.Casualties.Injured),
			Displaced: int(r.Casualties.Displaced),
		},
		Source:    model.SourceOracle,
		Magnitude: magnitude(r.Magnitude),
	}
	if e.ID == "" {
		e.ID = fmt.Sprintf("event_%d", index+1)
	}

	for _, l := range r.Locations {
		e.Locations = appendDistinct(e.Locations, strings.TrimSpace(l))
	}
	if r.PrimaryLocation != nil {
		e.PrimaryLocation = strings.TrimSpace(*r.PrimaryLocation)
	}
	if e.PrimaryLocation == "" && len(e.Locations) > 0 {
		e.PrimaryLocation = e.Locations[0]
	}
	if e.PrimaryLocation != "" && !contains(e.Locations, e.PrimaryLocation) {
		e.Locations = append([]string{e.PrimaryLocation}, e.Locations...)
	}
	if e.Locations == nil {
		e.Locations = []string{}
	}

	e.SourceUnitIDs = []string{}
	for _, id := range r.ContentIDs {
		e.SourceUnitIDs = appendDistinct(e.SourceUnitIDs, strings.TrimSpace(id))
	}

	// Dates that are neither valid nor relative markers were already dropped.
	// An end before the start is not a range.
	if e.EndDate != "" && !model.IsRelativeDate(e.EndDate) && !model.IsRelativeDate(e.StartDate) && e.StartDate != "" && e.EndDate < e.StartDate {
		e.EndDate = ""
	}

	e.Severity = model.ParseLevel(r.Severity, model.ComputeSeverity(e.Casualties.Total(), len(e.Locations)))
	e.Confidence = model.LevelMedium
	if e.StartDate != "" && e.PrimaryLocation != "" {
		e.Confidence = model.LevelHigh
	}

	if !e.HasEvidence() {
		return model.DiscreteEvent{}, false
	}
	return e, true
}

// normalizeDate keeps relative markers, normalizes calendar dates and drops everything else.
func normalizeDate(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return ""
	}
	if model.IsRelativeDate(v) {
		return v
	}
	if n, err := helper.NormalizeDate(v); err == nil {
		return n
	}
	return ""
}

func magnitude(raw json.RawMessage) string {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "null" {
		return ""
	}
	return s
}

func appendDistinct(list []string, s string) []string {
	if s == "" || contains(list, s) {
		return list
	}
	return append(list, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
