package pipeline

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/eventer/helper"
)

// MinLocationScore drops low confidence named entity hits.
const MinLocationScore = 0.6

// DefaultLocator creates a location finder using a NER model
// Uses distilbert-NER and keeps LOC entities only
func DefaultLocator() (LocationFunc, error) {
	modelPath, err := helper.PrepareModel("KnightsAnalytics/distilbert-NER", "model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "location-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(text string) ([]string, error) {
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}
		if len(result.Entities) == 0 {
			return nil, nil
		}

		hits := make([]entityHit, 0, len(result.Entities[0]))
		for _, e := range result.Entities[0] {
			hits = append(hits, entityHit{label: e.Entity, word: e.Word, score: float64(e.Score)})
		}
		return locationsFromHits(hits), nil
	}, nil
}

type entityHit struct {
	label string
	word  string
	score float64
}

// locationsFromHits keeps distinct LOC words above MinLocationScore in order.
func locationsFromHits(hits []entityHit) []string {
	locations := []string{}
	for _, h := range hits {
		if normalizeEntityType(h.label) != "LOC" || h.score < MinLocationScore {
			continue
		}
		word := strings.TrimSpace(strings.ReplaceAll(h.word, " ##", ""))
		if len(word) < 3 || containsFold(locations, word) {
			continue
		}
		locations = append(locations, word)
	}
	return locations
}

// normalizeEntityType removes B- and I- prefixes from NER labels
func normalizeEntityType(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
