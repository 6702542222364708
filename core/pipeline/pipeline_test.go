package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/siherrmann/eventer/metrics"
	"github.com/siherrmann/eventer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu         sync.Mutex
	packets    []*model.EventPacket
	embeddings [][]float32
	err        error
}

func (s *memorySink) StorePacket(ctx context.Context, p *model.EventPacket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.packets = append(s.packets, p)
	return nil
}

type memoryVectorSink struct {
	memorySink
}

func (s *memoryVectorSink) StorePacketWithEmbedding(ctx context.Context, p *model.EventPacket, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets = append(s.packets, p)
	s.embeddings = append(s.embeddings, embedding)
	return nil
}

var requestNow = time.Date(2024, 8, 20, 12, 0, 0, 0, time.UTC)

func augustRequest() Request {
	return NewRequest("Kerala floods August 2024", model.TimeBounds{
		StartDate:     time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC),
		HasConstraint: true,
		Description:   "August 2024",
	}, requestNow)
}

func floodDocument() *model.Document {
	return &model.Document{
		Source: model.SourceMetadata{URL: "https://news.example.org/kerala-floods", Domain: "news.example.org", Title: "Kerala floods", DisasterType: "flood"},
		Paragraphs: []string{
			"Severe floods struck Kerala on 15 August 2024 after days of heavy monsoon rain, and 25 people were killed across the state as rivers overflowed.",
			"Relief camps were opened in Wayanad on 16 August 2024 where 1,200 people were displaced from their homes by the rising water levels.",
			"Older records show that a flood in Assam on 2 July 2023 had affected several districts in the region during the previous monsoon season.",
			"Authorities said that rescue teams from the national response force continued to work in the worst hit districts with boats and helicopters through the night.",
		},
	}
}

func TestProcess(t *testing.T) {
	sink := &memorySink{}
	p := NewPipeline(nil, nil, metrics.New())
	p.SetSink(sink)

	res, err := p.Process(context.Background(), augustRequest(), floodDocument())
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.GreaterOrEqual(t, res.Score, 5)
	require.NotNil(t, res.Entities)
	assert.Contains(t, res.Entities.Locations, "Kerala")

	require.Len(t, res.Events, 2, "Expected the 2023 event to be filtered out")
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, "fallback_PARAGRAPH_0", res.Events[0].ID)
	assert.Equal(t, "fallback_PARAGRAPH_1", res.Events[1].ID)

	require.Len(t, res.Packets, 2)
	assert.Equal(t, requestNow, res.Packets[0].Timestamp)
	assert.Equal(t, "Kerala", res.Packets[0].PrimaryLocation())
	assert.Equal(t, 1200, res.Packets[1].Impact.Displaced)
	assert.Equal(t, 2, res.Stored)
	assert.Len(t, sink.packets, 2)
}

func TestProcessWithoutConstraint(t *testing.T) {
	req := NewRequest("floods", model.TimeBounds{HasConstraint: false}, requestNow)
	res, err := NewPipeline(nil, nil, nil).Process(context.Background(), req, floodDocument())
	require.NoError(t, err)
	assert.Len(t, res.Events, 3)
	assert.Zero(t, res.Dropped)
	assert.Len(t, res.Packets, 3)
	assert.Zero(t, res.Stored, "Expected nothing stored without a sink")
}

func TestProcessSkipsInvalidDocument(t *testing.T) {
	sink := &memorySink{}
	p := NewPipeline(nil, nil, nil)
	p.SetSink(sink)

	doc := &model.Document{Paragraphs: []string{"Floods in Kerala on 15 August 2024."}}
	res, err := p.Process(context.Background(), augustRequest(), doc)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "content too short", res.SkipReason)
	assert.Empty(t, res.Packets)
	assert.Empty(t, sink.packets)

	p.SkipValidation = true
	res, err = p.Process(context.Background(), augustRequest(), doc)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Empty(t, res.Events, "Expected the short paragraph to yield no fallback event")
}

func TestProcessSinkFailure(t *testing.T) {
	sinkErr := errors.New("connection reset")
	p := NewPipeline(nil, nil, nil)
	p.SetSink(&memorySink{err: sinkErr})

	res, err := p.Process(context.Background(), augustRequest(), floodDocument())
	require.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.FailedIDs, 2)
	assert.True(t, res.FailedPacket(res.Packets[0].PacketID))
	assert.False(t, res.FailedPacket("unknown"))
	assert.Zero(t, res.Stored)
	assert.Len(t, res.Packets, 2, "Expected packets to be returned even if storing failed")
}

func TestProcessEmbeddings(t *testing.T) {
	t.Run("Vector sink receives embeddings", func(t *testing.T) {
		sink := &memoryVectorSink{}
		var texts []string
		p := NewPipeline(nil, nil, nil)
		p.SetSink(sink)
		p.SetEmbedder(func(text string) ([]float32, error) {
			texts = append(texts, text)
			return []float32{1, 2, 3}, nil
		})

		_, err := p.Process(context.Background(), augustRequest(), floodDocument())
		require.NoError(t, err)
		require.Len(t, sink.embeddings, 2)
		assert.Equal(t, []float32{1, 2, 3}, sink.embeddings[0])
		require.Len(t, texts, 2)
		assert.True(t, strings.HasPrefix(texts[0], "flood Severe floods struck Kerala"))
		assert.True(t, strings.HasSuffix(texts[0], "Kerala 2024-08-15"))
	})

	t.Run("Embedding failure stores without embedding", func(t *testing.T) {
		sink := &memoryVectorSink{}
		p := NewPipeline(nil, nil, nil)
		p.SetSink(sink)
		p.SetEmbedder(func(text string) ([]float32, error) { return nil, errors.New("model not loaded") })

		res, err := p.Process(context.Background(), augustRequest(), floodDocument())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Stored)
		assert.Empty(t, sink.embeddings)
		assert.Len(t, sink.packets, 2)
	})
}

func TestProcessLocator(t *testing.T) {
	p := NewPipeline(nil, nil, nil)
	p.SetLocator(func(text string) ([]string, error) {
		return []string{"kerala", "Idukki"}, nil
	})

	res, err := p.Process(context.Background(), augustRequest(), floodDocument())
	require.NoError(t, err)
	assert.Contains(t, res.Entities.Locations, "Idukki")
	count := 0
	for _, l := range res.Entities.Locations {
		if strings.EqualFold(l, "kerala") {
			count++
		}
	}
	assert.Equal(t, 1, count, "Expected case-insensitive duplicates to be ignored")

	p.SetLocator(func(text string) ([]string, error) { return nil, errors.New("ner failed") })
	res, err = p.Process(context.Background(), augustRequest(), floodDocument())
	require.NoError(t, err, "Expected locator failures to be ignored")
	assert.NotEmpty(t, res.Packets)
}

func TestNewRequest(t *testing.T) {
	req := NewRequest("q", model.TimeBounds{}, time.Time{})
	assert.False(t, req.Now.IsZero())
	assert.Equal(t, "q", req.Query)
}

func TestEmbeddingText(t *testing.T) {
	loc, start := "Odisha", "2024-10-25"
	pk := &model.EventPacket{
		Event:    model.PacketEvent{EventType: model.EventCyclone, Description: "Cyclone Dana landfall"},
		Spatial:  model.PacketSpatial{PrimaryLocation: &loc},
		Temporal: model.PacketTemporal{StartDate: &start},
	}
	assert.Equal(t, "cyclone Cyclone Dana landfall Odisha 2024-10-25", EmbeddingText(pk))
	assert.Equal(t, "unknown", EmbeddingText(&model.EventPacket{Event: model.PacketEvent{EventType: model.EventUnknown}}))
}
