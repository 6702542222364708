package eventer

import (
	"context"
	"testing"
	"time"

	"github.com/siherrmann/eventer/config"
	"github.com/siherrmann/eventer/core/pipeline"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEmbedder creates a simple deterministic embedder for testing
func testEmbedder(dimension int) pipeline.EmbedFunc {
	return func(text string) ([]float32, error) {
		embedding := make([]float32, dimension)
		for i := 0; i < dimension; i++ {
			embedding[i] = float32((len(text)+i)%100) / 100.0
		}
		return embedding, nil
	}
}

func initEventer(t *testing.T, opts ...Option) *Eventer {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	opts = append([]Option{WithLogger(quietLogger()), WithClock(func() time.Time { return testNow })}, opts...)
	e, err := New(config.Default(), dbConfig, opts...)
	require.NoError(t, err, "failed to create eventer")
	require.NotNil(t, e)

	t.Cleanup(func() {
		e.Close()
	})

	return e
}

func TestNewWithDatabase(t *testing.T) {
	e := initEventer(t)

	assert.NotNil(t, e.DB, "Expected eventer to have a database instance")
	assert.NotNil(t, e.Events, "Expected eventer to have an events handler")
	assert.NotNil(t, e.Statistics, "Expected eventer to have a statistics handler")
	assert.Equal(t, e.Events, e.Pipeline.Sink, "Expected the events handler to be the pipeline sink")
}

func TestProcessDocumentsStoresPackets(t *testing.T) {
	e := initEventer(t, WithProvider(routingOracle()))
	e.Pipeline.SetEmbedder(testEmbedder(e.Config.Database.EmbeddingDim))
	ctx := context.Background()

	req := e.NewRequest(ctx, "Kerala floods August 2024")
	doc := floodDocument("https://news.example.org/kerala-stored")

	results, stats, err := e.ProcessDocuments(ctx, req, []*model.Document{doc})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Packets, 1)
	assert.Equal(t, 1, stats.MessagesStored)
	assert.NotZero(t, stats.ID, "Expected the batch statistics to be stored")

	packetID := results[0].Packets[0].PacketID

	t.Run("Stored event can be selected", func(t *testing.T) {
		stored, err := e.Events.SelectEvent(ctx, packetID)
		require.NoError(t, err)
		assert.Equal(t, "flood", stored.DisasterType)
		assert.Equal(t, "Kerala", stored.PrimaryLocation)
		assert.Equal(t, 25, stored.Deaths)
		assert.Equal(t, "high", stored.Severity)
	})

	t.Run("Stored event has an embedding", func(t *testing.T) {
		embedding, err := testEmbedder(e.Config.Database.EmbeddingDim)(pipeline.EmbeddingText(&results[0].Packets[0]))
		require.NoError(t, err)

		similar, err := e.Events.SelectSimilarEvents(ctx, embedding, 5, 0.999)
		require.NoError(t, err)
		ids := []string{}
		for _, s := range similar {
			ids = append(ids, s.PacketID)
		}
		assert.Contains(t, ids, packetID)
	})

	t.Run("Latest statistics are the batch", func(t *testing.T) {
		latest, err := e.Statistics.SelectLatestStatistics(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, stats.ID, latest.ID)
		assert.Equal(t, 1, latest.DisasterTypeBreakdown["flood"])
		assert.Equal(t, 1, latest.SeverityBreakdown["high"])
	})
}
