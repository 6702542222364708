package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := New()

	m.OracleCall("time_bounds", nil)
	m.OracleCall("clustering", errors.New("timeout"))
	m.Fallback("clustering")
	m.Event("flood", "fallback_table")
	m.Filtered("events", 3)
	m.Filtered("events", 0)
	m.Packet(true)
	m.Packet(false)
	m.Document("processed", 120*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.oracleCalls.WithLabelValues("time_bounds", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.oracleCalls.WithLabelValues("clustering", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("clustering")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("flood", "fallback_table")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.filtered.WithLabelValues("events")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.packets.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("processed")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OracleCall("x", nil)
		m.Fallback("x")
		m.Event("x", "y")
		m.Filtered("x", 1)
		m.Packet(true)
		m.Document("x", time.Second)
	})
	assert.Nil(t, m.Registry())
}

func TestServerHandler(t *testing.T) {
	m := New()
	m.Fallback("time_bounds")
	s := m.NewServer(":0")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `eventer_fallbacks_total{stage="time_bounds"} 1`)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, "ok", rec.Body.String())
}
