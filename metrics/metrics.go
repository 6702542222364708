package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors. All methods are safe on a nil receiver
// so components can be used without metrics.
type Metrics struct {
	registry *prometheus.Registry

	oracleCalls *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	events      *prometheus.CounterVec
	filtered    *prometheus.CounterVec
	packets     *prometheus.CounterVec
	documents   *prometheus.CounterVec
	duration    prometheus.Summary
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.oracleCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventer",
		Name:      "oracle_calls_total",
		Help:      "Oracle calls by use and status",
	}, []string{"use", "status"})
	m.fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventer",
		Name:      "fallbacks_total",
		Help:      "Times a deterministic fallback replaced the oracle",
	}, []string{"stage"})
	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventer",
		Name:      "events_total",
		Help:      "Clustered events by type and extraction method",
	}, []string{"type", "source"})
	m.filtered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventer",
		Name:      "filtered_total",
		Help:      "Candidates and events dropped by the time filters",
	}, []string{"filter"})
	m.packets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventer",
		Name:      "packets_total",
		Help:      "Assembled packets by sink status",
	}, []string{"status"})
	m.documents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventer",
		Name:      "documents_total",
		Help:      "Processed documents by outcome",
	}, []string{"outcome"})
	m.duration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "eventer",
		Name:      "document_duration_seconds",
		Help:      "Time spent processing one document",
	})

	m.registry.MustRegister(m.oracleCalls, m.fallbacks, m.events, m.filtered, m.packets, m.documents, m.duration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) OracleCall(use string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.oracleCalls.WithLabelValues(use, status).Inc()
}

func (m *Metrics) Fallback(stage string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(stage).Inc()
}

func (m *Metrics) Event(eventType, source string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, source).Inc()
}

func (m *Metrics) Filtered(filter string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.filtered.WithLabelValues(filter).Add(float64(n))
}

func (m *Metrics) Packet(stored bool) {
	if m == nil {
		return
	}
	status := "stored"
	if !stored {
		status = "failed"
	}
	m.packets.WithLabelValues(status).Inc()
}

func (m *Metrics) Document(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

// Server exposes /metrics and /healthz.
type Server struct {
	server *http.Server
}

// NewServer creates a metrics server for addr.
func (m *Metrics) NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler              { return s.server.Handler }
func (s *Server) Serve() error                       { return s.server.ListenAndServe() }
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }
