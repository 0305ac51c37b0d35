// Package metrics provides Prometheus metrics for the conversation backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	SessionsCreated prometheus.Counter
	SessionsDeleted prometheus.Counter
	ChatTurns       *prometheus.CounterVec
	SaveConflicts   prometheus.Counter
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	RequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheikh_sessions_created_total",
			Help: "Total number of conversation sessions created.",
		}),
		SessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheikh_sessions_deleted_total",
			Help: "Total number of conversation sessions deleted.",
		}),
		ChatTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheikh_chat_turns_total",
			Help: "Total chat turns processed, by outcome.",
		}, []string{"status"}),
		SaveConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheikh_save_conflicts_total",
			Help: "Total optimistic-concurrency conflicts hit while saving sessions.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheikh_session_cache_hits_total",
			Help: "Session cache hits on the read-through path.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sheikh_session_cache_misses_total",
			Help: "Session cache misses on the read-through path.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sheikh_request_duration_seconds",
			Help:    "HTTP request duration by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		registry: reg,
	}

	reg.MustRegister(
		m.SessionsCreated,
		m.SessionsDeleted,
		m.ChatTurns,
		m.SaveConflicts,
		m.CacheHits,
		m.CacheMisses,
		m.RequestDuration,
	)
	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
