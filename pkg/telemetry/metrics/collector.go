// Package metrics exposes Prometheus metrics for the resolution engine:
// query counts and latency, conflict and override counts, document counts,
// and reload outcomes.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercator-hq/strata/pkg/config"
	"mercator-hq/strata/pkg/engine"
)

// Collector registers and records all Strata metrics.
// It implements engine.Observer so it can be attached directly to the query
// path.
type Collector struct {
	registry *prometheus.Registry

	queriesTotal   *prometheus.CounterVec
	queryDuration  prometheus.Histogram
	conflictsTotal prometheus.Counter
	overridesTotal prometheus.Counter
	documents      prometheus.Gauge
	reloadsTotal   *prometheus.CounterVec
	lastReloadTime prometheus.Gauge
}

// NewCollector creates and registers all metrics with the provided registry.
// If registry is nil, a fresh registry is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "queries_total",
				Help:      "Total number of resolution queries",
			},
			[]string{"outcome"},
		),

		queryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "query_duration_seconds",
				Help:      "Duration of resolution queries in seconds",
				// Queries are in-memory merges; the interesting range is
				// microseconds to low milliseconds.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
		),

		conflictsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "conflicts_total",
				Help:      "Total number of unresolved same-tier conflicts surfaced",
			},
		),

		overridesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "overrides_total",
				Help:      "Total number of cross-tier directive overrides applied",
			},
		),

		documents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "documents",
				Help:      "Number of policy documents in the current snapshot",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reloads_total",
				Help:      "Total number of snapshot reload attempts",
			},
			[]string{"outcome"},
		),

		lastReloadTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_reload_timestamp_seconds",
				Help:      "Unix timestamp of the last successful snapshot reload",
			},
		),
	}

	registry.MustRegister(
		c.queriesTotal,
		c.queryDuration,
		c.conflictsTotal,
		c.overridesTotal,
		c.documents,
		c.reloadsTotal,
		c.lastReloadTime,
	)

	return c
}

// ObserveQuery implements engine.Observer.
func (c *Collector) ObserveQuery(_ context.Context, _ engine.Context, result *engine.CompositionResult, duration time.Duration, err error) {
	if err != nil {
		c.queriesTotal.WithLabelValues("error").Inc()
		return
	}

	outcome := "ok"
	if result.HasConflicts() {
		outcome = "conflict"
	}
	c.queriesTotal.WithLabelValues(outcome).Inc()
	c.queryDuration.Observe(duration.Seconds())
	c.conflictsTotal.Add(float64(len(result.Conflicts)))
	c.overridesTotal.Add(float64(len(result.Overrides)))
}

// RecordReload records a snapshot reload attempt and, on success, the new
// document count.
func (c *Collector) RecordReload(success bool, documentCount int) {
	if success {
		c.reloadsTotal.WithLabelValues("success").Inc()
		c.documents.Set(float64(documentCount))
		c.lastReloadTime.SetToCurrentTime()
		return
	}
	c.reloadsTotal.WithLabelValues("failure").Inc()
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an http.Handler serving the metrics in Prometheus text
// format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
