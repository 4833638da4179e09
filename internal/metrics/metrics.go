// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the metrics interface used by the app and adapter layers.
type Collector interface {
	RecordPackOpened()
	RecordOpenRejected()
	RecordDraw(tier string)
	RecordOpenLatency(d time.Duration)
	RecordAuthSuccess()
	RecordAuthFailure()
	RecordNotifyFailure(sink string)
}

// PromCollector implements Collector on a Prometheus registry.
type PromCollector struct {
	registry      *prometheus.Registry
	packsOpened   prometheus.Counter
	opensRejected prometheus.Counter
	draws         *prometheus.CounterVec
	openLatency   prometheus.Histogram
	authSuccess   prometheus.Counter
	authFailure   prometheus.Counter
	notifyFailure *prometheus.CounterVec
}

func NewPromCollector() *PromCollector {
	c := &PromCollector{
		registry: prometheus.NewRegistry(),
		packsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "packs_opened_total",
			Help: "Total packs successfully opened.",
		}),
		opensRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "packs_open_rejected_total",
			Help: "Open attempts rejected by the daily gate.",
		}),
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "packs_cards_drawn_total",
			Help: "Cards drawn, by rarity tier.",
		}, []string{"tier"}),
		openLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "packs_open_duration_seconds",
			Help:    "Latency of a full pack open.",
			Buckets: prometheus.DefBuckets,
		}),
		authSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "packs_auth_success_total",
			Help: "Successful OAuth logins.",
		}),
		authFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "packs_auth_failure_total",
			Help: "Failed OAuth exchanges.",
		}),
		notifyFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "packs_notify_failure_total",
			Help: "Pack-opened notifications that failed, by sink.",
		}, []string{"sink"}),
	}

	c.registry.MustRegister(
		c.packsOpened,
		c.opensRejected,
		c.draws,
		c.openLatency,
		c.authSuccess,
		c.authFailure,
		c.notifyFailure,
	)
	return c
}

func (c *PromCollector) RecordPackOpened()      { c.packsOpened.Inc() }
func (c *PromCollector) RecordOpenRejected()    { c.opensRejected.Inc() }
func (c *PromCollector) RecordDraw(tier string) { c.draws.WithLabelValues(tier).Inc() }

func (c *PromCollector) RecordOpenLatency(d time.Duration) {
	c.openLatency.Observe(d.Seconds())
}

func (c *PromCollector) RecordAuthSuccess() { c.authSuccess.Inc() }
func (c *PromCollector) RecordAuthFailure() { c.authFailure.Inc() }

func (c *PromCollector) RecordNotifyFailure(sink string) {
	c.notifyFailure.WithLabelValues(sink).Inc()
}

// Handler exposes the registry for a /metrics route.
func (c *PromCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Noop discards all metrics. Used in tests.
type Noop struct{}

func (Noop) RecordPackOpened()               {}
func (Noop) RecordOpenRejected()             {}
func (Noop) RecordDraw(string)               {}
func (Noop) RecordOpenLatency(time.Duration) {}
func (Noop) RecordAuthSuccess()              {}
func (Noop) RecordAuthFailure()              {}
func (Noop) RecordNotifyFailure(string)      {}
