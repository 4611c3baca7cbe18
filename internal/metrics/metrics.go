// Package metrics exposes Prometheus counters for the scanner.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "riskscope"

// Metrics holds the scanner's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	PairsScanned     prometheus.Counter
	ShapeErrors      prometheus.Counter
	Verdicts         *prometheus.CounterVec
	Categories       *prometheus.CounterVec
	Trades           *prometheus.CounterVec
	PositionTriggers *prometheus.CounterVec
	OpenPositions    prometheus.Gauge
	Notifications    *prometheus.CounterVec
	CycleDuration    prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PairsScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "pairs_scanned_total",
			Help:      "Total number of pair snapshots fetched",
		}),
		ShapeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "shape_errors_total",
			Help:      "Total number of snapshots skipped for malformed fields",
		}),
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "verdicts_total",
			Help:      "Pipeline verdicts by deciding gate",
		}, []string{"reason"}),
		Categories: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "categories_total",
			Help:      "Passing pairs by event category",
		}, []string{"category"}),
		Trades: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "position",
			Name:      "trades_total",
			Help:      "Trade executions by side and outcome",
		}, []string{"side", "outcome"}),
		PositionTriggers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "position",
			Name:      "triggers_total",
			Help:      "Stop-loss and take-profit triggers",
		}, []string{"trigger"}),
		OpenPositions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "position",
			Name:      "open",
			Help:      "Currently open positions",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Notification messages by outcome",
		}, []string{"outcome"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one scan over the watch list",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) PairScanned() {
	if m != nil {
		m.PairsScanned.Inc()
	}
}

func (m *Metrics) ShapeError() {
	if m != nil {
		m.ShapeErrors.Inc()
	}
}

func (m *Metrics) Verdict(reason string) {
	if m != nil {
		m.Verdicts.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Category(category string) {
	if m != nil {
		m.Categories.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) Trade(side, outcome string) {
	if m != nil {
		m.Trades.WithLabelValues(side, outcome).Inc()
	}
}

func (m *Metrics) Trigger(trigger string) {
	if m != nil {
		m.PositionTriggers.WithLabelValues(trigger).Inc()
	}
}

func (m *Metrics) SetOpenPositions(n int) {
	if m != nil {
		m.OpenPositions.Set(float64(n))
	}
}

func (m *Metrics) Notification(outcome string) {
	if m != nil {
		m.Notifications.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveCycle(seconds float64) {
	if m != nil {
		m.CycleDuration.Observe(seconds)
	}
}
