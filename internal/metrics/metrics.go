// Package metrics exposes Prometheus counters for classification, intent
// detection and feature analysis, plus HTTP request latency.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wakti/wakti-nlp/internal/types"
)

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics owns a private registry so tests and multiple servers do not collide.
type Metrics struct {
	registry *prometheus.Registry

	Classifications *prometheus.CounterVec
	ClassifiedRows  *prometheus.CounterVec
	Intents         *prometheus.CounterVec
	Features        *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, including the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wakti_classifications_total",
				Help: "Total number of snippet batches classified, by result kind",
			},
			[]string{"kind"},
		),
		ClassifiedRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wakti_classified_rows_total",
				Help: "Total number of table rows produced, by result kind",
			},
			[]string{"kind"},
		),
		Intents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wakti_intents_detected_total",
				Help: "Total number of detected intents, by type and whether questions were suggested",
			},
			[]string{"intent", "ask"},
		),
		Features: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wakti_features_detected_total",
				Help: "Total number of detected website features, by type",
			},
			[]string{"feature"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wakti_cache_lookups_total",
				Help: "Total number of response cache lookups, by outcome",
			},
			[]string{"outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wakti_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveClassification counts one classified batch and its rows.
func (m *Metrics) ObserveClassification(result types.ClassifyResult) {
	kind := string(result.Kind)
	m.Classifications.WithLabelValues(kind).Inc()

	rows := len(result.Rows)
	if result.Kind == types.ResultKindGeneric {
		rows = len(result.GenericRows)
	}
	m.ClassifiedRows.WithLabelValues(kind).Add(float64(rows))
}

// ObserveIntents counts each detected intent.
func (m *Metrics) ObserveIntents(intents ...types.DetectedIntent) {
	for _, in := range intents {
		m.Intents.WithLabelValues(string(in.Type), strconv.FormatBool(in.ShouldAskQuestions)).Inc()
	}
}

// ObserveAnalysis counts every feature found in req.
func (m *Metrics) ObserveAnalysis(req types.AnalyzedRequest) {
	for _, f := range req.Features {
		m.Features.WithLabelValues(string(f.Type)).Inc()
	}
}

// ObserveCacheLookup records a cache hit, miss or error.
func (m *Metrics) ObserveCacheLookup(outcome string) {
	m.CacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
