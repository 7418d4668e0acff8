package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics of the indicator engine
type PrometheusMetrics struct {
	// Index metrics
	IndexBuildsTotal   prometheus.Counter
	IndexBuildFailures prometheus.Counter
	IndexBuildSeconds  prometheus.Histogram
	IndexedBranches    prometheus.Gauge
	IndexedMethods     prometheus.Gauge

	// Valuation metrics
	ValuationsTotal *prometheus.CounterVec
	ExcludedTotal   *prometheus.CounterVec
	ValueHistogram  *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the metrics on reg. A nil reg uses the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		IndexBuildsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "covindicator_index_builds_total",
			Help: "Total number of static size index builds",
		}),
		IndexBuildFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "covindicator_index_build_failures_total",
			Help: "Total number of failed static size index builds",
		}),
		IndexBuildSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "covindicator_index_build_seconds",
			Help:    "Static size index build duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		IndexedBranches: factory.NewGauge(prometheus.GaugeOpts{
			Name: "covindicator_indexed_branches",
			Help: "Number of branches in the static size index",
		}),
		IndexedMethods: factory.NewGauge(prometheus.GaugeOpts{
			Name: "covindicator_indexed_methods",
			Help: "Number of methods in the static size index",
		}),

		ValuationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "covindicator_valuations_total",
			Help: "Total number of indicator valuations",
		}, []string{"indicator", "status"}),
		ExcludedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "covindicator_excluded_ids_total",
			Help: "Covered ids skipped because the static index does not know them",
		}, []string{"indicator"}),
		ValueHistogram: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "covindicator_value",
			Help:    "Distribution of computed indicator values",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"indicator"}),

		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "covindicator_cache_hits_total",
			Help: "Total number of indicator cache hits",
		}, []string{"indicator", "level"}),
		CacheMissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "covindicator_cache_misses_total",
			Help: "Total number of indicator cache misses",
		}, []string{"indicator", "level"}),
	}
}

// RecordIndexBuild records a successful index build
func (m *PrometheusMetrics) RecordIndexBuild(branches, methods int, duration time.Duration) {
	m.IndexBuildsTotal.Inc()
	m.IndexBuildSeconds.Observe(duration.Seconds())
	m.IndexedBranches.Set(float64(branches))
	m.IndexedMethods.Set(float64(methods))
}

// RecordIndexBuildFailure records a failed index build
func (m *PrometheusMetrics) RecordIndexBuildFailure() {
	m.IndexBuildFailures.Inc()
}

// RecordValuation records a computed value
func (m *PrometheusMetrics) RecordValuation(indicator string, value float64, excluded int) {
	m.ValuationsTotal.WithLabelValues(indicator, "ok").Inc()
	m.ValueHistogram.WithLabelValues(indicator).Observe(value)
	if excluded > 0 {
		m.ExcludedTotal.WithLabelValues(indicator).Add(float64(excluded))
	}
}

// RecordValuationError records a failed valuation
func (m *PrometheusMetrics) RecordValuationError(indicator string) {
	m.ValuationsTotal.WithLabelValues(indicator, "error").Inc()
}

// RecordCacheHit records a cache hit at the given level ("chromosome" or "shared")
func (m *PrometheusMetrics) RecordCacheHit(indicator, level string) {
	m.CacheHitsTotal.WithLabelValues(indicator, level).Inc()
}

// RecordCacheMiss records a cache miss
func (m *PrometheusMetrics) RecordCacheMiss(indicator, level string) {
	m.CacheMissesTotal.WithLabelValues(indicator, level).Inc()
}
