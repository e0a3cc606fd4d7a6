package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for analysis runs
const (
	OutcomeSuccess        = "success"
	OutcomeNoActiveStores = "no_active_stores"
	OutcomeError          = "error"
)

// Collector owns a private registry with the analyzer's metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	analysisRuns     *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	recommendations  *prometheus.CounterVec
	activeStores     prometheus.Gauge
	subrequests      *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
}

// NewCollector creates a collector and registers its metrics
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		analysisRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluanalyzer_analysis_runs_total",
				Help: "Analysis runs by outcome",
			},
			[]string{"outcome"},
		),
		analysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pluanalyzer_analysis_duration_seconds",
				Help:    "Time taken to run the reconciliation engine",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluanalyzer_recommendations_total",
				Help: "Recommendations emitted in the main result set",
			},
			[]string{"recommendation"},
		),
		activeStores: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pluanalyzer_active_stores",
				Help: "Active stores in the most recent run",
			},
		),
		subrequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluanalyzer_commercetools_subrequests_total",
				Help: "HTTP calls made to the storefront API by module",
			},
			[]string{"module"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pluanalyzer_commercetools_fetch_duration_seconds",
				Help:    "Time taken by a complete storefront fetch",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
	}

	c.registry.MustRegister(
		c.analysisRuns,
		c.analysisDuration,
		c.recommendations,
		c.activeStores,
		c.subrequests,
		c.fetchDuration,
	)

	return c
}

// ObserveAnalysis records one engine run
func (c *Collector) ObserveAnalysis(outcome string, duration time.Duration, activeStores int, counts map[string]int) {
	if c == nil {
		return
	}
	c.analysisRuns.WithLabelValues(outcome).Inc()
	c.analysisDuration.Observe(duration.Seconds())
	c.activeStores.Set(float64(activeStores))
	for rec, n := range counts {
		c.recommendations.WithLabelValues(rec).Add(float64(n))
	}
}

// ObserveSubrequest counts one storefront API call
func (c *Collector) ObserveSubrequest(module string) {
	if c == nil {
		return
	}
	c.subrequests.WithLabelValues(module).Inc()
}

// ObserveFetch records the duration of a complete storefront fetch
func (c *Collector) ObserveFetch(duration time.Duration) {
	if c == nil {
		return
	}
	c.fetchDuration.Observe(duration.Seconds())
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
