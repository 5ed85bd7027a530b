package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
	OutcomeUnavailable = "unavailable"
)

// Collector holds the Prometheus collectors of the service
type Collector struct {
	registry *prometheus.Registry

	analysesTotal      *prometheus.CounterVec
	analysisDuration   *prometheus.HistogramVec
	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram
	assetsMirrored     *prometheus.CounterVec
}

// New creates a collector backed by its own registry
func New(namespace string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of post analyses by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	c.analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Post analysis duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"source"},
	)

	c.generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_generations_total",
			Help:      "Total number of content generation requests by outcome",
		},
		[]string{"outcome"},
	)

	c.generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_generation_duration_seconds",
			Help:      "Content generation pipeline duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	c.assetsMirrored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_mirrored_total",
			Help:      "Generated assets copied to object storage by outcome",
		},
		[]string{"kind", "outcome"},
	)

	c.registry.MustRegister(
		c.analysesTotal,
		c.analysisDuration,
		c.generationsTotal,
		c.generationDuration,
		c.assetsMirrored,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ObserveAnalysis records one analysis
func (c *Collector) ObserveAnalysis(source, outcome string, elapsed time.Duration) {
	c.analysesTotal.WithLabelValues(source, outcome).Inc()
	c.analysisDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveGeneration records one content generation request
func (c *Collector) ObserveGeneration(outcome string, elapsed time.Duration) {
	c.generationsTotal.WithLabelValues(outcome).Inc()
	c.generationDuration.Observe(elapsed.Seconds())
}

// ObserveAssetMirror records one asset copy attempt
func (c *Collector) ObserveAssetMirror(kind, outcome string) {
	c.assetsMirrored.WithLabelValues(kind, outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the /metrics HTTP handler
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
