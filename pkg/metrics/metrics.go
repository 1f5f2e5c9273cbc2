// Package metrics defines the Prometheus collectors for the ranking service
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rankcore"

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DocsIndexed          prometheus.Gauge
	IndexTerms           prometheus.Gauge
	GraphVertices        prometheus.Gauge
	GraphEdges           prometheus.Gauge
	PageRankIterations   prometheus.Gauge
	PageRankConverged    prometheus.Gauge
	PageRankDelta        prometheus.Gauge
}

// New creates all collectors registered with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the global registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_queries_total",
				Help:      "Total search queries by result type (hit, miss, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_latency_seconds",
				Help:      "Search query latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results_count",
				Help:      "Number of results returned per search query.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of search cache hits.",
			},
		),
		CacheMissesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of search cache misses.",
			},
		),
		DocsIndexed: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "index_documents",
				Help:      "Documents in the positional index.",
			},
		),
		IndexTerms: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "index_terms",
				Help:      "Distinct terms in the positional index.",
			},
		),
		GraphVertices: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pagerank_graph_vertices",
				Help:      "Vertices in the link graph.",
			},
		),
		GraphEdges: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pagerank_graph_edges",
				Help:      "Edges in the link graph, duplicates included.",
			},
		),
		PageRankIterations: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pagerank_iterations",
				Help:      "Power iterations run by the last PageRank computation.",
			},
		),
		PageRankConverged: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pagerank_converged",
				Help:      "1 when the last PageRank computation converged, 0 otherwise.",
			},
		),
		PageRankDelta: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pagerank_final_delta",
				Help:      "L1 rank change of the final PageRank iteration.",
			},
		),
	}
}

// Handler serves the metrics gathered by g in the Prometheus exposition
// format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}
