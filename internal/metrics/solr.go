package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine and verification Prometheus metrics.
var (
	SolrRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indexwatch",
			Name:      "solr_requests_total",
			Help:      "Total number of requests sent to the search engine",
		},
		[]string{"method", "status"},
	)

	SolrRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "indexwatch",
			Name:      "solr_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)

	PollOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indexwatch",
			Name:      "poll_outcomes_total",
			Help:      "Terminal states reached by convergence polls",
		},
		[]string{"kind", "state"}, // kind: "indexed" / "playback"
	)

	PollAttempts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "indexwatch",
			Name:      "poll_attempts",
			Help:      "Re-samples taken before a poll reached a terminal state",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15, 20},
		},
		[]string{"kind"},
	)

	LastObservedCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "indexwatch",
			Name:      "last_observed_count",
			Help:      "Last numFound sampled by a poll",
		},
		[]string{"kind"},
	)
)

var solrMetricsRegistered bool

// RegisterSolrMetrics registers search engine and poll metrics. Must be called once from main.
func RegisterSolrMetrics() {
	if solrMetricsRegistered {
		return
	}
	prometheus.MustRegister(SolrRequestsTotal)
	prometheus.MustRegister(SolrRequestDuration)
	prometheus.MustRegister(PollOutcomesTotal)
	prometheus.MustRegister(PollAttempts)
	prometheus.MustRegister(LastObservedCount)
	solrMetricsRegistered = true
}
