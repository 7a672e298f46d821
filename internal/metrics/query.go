package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query engine Prometheus metrics.
var (
	QueryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autoagora",
			Name:      "query_requests_total",
			Help:      "Total number of search queries",
		},
		[]string{"status"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "autoagora",
			Name:      "query_duration_seconds",
			Help:      "Search query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"facets"},
	)

	StoreOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autoagora",
			Name:      "store_ops_total",
			Help:      "Total listing store operations issued by the engine",
		},
		[]string{"op", "status"},
	)

	StoreOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "autoagora",
			Name:      "store_op_duration_seconds",
			Help:      "Listing store operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"op"},
	)

	QueryResultSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "autoagora",
			Name:      "query_result_size",
			Help:      "Total matches per search query before pagination",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers the engine metrics. Must be called once
// from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryRequestsTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(StoreOpsTotal)
	prometheus.MustRegister(StoreOpDuration)
	prometheus.MustRegister(QueryResultSize)
	queryMetricsRegistered = true
}
