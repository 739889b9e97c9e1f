package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and assistant Prometheus metrics.
var (
	TranslationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lpsearch",
			Name:      "translations_total",
			Help:      "Total number of translated search specs",
		},
		[]string{"kind"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lpsearch",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"status"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lpsearch",
			Name:      "search_cache_total",
			Help:      "Search cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	AssistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lpsearch",
			Name:      "assistant_requests_total",
			Help:      "Total number of assistant completion requests",
		},
		[]string{"model", "status"},
	)

	AssistantStreamChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lpsearch",
			Name:      "assistant_stream_chunks_total",
			Help:      "Total number of streamed assistant deltas",
		},
		[]string{"model"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and assistant metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(TranslationsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(AssistantRequestsTotal)
	prometheus.MustRegister(AssistantStreamChunksTotal)
	searchMetricsRegistered = true
}
