package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recs",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "provider_requests_total",
		Help:      "Total requests to recommendation providers by provider name and result status.",
	}, []string{"provider", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recs",
		Name:      "provider_request_duration_seconds",
		Help:      "Recommendation provider request duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 8, 10, 15},
	}, []string{"provider"})

	ProviderAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "recs",
		Name:      "provider_available",
		Help:      "Whether a provider is available (1) or blocked after repeated failures (0).",
	}, []string{"provider"})

	ProviderMoviesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "provider_movies_total",
		Help:      "Total movie stubs returned by each provider before deduplication.",
	}, []string{"provider"})

	TMDBRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "tmdb_requests_total",
		Help:      "Total TMDB API requests by operation and result status.",
	}, []string{"operation", "status"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "metadata_cache_hits_total",
		Help:      "Total number of movie metadata cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "metadata_cache_misses_total",
		Help:      "Total number of movie metadata cache misses.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ProviderAvailable,
		ProviderMoviesTotal,
		TMDBRequestsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
	)
}
