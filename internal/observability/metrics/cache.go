package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "read_cache_requests_total",
			Help: "Total number of read cache lookups by view and result",
		},
		[]string{"view", "result"},
	)

	CacheEntryAgeSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "read_cache_entry_age_seconds",
			Help:    "Age of entries served from the read cache",
			Buckets: []float64{0.01, 0.1, 1, 5, 30, 60, 300, 900, 3600},
		},
		[]string{"view"},
	)

	CacheWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "read_cache_writes_total",
			Help: "Total number of read cache writes by view",
		},
		[]string{"view"},
	)

	CacheFlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "read_cache_flushes_total",
			Help: "Total number of whole-cache flushes",
		},
	)

	CacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "read_cache_errors_total",
			Help: "Total number of read cache errors by operation",
		},
		[]string{"operation"},
	)
)
