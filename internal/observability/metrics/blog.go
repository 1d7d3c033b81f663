package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_created_total",
			Help: "Total number of posts written to the store",
		},
	)

	VisibilityPollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visibility_poll_attempts",
			Help:    "Number of reads needed before a write became visible",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
		},
	)

	VisibilityPollOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_poll_outcomes_total",
			Help: "Total number of visibility polls by outcome",
		},
		[]string{"outcome"},
	)

	VisibilityPollDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visibility_poll_duration_seconds",
			Help:    "Wall-clock time spent waiting for a write to become visible",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
)
