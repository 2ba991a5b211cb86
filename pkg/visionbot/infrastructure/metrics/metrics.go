// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "visionbot"

var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_hits_total",
			Help:      "Total number of image cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_misses_total",
			Help:      "Total number of image cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_evictions_total",
			Help:      "Total number of images evicted from the cache",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "image_cache_size",
			Help:      "Current number of images in the cache",
		},
	)

	// InferenceRequests counts inference calls by outcome ("success" or "failure"), after all retries.
	InferenceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_requests_total",
			Help:      "Total number of inference requests",
		},
		[]string{"operation", "status"},
	)

	InferenceAttemptFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_attempt_failures_total",
			Help:      "Total number of failed inference attempts, including the ones which were retried",
		},
		[]string{"operation"},
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Time taken by inference requests in seconds, including retries",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120},
		},
		[]string{"operation"},
	)

	ImageFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fetches_total",
			Help:      "Total number of images downloaded from their origin",
		},
		[]string{"status"},
	)
)
