package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vod_egress_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vod_egress_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vod_egress_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Segment delivery metrics
var (
	SegmentCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vod_egress_segment_cache_hits_total",
			Help: "Segment requests served directly from storage",
		},
	)

	SegmentCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vod_egress_segment_cache_misses_total",
			Help: "Segment requests that triggered a transcode job",
		},
	)

	JobsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vod_egress_jobs_dispatched_total",
			Help: "Transcode job submissions by caching policy and outcome",
		},
		[]string{"policy", "outcome"},
	)
)

// Pipe relay metrics
var (
	RelayActiveHandles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vod_egress_relay_active_handles",
			Help: "Live pipe relay handles",
		},
	)

	RelayBytesRouted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vod_egress_relay_bytes_routed_total",
			Help: "Bytes routed from encoder jobs into response streams",
		},
	)
)
