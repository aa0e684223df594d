package estimator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_estimator_requests_total",
			Help: "Probability estimation requests, by outcome",
		},
		[]string{"outcome"},
	)

	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_estimator_request_duration_seconds",
		Help:    "Probability estimation request latency",
		Buckets: prometheus.DefBuckets,
	})
)
