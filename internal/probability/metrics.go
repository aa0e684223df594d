package probability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EdgeDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_probability_edge",
		Help:    "Absolute edge between blended probability and market price",
		Buckets: prometheus.LinearBuckets(0, 0.05, 10),
	})

	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_probability_rejections_total",
			Help: "Events rejected at the trade gates, by reason",
		},
		[]string{"reason"},
	)

	AcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_probability_accepted_total",
		Help: "Events that cleared both trade gates",
	})
)
