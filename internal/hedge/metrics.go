package hedge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HedgesPlannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_hedge_planned_total",
		Help: "Hedges planned for low-confidence positions",
	})

	HedgeSizeUSD = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_hedge_size_usd",
		Help:    "Planned hedge sizes in USD",
		Buckets: prometheus.LinearBuckets(0, 10, 6),
	})
)
