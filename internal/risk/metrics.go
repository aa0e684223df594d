package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PositionFraction = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_risk_position_fraction",
		Help:    "Portfolio fraction allocated per sized position",
		Buckets: prometheus.LinearBuckets(0, 0.02, 10),
	})

	SizingRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_risk_sizing_rejections_total",
			Help: "Events rejected during sizing, by reason",
		},
		[]string{"reason"},
	)
)
