package filter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_filter_rejections_total",
			Help: "Markets rejected by the filter, by reason",
		},
		[]string{"reason"},
	)

	MarketsPassedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_filter_markets_passed_total",
		Help: "Markets that passed every filter threshold",
	})
)
