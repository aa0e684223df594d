package patterns

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PatternScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autopilot_patterns_score",
			Help:    "Per-detector pattern scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"pattern"},
	)

	TradeSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_patterns_trade_signals_total",
			Help: "Markets whose combined score crossed the trade threshold, by top pattern",
		},
		[]string{"pattern"},
	)
)
