package scorer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_scorer_score",
		Help:    "Composite market scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	CandidatesSelectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_scorer_candidates_selected_total",
		Help: "Markets selected for pattern analysis",
	})
)
