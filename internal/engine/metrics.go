package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts completed trading cycles.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_engine_cycles_total",
		Help: "Total trading cycles completed",
	})

	// CycleDurationSeconds tracks how long each cycle takes.
	CycleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_engine_cycle_duration_seconds",
		Help:    "Trading cycle duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// PositionEntriesTotal counts positions opened, by side.
	PositionEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_engine_position_entries_total",
		Help: "Positions opened by the engine, by side",
	}, []string{"side"})

	// PositionExitsTotal counts positions closed, by exit reason.
	PositionExitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_engine_position_exits_total",
		Help: "Positions closed by the engine, by reason",
	}, []string{"reason"})

	// HedgesPlacedTotal counts successfully placed hedge legs.
	HedgesPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_engine_hedges_placed_total",
		Help: "Hedge orders successfully placed",
	})
)
