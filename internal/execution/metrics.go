package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersPlacedTotal counts successful order placements by mode and intent.
	OrdersPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_execution_orders_placed_total",
		Help: "Total orders placed, by execution mode and intent",
	}, []string{"mode", "intent"})

	// OrderFailuresTotal counts orders that could not be placed.
	OrderFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_execution_order_failures_total",
		Help: "Total order placements that failed",
	})

	// NotionalTradedUSD accumulates traded notional by execution mode.
	NotionalTradedUSD = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_execution_notional_traded_usd",
		Help: "Cumulative USD notional traded, by execution mode",
	}, []string{"mode"})

	// OrderLatencySeconds tracks end-to-end order placement latency.
	OrderLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_execution_order_latency_seconds",
		Help:    "Order placement latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// FillChecksTotal counts fill verification outcomes.
	FillChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_execution_fill_checks_total",
		Help: "Fill verification outcomes",
	}, []string{"outcome"})
)
