package portfolio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EquityUSD tracks current portfolio equity.
	EquityUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autopilot_portfolio_equity_usd",
		Help: "Current portfolio equity in USD",
	})

	// AvailableCapitalUSD tracks capital available for new positions.
	AvailableCapitalUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autopilot_portfolio_available_capital_usd",
		Help: "Capital available for new positions in USD",
	})

	// OpenPositionsCount tracks the number of open positions.
	OpenPositionsCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autopilot_portfolio_open_positions",
		Help: "Number of currently open positions",
	})

	// DrawdownRatio tracks the fractional drawdown from peak equity.
	DrawdownRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autopilot_portfolio_drawdown_ratio",
		Help: "Fractional decline of equity from its peak",
	})

	// PositionsOpenedTotal counts positions added to the ledger.
	PositionsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_portfolio_positions_opened_total",
		Help: "Total number of positions opened",
	})

	// PositionsClosedTotal counts closed positions by terminal status.
	PositionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_portfolio_positions_closed_total",
			Help: "Total number of positions closed",
		},
		[]string{"status"},
	)

	// RealizedPnLUSD tracks realized P&L per closed position.
	RealizedPnLUSD = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_portfolio_realized_pnl_usd",
		Help:    "Realized P&L per closed position in USD",
		Buckets: []float64{-500, -100, -50, -10, 0, 10, 50, 100, 500, 1000},
	})

	// AdmissionRejectionsTotal counts candidate trades rejected by limits.
	AdmissionRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_portfolio_admission_rejections_total",
			Help: "Candidate trades rejected by portfolio admission control",
		},
		[]string{"reason"},
	)
)
