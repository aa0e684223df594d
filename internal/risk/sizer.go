// Package risk sizes accepted events into positions using a half-Kelly
// allocation with hard caps, and derives the exit levels each position will
// be monitored against.
package risk

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

const (
	// kellyMultiplier scales the raw Kelly fraction down for safety.
	kellyMultiplier = 0.5
	// minPositionFraction below which a trade is not worth placing.
	minPositionFraction = 0.02
	// minMarketLiquidity gates sizing on tradeable depth.
	minMarketLiquidity = 1000
	// admissionProbeFraction is the rough allocation used to pre-check
	// portfolio limits before the exact size is known.
	admissionProbeFraction = 0.10
)

// Config carries the sizing parameters.
type Config struct {
	MaxPositionSize float64 // cap on the portfolio fraction per position
	StopLossPct     float64 // fractional adverse move that stops out
	TakeProfitPct   float64 // fractional favorable move that takes profit
	Logger          *zap.Logger
}

// Sizer converts events into sized position recommendations.
type Sizer struct {
	cfg Config
	log *zap.Logger
	now func() time.Time
}

// New creates a sizer.
func New(cfg Config) *Sizer {
	return &Sizer{cfg: cfg, log: cfg.Logger, now: time.Now}
}

// Sizing is a fully determined trade recommendation.
type Sizing struct {
	Side             types.Side
	Capital          float64
	Shares           float64
	EntryPrice       float64
	KellyFraction    float64
	PositionFraction float64
	StopLoss         float64
	TakeProfit       float64
}

// Size turns an accepted event into a sizing recommendation, or nil when
// the trade is not worth taking (no edge after costs, illiquid market,
// portfolio limits, or a sub-minimum allocation).
func (s *Sizer) Size(event types.Event, ledger *portfolio.Ledger) *Sizing {
	if event.Market.Liquidity < minMarketLiquidity {
		s.log.Debug("sizing-rejected-illiquid",
			zap.String("market-id", event.Market.ID),
			zap.Float64("liquidity", event.Market.Liquidity))
		SizingRejectionsTotal.WithLabelValues("illiquid").Inc()
		return nil
	}

	equity := ledger.Equity()
	if !ledger.CanOpenPosition(equity * admissionProbeFraction) {
		s.log.Debug("sizing-rejected-portfolio-limits",
			zap.String("market-id", event.Market.ID))
		SizingRejectionsTotal.WithLabelValues("portfolio_limits").Inc()
		return nil
	}

	side := s.determineSide(event)
	entryPrice, ok := event.Market.PriceBySide(side)
	if !ok || entryPrice <= 0 {
		SizingRejectionsTotal.WithLabelValues("no_price").Inc()
		return nil
	}

	kelly := s.kellyFraction(event.Probability, side, entryPrice)
	fraction := s.applyLimits(kelly)
	if fraction == 0 {
		s.log.Debug("sizing-rejected-below-minimum",
			zap.String("market-id", event.Market.ID),
			zap.Float64("kelly", kelly))
		SizingRejectionsTotal.WithLabelValues("below_minimum").Inc()
		return nil
	}

	capital := equity * fraction
	stopLoss, takeProfit := s.ExitLevels(entryPrice, side)

	sizing := &Sizing{
		Side:             side,
		Capital:          capital,
		Shares:           capital / entryPrice,
		EntryPrice:       entryPrice,
		KellyFraction:    kelly,
		PositionFraction: fraction,
		StopLoss:         stopLoss,
		TakeProfit:       takeProfit,
	}

	PositionFraction.Observe(fraction)
	s.log.Info("position-sized",
		zap.String("market-id", event.Market.ID),
		zap.String("side", string(side)),
		zap.Float64("shares", sizing.Shares),
		zap.Float64("entry-price", entryPrice),
		zap.Float64("capital", capital),
		zap.Float64("kelly-fraction", kelly),
		zap.Float64("position-fraction", fraction))

	return sizing
}

// determineSide buys the side our probability says is underpriced.
func (s *Sizer) determineSide(event types.Event) types.Side {
	yesPrice := 0.5
	if p, ok := event.Market.YesPrice(); ok {
		yesPrice = p
	}
	if event.Probability > yesPrice {
		return types.SideYes
	}
	return types.SideNo
}

// kellyFraction computes f = (bp - q) / b with b = (1 - price) / price,
// from the perspective of the side being bought. Negative fractions clamp
// to zero: no bet without an edge.
func (s *Sizer) kellyFraction(probability float64, side types.Side, price float64) float64 {
	p := probability
	if side == types.SideNo {
		p = 1 - probability
	}
	if price <= 0 || price >= 1 {
		return 0
	}

	b := (1 - price) / price
	q := 1 - p
	kelly := (b*p - q) / b
	return math.Max(0, kelly)
}

// applyLimits halves the Kelly fraction, caps it at the configured maximum
// and zeroes allocations too small to bother with.
func (s *Sizer) applyLimits(kelly float64) float64 {
	fraction := kelly * kellyMultiplier
	fraction = math.Min(fraction, s.cfg.MaxPositionSize)
	if fraction < minPositionFraction {
		return 0
	}
	return fraction
}

// ExitLevels derives the stop-loss and take-profit prices for a position.
// For NO positions the adverse direction is upward, so the levels invert.
func (s *Sizer) ExitLevels(entryPrice float64, side types.Side) (stopLoss, takeProfit float64) {
	switch side {
	case types.SideYes:
		stopLoss = entryPrice * (1 - s.cfg.StopLossPct)
		takeProfit = entryPrice * (1 + s.cfg.TakeProfitPct)
	case types.SideNo:
		stopLoss = entryPrice * (1 + s.cfg.StopLossPct)
		takeProfit = entryPrice * (1 - s.cfg.TakeProfitPct)
	}

	clamp := func(v float64) float64 { return math.Max(0.01, math.Min(0.99, v)) }
	return clamp(stopLoss), clamp(takeProfit)
}

// BuildPosition materializes a sizing into a Position for the ledger.
func (s *Sizer) BuildPosition(event types.Event, sizing *Sizing) (*portfolio.Position, error) {
	return portfolio.NewPosition(
		event.Market,
		sizing.Side,
		sizing.Shares,
		sizing.EntryPrice,
		sizing.StopLoss,
		sizing.TakeProfit,
		event.Confidence,
		s.now(),
	)
}
