// Package hedge places partial opposite-side protection on low-confidence
// positions: a fraction of the main allocation buys the other outcome, so a
// wrong call pays back part of the loss at settlement.
package hedge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// minHedgeableSize is the smallest main position worth hedging, in USD.
const minHedgeableSize = 10.0

// Config carries the hedging thresholds.
type Config struct {
	Enabled       bool
	MinConfidence float64 // hedge only below this confidence
	Ratio         float64 // fraction of the main position to hedge
	MaxAmount     float64 // hard USD cap on the hedge
	Logger        *zap.Logger
}

// Manager decides whether and how much to hedge.
type Manager struct {
	cfg Config
	log *zap.Logger
}

// New creates a hedge manager.
func New(cfg Config) *Manager {
	return &Manager{cfg: cfg, log: cfg.Logger}
}

// Plan is a hedge decision for one position.
type Plan struct {
	ShouldHedge bool
	Size        float64 // USD
	Ratio       float64 // effective ratio after the cap
	Reasoning   string
}

// ShouldHedge reports whether a position qualifies for a hedge: low enough
// confidence and large enough to bother.
func (m *Manager) ShouldHedge(confidence, positionSize float64) bool {
	if !m.cfg.Enabled {
		return false
	}
	if confidence >= m.cfg.MinConfidence {
		return false
	}
	if positionSize < minHedgeableSize {
		return false
	}
	return true
}

// Calculate computes the hedge size for a position. When the configured
// ratio would exceed the hard cap, the cap wins and the effective ratio is
// recomputed from it.
func (m *Manager) Calculate(positionSize, confidence float64) Plan {
	if !m.ShouldHedge(confidence, positionSize) {
		return Plan{
			Reasoning: fmt.Sprintf("confidence %.0f%% above the %.0f%% hedge threshold",
				confidence*100, m.cfg.MinConfidence*100),
		}
	}

	ratio := m.cfg.Ratio
	size := positionSize * ratio
	if size > m.cfg.MaxAmount {
		size = m.cfg.MaxAmount
		ratio = size / positionSize
		m.log.Warn("hedge-capped",
			zap.Float64("max-amount", m.cfg.MaxAmount),
			zap.Float64("effective-ratio", ratio),
			zap.Float64("target-ratio", m.cfg.Ratio))
	}

	HedgesPlannedTotal.Inc()
	HedgeSizeUSD.Observe(size)
	m.log.Info("hedge-calculated",
		zap.Float64("position-size", positionSize),
		zap.Float64("confidence", confidence),
		zap.Float64("hedge-size", size),
		zap.Float64("hedge-ratio", ratio))

	return Plan{
		ShouldHedge: true,
		Size:        size,
		Ratio:       ratio,
		Reasoning: fmt.Sprintf("low confidence %.0f%%, hedging %.0f%% of position",
			confidence*100, ratio*100),
	}
}

// Order builds the opposite-side order request for a hedge plan, or nil
// when the plan says not to hedge. Price and shares come from the hedge
// side's current quote.
func (m *Manager) Order(market *types.Market, mainSide types.Side, plan Plan) *types.OrderRequest {
	if !plan.ShouldHedge {
		return nil
	}

	hedgeSide := mainSide.Opposite()
	price, ok := market.PriceBySide(hedgeSide)
	if !ok || price <= 0 {
		m.log.Warn("hedge-skipped-no-price",
			zap.String("market-id", market.ID),
			zap.String("side", string(hedgeSide)))
		return nil
	}
	outcome, _ := market.OutcomeBySide(hedgeSide)

	return &types.OrderRequest{
		MarketID: market.ID,
		TokenID:  outcome.ID,
		Side:     hedgeSide,
		Intent:   types.IntentBuy,
		Shares:   plan.Size / price,
		Price:    price,
		Hedge:    true,
	}
}

// SettledPnL is the winner-take-all settlement breakdown for a hedged
// position, with both legs valued at $1 per winning dollar staked.
type SettledPnL struct {
	MainPayout        float64
	HedgePayout       float64
	TotalCost         float64
	TotalPayout       float64
	NetPnL            float64
	ROI               float64
	ProtectedDownside bool
}

// Settle computes the P&L of a hedged position once the market resolves to
// the given outcome side.
func (m *Manager) Settle(mainStake, hedgeStake float64, outcome, mainSide types.Side) SettledPnL {
	mainWins := outcome == mainSide

	var mainPayout, hedgePayout float64
	if mainWins {
		mainPayout = mainStake
	} else {
		hedgePayout = hedgeStake
	}

	totalCost := mainStake + hedgeStake
	totalPayout := mainPayout + hedgePayout

	roi := 0.0
	if totalCost > 0 {
		roi = (totalPayout - totalCost) / totalCost
	}

	return SettledPnL{
		MainPayout:        mainPayout,
		HedgePayout:       hedgePayout,
		TotalCost:         totalCost,
		TotalPayout:       totalPayout,
		NetPnL:            totalPayout - totalCost,
		ROI:               roi,
		ProtectedDownside: hedgePayout > 0,
	}
}
