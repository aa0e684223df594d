package portfolio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// Position is a single directional holding in a binary market.
// It is owned exclusively by the Ledger once added; lifecycle transitions
// (price update, close) are the only mutations.
type Position struct {
	ID       string
	MarketID string
	TokenID  string
	Question string

	Side       types.Side
	Shares     float64
	EntryPrice float64

	// CurrentPrice is meaningless until PriceKnown is set by the first
	// price refresh after opening.
	CurrentPrice float64
	PriceKnown   bool

	CapitalAllocated float64

	StopLoss   float64
	TakeProfit float64

	Status   types.Status
	OpenedAt time.Time
	ClosedAt time.Time

	// RealizedPnL stays zero until Close, which is its only mutator.
	RealizedPnL float64

	// Confidence of the analysis that opened the position; drives hedging.
	Confidence float64
}

// NewPosition creates an open position. capital_allocated == shares * entry
// by construction.
func NewPosition(market *types.Market, side types.Side, shares, entryPrice, stopLoss, takeProfit, confidence float64, now time.Time) (*Position, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("shares must be positive, got %f", shares)
	}
	if entryPrice <= 0 || entryPrice >= 1 {
		return nil, fmt.Errorf("entry price must be in (0, 1), got %f", entryPrice)
	}
	if !side.Valid() {
		return nil, fmt.Errorf("invalid side %q", side)
	}

	tokenID := ""
	if o, ok := market.OutcomeBySide(side); ok {
		tokenID = o.ID
	}

	return &Position{
		ID:               uuid.New().String(),
		MarketID:         market.ID,
		TokenID:          tokenID,
		Question:         market.Question,
		Side:             side,
		Shares:           shares,
		EntryPrice:       entryPrice,
		CapitalAllocated: shares * entryPrice,
		StopLoss:         stopLoss,
		TakeProfit:       takeProfit,
		Status:           types.StatusOpen,
		OpenedAt:         now,
		Confidence:       confidence,
	}, nil
}

// UpdatePrice records a fresh market price for the held side.
func (p *Position) UpdatePrice(price float64) {
	p.CurrentPrice = price
	p.PriceKnown = true
}

// UnrealizedPnL is zero for closed positions and before the first price refresh.
func (p *Position) UnrealizedPnL() float64 {
	if !p.PriceKnown || p.Status != types.StatusOpen {
		return 0
	}
	return (p.CurrentPrice - p.EntryPrice) * p.Shares
}

// TotalPnL is realized plus unrealized P&L.
func (p *Position) TotalPnL() float64 {
	return p.RealizedPnL + p.UnrealizedPnL()
}

// PnLPercent is total P&L relative to the capital committed at entry.
func (p *Position) PnLPercent() float64 {
	if p.CapitalAllocated == 0 {
		return 0
	}
	return p.TotalPnL() / p.CapitalAllocated * 100
}

// CurrentValue is the mark value of the holding.
func (p *Position) CurrentValue() float64 {
	if !p.PriceKnown {
		return p.CapitalAllocated
	}
	return p.Shares * p.CurrentPrice
}

// CheckStopLoss reports whether the stop level has been reached.
// For YES positions the stop sits below entry; for NO positions above.
func (p *Position) CheckStopLoss() bool {
	if !p.PriceKnown || p.Status != types.StatusOpen {
		return false
	}
	switch p.Side {
	case types.SideYes:
		return p.CurrentPrice <= p.StopLoss
	case types.SideNo:
		return p.CurrentPrice >= p.StopLoss
	default:
		return false
	}
}

// CheckTakeProfit reports whether the profit target has been reached.
func (p *Position) CheckTakeProfit() bool {
	if !p.PriceKnown || p.Status != types.StatusOpen {
		return false
	}
	switch p.Side {
	case types.SideYes:
		return p.CurrentPrice >= p.TakeProfit
	case types.SideNo:
		return p.CurrentPrice <= p.TakeProfit
	default:
		return false
	}
}

// Close settles the position at exitPrice and moves it to the given terminal
// state. It is the sole mutator of RealizedPnL. Returns the realized P&L.
func (p *Position) Close(exitPrice float64, terminal types.Status, now time.Time) (float64, error) {
	if p.Status != types.StatusOpen {
		return 0, fmt.Errorf("position %s already %s", p.ID, p.Status)
	}
	if !terminal.Terminal() {
		return 0, fmt.Errorf("status %q is not terminal", terminal)
	}

	p.CurrentPrice = exitPrice
	p.PriceKnown = true
	p.RealizedPnL = (exitPrice - p.EntryPrice) * p.Shares
	p.Status = terminal
	p.ClosedAt = now

	return p.RealizedPnL, nil
}
