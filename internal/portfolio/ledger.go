package portfolio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
	"go.uber.org/zap"
)

// ErrPositionNotFound is returned when closing a position that is not open.
var ErrPositionNotFound = errors.New("no matching open position")

// Limits is the admission-control configuration for the ledger.
type Limits struct {
	MaxConcurrentPositions int
	MaxDailyLoss           float64 // fraction of initial capital
	KillSwitchDrawdown     float64 // fraction, e.g. 0.20
}

// Ledger tracks capital and positions across the portfolio's lifetime.
//
// Capital bookkeeping: opening a position earmarks capital (it leaves
// "available" but stays inside currentCapital); currentCapital itself only
// changes on close, by capitalAllocated + realizedPnL.
type Ledger struct {
	mu sync.Mutex

	initialCapital float64
	currentCapital float64
	positions      []*Position          // insertion order = chronological
	dailyPnL       map[string]float64   // ISO date -> realized+unrealized P&L
	limits         Limits
	logger         *zap.Logger
	now            func() time.Time
}

// NewLedger creates a ledger with all capital uncommitted.
func NewLedger(initialCapital float64, limits Limits, logger *zap.Logger) *Ledger {
	return &Ledger{
		initialCapital: initialCapital,
		currentCapital: initialCapital,
		dailyPnL:       make(map[string]float64),
		limits:         limits,
		logger:         logger,
		now:            time.Now,
	}
}

// InitialCapital returns the starting capital.
func (l *Ledger) InitialCapital() float64 {
	return l.initialCapital
}

// Limits returns the admission limits the ledger enforces.
func (l *Ledger) Limits() Limits {
	return l.limits
}

// CurrentCapital returns cash not yet settled out of the portfolio.
func (l *Ledger) CurrentCapital() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentCapital
}

// OpenPositions returns the open positions in chronological order.
func (l *Ledger) OpenPositions() []*Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openLocked()
}

func (l *Ledger) openLocked() []*Position {
	open := make([]*Position, 0, len(l.positions))
	for _, p := range l.positions {
		if p.Status == types.StatusOpen {
			open = append(open, p)
		}
	}
	return open
}

// ClosedPositions returns positions in a terminal state.
func (l *Ledger) ClosedPositions() []*Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	closed := make([]*Position, 0, len(l.positions))
	for _, p := range l.positions {
		if p.Status != types.StatusOpen {
			closed = append(closed, p)
		}
	}
	return closed
}

// HasOpenPosition reports whether an open position exists for the market.
func (l *Ledger) HasOpenPosition(marketID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.positions {
		if p.Status == types.StatusOpen && p.MarketID == marketID {
			return true
		}
	}
	return false
}

// TotalAllocated is the capital earmarked by open positions.
func (l *Ledger) TotalAllocated() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalAllocatedLocked()
}

func (l *Ledger) totalAllocatedLocked() float64 {
	var total float64
	for _, p := range l.openLocked() {
		total += p.CapitalAllocated
	}
	return total
}

// AvailableCapital is cash minus capital earmarked by open positions.
func (l *Ledger) AvailableCapital() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentCapital - l.totalAllocatedLocked()
}

func (l *Ledger) unrealizedLocked() float64 {
	var total float64
	for _, p := range l.openLocked() {
		total += p.UnrealizedPnL()
	}
	return total
}

// Equity is currentCapital plus unrealized P&L of open positions.
func (l *Ledger) Equity() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentCapital + l.unrealizedLocked()
}

// TotalPnL is realized plus unrealized P&L across all positions.
func (l *Ledger) TotalPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalPnLLocked()
}

func (l *Ledger) totalPnLLocked() float64 {
	var total float64
	for _, p := range l.positions {
		total += p.RealizedPnL + p.UnrealizedPnL()
	}
	return total
}

// Drawdown is the fractional decline of equity from its peak, where the peak
// is at least the initial capital.
func (l *Ledger) Drawdown() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	equity := l.currentCapital + l.unrealizedLocked()
	peak := l.initialCapital
	if equity > peak {
		peak = equity
	}
	if peak == 0 {
		return 0
	}
	return (peak - equity) / peak
}

// TodayPnL returns the P&L snapshot recorded for the current date.
func (l *Ledger) TodayPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dailyPnL[l.now().Format("2006-01-02")]
}

func (l *Ledger) updateDailyPnLLocked() {
	l.dailyPnL[l.now().Format("2006-01-02")] = l.totalPnLLocked()
}

// CanOpenPosition applies admission control for a prospective allocation.
// Available capital is re-checked on every call, never assumed.
func (l *Ledger) CanOpenPosition(capitalRequired float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	available := l.currentCapital - l.totalAllocatedLocked()
	if capitalRequired > available {
		l.logger.Debug("position-rejected-insufficient-capital",
			zap.Float64("required", capitalRequired),
			zap.Float64("available", available))
		AdmissionRejectionsTotal.WithLabelValues("insufficient_capital").Inc()
		return false
	}

	open := l.openLocked()
	if len(open) >= l.limits.MaxConcurrentPositions {
		l.logger.Debug("position-rejected-max-concurrent",
			zap.Int("open", len(open)),
			zap.Int("max", l.limits.MaxConcurrentPositions))
		AdmissionRejectionsTotal.WithLabelValues("max_concurrent").Inc()
		return false
	}

	todayPnL := l.dailyPnL[l.now().Format("2006-01-02")]
	maxLoss := l.limits.MaxDailyLoss * l.initialCapital
	if todayPnL < -maxLoss {
		l.logger.Warn("position-rejected-daily-loss-limit",
			zap.Float64("today-pnl", todayPnL),
			zap.Float64("max-loss", maxLoss))
		AdmissionRejectionsTotal.WithLabelValues("daily_loss").Inc()
		return false
	}

	equity := l.currentCapital + l.unrealizedLocked()
	peak := l.initialCapital
	if equity > peak {
		peak = equity
	}
	if peak > 0 && (peak-equity)/peak >= l.limits.KillSwitchDrawdown {
		l.logger.Warn("position-rejected-kill-switch",
			zap.Float64("drawdown", (peak-equity)/peak),
			zap.Float64("kill-switch", l.limits.KillSwitchDrawdown))
		AdmissionRejectionsTotal.WithLabelValues("kill_switch").Inc()
		return false
	}

	return true
}

// AddPosition appends a position. Callers must only invoke this after the
// corresponding order placement succeeded.
func (l *Ledger) AddPosition(p *Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.positions = append(l.positions, p)
	PositionsOpenedTotal.Inc()
	OpenPositionsCount.Set(float64(len(l.openLocked())))
	l.logger.Info("position-added",
		zap.String("position-id", p.ID),
		zap.String("market-id", p.MarketID),
		zap.String("side", string(p.Side)),
		zap.Float64("shares", p.Shares),
		zap.Float64("entry-price", p.EntryPrice),
		zap.Float64("capital", p.CapitalAllocated))
}

// ClosePosition settles the open position with the given ID at exitPrice and
// credits currentCapital with capitalAllocated + realizedPnL.
func (l *Ledger) ClosePosition(id string, exitPrice float64, terminal types.Status) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.positions {
		if p.ID != id || p.Status != types.StatusOpen {
			continue
		}

		pnl, err := p.Close(exitPrice, terminal, l.now())
		if err != nil {
			return 0, fmt.Errorf("close position %s: %w", id, err)
		}

		l.currentCapital += p.CapitalAllocated + pnl
		l.updateDailyPnLLocked()

		PositionsClosedTotal.WithLabelValues(string(terminal)).Inc()
		RealizedPnLUSD.Observe(pnl)
		OpenPositionsCount.Set(float64(len(l.openLocked())))
		EquityUSD.Set(l.currentCapital + l.unrealizedLocked())
		AvailableCapitalUSD.Set(l.currentCapital - l.totalAllocatedLocked())

		l.logger.Info("position-closed",
			zap.String("position-id", p.ID),
			zap.String("market-id", p.MarketID),
			zap.String("status", string(terminal)),
			zap.Float64("exit-price", exitPrice),
			zap.Float64("realized-pnl", pnl))

		return pnl, nil
	}

	return 0, ErrPositionNotFound
}

// UpdatePrices refreshes current prices for open positions from a
// marketID -> side-price map, then records the daily P&L snapshot.
func (l *Ledger) UpdatePrices(prices map[string]float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.openLocked() {
		if price, ok := prices[p.MarketID]; ok {
			p.UpdatePrice(price)
		}
	}
	l.updateDailyPnLLocked()

	equity := l.currentCapital + l.unrealizedLocked()
	peak := l.initialCapital
	if equity > peak {
		peak = equity
	}
	EquityUSD.Set(equity)
	AvailableCapitalUSD.Set(l.currentCapital - l.totalAllocatedLocked())
	if peak > 0 {
		DrawdownRatio.Set((peak - equity) / peak)
	}
}

// Snapshot is a point-in-time view of the portfolio for reporting.
type Snapshot struct {
	InitialCapital   float64     `json:"initial_capital"`
	CurrentCapital   float64     `json:"current_capital"`
	Equity           float64     `json:"equity"`
	AvailableCapital float64     `json:"available_capital"`
	TotalAllocated   float64     `json:"total_allocated"`
	TotalPnL         float64     `json:"total_pnl"`
	TodayPnL         float64     `json:"today_pnl"`
	Drawdown         float64     `json:"drawdown"`
	OpenPositions    []*Position `json:"open_positions"`
	ClosedPositions  int         `json:"closed_positions"`
}

// Snapshot returns a consistent view of the portfolio.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	equity := l.currentCapital + l.unrealizedLocked()
	peak := l.initialCapital
	if equity > peak {
		peak = equity
	}
	drawdown := 0.0
	if peak > 0 {
		drawdown = (peak - equity) / peak
	}

	open := l.openLocked()
	return Snapshot{
		InitialCapital:   l.initialCapital,
		CurrentCapital:   l.currentCapital,
		Equity:           equity,
		AvailableCapital: l.currentCapital - l.totalAllocatedLocked(),
		TotalAllocated:   l.totalAllocatedLocked(),
		TotalPnL:         l.totalPnLLocked(),
		TodayPnL:         l.dailyPnL[l.now().Format("2006-01-02")],
		Drawdown:         drawdown,
		OpenPositions:    open,
		ClosedPositions:  len(l.positions) - len(open),
	}
}
