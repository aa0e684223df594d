// Package filter implements the first stage of the trading funnel: cheap
// threshold checks that eliminate obviously untradeable markets before any
// scoring or external calls happen.
package filter

import (
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// Reason identifies which threshold a market failed.
type Reason string

const (
	ReasonLiquidity    Reason = "liquidity"
	ReasonVolume       Reason = "volume"
	ReasonTimeToClose  Reason = "time_to_close"
	ReasonPriceExtreme Reason = "price_extreme"
)

// Config carries the filter thresholds.
type Config struct {
	MinLiquidity   float64
	MinVolume      float64
	MinDaysToClose int
	MinPrice       float64
	MaxPrice       float64
	Logger         *zap.Logger
}

// Filter applies the configured thresholds to market snapshots.
type Filter struct {
	cfg Config
	log *zap.Logger
	now func() time.Time
}

// New creates a filter from the given thresholds.
func New(cfg Config) *Filter {
	return &Filter{
		cfg: cfg,
		log: cfg.Logger,
		now: time.Now,
	}
}

// Stats summarizes one filtering pass.
type Stats struct {
	Total    int
	Passed   int
	Rejected map[Reason]int
}

// Apply returns the markets that pass every threshold, order preserved,
// together with per-reason rejection counts.
func (f *Filter) Apply(markets []*types.Market) ([]*types.Market, Stats) {
	stats := Stats{
		Total:    len(markets),
		Rejected: make(map[Reason]int),
	}

	passed := make([]*types.Market, 0, len(markets))
	for _, m := range markets {
		if reason, ok := f.check(m); !ok {
			stats.Rejected[reason]++
			RejectionsTotal.WithLabelValues(string(reason)).Inc()
			continue
		}
		passed = append(passed, m)
	}
	stats.Passed = len(passed)
	MarketsPassedTotal.Add(float64(stats.Passed))

	f.log.Info("markets-filtered",
		zap.Int("total", stats.Total),
		zap.Int("passed", stats.Passed),
		zap.Int("rejected-liquidity", stats.Rejected[ReasonLiquidity]),
		zap.Int("rejected-volume", stats.Rejected[ReasonVolume]),
		zap.Int("rejected-time", stats.Rejected[ReasonTimeToClose]),
		zap.Int("rejected-price", stats.Rejected[ReasonPriceExtreme]))

	return passed, stats
}

// check applies the thresholds in priority order; the first failing
// threshold is the reported reason.
func (f *Filter) check(m *types.Market) (Reason, bool) {
	if m.Liquidity < f.cfg.MinLiquidity {
		return ReasonLiquidity, false
	}
	if m.Volume < f.cfg.MinVolume {
		return ReasonVolume, false
	}
	if m.EndDate != nil {
		days := int(m.EndDate.Sub(f.now()).Hours() / 24)
		if days < f.cfg.MinDaysToClose {
			return ReasonTimeToClose, false
		}
	}
	price, ok := m.YesPrice()
	if !ok {
		price = 0.5
	}
	if price < f.cfg.MinPrice || price > f.cfg.MaxPrice {
		return ReasonPriceExtreme, false
	}
	return "", true
}
