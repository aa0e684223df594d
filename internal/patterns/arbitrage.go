package patterns

import (
	"fmt"
	"math"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// ArbitrageDetector looks for pricing inconsistencies: the same event on
// another venue, correlated outcomes that should sum to a constant, and
// same-event markets with different resolution dates.
type ArbitrageDetector struct{}

func (d *ArbitrageDetector) Detect(m *types.Market, ctx Context) Signal {
	var score float64
	var reasons []string

	price := yesPriceOrMid(m)

	if ctx.HasCrossVenuePrice {
		diff := math.Abs(price - ctx.CrossVenuePrice)
		if diff > 0.05 {
			score += 50
			reasons = append(reasons, fmt.Sprintf("cross-venue price differs by %.0f%%", diff*100))
		}
	}

	for _, corr := range ctx.CorrelatedMarkets {
		expected := corr.ExpectedSum
		if expected == 0 {
			expected = 1.0
		}
		deviation := math.Abs(price + corr.Price - expected)
		if deviation > 0.10 {
			score += 30
			reasons = append(reasons, fmt.Sprintf("correlated market inconsistency: %.0f%%", deviation*100))
		}
	}

	if days, ok := m.DaysUntilClose(ctx.Now); ok {
		for _, ts := range ctx.TimeSeriesMarkets {
			if ts.DaysToResolution < days && math.Abs(ts.Price-price) > 0.15 {
				score += 20
				reasons = append(reasons, "time-series pricing inconsistency")
			}
		}
	}

	return signal(PatternArbitrage, score, DirectionNone, reasons)
}
