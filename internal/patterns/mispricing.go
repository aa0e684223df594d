package patterns

import (
	"fmt"
	"math"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// MispricingDetector flags markets whose price plausibly lags the true
// probability: thin books at extreme prices, volume without a price move,
// or divergence from comparable markets and historical base rates.
type MispricingDetector struct{}

func (d *MispricingDetector) Detect(m *types.Market, ctx Context) Signal {
	var score float64
	var reasons []string

	price := yesPriceOrMid(m)

	if m.Liquidity < 10_000 && (price < 0.20 || price > 0.80) {
		score += 30
		reasons = append(reasons, "low liquidity with extreme price")
	}

	if ctx.VolumeSpike && ctx.FlatPrice {
		score += 25
		reasons = append(reasons, "volume spike without price adjustment")
	}

	if len(ctx.SimilarPrices) > 0 {
		var sum float64
		for _, p := range ctx.SimilarPrices {
			sum += p
		}
		divergence := math.Abs(price - sum/float64(len(ctx.SimilarPrices)))
		if divergence > 0.15 {
			score += 20
			reasons = append(reasons, fmt.Sprintf("price diverges %.0f%% from similar markets", divergence*100))
		}
	}

	if ctx.HasHistoricalYesRate {
		edge := math.Abs(ctx.HistoricalYesRate - price)
		score += math.Min(edge*100, 25)
		if edge > 0.10 {
			reasons = append(reasons, fmt.Sprintf("historical base rate suggests %.0f%% edge", edge*100))
		}
	}

	return signal(PatternMispricing, score, DirectionNone, reasons)
}
