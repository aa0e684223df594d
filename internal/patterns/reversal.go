package patterns

import (
	"fmt"
	"math"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// ReversalDetector is the contrarian counterpart to momentum: extreme or
// overextended prices on weakening participation tend to correct.
type ReversalDetector struct{}

func (d *ReversalDetector) Detect(m *types.Market, ctx Context) Signal {
	var score float64
	var reasons []string

	price := yesPriceOrMid(m)

	if price > 0.90 {
		score += 25
		reasons = append(reasons, "extremely high price, potential reversal")
	} else if price < 0.10 {
		score += 25
		reasons = append(reasons, "extremely low price, potential reversal")
	}

	if prices := ctx.PriceHistory; len(prices) >= 3 {
		recent := prices[len(prices)-1] - prices[len(prices)-3]
		if math.Abs(recent) > 0.20 {
			score += 30
			reasons = append(reasons, fmt.Sprintf("rapid %.0f%% move suggests overextension", recent*100))
		}
	}

	if (price > 0.85 || price < 0.15) && m.Liquidity < 5_000 {
		score += 20
		reasons = append(reasons, "thin book at extreme price")
	}

	if vols := ctx.VolumeHistory; len(vols) >= 3 {
		n := len(vols)
		if vols[n-1] < vols[n-2] && vols[n-2] < vols[n-3] {
			score += 15
			reasons = append(reasons, "declining volume suggests trend exhaustion")
		}
	}

	return signal(PatternReversal, score, DirectionNone, reasons)
}
