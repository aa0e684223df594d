package patterns

import (
	"fmt"
	"math"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// minMomentumHistory is the number of price observations a trend needs.
const minMomentumHistory = 5

// MomentumDetector trades with the trend: monotonic price direction,
// accelerating moves and volume confirmation raise the score.
type MomentumDetector struct{}

func (d *MomentumDetector) Detect(m *types.Market, ctx Context) Signal {
	prices := ctx.PriceHistory
	if len(prices) < minMomentumHistory {
		return signal(PatternMomentum, 0, DirectionNone, []string{"no price history"})
	}

	var score float64
	var reasons []string

	reversals := 0
	for i := 2; i < len(prices); i++ {
		if (prices[i]-prices[i-1])*(prices[i-1]-prices[i-2]) < 0 {
			reversals++
		}
	}
	if reversals == 0 {
		score += 40
		trend := "upward"
		if prices[len(prices)-1] < prices[0] {
			trend = "downward"
		}
		reasons = append(reasons, fmt.Sprintf("strong %s trend with no reversals", trend))
	}

	recentChange := prices[len(prices)-1] - prices[len(prices)-2]
	previousChange := prices[len(prices)-2] - prices[len(prices)-3]
	if math.Abs(recentChange) > math.Abs(previousChange)*1.5 {
		score += 30
		reasons = append(reasons, "accelerating momentum")
	}

	if vols := ctx.VolumeHistory; len(vols) >= 2 {
		var trailing float64
		for _, v := range vols[:len(vols)-1] {
			trailing += v
		}
		trailing /= float64(len(vols) - 1)
		if vols[len(vols)-1] > trailing {
			score += 20
			reasons = append(reasons, "high volume confirms trend")
		}
	}

	displacement := math.Abs(prices[len(prices)-1] - prices[0])
	score += math.Min(displacement*100, 10)

	dir := DirectionBullish
	if prices[len(prices)-1] <= prices[0] {
		dir = DirectionBearish
	}

	return signal(PatternMomentum, score, dir, reasons)
}
