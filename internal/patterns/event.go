package patterns

import (
	"fmt"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// EventDrivenDetector scores markets that are about to absorb new
// information: fresh news, an imminent resolution event, or a visible
// spike in outside attention.
type EventDrivenDetector struct{}

func (d *EventDrivenDetector) Detect(m *types.Market, ctx Context) Signal {
	var score float64
	var reasons []string

	if ctx.BreakingNews {
		switch {
		case ctx.NewsAgeHours < 2:
			score += 40
			reasons = append(reasons, "breaking news in the last 2 hours")
		case ctx.NewsAgeHours < 12:
			score += 25
			reasons = append(reasons, "recent news in the last 12 hours")
		}
	}

	if hours, ok := m.HoursUntilClose(ctx.Now); ok && hours > 1 && hours < 48 {
		score += 30
		reasons = append(reasons, fmt.Sprintf("event in %.0f hours, high information flow expected", hours))
	}

	if ctx.SentimentSpike {
		score += 20
		reasons = append(reasons, "social sentiment spike detected")
	}

	if ctx.ExpertMentions {
		score += 15
		reasons = append(reasons, "expert commentary detected")
	}

	return signal(PatternEventDriven, score, DirectionNone, reasons)
}
