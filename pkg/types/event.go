package types

import "time"

// Event is a market plus research context produced by one analysis pass.
// Events live for a single trading cycle and are not persisted.
type Event struct {
	Market *Market

	// Research context
	NewsSummary string

	// Engine analysis
	Probability   float64 // estimated probability of YES
	Confidence    float64 // [0,1]
	Edge          float64 // |probability - yes price|
	CombinedScore float64 // weighted pattern score, 0-100
	TopPattern    string
	Reasons       []string

	AnalyzedAt time.Time
}

// Estimate is the output of an external probability estimator.
type Estimate struct {
	Probability float64 // [0,1]
	Confidence  float64 // [0,1]
}

// NeutralEstimate is the fallback used when the estimator fails or returns
// garbage: the market's own price (or 0.5 when unknown) at zero confidence.
func NeutralEstimate(marketPrice float64) Estimate {
	p := marketPrice
	if p <= 0 || p >= 1 {
		p = 0.5
	}
	return Estimate{Probability: p, Confidence: 0}
}
