// Package patterns runs a set of heuristics over a market snapshot and its
// surrounding context (price history, news, related markets) and combines
// them into one weighted opportunity score.
package patterns

import (
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// Pattern identifies one detector.
type Pattern string

const (
	PatternMispricing  Pattern = "mispricing"
	PatternMomentum    Pattern = "momentum"
	PatternReversal    Pattern = "reversal"
	PatternArbitrage   Pattern = "arbitrage"
	PatternEventDriven Pattern = "event_driven"
)

// Direction is the trade direction a detector implies, when it implies one.
type Direction string

const (
	DirectionNone    Direction = ""
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
)

// combineWeights reflects the relative reliability of each detector.
var combineWeights = map[Pattern]float64{
	PatternMispricing:  0.35,
	PatternArbitrage:   0.25,
	PatternMomentum:    0.20,
	PatternEventDriven: 0.15,
	PatternReversal:    0.05,
}

// shouldTradeThreshold is the combined score above which a candidate is
// worth the downstream probability work.
const shouldTradeThreshold = 70

// CorrelatedMarket is a market whose price should sum with ours to a known
// constant (e.g. mutually exclusive outcomes of the same event).
type CorrelatedMarket struct {
	Price       float64
	ExpectedSum float64
}

// TimeSeriesMarket is a market on the same event with a different
// resolution date.
type TimeSeriesMarket struct {
	Price            float64
	DaysToResolution float64
}

// Context carries the optional evidence detectors work from. Every field
// may be absent; a detector missing its required fields scores zero.
type Context struct {
	Now time.Time

	PriceHistory  []float64 // oldest to newest
	VolumeHistory []float64 // oldest to newest

	VolumeSpike bool // volume jumped over its trailing average
	FlatPrice   bool // price barely moved while volume spiked

	SimilarPrices []float64 // yes prices of comparable markets

	HistoricalYesRate    float64 // resolved-outcome base rate for similar events
	HasHistoricalYesRate bool

	CrossVenuePrice    float64 // same event priced on another venue
	HasCrossVenuePrice bool

	CorrelatedMarkets []CorrelatedMarket
	TimeSeriesMarkets []TimeSeriesMarket

	BreakingNews   bool
	NewsAgeHours   float64
	SentimentSpike bool
	ExpertMentions bool
}

// Signal is one detector's verdict for a market.
type Signal struct {
	Pattern    Pattern
	Score      float64 // 0-100
	Confidence float64 // Score / 100
	Direction  Direction
	Reasons    []string
}

// Detector is a pure heuristic over a market and its context.
type Detector interface {
	Detect(m *types.Market, ctx Context) Signal
}

// Analysis is the combined output of all detectors for one market.
type Analysis struct {
	Signals       map[Pattern]Signal
	CombinedScore float64
	TopPattern    Pattern
	ShouldTrade   bool
}

// TopSignal returns the signal of the top pattern.
func (a Analysis) TopSignal() Signal {
	return a.Signals[a.TopPattern]
}

// Analyzer runs every detector and combines their signals.
type Analyzer struct {
	detectors []Detector
	log       *zap.Logger
}

// NewAnalyzer creates an analyzer with the full detector set.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{
		detectors: []Detector{
			&MispricingDetector{},
			&MomentumDetector{},
			&ReversalDetector{},
			&ArbitrageDetector{},
			&EventDrivenDetector{},
		},
		log: logger,
	}
}

// Analyze runs all detectors on the market and weights their scores into a
// combined verdict. The top pattern is the detector with the highest
// individual confidence, regardless of its combine weight.
func (a *Analyzer) Analyze(m *types.Market, ctx Context) Analysis {
	signals := make(map[Pattern]Signal, len(a.detectors))

	var combined float64
	var top Pattern
	var topConfidence = -1.0

	for _, d := range a.detectors {
		sig := d.Detect(m, ctx)
		signals[sig.Pattern] = sig
		combined += sig.Score * combineWeights[sig.Pattern]
		PatternScore.WithLabelValues(string(sig.Pattern)).Observe(sig.Score)

		if sig.Confidence > topConfidence {
			topConfidence = sig.Confidence
			top = sig.Pattern
		}
	}

	analysis := Analysis{
		Signals:       signals,
		CombinedScore: combined,
		TopPattern:    top,
		ShouldTrade:   combined > shouldTradeThreshold,
	}

	a.log.Debug("patterns-analyzed",
		zap.String("market-id", m.ID),
		zap.Float64("combined-score", combined),
		zap.String("top-pattern", string(top)),
		zap.Bool("should-trade", analysis.ShouldTrade))
	if analysis.ShouldTrade {
		TradeSignalsTotal.WithLabelValues(string(top)).Inc()
	}

	return analysis
}

func clampScore(score float64) float64 {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

func signal(p Pattern, score float64, dir Direction, reasons []string) Signal {
	score = clampScore(score)
	return Signal{
		Pattern:    p,
		Score:      score,
		Confidence: score / 100,
		Direction:  dir,
		Reasons:    reasons,
	}
}

// yesPriceOrMid returns the market's yes price, or 0.5 when absent.
func yesPriceOrMid(m *types.Market) float64 {
	if p, ok := m.YesPrice(); ok {
		return p
	}
	return 0.5
}
