// Package probability turns a pattern analysis into a final probability
// estimate, anchored on the market price and nudged by whichever pattern
// dominated the analysis.
package probability

import (
	"math"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/internal/patterns"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// Probabilities are kept off the hard extremes so Kelly sizing and exit
// levels stay finite.
const (
	floorProbability = 0.05
	ceilProbability  = 0.95
)

// Config carries the trade-acceptance thresholds.
type Config struct {
	MinEdgeThreshold float64
	MinConfidence    float64
	Logger           *zap.Logger
}

// Blender converts analyses into tradeable probability estimates.
type Blender struct {
	cfg Config
	log *zap.Logger
}

// New creates a blender.
func New(cfg Config) *Blender {
	return &Blender{cfg: cfg, log: cfg.Logger}
}

// Inputs carries the external evidence available for blending. Estimate is
// the external estimator's verdict; CrossVenuePrice mirrors the arbitrage
// detector's context.
type Inputs struct {
	Estimate           *types.Estimate
	CrossVenuePrice    float64
	HasCrossVenuePrice bool
}

// Blend derives a probability from the market price and the analysis's top
// pattern, then computes edge and confidence. How the price is adjusted
// depends on which pattern won:
//
//	mispricing   estimator probability, else mean-revert extremes by 0.10
//	momentum     follow the trend by 0.10
//	reversal     pull extremes back by 0.15
//	arbitrage    adopt the cross-venue price
//	event_driven average the estimator with the market price
func (b *Blender) Blend(m *types.Market, analysis patterns.Analysis, in Inputs) types.Event {
	price := 0.5
	if p, ok := m.YesPrice(); ok {
		price = p
	}

	probability := price
	switch analysis.TopPattern {
	case patterns.PatternMispricing:
		if in.Estimate != nil {
			probability = in.Estimate.Probability
		} else if price > 0.75 {
			probability = price - 0.10
		} else if price < 0.25 {
			probability = price + 0.10
		}

	case patterns.PatternMomentum:
		switch analysis.TopSignal().Direction {
		case patterns.DirectionBullish:
			probability = math.Min(price+0.10, ceilProbability)
		case patterns.DirectionBearish:
			probability = math.Max(price-0.10, floorProbability)
		}

	case patterns.PatternReversal:
		if price > 0.75 {
			probability = price - 0.15
		} else if price < 0.25 {
			probability = price + 0.15
		}

	case patterns.PatternArbitrage:
		if in.HasCrossVenuePrice {
			probability = in.CrossVenuePrice
		}

	case patterns.PatternEventDriven:
		if in.Estimate != nil {
			probability = (in.Estimate.Probability + price) / 2
		}
	}

	probability = math.Max(floorProbability, math.Min(ceilProbability, probability))

	event := types.Event{
		Market:        m,
		Probability:   probability,
		Confidence:    analysis.CombinedScore / 100,
		Edge:          math.Abs(probability - price),
		CombinedScore: analysis.CombinedScore,
		TopPattern:    string(analysis.TopPattern),
		Reasons:       analysis.TopSignal().Reasons,
	}

	EdgeDistribution.Observe(event.Edge)
	return event
}

// Accept reports whether the event clears both trade gates: enough edge
// over the market price and enough combined confidence.
func (b *Blender) Accept(event types.Event) bool {
	if event.Edge < b.cfg.MinEdgeThreshold {
		b.log.Debug("event-rejected-low-edge",
			zap.String("market-id", event.Market.ID),
			zap.Float64("edge", event.Edge),
			zap.Float64("min-edge", b.cfg.MinEdgeThreshold))
		RejectionsTotal.WithLabelValues("low_edge").Inc()
		return false
	}
	if event.Confidence < b.cfg.MinConfidence {
		b.log.Debug("event-rejected-low-confidence",
			zap.String("market-id", event.Market.ID),
			zap.Float64("confidence", event.Confidence),
			zap.Float64("min-confidence", b.cfg.MinConfidence))
		RejectionsTotal.WithLabelValues("low_confidence").Inc()
		return false
	}
	AcceptedTotal.Inc()
	return true
}
