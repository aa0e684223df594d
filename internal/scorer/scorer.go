// Package scorer ranks filtered markets by a composite opportunity score and
// caps the candidate list so the expensive per-market analysis downstream
// stays bounded.
package scorer

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

const (
	liquidityScale = 50_000  // liquidity at which the component maxes out
	volumeScale    = 100_000 // volume at which the component maxes out
)

// Config carries the scoring thresholds.
type Config struct {
	MinScore float64
	TopN     int
	Logger   *zap.Logger
}

// Scorer computes composite scores for markets.
type Scorer struct {
	cfg Config
	log *zap.Logger
}

// New creates a scorer.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg, log: cfg.Logger}
}

// Candidate pairs a market with its composite score.
type Candidate struct {
	Market *types.Market
	Score  float64
}

// Rank scores every market, drops those below the minimum, and returns at
// most TopN candidates sorted by score descending. Ties keep input order.
func (s *Scorer) Rank(markets []*types.Market) []Candidate {
	candidates := make([]Candidate, 0, len(markets))
	for _, m := range markets {
		score := s.Score(m)
		ScoreDistribution.Observe(score)
		if score >= s.cfg.MinScore {
			candidates = append(candidates, Candidate{Market: m, Score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if s.cfg.TopN > 0 && len(candidates) > s.cfg.TopN {
		candidates = candidates[:s.cfg.TopN]
	}

	CandidatesSelectedTotal.Add(float64(len(candidates)))
	s.log.Info("markets-scored",
		zap.Int("scored", len(markets)),
		zap.Int("selected", len(candidates)),
		zap.Float64("min-score", s.cfg.MinScore))

	return candidates
}

// Score computes the composite score for one market:
// liquidity depth (0-25), trading activity (0-25) and price uncertainty
// (0-50, maximal at 0.5, zero at the extremes).
func (s *Scorer) Score(m *types.Market) float64 {
	liquidityScore := math.Min(m.Liquidity/liquidityScale, 1) * 25
	volumeScore := math.Min(m.Volume/volumeScale, 1) * 25

	price, ok := m.YesPrice()
	if !ok {
		price = 0.5
	}
	uncertaintyScore := (1 - 2*math.Abs(price-0.5)) * 50

	return liquidityScore + volumeScore + uncertaintyScore
}
