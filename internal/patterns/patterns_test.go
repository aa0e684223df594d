package patterns

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

func binaryMarket(yesPrice, liquidity, volume float64) *types.Market {
	return &types.Market{
		ID: "m1",
		Outcomes: []types.Outcome{
			{ID: "t1", Title: "Yes", Price: yesPrice},
			{ID: "t2", Title: "No", Price: 1 - yesPrice},
		},
		Liquidity: liquidity,
		Volume:    volume,
	}
}

func withEndDate(m *types.Market, endsIn time.Duration, now time.Time) *types.Market {
	end := now.Add(endsIn)
	m.EndDate = &end
	return m
}

func TestMispricingDetector(t *testing.T) {
	d := &MispricingDetector{}

	tests := []struct {
		name      string
		market    *types.Market
		ctx       Context
		wantScore float64
	}{
		{
			name:      "no-evidence",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{},
			wantScore: 0,
		},
		{
			name:      "thin-book-extreme-price",
			market:    binaryMarket(0.15, 8000, 100000),
			ctx:       Context{},
			wantScore: 30,
		},
		{
			name:      "volume-spike-flat-price",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{VolumeSpike: true, FlatPrice: true},
			wantScore: 25,
		},
		{
			name:      "volume-spike-with-price-move",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{VolumeSpike: true, FlatPrice: false},
			wantScore: 0,
		},
		{
			name:      "similar-market-divergence",
			market:    binaryMarket(0.30, 50000, 100000),
			ctx:       Context{SimilarPrices: []float64{0.50, 0.50}},
			wantScore: 20,
		},
		{
			name:      "similar-markets-aligned",
			market:    binaryMarket(0.45, 50000, 100000),
			ctx:       Context{SimilarPrices: []float64{0.50, 0.50}},
			wantScore: 0,
		},
		{
			name:      "historical-edge-scaled",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{HistoricalYesRate: 0.65, HasHistoricalYesRate: true},
			wantScore: 15,
		},
		{
			name:      "historical-edge-capped",
			market:    binaryMarket(0.20, 50000, 100000),
			ctx:       Context{HistoricalYesRate: 0.80, HasHistoricalYesRate: true},
			wantScore: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := d.Detect(tt.market, tt.ctx)
			if math.Abs(sig.Score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %f, want %f (reasons: %v)", sig.Score, tt.wantScore, sig.Reasons)
			}
			if math.Abs(sig.Confidence-tt.wantScore/100) > 1e-9 {
				t.Errorf("confidence = %f, want %f", sig.Confidence, tt.wantScore/100)
			}
		})
	}
}

func TestMomentumDetector(t *testing.T) {
	d := &MomentumDetector{}
	m := binaryMarket(0.50, 50000, 100000)

	tests := []struct {
		name      string
		ctx       Context
		wantScore float64
		wantDir   Direction
	}{
		{
			name:      "insufficient-history",
			ctx:       Context{PriceHistory: []float64{0.4, 0.45, 0.5, 0.55}},
			wantScore: 0,
			wantDir:   DirectionNone,
		},
		{
			// No reversals (+40), last move 0.05 vs prior 0.05 (no
			// acceleration), displacement 0.20 (+10): 50.
			name:      "steady-uptrend",
			ctx:       Context{PriceHistory: []float64{0.40, 0.45, 0.50, 0.55, 0.60}},
			wantScore: 50,
			wantDir:   DirectionBullish,
		},
		{
			// Same trend downward.
			name:      "steady-downtrend",
			ctx:       Context{PriceHistory: []float64{0.60, 0.55, 0.50, 0.45, 0.40}},
			wantScore: 50,
			wantDir:   DirectionBearish,
		},
		{
			// Reversal mid-window drops the +40; last move 0.10 vs prior
			// 0.05 is accelerating (+30); displacement 0.05 (+5): 35.
			name:      "choppy-but-accelerating",
			ctx:       Context{PriceHistory: []float64{0.50, 0.55, 0.50, 0.45, 0.55}},
			wantScore: 35,
			wantDir:   DirectionBullish,
		},
		{
			// Trend (+40), acceleration 0.12 > 1.5*0.04 (+30), volume
			// confirmation (+20), displacement 0.24 (+10): 100.
			name: "everything-confirms",
			ctx: Context{
				PriceHistory:  []float64{0.40, 0.44, 0.48, 0.52, 0.64},
				VolumeHistory: []float64{100, 100, 100, 100, 500},
			},
			wantScore: 100,
			wantDir:   DirectionBullish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := d.Detect(m, tt.ctx)
			if math.Abs(sig.Score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %f, want %f (reasons: %v)", sig.Score, tt.wantScore, sig.Reasons)
			}
			if sig.Direction != tt.wantDir {
				t.Errorf("direction = %q, want %q", sig.Direction, tt.wantDir)
			}
		})
	}
}

func TestReversalDetector(t *testing.T) {
	d := &ReversalDetector{}

	tests := []struct {
		name      string
		market    *types.Market
		ctx       Context
		wantScore float64
	}{
		{
			name:      "calm-midpoint",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{},
			wantScore: 0,
		},
		{
			// >0.90 (+25) and thin book at extreme (+20).
			name:      "extreme-high-thin-book",
			market:    binaryMarket(0.95, 3000, 100000),
			ctx:       Context{},
			wantScore: 45,
		},
		{
			name:      "extreme-low",
			market:    binaryMarket(0.05, 50000, 100000),
			ctx:       Context{},
			wantScore: 25,
		},
		{
			// Last-2-observation move: 0.75 - 0.50 = 0.25 > 0.20 (+30).
			name:      "rapid-move",
			market:    binaryMarket(0.75, 50000, 100000),
			ctx:       Context{PriceHistory: []float64{0.45, 0.50, 0.60, 0.75}},
			wantScore: 30,
		},
		{
			name:      "declining-volume",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{VolumeHistory: []float64{300, 200, 100}},
			wantScore: 15,
		},
		{
			name:      "flat-volume",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{VolumeHistory: []float64{200, 200, 100}},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := d.Detect(tt.market, tt.ctx)
			if math.Abs(sig.Score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %f, want %f (reasons: %v)", sig.Score, tt.wantScore, sig.Reasons)
			}
		})
	}
}

func TestArbitrageDetector(t *testing.T) {
	d := &ArbitrageDetector{}
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		market    *types.Market
		ctx       Context
		wantScore float64
	}{
		{
			name:      "no-related-markets",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{Now: now},
			wantScore: 0,
		},
		{
			name:      "cross-venue-gap",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{Now: now, CrossVenuePrice: 0.60, HasCrossVenuePrice: true},
			wantScore: 50,
		},
		{
			name:      "cross-venue-aligned",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{Now: now, CrossVenuePrice: 0.52, HasCrossVenuePrice: true},
			wantScore: 0,
		},
		{
			// 0.50 + 0.65 = 1.15, deviates 0.15 from the expected 1.0.
			name:   "correlated-sum-off",
			market: binaryMarket(0.50, 50000, 100000),
			ctx: Context{
				Now:               now,
				CorrelatedMarkets: []CorrelatedMarket{{Price: 0.65, ExpectedSum: 1.0}},
			},
			wantScore: 30,
		},
		{
			// Earlier-resolving market priced 0.20 away.
			name: "time-series-gap",
			market: withEndDate(
				binaryMarket(0.50, 50000, 100000), 10*24*time.Hour, now),
			ctx: Context{
				Now:               now,
				TimeSeriesMarkets: []TimeSeriesMarket{{Price: 0.70, DaysToResolution: 2}},
			},
			wantScore: 20,
		},
		{
			// Later-resolving market is not comparable.
			name: "time-series-later-resolution",
			market: withEndDate(
				binaryMarket(0.50, 50000, 100000), 24*time.Hour, now),
			ctx: Context{
				Now:               now,
				TimeSeriesMarkets: []TimeSeriesMarket{{Price: 0.70, DaysToResolution: 30}},
			},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := d.Detect(tt.market, tt.ctx)
			if math.Abs(sig.Score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %f, want %f (reasons: %v)", sig.Score, tt.wantScore, sig.Reasons)
			}
		})
	}
}

func TestEventDrivenDetector(t *testing.T) {
	d := &EventDrivenDetector{}
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		market    *types.Market
		ctx       Context
		wantScore float64
	}{
		{
			name:      "quiet",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{Now: now},
			wantScore: 0,
		},
		{
			name:      "breaking-news",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{Now: now, BreakingNews: true, NewsAgeHours: 1},
			wantScore: 40,
		},
		{
			name:      "older-news",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{Now: now, BreakingNews: true, NewsAgeHours: 6},
			wantScore: 25,
		},
		{
			name:      "stale-news",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{Now: now, BreakingNews: true, NewsAgeHours: 24},
			wantScore: 0,
		},
		{
			name:      "imminent-resolution",
			market:    withEndDate(binaryMarket(0.50, 50000, 100000), 24*time.Hour, now),
			ctx:       Context{Now: now},
			wantScore: 30,
		},
		{
			name:      "resolution-too-close",
			market:    withEndDate(binaryMarket(0.50, 50000, 100000), 30*time.Minute, now),
			ctx:       Context{Now: now},
			wantScore: 0,
		},
		{
			// Sentiment (+20) and experts (+15).
			name:      "attention-spike",
			market:    binaryMarket(0.50, 50000, 100000),
			ctx:       Context{Now: now, SentimentSpike: true, ExpertMentions: true},
			wantScore: 35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := d.Detect(tt.market, tt.ctx)
			if math.Abs(sig.Score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %f, want %f (reasons: %v)", sig.Score, tt.wantScore, sig.Reasons)
			}
		})
	}
}

func TestAnalyzer_Combine(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	// Mispricing 30 (thin book + extreme) and reversal 20 (thin book at
	// extreme): combined = 30*0.35 + 20*0.05 = 11.5.
	m := binaryMarket(0.88, 3000, 100000)
	got := a.Analyze(m, Context{Now: now})

	if math.Abs(got.CombinedScore-11.5) > 1e-9 {
		t.Errorf("combined score = %f, want 11.5", got.CombinedScore)
	}
	if got.TopPattern != PatternMispricing {
		t.Errorf("top pattern = %s, want mispricing", got.TopPattern)
	}
	if got.ShouldTrade {
		t.Error("should-trade flag set below the threshold")
	}
	if len(got.Signals) != 5 {
		t.Errorf("got %d signals, want 5", len(got.Signals))
	}
}

func TestAnalyzer_TopPatternByConfidenceNotWeight(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	// Arbitrage scores 50 while mispricing scores 0; arbitrage wins the
	// top slot even though its combine weight is lower.
	m := binaryMarket(0.50, 50000, 100000)
	got := a.Analyze(m, Context{Now: now, CrossVenuePrice: 0.70, HasCrossVenuePrice: true})

	if got.TopPattern != PatternArbitrage {
		t.Errorf("top pattern = %s, want arbitrage", got.TopPattern)
	}
	if got.TopSignal().Score != 50 {
		t.Errorf("top signal score = %f, want 50", got.TopSignal().Score)
	}
}

func TestAnalyzer_ShouldTradeThreshold(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	// Load every detector: mispricing 30+25+20+25=100, arbitrage 50+30=80,
	// momentum 40+30+20+10=100, event 40+30+20+15 clamped to 100, reversal
	// 30. Combined = 100*.35+80*.25+100*.20+100*.15+30*.05 = 91.5.
	end := now.Add(24 * time.Hour)
	m := binaryMarket(0.15, 8000, 100000)
	m.EndDate = &end

	ctx := Context{
		Now:                  now,
		PriceHistory:         []float64{0.60, 0.50, 0.40, 0.36, 0.15},
		VolumeHistory:        []float64{100, 100, 100, 100, 500},
		VolumeSpike:          true,
		FlatPrice:            true,
		SimilarPrices:        []float64{0.50},
		HistoricalYesRate:    0.80,
		HasHistoricalYesRate: true,
		CrossVenuePrice:      0.40,
		HasCrossVenuePrice:   true,
		CorrelatedMarkets:    []CorrelatedMarket{{Price: 0.70, ExpectedSum: 1.0}},
		BreakingNews:         true,
		NewsAgeHours:         1,
		SentimentSpike:       true,
		ExpertMentions:       true,
	}

	got := a.Analyze(m, ctx)
	if !got.ShouldTrade {
		t.Errorf("should-trade not set at combined score %f", got.CombinedScore)
	}
	if got.CombinedScore <= 70 {
		t.Errorf("combined score = %f, want > 70", got.CombinedScore)
	}
}
