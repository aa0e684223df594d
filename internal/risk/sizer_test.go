package risk

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

func sizerForTest() *Sizer {
	return New(Config{
		MaxPositionSize: 0.15,
		StopLossPct:     0.20,
		TakeProfitPct:   1.0,
		Logger:          zap.NewNop(),
	})
}

func ledgerForTest(capital float64) *portfolio.Ledger {
	return portfolio.NewLedger(capital, portfolio.Limits{
		MaxConcurrentPositions: 3,
		MaxDailyLoss:           0.10,
		KillSwitchDrawdown:     0.20,
	}, zap.NewNop())
}

func eventAt(yesPrice, probability, confidence, liquidity float64) types.Event {
	return types.Event{
		Market: &types.Market{
			ID: "m1",
			Outcomes: []types.Outcome{
				{ID: "t1", Title: "Yes", Price: yesPrice},
				{ID: "t2", Title: "No", Price: 1 - yesPrice},
			},
			Liquidity: liquidity,
			Volume:    50000,
		},
		Probability: probability,
		Confidence:  confidence,
		Edge:        math.Abs(probability - yesPrice),
	}
}

func TestKellyFraction(t *testing.T) {
	s := sizerForTest()

	tests := []struct {
		name        string
		probability float64
		side        types.Side
		price       float64
		want        float64
	}{
		// b = 0.6/0.4 = 1.5, f = (1.5*0.6 - 0.4)/1.5 = 1/3.
		{"yes-with-edge", 0.60, types.SideYes, 0.40, 1.0 / 3.0},
		// Our NO probability 0.6 against a NO price of 0.4, same numbers.
		{"no-with-edge", 0.40, types.SideNo, 0.40, 1.0 / 3.0},
		{"no-edge", 0.40, types.SideYes, 0.40, 0},
		{"negative-edge-clamps", 0.30, types.SideYes, 0.40, 0},
		{"degenerate-price", 0.60, types.SideYes, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.kellyFraction(tt.probability, tt.side, tt.price)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("kellyFraction() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestApplyLimits(t *testing.T) {
	s := sizerForTest()

	tests := []struct {
		name  string
		kelly float64
		want  float64
	}{
		// Half of 1/3 is 0.1667, capped at 0.15.
		{"capped-at-max", 1.0 / 3.0, 0.15},
		{"half-kelly", 0.20, 0.10},
		{"below-minimum-zeroed", 0.03, 0},
		{"at-minimum", 0.04, 0.02},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.applyLimits(tt.kelly); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("applyLimits(%f) = %f, want %f", tt.kelly, got, tt.want)
			}
		})
	}
}

func TestExitLevels(t *testing.T) {
	s := sizerForTest()

	tests := []struct {
		name     string
		entry    float64
		side     types.Side
		wantStop float64
		wantTake float64
	}{
		{"yes", 0.40, types.SideYes, 0.32, 0.80},
		{"no-inverted", 0.60, types.SideNo, 0.72, 0.01},
		{"yes-take-clamped", 0.60, types.SideYes, 0.48, 0.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop, take := s.ExitLevels(tt.entry, tt.side)
			if math.Abs(stop-tt.wantStop) > 1e-9 {
				t.Errorf("stop = %f, want %f", stop, tt.wantStop)
			}
			if math.Abs(take-tt.wantTake) > 1e-9 {
				t.Errorf("take profit = %f, want %f", take, tt.wantTake)
			}
		})
	}
}

func TestSize_FullRecommendation(t *testing.T) {
	s := sizerForTest()
	ledger := ledgerForTest(1000)

	// Price 0.40, probability 0.60: kelly 1/3, half-kelly 0.1667 capped
	// at 0.15. Capital = 1000 * 0.15 = 150, shares = 375.
	event := eventAt(0.40, 0.60, 0.80, 20000)
	got := s.Size(event, ledger)
	if got == nil {
		t.Fatal("Size() = nil, want a recommendation")
	}

	if got.Side != types.SideYes {
		t.Errorf("side = %s, want yes", got.Side)
	}
	if math.Abs(got.KellyFraction-1.0/3.0) > 1e-9 {
		t.Errorf("kelly fraction = %f, want 0.3333", got.KellyFraction)
	}
	if math.Abs(got.PositionFraction-0.15) > 1e-9 {
		t.Errorf("position fraction = %f, want 0.15", got.PositionFraction)
	}
	if math.Abs(got.Capital-150) > 1e-9 {
		t.Errorf("capital = %f, want 150", got.Capital)
	}
	if math.Abs(got.Shares-375) > 1e-9 {
		t.Errorf("shares = %f, want 375", got.Shares)
	}
	if math.Abs(got.StopLoss-0.32) > 1e-9 || math.Abs(got.TakeProfit-0.80) > 1e-9 {
		t.Errorf("exits = (%f, %f), want (0.32, 0.80)", got.StopLoss, got.TakeProfit)
	}
}

func TestSize_TakesNoSide(t *testing.T) {
	s := sizerForTest()
	ledger := ledgerForTest(1000)

	// Probability below the yes price: buy NO at its own price.
	event := eventAt(0.60, 0.40, 0.80, 20000)
	got := s.Size(event, ledger)
	if got == nil {
		t.Fatal("Size() = nil, want a recommendation")
	}
	if got.Side != types.SideNo {
		t.Errorf("side = %s, want no", got.Side)
	}
	if math.Abs(got.EntryPrice-0.40) > 1e-9 {
		t.Errorf("entry price = %f, want the no price 0.40", got.EntryPrice)
	}
}

func TestSize_Rejections(t *testing.T) {
	s := sizerForTest()

	t.Run("illiquid-market", func(t *testing.T) {
		if got := s.Size(eventAt(0.40, 0.60, 0.80, 500), ledgerForTest(1000)); got != nil {
			t.Error("expected nil for a market below the liquidity floor")
		}
	})

	t.Run("tiny-edge", func(t *testing.T) {
		// Kelly on a 1% edge is far below the 2% floor after halving.
		if got := s.Size(eventAt(0.50, 0.51, 0.80, 20000), ledgerForTest(1000)); got != nil {
			t.Error("expected nil for a sub-minimum allocation")
		}
	})

	t.Run("portfolio-limits", func(t *testing.T) {
		limits := portfolio.Limits{MaxConcurrentPositions: 0, MaxDailyLoss: 0.10, KillSwitchDrawdown: 0.20}
		ledger := portfolio.NewLedger(1000, limits, zap.NewNop())
		if got := s.Size(eventAt(0.40, 0.60, 0.80, 20000), ledger); got != nil {
			t.Error("expected nil when the ledger rejects the probe allocation")
		}
	})
}

func TestBuildPosition(t *testing.T) {
	s := sizerForTest()
	event := eventAt(0.40, 0.60, 0.80, 20000)

	sizing := s.Size(event, ledgerForTest(1000))
	if sizing == nil {
		t.Fatal("Size() = nil")
	}

	p, err := s.BuildPosition(event, sizing)
	if err != nil {
		t.Fatalf("BuildPosition: %v", err)
	}
	if p.MarketID != "m1" || p.Side != types.SideYes {
		t.Errorf("position = %s/%s, want m1/yes", p.MarketID, p.Side)
	}
	if math.Abs(p.CapitalAllocated-sizing.Capital) > 1e-9 {
		t.Errorf("capital allocated = %f, want %f", p.CapitalAllocated, sizing.Capital)
	}
}
