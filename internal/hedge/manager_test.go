package hedge

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

func managerForTest() *Manager {
	return New(Config{
		Enabled:       true,
		MinConfidence: 0.60,
		Ratio:         0.25,
		MaxAmount:     50,
		Logger:        zap.NewNop(),
	})
}

func TestShouldHedge(t *testing.T) {
	m := managerForTest()

	tests := []struct {
		name       string
		confidence float64
		size       float64
		want       bool
	}{
		{"low-confidence-large-position", 0.50, 100, true},
		{"confident", 0.80, 100, false},
		{"at-threshold", 0.60, 100, false},
		{"tiny-position", 0.50, 9.99, false},
		{"size-at-floor", 0.50, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.ShouldHedge(tt.confidence, tt.size); got != tt.want {
				t.Errorf("ShouldHedge(%f, %f) = %v, want %v", tt.confidence, tt.size, got, tt.want)
			}
		})
	}
}

func TestShouldHedge_Disabled(t *testing.T) {
	cfg := managerForTest().cfg
	cfg.Enabled = false
	m := New(cfg)

	if m.ShouldHedge(0.50, 100) {
		t.Error("disabled manager still hedging")
	}
}

func TestCalculate(t *testing.T) {
	m := managerForTest()

	t.Run("quarter-of-position", func(t *testing.T) {
		plan := m.Calculate(100, 0.50)
		if !plan.ShouldHedge {
			t.Fatal("expected a hedge")
		}
		if math.Abs(plan.Size-25) > 1e-9 {
			t.Errorf("size = %f, want 25", plan.Size)
		}
		if math.Abs(plan.Ratio-0.25) > 1e-9 {
			t.Errorf("ratio = %f, want 0.25", plan.Ratio)
		}
	})

	t.Run("capped-with-recomputed-ratio", func(t *testing.T) {
		// 25% of $400 is $100, capped at $50: effective ratio 12.5%.
		plan := m.Calculate(400, 0.50)
		if math.Abs(plan.Size-50) > 1e-9 {
			t.Errorf("size = %f, want 50 (capped)", plan.Size)
		}
		if math.Abs(plan.Ratio-0.125) > 1e-9 {
			t.Errorf("effective ratio = %f, want 0.125", plan.Ratio)
		}
	})

	t.Run("no-hedge-when-confident", func(t *testing.T) {
		plan := m.Calculate(100, 0.80)
		if plan.ShouldHedge || plan.Size != 0 {
			t.Errorf("plan = %+v, want no hedge", plan)
		}
	})
}

func TestOrder(t *testing.T) {
	m := managerForTest()
	market := &types.Market{
		ID: "m1",
		Outcomes: []types.Outcome{
			{ID: "tok-yes", Title: "Yes", Price: 0.40},
			{ID: "tok-no", Title: "No", Price: 0.60},
		},
	}

	plan := m.Calculate(100, 0.50) // $25 hedge
	order := m.Order(market, types.SideYes, plan)
	if order == nil {
		t.Fatal("Order() = nil, want a hedge order")
	}

	if order.Side != types.SideNo {
		t.Errorf("hedge side = %s, want no (opposite of main)", order.Side)
	}
	if order.TokenID != "tok-no" {
		t.Errorf("token = %q, want tok-no", order.TokenID)
	}
	if !order.Hedge {
		t.Error("order not flagged as a hedge")
	}
	if math.Abs(order.Shares-25/0.60) > 1e-9 {
		t.Errorf("shares = %f, want %f", order.Shares, 25/0.60)
	}
}

func TestOrder_NoPlanNoOrder(t *testing.T) {
	m := managerForTest()
	market := &types.Market{ID: "m1"}

	if got := m.Order(market, types.SideYes, Plan{}); got != nil {
		t.Errorf("Order() = %+v, want nil without a hedge plan", got)
	}
}

func TestSettle(t *testing.T) {
	m := managerForTest()

	t.Run("main-wins", func(t *testing.T) {
		got := m.Settle(100, 25, types.SideYes, types.SideYes)
		if got.MainPayout != 100 || got.HedgePayout != 0 {
			t.Errorf("payouts = (%f, %f), want (100, 0)", got.MainPayout, got.HedgePayout)
		}
		if math.Abs(got.NetPnL-(-25)) > 1e-9 {
			t.Errorf("net pnl = %f, want -25 (hedge cost)", got.NetPnL)
		}
		if got.ProtectedDownside {
			t.Error("protected-downside flag set on a winning main leg")
		}
	})

	t.Run("hedge-wins", func(t *testing.T) {
		got := m.Settle(100, 25, types.SideNo, types.SideYes)
		if got.HedgePayout != 25 {
			t.Errorf("hedge payout = %f, want 25", got.HedgePayout)
		}
		if math.Abs(got.NetPnL-(-100)) > 1e-9 {
			t.Errorf("net pnl = %f, want -100", got.NetPnL)
		}
		if !got.ProtectedDownside {
			t.Error("protected-downside flag not set")
		}
		if math.Abs(got.ROI-(-0.8)) > 1e-9 {
			t.Errorf("roi = %f, want -0.8", got.ROI)
		}
	})
}
