package testutil

import (
	"testing"
	"time"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// BinaryMarket creates a two-outcome test market with the given YES price.
func BinaryMarket(id string, yesPrice float64) *types.Market {
	end := time.Now().Add(72 * time.Hour)
	return &types.Market{
		ID:       id,
		Slug:     id + "-slug",
		Question: "Will it rain tomorrow?",
		Outcomes: []types.Outcome{
			{ID: id + "-yes", Title: "Yes", Price: yesPrice},
			{ID: id + "-no", Title: "No", Price: 1 - yesPrice},
		},
		Volume:    100000,
		Liquidity: 50000,
		CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
		EndDate:   &end,
		Category:  "politics",
		Active:    true,
	}
}

// OpenPosition creates an open position in a fresh binary market.
func OpenPosition(t *testing.T, marketID string, side types.Side, shares, entryPrice, stopLoss, takeProfit float64) *portfolio.Position {
	t.Helper()

	yesPrice := entryPrice
	if side == types.SideNo {
		yesPrice = 1 - entryPrice
	}
	market := BinaryMarket(marketID, yesPrice)

	pos, err := portfolio.NewPosition(market, side, shares, entryPrice, stopLoss, takeProfit, 0.75, time.Now())
	if err != nil {
		t.Fatalf("NewPosition() error = %v", err)
	}
	return pos
}
