package types

import "time"

// OrderIntent distinguishes entries from exits.
type OrderIntent string

const (
	IntentBuy  OrderIntent = "BUY"
	IntentSell OrderIntent = "SELL"
)

// OrderRequest describes an order for the execution layer.
type OrderRequest struct {
	MarketID string
	TokenID  string // outcome token for live placement
	Side     Side   // which share type is being traded
	Intent   OrderIntent
	Shares   float64
	Price    float64
	Hedge    bool // true for hedge legs
}

// Notional returns the USD value of the order at its limit price.
func (r *OrderRequest) Notional() float64 {
	return r.Shares * r.Price
}

// OrderResult is the execution layer's response to an order request.
type OrderResult struct {
	OrderID    string
	Success    bool
	Simulated  bool // true for paper fills
	FilledAt   time.Time
	FillPrice  float64
	FillShares float64
}
