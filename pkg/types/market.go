package types

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidMarketShape marks markets that are not tradeable binary markets:
// anything other than exactly two outcomes, or a missing YES/NO price.
// Such markets are excluded before they reach the filter.
var ErrInvalidMarketShape = errors.New("market is not a priced binary market")

// Outcome is a single market outcome with its current price.
type Outcome struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// Market is an immutable-per-cycle snapshot of a prediction market.
type Market struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Question    string     `json:"question"`
	Description string     `json:"description,omitempty"`
	Outcomes    []Outcome  `json:"outcomes"`
	Volume      float64    `json:"volume"`
	Liquidity   float64    `json:"liquidity"`
	CreatedAt   time.Time  `json:"createdAt"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Active      bool       `json:"active"`
}

// IsBinary reports whether the market has exactly two outcomes.
func (m *Market) IsBinary() bool {
	return len(m.Outcomes) == 2
}

// YesPrice returns the price of the YES outcome. The second return is false
// for non-binary markets or when no outcome is titled yes/true.
func (m *Market) YesPrice() (float64, bool) {
	return m.outcomePrice("yes", "true")
}

// NoPrice returns the price of the NO outcome.
func (m *Market) NoPrice() (float64, bool) {
	return m.outcomePrice("no", "false")
}

func (m *Market) outcomePrice(titles ...string) (float64, bool) {
	if !m.IsBinary() {
		return 0, false
	}
	for _, o := range m.Outcomes {
		title := strings.ToLower(o.Title)
		for _, want := range titles {
			if title == want {
				return o.Price, true
			}
		}
	}
	return 0, false
}

// OutcomeBySide returns the outcome backing the given side.
func (m *Market) OutcomeBySide(side Side) (Outcome, bool) {
	if !m.IsBinary() {
		return Outcome{}, false
	}
	var want []string
	switch side {
	case SideYes:
		want = []string{"yes", "true"}
	case SideNo:
		want = []string{"no", "false"}
	default:
		return Outcome{}, false
	}
	for _, o := range m.Outcomes {
		title := strings.ToLower(o.Title)
		for _, w := range want {
			if title == w {
				return o, true
			}
		}
	}
	return Outcome{}, false
}

// PriceBySide returns the current price for the given side.
func (m *Market) PriceBySide(side Side) (float64, bool) {
	o, ok := m.OutcomeBySide(side)
	if !ok {
		return 0, false
	}
	return o.Price, true
}

// DaysUntilClose returns the whole days between now and the end date.
// The second return is false when the market has no end date.
func (m *Market) DaysUntilClose(now time.Time) (float64, bool) {
	if m.EndDate == nil {
		return 0, false
	}
	return m.EndDate.Sub(now).Hours() / 24, true
}

// HoursUntilClose returns the hours between now and the end date.
func (m *Market) HoursUntilClose(now time.Time) (float64, bool) {
	if m.EndDate == nil {
		return 0, false
	}
	return m.EndDate.Sub(now).Hours(), true
}

// ValidateShape checks that the market is a binary market with both YES and
// NO prices present. Markets failing this check never enter the pipeline.
func (m *Market) ValidateShape() error {
	if !m.IsBinary() {
		return ErrInvalidMarketShape
	}
	if _, ok := m.YesPrice(); !ok {
		return ErrInvalidMarketShape
	}
	if _, ok := m.NoPrice(); !ok {
		return ErrInvalidMarketShape
	}
	return nil
}
