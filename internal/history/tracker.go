// Package history keeps a short rolling window of price and volume
// observations per market, recorded once per trading cycle, and derives the
// trend context the pattern detectors consume.
package history

import (
	"math"
	"sync"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

const (
	// defaultWindow bounds memory per market; detectors need at most a
	// handful of observations.
	defaultWindow = 20

	// volumeSpikeFactor over the trailing average counts as a spike.
	volumeSpikeFactor = 2.0
	// flatPriceDelta is the move below which a price counts as unchanged.
	flatPriceDelta = 0.02
)

type series struct {
	prices  []float64
	volumes []float64
}

// Tracker records per-market observations across cycles.
type Tracker struct {
	mu     sync.Mutex
	window int
	byID   map[string]*series
}

// NewTracker creates a tracker with the default window size.
func NewTracker() *Tracker {
	return &Tracker{
		window: defaultWindow,
		byID:   make(map[string]*series),
	}
}

// Observe appends the market's current yes price and volume to its series.
// Markets without a yes price are skipped.
func (t *Tracker) Observe(m *types.Market) {
	price, ok := m.YesPrice()
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.byID[m.ID]
	if !ok {
		s = &series{}
		t.byID[m.ID] = s
	}
	s.prices = append(s.prices, price)
	s.volumes = append(s.volumes, m.Volume)
	if len(s.prices) > t.window {
		s.prices = s.prices[1:]
		s.volumes = s.volumes[1:]
	}
}

// Prices returns a copy of the market's price series, oldest first.
func (t *Tracker) Prices(marketID string) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.byID[marketID]
	if !ok {
		return nil
	}
	return append([]float64(nil), s.prices...)
}

// Volumes returns a copy of the market's volume series, oldest first.
func (t *Tracker) Volumes(marketID string) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.byID[marketID]
	if !ok {
		return nil
	}
	return append([]float64(nil), s.volumes...)
}

// VolumeSpike reports whether the latest volume observation exceeds the
// trailing average by the spike factor. Needs at least three observations.
func (t *Tracker) VolumeSpike(marketID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.byID[marketID]
	if !ok || len(s.volumes) < 3 {
		return false
	}

	n := len(s.volumes)
	var trailing float64
	for _, v := range s.volumes[:n-1] {
		trailing += v
	}
	trailing /= float64(n - 1)
	return trailing > 0 && s.volumes[n-1] > trailing*volumeSpikeFactor
}

// FlatPrice reports whether the price barely moved over the last two
// observations.
func (t *Tracker) FlatPrice(marketID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.byID[marketID]
	if !ok || len(s.prices) < 2 {
		return false
	}

	n := len(s.prices)
	return math.Abs(s.prices[n-1]-s.prices[n-2]) < flatPriceDelta
}

// Forget drops a market's series, for markets that left the tradeable set.
func (t *Tracker) Forget(marketID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byID, marketID)
}
