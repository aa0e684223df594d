package storage

import (
	"context"
	"time"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
)

// CycleRecord summarizes one trading cycle for persistence.
type CycleRecord struct {
	ID               string
	StartedAt        time.Time
	Duration         time.Duration
	MarketsScanned   int
	CandidatesRanked int
	SignalsAccepted  int
	PositionsOpened  int
	PositionsClosed  int
	Equity           float64
	AvailableCapital float64
	Drawdown         float64
}

// Storage persists positions and cycle summaries.
type Storage interface {
	// StorePosition records a newly opened position.
	StorePosition(ctx context.Context, pos *portfolio.Position) error

	// UpdatePosition records the terminal state of a closed position.
	UpdatePosition(ctx context.Context, pos *portfolio.Position) error

	// StoreCycle records a cycle summary.
	StoreCycle(ctx context.Context, rec *CycleRecord) error

	// Close closes the storage connection.
	Close() error
}
