package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// Execution modes.
const (
	ModePaper = "paper"
	ModeLive  = "live"
)

// Executor places orders, either simulated (paper) or on the CLOB (live).
type Executor struct {
	mode        string
	logger      *zap.Logger
	orderClient *OrderClient
	fillTracker *FillTracker
	now         func() time.Time

	mu             sync.Mutex
	notionalTraded float64
	ordersPlaced   int
	ordersFailed   int
}

// Config holds executor configuration.
type Config struct {
	Mode        string
	OrderClient *OrderClient // required for live mode
	FillTracker *FillTracker // optional fill verification for live mode
	Logger      *zap.Logger
}

// New creates an executor; live mode requires an order client.
func New(cfg *Config) (*Executor, error) {
	switch cfg.Mode {
	case ModePaper:
	case ModeLive:
		if cfg.OrderClient == nil {
			return nil, fmt.Errorf("live execution requires an order client")
		}
	default:
		return nil, fmt.Errorf("unknown execution mode: %s", cfg.Mode)
	}

	return &Executor{
		mode:        cfg.Mode,
		logger:      cfg.Logger,
		orderClient: cfg.OrderClient,
		fillTracker: cfg.FillTracker,
		now:         time.Now,
	}, nil
}

// Mode returns the configured execution mode.
func (e *Executor) Mode() string {
	return e.mode
}

// PlaceOrder executes one order request and reports the fill.
func (e *Executor) PlaceOrder(ctx context.Context, req *types.OrderRequest) (*types.OrderResult, error) {
	if req.Shares <= 0 || req.Price <= 0 {
		return nil, fmt.Errorf("order for market %s has non-positive price or size", req.MarketID)
	}

	start := e.now()
	var (
		result *types.OrderResult
		err    error
	)
	switch e.mode {
	case ModePaper:
		result = e.placePaper(req)
	case ModeLive:
		result, err = e.placeLive(ctx, req)
	}
	OrderLatencySeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		e.mu.Lock()
		e.ordersFailed++
		e.mu.Unlock()
		OrderFailuresTotal.Inc()
		return nil, err
	}

	e.mu.Lock()
	e.ordersPlaced++
	e.notionalTraded += result.FillShares * result.FillPrice
	notional := e.notionalTraded
	e.mu.Unlock()

	OrdersPlacedTotal.WithLabelValues(e.mode, string(req.Intent)).Inc()
	NotionalTradedUSD.WithLabelValues(e.mode).Add(result.FillShares * result.FillPrice)

	e.logger.Info("order-executed",
		zap.String("mode", e.mode),
		zap.String("market-id", req.MarketID),
		zap.String("side", string(req.Side)),
		zap.String("intent", string(req.Intent)),
		zap.Bool("hedge", req.Hedge),
		zap.String("order-id", result.OrderID),
		zap.Float64("fill-price", result.FillPrice),
		zap.Float64("fill-shares", result.FillShares),
		zap.Float64("cumulative-notional-usd", notional))

	return result, nil
}

// placePaper simulates an immediate full fill at the requested price.
func (e *Executor) placePaper(req *types.OrderRequest) *types.OrderResult {
	return &types.OrderResult{
		OrderID:    "paper-" + uuid.NewString(),
		Success:    true,
		Simulated:  true,
		FilledAt:   e.now(),
		FillPrice:  req.Price,
		FillShares: req.Shares,
	}
}

// placeLive signs and submits the order, then verifies the fill when a
// tracker is configured.
func (e *Executor) placeLive(ctx context.Context, req *types.OrderRequest) (*types.OrderResult, error) {
	resp, err := e.orderClient.PlaceOrder(ctx, req)
	if err != nil {
		e.logger.Error("order-placement-failed",
			zap.String("market-id", req.MarketID),
			zap.Error(err))
		return nil, err
	}

	result := &types.OrderResult{
		OrderID:    resp.OrderID,
		Success:    true,
		FilledAt:   e.now(),
		FillPrice:  resp.Price,
		FillShares: resp.Size,
	}
	if result.FillPrice == 0 {
		result.FillPrice = req.Price
	}
	if result.FillShares == 0 {
		result.FillShares = req.Shares
	}

	if e.fillTracker != nil {
		status, ferr := e.fillTracker.Await(ctx, resp.OrderID, req.Shares)
		if ferr != nil {
			return nil, ferr
		}
		if status.FullyFilled {
			result.FilledAt = status.VerifiedAt
			if status.FillPrice > 0 {
				result.FillPrice = status.FillPrice
			}
			if status.SizeFilled > 0 {
				result.FillShares = status.SizeFilled
			}
		} else {
			e.logger.Warn("order-fill-unverified",
				zap.String("order-id", resp.OrderID),
				zap.String("market-id", req.MarketID),
				zap.Float64("size-filled", status.SizeFilled))
		}
	}

	return result, nil
}

// Stats reports cumulative execution counters.
func (e *Executor) Stats() (placed, failed int, notionalUSD float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ordersPlaced, e.ordersFailed, e.notionalTraded
}

// Close logs the final execution totals.
func (e *Executor) Close() error {
	e.mu.Lock()
	placed := e.ordersPlaced
	failed := e.ordersFailed
	notional := e.notionalTraded
	e.mu.Unlock()

	e.logger.Info("executor-closed",
		zap.String("mode", e.mode),
		zap.Int("orders-placed", placed),
		zap.Int("orders-failed", failed),
		zap.Float64("notional-traded-usd", notional))
	return nil
}
