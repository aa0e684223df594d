package execution

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const fillTolerance = 0.001

// FillTracker polls order status with exponential backoff until the
// order fills or the timeout elapses.
type FillTracker struct {
	orderClient    *OrderClient
	logger         *zap.Logger
	initialBackoff time.Duration
	maxBackoff     time.Duration
	backoffMult    float64
	fillTimeout    time.Duration
}

// FillTrackerConfig holds fill verification tuning.
type FillTrackerConfig struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffMult    float64
	FillTimeout    time.Duration
}

// FillStatus is the outcome of verifying one order.
type FillStatus struct {
	OrderID      string
	Status       string
	OriginalSize float64
	SizeFilled   float64
	FillPrice    float64
	FullyFilled  bool
	VerifiedAt   time.Time
}

// NewFillTracker creates a FillTracker; zero config fields get usable defaults.
func NewFillTracker(orderClient *OrderClient, logger *zap.Logger, cfg *FillTrackerConfig) *FillTracker {
	ft := &FillTracker{
		orderClient:    orderClient,
		logger:         logger,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		backoffMult:    cfg.BackoffMult,
		fillTimeout:    cfg.FillTimeout,
	}
	if ft.initialBackoff <= 0 {
		ft.initialBackoff = 500 * time.Millisecond
	}
	if ft.maxBackoff <= 0 {
		ft.maxBackoff = 5 * time.Second
	}
	if ft.backoffMult <= 1 {
		ft.backoffMult = 2.0
	}
	if ft.fillTimeout <= 0 {
		ft.fillTimeout = 30 * time.Second
	}
	return ft
}

// Await blocks until the order is fully filled, the timeout elapses, or the
// context is canceled. A timeout is not an error: the returned status has
// FullyFilled false and the last observed fill amounts.
func (ft *FillTracker) Await(ctx context.Context, orderID string, expectedSize float64) (*FillStatus, error) {
	startTime := time.Now()
	timeout := time.NewTimer(ft.fillTimeout)
	defer timeout.Stop()

	status := &FillStatus{
		OrderID:      orderID,
		OriginalSize: expectedSize,
	}

	backoff := ft.initialBackoff
	attempt := 1

	for {
		resp, queryErr := ft.orderClient.GetOrder(ctx, orderID)
		if queryErr != nil {
			// Transient errors keep the retry loop going.
			ft.logger.Warn("order-query-failed-retrying",
				zap.String("order-id", orderID),
				zap.Error(queryErr),
				zap.Int("attempt", attempt))
		} else {
			status.Status = resp.Status
			status.SizeFilled = resp.SizeFilled
			status.FillPrice = resp.Price
			status.VerifiedAt = time.Now()

			if resp.SizeFilled >= resp.Size-fillTolerance {
				status.FullyFilled = true
				ft.logger.Info("order-fully-filled",
					zap.String("order-id", orderID),
					zap.Float64("size-filled", resp.SizeFilled),
					zap.Float64("fill-price", resp.Price),
					zap.Duration("duration", time.Since(startTime)),
					zap.Int("attempts", attempt))
				FillChecksTotal.WithLabelValues("filled").Inc()
				return status, nil
			}

			ft.logger.Debug("order-not-yet-filled",
				zap.String("order-id", orderID),
				zap.Float64("size-filled", resp.SizeFilled),
				zap.Float64("size-expected", resp.Size),
				zap.String("status", resp.Status))
		}

		select {
		case <-timeout.C:
			ft.logger.Warn("fill-verification-timeout",
				zap.String("order-id", orderID),
				zap.Duration("timeout", ft.fillTimeout),
				zap.Int("attempts", attempt))
			FillChecksTotal.WithLabelValues("timeout").Inc()
			return status, nil

		case <-ctx.Done():
			ft.logger.Warn("fill-verification-canceled",
				zap.String("order-id", orderID),
				zap.Error(ctx.Err()),
				zap.Int("attempts", attempt))
			return status, ctx.Err()

		case <-time.After(backoff):
			attempt++
			backoff = time.Duration(float64(backoff) * ft.backoffMult)
			if backoff > ft.maxBackoff {
				backoff = ft.maxBackoff
			}
		}
	}
}
