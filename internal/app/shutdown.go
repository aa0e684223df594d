package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to stop the engine loop
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	err = a.executor.Close()
	if err != nil {
		a.logger.Error("executor-close-error", zap.Error(err))
	}

	err = a.storage.Close()
	if err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	// Wait for all goroutines
	a.wg.Wait()

	snap := a.ledger.Snapshot()
	a.logger.Info("application-shutdown-complete",
		zap.Float64("equity", snap.Equity),
		zap.Float64("total-pnl", snap.TotalPnL),
		zap.Int("open-positions", len(snap.OpenPositions)),
		zap.Int("closed-positions", snap.ClosedPositions))

	return nil
}
