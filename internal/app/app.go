package app

import (
	"context"
	"sync"

	"github.com/mselser95/polymarket-autopilot/internal/engine"
	"github.com/mselser95/polymarket-autopilot/internal/execution"
	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/internal/storage"
	"github.com/mselser95/polymarket-autopilot/pkg/config"
	"github.com/mselser95/polymarket-autopilot/pkg/healthprobe"
	"github.com/mselser95/polymarket-autopilot/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	engine        *engine.Engine
	ledger        *portfolio.Ledger
	executor      *execution.Executor
	storage       storage.Storage
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Engine exposes the trading engine, for one-shot cycle commands.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Ledger exposes the portfolio ledger.
func (a *App) Ledger() *portfolio.Ledger {
	return a.ledger
}
