package app

import (
	"context"
	"fmt"

	"github.com/mselser95/polymarket-autopilot/internal/discovery"
	"github.com/mselser95/polymarket-autopilot/internal/engine"
	"github.com/mselser95/polymarket-autopilot/internal/estimator"
	"github.com/mselser95/polymarket-autopilot/internal/execution"
	"github.com/mselser95/polymarket-autopilot/internal/filter"
	"github.com/mselser95/polymarket-autopilot/internal/hedge"
	"github.com/mselser95/polymarket-autopilot/internal/history"
	"github.com/mselser95/polymarket-autopilot/internal/news"
	"github.com/mselser95/polymarket-autopilot/internal/patterns"
	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/internal/probability"
	"github.com/mselser95/polymarket-autopilot/internal/risk"
	"github.com/mselser95/polymarket-autopilot/internal/scorer"
	"github.com/mselser95/polymarket-autopilot/internal/storage"
	"github.com/mselser95/polymarket-autopilot/pkg/cache"
	"github.com/mselser95/polymarket-autopilot/pkg/config"
	"github.com/mselser95/polymarket-autopilot/pkg/healthprobe"
	"github.com/mselser95/polymarket-autopilot/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance with all components wired.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	appCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	discoveryService := setupDiscoveryService(cfg, logger, appCache)
	ledger := setupLedger(cfg, logger)

	tradeStorage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	executor, err := setupExecutor(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup executor: %w", err)
	}

	tradingEngine, err := setupEngine(cfg, logger, appCache, discoveryService, ledger, executor, tradeStorage)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup engine: %w", err)
	}

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Portfolio:     ledger,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		engine:        tradingEngine,
		ledger:        ledger,
		executor:      executor,
		storage:       tradeStorage,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupDiscoveryService(cfg *config.Config, logger *zap.Logger, appCache cache.Cache) *discovery.Service {
	client := discovery.NewClient(cfg.MarketAPIURL, logger)
	return discovery.New(&discovery.Config{
		Client:      client,
		Cache:       appCache,
		MarketLimit: cfg.MarketLimit,
		Logger:      logger,
	})
}

func setupLedger(cfg *config.Config, logger *zap.Logger) *portfolio.Ledger {
	return portfolio.NewLedger(cfg.InitialCapital, portfolio.Limits{
		MaxConcurrentPositions: cfg.MaxConcurrentPositions,
		MaxDailyLoss:           cfg.MaxDailyLoss,
		KillSwitchDrawdown:     cfg.KillSwitchDrawdown,
	}, logger)
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupExecutor(cfg *config.Config, logger *zap.Logger) (*execution.Executor, error) {
	if cfg.ExecutionMode != execution.ModeLive {
		return execution.New(&execution.Config{
			Mode:   cfg.ExecutionMode,
			Logger: logger,
		})
	}

	// Polymarket proxy wallets sign through a Gnosis Safe.
	signatureType := 0
	if cfg.PolymarketProxyAddr != "" {
		signatureType = 2
	}

	orderClient, err := execution.NewOrderClient(&execution.OrderClientConfig{
		APIKey:        cfg.PolymarketAPIKey,
		Secret:        cfg.PolymarketSecret,
		Passphrase:    cfg.PolymarketPassphrase,
		PrivateKey:    cfg.PolymarketPrivateKey,
		ProxyAddress:  cfg.PolymarketProxyAddr,
		SignatureType: signatureType,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create order client: %w", err)
	}

	fillTracker := execution.NewFillTracker(orderClient, logger, nil)

	return execution.New(&execution.Config{
		Mode:        execution.ModeLive,
		OrderClient: orderClient,
		FillTracker: fillTracker,
		Logger:      logger,
	})
}

func setupEngine(
	cfg *config.Config,
	logger *zap.Logger,
	appCache cache.Cache,
	discoveryService *discovery.Service,
	ledger *portfolio.Ledger,
	executor *execution.Executor,
	tradeStorage storage.Storage,
) (*engine.Engine, error) {
	marketFilter := filter.New(filter.Config{
		MinLiquidity:   cfg.FilterMinLiquidity,
		MinVolume:      cfg.FilterMinVolume,
		MinDaysToClose: cfg.FilterMinDaysToClose,
		MinPrice:       cfg.FilterMinPrice,
		MaxPrice:       cfg.FilterMaxPrice,
		Logger:         logger,
	})

	marketScorer := scorer.New(scorer.Config{
		MinScore: cfg.ScoreMin,
		TopN:     cfg.ScoreTopN,
		Logger:   logger,
	})

	blender := probability.New(probability.Config{
		MinEdgeThreshold: cfg.MinEdgeThreshold,
		MinConfidence:    cfg.MinConfidence,
		Logger:           logger,
	})

	sizer := risk.New(risk.Config{
		MaxPositionSize: cfg.MaxPositionSize,
		StopLossPct:     cfg.StopLossPct,
		TakeProfitPct:   cfg.TakeProfitPct,
		Logger:          logger,
	})

	hedger := hedge.New(hedge.Config{
		Enabled:       cfg.HedgeEnabled,
		MinConfidence: cfg.HedgeMinConfidence,
		Ratio:         cfg.HedgeRatio,
		MaxAmount:     cfg.MaxHedgeAmount,
		Logger:        logger,
	})

	engineCfg := &engine.Config{
		Source:   discoveryService,
		Filter:   marketFilter,
		Scorer:   marketScorer,
		Analyzer: patterns.NewAnalyzer(logger),
		History:  history.NewTracker(),
		News: news.New(news.Config{
			APIKey:  cfg.NewsAPIKey,
			BaseURL: cfg.NewsAPIURL,
			Cache:   appCache,
			Logger:  logger,
		}),
		Blender:  blender,
		Sizer:    sizer,
		Hedger:   hedger,
		Ledger:   ledger,
		Executor: executor,
		Storage:  tradeStorage,
		Logger:   logger,
	}

	if cfg.EstimatorAPIKey != "" {
		est, err := estimator.New(estimator.Config{
			APIKey:  cfg.EstimatorAPIKey,
			BaseURL: cfg.EstimatorBaseURL,
			Model:   cfg.EstimatorModel,
			Timeout: cfg.EstimatorTimeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create estimator: %w", err)
		}
		engineCfg.Estimator = est
	} else {
		logger.Info("estimator-disabled",
			zap.String("note", "ESTIMATOR_API_KEY not set, using neutral estimates"))
	}

	return engine.New(engineCfg), nil
}
