package discovery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/cache"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// marketCacheTTL keeps per-market lookups cheap within a cycle without
// serving stale prices across cycles.
const marketCacheTTL = 60 * time.Second

// Config holds discovery service configuration.
type Config struct {
	Client      *Client
	Cache       cache.Cache
	MarketLimit int
	Logger      *zap.Logger
}

// Service serves market snapshots to the trading cycle.
type Service struct {
	client      *Client
	cache       cache.Cache
	marketLimit int
	logger      *zap.Logger
}

// New creates a discovery service.
func New(cfg *Config) *Service {
	return &Service{
		client:      cfg.Client,
		cache:       cfg.Cache,
		marketLimit: cfg.MarketLimit,
		logger:      cfg.Logger,
	}
}

// ListMarkets fetches the active market set, sorted by volume, and caches
// each market by ID for the rest of the cycle.
func (s *Service) ListMarkets(ctx context.Context) ([]*types.Market, error) {
	start := time.Now()
	defer func() {
		FetchDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	markets, err := s.client.FetchActiveMarkets(ctx, s.marketLimit, 0, "volume24hr")
	if err != nil {
		FetchErrorsTotal.Inc()
		return nil, fmt.Errorf("fetch active markets: %w", err)
	}
	MarketsFetchedTotal.Add(float64(len(markets)))

	if s.cache != nil {
		for _, m := range markets {
			s.cache.Set(marketKey(m.ID), m, marketCacheTTL)
		}
	}

	s.logger.Debug("markets-listed",
		zap.Int("count", len(markets)),
		zap.Duration("duration", time.Since(start)))

	return markets, nil
}

// GetMarket returns a single market, preferring the cycle cache. Cache
// misses fall back to a list fetch, since Gamma has no cheap by-ID lookup
// for the fields we need.
func (s *Service) GetMarket(ctx context.Context, marketID string) (*types.Market, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(marketKey(marketID)); ok {
			if m, ok := v.(*types.Market); ok {
				CacheHitsTotal.Inc()
				return m, nil
			}
		}
	}
	CacheMissesTotal.Inc()

	markets, err := s.ListMarkets(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range markets {
		if m.ID == marketID {
			return m, nil
		}
	}
	return nil, fmt.Errorf("market %s not found", marketID)
}

func marketKey(id string) string {
	return "market:" + id
}
