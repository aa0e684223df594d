package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MarketsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_discovery_markets_fetched_total",
		Help: "Markets fetched from the Gamma API",
	})

	InvalidMarketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_discovery_invalid_markets_total",
		Help: "Markets dropped because their wire shape did not parse",
	})

	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_discovery_fetch_errors_total",
		Help: "Failed Gamma API fetches",
	})

	FetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_discovery_fetch_duration_seconds",
		Help:    "Gamma API fetch latency",
		Buckets: prometheus.DefBuckets,
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_discovery_cache_hits_total",
		Help: "Market lookups served from the cycle cache",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_discovery_cache_misses_total",
		Help: "Market lookups that missed the cycle cache",
	})
)
