package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Market discovery
	MarketAPIURL string
	MarketLimit  int

	// Trading cycle
	CycleInterval time.Duration

	// Market filter
	FilterMinLiquidity   float64
	FilterMinVolume      float64
	FilterMinDaysToClose int
	FilterMinPrice       float64
	FilterMaxPrice       float64

	// Quantitative scorer
	ScoreMin  float64
	ScoreTopN int

	// Trade acceptance
	MinEdgeThreshold float64
	MinConfidence    float64

	// Position sizing
	InitialCapital  float64
	MaxPositionSize float64
	StopLossPct     float64
	TakeProfitPct   float64

	// Portfolio admission control
	MaxConcurrentPositions int
	MaxDailyLoss           float64
	KillSwitchDrawdown     float64

	// Hedging
	HedgeEnabled       bool
	HedgeMinConfidence float64
	HedgeRatio         float64
	MaxHedgeAmount     float64

	// Probability estimator
	EstimatorAPIKey  string
	EstimatorBaseURL string
	EstimatorModel   string
	EstimatorTimeout time.Duration

	// News
	NewsAPIKey string
	NewsAPIURL string

	// Execution
	ExecutionMode        string // "paper" or "live"
	PolymarketAPIKey     string
	PolymarketSecret     string
	PolymarketPassphrase string
	PolymarketPrivateKey string
	PolymarketProxyAddr  string

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Market discovery defaults
		MarketAPIURL: getEnvOrDefault("MARKET_API_URL", "https://gamma-api.polymarket.com"),
		MarketLimit:  getIntOrDefault("DISCOVERY_MARKET_LIMIT", 50),

		// Trading cycle defaults
		CycleInterval: getDurationOrDefault("CYCLE_INTERVAL", 5*time.Minute),

		// Filter defaults
		FilterMinLiquidity:   getFloat64OrDefault("FILTER_MIN_LIQUIDITY", 5000),
		FilterMinVolume:      getFloat64OrDefault("FILTER_MIN_VOLUME", 10000),
		FilterMinDaysToClose: getIntOrDefault("FILTER_MIN_DAYS_TO_CLOSE", 2),
		FilterMinPrice:       getFloat64OrDefault("FILTER_MIN_PRICE", 0.15),
		FilterMaxPrice:       getFloat64OrDefault("FILTER_MAX_PRICE", 0.85),

		// Scorer defaults
		ScoreMin:  getFloat64OrDefault("SCORE_MIN", 50),
		ScoreTopN: getIntOrDefault("SCORE_TOP_N", 5),

		// Trade acceptance defaults
		MinEdgeThreshold: getFloat64OrDefault("MIN_EDGE_THRESHOLD", 0.10),
		MinConfidence:    getFloat64OrDefault("MIN_CONFIDENCE", 0.70),

		// Sizing defaults
		InitialCapital:  getFloat64OrDefault("INITIAL_CAPITAL", 1000),
		MaxPositionSize: getFloat64OrDefault("MAX_POSITION_SIZE", 0.15),
		StopLossPct:     getFloat64OrDefault("STOP_LOSS_PCT", 0.20),
		TakeProfitPct:   getFloat64OrDefault("TAKE_PROFIT_PCT", 1.0),

		// Admission control defaults
		MaxConcurrentPositions: getIntOrDefault("MAX_CONCURRENT_POSITIONS", 3),
		MaxDailyLoss:           getFloat64OrDefault("MAX_DAILY_LOSS", 0.10),
		KillSwitchDrawdown:     getFloat64OrDefault("KILL_SWITCH_DRAWDOWN", 0.20),

		// Hedging defaults
		HedgeEnabled:       getBoolOrDefault("HEDGE_ENABLED", true),
		HedgeMinConfidence: getFloat64OrDefault("HEDGE_MIN_CONFIDENCE", 0.60),
		HedgeRatio:         getFloat64OrDefault("HEDGE_RATIO", 0.25),
		MaxHedgeAmount:     getFloat64OrDefault("MAX_HEDGE_AMOUNT", 50),

		// Estimator defaults
		EstimatorAPIKey:  os.Getenv("ESTIMATOR_API_KEY"),
		EstimatorBaseURL: getEnvOrDefault("ESTIMATOR_BASE_URL", "https://api.openai.com/v1"),
		EstimatorModel:   getEnvOrDefault("ESTIMATOR_MODEL", "gpt-4o-mini"),
		EstimatorTimeout: getDurationOrDefault("ESTIMATOR_TIMEOUT", 30*time.Second),

		// News defaults
		NewsAPIKey: os.Getenv("NEWS_API_KEY"),
		NewsAPIURL: getEnvOrDefault("NEWS_API_URL", "https://newsapi.org/v2"),

		// Execution defaults
		ExecutionMode:        getEnvOrDefault("EXECUTION_MODE", "paper"),
		PolymarketAPIKey:     os.Getenv("POLYMARKET_API_KEY"),
		PolymarketSecret:     os.Getenv("POLYMARKET_SECRET"),
		PolymarketPassphrase: os.Getenv("POLYMARKET_PASSPHRASE"),
		PolymarketPrivateKey: os.Getenv("POLYMARKET_PRIVATE_KEY"),
		PolymarketProxyAddr:  os.Getenv("POLYMARKET_PROXY_ADDRESS"),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "autopilot"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "autopilot123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "polymarket_autopilot"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.MarketAPIURL == "" {
		return fmt.Errorf("MARKET_API_URL cannot be empty")
	}

	if c.InitialCapital <= 0 {
		return fmt.Errorf("INITIAL_CAPITAL must be positive, got %f", c.InitialCapital)
	}

	if c.MinEdgeThreshold < 0 || c.MinEdgeThreshold >= 1 {
		return fmt.Errorf("MIN_EDGE_THRESHOLD must be in [0, 1), got %f", c.MinEdgeThreshold)
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("MIN_CONFIDENCE must be in [0, 1], got %f", c.MinConfidence)
	}

	if c.MaxPositionSize <= 0 || c.MaxPositionSize > 1 {
		return fmt.Errorf("MAX_POSITION_SIZE must be in (0, 1], got %f", c.MaxPositionSize)
	}

	if c.KillSwitchDrawdown <= 0 || c.KillSwitchDrawdown > 1 {
		return fmt.Errorf("KILL_SWITCH_DRAWDOWN must be in (0, 1], got %f", c.KillSwitchDrawdown)
	}

	if c.FilterMinPrice < 0 || c.FilterMaxPrice > 1 || c.FilterMinPrice >= c.FilterMaxPrice {
		return fmt.Errorf("filter price band invalid: [%f, %f]", c.FilterMinPrice, c.FilterMaxPrice)
	}

	if c.ExecutionMode != "paper" && c.ExecutionMode != "live" {
		return fmt.Errorf("EXECUTION_MODE must be 'paper' or 'live', got %q", c.ExecutionMode)
	}

	if c.ExecutionMode == "live" {
		if c.PolymarketAPIKey == "" || c.PolymarketSecret == "" || c.PolymarketPassphrase == "" {
			return fmt.Errorf("live mode requires POLYMARKET_API_KEY, POLYMARKET_SECRET and POLYMARKET_PASSPHRASE")
		}
		if c.PolymarketPrivateKey == "" {
			return fmt.Errorf("live mode requires POLYMARKET_PRIVATE_KEY")
		}
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
