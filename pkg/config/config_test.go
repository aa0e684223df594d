package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ExecutionMode != "paper" {
		t.Errorf("expected default execution mode paper, got %q", cfg.ExecutionMode)
	}
	if cfg.MinEdgeThreshold != 0.10 {
		t.Errorf("expected default edge threshold 0.10, got %f", cfg.MinEdgeThreshold)
	}
	if cfg.MinConfidence != 0.70 {
		t.Errorf("expected default min confidence 0.70, got %f", cfg.MinConfidence)
	}
	if cfg.MaxPositionSize != 0.15 {
		t.Errorf("expected default max position size 0.15, got %f", cfg.MaxPositionSize)
	}
	if cfg.MaxConcurrentPositions != 3 {
		t.Errorf("expected default max concurrent positions 3, got %d", cfg.MaxConcurrentPositions)
	}
	if !cfg.HedgeEnabled {
		t.Error("expected hedging enabled by default")
	}
	if cfg.CycleInterval != 5*time.Minute {
		t.Errorf("expected default cycle interval 5m, got %v", cfg.CycleInterval)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	os.Setenv("MIN_EDGE_THRESHOLD", "0.05")
	os.Setenv("SCORE_TOP_N", "10")
	os.Setenv("HEDGE_ENABLED", "false")
	t.Cleanup(func() {
		os.Unsetenv("MIN_EDGE_THRESHOLD")
		os.Unsetenv("SCORE_TOP_N")
		os.Unsetenv("HEDGE_ENABLED")
	})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MinEdgeThreshold != 0.05 {
		t.Errorf("expected edge threshold 0.05, got %f", cfg.MinEdgeThreshold)
	}
	if cfg.ScoreTopN != 10 {
		t.Errorf("expected top N 10, got %d", cfg.ScoreTopN)
	}
	if cfg.HedgeEnabled {
		t.Error("expected hedging disabled")
	}
}

func TestLoadFromEnv_MalformedValueFallsBack(t *testing.T) {
	os.Setenv("MAX_CONCURRENT_POSITIONS", "lots")
	t.Cleanup(func() {
		os.Unsetenv("MAX_CONCURRENT_POSITIONS")
	})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MaxConcurrentPositions != 3 {
		t.Errorf("expected fallback to default 3, got %d", cfg.MaxConcurrentPositions)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad-execution-mode", func(c *Config) { c.ExecutionMode = "yolo" }},
		{"negative-capital", func(c *Config) { c.InitialCapital = -5 }},
		{"edge-out-of-range", func(c *Config) { c.MinEdgeThreshold = 1.5 }},
		{"position-size-zero", func(c *Config) { c.MaxPositionSize = 0 }},
		{"kill-switch-out-of-range", func(c *Config) { c.KillSwitchDrawdown = 2 }},
		{"inverted-price-band", func(c *Config) { c.FilterMinPrice = 0.9; c.FilterMaxPrice = 0.1 }},
		{"live-without-creds", func(c *Config) { c.ExecutionMode = "live" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
