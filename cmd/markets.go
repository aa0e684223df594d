package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mselser95/polymarket-autopilot/internal/discovery"
	"github.com/mselser95/polymarket-autopilot/internal/filter"
	"github.com/mselser95/polymarket-autopilot/internal/scorer"
	"github.com/mselser95/polymarket-autopilot/pkg/cache"
	"github.com/mselser95/polymarket-autopilot/pkg/config"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Scan and score active markets",
	Long: `Fetches active binary markets from the Gamma API, applies the
configured liquidity, volume, time-to-close and price-band filters, and
prints the surviving candidates ranked by composite score.

Examples:
  # Scored candidates after filtering (default)
  go run . markets

  # Everything the API returned, unfiltered and unscored
  go run . markets --all`,
	RunE: runMarkets,
}

//nolint:gochecknoglobals // Cobra boilerplate
var marketsShowAll bool

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(marketsCmd)
	marketsCmd.Flags().BoolVar(&marketsShowAll, "all", false, "Show all markets, skipping filters and scoring")
}

func runMarkets(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	marketCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}

	svc := discovery.New(&discovery.Config{
		Client:      discovery.NewClient(cfg.MarketAPIURL, logger),
		Cache:       marketCache,
		MarketLimit: cfg.MarketLimit,
		Logger:      logger,
	})

	markets, err := svc.ListMarkets(context.Background())
	if err != nil {
		return fmt.Errorf("list markets: %w", err)
	}

	if marketsShowAll {
		printAllMarkets(markets)
		return nil
	}

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

	eligible, stats := marketFilter.Apply(markets)
	candidates := marketScorer.Rank(eligible)

	fmt.Printf("\n%d markets fetched, %d passed filters, %d candidates\n",
		len(markets), stats.Passed, len(candidates))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Market", "Category", "Yes", "Liquidity", "Volume", "Days", "Score")

	now := time.Now()
	for i, c := range candidates {
		m := c.Market
		yes, _ := m.YesPrice()
		days := "-"
		if d, ok := m.DaysUntilClose(now); ok {
			days = fmt.Sprintf("%.1f", d)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(m.Question, 50),
			m.Category,
			fmt.Sprintf("%.3f", yes),
			fmt.Sprintf("$%.0f", m.Liquidity),
			fmt.Sprintf("$%.0f", m.Volume),
			days,
			fmt.Sprintf("%.1f", c.Score),
		)
	}

	table.Render()

	return nil
}

func printAllMarkets(markets []*types.Market) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Market", "Category", "Yes", "Liquidity", "Volume", "Binary")

	for i, m := range markets {
		yes := "-"
		if p, ok := m.YesPrice(); ok {
			yes = fmt.Sprintf("%.3f", p)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(m.Question, 50),
			m.Category,
			yes,
			fmt.Sprintf("$%.0f", m.Liquidity),
			fmt.Sprintf("$%.0f", m.Volume),
			fmt.Sprintf("%t", m.IsBinary()),
		)
	}

	table.Render()
	fmt.Printf("\n%d markets\n", len(markets))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
