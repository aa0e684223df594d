package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Display the running bot's portfolio",
	Long: `Fetches the portfolio snapshot from a running bot instance and
displays capital, PnL, and every open position.

The bot exposes its portfolio at /api/portfolio on HTTP_PORT; this
command queries the local instance.

Examples:
  # Portfolio of the local bot
  go run . positions

  # A bot listening on another port
  HTTP_PORT=9090 go run . positions`,
	RunE: runPositions,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(positionsCmd)
}

func runPositions(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	snap, err := fetchSnapshot("http://localhost:" + cfg.HTTPPort)
	if err != nil {
		return fmt.Errorf("fetch portfolio: %w (is the bot running?)", err)
	}

	fmt.Printf("\nCapital:   $%.2f initial, $%.2f current, $%.2f available\n",
		snap.InitialCapital, snap.CurrentCapital, snap.AvailableCapital)
	fmt.Printf("Equity:    $%.2f (drawdown %.1f%%)\n", snap.Equity, snap.Drawdown*100)
	fmt.Printf("PnL:       $%.2f total, $%.2f today\n", snap.TotalPnL, snap.TodayPnL)
	fmt.Printf("Positions: %d open, %d closed\n",
		len(snap.OpenPositions), snap.ClosedPositions)

	if len(snap.OpenPositions) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Market", "Side", "Shares", "Entry", "Current", "Unrealized", "Stop", "Target", "Age")

	now := time.Now()
	for _, p := range snap.OpenPositions {
		current := "-"
		unrealized := "-"
		if p.PriceKnown {
			current = fmt.Sprintf("%.3f", p.CurrentPrice)
			unrealized = fmt.Sprintf("$%.2f", p.UnrealizedPnL())
		}
		table.Append(
			truncate(p.Question, 40),
			string(p.Side),
			fmt.Sprintf("%.2f", p.Shares),
			fmt.Sprintf("%.3f", p.EntryPrice),
			current,
			unrealized,
			fmt.Sprintf("%.3f", p.StopLoss),
			fmt.Sprintf("%.3f", p.TakeProfit),
			now.Sub(p.OpenedAt).Round(time.Minute).String(),
		)
	}

	table.Render()

	return nil
}

func fetchSnapshot(baseURL string) (*portfolio.Snapshot, error) {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(baseURL + "/api/portfolio")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var snap portfolio.Snapshot
	err = json.NewDecoder(resp.Body).Decode(&snap)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return &snap, nil
}
