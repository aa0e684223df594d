package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mselser95/polymarket-autopilot/internal/app"
	"github.com/mselser95/polymarket-autopilot/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run a single trading cycle and exit",
	Long: `Runs one full trading cycle (monitor, scan, analyze, open) and exits.

Useful for cron-style scheduling or for inspecting what the bot would do
right now without starting the long-running loop.

Examples:
  # Dry scan with paper execution (default)
  go run . cycle

  # One live cycle
  EXECUTION_MODE=live go run . cycle`,
	RunE: runCycle,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(cycleCmd)
}

func runCycle(cmd *cobra.Command, args []string) error {
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

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer func() {
		_ = application.Shutdown()
	}()

	rec, err := application.Engine().RunCycle(context.Background())
	if err != nil {
		return fmt.Errorf("run cycle: %w", err)
	}

	fmt.Printf("\nCycle %s finished in %s\n", rec.ID, rec.Duration)
	fmt.Printf("  Markets scanned:   %d\n", rec.MarketsScanned)
	fmt.Printf("  Candidates ranked: %d\n", rec.CandidatesRanked)
	fmt.Printf("  Signals accepted:  %d\n", rec.SignalsAccepted)
	fmt.Printf("  Positions opened:  %d\n", rec.PositionsOpened)
	fmt.Printf("  Positions closed:  %d\n", rec.PositionsClosed)
	fmt.Printf("  Equity:            $%.2f\n", rec.Equity)
	fmt.Printf("  Available capital: $%.2f\n", rec.AvailableCapital)

	return nil
}
