package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "autopilot",
	Short: "Polymarket autonomous trading bot",
	Long: `Polymarket autonomous trading bot that scans binary-outcome markets,
scores them quantitatively, analyzes trading patterns, blends probability
estimates, and manages a portfolio of sized, hedged positions.

Each cycle the bot monitors open positions for stop-loss and take-profit
exits, scans the Gamma API for candidate markets, and opens new positions
when the estimated edge clears the acceptance thresholds. Orders run in
paper mode by default; live mode submits signed orders to the CLOB.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
