package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daywalker",
	Short: "A daily-bar backtesting engine with point-in-time data discipline",
	Long: `Daywalker replays daily OHLCV history one trading day at a time and
drives a strategy against it without look-ahead bias.

It provides tools for:
  - Backtesting strategies against daily bar files (CSV, xz, zip)
  - Limit-on-open and limit-on-close order matching at the auction prints
  - FIFO tax-lot accounting with long/short-term capital gains
  - Dividends, splits and commission modeling
  - Journaling fills, gains and the daily value curve to SQLite or CSV`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
