package cmd

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daysim",
	Short: "A single-day market playback and trading simulator",
	Long: `Daysim replays one trading day of minute bars and simulates spread-
adjusted fills against simple cash accounts.

It provides tools for:
  - Replaying scripted trading days from local CSV bars or Alpaca
  - Managing simulated accounts with fractional positions
  - Journaling closed positions and balance history to CSV or SQLite
  - Fetching minute bars for offline replay`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Alpaca credentials and other settings may live in a .env file.
		_ = godotenv.Load()

		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
