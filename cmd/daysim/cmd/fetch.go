package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rmarchant/daysim/feed"
	"github.com/rmarchant/daysim/market"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download one day of minute bars for offline replay",
	Long: `Fetch minute bars from Alpaca for one trading day and write them in
the layout the csv provider reads: <dir>/<SYMBOL>/<YYYY-MM-DD>.csv.

Credentials come from APCA_API_KEY_ID and APCA_API_SECRET_KEY (a .env
file next to the binary works too).

Example:
  daysim fetch --symbol AAPL --symbol MSFT --date 2021-03-15 --out ./data`,
	RunE: runFetch,
}

var (
	fetchSymbols []string
	fetchDate    string
	fetchOut     string
	fetchBaseURL string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVarP(&fetchSymbols, "symbol", "s", nil, "symbol to fetch (repeatable, required)")
	fetchCmd.Flags().StringVarP(&fetchDate, "date", "d", "", "trading day as YYYY-MM-DD (required)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "./data", "output directory")
	fetchCmd.Flags().StringVar(&fetchBaseURL, "base-url", "", "override the Alpaca data API base URL")
	fetchCmd.MarkFlagRequired("symbol")
	fetchCmd.MarkFlagRequired("date")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logrus.StandardLogger()

	session := market.DefaultSession()
	day, err := time.ParseInLocation("2006-01-02", fetchDate, session.Loc)
	if err != nil {
		return fmt.Errorf("bad date %q: %w", fetchDate, err)
	}
	start, end := session.Window(day)

	client := feed.AlpacaFromEnv()
	if fetchBaseURL != "" {
		client.BaseURL = fetchBaseURL
	}
	client.Log = log

	for _, sym := range fetchSymbols {
		bars, err := client.Bars(ctx, sym, start, end)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", sym, err)
		}
		if len(bars) == 0 {
			log.WithField("symbol", sym).Warn("no bars returned")
			continue
		}

		dir := filepath.Join(fetchOut, sym)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		path := filepath.Join(dir, fetchDate+".csv")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := feed.WriteCSV(f, bars); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("✓ %s: %d bars -> %s\n", sym, len(bars), path)
	}
	return nil
}
