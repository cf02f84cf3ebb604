package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rmarchant/daysim/broker"
	"github.com/rmarchant/daysim/config"
	"github.com/rmarchant/daysim/feed"
	"github.com/rmarchant/daysim/journal"
	"github.com/rmarchant/daysim/replay"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a trading day from a config file",
	Long: `Load one trading day of bars, fund the configured accounts and step
the clock through the session. With a script file, scripted orders fire as
their timestamps come due; without one the day simply plays out.

Examples:
  daysim run --config daysim.yaml
  daysim run --config daysim.yaml --script orders.csv`,
	RunE: runRun,
}

var (
	runConfigPath string
	runScriptPath string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runScriptPath, "script", "s", "", "CSV event script to fire during playback")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logrus.StandardLogger()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	source, err := barSource(cfg, log)
	if err != nil {
		return err
	}
	j, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	session, err := cfg.TradingSession()
	if err != nil {
		return err
	}
	day, err := cfg.Day()
	if err != nil {
		return err
	}

	b, err := broker.New(ctx, source, cfg.MarketAssets(),
		broker.WithDay(day),
		broker.WithSession(session),
		broker.WithJournal(j),
		broker.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("load trading day: %w", err)
	}

	for _, a := range cfg.Accounts {
		if err := b.OpenAccount(a.Name, a.Deposit); err != nil {
			return fmt.Errorf("open account %s: %w", a.Name, err)
		}
	}

	var events []replay.Event
	var res replay.Result
	if runScriptPath != "" {
		res, err = replay.CSVFile(ctx, b, runScriptPath, log)
	} else {
		res, err = replay.Run(ctx, b, events, log)
	}
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	fmt.Printf("Replayed %s: %d steps, %d opened, %d closed, %d skipped\n",
		b.Day().Format("2006-01-02"), res.Steps, res.Opened, res.Closed, res.Skipped)
	for _, a := range cfg.Accounts {
		bal, err := b.Balance(a.Name)
		if err != nil {
			return err
		}
		eq, err := b.Equity(a.Name)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: balance $%.2f, equity $%.2f, P/L $%.2f\n",
			a.Name, bal, eq, eq-a.Deposit)
	}
	return nil
}

func barSource(cfg *config.Config, log logrus.FieldLogger) (feed.BarSource, error) {
	switch cfg.Data.Provider {
	case "csv":
		return &feed.CSVDir{Dir: cfg.Data.Dir, Log: log}, nil
	case "alpaca":
		c := feed.AlpacaFromEnv()
		if cfg.Data.BaseURL != "" {
			c.BaseURL = cfg.Data.BaseURL
		}
		c.Log = log
		return c, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.Data.Provider)
	}
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.ClosesFile, cfg.Journal.BalancesFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}
