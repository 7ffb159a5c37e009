package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/commission"
	"github.com/rustyeddy/daywalker/config"
	"github.com/rustyeddy/daywalker/data"
	"github.com/rustyeddy/daywalker/journal"
	"github.com/rustyeddy/daywalker/sim"
	"github.com/rustyeddy/daywalker/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest described by a config file",
	Long: `Run loads a YAML or JSON configuration, replays the configured assets
day by day and prints a summary of the completed run.

Example:
  daywalker run -c backtest.yaml -v`,
	RunE: runBacktest,
}

var (
	runConfigPath string
	runVerbose    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to run configuration (required)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "log fills and corporate actions as they happen")

	runCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if runVerbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()
	}

	var schedule commission.Schedule
	switch cfg.Broker.Commission {
	case "", "ib_pro":
		schedule = commission.InteractiveBrokersPro()
	case "free":
		schedule = commission.Free{}
	}

	b := broker.NewSim(broker.Params{
		Cash:       cfg.Broker.Cash,
		Margin:     cfg.Broker.Margin,
		AllowShort: cfg.Broker.AllowShort,
		Schedule:   schedule,
		Logger:     logger,
	})

	start, err := cfg.StartDate()
	if err != nil {
		return err
	}
	end, err := cfg.EndDate()
	if err != nil {
		return err
	}

	m := sim.NewMarket(start, end, b)
	m.SetLogger(logger)

	for _, a := range cfg.Assets {
		asset, err := data.LoadAsset(a.Symbol, a.Bars)
		if err != nil {
			return err
		}
		if err := m.AddAsset(asset); err != nil {
			return err
		}
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	m.SetStrategy(strat)

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		m.SetJournal(j)
	}

	result, err := m.Run()
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d trading days, %d fills, %d realized gains\n",
		result.RunID, result.Days, len(result.Fills), len(result.Gains))
	fmt.Printf("final cash %.2f, long equities %.2f, short equities %.2f\n",
		result.Cash, result.LongEquities, result.ShortEquities)
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "":
		return nil, nil
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "csv":
		return journal.NewCSV(jc.FillsFile, jc.GainsFile, jc.ValuesFile)
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}
