package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/tickframe/backtest/internal/engine"
	"github.com/tickframe/backtest/internal/logger"
	"github.com/tickframe/backtest/internal/store"
	"github.com/tickframe/backtest/internal/types"
	"github.com/tickframe/backtest/pkg/utils"
)

// passthroughStrategy drives a constant signal over every row. It exists
// so the CLI has a usable default when no strategy plugin is wired in;
// real strategies are expected to implement boundary.Strategy themselves
// and call into internal/engine directly (§1's "out of scope" boundary).
type passthroughStrategy struct {
	signal types.Signal
	bar    *progressbar.ProgressBar
}

func (s *passthroughStrategy) OnBars(bars types.BarSnapshot) ([]types.Signal, error) {
	out := make([]types.Signal, bars.NumBars())
	for i := range out {
		out[i] = s.signal
	}
	if s.bar != nil {
		_ = s.bar.Add(bars.NumBars())
	}
	return out, nil
}

func (s *passthroughStrategy) OnTicks(ticks types.TickSnapshot) ([]types.Signal, error) {
	out := make([]types.Signal, ticks.NumTicks())
	for i := range out {
		out[i] = s.signal
	}
	if s.bar != nil {
		_ = s.bar.Add(ticks.NumTicks())
	}
	return out, nil
}

func loadConfig(cfg *engine.Config, path string) error {
	if path == "" {
		*cfg = engine.DefaultConfig()
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	configPath := cmd.String("config")
	interval := cmd.String("interval")
	tickMode := cmd.Bool("tick-mode")
	dbPath := cmd.String("db")

	var cfg engine.Config
	if err := loadConfig(&cfg, configPath); err != nil {
		return err
	}
	if interval != "" {
		cfg.Interval = interval
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	f, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	bar := progressbar.DefaultBytes(f.Size(), fmt.Sprintf("running %s", path))
	strategy := &passthroughStrategy{signal: types.SignalFlat, bar: bar}

	var results types.Results
	if tickMode {
		results, err = engine.RunTickBacktest(path, cfg, strategy)
	} else {
		results, err = engine.RunBacktest(path, cfg, strategy)
	}
	if err != nil {
		return err
	}

	log.Info("backtest complete",
		zap.String("run_id", results.RunID),
		zap.Float64("total_pnl", results.TotalPnL),
		zap.Int("num_trades", results.NumTrades),
		zap.Float64("sharpe_ratio", results.SharpeRatio),
	)

	fmt.Printf("run=%s trades=%d pnl=%.2f win_rate=%.2f%% sharpe=%.3f max_dd=%.2f (%.2f%%)\n",
		results.RunID, results.NumTrades, results.TotalPnL, results.WinRate*100,
		results.SharpeRatio, results.MaxDrawdown, results.MaxDrawdownPct*100)

	if dbPath != "" {
		s, err := store.Open(dbPath, log)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Initialize(); err != nil {
			return err
		}
		if err := s.SaveResults(results); err != nil {
			return err
		}
	}

	return nil
}

func loadAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	interval := cmd.String("interval")

	cfg := engine.DefaultConfig()

	if interval != "" {
		barSnapshot, err := engine.LoadBars(path, interval, cfg)
		if err != nil {
			return err
		}
		out, err := json.Marshal(barSnapshot)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	tickSnapshot, err := engine.LoadSCID(path, cfg)
	if err != nil {
		return err
	}
	out, err := json.Marshal(tickSnapshot)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("results") {
		out, err := utils.GetSchemaFromConfig(types.Results{})
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	cfg := engine.DefaultConfig()
	out, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Backtest futures strategies against Sierra Chart SCID tick data",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a backtest against a SCID file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Path to the SCID file"},
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to a YAML config file"},
					&cli.StringFlag{Name: "interval", Aliases: []string{"i"}, Usage: "Bar interval label (bar mode only)"},
					&cli.BoolFlag{Name: "tick-mode", Usage: "Run in tick-batched mode instead of bar-vectorized mode"},
					&cli.StringFlag{Name: "db", Usage: "Optional DuckDB path to persist results (use :memory: to discard)"},
				},
				Action: runAction,
			},
			{
				Name:  "load",
				Usage: "Load a SCID file and print its column snapshot as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Path to the SCID file"},
					&cli.StringFlag{Name: "interval", Aliases: []string{"i"}, Usage: "If set, aggregate to bars at this interval instead of raw ticks"},
				},
				Action: loadAction,
			},
			{
				Name:  "schema",
				Usage: "Print the backtest config JSON schema",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "results", Usage: "Print the results record schema instead of the config schema"},
				},
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
