// Package engine orchestrates the SCID reader, bar aggregator, strategy
// boundary, position machine and metrics package into the two documented
// backtest modes (§4.5).
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/tickframe/backtest/internal/bar"
	"github.com/tickframe/backtest/internal/boundary"
	"github.com/tickframe/backtest/internal/metrics"
	"github.com/tickframe/backtest/internal/position"
	"github.com/tickframe/backtest/internal/position/commission"
	"github.com/tickframe/backtest/internal/scid"
	"github.com/tickframe/backtest/internal/types"
	apperrors "github.com/tickframe/backtest/pkg/errors"
)

func scaleMode(cfg Config) scid.ScaleMode {
	if cfg.ScaleInt100 {
		return scid.ScaleInt100
	}
	return scid.ScaleNative
}

// filterByTime drops ticks outside [start, end) when those bounds are set.
func filterByTime(ticks []types.Tick, cfg Config) []types.Tick {
	hasStart := cfg.StartTime.IsSome()
	hasEnd := cfg.EndTime.IsSome()
	if !hasStart && !hasEnd {
		return ticks
	}

	var start, end time.Time
	if hasStart {
		start = cfg.StartTime.Unwrap()
	}
	if hasEnd {
		end = cfg.EndTime.Unwrap()
	}

	filtered := make([]types.Tick, 0, len(ticks))
	for _, t := range ticks {
		ts := time.UnixMicro(t.TimestampUs).UTC()
		if hasStart && ts.Before(start) {
			continue
		}
		if hasEnd && !ts.Before(end) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// LoadSCID opens path and returns a column snapshot of every tick it
// contains (§6 "load_scid").
func LoadSCID(path string, cfg Config) (types.TickSnapshot, error) {
	f, err := scid.Open(path, scaleMode(cfg))
	if err != nil {
		return types.TickSnapshot{}, err
	}
	defer f.Close()

	ticks, err := f.All()
	if err != nil {
		return types.TickSnapshot{}, err
	}
	ticks = filterByTime(ticks, cfg)

	snapshot := types.NewTickSnapshot(ticks)
	snapshot.Timestamp = boundary.TickSnapshotSeconds(snapshot)
	return snapshot, nil
}

// LoadBars opens path, aggregates every tick into bars at the given
// interval, and returns the bar column snapshot (§6 "load_bars").
func LoadBars(path, interval string, cfg Config) (types.BarSnapshot, error) {
	f, err := scid.Open(path, scaleMode(cfg))
	if err != nil {
		return types.BarSnapshot{}, err
	}
	defer f.Close()

	ticks, err := f.All()
	if err != nil {
		return types.BarSnapshot{}, err
	}
	ticks = filterByTime(ticks, cfg)

	bars, err := bar.Aggregate(ticks, interval)
	if err != nil {
		return types.BarSnapshot{}, err
	}

	return types.NewBarSnapshot(bars), nil
}

// RunBacktest executes the bar-vectorized mode: ticks are aggregated to
// bars once, the strategy is invoked exactly once with the full bar
// snapshot, and the returned signal array drives the position machine.
func RunBacktest(path string, cfg Config, strategy boundary.Strategy) (types.Results, error) {
	if err := cfg.Validate(); err != nil {
		return types.Results{}, apperrors.Wrap(apperrors.ErrCodeBacktestConfigError, "engine: invalid config", err)
	}

	f, err := scid.Open(path, scaleMode(cfg))
	if err != nil {
		return types.Results{}, err
	}
	defer f.Close()

	ticks, err := f.All()
	if err != nil {
		return types.Results{}, err
	}
	ticks = filterByTime(ticks, cfg)

	bars, err := bar.Aggregate(ticks, cfg.Interval)
	if err != nil {
		return types.Results{}, err
	}

	snapshot := types.NewBarSnapshot(bars)
	signals, err := strategy.OnBars(snapshot)
	if err != nil {
		return types.Results{}, apperrors.Wrap(apperrors.ErrCodeStrategyError, "engine: on_bars callback failed", err)
	}
	if err := boundary.ValidateSignals(signals, len(bars)); err != nil {
		return types.Results{}, err
	}

	model := commission.GetModel(cfg.Broker, cfg.Commission)
	machine := position.New(cfg.PointValue, model)

	for i, b := range bars {
		machine.Step(b.TimestampUs(), b.Close, signals[i])
	}

	var trades []types.Trade
	var equityCurve []float64
	if len(bars) > 0 {
		last := bars[len(bars)-1]
		trades, equityCurve = machine.Finish(last.TimestampUs(), last.Close)
	} else {
		trades, equityCurve = machine.Finish(0, 0)
	}

	intervalSeconds, err := bar.ResolveInterval(cfg.Interval)
	if err != nil {
		return types.Results{}, err
	}
	barsPerYear := metrics.BarsPerYear(float64(intervalSeconds) / 3600.0)

	return buildResults(trades, equityCurve, metrics.AnnualizeBarMode, barsPerYear), nil
}

// RunTickBacktest executes the tick-batched mode: the strategy is invoked
// once per batch of batch_size ticks, and the position machine persists
// state across batches so results are invariant to the batch size (§8.5).
func RunTickBacktest(path string, cfg Config, strategy boundary.Strategy) (types.Results, error) {
	if err := cfg.Validate(); err != nil {
		return types.Results{}, apperrors.Wrap(apperrors.ErrCodeBacktestConfigError, "engine: invalid config", err)
	}

	f, err := scid.Open(path, scaleMode(cfg))
	if err != nil {
		return types.Results{}, err
	}
	defer f.Close()

	ticks, err := f.All()
	if err != nil {
		return types.Results{}, err
	}
	ticks = filterByTime(ticks, cfg)

	model := commission.GetModel(cfg.Broker, cfg.Commission)
	machine := position.New(cfg.PointValue, model)

	batchSize := int(cfg.EffectiveBatchSize())
	for start := 0; start < len(ticks); start += batchSize {
		end := start + batchSize
		if end > len(ticks) {
			end = len(ticks)
		}
		batch := ticks[start:end]

		snapshot := types.NewTickSnapshot(batch)
		snapshot.Timestamp = boundary.TickSnapshotSeconds(snapshot)
		signals, err := strategy.OnTicks(snapshot)
		if err != nil {
			return types.Results{}, apperrors.Wrap(apperrors.ErrCodeStrategyError, "engine: on_ticks callback failed", err)
		}
		if err := boundary.ValidateSignals(signals, len(batch)); err != nil {
			return types.Results{}, err
		}

		for i, t := range batch {
			machine.Step(t.TimestampUs, t.Price, signals[i])
		}
	}

	var trades []types.Trade
	var equityCurve []float64
	if len(ticks) > 0 {
		last := ticks[len(ticks)-1]
		trades, equityCurve = machine.Finish(last.TimestampUs, last.Price)
	} else {
		trades, equityCurve = machine.Finish(0, 0)
	}

	return buildResults(trades, equityCurve, metrics.AnnualizeTickMode, 0), nil
}

func buildResults(trades []types.Trade, equityCurve []float64, mode metrics.AnnualizationMode, barsPerYear float64) types.Results {
	tradeLikes := make([]metrics.TradeLike, len(trades))
	for i, t := range trades {
		tradeLikes[i] = metrics.TradeLike{Side: string(t.Side), NetPnL: t.NetPnL}
	}

	computed := metrics.Compute(tradeLikes, equityCurve, mode, barsPerYear)
	longStats := metrics.ComputeSide(tradeLikes, string(types.SideLong))
	shortStats := metrics.ComputeSide(tradeLikes, string(types.SideShort))

	var avgHolding float64
	var numLong, numShort int
	if len(trades) > 0 {
		var totalHoldingUs int64
		for _, t := range trades {
			totalHoldingUs += t.ExitTime - t.EntryTime
			if t.Side == types.SideLong {
				numLong++
			} else {
				numShort++
			}
		}
		avgHolding = float64(totalHoldingUs) / float64(len(trades)) / 1e6
	}

	return types.Results{
		RunID:              uuid.NewString(),
		TotalPnL:           computed.TotalPnL,
		NumTrades:          computed.NumTrades,
		WinRate:            computed.WinRate,
		ProfitFactor:       computed.ProfitFactor,
		SharpeRatio:        computed.SharpeRatio,
		MaxDrawdown:        computed.MaxDrawdown,
		MaxDrawdownPct:     computed.MaxDrawdownPct,
		EquityCurve:        equityCurve,
		Trades:             trades,
		NumWins:            computed.NumWins,
		NumLosses:          computed.NumLosses,
		AvgWin:             computed.AvgWin,
		AvgLoss:            computed.AvgLoss,
		LargestWin:         computed.LargestWin,
		LargestLoss:        computed.LargestLoss,
		AvgHoldingTimeSecs: avgHolding,
		NumLong:            numLong,
		NumShort:           numShort,
		LongStats: types.SideStats{
			NumTrades:    longStats.NumTrades,
			TotalPnL:     longStats.TotalPnL,
			WinRate:      longStats.WinRate,
			ProfitFactor: longStats.ProfitFactor,
		},
		ShortStats: types.SideStats{
			NumTrades:    shortStats.NumTrades,
			TotalPnL:     shortStats.TotalPnL,
			WinRate:      shortStats.WinRate,
			ProfitFactor: shortStats.ProfitFactor,
		},
	}
}
