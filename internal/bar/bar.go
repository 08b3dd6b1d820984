// Package bar aggregates a stream of ticks into OHLCV bars over a
// configurable time interval.
package bar

import (
	"github.com/tickframe/backtest/internal/types"
	apperrors "github.com/tickframe/backtest/pkg/errors"
)

// intervalSeconds maps recognized interval labels to their length in
// seconds (§4.2).
var intervalSeconds = map[string]int64{
	"1s":  1,
	"5s":  5,
	"10s": 10,
	"30s": 30,
	"1m":  60,
	"5m":  300,
	"15m": 900,
	"30m": 1800,
	"1h":  3600,
	"4h":  14400,
	"1d":  86400,
}

// ResolveInterval returns the interval length in seconds for a label, or
// an InvalidInterval error if the label is unrecognized.
func ResolveInterval(label string) (int64, error) {
	seconds, ok := intervalSeconds[label]
	if !ok {
		return 0, apperrors.Newf(apperrors.ErrCodeInvalidInterval, "bar: unrecognized interval label %q", label)
	}
	return seconds, nil
}

// bucketStart computes the half-open bucket start, in seconds, for a
// timestamp in UNIX microseconds.
func bucketStart(timestampUs int64, intervalS int64) int64 {
	timestampS := timestampUs / 1_000_000
	return (timestampS / intervalS) * intervalS
}

// Aggregator folds a stream of ticks into bars at a fixed interval,
// emitting a bar each time the bucket advances, and the final partial bar
// on Flush.
type Aggregator struct {
	intervalS int64
	current   *types.Bar
	open      bool
}

// NewAggregator builds an Aggregator for the given interval label.
func NewAggregator(label string) (*Aggregator, error) {
	seconds, err := ResolveInterval(label)
	if err != nil {
		return nil, err
	}
	return &Aggregator{intervalS: seconds}, nil
}

// Add folds one tick into the aggregator, returning a completed bar
// whenever the tick starts a new bucket. ok is false when no bar closed.
func (a *Aggregator) Add(t types.Tick) (types.Bar, bool) {
	start := bucketStart(t.TimestampUs, a.intervalS)

	if !a.open {
		a.current = &types.Bar{
			BucketStart: start,
			Open:        t.Price,
			High:        t.Price,
			Low:         t.Price,
			Close:       t.Price,
			Volume:      uint64(t.Volume),
			BidVolume:   uint64(t.BidVolume),
			AskVolume:   uint64(t.AskVolume),
			TickCount:   1,
		}
		a.open = true
		return types.Bar{}, false
	}

	if start == a.current.BucketStart {
		a.extend(t)
		return types.Bar{}, false
	}

	closed := *a.current
	a.current = &types.Bar{
		BucketStart: start,
		Open:        t.Price,
		High:        t.Price,
		Low:         t.Price,
		Close:       t.Price,
		Volume:      uint64(t.Volume),
		BidVolume:   uint64(t.BidVolume),
		AskVolume:   uint64(t.AskVolume),
		TickCount:   1,
	}
	return closed, true
}

func (a *Aggregator) extend(t types.Tick) {
	if t.Price > a.current.High {
		a.current.High = t.Price
	}
	if t.Price < a.current.Low {
		a.current.Low = t.Price
	}
	a.current.Close = t.Price
	a.current.Volume += uint64(t.Volume)
	a.current.BidVolume += uint64(t.BidVolume)
	a.current.AskVolume += uint64(t.AskVolume)
	a.current.TickCount++
}

// Flush returns the last in-progress bar, if any, and resets the
// aggregator to its empty state.
func (a *Aggregator) Flush() (types.Bar, bool) {
	if !a.open {
		return types.Bar{}, false
	}
	last := *a.current
	a.current = nil
	a.open = false
	return last, true
}

// Aggregate folds an entire tick slice into a bar slice in one pass. Empty
// buckets (gap days, halts) produce no synthetic bars.
func Aggregate(ticks []types.Tick, label string) ([]types.Bar, error) {
	agg, err := NewAggregator(label)
	if err != nil {
		return nil, err
	}

	bars := make([]types.Bar, 0, len(ticks)/4+1)
	for _, t := range ticks {
		if closed, ok := agg.Add(t); ok {
			bars = append(bars, closed)
		}
	}
	if last, ok := agg.Flush(); ok {
		bars = append(bars, last)
	}
	return bars, nil
}
