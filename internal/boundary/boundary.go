// Package boundary marshals column-oriented snapshots across the
// strategy callback boundary and validates the signal arrays strategies
// return (§4.6, §6).
package boundary

import (
	"github.com/tickframe/backtest/internal/types"
	apperrors "github.com/tickframe/backtest/pkg/errors"
)

// Strategy is the opaque collaborator the engine drives. Implementations
// may wrap a callback written in any embedding language; the core treats
// it as an uninterruptible black box (§9).
type Strategy interface {
	// OnBars is called exactly once per bar-mode run with the full bar
	// snapshot, returning one signal per bar.
	OnBars(bars types.BarSnapshot) ([]types.Signal, error)
	// OnTicks is called once per tick-mode batch with that batch's tick
	// snapshot, returning one signal per tick in the batch.
	OnTicks(ticks types.TickSnapshot) ([]types.Signal, error)
}

// ValidateSignals checks a strategy's returned signal array against the
// expected row count and the {-1,0,+1} domain.
func ValidateSignals(signals []types.Signal, expectedLen int) error {
	if len(signals) != expectedLen {
		return apperrors.Newf(apperrors.ErrCodeSignalLengthMismatch, "boundary: strategy returned %d signals, want %d", len(signals), expectedLen)
	}
	for i, s := range signals {
		if !s.Valid() {
			return apperrors.Newf(apperrors.ErrCodeInvalidSignal, "boundary: signal[%d] = %d is not one of {-1,0,1}", i, s)
		}
	}
	return nil
}

// BarKeys lists the recognized bar-snapshot column keys (§4.6).
var BarKeys = []string{"time", "open", "high", "low", "close", "volume", "bid_volume", "ask_volume", "num_bars"}

// TickKeys lists the recognized tick-snapshot column keys (§4.6).
var TickKeys = []string{"timestamp", "price", "bid", "ask", "volume", "bid_volume", "ask_volume", "num_ticks"}

// TickSnapshotSeconds converts a tick snapshot's microsecond timestamps to
// seconds at the boundary, as §4.6 requires. internal/engine calls this on
// every TickSnapshot before it reaches a strategy's on_ticks callback or is
// returned from load_scid.
func TickSnapshotSeconds(snapshot types.TickSnapshot) []float64 {
	seconds := make([]float64, len(snapshot.Timestamp))
	for i, us := range snapshot.Timestamp {
		seconds[i] = us / 1e6
	}
	return seconds
}
