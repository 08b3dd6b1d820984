package engine

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tickframe/backtest/internal/position/commission"
	"github.com/tickframe/backtest/internal/types"
	apperrors "github.com/tickframe/backtest/pkg/errors"
)

type EngineTestSuite struct {
	suite.Suite
	dir string
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

const (
	headerSize = 56
	recordSize = 40
)

func writeRecord(buf []byte, scDatetime float64, close float32, totalVolume, bidVolume, askVolume uint32) []byte {
	rec := make([]byte, recordSize)
	binary.LittleEndian.PutUint64(rec[0:8], math.Float64bits(scDatetime))
	binary.LittleEndian.PutUint32(rec[20:24], math.Float32bits(close))
	binary.LittleEndian.PutUint32(rec[28:32], totalVolume)
	binary.LittleEndian.PutUint32(rec[32:36], bidVolume)
	binary.LittleEndian.PutUint32(rec[36:40], askVolume)
	return append(buf, rec...)
}

// buildFile writes a minimal SCID file whose ticks, when aggregated at
// "1s", produce exactly one bar per price in prices (one second apart).
func (suite *EngineTestSuite) buildFile(name string, prices []float32) string {
	header := make([]byte, headerSize)
	copy(header, []byte("SCID"))

	var recs []byte
	for i, p := range prices {
		recs = writeRecord(recs, 25569.0+float64(i)/86400.0, p, 1, 1, 0)
	}

	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, append(header, recs...), 0o644))
	return path
}

type constantSignalStrategy struct {
	signal types.Signal
}

func (s constantSignalStrategy) OnBars(bars types.BarSnapshot) ([]types.Signal, error) {
	out := make([]types.Signal, bars.NumBars())
	for i := range out {
		out[i] = s.signal
	}
	return out, nil
}

func (s constantSignalStrategy) OnTicks(ticks types.TickSnapshot) ([]types.Signal, error) {
	out := make([]types.Signal, ticks.NumTicks())
	for i := range out {
		out[i] = s.signal
	}
	return out, nil
}

type fixedSignalStrategy struct {
	bar []types.Signal
}

func (s fixedSignalStrategy) OnBars(bars types.BarSnapshot) ([]types.Signal, error) {
	return s.bar, nil
}

func (s fixedSignalStrategy) OnTicks(ticks types.TickSnapshot) ([]types.Signal, error) {
	return priceThresholdSignals(ticks.Price), nil
}

// priceLevelStrategy derives each row's signal from the price itself, so
// it is independent of where batch boundaries fall.
type priceLevelStrategy struct{}

func (priceLevelStrategy) OnBars(bars types.BarSnapshot) ([]types.Signal, error) {
	return priceThresholdSignals(bars.Close), nil
}

func (priceLevelStrategy) OnTicks(ticks types.TickSnapshot) ([]types.Signal, error) {
	return priceThresholdSignals(ticks.Price), nil
}

// capturingStrategy records the tick snapshot it was called with, so tests
// can inspect exactly what reached the strategy boundary.
type capturingStrategy struct {
	seen types.TickSnapshot
}

func (c *capturingStrategy) OnBars(bars types.BarSnapshot) ([]types.Signal, error) {
	return make([]types.Signal, bars.NumBars()), nil
}

func (c *capturingStrategy) OnTicks(ticks types.TickSnapshot) ([]types.Signal, error) {
	c.seen = ticks
	return make([]types.Signal, ticks.NumTicks()), nil
}

func priceThresholdSignals(prices []float64) []types.Signal {
	out := make([]types.Signal, len(prices))
	for i, p := range prices {
		switch {
		case p > 101:
			out[i] = types.SignalLong
		case p < 99:
			out[i] = types.SignalShort
		default:
			out[i] = types.SignalFlat
		}
	}
	return out
}

func (suite *EngineTestSuite) TestRunBacktestFlatOnly() {
	path := suite.buildFile("flat.scid", []float32{100, 101, 102})
	cfg := Config{Interval: "1s", PointValue: 50, Commission: 2.5, Broker: commission.BrokerFlat}

	results, err := RunBacktest(path, cfg, constantSignalStrategy{signal: types.SignalFlat})
	suite.Require().NoError(err)
	suite.Equal(0, results.NumTrades)
	suite.Equal(0.0, results.TotalPnL)
	for _, e := range results.EquityCurve {
		suite.Equal(0.0, e)
	}
}

func (suite *EngineTestSuite) TestRunBacktestSingleLong() {
	path := suite.buildFile("long.scid", []float32{100, 101, 102, 103, 104})
	cfg := Config{Interval: "1s", PointValue: 50, Commission: 2.5, Broker: commission.BrokerFlat}

	bars := []types.Signal{types.SignalLong, types.SignalLong, types.SignalLong, types.SignalLong, types.SignalFlat}
	results, err := RunBacktest(path, cfg, fixedSignalStrategy{bar: bars})
	suite.Require().NoError(err)
	suite.Require().Equal(1, results.NumTrades)
	suite.Equal(197.50, results.TotalPnL)
	suite.Equal(results.TotalPnL, results.EquityCurve[len(results.EquityCurve)-1])
}

func (suite *EngineTestSuite) TestRunBacktestSignalLengthMismatch() {
	path := suite.buildFile("mismatch.scid", []float32{100, 101, 102, 103, 104})
	cfg := Config{Interval: "1s", PointValue: 50}

	_, err := RunBacktest(path, cfg, fixedSignalStrategy{bar: []types.Signal{types.SignalLong}})
	suite.Require().Error(err)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeSignalLengthMismatch))
}

func (suite *EngineTestSuite) TestRunBacktestInvalidInterval() {
	path := suite.buildFile("badinterval.scid", []float32{100, 101})
	cfg := Config{Interval: "7m", PointValue: 50}

	_, err := RunBacktest(path, cfg, constantSignalStrategy{signal: types.SignalFlat})
	suite.Require().Error(err)
	suite.True(apperrors.HasCode(err, apperrors.ErrCodeInvalidInterval))
}

func (suite *EngineTestSuite) TestRunTickBacktestBatchInvariance() {
	prices := []float32{100, 102, 98, 105, 101, 97, 103, 99, 104, 100}
	path := suite.buildFile("batch.scid", prices)

	run := func(batchSize int64) types.Results {
		cfg := Config{PointValue: 10, Commission: 1, Broker: commission.BrokerFlat, BatchSize: batchSize}
		results, err := RunTickBacktest(path, cfg, priceLevelStrategy{})
		suite.Require().NoError(err)
		return results
	}

	full := run(int64(len(prices)))
	small := run(3)

	suite.Equal(full.Trades, small.Trades)
	suite.Require().Len(full.EquityCurve, len(small.EquityCurve))
	for i := range full.EquityCurve {
		suite.InDelta(full.EquityCurve[i], small.EquityCurve[i], 1e-9)
	}
}

func (suite *EngineTestSuite) TestLoadSCIDAndLoadBars() {
	path := suite.buildFile("load.scid", []float32{100, 101, 102})
	cfg := DefaultConfig()

	tickSnap, err := LoadSCID(path, cfg)
	suite.Require().NoError(err)
	suite.Equal(3, tickSnap.NumTicks())

	barSnap, err := LoadBars(path, "1s", cfg)
	suite.Require().NoError(err)
	suite.Equal(3, barSnap.NumBars())
}

func (suite *EngineTestSuite) TestLoadSCIDTimestampsAreSeconds() {
	path := suite.buildFile("load_seconds.scid", []float32{100, 101, 102})
	cfg := DefaultConfig()

	tickSnap, err := LoadSCID(path, cfg)
	suite.Require().NoError(err)
	suite.Equal([]float64{0, 1, 2}, tickSnap.Timestamp)
}

func (suite *EngineTestSuite) TestRunTickBacktestTimestampsAreSeconds() {
	path := suite.buildFile("tick_seconds.scid", []float32{100, 101, 102})
	cfg := Config{PointValue: 50, Commission: 0, Broker: commission.BrokerFlat, BatchSize: 10}

	capture := &capturingStrategy{}
	_, err := RunTickBacktest(path, cfg, capture)
	suite.Require().NoError(err)
	suite.Equal([]float64{0, 1, 2}, capture.seen.Timestamp)
}
