package position

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tickframe/backtest/internal/position/commission"
	"github.com/tickframe/backtest/internal/types"
)

type PositionTestSuite struct {
	suite.Suite
}

func TestPositionSuite(t *testing.T) {
	suite.Run(t, new(PositionTestSuite))
}

func (suite *PositionTestSuite) run(pointValue, fee float64, closes []float64, signals []types.Signal) ([]types.Trade, []float64) {
	m := New(pointValue, commission.NewFlatCommissionFee(fee))
	for i, price := range closes {
		m.Step(int64(i), price, signals[i])
	}
	return m.Finish(int64(len(closes)-1), closes[len(closes)-1])
}

func (suite *PositionTestSuite) TestFlatOnly() {
	closes := make([]float64, 10)
	signals := make([]types.Signal, 10)
	for i := range closes {
		closes[i] = 100
		signals[i] = types.SignalFlat
	}

	trades, equity := suite.run(50, 2.50, closes, signals)
	suite.Empty(trades)
	suite.Require().Len(equity, 10)
	for _, e := range equity {
		suite.Equal(0.0, e)
	}
}

func (suite *PositionTestSuite) TestSingleLong() {
	closes := []float64{100, 101, 102, 103, 104}
	signals := []types.Signal{types.SignalLong, types.SignalLong, types.SignalLong, types.SignalLong, types.SignalFlat}

	trades, equity := suite.run(50, 2.50, closes, signals)
	suite.Require().Len(trades, 1)
	suite.Equal(types.SideLong, trades[0].Side)
	suite.Equal(200.0, trades[0].GrossPnL)
	suite.Equal(197.50, trades[0].NetPnL)
	suite.Equal(197.50, equity[len(equity)-1])
}

func (suite *PositionTestSuite) TestFlip() {
	closes := []float64{100, 105, 95}
	signals := []types.Signal{types.SignalLong, types.SignalShort, types.SignalFlat}

	trades, equity := suite.run(50, 2.50, closes, signals)
	suite.Require().Len(trades, 2)

	suite.Equal(types.SideLong, trades[0].Side)
	suite.Equal(250.0, trades[0].GrossPnL)
	suite.Equal(247.50, trades[0].NetPnL)

	suite.Equal(types.SideShort, trades[1].Side)
	suite.Equal(500.0, trades[1].GrossPnL)
	suite.Equal(497.50, trades[1].NetPnL)

	suite.Equal(745.00, equity[len(equity)-1])
}

func (suite *PositionTestSuite) TestEndOfDataClosure() {
	closes := []float64{100, 110}
	signals := []types.Signal{types.SignalLong, types.SignalLong}

	trades, equity := suite.run(50, 2.50, closes, signals)
	suite.Require().Len(trades, 1)
	suite.Equal(497.50, trades[0].NetPnL)
	suite.Equal(497.50, equity[len(equity)-1])
}

func (suite *PositionTestSuite) TestConstantLongSignal() {
	closes := []float64{10, 11, 12, 13}
	signals := []types.Signal{types.SignalLong, types.SignalLong, types.SignalLong, types.SignalLong}

	trades, equity := suite.run(1, 0, closes, signals)
	suite.Require().Len(trades, 1)
	suite.Equal(10.0, trades[0].EntryPrice)
	suite.Equal(13.0, trades[0].ExitPrice)
	suite.Equal(3.0, trades[0].NetPnL)
	suite.Equal(3.0, equity[len(equity)-1])
}

func (suite *PositionTestSuite) TestAccountingInvariant() {
	closes := []float64{100, 102, 98, 101, 97, 103}
	signals := []types.Signal{
		types.SignalLong, types.SignalFlat, types.SignalShort,
		types.SignalLong, types.SignalFlat, types.SignalShort,
	}

	trades, equity := suite.run(10, 1, closes, signals)
	var totalNet float64
	for _, t := range trades {
		totalNet += t.NetPnL
	}
	suite.InDelta(totalNet, equity[len(equity)-1], 1e-9)
}

func (suite *PositionTestSuite) TestShortOpenAndClose() {
	closes := []float64{50, 45}
	signals := []types.Signal{types.SignalShort, types.SignalFlat}

	trades, equity := suite.run(2, 0, closes, signals)
	suite.Require().Len(trades, 1)
	suite.Equal(types.SideShort, trades[0].Side)
	suite.Equal(10.0, trades[0].GrossPnL) // (50-45)*2
	suite.Equal(10.0, equity[len(equity)-1])
}

func (suite *PositionTestSuite) TestNoTradeWithoutClosure() {
	m := New(1, commission.NewZeroCommissionFee())
	m.Step(0, 100, types.SignalLong)
	suite.Equal(Long, m.State())
	suite.Empty(m.trades)
}
