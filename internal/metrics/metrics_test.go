package metrics

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) TestComputeEmpty() {
	r := Compute(nil, nil, AnnualizeTickMode, 0)
	suite.Equal(0.0, r.TotalPnL)
	suite.Equal(0, r.NumTrades)
	suite.Equal(0.0, r.WinRate)
	suite.Equal(0.0, r.ProfitFactor)
	suite.Equal(0.0, r.SharpeRatio)
	suite.Equal(0.0, r.MaxDrawdown)
}

func (suite *MetricsTestSuite) TestWinRateAndProfitFactor() {
	trades := []TradeLike{
		{Side: "LONG", NetPnL: 100},
		{Side: "LONG", NetPnL: -50},
		{Side: "SHORT", NetPnL: 25},
	}
	r := Compute(trades, []float64{0, 100, 50, 75}, AnnualizeTickMode, 0)
	suite.Equal(3, r.NumTrades)
	suite.InDelta(2.0/3.0, r.WinRate, 1e-9)
	suite.InDelta(125.0/50.0, r.ProfitFactor, 1e-9)
	suite.Equal(2, r.NumWins)
	suite.Equal(1, r.NumLosses)
	suite.Equal(62.5, r.AvgWin)
	suite.Equal(-50.0, r.AvgLoss)
	suite.Equal(100.0, r.LargestWin)
	suite.Equal(-50.0, r.LargestLoss)
}

func (suite *MetricsTestSuite) TestProfitFactorAllWins() {
	trades := []TradeLike{{NetPnL: 10}, {NetPnL: 20}}
	r := Compute(trades, []float64{10, 30}, AnnualizeTickMode, 0)
	suite.Equal(LargeSentinel, r.ProfitFactor)
}

func (suite *MetricsTestSuite) TestProfitFactorNoTrades() {
	r := Compute(nil, nil, AnnualizeTickMode, 0)
	suite.Equal(0.0, r.ProfitFactor)
}

func (suite *MetricsTestSuite) TestSharpeZeroVarianceReturnsZero() {
	equity := []float64{10, 10, 10, 10}
	r := Compute(nil, equity, AnnualizeTickMode, 0)
	suite.Equal(0.0, r.SharpeRatio)
}

func (suite *MetricsTestSuite) TestSharpeShortSeriesReturnsZero() {
	r := Compute(nil, []float64{5}, AnnualizeTickMode, 0)
	suite.Equal(0.0, r.SharpeRatio)
}

func (suite *MetricsTestSuite) TestSharpeTickModeUnitless() {
	equity := []float64{0, 1, 2, 1, 2, 3}
	r := Compute(nil, equity, AnnualizeTickMode, 999)
	suite.NotEqual(0.0, r.SharpeRatio)

	// K=1 in tick mode regardless of barsPerYear.
	rAlt := Compute(nil, equity, AnnualizeTickMode, 1)
	suite.Equal(r.SharpeRatio, rAlt.SharpeRatio)
}

func (suite *MetricsTestSuite) TestSharpeBarModeAnnualizes() {
	equity := []float64{0, 1, 2, 1, 2, 3}
	tickSharpe := Compute(nil, equity, AnnualizeTickMode, 0).SharpeRatio
	barSharpe := Compute(nil, equity, AnnualizeBarMode, BarsPerYear(1)).SharpeRatio
	suite.NotEqual(tickSharpe, barSharpe)
}

func (suite *MetricsTestSuite) TestMaxDrawdownDollarsAndPct() {
	equity := []float64{0, 100, 50, 150, 30}
	dollars, pct := drawdown(equity)
	suite.Equal(120.0, dollars) // peak 150 -> trough 30
	suite.InDelta(120.0/150.0, pct, 1e-9)
}

func (suite *MetricsTestSuite) TestMaxDrawdownFloorWhenNegative() {
	equity := []float64{0, -5, -20}
	dollars, pct := drawdown(equity)
	suite.Equal(20.0, dollars)
	suite.InDelta(20.0/DrawdownFloor, pct, 1e-9)
}

func (suite *MetricsTestSuite) TestComputeSide() {
	trades := []TradeLike{
		{Side: "LONG", NetPnL: 100},
		{Side: "LONG", NetPnL: -20},
		{Side: "SHORT", NetPnL: 40},
	}
	long := ComputeSide(trades, "LONG")
	suite.Equal(2, long.NumTrades)
	suite.Equal(80.0, long.TotalPnL)
	suite.Equal(0.5, long.WinRate)

	short := ComputeSide(trades, "SHORT")
	suite.Equal(1, short.NumTrades)
	suite.Equal(40.0, short.TotalPnL)
	suite.Equal(1.0, short.WinRate)
	suite.Equal(LargeSentinel, short.ProfitFactor)

	none := ComputeSide(trades, "FLAT")
	suite.Equal(0, none.NumTrades)
}

func (suite *MetricsTestSuite) TestBarsPerYear() {
	suite.InDelta(252.0*6.5, BarsPerYear(1), 1e-9)
	suite.Equal(0.0, BarsPerYear(0))
	suite.Equal(0.0, BarsPerYear(-1))
}
