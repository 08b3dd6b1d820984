// Package metrics computes Sharpe ratio, drawdown, profit factor, win rate
// and per-side breakdowns from a trade list and equity curve.
package metrics

import "math"

// LargeSentinel stands in for +Infinity when the profit factor's
// denominator is zero and the numerator is positive (§4.4).
const LargeSentinel = 1e18

// DrawdownFloor is the denominator floor used to compute max_drawdown_pct
// when running equity crosses zero (§9).
const DrawdownFloor = 1.0

// AnnualizationMode selects how the Sharpe ratio's annualization factor K
// is computed.
type AnnualizationMode int

const (
	// AnnualizeBarMode scales by estimated bars-per-trading-year given an
	// interval length in hours.
	AnnualizeBarMode AnnualizationMode = iota
	// AnnualizeTickMode reports an unannualized per-step Sharpe (K=1).
	AnnualizeTickMode
)

// TradeLike is the subset of a trade the metrics package needs, kept
// narrow so it can be computed from types.Trade without importing it
// (decoupling C4 from C3's representation).
type TradeLike struct {
	Side   string
	NetPnL float64
}

// Result holds every statistic §4.4 names.
type Result struct {
	TotalPnL       float64
	NumTrades      int
	WinRate        float64
	ProfitFactor   float64
	SharpeRatio    float64
	MaxDrawdown    float64
	MaxDrawdownPct float64

	NumWins            int
	NumLosses          int
	AvgWin             float64
	AvgLoss            float64
	LargestWin         float64
	LargestLoss        float64
	AvgHoldingTimeSecs float64
}

// Compute derives a Result from a trade list and an equity curve sampled
// once per input row. annualization selects the Sharpe scaling; barsPerYear
// is only consulted in AnnualizeBarMode.
func Compute(trades []TradeLike, equityCurve []float64, annualization AnnualizationMode, barsPerYear float64) Result {
	r := Result{
		NumTrades: len(trades),
	}

	if len(equityCurve) > 0 {
		r.TotalPnL = equityCurve[len(equityCurve)-1]
	}

	computeTradeStats(&r, trades)
	r.SharpeRatio = sharpe(equityCurve, annualization, barsPerYear)
	r.MaxDrawdown, r.MaxDrawdownPct = drawdown(equityCurve)

	return r
}

func computeTradeStats(r *Result, trades []TradeLike) {
	if len(trades) == 0 {
		return
	}

	var grossWin, grossLoss float64
	var largestWin, largestLoss float64

	for _, t := range trades {
		switch {
		case t.NetPnL > 0:
			r.NumWins++
			grossWin += t.NetPnL
			if t.NetPnL > largestWin {
				largestWin = t.NetPnL
			}
		case t.NetPnL < 0:
			r.NumLosses++
			grossLoss += -t.NetPnL
			if t.NetPnL < largestLoss {
				largestLoss = t.NetPnL
			}
		}
	}

	r.WinRate = float64(r.NumWins) / float64(len(trades))
	r.LargestWin = largestWin
	r.LargestLoss = largestLoss

	if r.NumWins > 0 {
		r.AvgWin = grossWin / float64(r.NumWins)
	}
	if r.NumLosses > 0 {
		r.AvgLoss = -grossLoss / float64(r.NumLosses)
	}

	r.ProfitFactor = profitFactor(grossWin, grossLoss)
}

func profitFactor(grossWin, grossLoss float64) float64 {
	switch {
	case grossLoss == 0 && grossWin > 0:
		return LargeSentinel
	case grossLoss == 0:
		return 0
	default:
		return grossWin / grossLoss
	}
}

func sharpe(equityCurve []float64, mode AnnualizationMode, barsPerYear float64) float64 {
	n := len(equityCurve)
	if n < 2 {
		return 0
	}

	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = equityCurve[i] - equityCurve[i-1]
	}

	mean := average(diffs)
	sigma := populationStdev(diffs, mean)
	if sigma == 0 {
		return 0
	}

	k := 1.0
	if mode == AnnualizeBarMode && barsPerYear > 0 {
		k = math.Sqrt(barsPerYear)
	}

	return (mean / sigma) * k
}

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func populationStdev(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

func drawdown(equityCurve []float64) (dollars, pct float64) {
	if len(equityCurve) == 0 {
		return 0, 0
	}

	runningMax := equityCurve[0]
	for _, e := range equityCurve {
		if e > runningMax {
			runningMax = e
		}
		dd := runningMax - e
		if dd > dollars {
			dollars = dd
		}
	}

	denom := math.Max(math.Abs(runningMax), DrawdownFloor)
	pct = dollars / denom
	return dollars, pct
}

// SideResult is the subset of Result meaningful when computed over a
// single side's trades only (§4.4 "per-side breakdowns").
type SideResult struct {
	NumTrades    int
	TotalPnL     float64
	WinRate      float64
	ProfitFactor float64
}

// ComputeSide derives the same statistics as Compute, but restricted to
// trades matching side and without a standalone equity curve (per-side
// total_pnl is simply the sum of that side's net P&L).
func ComputeSide(trades []TradeLike, side string) SideResult {
	var filtered []TradeLike
	for _, t := range trades {
		if t.Side == side {
			filtered = append(filtered, t)
		}
	}

	var r SideResult
	r.NumTrades = len(filtered)
	if len(filtered) == 0 {
		return r
	}

	var wins int
	var grossWin, grossLoss, total float64
	for _, t := range filtered {
		total += t.NetPnL
		switch {
		case t.NetPnL > 0:
			wins++
			grossWin += t.NetPnL
		case t.NetPnL < 0:
			grossLoss += -t.NetPnL
		}
	}

	r.TotalPnL = total
	r.WinRate = float64(wins) / float64(len(filtered))
	r.ProfitFactor = profitFactor(grossWin, grossLoss)
	return r
}

// BarsPerYear estimates the annualization factor for bar mode from an
// interval length in hours, per §4.4's example (252 trading days × 6.5h
// session / interval_hours).
func BarsPerYear(intervalHours float64) float64 {
	if intervalHours <= 0 {
		return 0
	}
	const tradingDaysPerYear = 252.0
	const sessionHours = 6.5
	return tradingDaysPerYear * sessionHours / intervalHours
}
