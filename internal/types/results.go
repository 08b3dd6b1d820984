package types

// Results is the immutable outcome of a single backtest run.
type Results struct {
	// RunID uniquely identifies this run, stamped with uuid.NewString().
	RunID string `json:"run_id" yaml:"run_id"`

	TotalPnL        float64 `json:"total_pnl" yaml:"total_pnl"`
	NumTrades       int     `json:"num_trades" yaml:"num_trades"`
	WinRate         float64 `json:"win_rate" yaml:"win_rate"`
	ProfitFactor    float64 `json:"profit_factor" yaml:"profit_factor"`
	SharpeRatio     float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	MaxDrawdown     float64 `json:"max_drawdown" yaml:"max_drawdown"`
	MaxDrawdownPct  float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	EquityCurve     []float64 `json:"equity_curve" yaml:"equity_curve"`
	Trades          []Trade   `json:"trades" yaml:"trades"`

	// Supplemental fields carried over from original_source/src/metrics.rs,
	// beyond the fields spec.md names explicitly.
	NumWins             int     `json:"num_wins" yaml:"num_wins"`
	NumLosses           int     `json:"num_losses" yaml:"num_losses"`
	AvgWin              float64 `json:"avg_win" yaml:"avg_win"`
	AvgLoss             float64 `json:"avg_loss" yaml:"avg_loss"`
	LargestWin          float64 `json:"largest_win" yaml:"largest_win"`
	LargestLoss         float64 `json:"largest_loss" yaml:"largest_loss"`
	AvgHoldingTimeSecs  float64 `json:"avg_holding_time_secs" yaml:"avg_holding_time_secs"`
	NumLong             int     `json:"num_long" yaml:"num_long"`
	NumShort            int     `json:"num_short" yaml:"num_short"`

	// LongStats / ShortStats are the per-side metric breakdowns (§4.4).
	LongStats  SideStats `json:"long_stats" yaml:"long_stats"`
	ShortStats SideStats `json:"short_stats" yaml:"short_stats"`
}

// SideStats holds the subset of Results metrics that make sense computed
// over a single side's trades only (long-only or short-only).
type SideStats struct {
	NumTrades    int     `json:"num_trades" yaml:"num_trades"`
	TotalPnL     float64 `json:"total_pnl" yaml:"total_pnl"`
	WinRate      float64 `json:"win_rate" yaml:"win_rate"`
	ProfitFactor float64 `json:"profit_factor" yaml:"profit_factor"`
}
