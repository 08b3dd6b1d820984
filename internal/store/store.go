// Package store persists a backtest run's trades and equity curve to a
// DuckDB database, grounded in the teacher's BacktestState pattern of a
// squirrel statement builder over a database/sql handle.
package store

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/tickframe/backtest/internal/logger"
	"github.com/tickframe/backtest/internal/types"
	apperrors "github.com/tickframe/backtest/pkg/errors"
)

// Store owns a DuckDB connection used to persist run results.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// Open opens (or creates) a DuckDB database at path. Pass ":memory:" for
// an ephemeral in-process database.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodeStoreWriteFailed, err, "store: open %s", path)
	}

	return &Store{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the runs, trades and equity_curve tables if they do
// not already exist.
func (s *Store) Initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			total_pnl DOUBLE,
			num_trades INTEGER,
			win_rate DOUBLE,
			profit_factor DOUBLE,
			sharpe_ratio DOUBLE,
			max_drawdown DOUBLE,
			max_drawdown_pct DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			run_id TEXT,
			side TEXT,
			entry_time BIGINT,
			entry_price DOUBLE,
			exit_time BIGINT,
			exit_price DOUBLE,
			gross_pnl DOUBLE,
			commission DOUBLE,
			net_pnl DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS equity_curve (
			run_id TEXT,
			row_index BIGINT,
			equity DOUBLE
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeStoreWriteFailed, "store: create schema", err)
		}
	}
	return nil
}

// SaveResults persists a completed run: one row in runs, one row per
// trade, and one row per equity curve sample.
func (s *Store) SaveResults(results types.Results) error {
	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStoreWriteFailed, "store: begin transaction", err)
	}

	insertRun := s.sq.
		Insert("runs").
		Columns("run_id", "created_at", "total_pnl", "num_trades", "win_rate", "profit_factor", "sharpe_ratio", "max_drawdown", "max_drawdown_pct").
		Values(results.RunID, time.Now().UTC(), results.TotalPnL, results.NumTrades, results.WinRate, results.ProfitFactor, results.SharpeRatio, results.MaxDrawdown, results.MaxDrawdownPct).
		RunWith(tx)

	if _, err := insertRun.Exec(); err != nil {
		tx.Rollback()
		return apperrors.Wrap(apperrors.ErrCodeStoreWriteFailed, "store: insert run", err)
	}

	for _, t := range results.Trades {
		insertTrade := s.sq.
			Insert("trades").
			Columns("run_id", "side", "entry_time", "entry_price", "exit_time", "exit_price", "gross_pnl", "commission", "net_pnl").
			Values(results.RunID, string(t.Side), t.EntryTime, t.EntryPrice, t.ExitTime, t.ExitPrice, t.GrossPnL, t.Commission, t.NetPnL).
			RunWith(tx)

		if _, err := insertTrade.Exec(); err != nil {
			tx.Rollback()
			return apperrors.Wrap(apperrors.ErrCodeStoreWriteFailed, "store: insert trade", err)
		}
	}

	for i, e := range results.EquityCurve {
		insertEquity := s.sq.
			Insert("equity_curve").
			Columns("run_id", "row_index", "equity").
			Values(results.RunID, i, e).
			RunWith(tx)

		if _, err := insertEquity.Exec(); err != nil {
			tx.Rollback()
			return apperrors.Wrap(apperrors.ErrCodeStoreWriteFailed, "store: insert equity sample", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStoreWriteFailed, "store: commit transaction", err)
	}
	return nil
}

// RunSummary is a single row from the runs table.
type RunSummary struct {
	RunID          string
	CreatedAt      time.Time
	TotalPnL       float64
	NumTrades      int
	WinRate        float64
	ProfitFactor   float64
	SharpeRatio    float64
	MaxDrawdown    float64
	MaxDrawdownPct float64
}

// ListRuns returns every persisted run, most recent first.
func (s *Store) ListRuns() ([]RunSummary, error) {
	query := s.sq.
		Select("run_id", "created_at", "total_pnl", "num_trades", "win_rate", "profit_factor", "sharpe_ratio", "max_drawdown", "max_drawdown_pct").
		From("runs").
		OrderBy("created_at DESC").
		RunWith(s.db)

	rows, err := query.Query()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStoreQueryFailed, "store: list runs", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.TotalPnL, &r.NumTrades, &r.WinRate, &r.ProfitFactor, &r.SharpeRatio, &r.MaxDrawdown, &r.MaxDrawdownPct); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStoreQueryFailed, "store: scan run row", err)
		}
		summaries = append(summaries, r)
	}
	return summaries, rows.Err()
}

// GetTrades returns every trade recorded for a run, in insertion order.
func (s *Store) GetTrades(runID string) ([]types.Trade, error) {
	query := s.sq.
		Select("side", "entry_time", "entry_price", "exit_time", "exit_price", "gross_pnl", "commission", "net_pnl").
		From("trades").
		Where(squirrel.Eq{"run_id": runID}).
		RunWith(s.db)

	rows, err := query.Query()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStoreQueryFailed, "store: get trades", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var t types.Trade
		var side string
		if err := rows.Scan(&side, &t.EntryTime, &t.EntryPrice, &t.ExitTime, &t.ExitPrice, &t.GrossPnL, &t.Commission, &t.NetPnL); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStoreQueryFailed, "store: scan trade row", err)
		}
		t.Side = types.Side(side)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
