package boundary

//go:generate mockgen -destination=./mocks/mock_strategy.go -package=mocks github.com/tickframe/backtest/internal/boundary Strategy
