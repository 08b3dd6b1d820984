package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidInterval      ErrorCode = 102
	ErrCodeInvalidSignal        ErrorCode = 103
	ErrCodeSignalLengthMismatch ErrorCode = 104

	// Data/Resource errors (200-299)
	ErrCodeIoError       ErrorCode = 200
	ErrCodeInvalidFormat ErrorCode = 201
	ErrCodeTruncatedFile ErrorCode = 202
	ErrCodeDataNotFound  ErrorCode = 203

	// Strategy/callback errors (400-499)
	ErrCodeStrategyError ErrorCode = 400

	// Backtest/engine errors (600-699)
	ErrCodeBacktestConfigError ErrorCode = 600
	ErrCodeBacktestStateError  ErrorCode = 601

	// Persistence errors (700-799)
	ErrCodeStoreWriteFailed ErrorCode = 700
	ErrCodeStoreQueryFailed ErrorCode = 701
)
