package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Parse errors (100-199)
	ErrCodeMalformedExpression ErrorCode = 100
	ErrCodeUnknownOperator     ErrorCode = 101
	ErrCodeWrongArity          ErrorCode = 102
	ErrCodeInvalidParameter    ErrorCode = 103
	ErrCodeMissingParameter    ErrorCode = 104
	ErrCodeUnexpectedToken     ErrorCode = 105
	ErrCodeUnbalancedDelimiter ErrorCode = 106

	// Indicator/data errors (200-299)
	ErrCodeIndicatorUnavailable ErrorCode = 200
	ErrCodeInsufficientHistory  ErrorCode = 201
	ErrCodeUnknownIndicator     ErrorCode = 202
	ErrCodePriceSeriesMissing   ErrorCode = 203
	ErrCodePriceSeriesUnsorted  ErrorCode = 204

	// Evaluation errors (300-399)
	ErrCodeFilterCandidateAmbiguous ErrorCode = 300
	ErrCodeNoEligibleCandidates     ErrorCode = 301
	ErrCodeEmptyAllocation          ErrorCode = 302
	ErrCodeEvaluationFailed         ErrorCode = 303

	// Market data errors (400-499)
	ErrCodeMarketDataFetchFailed ErrorCode = 400
	ErrCodeMarketDataWriteFailed ErrorCode = 401
	ErrCodeMarketDataReadFailed  ErrorCode = 402
	ErrCodeInvalidProvider       ErrorCode = 403
	ErrCodeStoreNotInitialized   ErrorCode = 404

	// Configuration errors (500-599)
	ErrCodeInvalidConfiguration ErrorCode = 500
	ErrCodeSymphonyNotLoaded    ErrorCode = 501
)
