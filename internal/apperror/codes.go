package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Router-specific error codes
const (
	// Amount validation
	CodeInvalidAmount    Code = "INVALID_AMOUNT"
	CodeInvalidImpactPct Code = "INVALID_IMPACT_PCT"

	// Pool/liquidity errors
	CodeNoLiquidity   Code = "NO_LIQUIDITY"
	CodeInvalidPool   Code = "INVALID_POOL"
	CodePairNotFound  Code = "PAIR_NOT_FOUND"
	CodeStaleSnapshot Code = "STALE_SNAPSHOT"

	// Batch construction errors
	CodeNoValidRoutes  Code = "NO_VALID_ROUTES"
	CodeEncodingFailed Code = "ENCODING_FAILED"

	// Settlement errors
	CodeSettlementFailure  Code = "SETTLEMENT_FAILURE"
	CodeSettlementRejected Code = "SETTLEMENT_REJECTED"

	// Feed errors
	CodeFeedConnectionError Code = "FEED_CONNECTION_ERROR"
	CodeFeedDecodeError     Code = "FEED_DECODE_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
