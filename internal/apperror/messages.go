package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Amount validation
	CodeInvalidAmount:    "Requested amount must be a positive finite number",
	CodeInvalidImpactPct: "Impact percentage must be positive",

	// Pool/liquidity errors
	CodeNoLiquidity:   "No liquidity available for this pair",
	CodeInvalidPool:   "Pool snapshot violates reserve or fee invariants",
	CodePairNotFound:  "No pool snapshots for trading pair",
	CodeStaleSnapshot: "Pool snapshot is stale",

	// Batch construction errors
	CodeNoValidRoutes:  "No route leg resolved to a venue router",
	CodeEncodingFailed: "Failed to encode swap calldata",

	// Settlement errors
	CodeSettlementFailure:  "Settlement submission failed",
	CodeSettlementRejected: "Settlement layer rejected the batch",

	// Feed errors
	CodeFeedConnectionError: "Liquidity feed connection error",
	CodeFeedDecodeError:     "Failed to decode liquidity feed message",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
