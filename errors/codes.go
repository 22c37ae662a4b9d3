package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Setup errors
const (
	// ErrCodeConfiguration indicates missing or conflicting transformation options.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeInvalidInput indicates an argument outside its valid range.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required configuration field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Invariant errors
const (
	// ErrCodeDuplicateKey indicates two elements mapped to the same unique key.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
	// ErrCodeMalformedDiff indicates an edit script that does not match the tracked state.
	ErrCodeMalformedDiff ErrorCode = "MALFORMED_DIFF"
	// ErrCodeDisposed indicates use of a disposed resource.
	ErrCodeDisposed ErrorCode = "DISPOSED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeTelemetry indicates a failure setting up metrics or tracing.
	ErrCodeTelemetry ErrorCode = "TELEMETRY_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTelemetry: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
