package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Setup errors (fatal)
const (
	// ErrCodeInputNotFound indicates the input directory does not exist.
	ErrCodeInputNotFound ErrorCode = "INPUT_NOT_FOUND"
	// ErrCodeDirectoryMissing indicates an expected runtime directory is missing.
	ErrCodeDirectoryMissing ErrorCode = "DIRECTORY_MISSING"
	// ErrCodeInvalidPairNaming indicates a read file matches neither pair identifier.
	ErrCodeInvalidPairNaming ErrorCode = "INVALID_PAIR_NAMING"
	// ErrCodeInvalidConfig indicates the configuration file is unreadable or invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeToolNotFound indicates an external executable could not be resolved.
	ErrCodeToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	// ErrCodeReferenceUnreadable indicates an index or reference database cannot be read.
	ErrCodeReferenceUnreadable ErrorCode = "REFERENCE_UNREADABLE"
	// ErrCodeSetupFailed indicates the reads could not be staged for processing.
	ErrCodeSetupFailed ErrorCode = "SETUP_FAILED"
)

// Stage errors (sample-local)
const (
	// ErrCodeToolFailed indicates an external tool exited non-zero.
	ErrCodeToolFailed ErrorCode = "TOOL_FAILED"
	// ErrCodeToolTimeout indicates an external tool exceeded its time budget.
	ErrCodeToolTimeout ErrorCode = "TOOL_TIMEOUT"
	// ErrCodeOutputMissing indicates a stage finished without its expected output.
	ErrCodeOutputMissing ErrorCode = "OUTPUT_MISSING"
	// ErrCodeReportInvalid indicates a quality report is missing or unparseable.
	ErrCodeReportInvalid ErrorCode = "REPORT_INVALID"
	// ErrCodeIncompletePair indicates a sample lacks one of its mates.
	ErrCodeIncompletePair ErrorCode = "INCOMPLETE_PAIR"
)

// Internal errors
const (
	// ErrCodeCanceled indicates the run was interrupted.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeInternal indicates an unexpected failure (filesystem, I/O).
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var fatalCodes = map[ErrorCode]bool{
	ErrCodeInputNotFound:       true,
	ErrCodeDirectoryMissing:    true,
	ErrCodeInvalidPairNaming:   true,
	ErrCodeInvalidConfig:       true,
	ErrCodeToolNotFound:        true,
	ErrCodeReferenceUnreadable: true,
	ErrCodeSetupFailed:         true,
	ErrCodeCanceled:            true,
}

// Timeouts may succeed on a second attempt; a crash or a bad exit code
// usually will not.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeToolTimeout: true,
}

// IsFatalCode returns true if the code aborts the whole run.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
