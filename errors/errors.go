package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// AppError is the unified pipeline error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Fatal indicates the error aborts the whole run rather than one sample.
	Fatal bool `json:"fatal"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError, deriving Fatal and Retryable from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Fatal:     IsFatalCode(code),
		Retryable: IsRetryableCode(code),
	}
}

// --- Setup constructors ---

// InputNotFound reports a missing input directory.
func InputNotFound(dir string) *AppError {
	return New(ErrCodeInputNotFound,
		"Please provide the correct input directory, including the fastq.gz files of your sequencing run.").
		WithDetail("dir", dir)
}

// DirectoryMissing reports an expected runtime directory that does not exist.
func DirectoryMissing(dir string) *AppError {
	return New(ErrCodeDirectoryMissing,
		fmt.Sprintf("The directory %s does not seem to exist. Please check file permissions and disk space.", dir)).
		WithDetail("dir", dir)
}

// InvalidPairNaming reports a read file matching neither pair identifier.
func InvalidPairNaming(file, pairID1, pairID2 string) *AppError {
	return New(ErrCodeInvalidPairNaming,
		fmt.Sprintf("Read pair identifiers cannot be detected in %s (expected %q or %q).", file, pairID1, pairID2)).
		WithDetail("file", file)
}

// InvalidConfig reports an unreadable or invalid configuration.
func InvalidConfig(message string) *AppError {
	return New(ErrCodeInvalidConfig, message)
}

// ToolNotFound reports an executable that cannot be resolved.
func ToolNotFound(tool string, cause error) *AppError {
	return New(ErrCodeToolNotFound, fmt.Sprintf("Executable %s cannot be found.", tool)).
		WithDetail("tool", tool).WithCause(cause)
}

// ReferenceUnreadable reports an index or reference database a tool could not open.
func ReferenceUnreadable(tool, reference string, cause error) *AppError {
	return New(ErrCodeReferenceUnreadable,
		fmt.Sprintf("%s cannot read reference %s.", tool, reference)).
		WithDetail("tool", tool).WithDetail("reference", reference).WithCause(cause)
}

// SetupFailed reports a run that could not get its reads into place.
func SetupFailed(message string, cause error) *AppError {
	return New(ErrCodeSetupFailed, message).WithCause(cause)
}

// --- Stage constructors ---

// ToolFailed reports a non-zero exit of an external tool.
func ToolFailed(tool string, exitCode int, cause error) *AppError {
	return New(ErrCodeToolFailed, fmt.Sprintf("%s exited with code %d.", tool, exitCode)).
		WithDetail("tool", tool).WithDetail("exit_code", exitCode).WithCause(cause)
}

// ToolTimeout reports a tool killed after exceeding its time budget.
func ToolTimeout(tool string, cause error) *AppError {
	return New(ErrCodeToolTimeout, fmt.Sprintf("%s did not finish in time.", tool)).
		WithDetail("tool", tool).WithCause(cause)
}

// OutputMissing reports a stage that finished without producing an expected file.
func OutputMissing(stage, pattern string) *AppError {
	return New(ErrCodeOutputMissing, fmt.Sprintf("Stage %s produced no file matching %s.", stage, pattern)).
		WithDetail("stage", stage).WithDetail("pattern", pattern)
}

// ReportInvalid reports a missing or unparseable quality report.
func ReportInvalid(path, reason string) *AppError {
	return New(ErrCodeReportInvalid, fmt.Sprintf("Quality report %s: %s.", path, reason)).
		WithDetail("path", path)
}

// IncompletePair reports a sample with only one mate on disk.
func IncompletePair(sample string) *AppError {
	return New(ErrCodeIncompletePair, fmt.Sprintf("Sample %s is missing one of its read files.", sample)).
		WithDetail("sample", sample)
}

// Canceled reports an interrupted run.
func Canceled(cause error) *AppError {
	return New(ErrCodeCanceled, "The run was interrupted.").WithCause(cause)
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.").WithCause(cause)
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsFatal reports whether err aborts the whole run. Context cancellation
// is always fatal; a plain error is not.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return true
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Fatal
	}
	return false
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

// CodeOf returns the code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
