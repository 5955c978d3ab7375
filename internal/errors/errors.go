package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidInput indicates a missing path, wrong path type or bad option.
	// Fatal: the operation returns no result.
	InvalidInput ErrorCode = "INVALID_INPUT"
	// FileParseError indicates one file could not be read or parsed.
	// Recovered: the file is skipped and a diagnostic recorded.
	FileParseError ErrorCode = "FILE_PARSE_ERROR"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AnalysisError carries a stable code, a human-readable message and the
// path it concerns.
type AnalysisError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	cause   error
}

// New creates an AnalysisError.
func New(code ErrorCode, message string, cause error) *AnalysisError {
	return &AnalysisError{Code: code, Message: message, cause: cause}
}

// Invalid creates an InvalidInput error for path.
func Invalid(path, format string, args ...any) *AnalysisError {
	return &AnalysisError{
		Code:    InvalidInput,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	}
}

// Parse creates a FileParseError for path wrapping cause.
func Parse(path string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:    FileParseError,
		Message: "failed to parse file",
		Path:    path,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// WithPath sets the path and returns the receiver.
func (e *AnalysisError) WithPath(path string) *AnalysisError {
	e.Path = path
	return e
}

// CodeOf returns the code of the first AnalysisError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return InternalError
}

// IsInvalidInput reports whether err is a fatal input error.
func IsInvalidInput(err error) bool {
	return err != nil && CodeOf(err) == InvalidInput
}

// IsFileParse reports whether err is a recoverable per-file error.
func IsFileParse(err error) bool {
	return err != nil && CodeOf(err) == FileParseError
}
