package domain

import (
	"fmt"
	"strings"
)

// ErrorCode identifies a class of failure that handlers and middleware can
// map onto an HTTP status.
type ErrorCode string

const (
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// CodeConfigMissing is a deployment precondition failure: the upstream
	// credential or knowledge-box id is absent. Never retried.
	CodeConfigMissing ErrorCode = "CONFIG_MISSING"

	// CodeUpstream covers hard upstream failures that no cascade step could
	// recover from.
	CodeUpstream ErrorCode = "UPSTREAM_ERROR"

	// CodeNoContent means every retrieval strategy was exhausted without
	// finding usable document text.
	CodeNoContent ErrorCode = "NO_CONTENT"

	CodeInvalidFile ErrorCode = "INVALID_FILE"
)

// DomainError is the error type services return to handlers.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewError creates a DomainError with the given code.
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause}
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewConfigMissingError(detail string) *DomainError {
	return &DomainError{
		Code:    CodeConfigMissing,
		Message: "Server configuration error",
		Context: map[string]interface{}{"details": detail},
	}
}

func NewUpstreamError(message string, cause error) *DomainError {
	return NewError(CodeUpstream, message, cause)
}

func NewNoContentError(documentID string) *DomainError {
	return &DomainError{
		Code:    CodeNoContent,
		Message: "Failed to extract document content",
		Context: map[string]interface{}{"document_id": documentID},
	}
}

func NewInvalidFileError(message string) *DomainError {
	return NewError(CodeInvalidFile, message, nil)
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates field errors so a request can report all of
// them in one response.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %s", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d, got %d", min, max, value)}
}
