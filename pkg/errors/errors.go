package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Blueprint errors
	ErrBlueprintLoad    ErrorCode = "BLUEPRINT_LOAD"
	ErrBlueprintInvalid ErrorCode = "BLUEPRINT_INVALID"

	// Action errors
	ErrActionInvalid  ErrorCode = "ACTION_INVALID"
	ErrActionConflict ErrorCode = "ACTION_CONFLICT"
	ErrActionExecute  ErrorCode = "ACTION_EXECUTE"
	ErrHandlerUnknown ErrorCode = "HANDLER_UNKNOWN"

	// Modifier errors
	ErrModifierNotFound ErrorCode = "MODIFIER_NOT_FOUND"
	ErrModifierInvalid  ErrorCode = "MODIFIER_INVALID"
	ErrModifierExecute  ErrorCode = "MODIFIER_EXECUTE"

	// Template errors
	ErrTemplateLoad  ErrorCode = "TEMPLATE_LOAD"
	ErrTemplateParse ErrorCode = "TEMPLATE_PARSE"

	// Staging filesystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileExists   ErrorCode = "FILE_EXISTS"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFlushFailed  ErrorCode = "FLUSH_FAILED"

	// Merge errors
	ErrMergeParse    ErrorCode = "MERGE_PARSE"
	ErrMergeConflict ErrorCode = "MERGE_CONFLICT"

	// Command errors
	ErrCommandRun     ErrorCode = "COMMAND_RUN"
	ErrCommandTimeout ErrorCode = "COMMAND_TIMEOUT"
)

// SchematicError represents a structured error with code and details
type SchematicError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SchematicError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SchematicError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SchematicError) Is(target error) bool {
	var targetErr *SchematicError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SchematicError with the given code and message
func New(code ErrorCode, message string) *SchematicError {
	return &SchematicError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SchematicError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SchematicError {
	return &SchematicError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SchematicError
func Wrap(err error, code ErrorCode, message string) *SchematicError {
	if err == nil {
		return nil
	}
	return &SchematicError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SchematicError {
	if err == nil {
		return nil
	}
	return &SchematicError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SchematicError) WithDetail(key string, value interface{}) *SchematicError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var serr *SchematicError
	if errors.As(err, &serr) {
		return serr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SchematicError
func GetErrorCode(err error) ErrorCode {
	var serr *SchematicError
	if errors.As(err, &serr) {
		return serr.Code
	}
	return ErrUnknown
}
