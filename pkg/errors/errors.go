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
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrPermission    ErrorCode = "PERMISSION"

	// Config file errors
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigRead  ErrorCode = "CONFIG_READ"

	// Validation errors
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Persistence errors
	ErrBackupFailed          ErrorCode = "BACKUP_FAILED"
	ErrWriteValidationFailed ErrorCode = "WRITE_VALIDATION_FAILED"
	ErrRestoreFailed         ErrorCode = "RESTORE_FAILED"
	ErrBackupCorrupt         ErrorCode = "BACKUP_CORRUPT"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFileCreate   ErrorCode = "FILE_CREATE"

	// Daemon control errors
	ErrDaemonStart  ErrorCode = "DAEMON_START"
	ErrDaemonStop   ErrorCode = "DAEMON_STOP"
	ErrDaemonStatus ErrorCode = "DAEMON_STATUS"
	ErrPlistParse   ErrorCode = "PLIST_PARSE"

	// Reload errors
	ErrReloadInProgress ErrorCode = "RELOAD_IN_PROGRESS"
	ErrReloadFailed     ErrorCode = "RELOAD_FAILED"
	ErrRollbackFailed   ErrorCode = "ROLLBACK_FAILED"

	// Watcher errors
	ErrWatchExists ErrorCode = "WATCH_EXISTS"
	ErrWatchFailed ErrorCode = "WATCH_FAILED"

	// Settings and catalog errors
	ErrSettingsLoad  ErrorCode = "SETTINGS_LOAD"
	ErrTemplateParse ErrorCode = "TEMPLATE_PARSE"
)

// SkhdctlError represents a structured error with code and details
type SkhdctlError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SkhdctlError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SkhdctlError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SkhdctlError) Is(target error) bool {
	var targetErr *SkhdctlError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SkhdctlError with the given code and message
func New(code ErrorCode, message string) *SkhdctlError {
	return &SkhdctlError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SkhdctlError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SkhdctlError {
	return &SkhdctlError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SkhdctlError
func Wrap(err error, code ErrorCode, message string) *SkhdctlError {
	if err == nil {
		return nil
	}
	return &SkhdctlError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SkhdctlError {
	if err == nil {
		return nil
	}
	return &SkhdctlError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SkhdctlError) WithDetail(key string, value interface{}) *SkhdctlError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *SkhdctlError) WithDetails(details map[string]interface{}) *SkhdctlError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var skhdErr *SkhdctlError
	if errors.As(err, &skhdErr) {
		return skhdErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SkhdctlError
func GetErrorCode(err error) ErrorCode {
	var skhdErr *SkhdctlError
	if errors.As(err, &skhdErr) {
		return skhdErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SkhdctlError
func GetErrorDetails(err error) map[string]interface{} {
	var skhdErr *SkhdctlError
	if errors.As(err, &skhdErr) {
		return skhdErr.Details
	}
	return nil
}
