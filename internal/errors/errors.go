package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the structured error type for evemt.
// It carries a stable code so that callers, event consumers, and the CLI can
// react to the failure class without parsing messages.
type AppError struct {
	// Code is the unique error code (e.g., "ERR_404_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	// Import result events forward these as errorParams.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() against the package sentinels.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Newf creates a new AppError with a formatted message and no cause.
func Newf(code string, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates an AppError from an existing error.
// The error's message becomes the AppError message.
func Wrap(code string, err error) *AppError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinels for errors.Is comparisons. Only the code is significant.
var (
	ErrIO                  = &AppError{Code: ErrCodeIO}
	ErrArchiveOpen         = &AppError{Code: ErrCodeArchiveOpen}
	ErrTargetExists        = &AppError{Code: ErrCodeTargetExists}
	ErrDirectoryExists     = &AppError{Code: ErrCodeDirectoryExists}
	ErrManifestMissing     = &AppError{Code: ErrCodeManifestMissing}
	ErrManifestParse       = &AppError{Code: ErrCodeManifestParse}
	ErrIndexLoad           = &AppError{Code: ErrCodeIndexLoad}
	ErrInvalidInput        = &AppError{Code: ErrCodeInvalidInput}
	ErrInvalidFileName     = &AppError{Code: ErrCodeInvalidFileName}
	ErrDuplicateIdentifier = &AppError{Code: ErrCodeDuplicateIdentifier}
	ErrNotFound            = &AppError{Code: ErrCodeNotFound}
	ErrNoActivePack        = &AppError{Code: ErrCodeNoActivePack}
	ErrUnknownEntityKind   = &AppError{Code: ErrCodeUnknownEntityKind}
	ErrRegistration        = &AppError{Code: ErrCodeRegistration}
	ErrConfigInvalid       = &AppError{Code: ErrCodeConfigInvalid}
)

// GetCode extracts the error code from the first AppError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// GetCategory extracts the category from the first AppError in the chain.
func GetCategory(err error) Category {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Category
	}
	return ""
}

// GetDetails returns the details of the first AppError in the chain, or nil.
func GetDetails(err error) map[string]string {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Details
	}
	return nil
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Severity == SeverityFatal
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
