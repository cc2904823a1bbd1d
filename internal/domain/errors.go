// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation   ErrorType = iota // Invalid input, e.g. an unparseable target date
	ErrorTypeNotFound                      // Meeting, instance or contact does not exist
	ErrorTypeConflict                      // Remote state conflicts with the requested write
	ErrorTypeInternal                      // Unclassified failures
	ErrorTypeUnavailable                   // Remote API returned 5xx or 429, or could not be reached
	ErrorTypeUnauthorized                  // Credential exchange or bearer token rejected
	ErrorTypeMissingField                  // A decoded API record lacks a field the sync depends on
)

// Sentinel errors for conditions that degrade to empty results.
var (
	ErrNoInstances  = errors.New("meeting has no completed instances")
	ErrMissingEmail = errors.New("participant has no email")
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

func NewUnauthorizedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnauthorized, Message: message, Err: errors.Join(err...)}
}

func NewMissingFieldError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeMissingField, Message: message, Err: errors.Join(err...)}
}

// ErrorTypeForStatus maps a remote HTTP status to the error type used at the
// service boundary.
func ErrorTypeForStatus(status int) ErrorType {
	switch {
	case status == 400 || status == 422:
		return ErrorTypeValidation
	case status == 401 || status == 403:
		return ErrorTypeUnauthorized
	case status == 404:
		return ErrorTypeNotFound
	case status == 409:
		return ErrorTypeConflict
	case status == 429 || status >= 500:
		return ErrorTypeUnavailable
	default:
		return ErrorTypeInternal
	}
}
