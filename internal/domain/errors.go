package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation           ErrorType = "validation"
	ErrorTypeIO                   ErrorType = "io"
	ErrorTypeUnsupportedFormat    ErrorType = "unsupported_format"
	ErrorTypeUnsupportedPrimitive ErrorType = "unsupported_primitive"
	ErrorTypeExtraction           ErrorType = "extraction"
	ErrorTypeConfig               ErrorType = "config"
	ErrorTypeInternal             ErrorType = "internal"
)

// Sentinel errors callers can match with errors.Is.
var (
	// ErrUnsupportedFormat is returned when the binary variant (or an unknown
	// format) is requested.
	ErrUnsupportedFormat = NewError(ErrorTypeUnsupportedFormat, "unsupported output format", nil)

	// ErrNoDocument is returned by a Source asked to extract before Load.
	ErrNoDocument = NewError(ErrorTypeExtraction, "no document loaded", nil)
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError of the same type and message, so wrapped
// sentinels compare equal to the originals.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether any DomainError in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Type == errType {
			return true
		}
		err = de.Err
	}
	return false
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

func UnsupportedFormatError(format Format) *DomainError {
	return NewError(ErrorTypeUnsupportedFormat, ErrUnsupportedFormat.Message,
		fmt.Errorf("format %s", format))
}

func UnsupportedPrimitiveError(kind PrimitiveKind) *DomainError {
	return NewError(ErrorTypeUnsupportedPrimitive, fmt.Sprintf("no translation for %s", kind), nil)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func InternalError(message string, err error) *DomainError {
	return NewError(ErrorTypeInternal, message, err)
}
