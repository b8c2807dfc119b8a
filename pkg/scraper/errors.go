package scraper

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType categorizes failures at the backend boundary
type ErrorType string

const (
	ErrorTypeStreamTransport ErrorType = "stream_transport"
	ErrorTypeServerSignal    ErrorType = "server_signal"
	ErrorTypeFetch           ErrorType = "fetch"
	ErrorTypeDecode          ErrorType = "decode"
	ErrorTypeDownload        ErrorType = "download"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeCancelled       ErrorType = "cancelled"
)

// Error is the typed outcome every backend failure is converted into.
type Error struct {
	Type    ErrorType
	Message string
	// Status is the HTTP status when the backend answered, 0 otherwise.
	Status int
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns the single line shown to the user
func (e *Error) UserMessage() string {
	switch e.Type {
	case ErrorTypeStreamTransport, ErrorTypeServerSignal:
		return "❌ Scraping failed."
	case ErrorTypeTimeout:
		return "❌ Scraping failed: no completion signal before the stream timeout."
	case ErrorTypeFetch, ErrorTypeDecode:
		return "❌ Failed to load project data."
	case ErrorTypeDownload:
		return fmt.Sprintf("❌ Download failed: %s", e.Message)
	case ErrorTypeCancelled:
		return "Operation cancelled."
	default:
		return e.Message
	}
}

// IsStreamError reports whether err ended a job's progress stream.
func IsStreamError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrorTypeStreamTransport, ErrorTypeServerSignal, ErrorTypeTimeout:
		return true
	}
	return false
}

// IsFetchError reports whether err came from retrieving the result set.
func IsFetchError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == ErrorTypeFetch || e.Type == ErrorTypeDecode
}

func newStreamError(message string, cause error) *Error {
	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		return &Error{Type: ErrorTypeTimeout, Message: "stream timed out", Cause: cause}
	case errors.Is(cause, context.Canceled):
		return newCancelledError(cause)
	}
	return &Error{
		Type:    ErrorTypeStreamTransport,
		Message: message,
		Cause:   cause,
	}
}

func newServerSignalError(message string) *Error {
	if message == "" {
		message = "server reported an error"
	}
	return &Error{
		Type:    ErrorTypeServerSignal,
		Message: message,
	}
}

func newFetchError(message string, status int, cause error) *Error {
	if errors.Is(cause, context.Canceled) {
		return newCancelledError(cause)
	}
	return &Error{
		Type:    ErrorTypeFetch,
		Message: message,
		Status:  status,
		Cause:   cause,
	}
}

func newDecodeError(cause error) *Error {
	return &Error{
		Type:    ErrorTypeDecode,
		Message: "invalid project data",
		Cause:   cause,
	}
}

func newDownloadError(message string, status int, cause error) *Error {
	if errors.Is(cause, context.Canceled) {
		return newCancelledError(cause)
	}
	return &Error{
		Type:    ErrorTypeDownload,
		Message: message,
		Status:  status,
		Cause:   cause,
	}
}

func newCancelledError(cause error) *Error {
	return &Error{
		Type:    ErrorTypeCancelled,
		Message: "operation cancelled",
		Cause:   cause,
	}
}
