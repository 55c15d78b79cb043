package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of gateway errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body could not be decoded.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError is a failed gateway call with the details the gateway reported.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	// Message is the gateway's human-readable message, empty when the body had none.
	Message string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = "no message"
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, detail, e.Err)
	}
	return fmt.Sprintf("gateway %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, detail)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// UserMessage returns the gateway's message verbatim when err carries one,
// otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassNetwork:
		return true
	default:
		// 4xx and undecodable bodies will not change on a second attempt
		return false
	}
}

// classifyStatus maps an HTTP status to an error class. 2xx/3xx map to "".
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
