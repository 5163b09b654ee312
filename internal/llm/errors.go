//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error is a failed LLM call.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimit      = "rate_limit"
	ErrCodeInvalidKey     = "invalid_api_key"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeModelError     = "model_error"
	ErrCodeUnavailable    = "unavailable"
	ErrCodeTimeout        = "timeout"
	ErrCodeNetworkError   = "network_error"
)

// StatusError maps an HTTP error status onto an Error.
func StatusError(status int, message string) *Error {
	e := &Error{StatusCode: status, Message: message}
	switch {
	case status == http.StatusTooManyRequests:
		e.Code, e.Retryable = ErrCodeRateLimit, true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = ErrCodeInvalidKey
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		e.Code, e.Retryable = ErrCodeTimeout, true
	case status >= 500:
		e.Code, e.Retryable = ErrCodeUnavailable, true
	default:
		e.Code = ErrCodeInvalidRequest
	}
	return e
}

// TransportError classifies a failure to get any HTTP response.
func TransportError(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return &Error{Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
	default:
		return &Error{Code: ErrCodeNetworkError, Message: err.Error(), Retryable: true, Err: err}
	}
}

// IsRetryable returns true if the error can be retried.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
