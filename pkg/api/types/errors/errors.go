// Package errors shapes every error leaving the HTTP boundary into the
// platform envelope: {"error": {"code", "message", "details"}}.
package errors

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Envelope codes. No other code crosses the boundary.
const (
	CodeDataNotFound     = "DATA_NOT_FOUND"
	CodeAccessDenied     = "ACCESS_DENIED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeExecutionFailed  = "EXECUTION_FAILED"
	CodeTimeout          = "TIMEOUT"
)

type ErrorResponse struct {
	Error ErrorMessage `json:"error"`
}

type ErrorMessage struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e ErrorMessage) Error() string {
	return e.Code + ": " + e.Message
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithDetail(key string, value any) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if in.Details == nil {
			in.Details = map[string]any{}
		}
		in.Details[key] = value
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

// NewErrorMessage builds an echo error carrying the envelope.
func NewErrorMessage(status int, code string, message string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Code: code, Message: message}
	for _, opt := range opts {
		msg = *opt(&msg)
	}
	return echo.NewHTTPError(status, ErrorResponse{Error: msg}).SetInternal(msg)
}

func NotFound(message string, opts ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, CodeDataNotFound, message, opts...)
}

func AccessDenied(message string, opts ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(http.StatusForbidden, CodeAccessDenied, message, opts...)
}

func Unauthorized(message string) *echo.HTTPError {
	return NewErrorMessage(http.StatusUnauthorized, CodeAccessDenied, message)
}

func BadRequest(message string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusBadRequest, CodeValidationFailed, message, WithError(err))
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError, CodeExecutionFailed, "unexpected error", WithError(err),
	)
}

func Timeout(message string) *echo.HTTPError {
	return NewErrorMessage(http.StatusGatewayTimeout, CodeTimeout, message)
}

func TooManyRequests(class string) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusTooManyRequests, CodeExecutionFailed, "rate limit exceeded",
		WithDetail("request_class", class),
	)
}

// EnvelopeCode maps a unit failure code onto the envelope vocabulary.
func EnvelopeCode(unitCode string) string {
	switch {
	case unitCode == CodeTimeout:
		return CodeTimeout
	case unitCode == CodeValidationFailed:
		return CodeValidationFailed
	case strings.HasSuffix(unitCode, "_NOT_FOUND"):
		return CodeDataNotFound
	case strings.HasSuffix(unitCode, "_DENIED") || unitCode == "ACCESS_DENIED":
		return CodeAccessDenied
	}
	return CodeExecutionFailed
}
