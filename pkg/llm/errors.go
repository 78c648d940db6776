package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrorType classifies LLM failures for retry decisions and logging.
type ErrorType string

const (
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeBadRequest  ErrorType = "bad_request"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a structured LLM error with classification.
type Error struct {
	Type       ErrorType
	Message    string
	Retryable  bool
	Cause      error
	StatusCode int
	Model      string
	Endpoint   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}
	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the operation can be retried. The retry
// package checks this method without importing llm.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// classifyError wraps a provider error with a type and a retryability flag.
func classifyError(err error, model, endpoint string) error {
	if err == nil {
		return nil
	}

	errType := ErrorTypeUnknown
	retryable := false
	statusCode := 0

	var apiErr *openai.APIError
	switch {
	case errors.As(err, &apiErr):
		statusCode = apiErr.HTTPStatusCode
		switch {
		case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
			errType = ErrorTypeAuth
		case statusCode == http.StatusTooManyRequests:
			errType = ErrorTypeRateLimit
			retryable = true
		case statusCode >= 500:
			errType = ErrorTypeUnavailable
			retryable = true
		case statusCode >= 400:
			errType = ErrorTypeBadRequest
		}
	case errors.Is(err, context.DeadlineExceeded):
		errType = ErrorTypeTimeout
		retryable = true
	case strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "no such host"):
		errType = ErrorTypeUnavailable
		retryable = true
	}

	return &Error{
		Type:       errType,
		Message:    "provider request failed",
		Retryable:  retryable,
		Cause:      err,
		StatusCode: statusCode,
		Model:      model,
		Endpoint:   endpoint,
	}
}
