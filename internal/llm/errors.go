package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrNotConfigured is returned when no API credential is available.
var ErrNotConfigured = errors.New("LLM client is not configured: GEMINI_API_KEY is not set")

// APICallError represents a failed call to the model provider
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents model output that does not have the requested shape
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// overloadMarkers are substrings the provider uses for transient capacity errors.
var overloadMarkers = []string{"503", "unavailable", "overloaded"}

// IsOverloaded reports whether err carries a transient upstream
// overload/unavailable signal.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusServiceUnavailable, http.StatusTooManyRequests:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range overloadMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsMalformed reports whether err is a model-output shape error.
func IsMalformed(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsRetryable reports whether a call that failed with err is worth retrying.
func IsRetryable(err error) bool {
	return IsOverloaded(err) || IsMalformed(err)
}

// GenerationError is the terminal failure of a generation call site after
// retries. Message and Details are safe to show to clients; Overloaded
// reports whether the last upstream error was a capacity signal.
type GenerationError struct {
	Message    string
	Details    string
	Overloaded bool
	Cause      error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.Details, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Message, e.Details)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewGenerationError wraps the last error of an exhausted call site.
func NewGenerationError(message, details string, cause error) *GenerationError {
	return &GenerationError{
		Message:    message,
		Details:    details,
		Overloaded: IsOverloaded(cause),
		Cause:      cause,
	}
}
