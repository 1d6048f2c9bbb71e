// File: internal/services/ai/errors.go
package ai

import "fmt"

type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeProvider ErrorType = "PROVIDER"
	ErrTypeFormat   ErrorType = "FORMAT"
)

// AIError carries the upstream failure category alongside the cause.
// Callers inside this package translate it into user-facing fallback
// text; it never crosses the service boundary.
type AIError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

func NewFormatError(operation, msg string) *AIError {
	return &AIError{Type: ErrTypeFormat, Operation: operation, Message: msg}
}
