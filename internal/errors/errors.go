package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes.
const (
	CodeConfig    = "E100"
	CodeDelivery  = "E200"
	CodeTransport = "E300"
	CodeHandler   = "E400"
	CodeRateLimit = "E500"
)

// AppError carries the classification used for logging and reporting.
type AppError struct {
	Code     string
	Message  string
	Severity Severity
	cause    error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func NewConfigError(cause error) *AppError {
	return &AppError{
		Code:     CodeConfig,
		Message:  "invalid configuration",
		Severity: SeverityCritical,
		cause:    cause,
	}
}

// NewDeliveryError wraps a failed reply to the chat.
func NewDeliveryError(what string, cause error) *AppError {
	return &AppError{
		Code:     CodeDelivery,
		Message:  fmt.Sprintf("deliver %s", what),
		Severity: SeverityMedium,
		cause:    cause,
	}
}

func NewTransportError(cause error) *AppError {
	return &AppError{
		Code:     CodeTransport,
		Message:  "telegram transport error",
		Severity: SeverityMedium,
		cause:    cause,
	}
}

// NewHandlerError marks an unexpected failure inside update handling, including recovered panics.
func NewHandlerError(cause error) *AppError {
	return &AppError{
		Code:     CodeHandler,
		Message:  "update handler failed",
		Severity: SeverityHigh,
		cause:    cause,
	}
}

func NewRateLimitError(userID int64) *AppError {
	return &AppError{
		Code:     CodeRateLimit,
		Message:  fmt.Sprintf("rate limit exceeded for user %d", userID),
		Severity: SeverityLow,
	}
}
