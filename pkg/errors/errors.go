package errors

import "fmt"

// ErrorType classifies failures of remote interactions
type ErrorType string

const (
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeSessionExpired ErrorType = "session_expired"
	ErrorTypeAccountBlocked ErrorType = "account_blocked"
	ErrorTypeParsing        ErrorType = "parsing"
	ErrorTypePersistence    ErrorType = "persistence"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// Error represents a classified failure of a page load or delete action
type Error struct {
	Type    ErrorType
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// IsRetryable checks if an error type should be retried within the run.
// Rate limits and block signals are deliberately not retryable: retrying
// against active pushback is the failure mode this tool exists to avoid.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeUnknown:
		return true
	default:
		return false
	}
}

// IsTerminal checks if an error type ends the whole run rather than the
// current page or item.
func IsTerminal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeSessionExpired, ErrorTypeAccountBlocked:
		return true
	default:
		return false
	}
}
