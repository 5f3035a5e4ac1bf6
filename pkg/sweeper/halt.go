package sweeper

import "fmt"

// HaltReason identifies why a run stopped.
type HaltReason int

const (
	// HaltDone means the configured range was fully swept.
	HaltDone HaltReason = iota
	// HaltRateLimitExceeded means the hourly cap was exhausted or the
	// remote service signalled throttling.
	HaltRateLimitExceeded
	// HaltAccountBlocked means a checkpoint or security block was detected.
	HaltAccountBlocked
	// HaltSessionExpired means the session cookies stopped authenticating.
	HaltSessionExpired
	// HaltUserCancelled means the context was cancelled.
	HaltUserCancelled
	// HaltFatalError means an unrecoverable local failure, such as being
	// unable to persist the checkpoint.
	HaltFatalError
)

func (r HaltReason) String() string {
	switch r {
	case HaltDone:
		return "done"
	case HaltRateLimitExceeded:
		return "rate_limit_exceeded"
	case HaltAccountBlocked:
		return "account_blocked"
	case HaltSessionExpired:
		return "session_expired"
	case HaltUserCancelled:
		return "user_cancelled"
	case HaltFatalError:
		return "fatal_error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the reason indicates the account needs attention
// before any further run.
func (r HaltReason) Terminal() bool {
	return r == HaltAccountBlocked || r == HaltSessionExpired
}

// HaltError is the typed error a run returns when it stops before the range
// is fully swept.
type HaltError struct {
	Reason HaltReason
	Err    error
}

func (e *HaltError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("run halted (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("run halted (%s)", e.Reason)
}

func (e *HaltError) Unwrap() error {
	return e.Err
}

func halt(reason HaltReason, err error) *HaltError {
	return &HaltError{Reason: reason, Err: err}
}
