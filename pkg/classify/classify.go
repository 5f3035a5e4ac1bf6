package classify

import (
	"strings"

	errs "fbsweep/pkg/errors"
)

// Verdict is the classified outcome of one remote interaction.
type Verdict int

const (
	Success Verdict = iota
	TransientError
	RateLimited
	AccountBlocked
	SessionExpired
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case TransientError:
		return "transient_error"
	case RateLimited:
		return "rate_limited"
	case AccountBlocked:
		return "account_blocked"
	case SessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether the verdict ends the whole run.
func (v Verdict) Terminal() bool {
	return v == AccountBlocked || v == SessionExpired
}

// ErrorType maps a non-success verdict onto the error taxonomy.
func (v Verdict) ErrorType() errs.ErrorType {
	switch v {
	case TransientError:
		return errs.ErrorTypeNetwork
	case RateLimited:
		return errs.ErrorTypeRateLimit
	case AccountBlocked:
		return errs.ErrorTypeAccountBlocked
	case SessionExpired:
		return errs.ErrorTypeSessionExpired
	default:
		return errs.ErrorTypeUnknown
	}
}

// Signal carries whatever is known about the result of a page load or
// delete action: the final URL, the rendered content, and any transport
// error the driver surfaced.
type Signal struct {
	URL     string
	Content string
	Err     error
}

// Markers the remote service renders when it is pushing back. Matching is
// case-insensitive against the page content.
var (
	rateLimitMarkers = []string{
		"you're going too fast",
		"too many requests",
		"please slow down",
		"try again later",
		"temporarily unavailable",
	}

	blockMarkers = []string{
		"action blocked",
		"this feature is temporarily blocked",
		"confirm your identity",
		"verify your account",
		"help us confirm",
	}

	loginMarkers = []string{
		"log in to continue",
		"log into facebook",
		"name=\"login\"",
		"id=\"login_form\"",
	}

	transientMarkers = []string{
		"something went wrong",
		"we're having trouble",
		"unable to complete",
	}

	blockedURLFragments = []string{"checkpoint", "security", "blocked", "restricted"}
	loginURLFragments   = []string{"/login", "login.php"}
)

// Classify inspects a signal and returns a verdict. It is conservative: an
// ambiguous failure never classifies as Success, and signals matching more
// than one marker set resolve to the most severe verdict.
func Classify(sig Signal) Verdict {
	url := strings.ToLower(sig.URL)
	content := strings.ToLower(sig.Content)

	if containsAny(url, loginURLFragments) || containsAny(content, loginMarkers) {
		return SessionExpired
	}
	if containsAny(url, blockedURLFragments) || containsAny(content, blockMarkers) {
		return AccountBlocked
	}
	if containsAny(content, rateLimitMarkers) {
		return RateLimited
	}
	if sig.Err != nil {
		if e, ok := sig.Err.(*errs.Error); ok {
			switch e.Type {
			case errs.ErrorTypeRateLimit:
				return RateLimited
			case errs.ErrorTypeAccountBlocked:
				return AccountBlocked
			case errs.ErrorTypeSessionExpired:
				return SessionExpired
			}
		}
		// Transport failure with no recognized marker: fail closed as
		// transient rather than success.
		return TransientError
	}
	if containsAny(content, transientMarkers) {
		return TransientError
	}
	return Success
}

func containsAny(s string, markers []string) bool {
	if s == "" {
		return false
	}
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
