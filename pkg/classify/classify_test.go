package classify

import (
	"errors"
	"testing"

	errs "fbsweep/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		signal Signal
		want   Verdict
	}{
		{
			name:   "clean page",
			signal: Signal{URL: "https://mbasic.facebook.com/user/allactivity", Content: "<div>activity</div>"},
			want:   Success,
		},
		{
			name:   "login form marker",
			signal: Signal{URL: "https://mbasic.facebook.com/home", Content: `<form id="login_form">`},
			want:   SessionExpired,
		},
		{
			name:   "login redirect URL",
			signal: Signal{URL: "https://mbasic.facebook.com/login.php?next=..."},
			want:   SessionExpired,
		},
		{
			name:   "checkpoint URL",
			signal: Signal{URL: "https://mbasic.facebook.com/checkpoint/12345"},
			want:   AccountBlocked,
		},
		{
			name:   "action blocked content",
			signal: Signal{URL: "https://mbasic.facebook.com/x", Content: "Action Blocked: you cannot use this feature"},
			want:   AccountBlocked,
		},
		{
			name:   "rate limit content",
			signal: Signal{URL: "https://mbasic.facebook.com/x", Content: "You're going too fast. Please slow down."},
			want:   RateLimited,
		},
		{
			name:   "generic failure content",
			signal: Signal{URL: "https://mbasic.facebook.com/x", Content: "Sorry, something went wrong."},
			want:   TransientError,
		},
		{
			name:   "transport error with no markers",
			signal: Signal{Err: errors.New("connection reset by peer")},
			want:   TransientError,
		},
		{
			name:   "typed rate limit error",
			signal: Signal{Err: errs.New(errs.ErrorTypeRateLimit, "429 from upstream")},
			want:   RateLimited,
		},
		{
			name:   "typed session error",
			signal: Signal{Err: errs.New(errs.ErrorTypeSessionExpired, "cookie rejected")},
			want:   SessionExpired,
		},
		{
			name:   "login marker wins over rate limit marker",
			signal: Signal{Content: "Too many requests. Log into Facebook to continue."},
			want:   SessionExpired,
		},
		{
			name:   "block marker wins over rate limit marker",
			signal: Signal{Content: "Action Blocked. Try again later."},
			want:   AccountBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.signal))
		})
	}
}

func TestVerdictNeverSuccessOnError(t *testing.T) {
	// Fail-closed: any error, however unrecognized, must not be Success.
	v := Classify(Signal{Err: errors.New("totally novel failure")})
	assert.NotEqual(t, Success, v)
}

func TestVerdictTerminal(t *testing.T) {
	assert.False(t, Success.Terminal())
	assert.False(t, TransientError.Terminal())
	assert.False(t, RateLimited.Terminal())
	assert.True(t, AccountBlocked.Terminal())
	assert.True(t, SessionExpired.Terminal())
}

func TestVerdictErrorType(t *testing.T) {
	assert.Equal(t, errs.ErrorTypeRateLimit, RateLimited.ErrorType())
	assert.Equal(t, errs.ErrorTypeAccountBlocked, AccountBlocked.ErrorType())
	assert.Equal(t, errs.ErrorTypeSessionExpired, SessionExpired.ErrorType())
	assert.Equal(t, errs.ErrorTypeNetwork, TransientError.ErrorType())
}
