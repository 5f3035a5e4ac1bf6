package ratelimit

import (
	"context"
	"sync"
	"time"

	"fbsweep/pkg/logger"
)

// Decision is the outcome of asking the governor for a deletion slot
type Decision int

const (
	// Granted means the caller may perform one deletion now
	Granted Decision = iota
	// Denied means the hourly cap is exhausted
	Denied
)

// Governor enforces the hourly deletion cap with a sliding window and
// inserts a randomized pause before every granted slot. When the cap is
// reached it denies immediately instead of blocking: the caller is
// expected to halt the run and resume in a later session.
type Governor struct {
	mu     sync.Mutex
	window time.Duration
	cap    int
	grants []time.Time
	delay  DelayProvider
	warned bool
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger logger.Logger
}

// Option configures a Governor
type Option func(*Governor)

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(g *Governor) { g.now = now }
}

// WithSleep overrides the sleep function, for tests
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Governor) { g.sleep = sleep }
}

// WithLogger overrides the logger
func WithLogger(l logger.Logger) Option {
	return func(g *Governor) { g.logger = l }
}

// NewGovernor creates a governor with a one hour sliding window
func NewGovernor(maxPerHour int, delay DelayProvider, opts ...Option) *Governor {
	g := &Governor{
		window: time.Hour,
		cap:    maxPerHour,
		grants: make([]time.Time, 0, maxPerHour),
		delay:  delay,
		now:    time.Now,
		sleep:  sleepContext,
		logger: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire asks for one deletion slot. On Granted the configured delay
// has already been observed and the slot is recorded. On Denied nothing
// is recorded and no delay is taken. A context error is returned when
// the delay is interrupted.
func (g *Governor) Acquire(ctx context.Context) (Decision, error) {
	g.mu.Lock()
	now := g.now()
	g.trim(now)

	if len(g.grants) >= g.cap {
		g.mu.Unlock()
		g.logger.WithFields(map[string]interface{}{
			"used": g.cap,
			"cap":  g.cap,
		}).Warn("Hourly deletion cap exhausted")
		return Denied, nil
	}

	used := len(g.grants)
	if !g.warned && g.cap > 0 && used*10 >= g.cap*8 {
		g.warned = true
		g.logger.WithFields(map[string]interface{}{
			"used": used,
			"cap":  g.cap,
		}).Warn("Approaching hourly deletion cap")
	}
	g.mu.Unlock()

	if err := g.sleep(ctx, g.delay.Next()); err != nil {
		return Denied, err
	}

	g.mu.Lock()
	now = g.now()
	g.trim(now)
	if len(g.grants) >= g.cap {
		g.mu.Unlock()
		return Denied, nil
	}
	g.grants = append(g.grants, now)
	g.mu.Unlock()

	return Granted, nil
}

// Penalize stretches subsequent delays after a throttling signal
func (g *Governor) Penalize() {
	g.delay.Penalize()
}

// Used returns the number of grants inside the current window
func (g *Governor) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.trim(g.now())
	return len(g.grants)
}

// Remaining returns the number of grants left in the current window
func (g *Governor) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.trim(g.now())
	if left := g.cap - len(g.grants); left > 0 {
		return left
	}
	return 0
}

// Reset clears all recorded grants
func (g *Governor) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.grants = g.grants[:0]
	g.warned = false
}

// trim removes grants that fell outside the sliding window
func (g *Governor) trim(now time.Time) {
	cutoff := now.Add(-g.window)

	i := 0
	for i < len(g.grants) && g.grants[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		copy(g.grants, g.grants[i:])
		g.grants = g.grants[:len(g.grants)-i]
	}
}

// sleepContext sleeps for d or until the context is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
