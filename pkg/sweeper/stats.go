package sweeper

import (
	"time"

	"fbsweep/pkg/logger"
)

// RunStats accumulates counters for a single run.
type RunStats struct {
	Deleted    int
	Skipped    int
	OutOfRange int
	Errored    int
	Pages      int
	Periods    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall-clock time the run took.
func (s *RunStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Processed returns the number of items the run examined.
func (s *RunStats) Processed() int {
	return s.Deleted + s.Skipped + s.OutOfRange + s.Errored
}

func (s *RunStats) logSummary(reason HaltReason) {
	logger.LogMetrics("sweep", map[string]interface{}{
		"reason":       reason.String(),
		"deleted":      s.Deleted,
		"skipped":      s.Skipped,
		"out_of_range": s.OutOfRange,
		"errored":      s.Errored,
		"pages":        s.Pages,
		"periods":      s.Periods,
		"duration":     s.Duration().Round(time.Second).String(),
	})
}
