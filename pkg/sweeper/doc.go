// Package sweeper implements the traversal and deletion engine for the
// activity log.
//
// The Sweeper walks the log period by period (newest month first), pages
// through each period, and runs every extracted item through the deletion
// pipeline: processed-id skip, date-range filter, rate governor, deletion
// with bounded retry, and outcome classification.
//
// Architecture:
//
// The Sweeper struct is the single thread of control that:
//   - Enumerates (year, month) periods descending over the configured range
//   - Loads pages through a PageDriver with bounded retry
//   - Enforces the hourly deletion cap via the rate governor
//   - Classifies every deletion outcome and halts on terminal verdicts
//   - Persists a resumable checkpoint after every page and on every halt
//
// Usage:
//
//	sw, err := sweeper.New(cfg, driver, sweeper.WithResume(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stats, err := sw.Run(ctx)
//	var halt *sweeper.HaltError
//	if errors.As(err, &halt) {
//	    // halt.Reason says why the run stopped early
//	}
//
// Halting:
//
// A run ends in exactly one of the HaltReason states. Only HaltDone means
// the range was fully swept; every other reason leaves a checkpoint behind
// so the next invocation resumes where this one stopped. The engine never
// retries past a rate-limit or account-safety verdict.
package sweeper
