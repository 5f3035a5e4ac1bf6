package sweeper

import (
	"context"
	"time"

	"fbsweep/pkg/checkpoint"
	"fbsweep/pkg/classify"
	"fbsweep/pkg/dateparse"
	errs "fbsweep/pkg/errors"
	"fbsweep/pkg/logger"
	"fbsweep/pkg/models"
	"fbsweep/pkg/ratelimit"
	"fbsweep/pkg/retry"
)

type outcome int

const (
	outcomeDeleted outcome = iota
	outcomeSkipped
	outcomeOutOfRange
	outcomeErrored
	// outcomeShortCircuit means the item predates the range start and the
	// page is known to be in descending date order, so the rest of the
	// period holds nothing in range.
	outcomeShortCircuit
)

// processItem runs one item through the deletion pipeline. The outcome is
// only meaningful when the halt is nil.
func (s *Sweeper) processItem(ctx context.Context, cp *checkpoint.Checkpoint, item models.Item, period models.Period, bypassFilter bool) (outcome, *HaltError) {
	if cp.IsProcessed(item.ID) {
		s.stats.Skipped++
		return outcomeSkipped, nil
	}

	if !bypassFilter {
		date, err := s.itemDate(item, period)
		if err != nil {
			// An item whose date cannot be read is never deleted.
			s.logger.WithError(err).WithField("item_id", item.ID).
				Warn("Unreadable item date, leaving item in place")
			cp.MarkErrored(item.ID)
			s.stats.Errored++
			return outcomeErrored, nil
		}
		if s.dateRange.BeforeStart(date) {
			if s.config.Traversal.StrictDescending {
				return outcomeShortCircuit, nil
			}
			cp.MarkProcessed(item.ID)
			s.stats.OutOfRange++
			return outcomeOutOfRange, nil
		}
		if !s.dateRange.Contains(date) {
			cp.MarkProcessed(item.ID)
			s.stats.OutOfRange++
			return outcomeOutOfRange, nil
		}
	}

	decision, err := s.governor.Acquire(ctx)
	if err != nil {
		return 0, halt(HaltUserCancelled, err)
	}
	if decision == ratelimit.Denied {
		logger.LogRateLimit(s.governor.Used(), s.config.RateLimit.MaxDeletionsPerHour, time.Hour)
		return 0, halt(HaltRateLimitExceeded,
			errs.New(errs.ErrorTypeRateLimit, "hourly deletion cap reached"))
	}

	verdict, err := s.deleteWithRetry(ctx, item)
	if err != nil && ctx.Err() != nil && verdict != classify.Success {
		// Cancelled mid-attempt. The item stays unprocessed so the next
		// run picks it up again.
		return 0, halt(HaltUserCancelled, ctx.Err())
	}

	logger.LogDeletion(item.ID, item.Kind, verdict.String(), err)

	switch verdict {
	case classify.Success:
		s.stats.Deleted++
		if err := s.checkpointMgr.RecordDeleted(cp, item.ID); err != nil {
			// The remote deletion happened but could not be persisted. The
			// run must not issue another remote action whose outcome it
			// cannot record; the id stays marked in the in-memory
			// checkpoint for the best-effort save on the halt path.
			s.logger.WithError(err).Error("Failed to persist deletion record")
			return outcomeDeleted, halt(HaltFatalError,
				errs.New(errs.ErrorTypePersistence, "recording deletion of %s: %v", item.ID, err))
		}
		return outcomeDeleted, nil

	case classify.TransientError:
		// Retries exhausted. Record the id so it is not re-attempted on
		// resume; the remote item may or may not still exist.
		cp.MarkErrored(item.ID)
		s.stats.Errored++
		return outcomeErrored, nil

	case classify.RateLimited:
		// The id is deliberately left unprocessed: the deletion did not
		// confirm, and a later run must attempt it again.
		s.governor.Penalize()
		return 0, halt(HaltRateLimitExceeded, err)

	case classify.AccountBlocked:
		return 0, halt(HaltAccountBlocked, err)

	case classify.SessionExpired:
		return 0, halt(HaltSessionExpired, err)
	}

	return 0, halt(HaltFatalError, err)
}

// deleteWithRetry invokes the deletion control and classifies the result,
// retrying transient failures up to the configured attempt budget. The
// returned verdict is the classification of the final attempt.
func (s *Sweeper) deleteWithRetry(ctx context.Context, item models.Item) (classify.Verdict, error) {
	var verdict classify.Verdict

	cfg := &retry.Config{
		MaxAttempts: s.config.Retry.MaxRetriesPerItem,
		Backoff:     &retry.ConstantBackoff{Delay: s.config.Retry.RetryDelay},
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      s.logger,
	}

	err := retry.Do(func() error {
		result, err := s.driver.InvokeDelete(ctx, item.Locator)

		var sig classify.Signal
		if result != nil {
			sig = classify.Signal{URL: result.URL, Content: result.Content, Err: result.Err}
		}
		if err != nil {
			sig.Err = err
		}

		verdict = classify.Classify(sig)
		if verdict == classify.Success {
			return nil
		}
		return errs.New(verdict.ErrorType(), "deleting item %s: %s", item.ID, verdict)
	}, cfg)

	return verdict, err
}

// itemDate resolves the item's calendar date. A pre-parsed date from the
// driver wins; otherwise the raw date text is parsed against the period's
// reference date so relative forms resolve correctly.
func (s *Sweeper) itemDate(item models.Item, period models.Period) (time.Time, error) {
	if !item.DisplayDate.IsZero() {
		return item.DisplayDate, nil
	}
	return dateparse.Parse(item.DateText, period.Reference(s.now()))
}
