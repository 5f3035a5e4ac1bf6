package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fbsweep/pkg/checkpoint"
	"fbsweep/pkg/classify"
	"fbsweep/pkg/config"
	errs "fbsweep/pkg/errors"
	"fbsweep/pkg/facebook"
	"fbsweep/pkg/logger"
	"fbsweep/pkg/models"
	"fbsweep/pkg/ratelimit"
	"fbsweep/pkg/retry"
	"fbsweep/pkg/ui"
)

// Sweeper orchestrates the traversal and deletion run. It is single
// threaded: exactly one remote interaction is in flight at any time.
type Sweeper struct {
	driver        PageDriver
	config        *config.Config
	dateRange     models.DateRange
	governor      *ratelimit.Governor
	checkpointMgr *checkpoint.Manager
	logger        logger.Logger
	stats         *RunStats
	now           func() time.Time
	resume        bool
	forceRestart  bool
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithResume makes the run continue from an existing checkpoint.
func WithResume(resume bool) Option {
	return func(s *Sweeper) { s.resume = resume }
}

// WithForceRestart discards any existing checkpoint before the run.
func WithForceRestart(force bool) Option {
	return func(s *Sweeper) { s.forceRestart = force }
}

// WithGovernor replaces the rate governor built from the configuration.
func WithGovernor(g *ratelimit.Governor) Option {
	return func(s *Sweeper) { s.governor = g }
}

// WithCheckpointManager replaces the checkpoint manager built from the
// configured username.
func WithCheckpointManager(m *checkpoint.Manager) Option {
	return func(s *Sweeper) { s.checkpointMgr = m }
}

// WithLogger replaces the global logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sweeper) { s.logger = l }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// New creates a Sweeper for the configured account and date range.
func New(cfg *config.Config, driver PageDriver, opts ...Option) (*Sweeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	start, end, err := cfg.DateRange()
	if err != nil {
		return nil, err
	}
	dateRange := models.DateRange{Start: start, End: end}
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}

	s := &Sweeper{
		driver:    driver,
		config:    cfg,
		dateRange: dateRange,
		logger:    logger.GetLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.governor == nil {
		delay := ratelimit.NewGaussianDelay(
			cfg.RateLimit.DelayMeanSeconds,
			cfg.RateLimit.DelayStdDevSeconds,
			cfg.RateLimit.MinDelaySeconds,
			cfg.RateLimit.BackoffMultiplier,
		)
		s.governor = ratelimit.NewGovernor(cfg.RateLimit.MaxDeletionsPerHour, delay,
			ratelimit.WithLogger(s.logger))
	}

	if s.checkpointMgr == nil {
		mgr, err := checkpoint.NewManager(cfg.Account.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
		}
		s.checkpointMgr = mgr
	}

	return s, nil
}

// Run executes the sweep. The returned stats are always valid; the error is
// nil when the range was fully swept and a *HaltError otherwise.
func (s *Sweeper) Run(ctx context.Context) (*RunStats, error) {
	s.stats = &RunStats{StartedAt: s.now()}

	logger.LogComponentStart("sweeper", map[string]interface{}{
		"username":     s.config.Account.Username,
		"range_start":  s.dateRange.Start.Format("2006-01-02"),
		"range_end":    s.dateRange.End.Format("2006-01-02"),
		"max_per_hour": s.config.RateLimit.MaxDeletionsPerHour,
		"clean_trash":  s.config.Traversal.CleanTrash,
	})

	cp, err := s.prepareCheckpoint()
	if err != nil {
		return s.finish(halt(HaltFatalError, err))
	}

	for _, period := range s.periodsToSweep(cp) {
		if err := ctx.Err(); err != nil {
			s.save(cp)
			return s.finish(halt(HaltUserCancelled, err))
		}

		token := ""
		if period == cp.Period {
			token = cp.PageToken
		}
		cp.SetPosition(period, token)
		if err := s.save(cp); err != nil {
			return s.finish(halt(HaltFatalError, err))
		}

		if herr := s.sweepPeriod(ctx, cp, period, token, false); herr != nil {
			return s.finish(herr)
		}
		s.stats.Periods++
	}

	if s.config.Traversal.CleanTrash {
		token := ""
		if cp.Period.IsZero() {
			token = cp.PageToken
		}
		cp.SetPosition(models.TrashPeriod, token)
		if err := s.save(cp); err != nil {
			return s.finish(halt(HaltFatalError, err))
		}
		if herr := s.sweepPeriod(ctx, cp, models.TrashPeriod, token, true); herr != nil {
			return s.finish(herr)
		}
	}

	if err := s.checkpointMgr.Delete(); err != nil {
		s.logger.WithError(err).Warn("Failed to remove completed checkpoint")
	}
	return s.finish(nil)
}

// prepareCheckpoint loads, discards, or creates the checkpoint according to
// the resume flags, mirroring the behavior on the command line: an existing
// checkpoint without --resume or --force-restart is an error.
func (s *Sweeper) prepareCheckpoint() (*checkpoint.Checkpoint, error) {
	if s.forceRestart && s.checkpointMgr.Exists() {
		if err := s.checkpointMgr.Delete(); err != nil {
			s.logger.WithError(err).Warn("Failed to delete existing checkpoint")
		}
		ui.PrintInfo("Force restart", "Ignoring existing checkpoint")
	} else if s.resume && s.checkpointMgr.Exists() {
		cp, err := s.checkpointMgr.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			ui.PrintInfo("Resuming from checkpoint",
				fmt.Sprintf("Deleted so far: %d, position: %s", cp.DeletedCount, cp.Period))
			s.logger.InfoWithFields("Resuming from checkpoint", map[string]interface{}{
				"username":      cp.Username,
				"deleted_count": cp.DeletedCount,
				"period":        cp.Period.String(),
			})
			return cp, nil
		}
	} else if s.checkpointMgr.Exists() {
		if info, err := s.checkpointMgr.GetCheckpointInfo(); err == nil && info != nil {
			ui.PrintInfo("Existing checkpoint",
				fmt.Sprintf("%v deleted, position %v, last updated %v",
					info["deleted"], info["period"], info["updated_at"]))
		}
		return nil, errs.New(errs.ErrorTypePersistence,
			"checkpoint exists - use --resume to continue or --force-restart to start fresh")
	}

	periods := s.dateRange.Periods()
	if len(periods) == 0 {
		return nil, errs.New(errs.ErrorTypeUnknown, "date range covers no periods")
	}
	cp, err := s.checkpointMgr.Create(s.config.Account.Username, periods[0])
	if err != nil {
		s.logger.WithError(err).Warn("Failed to create checkpoint, continuing without persistence")
		cp = &checkpoint.Checkpoint{
			Username:     s.config.Account.Username,
			Period:       periods[0],
			ProcessedIDs: make(map[string]bool),
			ErroredIDs:   make(map[string]bool),
		}
	}
	return cp, nil
}

// periodsToSweep returns the remaining periods in descending order, seeded
// from the checkpoint position. A zero checkpoint period means the main
// traversal already completed and only the trash sweep remains.
func (s *Sweeper) periodsToSweep(cp *checkpoint.Checkpoint) []models.Period {
	var periods []models.Period
	for _, p := range s.dateRange.Periods() {
		if p.Year >= s.config.Traversal.MinYear {
			periods = append(periods, p)
		}
	}

	if cp.Period.IsZero() {
		return nil
	}
	for i, p := range periods {
		if p == cp.Period {
			return periods[i:]
		}
	}
	// The saved position is outside the configured range, typically after
	// the range was edited between runs. Processed ids still apply.
	s.logger.WarnWithFields("Checkpoint position outside configured range, starting from newest period",
		map[string]interface{}{"checkpoint_period": cp.Period.String()})
	return periods
}

// sweepPeriod pages through one period. A nil return means the period was
// exhausted or short-circuited; any halt is returned to the caller.
func (s *Sweeper) sweepPeriod(ctx context.Context, cp *checkpoint.Checkpoint, period models.Period, token string, bypassFilter bool) *HaltError {
	deletedBefore := s.stats.Deleted
	skippedBefore := s.stats.Skipped
	erroredBefore := s.stats.Errored

	for {
		if err := ctx.Err(); err != nil {
			s.save(cp)
			return halt(HaltUserCancelled, err)
		}

		page, herr := s.loadPage(ctx, period, token)
		if herr != nil {
			s.save(cp)
			return herr
		}
		s.stats.Pages++

		items, err := s.driver.ExtractItems(page)
		if err != nil {
			// Items that cannot be read cannot be proven deleted. The
			// checkpoint survives so a later run retries the period.
			s.logger.WithError(err).WithField("period", period.String()).
				Error("Item extraction failed")
			s.save(cp)
			return halt(HaltFatalError,
				errs.New(errs.ErrorTypeParsing, "extracting items for %s: %v", period, err))
		}

		for _, item := range items {
			if err := ctx.Err(); err != nil {
				s.save(cp)
				return halt(HaltUserCancelled, err)
			}
			outcome, herr := s.processItem(ctx, cp, item, period, bypassFilter)
			if herr != nil {
				s.save(cp)
				return herr
			}
			if outcome == outcomeShortCircuit {
				s.logger.InfoWithFields("Oldest in-range item passed, ending period early",
					map[string]interface{}{"period": period.String(), "item_id": item.ID})
				if err := s.save(cp); err != nil {
					return halt(HaltFatalError, err)
				}
				logger.LogSweepProgress(period.String(),
					s.stats.Deleted-deletedBefore, s.stats.Skipped-skippedBefore, s.stats.Errored-erroredBefore)
				return nil
			}
		}

		next, ok := s.driver.NextPageToken(page)
		if !ok {
			if err := s.save(cp); err != nil {
				return halt(HaltFatalError, err)
			}
			break
		}
		token = next
		cp.SetPosition(period, token)
		if err := s.save(cp); err != nil {
			return halt(HaltFatalError, err)
		}
	}

	logger.LogSweepProgress(period.String(),
		s.stats.Deleted-deletedBefore, s.stats.Skipped-skippedBefore, s.stats.Errored-erroredBefore)
	return nil
}

// loadPage renders a page with bounded retry for transient failures and
// classifies the rendered result. Exhausting the retry budget is a halt:
// the page's items cannot be walked, so completing the run would silently
// leave them behind.
func (s *Sweeper) loadPage(ctx context.Context, period models.Period, token string) (*facebook.Page, *HaltError) {
	cfg := &retry.Config{
		MaxAttempts: s.config.Retry.MaxRetriesPerPageLoad,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    s.config.Retry.RetryDelay,
			MaxDelay:     60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
		Logger:  s.logger,
	}

	page, err := retry.DoWithResult(func() (*facebook.Page, error) {
		p, rerr := s.driver.Render(ctx, period, token)
		if rerr != nil {
			return nil, errs.New(errs.ErrorTypeNetwork, "render %s: %v", period, rerr)
		}
		verdict := classify.Classify(classify.Signal{URL: p.URL, Content: p.Content})
		if verdict == classify.Success {
			return p, nil
		}
		return nil, errs.New(verdict.ErrorType(), "page load for %s classified as %s", period, verdict)
	}, cfg)
	if err == nil {
		return page, nil
	}

	if ctx.Err() != nil {
		return nil, halt(HaltUserCancelled, ctx.Err())
	}
	var typed *errs.Error
	if errors.As(err, &typed) {
		switch typed.Type {
		case errs.ErrorTypeSessionExpired:
			return nil, halt(HaltSessionExpired, err)
		case errs.ErrorTypeAccountBlocked:
			return nil, halt(HaltAccountBlocked, err)
		case errs.ErrorTypeRateLimit:
			s.governor.Penalize()
			return nil, halt(HaltRateLimitExceeded, err)
		}
	}
	return nil, halt(HaltFatalError, err)
}

func (s *Sweeper) save(cp *checkpoint.Checkpoint) error {
	if err := s.checkpointMgr.Save(cp); err != nil {
		s.logger.WithError(err).Error("Failed to save checkpoint")
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// finish stamps the stats, logs the summary, and converts the halt into the
// run's return values.
func (s *Sweeper) finish(herr *HaltError) (*RunStats, error) {
	s.stats.FinishedAt = s.now()

	reason := HaltDone
	if herr != nil {
		reason = herr.Reason
		logger.LogHalt(reason.String(), herr.Err)
	}
	s.stats.logSummary(reason)
	logger.LogComponentStop("sweeper", reason.String())

	if herr != nil {
		return s.stats, herr
	}
	return s.stats, nil
}
