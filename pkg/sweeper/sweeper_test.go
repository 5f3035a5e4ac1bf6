package sweeper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbsweep/pkg/checkpoint"
	"fbsweep/pkg/config"
	"fbsweep/pkg/facebook"
	"fbsweep/pkg/logger"
	"fbsweep/pkg/models"
	"fbsweep/pkg/ratelimit"
)

// fakeDriver serves scripted pages and deletion results, keyed by a
// synthetic page URL derived from period and pagination token.
type fakeDriver struct {
	items         map[string][]models.Item
	next          map[string]string
	content       map[string]string
	renderFails   map[string]int
	extractFails  map[string]error
	deleteResults map[string][]facebook.ActionResult
	renders       map[string]int
	attempts      map[string]int
	deleted       []string
	afterDelete   func(id string)
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		items:         make(map[string][]models.Item),
		next:          make(map[string]string),
		content:       make(map[string]string),
		renderFails:   make(map[string]int),
		extractFails:  make(map[string]error),
		deleteResults: make(map[string][]facebook.ActionResult),
		renders:       make(map[string]int),
		attempts:      make(map[string]int),
	}
}

func pageURL(period models.Period, token string) string {
	if token == "" {
		return "page://" + period.String()
	}
	return "page://" + period.String() + "/" + token
}

func (d *fakeDriver) addPage(period models.Period, token, nextToken string, items ...models.Item) {
	url := pageURL(period, token)
	d.items[url] = items
	if nextToken != "" {
		d.next[url] = nextToken
	}
}

func (d *fakeDriver) scriptDelete(id string, results ...facebook.ActionResult) {
	d.deleteResults[id] = append(d.deleteResults[id], results...)
}

func (d *fakeDriver) Render(ctx context.Context, period models.Period, token string) (*facebook.Page, error) {
	url := pageURL(period, token)
	if d.renderFails[url] > 0 {
		d.renderFails[url]--
		return nil, errors.New("connection reset by peer")
	}
	d.renders[url]++
	return &facebook.Page{URL: url, Content: d.content[url]}, nil
}

func (d *fakeDriver) ExtractItems(page *facebook.Page) ([]models.Item, error) {
	if err := d.extractFails[page.URL]; err != nil {
		return nil, err
	}
	return d.items[page.URL], nil
}

func (d *fakeDriver) NextPageToken(page *facebook.Page) (string, bool) {
	token, ok := d.next[page.URL]
	return token, ok
}

func (d *fakeDriver) InvokeDelete(ctx context.Context, locator models.Locator) (*facebook.ActionResult, error) {
	id := locator.Href
	d.attempts[id]++
	if queue := d.deleteResults[id]; len(queue) > 0 {
		result := queue[0]
		d.deleteResults[id] = queue[1:]
		return &result, nil
	}
	d.deleted = append(d.deleted, id)
	if d.afterDelete != nil {
		d.afterDelete(id)
	}
	return &facebook.ActionResult{URL: "https://mbasic.facebook.com/allactivity", Content: ""}, nil
}

func testItem(id, dateText string) models.Item {
	return models.Item{
		ID:       id,
		Kind:     "post",
		DateText: dateText,
		Locator:  models.Locator{Href: id},
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Account.Username = "tester"
	cfg.Range.StartDate = "2020-01-01"
	cfg.Range.EndDate = "2020-03-31"
	cfg.Retry.RetryDelay = time.Millisecond
	cfg.Traversal.CleanTrash = false
	return cfg
}

// testNow is well after the configured range so period reference dates
// never clamp.
func testNow() time.Time {
	return time.Date(2020, 4, 15, 12, 0, 0, 0, time.UTC)
}

func newTestSweeper(t *testing.T, cfg *config.Config, driver *fakeDriver, opts ...Option) (*Sweeper, *checkpoint.Manager, *ratelimit.GaussianDelay) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	mgr, err := checkpoint.NewManager(cfg.Account.Username)
	require.NoError(t, err)

	delay := ratelimit.NewGaussianDelay(
		cfg.RateLimit.DelayMeanSeconds,
		cfg.RateLimit.DelayStdDevSeconds,
		cfg.RateLimit.MinDelaySeconds,
		cfg.RateLimit.BackoffMultiplier,
	)
	gov := ratelimit.NewGovernor(cfg.RateLimit.MaxDeletionsPerHour, delay,
		ratelimit.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }))

	base := []Option{
		WithGovernor(gov),
		WithCheckpointManager(mgr),
		WithClock(testNow),
		WithLogger(logger.NewNopLogger()),
	}
	sw, err := New(cfg, driver, append(base, opts...)...)
	require.NoError(t, err)
	return sw, mgr, delay
}

func haltReason(t *testing.T, err error) HaltReason {
	t.Helper()
	var herr *HaltError
	require.ErrorAs(t, err, &herr)
	return herr.Reason
}

func TestRunSweepsFullRange(t *testing.T) {
	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "p2",
		testItem("mar-1", "March 20, 2020"),
		testItem("mar-2", "March 12, 2020"))
	driver.addPage(models.Period{Year: 2020, Month: 3}, "p2", "",
		testItem("mar-3", "March 2, 2020"))
	driver.addPage(models.Period{Year: 2020, Month: 2}, "", "",
		testItem("feb-1", "February 14, 2020"))
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "",
		testItem("jan-1", "January 5, 2020"))

	sw, mgr, _ := newTestSweeper(t, testConfig(), driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"mar-1", "mar-2", "mar-3", "feb-1", "jan-1"}, driver.deleted)
	assert.Equal(t, 5, stats.Deleted)
	assert.Equal(t, 4, stats.Pages)
	assert.Equal(t, 3, stats.Periods)
	assert.False(t, mgr.Exists(), "completed run should remove its checkpoint")
}

func TestOutOfRangeItemsAreSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.Traversal.StrictDescending = false

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "",
		testItem("in-range", "January 10, 2020"),
		testItem("too-old", "December 20, 2019"),
		testItem("also-old", "November 3, 2019"))

	cfg.Range.EndDate = "2020-01-31"
	sw, mgr, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"in-range"}, driver.deleted)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 2, stats.OutOfRange)
	assert.False(t, mgr.Exists())
}

func TestStrictDescendingShortCircuit(t *testing.T) {
	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "p2",
		testItem("keep", "January 15, 2020"),
		testItem("boundary", "December 28, 2019"),
		testItem("never-seen", "January 2, 2020"))
	driver.addPage(models.Period{Year: 2020, Month: 1}, "p2", "",
		testItem("never-rendered", "January 1, 2020"))

	cfg := testConfig()
	cfg.Range.EndDate = "2020-01-31"
	sw, _, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"keep"}, driver.deleted)
	assert.Equal(t, 1, stats.Deleted)
	assert.Zero(t, driver.renders[pageURL(models.Period{Year: 2020, Month: 1}, "p2")],
		"short-circuit must stop paging the period")
}

func TestResumeSkipsProcessedAndEarlierPeriods(t *testing.T) {
	cfg := testConfig()

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("already-done", "March 9, 2020"))
	driver.addPage(models.Period{Year: 2020, Month: 2}, "", "",
		testItem("already-done", "February 20, 2020"),
		testItem("fresh", "February 10, 2020"))
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "",
		testItem("old-fresh", "January 3, 2020"))

	t.Setenv("XDG_DATA_HOME", t.TempDir())
	mgr, err := checkpoint.NewManager(cfg.Account.Username)
	require.NoError(t, err)
	cp, err := mgr.Create(cfg.Account.Username, models.Period{Year: 2020, Month: 3})
	require.NoError(t, err)
	cp.MarkProcessed("already-done")
	cp.DeletedCount = 1
	cp.SetPosition(models.Period{Year: 2020, Month: 2}, "")
	require.NoError(t, mgr.Save(cp))

	delay := ratelimit.NewGaussianDelay(1, 0, 0.001, 1.5)
	gov := ratelimit.NewGovernor(50, delay,
		ratelimit.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }))
	sw, err := New(cfg, driver,
		WithResume(true),
		WithGovernor(gov),
		WithCheckpointManager(mgr),
		WithClock(testNow),
		WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"fresh", "old-fresh"}, driver.deleted)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, driver.renders[pageURL(models.Period{Year: 2020, Month: 3}, "")],
		"resume must not revisit completed periods")
}

func TestExistingCheckpointRequiresResumeFlag(t *testing.T) {
	cfg := testConfig()

	t.Setenv("XDG_DATA_HOME", t.TempDir())
	mgr, err := checkpoint.NewManager(cfg.Account.Username)
	require.NoError(t, err)
	_, err = mgr.Create(cfg.Account.Username, models.Period{Year: 2020, Month: 3})
	require.NoError(t, err)

	sw, err := New(cfg, newFakeDriver(),
		WithCheckpointManager(mgr),
		WithClock(testNow),
		WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	_, err = sw.Run(context.Background())
	assert.Equal(t, HaltFatalError, haltReason(t, err))
	assert.Contains(t, err.Error(), "--resume")
	assert.True(t, mgr.Exists(), "the checkpoint must survive the refused run")
}

func TestForceRestartDiscardsCheckpoint(t *testing.T) {
	cfg := testConfig()

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("seen-before", "March 9, 2020"))

	t.Setenv("XDG_DATA_HOME", t.TempDir())
	mgr, err := checkpoint.NewManager(cfg.Account.Username)
	require.NoError(t, err)
	cp, err := mgr.Create(cfg.Account.Username, models.Period{Year: 2020, Month: 3})
	require.NoError(t, err)
	cp.MarkProcessed("seen-before")
	require.NoError(t, mgr.Save(cp))

	delay := ratelimit.NewGaussianDelay(1, 0, 0.001, 1.5)
	gov := ratelimit.NewGovernor(50, delay,
		ratelimit.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }))
	sw, err := New(cfg, driver,
		WithForceRestart(true),
		WithGovernor(gov),
		WithCheckpointManager(mgr),
		WithClock(testNow),
		WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"seen-before"}, driver.deleted)
	assert.Equal(t, 1, stats.Deleted)
	assert.Zero(t, stats.Skipped)
}

func TestHourlyCapHaltsRun(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.MaxDeletionsPerHour = 2

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("one", "March 20, 2020"),
		testItem("two", "March 12, 2020"),
		testItem("three", "March 2, 2020"))

	sw, mgr, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	assert.Equal(t, HaltRateLimitExceeded, haltReason(t, err))
	assert.Equal(t, 2, stats.Deleted)

	cp, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.True(t, cp.IsProcessed("one"))
	assert.True(t, cp.IsProcessed("two"))
	assert.False(t, cp.IsProcessed("three"), "the capped item must stay pending")
}

func TestRateLimitedVerdictPenalizesAndHalts(t *testing.T) {
	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("throttled", "March 20, 2020"))
	driver.scriptDelete("throttled", facebook.ActionResult{
		URL:     "https://mbasic.facebook.com/allactivity",
		Content: "You're going too fast. Please slow down.",
	})

	sw, mgr, delay := newTestSweeper(t, testConfig(), driver)
	stats, err := sw.Run(context.Background())
	assert.Equal(t, HaltRateLimitExceeded, haltReason(t, err))
	assert.Zero(t, stats.Deleted)
	assert.Equal(t, 1, delay.Penalties())

	cp, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.False(t, cp.IsProcessed("throttled"),
		"an unconfirmed deletion must be re-attempted next run")
}

func TestAccountBlockHaltsImmediately(t *testing.T) {
	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("first", "March 20, 2020"),
		testItem("blocked-on", "March 12, 2020"),
		testItem("never-reached", "March 2, 2020"))
	driver.scriptDelete("blocked-on", facebook.ActionResult{
		URL:     "https://mbasic.facebook.com/allactivity",
		Content: "This feature is temporarily blocked",
	})

	sw, mgr, _ := newTestSweeper(t, testConfig(), driver)
	stats, err := sw.Run(context.Background())
	assert.Equal(t, HaltAccountBlocked, haltReason(t, err))
	assert.Equal(t, 1, stats.Deleted)
	assert.Zero(t, driver.attempts["never-reached"])

	cp, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.True(t, cp.IsProcessed("first"), "progress before the block must be checkpointed")
}

func TestSessionExpiryOnPageLoadHalts(t *testing.T) {
	driver := newFakeDriver()
	url := pageURL(models.Period{Year: 2020, Month: 3}, "")
	driver.content[url] = `<form id="login_form">Log into Facebook</form>`

	sw, _, _ := newTestSweeper(t, testConfig(), driver)
	stats, err := sw.Run(context.Background())
	assert.Equal(t, HaltSessionExpired, haltReason(t, err))
	assert.Zero(t, stats.Deleted)
}

func TestTransientDeleteFailureRetriesThenSucceeds(t *testing.T) {
	cfg := testConfig()
	cfg.Retry.MaxRetriesPerItem = 3

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("flaky", "March 20, 2020"))
	driver.scriptDelete("flaky",
		facebook.ActionResult{Err: errors.New("timeout awaiting response")},
		facebook.ActionResult{Err: errors.New("timeout awaiting response")})

	sw, _, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"flaky"}, driver.deleted)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 3, driver.attempts["flaky"])
}

func TestTransientRetriesExhaustedMarksErrored(t *testing.T) {
	cfg := testConfig()
	cfg.Retry.MaxRetriesPerItem = 2

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("broken", "March 20, 2020"),
		testItem("fine", "March 10, 2020"))
	driver.scriptDelete("broken",
		facebook.ActionResult{Err: errors.New("timeout awaiting response")},
		facebook.ActionResult{Err: errors.New("timeout awaiting response")},
		facebook.ActionResult{Err: errors.New("timeout awaiting response")})

	sw, mgr, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"fine"}, driver.deleted)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 1, stats.Errored)
	assert.Equal(t, 2, driver.attempts["broken"])
	assert.False(t, mgr.Exists(), "exhausted retries do not block run completion")
}

func TestUnreadableDateLeavesItemInPlace(t *testing.T) {
	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("no-date", "see more"),
		testItem("dated", "March 10, 2020"))

	sw, _, _ := newTestSweeper(t, testConfig(), driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"dated"}, driver.deleted)
	assert.Equal(t, 1, stats.Errored)
}

func TestRelativeDatesResolveAgainstPeriod(t *testing.T) {
	// Reference for 2020-03 is March 31; "2 weeks ago" lands inside the
	// range while "5 years ago" does not.
	cfg := testConfig()
	cfg.Traversal.StrictDescending = false

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("recent", "2 weeks ago"),
		testItem("ancient", "5 years ago"))
	driver.addPage(models.Period{Year: 2020, Month: 2}, "", "")
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "")

	sw, _, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"recent"}, driver.deleted)
	assert.Equal(t, 1, stats.OutOfRange)
}

func TestTrashSweepBypassesDateFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Traversal.CleanTrash = true

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("regular", "March 10, 2020"))
	driver.addPage(models.Period{Year: 2020, Month: 2}, "", "")
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "")
	driver.addPage(models.TrashPeriod, "", "",
		testItem("trash-old", "June 1, 2012"),
		testItem("trash-undated", ""))

	sw, _, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"regular", "trash-old", "trash-undated"}, driver.deleted)
	assert.Equal(t, 3, stats.Deleted)
	assert.Zero(t, stats.OutOfRange)
}

func TestPageLoadRetriesTransientFailures(t *testing.T) {
	cfg := testConfig()
	cfg.Retry.MaxRetriesPerPageLoad = 3

	driver := newFakeDriver()
	url := pageURL(models.Period{Year: 2020, Month: 3}, "")
	driver.renderFails[url] = 2
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("eventually", "March 10, 2020"))
	driver.addPage(models.Period{Year: 2020, Month: 2}, "", "")
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "")

	sw, _, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eventually"}, driver.deleted)
	assert.Equal(t, 1, stats.Deleted)
}

func TestPageLoadExhaustionHaltsRun(t *testing.T) {
	cfg := testConfig()
	cfg.Retry.MaxRetriesPerPageLoad = 2

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("mar-1", "March 10, 2020"))
	driver.renderFails[pageURL(models.Period{Year: 2020, Month: 2}, "")] = 10
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "",
		testItem("jan-1", "January 5, 2020"))

	sw, mgr, _ := newTestSweeper(t, cfg, driver)
	stats, err := sw.Run(context.Background())
	assert.Equal(t, HaltFatalError, haltReason(t, err),
		"an unreachable period must not let the run finish clean")
	assert.Equal(t, []string{"mar-1"}, driver.deleted)
	assert.Equal(t, 1, stats.Deleted)
	assert.Zero(t, driver.renders[pageURL(models.Period{Year: 2020, Month: 1}, "")],
		"periods after the failure must not be walked")
	assert.True(t, mgr.Exists(), "the checkpoint must survive for a later retry")
}

func TestExtractionFailureHaltsRun(t *testing.T) {
	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("mar-1", "March 10, 2020"))
	driver.extractFails[pageURL(models.Period{Year: 2020, Month: 2}, "")] = errors.New("markup changed")
	driver.addPage(models.Period{Year: 2020, Month: 1}, "", "",
		testItem("jan-1", "January 5, 2020"))

	sw, mgr, _ := newTestSweeper(t, testConfig(), driver)
	stats, err := sw.Run(context.Background())
	assert.Equal(t, HaltFatalError, haltReason(t, err))
	assert.Equal(t, []string{"mar-1"}, driver.deleted)
	assert.Equal(t, 1, stats.Deleted)
	assert.True(t, mgr.Exists())
}

func TestDeletionRecordSaveFailureHaltsRun(t *testing.T) {
	cfg := testConfig()

	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("first", "March 20, 2020"),
		testItem("second", "March 12, 2020"))

	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)
	mgr, err := checkpoint.NewManager(cfg.Account.Username)
	require.NoError(t, err)

	// A directory at the temp-file path makes every subsequent save fail.
	tmpPath := filepath.Join(dataDir, "fbsweep", "checkpoints",
		cfg.Account.Username+".checkpoint.json.tmp")
	driver.afterDelete = func(id string) {
		if id == "first" {
			require.NoError(t, os.MkdirAll(tmpPath, 0755))
		}
	}

	delay := ratelimit.NewGaussianDelay(1, 0, 0.001, 1.5)
	gov := ratelimit.NewGovernor(50, delay,
		ratelimit.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }))
	sw, err := New(cfg, driver,
		WithGovernor(gov),
		WithCheckpointManager(mgr),
		WithClock(testNow),
		WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	stats, err := sw.Run(context.Background())
	assert.Equal(t, HaltFatalError, haltReason(t, err),
		"an unpersisted deletion must stop the run")
	assert.Equal(t, []string{"first"}, driver.deleted)
	assert.Zero(t, driver.attempts["second"],
		"no further remote deletion after a failed record save")
	assert.Equal(t, 1, stats.Deleted)
}

func TestCancelledContextHaltsRun(t *testing.T) {
	driver := newFakeDriver()
	driver.addPage(models.Period{Year: 2020, Month: 3}, "", "",
		testItem("untouched", "March 10, 2020"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sw, mgr, _ := newTestSweeper(t, testConfig(), driver)
	stats, err := sw.Run(ctx)
	assert.Equal(t, HaltUserCancelled, haltReason(t, err))
	assert.Zero(t, stats.Deleted)
	assert.True(t, mgr.Exists(), "a cancelled run keeps its checkpoint")
}

func TestHaltReasonStrings(t *testing.T) {
	assert.Equal(t, "done", HaltDone.String())
	assert.Equal(t, "rate_limit_exceeded", HaltRateLimitExceeded.String())
	assert.Equal(t, "account_blocked", HaltAccountBlocked.String())
	assert.Equal(t, "session_expired", HaltSessionExpired.String())
	assert.Equal(t, "user_cancelled", HaltUserCancelled.String())
	assert.Equal(t, "fatal_error", HaltFatalError.String())

	assert.True(t, HaltAccountBlocked.Terminal())
	assert.True(t, HaltSessionExpired.Terminal())
	assert.False(t, HaltRateLimitExceeded.Terminal())
}
