package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fbsweep/pkg/auth"
	"fbsweep/pkg/config"
	"fbsweep/pkg/facebook"
	"fbsweep/pkg/logger"
	"fbsweep/pkg/sweeper"
	"fbsweep/pkg/ui"
)

var (
	// Sweep command flags
	startDate    string
	endDate      string
	accountName  string
	maxPerHour   int
	cleanTrash   bool
	resumeRun    bool
	forceRestart bool
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete all activity log items inside a date range",
	Long: `Walk the activity log month by month, newest first, and delete every
item whose date falls inside the configured range.

This command requires a stored session (use 'fbsweep auth login' or
'fbsweep auth import' to store one) or the FBSWEEP_C_USER and FBSWEEP_XS
environment variables.

Deletions are rate limited to a configurable hourly cap with randomized
delays between actions. When the cap is reached the run stops and saves a
checkpoint; run again later with --resume to continue. The run also stops
immediately if the account is blocked or the session expires.

Deletion is permanent. There is no undo.`,
	Example: `  # Delete everything from 2011 through 2014
  fbsweep sweep --start 2011-01-01 --end 2014-12-31

  # Continue an interrupted run
  fbsweep sweep --start 2011-01-01 --end 2014-12-31 --resume

  # Start over, ignoring the saved checkpoint
  fbsweep sweep --start 2011-01-01 --end 2014-12-31 --force-restart

  # Use a specific stored account and a lower hourly cap
  fbsweep sweep --start 2011-01-01 --end 2014-12-31 --account myaccount --max-per-hour 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runSweep(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVar(&startDate, "start", "", "start of the date range, inclusive (YYYY-MM-DD)")
	sweepCmd.Flags().StringVar(&endDate, "end", "", "end of the date range, inclusive (YYYY-MM-DD)")
	sweepCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	sweepCmd.Flags().IntVar(&maxPerHour, "max-per-hour", 0, "maximum deletions per hour (default from config)")
	sweepCmd.Flags().BoolVar(&cleanTrash, "clean-trash", true, "empty the trash after the main sweep")
	sweepCmd.Flags().BoolVar(&resumeRun, "resume", false, "resume from the last checkpoint")
	sweepCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "discard any existing checkpoint and start fresh")
}

func runSweep(cmd *cobra.Command, args []string) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if startDate != "" {
		flags["start"] = startDate
	}
	if endDate != "" {
		flags["end"] = endDate
	}
	if maxPerHour > 0 {
		flags["max-per-hour"] = maxPerHour
	}
	if cmd.Flags().Changed("clean-trash") {
		flags["clean-trash"] = cleanTrash
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		fmt.Println("\nA date range is required. Provide one with:")
		fmt.Println("  fbsweep sweep --start 2011-01-01 --end 2014-12-31")
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("fbsweep starting")

	// Resolve the session
	session := resolveSession(cfg)
	cfg.Account.Username = session.Username
	if session.UserAgent != "" {
		cfg.Account.UserAgent = session.UserAgent
	}

	ui.PrintInfo("Account", session.Username)
	ui.PrintInfo("Date range", fmt.Sprintf("%s .. %s", cfg.Range.StartDate, cfg.Range.EndDate))
	ui.PrintInfo("Hourly cap", fmt.Sprintf("%d deletions", cfg.RateLimit.MaxDeletionsPerHour))

	driver, err := facebook.NewDriver(session, session.Username, logger.GetLogger(),
		facebook.WithUserAgent(cfg.Account.UserAgent))
	if err != nil {
		ui.PrintError("Failed to initialize driver", err.Error())
		os.Exit(1)
	}

	sw, err := sweeper.New(cfg, driver,
		sweeper.WithResume(resumeRun),
		sweeper.WithForceRestart(forceRestart))
	if err != nil {
		ui.PrintError("Failed to initialize sweeper", err.Error())
		os.Exit(1)
	}

	// Ctrl-C cancels the run; the checkpoint makes it resumable.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintHighlight("[SWEEP STARTED]")
	stats, err := sw.Run(ctx)
	printSummary(stats)

	if err == nil {
		logger.WithField("deleted", stats.Deleted).Info("Sweep completed")
		ui.PrintSuccess("[SWEEP COMPLETED]")
		return
	}

	var herr *sweeper.HaltError
	if !errors.As(err, &herr) {
		ui.PrintError("SWEEP FAILED", err.Error())
		os.Exit(1)
	}

	switch herr.Reason {
	case sweeper.HaltUserCancelled:
		ui.PrintWarning("Sweep interrupted, progress saved")
		fmt.Println("\nContinue later with:")
		fmt.Printf("  fbsweep sweep --start %s --end %s --resume\n", cfg.Range.StartDate, cfg.Range.EndDate)
	case sweeper.HaltRateLimitExceeded:
		ui.PrintWarning("Hourly deletion cap reached, progress saved")
		fmt.Println("\nWait at least an hour, then continue with:")
		fmt.Printf("  fbsweep sweep --start %s --end %s --resume\n", cfg.Range.StartDate, cfg.Range.EndDate)
	case sweeper.HaltSessionExpired:
		ui.PrintError("Session expired", "Log into Facebook in your browser, then run 'fbsweep auth login' or 'fbsweep auth import' again")
		os.Exit(1)
	case sweeper.HaltAccountBlocked:
		ui.PrintError("Action blocked by Facebook", "Stop for at least 24 hours before trying again with a lower --max-per-hour")
		os.Exit(1)
	default:
		ui.PrintError("SWEEP FAILED", herr.Error())
		os.Exit(1)
	}
}

// resolveSession finds session cookies from the stored account, environment
// variables, or exits with instructions.
func resolveSession(cfg *config.Config) *auth.Session {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var session *auth.Session
	if accountName != "" {
		session, err = manager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'fbsweep auth show' to list stored accounts")
			os.Exit(1)
		}
	} else if cfg.Account.Username != "" {
		session, err = manager.Retrieve(cfg.Account.Username)
		if err != nil {
			session = nil
		}
	}
	if session == nil {
		session, err = manager.RetrieveDefault()
		if err != nil {
			logger.Error("No session found")
			ui.PrintError("No Facebook session found", "")
			fmt.Println("\nTo store a session securely, run:")
			fmt.Println("  fbsweep auth login")
			fmt.Println("\nOr import a Playwright storage-state file:")
			fmt.Println("  fbsweep auth import cookies.json")
			fmt.Println("\nYou can also set environment variables:")
			fmt.Println("  export FBSWEEP_C_USER=your_c_user_cookie")
			fmt.Println("  export FBSWEEP_XS=your_xs_cookie")
			os.Exit(1)
		}
	}

	logger.WithField("account", session.Username).Info("Using stored session")
	return session
}

func printSummary(stats *sweeper.RunStats) {
	fmt.Println()
	ui.PrintHighlight("Run Summary")
	fmt.Printf("  Deleted:      %d\n", stats.Deleted)
	fmt.Printf("  Skipped:      %d (already processed)\n", stats.Skipped)
	fmt.Printf("  Out of range: %d\n", stats.OutOfRange)
	fmt.Printf("  Errored:      %d\n", stats.Errored)
	fmt.Printf("  Pages:        %d\n", stats.Pages)
	fmt.Printf("  Duration:     %s\n", stats.Duration().Round(time.Second))
}
