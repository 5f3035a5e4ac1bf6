package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fbsweep/pkg/config"
	"fbsweep/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage fbsweep configuration.

Configuration precedence (highest to lowest):
  1. Command-line flags
  2. Environment variables (FBSWEEP_*)
  3. .env file
  4. Config file (.fbsweep.yaml)
  5. Built-in defaults`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long:  `Create an example configuration file with documented defaults.`,
	Run:   runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the effective configuration after merging all sources.`,
	Run:   runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long:  `Load the configuration from all sources and validate it.`,
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# fbsweep configuration file
#
# All values can be overridden with FBSWEEP_* environment variables
# or command-line flags.

account:
  # Facebook username or profile id. Usually resolved from the stored
  # session, so this can stay empty.
  username: ""
  # Custom user agent for mbasic requests (empty = default)
  user_agent: ""

range:
  # Only items dated inside [start_date, end_date] are deleted.
  # Both dates are required (YYYY-MM-DD) and inclusive.
  start_date: "2011-01-01"
  end_date: "2014-12-31"

rate_limit:
  # Hard cap on deletions per rolling hour
  max_deletions_per_hour: 50
  # Gaussian delay between deletions, in seconds
  delay_mean_seconds: 5.0
  delay_stddev_seconds: 1.5
  min_delay_seconds: 2.0
  # Delay growth factor applied after each rate-limit signal
  backoff_multiplier: 1.5

retry:
  max_retries_per_item: 3
  max_retries_per_page_load: 3
  retry_delay: 5s

traversal:
  # Activity log filters do not exist before this year
  min_year: 2004
  # Stop a period early once item dates pass below the start date
  strict_descending: true
  # Empty the trash after the main sweep
  clean_trash: true

logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty = stderr only)
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		path = ".fbsweep.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		ui.PrintError("Config file already exists", path)
		fmt.Println("\nRemove it first, or use --config to choose another path.")
		os.Exit(1)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Failed to create config directory", err.Error())
			os.Exit(1)
		}
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError("Failed to write config file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Created " + path)
	fmt.Println("\nEdit the range section, then run:")
	fmt.Println("  fbsweep config validate")
}

// loadWithoutValidation merges defaults, file and environment the same way
// Load does, but skips validation so partial configs can still be shown.
func loadWithoutValidation() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadWithoutValidation()
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to render configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Effective Configuration")
	fmt.Println()
	fmt.Print(string(data))
	fmt.Println()
	fmt.Println("Precedence: flags > FBSWEEP_* env > .env > config file > defaults")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, err := loadWithoutValidation()
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration is invalid", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println()
	ui.PrintInfo("Date range", fmt.Sprintf("%s to %s", cfg.Range.StartDate, cfg.Range.EndDate))
	ui.PrintInfo("Hourly cap", fmt.Sprintf("%d deletions", cfg.RateLimit.MaxDeletionsPerHour))
	ui.PrintInfo("Clean trash", fmt.Sprintf("%t", cfg.Traversal.CleanTrash))
	ui.PrintInfo("Strict descending", fmt.Sprintf("%t", cfg.Traversal.StrictDescending))
}
