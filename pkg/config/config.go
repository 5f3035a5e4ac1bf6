package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the activity sweeper
type Config struct {
	// Account settings
	Account AccountConfig `yaml:"account" json:"account"`

	// Date range to sweep
	Range RangeConfig `yaml:"range" json:"range"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behavior
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Traversal behavior
	Traversal TraversalConfig `yaml:"traversal" json:"traversal"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AccountConfig holds account-specific configuration
type AccountConfig struct {
	Username  string `yaml:"username" json:"username"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// RangeConfig holds the inclusive date range, as YYYY-MM-DD strings
type RangeConfig struct {
	StartDate string `yaml:"start_date" json:"start_date"`
	EndDate   string `yaml:"end_date" json:"end_date"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxDeletionsPerHour int     `yaml:"max_deletions_per_hour" json:"max_deletions_per_hour"`
	DelayMeanSeconds    float64 `yaml:"delay_mean_seconds" json:"delay_mean_seconds"`
	DelayStdDevSeconds  float64 `yaml:"delay_stddev_seconds" json:"delay_stddev_seconds"`
	MinDelaySeconds     float64 `yaml:"min_delay_seconds" json:"min_delay_seconds"`
	BackoffMultiplier   float64 `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// RetryConfig holds retry behavior for items and page loads
type RetryConfig struct {
	MaxRetriesPerItem     int           `yaml:"max_retries_per_item" json:"max_retries_per_item"`
	MaxRetriesPerPageLoad int           `yaml:"max_retries_per_page_load" json:"max_retries_per_page_load"`
	RetryDelay            time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// TraversalConfig holds traversal behavior
type TraversalConfig struct {
	MinYear          int  `yaml:"min_year" json:"min_year"`
	StrictDescending bool `yaml:"strict_descending" json:"strict_descending"`
	CleanTrash       bool `yaml:"clean_trash" json:"clean_trash"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Account: AccountConfig{
			UserAgent: "Mozilla/5.0 (Linux; Android 10; SM-G960F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Mobile Safari/537.36",
		},
		RateLimit: RateLimitConfig{
			MaxDeletionsPerHour: 50,
			DelayMeanSeconds:    5.0,
			DelayStdDevSeconds:  1.5,
			MinDelaySeconds:     2.0,
			BackoffMultiplier:   1.5,
		},
		Retry: RetryConfig{
			MaxRetriesPerItem:     3,
			MaxRetriesPerPageLoad: 3,
			RetryDelay:            5 * time.Second,
		},
		Traversal: TraversalConfig{
			MinYear:          2004,
			StrictDescending: true,
			CleanTrash:       true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if username := os.Getenv("FBSWEEP_USERNAME"); username != "" {
		c.Account.Username = username
	}
	if userAgent := os.Getenv("FBSWEEP_USER_AGENT"); userAgent != "" {
		c.Account.UserAgent = userAgent
	}

	if start := os.Getenv("FBSWEEP_START_DATE"); start != "" {
		c.Range.StartDate = start
	}
	if end := os.Getenv("FBSWEEP_END_DATE"); end != "" {
		c.Range.EndDate = end
	}

	if cap := os.Getenv("FBSWEEP_MAX_DELETIONS_PER_HOUR"); cap != "" {
		var val int
		fmt.Sscanf(cap, "%d", &val)
		if val > 0 {
			c.RateLimit.MaxDeletionsPerHour = val
		}
	}

	if mean := os.Getenv("FBSWEEP_DELAY_MEAN_SECONDS"); mean != "" {
		var val float64
		fmt.Sscanf(mean, "%f", &val)
		if val > 0 {
			c.RateLimit.DelayMeanSeconds = val
		}
	}

	if cleanTrash := os.Getenv("FBSWEEP_CLEAN_TRASH"); cleanTrash != "" {
		c.Traversal.CleanTrash = strings.ToLower(cleanTrash) == "true"
	}

	if logLevel := os.Getenv("FBSWEEP_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".fbsweep.yaml",
		".fbsweep.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "fbsweep", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "fbsweep", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".fbsweep.yaml"),
		filepath.Join(os.Getenv("HOME"), ".fbsweep.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Validate the date range; both bounds are required
	start, startErr := time.Parse("2006-01-02", c.Range.StartDate)
	if startErr != nil {
		errs = append(errs, fmt.Errorf("start date must be YYYY-MM-DD: %q", c.Range.StartDate))
	}
	end, endErr := time.Parse("2006-01-02", c.Range.EndDate)
	if endErr != nil {
		errs = append(errs, fmt.Errorf("end date must be YYYY-MM-DD: %q", c.Range.EndDate))
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		errs = append(errs, errors.New("end date must not be before start date"))
	}

	// Validate rate limiting
	if c.RateLimit.MaxDeletionsPerHour <= 0 {
		errs = append(errs, errors.New("max deletions per hour must be positive"))
	}
	if c.RateLimit.DelayMeanSeconds <= 0 {
		errs = append(errs, errors.New("delay mean must be positive"))
	}
	if c.RateLimit.DelayStdDevSeconds < 0 {
		errs = append(errs, errors.New("delay standard deviation cannot be negative"))
	}
	if c.RateLimit.MinDelaySeconds < 0 {
		errs = append(errs, errors.New("minimum delay cannot be negative"))
	}
	if c.RateLimit.BackoffMultiplier < 1.0 {
		errs = append(errs, errors.New("backoff multiplier must be at least 1.0"))
	}

	// Validate retry settings
	if c.Retry.MaxRetriesPerItem < 0 {
		errs = append(errs, errors.New("max retries per item cannot be negative"))
	}
	if c.Retry.MaxRetriesPerPageLoad < 0 {
		errs = append(errs, errors.New("max retries per page load cannot be negative"))
	}

	// Validate traversal settings
	if c.Traversal.MinYear < 2004 {
		errs = append(errs, errors.New("minimum year cannot be earlier than 2004"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// DateRange returns the parsed start and end dates. Validate must pass first.
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", c.Range.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err = time.Parse("2006-01-02", c.Range.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}
	return start, end, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if username, ok := flags["username"].(string); ok && username != "" {
		c.Account.Username = username
	}
	if start, ok := flags["start"].(string); ok && start != "" {
		c.Range.StartDate = start
	}
	if end, ok := flags["end"].(string); ok && end != "" {
		c.Range.EndDate = end
	}
	if cap, ok := flags["max-per-hour"].(int); ok && cap > 0 {
		c.RateLimit.MaxDeletionsPerHour = cap
	}
	if cleanTrash, ok := flags["clean-trash"].(bool); ok {
		c.Traversal.CleanTrash = cleanTrash
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".fbsweep.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
