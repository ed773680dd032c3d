// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SenderIdentity identifies who the outreach is sent as. It is stamped into
// generated messages and the SMTP envelope.
type SenderIdentity struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CalendarURL string `json:"calendar_url,omitempty"`
}

// SMTPConfig holds delivery transport settings. The password is never read
// from the config file; it comes from the SMTP_PASSWORD environment variable.
type SMTPConfig struct {
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
}

// Config represents the agent configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags. Configuration is read once at process start and treated as
// immutable for the run.
type Config struct {
	// Quota and gating
	DailySendLimit  int     `json:"daily_send_limit,omitempty"`  // max delivery attempts per calendar day
	MinQualityScore float64 `json:"min_quality_score,omitempty"` // research score gate threshold (0-5)

	// Identity and transport
	Sender        SenderIdentity `json:"sender,omitempty"`
	SMTP          SMTPConfig     `json:"smtp,omitempty"`
	TestRecipient string         `json:"test_recipient,omitempty"` // reroute all mail here when set

	// Pacing
	SendDelaySeconds   int `json:"send_delay_seconds,omitempty"`   // minimum gap between delivered sends
	ScrapeDelaySeconds int `json:"scrape_delay_seconds,omitempty"` // minimum gap between page fetches

	// Research behavior
	MaxResearchPages int  `json:"max_research_pages,omitempty"` // pages crawled per prospect
	UseBrowser       bool `json:"use_browser,omitempty"`        // headless browser fallback for SPA sites

	// Catalog
	OffersPath string `json:"offers_path,omitempty"` // override for the embedded offer catalog

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Verbose     bool   `json:"verbose,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"` // print messages instead of sending
}

// DefaultConfig returns the built-in defaults applied after config file and
// flag merging.
func DefaultConfig() Config {
	return Config{
		DailySendLimit:     50,
		MinQualityScore:    3.0,
		SendDelaySeconds:   5,
		ScrapeDelaySeconds: 2,
		MaxResearchPages:   5,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: this doesn't check for required fields since those are handled
// after flag merging by the command that needs them.
func (c *Config) Validate() error {
	if c.DailySendLimit < 0 {
		return fmt.Errorf("config error: 'daily_send_limit' must be non-negative")
	}
	if c.MinQualityScore < 0 || c.MinQualityScore > 5 {
		return fmt.Errorf("config error: 'min_quality_score' must be between 0 and 5")
	}
	if c.SendDelaySeconds < 0 {
		return fmt.Errorf("config error: 'send_delay_seconds' must be non-negative")
	}
	if c.ScrapeDelaySeconds < 0 {
		return fmt.Errorf("config error: 'scrape_delay_seconds' must be non-negative")
	}
	if c.MaxResearchPages < 0 {
		return fmt.Errorf("config error: 'max_research_pages' must be non-negative")
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("config error: 'smtp.port' out of range: %d", c.SMTP.Port)
	}

	if c.OffersPath != "" {
		if _, err := os.Stat(c.OffersPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: offers file not found: %s", c.OffersPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. This is used to apply built-in defaults after config file values
// and CLI flags have been layered.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DailySendLimit == 0 {
		result.DailySendLimit = defaults.DailySendLimit
	}
	if result.MinQualityScore == 0 {
		result.MinQualityScore = defaults.MinQualityScore
	}
	if result.SendDelaySeconds == 0 {
		result.SendDelaySeconds = defaults.SendDelaySeconds
	}
	if result.ScrapeDelaySeconds == 0 {
		result.ScrapeDelaySeconds = defaults.ScrapeDelaySeconds
	}
	if result.MaxResearchPages == 0 {
		result.MaxResearchPages = defaults.MaxResearchPages
	}

	if result.Sender.Name == "" {
		result.Sender.Name = defaults.Sender.Name
	}
	if result.Sender.Email == "" {
		result.Sender.Email = defaults.Sender.Email
	}
	if result.Sender.Title == "" {
		result.Sender.Title = defaults.Sender.Title
	}
	if result.Sender.Company == "" {
		result.Sender.Company = defaults.Sender.Company
	}
	if result.Sender.Phone == "" {
		result.Sender.Phone = defaults.Sender.Phone
	}
	if result.Sender.CalendarURL == "" {
		result.Sender.CalendarURL = defaults.Sender.CalendarURL
	}

	if result.SMTP.Host == "" {
		result.SMTP.Host = defaults.SMTP.Host
	}
	if result.SMTP.Port == 0 {
		result.SMTP.Port = defaults.SMTP.Port
	}
	if result.SMTP.Username == "" {
		result.SMTP.Username = defaults.SMTP.Username
	}

	if result.TestRecipient == "" {
		result.TestRecipient = defaults.TestRecipient
	}
	if result.OffersPath == "" {
		result.OffersPath = defaults.OffersPath
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
