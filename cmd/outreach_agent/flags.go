package main

import (
	"fmt"
	"os"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/spf13/cobra"
)

// agentFlags holds the configuration flags shared by every command that
// assembles the full agent (run, batch, serve). Values layer in three
// tiers: config file first, explicit CLI flags on top, built-in defaults
// underneath.
type agentFlags struct {
	configPath    string
	apiKey        string
	databaseURL   string
	offersPath    string
	testRecipient string
	dailyLimit    int
	minQuality    float64
	sendDelay     int
	scrapeDelay   int
	maxPages      int
	useBrowser    bool
	dryRun        bool
	verbose       bool
}

func (f *agentFlags) register(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVar(&f.offersPath, "offers", "", "Path to offer catalog JSON (defaults to the embedded catalog)")
	cmd.Flags().StringVar(&f.testRecipient, "test-recipient", "", "Redirect every send to this address instead of the prospect")
	cmd.Flags().IntVar(&f.dailyLimit, "daily-limit", 0, "Maximum sends per calendar day")
	cmd.Flags().Float64Var(&f.minQuality, "min-quality", 0, "Minimum research quality score required to send (0-5)")
	cmd.Flags().IntVar(&f.sendDelay, "send-delay", 0, "Seconds to wait between delivered sends")
	cmd.Flags().IntVar(&f.scrapeDelay, "scrape-delay", 0, "Seconds to wait between page fetches")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "Maximum website pages researched per prospect")
	cmd.Flags().BoolVar(&f.useBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print messages instead of sending them")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for outcome and quota persistence
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
}

// resolve layers config file values, explicit CLI flags, and built-in
// defaults into the final agent configuration, then fills secrets from the
// environment.
func (f *agentFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if f.configPath != "" {
		loadedCfg, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}

		cfg = *loadedCfg
		if f.verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", f.configPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("offers") {
		cfg.OffersPath = f.offersPath
	}
	if cmd.Flags().Changed("test-recipient") {
		cfg.TestRecipient = f.testRecipient
	}
	if cmd.Flags().Changed("daily-limit") {
		cfg.DailySendLimit = f.dailyLimit
	}
	if cmd.Flags().Changed("min-quality") {
		cfg.MinQualityScore = f.minQuality
	}
	if cmd.Flags().Changed("send-delay") {
		cfg.SendDelaySeconds = f.sendDelay
	}
	if cmd.Flags().Changed("scrape-delay") {
		cfg.ScrapeDelaySeconds = f.scrapeDelay
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxResearchPages = f.maxPages
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = f.useBrowser
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}

	// Step 3: Apply defaults for unset values. Transport defaults are the
	// Gmail submission endpoint; a config file overrides them.
	defaults := config.DefaultConfig()
	defaults.SMTP.Host = "smtp.gmail.com"
	defaults.SMTP.Port = 587
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 5: Database URL handling. Optional: without it outcomes and
	// quota live in memory for the lifetime of the process.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	// Step 6: SMTP password comes from the environment, never the config
	// file. Dry runs rehearse without credentials.
	if cfg.SMTP.Password == "" {
		cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	}
	if !cfg.DryRun {
		if cfg.Sender.Email == "" {
			return cfg, fmt.Errorf("sender email is required to send: set sender.email in the config file (or use --dry-run)")
		}
		if cfg.SMTP.Username == "" || cfg.SMTP.Password == "" {
			return cfg, fmt.Errorf("SMTP credentials are required to send: set smtp.username in the config file and the SMTP_PASSWORD environment variable (or use --dry-run)")
		}
	}

	return cfg, nil
}

// resolveAPIKey falls back to the GEMINI_API_KEY environment variable when
// the flag is empty. The single-stage commands use this instead of the full
// config layering.
func resolveAPIKey(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
}

// prospectFlags holds the prospect identity flags shared by the run and
// research commands.
type prospectFlags struct {
	firstName string
	lastName  string
	email     string
	title     string
	company   string
	website   string
	linkedin  string
	phone     string
}

func (f *prospectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.firstName, "first-name", "", "Prospect first name")
	cmd.Flags().StringVar(&f.lastName, "last-name", "", "Prospect last name")
	cmd.Flags().StringVar(&f.email, "email", "", "Prospect email address (required)")
	cmd.Flags().StringVar(&f.title, "title", "", "Prospect job title")
	cmd.Flags().StringVar(&f.company, "company", "", "Prospect company name")
	cmd.Flags().StringVar(&f.website, "website", "", "Prospect company website URL")
	cmd.Flags().StringVar(&f.linkedin, "linkedin", "", "Prospect LinkedIn profile URL")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Prospect phone number")

	if err := cmd.MarkFlagRequired("email"); err != nil {
		panic(fmt.Sprintf("failed to mark email flag as required: %v", err))
	}
}

func (f *prospectFlags) prospect() types.Prospect {
	return types.Prospect{
		FirstName:   f.firstName,
		LastName:    f.lastName,
		Email:       f.email,
		Title:       f.title,
		Company:     f.company,
		WebsiteURL:  f.website,
		LinkedInURL: f.linkedin,
		Phone:       f.phone,
	}
}
