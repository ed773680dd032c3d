// Package main implements the outreach_agent CLI tool for automated prospect outreach.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/research"
	"github.com/spf13/cobra"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Research a prospect's company without sending anything",
	Long:  "Crawls the prospect's website and LinkedIn presence, extracts services, personality signals, and outreach triggers, and writes the research record to an artifact file for the downstream stage commands.",
	RunE:  runResearch,
}

var (
	researchProspect    prospectFlags
	researchAPIKey      string
	researchDatabaseURL string
	researchMaxPages    int
	researchScrapeDelay int
	researchUseBrowser  bool
	researchVerbose     bool
	researchOut         string
)

func init() {
	researchProspect.register(researchCmd)
	researchCmd.Flags().IntVar(&researchMaxPages, "max-pages", 5, "Maximum website pages to crawl")
	researchCmd.Flags().IntVar(&researchScrapeDelay, "scrape-delay", 2, "Seconds to wait between page fetches")
	researchCmd.Flags().BoolVar(&researchUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	researchCmd.Flags().BoolVarP(&researchVerbose, "verbose", "v", false, "Print detailed debug information")
	researchCmd.Flags().StringVar(&researchOut, "out", "research.json", "Path to write the research artifact")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	researchCmd.Flags().StringVar(&researchAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for the page cache
	researchCmd.Flags().StringVar(&researchDatabaseURL, "db-url", "", "PostgreSQL connection URL for the page cache (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	prospect := researchProspect.prospect()
	if err := prospect.Validate(); err != nil {
		return err
	}

	apiKey, err := resolveAPIKey(researchAPIKey)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, nil, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	// The page cache is optional; without a database every fetch goes to
	// the network.
	if researchDatabaseURL == "" {
		researchDatabaseURL = os.Getenv("DATABASE_URL")
	}
	database, err := connectIfConfigured(ctx, researchDatabaseURL)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	var discoverer research.Discoverer
	if cx := os.Getenv("GOOGLE_CSE_ID"); cx != "" {
		d, derr := research.NewWebsiteDiscoverer(ctx, apiKey, cx)
		if derr != nil {
			fmt.Printf("Warning: website discovery unavailable: %v\n", derr)
		} else {
			discoverer = d
		}
	}

	agent := research.New(research.Options{
		LLM:         client,
		Fetcher:     fetch.NewCachedFetcher(database, nil),
		Discoverer:  discoverer,
		MaxPages:    researchMaxPages,
		ScrapeDelay: time.Duration(researchScrapeDelay) * time.Second,
		UseBrowser:  researchUseBrowser,
		Verbose:     researchVerbose,
	})

	rec, err := agent.Research(ctx, prospect)
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintResearchRecord(rec)

	if err := writeArtifactFile(researchOut, &artifactFile{Prospect: prospect, Research: rec}); err != nil {
		return err
	}
	fmt.Printf("Research artifact written to %s\n", researchOut)
	return nil
}
