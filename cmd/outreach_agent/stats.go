// Package main implements the outreach_agent CLI tool for automated prospect outreach.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show daily outreach stats from the outcome log",
	Long:  "Summarizes one day of the outcome log: sends, skips, failures, quota consumed, average research quality, and a breakdown of skip reasons.",
	RunE:  runStats,
}

var (
	statsDate        string
	statsDatabaseURL string
)

func init() {
	statsCmd.Flags().StringVar(&statsDate, "date", "", "Day to report, YYYY-MM-DD (defaults to today)")

	// Database URL for the outcome log
	statsCmd.Flags().StringVar(&statsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	day := time.Now()
	if statsDate != "" {
		parsed, err := time.Parse("2006-01-02", statsDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", statsDate)
		}
		day = parsed
	}

	if statsDatabaseURL == "" {
		statsDatabaseURL = os.Getenv("DATABASE_URL")
	}
	if statsDatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, statsDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := database.DailyStats(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to load daily stats: %w", err)
	}

	printDailyStats(os.Stdout, stats)
	return nil
}

// printDailyStats renders one day's summary in the fixed-width layout the
// rest of the CLI uses.
func printDailyStats(out io.Writer, stats *db.DailyStats) {
	_, _ = fmt.Fprintf(out, "Outreach stats for %s\n\n", stats.Day)
	_, _ = fmt.Fprintf(out, "  Sent:     %d\n", stats.Sent)
	_, _ = fmt.Fprintf(out, "  Skipped:  %d\n", stats.Skipped)
	_, _ = fmt.Fprintf(out, "  Failed:   %d\n", stats.Failed)
	_, _ = fmt.Fprintf(out, "  Total:    %d\n", stats.Total)
	_, _ = fmt.Fprintf(out, "  Reserved: %d\n", stats.Reserved)

	if stats.Total > 0 {
		_, _ = fmt.Fprintf(out, "\n  Average quality score: %.1f\n", stats.AvgQuality)
	}

	if len(stats.SkipReasons) > 0 {
		_, _ = fmt.Fprintf(out, "\n  Skip reasons:\n")
		for _, rc := range stats.SkipReasons {
			_, _ = fmt.Fprintf(out, "    %4d  %s\n", rc.Count, rc.Reason)
		}
	}
}
