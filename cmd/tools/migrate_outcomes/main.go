// Command migrate_outcomes imports a legacy outreach tracker CSV into the
// outcomes table.
//
// The old tracker logged one row per prospect with the columns timestamp,
// prospect_name, company, email, linkedin_url, website_url, status,
// trigger_found, trigger_details, ai_application, subject_line, email_body,
// skip_reason, research_quality_score, personality_type, services_offered
// and ai_info. This is a one-time migration for moving that history into
// PostgreSQL so stats and quota counting see it.
//
// Usage:
//
//	go run cmd/tools/migrate_outcomes/main.go path/to/tracker_export.csv
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/types"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: migrate_outcomes path/to/tracker_export.csv")
		os.Exit(1)
	}
	csvPath := os.Args[1]

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to ensure schema: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to open CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Println("=== Outcome Migration Script ===")
	fmt.Println()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to read header row: %v\n", err)
		os.Exit(1)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"timestamp", "email", "status"} {
		if _, ok := cols[required]; !ok {
			fmt.Fprintf(os.Stderr, "ERROR: Missing required column %q\n", required)
			os.Exit(1)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	imported := 0
	skipped := 0
	failed := 0
	line := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Printf("  ✗ row %d: %v\n", line, err)
			failed++
			continue
		}

		email := cell(row, "email")
		status, ok := normalizeLegacyStatus(cell(row, "status"))
		if !ok {
			fmt.Printf("  ✗ row %d (%s): unrecognized status %q\n", line, email, cell(row, "status"))
			skipped++
			continue
		}

		loggedAt, err := parseLegacyTime(cell(row, "timestamp"))
		if err != nil {
			fmt.Printf("  ✗ row %d (%s): %v\n", line, email, err)
			skipped++
			continue
		}

		outcome := &db.OutcomeRow{
			LoggedAt:     loggedAt,
			ProspectName: cell(row, "prospect_name"),
			Company:      cell(row, "company"),
			Email:        email,
			LinkedInURL:  cell(row, "linkedin_url"),
			WebsiteURL:   cell(row, "website_url"),
			Status:       status,
			// The legacy tracker never recorded the stage reached.
			StageReached:   "",
			Reason:         cell(row, "skip_reason"),
			QualityScore:   parseLegacyScore(cell(row, "research_quality_score")),
			Personality:    cell(row, "personality_type"),
			TriggersFound:  parseLegacyBool(cell(row, "trigger_found")),
			TriggerDetails: cell(row, "trigger_details"),
			Services:       cell(row, "services_offered"),
			Subject:        cell(row, "subject_line"),
			Body:           cell(row, "email_body"),
			OfferSummary:   cell(row, "ai_info"),
		}

		if err := database.InsertOutcome(ctx, outcome); err != nil {
			fmt.Printf("  ✗ row %d (%s): %v\n", line, email, err)
			failed++
			continue
		}

		fmt.Printf("  ✓ %s  %-7s  %s\n", loggedAt.Format("2006-01-02"), status, email)
		imported++
	}

	fmt.Println()
	fmt.Println("=== Migration Summary ===")
	fmt.Printf("  Imported: %d\n", imported)
	fmt.Printf("  Skipped: %d\n", skipped)
	fmt.Printf("  Failed: %d\n", failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// normalizeLegacyStatus maps tracker status values onto the canonical set.
func normalizeLegacyStatus(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return "", false
	case strings.Contains(s, "sent"):
		return string(types.StatusSent), true
	case strings.Contains(s, "skip"):
		return string(types.StatusSkipped), true
	case strings.Contains(s, "fail"), strings.Contains(s, "error"):
		return string(types.StatusFailed), true
	default:
		return "", false
	}
}

// parseLegacyTime accepts the tracker's "2006-01-02 15:04:05" layout, with
// RFC 3339 as a fallback for re-exported sheets.
func parseLegacyTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", raw, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// parseLegacyScore reads a quality score cell. Most rows carry a plain
// number; some carry "passed/total" check counts instead, which are scaled
// onto the 0-5 range.
func parseLegacyScore(raw string) float64 {
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if passed, total, ok := strings.Cut(raw, "/"); ok {
		p, err1 := strconv.ParseFloat(strings.TrimSpace(passed), 64)
		tot, err2 := strconv.ParseFloat(strings.TrimSpace(total), 64)
		if err1 == nil && err2 == nil && tot > 0 {
			return 5 * p / tot
		}
	}
	return 0
}

func parseLegacyBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}
