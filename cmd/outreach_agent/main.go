// Package main is the outreach agent CLI: single-prospect stage commands,
// full pipeline runs, CSV batches, stats reporting, and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "outreach_agent",
	Short: "Outreach Agent prospect pipeline",
	Long: `Outreach Agent researches prospect companies, matches a service offer,
and generates and delivers personalized outreach email, one prospect at
a time or in CSV batches.`,
}

func main() {
	// .env is optional; absent in CI and production.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
