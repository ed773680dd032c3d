package main

import (
	"fmt"

	"github.com/jonathan/outreach-agent/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the outreach pipeline over HTTP",
	Long: `Start an HTTP server that exposes REST endpoints for running outreach campaigns, reading outcomes, and managing users.

The server shares the agent configuration with the CLI: a JSON config file via --config, overridden by flags, with secrets from the environment. With --dry-run every campaign rehearses without sending.`,
	RunE: runServe,
}

var (
	serveAgent agentFlags
	servePort  int
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "TCP port for the API listener")
	serveAgent.register(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := serveAgent.resolve(cmd)
	if err != nil {
		return err
	}

	// The server persists campaigns and outcomes, so the database is not
	// optional here.
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	srv, err := server.New(server.Config{
		Port:  servePort,
		Agent: &cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to assemble server: %w", err)
	}

	return srv.Start()
}
