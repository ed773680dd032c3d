package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/pipeline"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full outreach pipeline for a single prospect",
	Long: `Orchestrates the entire outreach process for one prospect: research -> gate check -> offer match -> strategy selection -> message generation -> quota reserve -> delivery -> logging.

Settings load from a JSON file via --config; flags override the file and secrets come from the environment.`,
	RunE: runProspectPipeline,
}

var (
	runAgent    agentFlags
	runProspect prospectFlags
)

func init() {
	runAgent.register(runCmd)
	runProspect.register(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runProspectPipeline(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := runAgent.resolve(cmd)
	if err != nil {
		return err
	}

	prospect := runProspect.prospect()
	if err := prospect.Validate(); err != nil {
		return err
	}

	database, err := connectIfConfigured(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	printer := observability.NewPrinter(os.Stdout)
	agent, err := pipeline.Build(ctx, pipeline.BuildOptions{
		Config:   &cfg,
		Database: database,
		BatchID:  uuid.Nil,
		Printer:  printer,
	})
	if err != nil {
		return err
	}
	defer agent.Close()

	outcome := agent.Orchestrator.Run(ctx, prospect)
	printer.PrintOutcome(outcome)

	if outcome.Status == types.StatusFailed {
		return fmt.Errorf("run %s at %s: %s", outcome.Status, outcome.StageReached, outcome.Reason)
	}
	return nil
}

// connectIfConfigured opens the database when a URL is set and makes sure
// the schema exists. A nil return with nil error means no database is
// configured and the agent runs in memory.
func connectIfConfigured(ctx context.Context, databaseURL string) (*db.DB, error) {
	if databaseURL == "" {
		return nil, nil
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return database, nil
}
