package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-agent/internal/batch"
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/pipeline"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/spf13/cobra"
)

var batchCommand = &cobra.Command{
	Use:   "batch",
	Short: "Run the outreach pipeline over a CSV of prospects",
	Long: `Processes every prospect in a CSV file through the full pipeline, pacing sends and stopping new work when the daily quota is exhausted.

Progress is recorded per prospect, so an interrupted batch can be resumed with --start-row. Settings load from a JSON file via --config; flags override the file and secrets come from the environment.`,
	RunE: runBatchCmd,
}

var (
	batchAgent    agentFlags
	batchCSV      string
	batchStartRow int
	batchLimit    int
)

func init() {
	batchAgent.register(batchCommand)
	batchCommand.Flags().StringVar(&batchCSV, "csv", "", "Path to prospect CSV file (required)")
	batchCommand.Flags().IntVar(&batchStartRow, "start-row", 0, "Skip this many leading rows (resume an interrupted batch)")
	batchCommand.Flags().IntVar(&batchLimit, "limit", 0, "Process at most this many prospects (0 = no cap)")

	if err := batchCommand.MarkFlagRequired("csv"); err != nil {
		panic(fmt.Sprintf("failed to mark csv flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCommand)
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	// Interrupts finish the in-flight prospect, then stop.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := batchAgent.resolve(cmd)
	if err != nil {
		return err
	}

	prospects, err := batch.ParseProspectsFile(batchCSV)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d prospects from %s\n", len(prospects), batchCSV)

	database, err := connectIfConfigured(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	batchID := uuid.Nil
	if database != nil {
		if n, err := database.DeleteExpiredPages(ctx); err != nil {
			fmt.Printf("Warning: failed to evict expired cache pages: %v\n", err)
		} else if n > 0 && cfg.Verbose {
			fmt.Printf("Evicted %d expired cache pages\n", n)
		}

		batchID, err = database.CreateBatch(ctx, batchCSV, len(prospects))
		if err != nil {
			return fmt.Errorf("failed to create batch record: %w", err)
		}
		fmt.Printf("Batch %s started\n", batchID)
	}

	printer := observability.NewPrinter(os.Stdout)
	opts := pipeline.BuildOptions{
		Config:   &cfg,
		Database: database,
		BatchID:  batchID,
		Printer:  printer,
	}
	if database != nil {
		// Fold each finished outcome into the batch row so the API and
		// stats command see progress while the batch runs. The runner
		// processes prospects sequentially, so no locking is needed.
		var progress db.BatchProgress
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			if event.Stage != string(types.StageLog) {
				return
			}
			outcome, ok := event.Content.(*types.Outcome)
			if !ok {
				return
			}
			progress = recordProgress(progress, outcome)
			if err := database.UpdateBatchProgress(ctx, batchID, progress); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to update batch progress: %v\n", err)
			}
		}
	}

	agent, err := pipeline.Build(ctx, opts)
	if err != nil {
		if database != nil {
			finishBatch(database, batchID, nil, db.BatchStatusFailed)
		}
		return err
	}
	defer agent.Close()

	runner := batch.NewRunner(agent.Orchestrator, agent.Tracker, printer)
	summary := runner.Run(ctx, prospects, batch.Options{
		StartRow:     batchStartRow,
		Limit:        batchLimit,
		SendInterval: time.Duration(cfg.SendDelaySeconds) * time.Second,
	})

	status := db.BatchStatusCompleted
	if ctx.Err() != nil {
		status = db.BatchStatusCanceled
	}
	if database != nil {
		finishBatch(database, batchID, &summary, status)
	}

	if summary.Unlogged > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d outcomes could not be durably recorded; resuming may repeat those prospects\n", summary.Unlogged)
	}
	if status == db.BatchStatusCanceled {
		fmt.Printf("Batch canceled after %d prospects; resume with --start-row %d\n", summary.Attempted, batchStartRow+summary.Attempted)
	}
	return nil
}

// recordProgress folds one outcome into the running batch counts.
func recordProgress(p db.BatchProgress, o *types.Outcome) db.BatchProgress {
	p.Attempted++
	switch o.Status {
	case types.StatusSent:
		p.Sent++
	case types.StatusSkipped:
		p.Skipped++
	case types.StatusFailed:
		p.Failed++
	}
	if o.Unlogged {
		p.Unlogged++
	}
	return p
}

// finishBatch writes the final counts and status. The run context may
// already be canceled, so it uses a fresh one.
func finishBatch(database *db.DB, batchID uuid.UUID, summary *batch.Summary, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if summary != nil {
		progress := db.BatchProgress{
			Attempted: summary.Attempted,
			Sent:      summary.Sent,
			Skipped:   summary.Skipped,
			Failed:    summary.Failed,
			Unlogged:  summary.Unlogged,
		}
		if err := database.UpdateBatchProgress(ctx, batchID, progress); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record final progress: %v\n", err)
		}
	}
	if err := database.CompleteBatch(ctx, batchID, status); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to mark batch %s: %v\n", status, err)
	}
	fmt.Printf("Batch %s %s\n", batchID, status)
}
