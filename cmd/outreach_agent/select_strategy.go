package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/pipeline/steps"
	"github.com/jonathan/outreach-agent/internal/strategy"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/spf13/cobra"
)

var selectStrategyCmd = &cobra.Command{
	Use:   "select-strategy",
	Short: "Select an outreach strategy for a matched prospect",
	Long:  "Reads an offer artifact produced by the match-offer command, picks the messaging strategy that fits the prospect's personality and the matched offer, and writes the selection to an artifact file.",
	RunE:  runSelectStrategy,
}

var (
	selectStrategyOffer   string
	selectStrategyAPIKey  string
	selectStrategyVerbose bool
	selectStrategyOut     string
)

func init() {
	selectStrategyCmd.Flags().StringVar(&selectStrategyOffer, "offer", "", "Path to the offer artifact (required)")
	selectStrategyCmd.Flags().BoolVarP(&selectStrategyVerbose, "verbose", "v", false, "Print detailed debug information")
	selectStrategyCmd.Flags().StringVar(&selectStrategyOut, "out", "strategy.json", "Path to write the strategy artifact")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	selectStrategyCmd.Flags().StringVar(&selectStrategyAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	if err := selectStrategyCmd.MarkFlagRequired("offer"); err != nil {
		panic(fmt.Sprintf("failed to mark offer flag as required: %v", err))
	}

	rootCmd.AddCommand(selectStrategyCmd)
}

func runSelectStrategy(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	file, err := loadArtifactFile(selectStrategyOffer)
	if err != nil {
		return err
	}
	if err := steps.Validate(types.StageStrategySelect, file.artifacts()); err != nil {
		return err
	}

	apiKey, err := resolveAPIKey(selectStrategyAPIKey)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, nil, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	selector := strategy.New(strategy.Options{
		LLM:     client,
		Verbose: selectStrategyVerbose,
	})

	selection, err := selector.Select(ctx, file.Prospect, file.Research, file.Offer)
	if err != nil {
		return fmt.Errorf("strategy selection failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintStrategySelection(selection)

	file.Strategy = selection
	if err := writeArtifactFile(selectStrategyOut, file); err != nil {
		return err
	}
	fmt.Printf("Strategy artifact written to %s\n", selectStrategyOut)
	return nil
}
