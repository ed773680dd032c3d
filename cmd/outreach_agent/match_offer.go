package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/offers"
	"github.com/jonathan/outreach-agent/internal/pipeline/steps"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/spf13/cobra"
)

var matchOfferCmd = &cobra.Command{
	Use:   "match-offer",
	Short: "Match a researched prospect against the offer catalog",
	Long:  "Reads a research artifact produced by the research command, picks the service offer that best fits the prospect's business, and writes the selection to an artifact file.",
	RunE:  runMatchOffer,
}

var (
	matchOfferResearch string
	matchOfferCatalog  string
	matchOfferAPIKey   string
	matchOfferVerbose  bool
	matchOfferOut      string
)

func init() {
	matchOfferCmd.Flags().StringVar(&matchOfferResearch, "research", "", "Path to the research artifact (required)")
	matchOfferCmd.Flags().StringVar(&matchOfferCatalog, "offers", "", "Path to offer catalog JSON (defaults to the embedded catalog)")
	matchOfferCmd.Flags().BoolVarP(&matchOfferVerbose, "verbose", "v", false, "Print detailed debug information")
	matchOfferCmd.Flags().StringVar(&matchOfferOut, "out", "offer.json", "Path to write the offer artifact")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	matchOfferCmd.Flags().StringVar(&matchOfferAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	if err := matchOfferCmd.MarkFlagRequired("research"); err != nil {
		panic(fmt.Sprintf("failed to mark research flag as required: %v", err))
	}

	rootCmd.AddCommand(matchOfferCmd)
}

func runMatchOffer(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	file, err := loadArtifactFile(matchOfferResearch)
	if err != nil {
		return err
	}
	if err := steps.Validate(types.StageOfferMatch, file.artifacts()); err != nil {
		return err
	}

	apiKey, err := resolveAPIKey(matchOfferAPIKey)
	if err != nil {
		return err
	}

	catalog, err := offers.LoadCatalog(matchOfferCatalog)
	if err != nil {
		return fmt.Errorf("failed to load offer catalog: %w", err)
	}

	client, err := llm.NewClient(ctx, nil, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	matcher := offers.New(offers.Options{
		LLM:     client,
		Catalog: catalog,
		Verbose: matchOfferVerbose,
	})

	selection, err := matcher.Match(ctx, file.Prospect, file.Research)
	if err != nil {
		return fmt.Errorf("offer match failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintOfferSelection(selection)

	file.Offer = selection
	if err := writeArtifactFile(matchOfferOut, file); err != nil {
		return err
	}
	fmt.Printf("Offer artifact written to %s\n", matchOfferOut)
	return nil
}
