package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/message"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/pipeline/steps"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/spf13/cobra"
)

var generateMessageCmd = &cobra.Command{
	Use:   "generate-message",
	Short: "Generate the outreach message for a prospect",
	Long: `Reads a strategy artifact produced by the select-strategy command and generates the personalized outreach email, printing it without sending anything.

Sender identity comes from the config file given with --config; without one the message is generated unsigned.`,
	RunE: runGenerateMessage,
}

var (
	generateMessageStrategy string
	generateMessageConfig   string
	generateMessageAPIKey   string
	generateMessageVerbose  bool
	generateMessageOut      string
)

func init() {
	generateMessageCmd.Flags().StringVar(&generateMessageStrategy, "strategy", "", "Path to the strategy artifact (required)")
	generateMessageCmd.Flags().StringVar(&generateMessageConfig, "config", "", "Path to config.json file supplying the sender identity")
	generateMessageCmd.Flags().BoolVarP(&generateMessageVerbose, "verbose", "v", false, "Print detailed debug information")
	generateMessageCmd.Flags().StringVar(&generateMessageOut, "out", "", "Write the message artifact to this path (optional)")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	generateMessageCmd.Flags().StringVar(&generateMessageAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	if err := generateMessageCmd.MarkFlagRequired("strategy"); err != nil {
		panic(fmt.Sprintf("failed to mark strategy flag as required: %v", err))
	}

	rootCmd.AddCommand(generateMessageCmd)
}

func runGenerateMessage(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	file, err := loadArtifactFile(generateMessageStrategy)
	if err != nil {
		return err
	}
	if err := steps.Validate(types.StageMessageGenerate, file.artifacts()); err != nil {
		return err
	}

	var sender config.SenderIdentity
	if generateMessageConfig != "" {
		cfg, err := config.LoadConfig(generateMessageConfig)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		sender = cfg.Sender
	}

	apiKey, err := resolveAPIKey(generateMessageAPIKey)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, nil, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	generator := message.New(message.Options{
		LLM:     client,
		Sender:  sender,
		Verbose: generateMessageVerbose,
	})

	msg, err := generator.Generate(ctx, file.Prospect, file.Research, file.Offer, file.Strategy)
	if err != nil {
		return fmt.Errorf("message generation failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintMessage(msg)

	if generateMessageOut != "" {
		file.Message = msg
		if err := writeArtifactFile(generateMessageOut, file); err != nil {
			return err
		}
		fmt.Printf("Message artifact written to %s\n", generateMessageOut)
	}
	return nil
}
