package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/outreach-agent/internal/pipeline/steps"
	"github.com/jonathan/outreach-agent/internal/types"
)

// artifactFile is the on-disk envelope the single-stage commands pass to
// each other. Each stage reads the previous stage's file and writes a
// superset, so a chain of commands accumulates the same artifacts the full
// pipeline would produce in one run.
type artifactFile struct {
	Prospect types.Prospect           `json:"prospect"`
	Research *types.ResearchRecord    `json:"research,omitempty"`
	Offer    *types.OfferSelection    `json:"offer,omitempty"`
	Strategy *types.StrategySelection `json:"strategy,omitempty"`
	Message  *types.OutreachMessage   `json:"message,omitempty"`
}

// artifacts converts the file contents to the registry's artifact set for
// dependency validation.
func (f *artifactFile) artifacts() steps.Artifacts {
	return steps.Artifacts{
		Research: f.Research,
		Offer:    f.Offer,
		Strategy: f.Strategy,
		Message:  f.Message,
	}
}

// loadArtifactFile reads a stage output file and checks that it carries a
// usable prospect.
func loadArtifactFile(path string) (*artifactFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact file: %w", err)
	}

	var f artifactFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse artifact file %s: %w", path, err)
	}
	if err := f.Prospect.Validate(); err != nil {
		return nil, fmt.Errorf("artifact file %s has no usable prospect: %w", path, err)
	}
	return &f, nil
}

// writeArtifactFile writes the stage output as indented JSON.
func writeArtifactFile(path string, f *artifactFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact file: %w", err)
	}
	return nil
}
