// Package steps defines the pipeline stage registry: execution order,
// per-stage artifact dependencies, and validation for running stages in
// isolation (single-stage CLI commands and the HTTP API).
package steps

import (
	"fmt"

	"github.com/jonathan/outreach-agent/internal/types"
)

// Definition defines metadata for a pipeline stage
type Definition struct {
	Stage types.Stage
	// Requires lists the artifacts that must exist before the stage can run.
	Requires []Artifact
	// Produces names the artifact the stage emits, if any.
	Produces Artifact
}

// Artifact names an intermediate pipeline product.
type Artifact string

// Pipeline artifacts.
const (
	ArtifactResearch Artifact = "research"
	ArtifactOffer    Artifact = "offer"
	ArtifactStrategy Artifact = "strategy"
	ArtifactMessage  Artifact = "message"
	ArtifactNone     Artifact = ""
)

// Registry holds all stage definitions keyed by stage.
var Registry = map[types.Stage]Definition{
	types.StageResearch: {
		Stage:    types.StageResearch,
		Requires: []Artifact{},
		Produces: ArtifactResearch,
	},
	types.StageGateCheck: {
		Stage:    types.StageGateCheck,
		Requires: []Artifact{ArtifactResearch},
		Produces: ArtifactNone,
	},
	types.StageOfferMatch: {
		Stage:    types.StageOfferMatch,
		Requires: []Artifact{ArtifactResearch},
		Produces: ArtifactOffer,
	},
	types.StageStrategySelect: {
		Stage:    types.StageStrategySelect,
		Requires: []Artifact{ArtifactResearch, ArtifactOffer},
		Produces: ArtifactStrategy,
	},
	types.StageMessageGenerate: {
		Stage:    types.StageMessageGenerate,
		Requires: []Artifact{ArtifactResearch, ArtifactOffer, ArtifactStrategy},
		Produces: ArtifactMessage,
	},
	types.StageQuotaReserve: {
		Stage:    types.StageQuotaReserve,
		Requires: []Artifact{ArtifactMessage},
		Produces: ArtifactNone,
	},
	types.StageDeliver: {
		Stage:    types.StageDeliver,
		Requires: []Artifact{ArtifactMessage},
		Produces: ArtifactNone,
	},
	types.StageLog: {
		Stage:    types.StageLog,
		Requires: []Artifact{},
		Produces: ArtifactNone,
	},
}

// Order returns the stages in execution order.
func Order() []types.Stage {
	return []types.Stage{
		types.StageResearch,
		types.StageGateCheck,
		types.StageOfferMatch,
		types.StageStrategySelect,
		types.StageMessageGenerate,
		types.StageQuotaReserve,
		types.StageDeliver,
		types.StageLog,
	}
}

// Artifacts holds the intermediate products available when running a stage
// in isolation.
type Artifacts struct {
	Research *types.ResearchRecord
	Offer    *types.OfferSelection
	Strategy *types.StrategySelection
	Message  *types.OutreachMessage
}

// Has reports whether the named artifact is present.
func (a Artifacts) Has(artifact Artifact) bool {
	switch artifact {
	case ArtifactResearch:
		return a.Research != nil
	case ArtifactOffer:
		return a.Offer != nil
	case ArtifactStrategy:
		return a.Strategy != nil
	case ArtifactMessage:
		return a.Message != nil
	default:
		return false
	}
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Stage   types.Stage
	Missing []Artifact
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %q missing required artifacts: %v", e.Stage, e.Missing)
}

// Validate checks that every artifact a stage requires is present.
func Validate(stage types.Stage, have Artifacts) error {
	def, ok := Registry[stage]
	if !ok {
		return fmt.Errorf("unknown stage: %s", stage)
	}

	var missing []Artifact
	for _, req := range def.Requires {
		if !have.Has(req) {
			missing = append(missing, req)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Stage:   stage,
			Missing: missing,
		}
	}
	return nil
}

// Available returns the stages whose dependencies are satisfied by the given
// artifacts, in execution order.
func Available(have Artifacts) []types.Stage {
	var available []types.Stage
	for _, stage := range Order() {
		if err := Validate(stage, have); err == nil {
			available = append(available, stage)
		}
	}
	return available
}
