// Package pipeline drives one prospect through the ordered outreach stages,
// consulting the quality gate and the quota tracker, classifying per-stage
// failures, and producing exactly one terminal Outcome per prospect.
package pipeline

import (
	"context"

	"github.com/jonathan/outreach-agent/internal/types"
)

// Researcher gathers findings about a prospect's company.
type Researcher interface {
	Research(ctx context.Context, prospect types.Prospect) (*types.ResearchRecord, error)
}

// OfferMatcher picks the best-fitting service offering for a researched
// prospect. Returns *types.NoMatchError when nothing in the catalog fits.
type OfferMatcher interface {
	Match(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord) (*types.OfferSelection, error)
}

// StrategySelector chooses an outreach strategy for the prospect.
type StrategySelector interface {
	Select(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection) (*types.StrategySelection, error)
}

// MessageGenerator drafts the outreach message from the collected artifacts.
type MessageGenerator interface {
	Generate(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection, strategy *types.StrategySelection) (*types.OutreachMessage, error)
}

// Deliverer sends a generated message. Callers must hold a quota reservation
// before invoking Deliver.
type Deliverer interface {
	Deliver(ctx context.Context, prospect types.Prospect, msg *types.OutreachMessage) error
}

// OutcomeLogger records a terminal outcome durably.
type OutcomeLogger interface {
	LogOutcome(ctx context.Context, outcome *types.Outcome) error
}
