// Package types provides type definitions for structured data used throughout the outreach-agent system.
package types

import "time"

// OutcomeStatus is the terminal status of one prospect's run.
type OutcomeStatus string

// Terminal statuses. Every processed prospect ends in exactly one of these.
const (
	StatusSent    OutcomeStatus = "sent"
	StatusSkipped OutcomeStatus = "skipped"
	StatusFailed  OutcomeStatus = "failed"
)

// Stage identifies a position in the per-prospect pipeline. Stage values
// double as the prefix of skip/failure reasons ("message generation: ...").
type Stage string

// Pipeline stages in execution order.
const (
	StageStart           Stage = "start"
	StageResearch        Stage = "research"
	StageGateCheck       Stage = "gate check"
	StageOfferMatch      Stage = "offer match"
	StageStrategySelect  Stage = "strategy selection"
	StageMessageGenerate Stage = "message generation"
	StageQuotaReserve    Stage = "quota reserve"
	StageDeliver         Stage = "delivery"
	StageLog             Stage = "logging"
	StageDone            Stage = "done"
)

// Outcome is the terminal, immutable record of one prospect's run: what
// happened, where it stopped, and whichever artifacts were produced before
// stopping. Exactly one Outcome exists per prospect per run.
type Outcome struct {
	Prospect     Prospect           `json:"prospect"`
	Status       OutcomeStatus      `json:"status"`
	StageReached Stage              `json:"stage_reached"`
	Reason       string             `json:"reason,omitempty"`
	Research     *ResearchRecord    `json:"research,omitempty"`
	Offer        *OfferSelection    `json:"offer,omitempty"`
	Strategy     *StrategySelection `json:"strategy,omitempty"`
	Message      *OutreachMessage   `json:"message,omitempty"`
	// Unlogged marks an outcome that could not be durably recorded. It is
	// reported in batch summaries because it threatens resumability.
	Unlogged    bool      `json:"unlogged,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// ConsumedReservation reports whether this outcome used up a send slot for
// the day. Slots are consumed on attempt: a delivery that failed still counts,
// a skip never does.
func (o *Outcome) ConsumedReservation() bool {
	return o.Status == StatusSent || (o.Status == StatusFailed && o.StageReached == StageDeliver)
}

// QualityScore returns the research quality score, or zero when research
// never ran.
func (o *Outcome) QualityScore() float64 {
	if o.Research == nil {
		return 0
	}
	return o.Research.QualityScore
}

// OfferName returns the matched offer's name, or empty when no offer was selected.
func (o *Outcome) OfferName() string {
	if o.Offer == nil {
		return ""
	}
	return o.Offer.Offer.Name
}

// StrategyID returns the chosen strategy identifier, or empty when selection
// never ran.
func (o *Outcome) StrategyID() string {
	if o.Strategy == nil {
		return ""
	}
	return o.Strategy.StrategyID
}
