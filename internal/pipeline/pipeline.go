package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/outreach-agent/internal/gate"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/quota"
	"github.com/jonathan/outreach-agent/internal/types"
)

// Skip reasons produced by the orchestrator itself. Gate reasons live in the
// gate package.
const (
	// ReasonDailyLimit marks prospects skipped because today's send quota is
	// exhausted.
	ReasonDailyLimit = "daily limit reached"
	// ReasonMissingField marks input rows that fail the eligibility
	// pre-condition and never reach any stage.
	ReasonMissingField = "missing required field"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage    string `json:"stage"`
	Prospect string `json:"prospect,omitempty"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds the collaborators and settings for an Orchestrator.
type Options struct {
	Researcher       Researcher
	OfferMatcher     OfferMatcher
	StrategySelector StrategySelector
	MessageGenerator MessageGenerator
	Deliverer        Deliverer
	Logger           OutcomeLogger
	Quota            *quota.Tracker
	MinQualityScore  float64
	Verbose          bool
	Printer          *observability.Printer
	OnProgress       ProgressCallback
}

// Orchestrator runs the per-prospect state machine:
//
//	Start → Research → GateCheck → OfferMatch → StrategySelect →
//	MessageGenerate → QuotaReserve → Deliver → Log → Done
//
// A skip or failure at any stage short-circuits to Log with the partial
// artifacts collected so far. Log always executes. Stages are never retried.
type Orchestrator struct {
	researcher Researcher
	offers     OfferMatcher
	strategies StrategySelector
	messages   MessageGenerator
	deliverer  Deliverer
	logger     OutcomeLogger
	tracker    *quota.Tracker
	minScore   float64
	verbose    bool
	printer    *observability.Printer
	onProgress ProgressCallback
	now        func() time.Time
}

// New creates an Orchestrator from the given options.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		researcher: opts.Researcher,
		offers:     opts.OfferMatcher,
		strategies: opts.StrategySelector,
		messages:   opts.MessageGenerator,
		deliverer:  opts.Deliverer,
		logger:     opts.Logger,
		tracker:    opts.Quota,
		minScore:   opts.MinQualityScore,
		verbose:    opts.Verbose,
		printer:    opts.Printer,
		onProgress: opts.OnProgress,
		now:        time.Now,
	}
}

// Run processes one prospect through every stage and returns its terminal
// Outcome. Run never returns an error: infrastructure problems surface as
// failed outcomes, and a logging problem is flagged on the outcome itself.
func (o *Orchestrator) Run(ctx context.Context, prospect types.Prospect) *types.Outcome {
	outcome := &types.Outcome{
		Prospect:     prospect,
		StageReached: types.StageStart,
	}

	o.process(ctx, outcome)
	o.finalize(ctx, outcome)
	return outcome
}

// SkipForQuota produces and logs a skip outcome for a prospect that was
// never started because the daily limit is already exhausted. The batch
// runner uses this so every remaining row still ends with exactly one
// Outcome without burning research calls.
func (o *Orchestrator) SkipForQuota(ctx context.Context, prospect types.Prospect) *types.Outcome {
	outcome := &types.Outcome{
		Prospect:     prospect,
		Status:       types.StatusSkipped,
		StageReached: types.StageQuotaReserve,
		Reason:       ReasonDailyLimit,
	}
	fmt.Printf("  Skipped: %s\n", ReasonDailyLimit)
	o.finalize(ctx, outcome)
	return outcome
}

// SkipForValidation produces and logs a skip outcome for an input row that
// failed the eligibility pre-condition. No stage adapter runs and no quota
// is consumed.
func (o *Orchestrator) SkipForValidation(ctx context.Context, prospect types.Prospect) *types.Outcome {
	outcome := &types.Outcome{
		Prospect:     prospect,
		Status:       types.StatusSkipped,
		StageReached: types.StageStart,
		Reason:       ReasonMissingField,
	}
	fmt.Printf("  Skipped: %s\n", ReasonMissingField)
	o.finalize(ctx, outcome)
	return outcome
}

// process advances the outcome through the stages until it reaches a
// terminal state. Artifacts are attached as they are produced so a
// short-circuited outcome still carries everything collected before the stop.
func (o *Orchestrator) process(ctx context.Context, outcome *types.Outcome) {
	prospect := outcome.Prospect

	fmt.Printf("  Step 1/8: Researching %s...\n", prospect.DisplayLabel())
	outcome.StageReached = types.StageResearch
	rec, err := o.researcher.Research(ctx, prospect)
	if err != nil {
		o.stageError(outcome, types.StageResearch, err)
		return
	}
	outcome.Research = rec
	if o.verbose && o.printer != nil {
		o.printer.PrintResearchRecord(rec)
	}
	o.emit(types.StageResearch, prospect, fmt.Sprintf("Research complete: quality %.1f/5", outcome.QualityScore()), rec)

	fmt.Printf("  Step 2/8: Checking research quality...\n")
	outcome.StageReached = types.StageGateCheck
	decision := gate.Evaluate(rec, o.minScore)
	if !decision.Pass {
		o.skip(outcome, types.StageGateCheck, decision.Reason)
		return
	}
	o.emit(types.StageGateCheck, prospect, "Quality gate passed", nil)

	fmt.Printf("  Step 3/8: Matching offer...\n")
	outcome.StageReached = types.StageOfferMatch
	offer, err := o.offers.Match(ctx, prospect, rec)
	if err != nil {
		o.stageError(outcome, types.StageOfferMatch, err)
		return
	}
	outcome.Offer = offer
	if o.verbose && o.printer != nil {
		o.printer.PrintOfferSelection(offer)
	}
	o.emit(types.StageOfferMatch, prospect, fmt.Sprintf("Matched offer: %s", offer.Offer.Name), offer)

	fmt.Printf("  Step 4/8: Selecting strategy...\n")
	outcome.StageReached = types.StageStrategySelect
	strategy, err := o.strategies.Select(ctx, prospect, rec, offer)
	if err != nil {
		o.stageError(outcome, types.StageStrategySelect, err)
		return
	}
	outcome.Strategy = strategy
	if o.verbose && o.printer != nil {
		o.printer.PrintStrategySelection(strategy)
	}
	o.emit(types.StageStrategySelect, prospect, fmt.Sprintf("Selected strategy: %s", strategy.StrategyID), strategy)

	fmt.Printf("  Step 5/8: Generating message...\n")
	outcome.StageReached = types.StageMessageGenerate
	msg, err := o.messages.Generate(ctx, prospect, rec, offer, strategy)
	if err != nil {
		o.stageError(outcome, types.StageMessageGenerate, err)
		return
	}
	outcome.Message = msg
	if o.verbose && o.printer != nil {
		o.printer.PrintMessage(msg)
	}
	o.emit(types.StageMessageGenerate, prospect, fmt.Sprintf("Generated message: %q", msg.Subject), msg)

	fmt.Printf("  Step 6/8: Reserving send slot...\n")
	outcome.StageReached = types.StageQuotaReserve
	granted, err := o.tracker.TryReserve(ctx)
	if err != nil {
		o.fail(outcome, types.StageQuotaReserve, err)
		return
	}
	if !granted {
		o.skip(outcome, types.StageQuotaReserve, ReasonDailyLimit)
		return
	}

	// The reservation is consumed from here on, even if delivery fails.
	fmt.Printf("  Step 7/8: Delivering message...\n")
	outcome.StageReached = types.StageDeliver
	if err := o.deliverer.Deliver(ctx, prospect, msg); err != nil {
		o.fail(outcome, types.StageDeliver, err)
		return
	}

	outcome.Status = types.StatusSent
	outcome.StageReached = types.StageDone
	fmt.Printf("  ✅ Sent to %s\n", prospect.Email)
	o.emit(types.StageDeliver, prospect, "Message delivered", nil)
}

// finalize stamps the outcome and records it. Logging always runs, whatever
// state the run stopped in; a logging failure is flagged on the outcome but
// never retried and never alters the terminal status.
func (o *Orchestrator) finalize(ctx context.Context, outcome *types.Outcome) {
	outcome.CompletedAt = o.now()

	fmt.Printf("  Step 8/8: Logging outcome...\n")
	if o.logger == nil {
		outcome.Unlogged = true
		return
	}
	if err := o.logger.LogOutcome(ctx, outcome); err != nil {
		outcome.Unlogged = true
		fmt.Printf("  ⚠ Warning: failed to log outcome for %s: %v\n", outcome.Prospect.DisplayLabel(), err)
	}
	o.emit(types.StageLog, outcome.Prospect, fmt.Sprintf("Outcome recorded: %s", outcome.Status), outcome)
}

// stageError resolves an adapter error to its outcome tier: a NoMatchError
// is an expected skip, anything else is a stage failure.
func (o *Orchestrator) stageError(outcome *types.Outcome, stage types.Stage, err error) {
	var noMatch *types.NoMatchError
	if errors.As(err, &noMatch) {
		o.skip(outcome, stage, fmt.Sprintf("%s: no match", stage))
		return
	}
	o.fail(outcome, stage, err)
}

func (o *Orchestrator) skip(outcome *types.Outcome, stage types.Stage, reason string) {
	outcome.Status = types.StatusSkipped
	outcome.StageReached = stage
	outcome.Reason = reason
	fmt.Printf("  Skipped: %s\n", reason)
	o.emit(stage, outcome.Prospect, fmt.Sprintf("Skipped: %s", reason), nil)
}

func (o *Orchestrator) fail(outcome *types.Outcome, stage types.Stage, err error) {
	outcome.Status = types.StatusFailed
	outcome.StageReached = stage
	outcome.Reason = fmt.Sprintf("%s: %v", stage, err)
	fmt.Printf("  ⚠ Failed: %s\n", outcome.Reason)
	o.emit(stage, outcome.Prospect, fmt.Sprintf("Failed: %s", outcome.Reason), nil)
}

func (o *Orchestrator) emit(stage types.Stage, prospect types.Prospect, message string, content any) {
	if o.onProgress != nil {
		o.onProgress(ProgressEvent{
			Stage:    string(stage),
			Prospect: prospect.Email,
			Message:  message,
			Content:  content,
		})
	}
}
