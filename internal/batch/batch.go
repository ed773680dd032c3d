// Package batch drives the per-prospect pipeline over an ordered list of
// prospects. The runner owns windowing (start row and attempt cap), the cheap
// per-row preconditions, pacing between sends, and cooperative cancellation;
// everything content-related stays inside the pipeline.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/quota"
	"github.com/jonathan/outreach-agent/internal/types"
)

// Pipeline is the per-prospect surface the runner drives. Implemented by
// pipeline.Orchestrator.
type Pipeline interface {
	// Run processes one prospect through every stage.
	Run(ctx context.Context, prospect types.Prospect) *types.Outcome

	// SkipForQuota records a skip for a prospect not started because the
	// daily limit is exhausted.
	SkipForQuota(ctx context.Context, prospect types.Prospect) *types.Outcome

	// SkipForValidation records a skip for a prospect that failed the
	// required-field precondition.
	SkipForValidation(ctx context.Context, prospect types.Prospect) *types.Outcome
}

// Options configures one batch invocation.
type Options struct {
	// StartRow skips this many leading rows, so an interrupted batch can be
	// resumed where it stopped.
	StartRow int

	// Limit caps how many prospects are attempted. Zero means no cap.
	Limit int

	// SendInterval paces delivered sends. After an outcome that consumed a
	// send reservation the runner waits before starting the next prospect;
	// skipped prospects do not wait. Zero disables pacing.
	SendInterval time.Duration
}

// Summary aggregates one batch run. Outcomes holds every produced outcome in
// input order; none are discarded.
type Summary struct {
	Attempted int              `json:"attempted"`
	Sent      int              `json:"sent"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	Unlogged  int              `json:"unlogged"`
	Outcomes  []*types.Outcome `json:"outcomes"`
}

func (s *Summary) add(o *types.Outcome) {
	s.Attempted++
	switch o.Status {
	case types.StatusSent:
		s.Sent++
	case types.StatusSkipped:
		s.Skipped++
	case types.StatusFailed:
		s.Failed++
	}
	if o.Unlogged {
		s.Unlogged++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// Runner processes prospects strictly in order, one at a time.
type Runner struct {
	pipe    Pipeline
	tracker *quota.Tracker
	printer *observability.Printer
}

// NewRunner creates a Runner. The printer may be nil to suppress the
// end-of-batch totals box.
func NewRunner(pipe Pipeline, tracker *quota.Tracker, printer *observability.Printer) *Runner {
	return &Runner{
		pipe:    pipe,
		tracker: tracker,
		printer: printer,
	}
}

// Run processes the selected window of prospects and returns the summary.
// Every attempted row ends with exactly one Outcome: invalid rows and rows
// past quota exhaustion are skipped through the pipeline so they are still
// logged. Cancellation is honored between prospects; rows not yet started
// produce no outcome and can be resumed later via StartRow.
func (r *Runner) Run(ctx context.Context, prospects []types.Prospect, opts Options) Summary {
	var summary Summary

	rows := window(prospects, opts.StartRow, opts.Limit)
	total := len(rows)

	var limiter *rate.Limiter
	if opts.SendInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.SendInterval), 1)
		// Spend the initial token so pacing applies from the first send on.
		limiter.Allow()
	}

	for i, prospect := range rows {
		if ctx.Err() != nil {
			break
		}

		fmt.Printf("\n🎯 [%d/%d] Processing %s\n", i+1, total, describeProspect(prospect))

		outcome := r.runOne(ctx, prospect)
		summary.add(outcome)

		if limiter != nil && outcome.ConsumedReservation() && i < total-1 {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
	}

	if r.printer != nil {
		r.printer.PrintRunTotals(summary.Sent, summary.Skipped, summary.Failed, summary.Unlogged)
	}
	return summary
}

// runOne applies the cheap preconditions, then hands the prospect to the
// pipeline. The exhaustion pre-check avoids burning research calls on rows
// that could not be sent anyway; TryReserve inside the pipeline remains the
// authoritative gate.
func (r *Runner) runOne(ctx context.Context, prospect types.Prospect) *types.Outcome {
	if err := prospect.Validate(); err != nil {
		return r.pipe.SkipForValidation(ctx, prospect)
	}

	if exhausted, err := r.tracker.Exhausted(ctx); err == nil && exhausted {
		return r.pipe.SkipForQuota(ctx, prospect)
	}

	return r.pipe.Run(ctx, prospect)
}

// window selects the rows a batch invocation covers. The same input with the
// same start row always yields the same subset.
func window(prospects []types.Prospect, start, limit int) []types.Prospect {
	if start < 0 {
		start = 0
	}
	if start >= len(prospects) {
		return nil
	}
	rows := prospects[start:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func describeProspect(p types.Prospect) string {
	label := p.DisplayLabel()
	if p.Company != "" && label != p.Company {
		return fmt.Sprintf("%s (%s)", label, p.Company)
	}
	return label
}
