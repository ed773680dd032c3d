package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/outreach-agent/internal/quota"
	"github.com/jonathan/outreach-agent/internal/types"
)

// MemoryLog keeps outcomes in process memory. It backs dry runs, where
// nothing may touch the database, and doubles as the quota store so
// daily-limit behavior within one process matches a persistent run.
type MemoryLog struct {
	mu       sync.Mutex
	outcomes []*types.Outcome
}

// NewMemoryLog creates an empty in-memory outcome log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// LogOutcome appends the outcome. It never fails.
func (l *MemoryLog) LogOutcome(_ context.Context, outcome *types.Outcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, outcome)
	return nil
}

// Outcomes returns a copy of everything logged so far, in order.
func (l *MemoryLog) Outcomes() []*types.Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*types.Outcome, len(l.outcomes))
	copy(out, l.outcomes)
	return out
}

// CountReservedOn counts outcomes on the given day that consumed a send
// reservation: status sent, plus failures raised at the delivery stage.
func (l *MemoryLog) CountReservedOn(_ context.Context, day time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, o := range l.outcomes {
		if !sameDay(o.CompletedAt, day) {
			continue
		}
		if o.ConsumedReservation() {
			count++
		}
	}
	return count, nil
}

// OutcomeCountsOn returns outcome totals by status for the given day.
func (l *MemoryLog) OutcomeCountsOn(_ context.Context, day time.Time) (quota.Counts, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var counts quota.Counts
	for _, o := range l.outcomes {
		if !sameDay(o.CompletedAt, day) {
			continue
		}
		switch o.Status {
		case types.StatusSent:
			counts.Sent++
		case types.StatusSkipped:
			counts.Skipped++
		case types.StatusFailed:
			counts.Failed++
		}
	}
	return counts, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
