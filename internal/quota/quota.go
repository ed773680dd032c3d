// Package quota enforces the daily send limit. The tracker is the single
// source of truth for "may we send now": every delivery attempt must hold a
// reservation obtained from TryReserve.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// dayLayout keys quota state to a calendar date in local time.
const dayLayout = "2006-01-02"

// Counts aggregates outcome totals for one day.
type Counts struct {
	Sent    int
	Skipped int
	Failed  int
}

// Total returns the number of prospects processed.
func (c Counts) Total() int {
	return c.Sent + c.Skipped + c.Failed
}

// Store reads durable outcome records so the tracker can survive restarts.
// Implemented by the Postgres outcome store and by the in-memory log used
// for dry runs.
type Store interface {
	// CountReservedOn returns how many outcomes on the given day consumed a
	// send reservation: status sent, plus failures raised at the delivery
	// stage. A reservation is consumed on attempt, not on confirmed success.
	CountReservedOn(ctx context.Context, day time.Time) (int, error)

	// OutcomeCountsOn returns outcome totals by status for the given day.
	OutcomeCountsOn(ctx context.Context, day time.Time) (Counts, error)
}

// Stats is a read-only snapshot of today's quota state.
type Stats struct {
	Date      string `json:"date"`
	Sent      int    `json:"sent"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
	Reserved  int    `json:"reserved"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

// Tracker counts send reservations against a daily limit. All methods are
// safe for concurrent use; the check-and-increment in TryReserve is atomic,
// so once a single slot remains at most one concurrent caller wins it.
type Tracker struct {
	mu    sync.Mutex
	limit int
	store Store
	now   func() time.Time

	day        string
	reserved   int
	reconciled bool
}

// NewTracker creates a tracker for the given daily limit. The store may be
// nil, in which case counting starts at zero each day and nothing survives a
// restart.
func NewTracker(limit int, store Store) *Tracker {
	return &Tracker{
		limit: limit,
		store: store,
		now:   time.Now,
	}
}

// TryReserve attempts to claim one send slot for today. It returns true and
// increments the count when a slot is free, false without mutating state when
// the limit is reached. A granted reservation is never returned, even if the
// delivery it covers fails.
func (t *Tracker) TryReserve(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.reconcile(ctx); err != nil {
		return false, err
	}

	if t.reserved >= t.limit {
		return false, nil
	}
	t.reserved++
	return true, nil
}

// CurrentStats returns a snapshot for the current date. Outcome totals come
// from the store when one is configured; reservation counts are the
// tracker's own.
func (t *Tracker) CurrentStats(ctx context.Context) (Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.reconcile(ctx); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Date:      t.day,
		Reserved:  t.reserved,
		Limit:     t.limit,
		Remaining: max(0, t.limit-t.reserved),
	}

	if t.store != nil {
		counts, err := t.store.OutcomeCountsOn(ctx, t.now())
		if err != nil {
			return Stats{}, fmt.Errorf("failed to load outcome counts: %w", err)
		}
		stats.Sent = counts.Sent
		stats.Skipped = counts.Skipped
		stats.Failed = counts.Failed
		stats.Total = counts.Total()
	}

	return stats, nil
}

// Exhausted reports whether today's limit has been reached. It is a cheap
// read for callers that want to short-circuit work before attempting a
// reservation; TryReserve remains the only authoritative gate.
func (t *Tracker) Exhausted(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.reconcile(ctx); err != nil {
		return false, err
	}
	return t.reserved >= t.limit, nil
}

// Limit returns the configured daily maximum.
func (t *Tracker) Limit() int {
	return t.limit
}

// reconcile aligns the tracker with the wall clock. On the first call of a
// new day the count restarts from the store's durable total for that day, so
// a mid-day restart resumes at the true count instead of zero. Reservations
// from a previous day never carry over. Callers must hold t.mu.
func (t *Tracker) reconcile(ctx context.Context) error {
	now := t.now()
	day := now.Format(dayLayout)
	if day == t.day && t.reconciled {
		return nil
	}

	count := 0
	if t.store != nil {
		c, err := t.store.CountReservedOn(ctx, now)
		if err != nil {
			return fmt.Errorf("failed to reconstruct daily count: %w", err)
		}
		count = c
	}

	t.day = day
	t.reserved = count
	t.reconciled = true
	return nil
}
