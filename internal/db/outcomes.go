package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/outreach-agent/internal/quota"
	"github.com/jonathan/outreach-agent/internal/types"
)

// OutcomeRow is one line of the outcome log: the flattened terminal record of
// a single prospect's run. Artifact fields are empty when the run stopped
// before the stage that would have produced them.
type OutcomeRow struct {
	ID             uuid.UUID  `json:"id"`
	BatchID        *uuid.UUID `json:"batch_id,omitempty"`
	LoggedAt       time.Time  `json:"logged_at"`
	ProspectName   string     `json:"prospect_name"`
	Company        string     `json:"company,omitempty"`
	Email          string     `json:"email"`
	LinkedInURL    string     `json:"linkedin_url,omitempty"`
	WebsiteURL     string     `json:"website_url,omitempty"`
	Title          string     `json:"title,omitempty"`
	Status         string     `json:"status"`
	StageReached   string     `json:"stage_reached"`
	Reason         string     `json:"reason,omitempty"`
	QualityScore   float64    `json:"quality_score,omitempty"`
	Personality    string     `json:"personality,omitempty"`
	TriggersFound  bool       `json:"triggers_found"`
	TriggerDetails string     `json:"trigger_details,omitempty"`
	Services       string     `json:"services,omitempty"`
	MatchedOffer   string     `json:"matched_offer,omitempty"`
	Strategy       string     `json:"strategy,omitempty"`
	Subject        string     `json:"subject,omitempty"`
	Body           string     `json:"body,omitempty"`
	OfferSummary   string     `json:"offer_summary,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewOutcomeRow flattens a terminal outcome into a log row. A Nil batch ID
// stores NULL, for single-prospect runs that belong to no batch.
func NewOutcomeRow(batchID uuid.UUID, o *types.Outcome) *OutcomeRow {
	row := &OutcomeRow{
		LoggedAt:     o.CompletedAt,
		ProspectName: o.Prospect.FullName(),
		Company:      o.Prospect.Company,
		Email:        o.Prospect.Email,
		LinkedInURL:  o.Prospect.LinkedInURL,
		WebsiteURL:   o.Prospect.WebsiteURL,
		Title:        o.Prospect.Title,
		Status:       string(o.Status),
		StageReached: string(o.StageReached),
		Reason:       o.Reason,
	}
	if batchID != uuid.Nil {
		id := batchID
		row.BatchID = &id
	}
	if o.Research != nil {
		row.QualityScore = o.Research.QualityScore
		row.Personality = string(o.Research.Personality)
		row.TriggersFound = len(o.Research.Triggers) > 0
		row.TriggerDetails = o.Research.TriggerDetails()
		row.Services = o.Research.ServicesSummary()
	}
	if o.Offer != nil {
		row.MatchedOffer = o.Offer.Offer.Name
	}
	if o.Strategy != nil {
		row.Strategy = o.Strategy.StrategyID
	}
	if o.Message != nil {
		row.Subject = o.Message.Subject
		row.Body = o.Message.Body
		row.OfferSummary = o.Message.OfferSummary
	}
	if row.LoggedAt.IsZero() {
		row.LoggedAt = time.Now()
	}
	return row
}

const outcomeColumns = `id, batch_id, logged_at, prospect_name, company, email, linkedin_url, website_url, title,
	status, stage_reached, reason, quality_score, personality, triggers_found, trigger_details,
	services, matched_offer, strategy, subject, body, offer_summary, created_at`

// InsertOutcome writes one outcome row and scans the generated ID and
// created_at back into it
func (db *DB) InsertOutcome(ctx context.Context, row *OutcomeRow) error {
	if row.LoggedAt.IsZero() {
		row.LoggedAt = time.Now()
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO outcomes (batch_id, logged_at, prospect_name, company, email, linkedin_url, website_url, title,
		                       status, stage_reached, reason, quality_score, personality, triggers_found,
		                       trigger_details, services, matched_offer, strategy, subject, body, offer_summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		 RETURNING id, created_at`,
		row.BatchID, row.LoggedAt, row.ProspectName, row.Company, row.Email, row.LinkedInURL, row.WebsiteURL, row.Title,
		row.Status, row.StageReached, row.Reason, row.QualityScore, row.Personality, row.TriggersFound,
		row.TriggerDetails, row.Services, row.MatchedOffer, row.Strategy, row.Subject, row.Body, row.OfferSummary,
	).Scan(&row.ID, &row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

// CountReservedOn counts outcomes on the given day that consumed a send
// reservation: status sent, plus failures raised at the delivery stage. The
// quota tracker reads this on its first reservation of the day.
func (db *DB) CountReservedOn(ctx context.Context, day time.Time) (int, error) {
	start, end := dayBounds(day)

	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outcomes
		 WHERE logged_at >= $1 AND logged_at < $2
		   AND (status = $3 OR (status = $4 AND stage_reached = $5))`,
		start, end, string(types.StatusSent), string(types.StatusFailed), string(types.StageDeliver),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reserved outcomes: %w", err)
	}
	return count, nil
}

// OutcomeCountsOn returns outcome totals by status for the given day
func (db *DB) OutcomeCountsOn(ctx context.Context, day time.Time) (quota.Counts, error) {
	start, end := dayBounds(day)

	rows, err := db.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM outcomes
		 WHERE logged_at >= $1 AND logged_at < $2
		 GROUP BY status`,
		start, end,
	)
	if err != nil {
		return quota.Counts{}, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	var counts quota.Counts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return quota.Counts{}, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		switch status {
		case string(types.StatusSent):
			counts.Sent = n
		case string(types.StatusSkipped):
			counts.Skipped = n
		case string(types.StatusFailed):
			counts.Failed = n
		}
	}
	return counts, nil
}

// ReasonCount is one skip reason with its frequency
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// DailyStats summarizes one day of the outcome log for the stats command
type DailyStats struct {
	Day         string        `json:"day"`
	Sent        int           `json:"sent"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Total       int           `json:"total"`
	Reserved    int           `json:"reserved"`
	AvgQuality  float64       `json:"avg_quality"`
	SkipReasons []ReasonCount `json:"skip_reasons,omitempty"`
}

// DailyStats assembles the summary for one day
func (db *DB) DailyStats(ctx context.Context, day time.Time) (*DailyStats, error) {
	counts, err := db.OutcomeCountsOn(ctx, day)
	if err != nil {
		return nil, err
	}
	reserved, err := db.CountReservedOn(ctx, day)
	if err != nil {
		return nil, err
	}

	start, end := dayBounds(day)

	// Rows research never reached carry a zero score; leave them out of the average
	var avg float64
	err = db.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(quality_score), 0) FROM outcomes
		 WHERE logged_at >= $1 AND logged_at < $2 AND quality_score > 0`,
		start, end,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("failed to average quality scores: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT reason, COUNT(*) FROM outcomes
		 WHERE logged_at >= $1 AND logged_at < $2 AND status = $3 AND reason <> ''
		 GROUP BY reason ORDER BY COUNT(*) DESC, reason`,
		start, end, string(types.StatusSkipped),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count skip reasons: %w", err)
	}
	defer rows.Close()

	var reasons []ReasonCount
	for rows.Next() {
		var rc ReasonCount
		if err := rows.Scan(&rc.Reason, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan skip reason: %w", err)
		}
		reasons = append(reasons, rc)
	}

	return &DailyStats{
		Day:         start.Format("2006-01-02"),
		Sent:        counts.Sent,
		Skipped:     counts.Skipped,
		Failed:      counts.Failed,
		Total:       counts.Total(),
		Reserved:    reserved,
		AvgQuality:  avg,
		SkipReasons: reasons,
	}, nil
}

// ListOutcomesByDate retrieves the full outcome log for one day in the order
// it was written
func (db *DB) ListOutcomesByDate(ctx context.Context, day time.Time) ([]OutcomeRow, error) {
	start, end := dayBounds(day)

	rows, err := db.pool.Query(ctx,
		`SELECT `+outcomeColumns+`
		 FROM outcomes WHERE logged_at >= $1 AND logged_at < $2
		 ORDER BY logged_at ASC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	return collectOutcomes(rows)
}

// OutcomeFilters holds optional filters for listing recent outcomes
type OutcomeFilters struct {
	Day    time.Time // zero value means any day
	Status string
	Limit  int
}

// ListRecentOutcomes retrieves outcomes newest-first with optional filters
func (db *DB) ListRecentOutcomes(ctx context.Context, filters OutcomeFilters) ([]OutcomeRow, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + outcomeColumns + ` FROM outcomes WHERE 1=1`
	args := []any{}
	argNum := 1

	if !filters.Day.IsZero() {
		start, end := dayBounds(filters.Day)
		query += fmt.Sprintf(" AND logged_at >= $%d AND logged_at < $%d", argNum, argNum+1)
		args = append(args, start, end)
		argNum += 2
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY logged_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	return collectOutcomes(rows)
}

func collectOutcomes(rows pgx.Rows) ([]OutcomeRow, error) {
	var outcomes []OutcomeRow
	for rows.Next() {
		var o OutcomeRow
		if err := rows.Scan(&o.ID, &o.BatchID, &o.LoggedAt, &o.ProspectName, &o.Company, &o.Email,
			&o.LinkedInURL, &o.WebsiteURL, &o.Title, &o.Status, &o.StageReached, &o.Reason,
			&o.QualityScore, &o.Personality, &o.TriggersFound, &o.TriggerDetails, &o.Services,
			&o.MatchedOffer, &o.Strategy, &o.Subject, &o.Body, &o.OfferSummary, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// dayBounds returns the half-open interval covering the calendar date of day
// in its own location
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// OutcomeLogger adapts the outcomes table to the pipeline's logging port. One
// logger serves one batch; its outcomes share the batch ID.
type OutcomeLogger struct {
	db      *DB
	batchID uuid.UUID
}

// NewOutcomeLogger creates a logger that stamps outcomes with batchID.
// Pass uuid.Nil for runs outside any batch.
func NewOutcomeLogger(database *DB, batchID uuid.UUID) *OutcomeLogger {
	return &OutcomeLogger{db: database, batchID: batchID}
}

// LogOutcome flattens and inserts one terminal outcome
func (l *OutcomeLogger) LogOutcome(ctx context.Context, outcome *types.Outcome) error {
	return l.db.InsertOutcome(ctx, NewOutcomeRow(l.batchID, outcome))
}
