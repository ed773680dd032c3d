package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Batch status constants
const (
	BatchStatusRunning   = "running"
	BatchStatusCompleted = "completed"
	BatchStatusFailed    = "failed"
	BatchStatusCanceled  = "canceled"
)

// Batch represents one batch invocation. The API exposes batches as
// campaigns; the IDs are the same.
type Batch struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	TotalRows   int        `json:"total_rows"`
	Attempted   int        `json:"attempted"`
	Sent        int        `json:"sent"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	Unlogged    int        `json:"unlogged"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateBatch creates a new batch record and returns its ID. Source names
// where the prospects came from, usually the CSV path.
func (db *DB) CreateBatch(ctx context.Context, source string, totalRows int) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO batches (source, total_rows, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		source, totalRows,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return id, nil
}

// BatchProgress carries the running totals written after each outcome
type BatchProgress struct {
	Attempted int
	Sent      int
	Skipped   int
	Failed    int
	Unlogged  int
}

// UpdateBatchProgress overwrites the batch's running totals
func (db *DB) UpdateBatchProgress(ctx context.Context, batchID uuid.UUID, p BatchProgress) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE batches SET attempted = $1, sent = $2, skipped = $3, failed = $4, unlogged = $5
		 WHERE id = $6`,
		p.Attempted, p.Sent, p.Skipped, p.Failed, p.Unlogged, batchID,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch progress: %w", err)
	}
	return nil
}

// CompleteBatch marks a batch as finished with the given terminal status
func (db *DB) CompleteBatch(ctx context.Context, batchID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE batches SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, batchID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete batch: %w", err)
	}
	return nil
}

// GetBatch retrieves a batch by ID
func (db *DB) GetBatch(ctx context.Context, batchID uuid.UUID) (*Batch, error) {
	var b Batch
	err := db.pool.QueryRow(ctx,
		`SELECT id, source, status, total_rows, attempted, sent, skipped, failed, unlogged, created_at, completed_at
		 FROM batches WHERE id = $1`,
		batchID,
	).Scan(&b.ID, &b.Source, &b.Status, &b.TotalRows, &b.Attempted, &b.Sent, &b.Skipped, &b.Failed, &b.Unlogged,
		&b.CreatedAt, &b.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return &b, nil
}

// ListBatches retrieves recent batches
func (db *DB) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, source, status, total_rows, attempted, sent, skipped, failed, unlogged, created_at, completed_at
		 FROM batches ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Source, &b.Status, &b.TotalRows, &b.Attempted, &b.Sent, &b.Skipped, &b.Failed,
			&b.Unlogged, &b.CreatedAt, &b.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, nil
}
