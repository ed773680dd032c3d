package db

import (
	"context"
	"fmt"
)

// schemaStatements are applied one at a time because the pool's extended
// protocol rejects multi-statement strings. Everything is IF NOT EXISTS so
// EnsureSchema is safe to run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS outcomes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		batch_id UUID,
		logged_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		prospect_name TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		linkedin_url TEXT NOT NULL DEFAULT '',
		website_url TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		stage_reached TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		quality_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		personality TEXT NOT NULL DEFAULT '',
		triggers_found BOOLEAN NOT NULL DEFAULT FALSE,
		trigger_details TEXT NOT NULL DEFAULT '',
		services TEXT NOT NULL DEFAULT '',
		matched_offer TEXT NOT NULL DEFAULT '',
		strategy TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		offer_summary TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outcomes_logged_at ON outcomes (logged_at)`,
	`CREATE INDEX IF NOT EXISTS idx_outcomes_batch_id ON outcomes (batch_id)`,

	`CREATE TABLE IF NOT EXISTS batches (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		source TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'running',
		total_rows INTEGER NOT NULL DEFAULT 0,
		attempted INTEGER NOT NULL DEFAULT 0,
		sent INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		unlogged INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS crawled_pages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		company_domain TEXT,
		url TEXT NOT NULL UNIQUE,
		page_kind TEXT,
		raw_html TEXT,
		parsed_text TEXT,
		content_hash TEXT,
		http_status INTEGER,
		fetch_status TEXT NOT NULL DEFAULT 'success',
		error_message TEXT,
		is_permanent_failure BOOLEAN NOT NULL DEFAULT FALSE,
		retry_count INTEGER NOT NULL DEFAULT 0,
		retry_after TIMESTAMPTZ,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ,
		last_accessed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_crawled_pages_company_domain ON crawled_pages (company_domain)`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the agent's tables and indexes if they do not exist.
// Commands call it right after Connect so a fresh database works without a
// separate provisioning step.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
