package db_test

import (
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/pipeline"
	"github.com/jonathan/outreach-agent/internal/quota"
)

// The outcome store must satisfy both consumer-side ports.
var (
	_ quota.Store            = (*db.DB)(nil)
	_ pipeline.OutcomeLogger = (*db.OutcomeLogger)(nil)
)
