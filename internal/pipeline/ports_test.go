package pipeline_test

import (
	"github.com/jonathan/outreach-agent/internal/delivery"
	"github.com/jonathan/outreach-agent/internal/message"
	"github.com/jonathan/outreach-agent/internal/offers"
	"github.com/jonathan/outreach-agent/internal/pipeline"
	"github.com/jonathan/outreach-agent/internal/research"
	"github.com/jonathan/outreach-agent/internal/strategy"
)

// Every stage adapter must satisfy its orchestrator port.
var (
	_ pipeline.Researcher       = (*research.Agent)(nil)
	_ pipeline.OfferMatcher     = (*offers.Agent)(nil)
	_ pipeline.StrategySelector = (*strategy.Agent)(nil)
	_ pipeline.MessageGenerator = (*message.Agent)(nil)
	_ pipeline.Deliverer        = (*delivery.SMTPSender)(nil)
	_ pipeline.Deliverer        = (*delivery.DryRunSender)(nil)
	_ pipeline.OutcomeLogger    = (*pipeline.MemoryLog)(nil)
)
