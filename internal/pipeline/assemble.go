package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/delivery"
	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/message"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/offers"
	"github.com/jonathan/outreach-agent/internal/quota"
	"github.com/jonathan/outreach-agent/internal/research"
	"github.com/jonathan/outreach-agent/internal/strategy"
)

// BuildOptions configures a fully assembled outreach agent.
type BuildOptions struct {
	// Config supplies sender identity, transport settings, and limits.
	Config *config.Config

	// Database backs the page cache, the outcome log, and the quota
	// store. Nil runs fully in memory.
	Database *db.DB

	// BatchID tags logged outcomes with the batch they belong to.
	// uuid.Nil marks outcomes recorded outside a batch.
	BatchID uuid.UUID

	// Printer receives per-stage progress boxes. Nil stays quiet.
	Printer *observability.Printer

	// OnProgress observes pipeline events as they happen.
	OnProgress ProgressCallback
}

// Agent bundles an assembled orchestrator with the resources it owns.
type Agent struct {
	Orchestrator *Orchestrator
	Tracker      *quota.Tracker

	// Log holds the in-memory outcome log. Non-nil only when the agent
	// runs without a database.
	Log *MemoryLog

	llm llm.Client
}

// Close releases the LLM client.
func (a *Agent) Close() {
	_ = a.llm.Close()
}

// Build wires every pipeline stage from configuration: LLM client, offer
// catalog, research agent with cached fetching, strategy selector, message
// generator, deliverer, outcome log, and quota tracker.
func Build(ctx context.Context, opts BuildOptions) (*Agent, error) {
	cfg := opts.Config

	client, err := llm.NewClient(ctx, nil, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	catalog, err := offers.LoadCatalog(cfg.OffersPath)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to load offer catalog: %w", err)
	}

	fetcher := fetch.NewCachedFetcher(opts.Database, nil)

	var discoverer research.Discoverer
	if cx := os.Getenv("GOOGLE_CSE_ID"); cx != "" {
		d, derr := research.NewWebsiteDiscoverer(ctx, cfg.APIKey, cx)
		if derr != nil {
			fmt.Printf("Warning: website discovery unavailable: %v\n", derr)
		} else {
			discoverer = d
		}
	}

	researcher := research.New(research.Options{
		LLM:         client,
		Fetcher:     fetcher,
		Discoverer:  discoverer,
		MaxPages:    cfg.MaxResearchPages,
		ScrapeDelay: time.Duration(cfg.ScrapeDelaySeconds) * time.Second,
		UseBrowser:  cfg.UseBrowser,
		Verbose:     cfg.Verbose,
	})

	matcher := offers.New(offers.Options{
		LLM:     client,
		Catalog: catalog,
		Verbose: cfg.Verbose,
	})

	selector := strategy.New(strategy.Options{
		LLM:     client,
		Verbose: cfg.Verbose,
	})

	generator := message.New(message.Options{
		LLM:     client,
		Sender:  cfg.Sender,
		Verbose: cfg.Verbose,
	})

	var deliverer Deliverer
	if cfg.DryRun {
		deliverer = delivery.NewDryRunSender(os.Stdout)
	} else {
		deliverer = delivery.NewSMTPSender(delivery.Options{
			SMTP:          cfg.SMTP,
			Sender:        cfg.Sender,
			TestRecipient: cfg.TestRecipient,
			Verbose:       cfg.Verbose,
		})
	}

	// Dry runs stay out of the database entirely so rehearsals neither
	// consume quota nor pollute the outcome log.
	var (
		logger OutcomeLogger
		store  quota.Store
		memLog *MemoryLog
	)
	if opts.Database != nil && !cfg.DryRun {
		logger = db.NewOutcomeLogger(opts.Database, opts.BatchID)
		store = opts.Database
	} else {
		memLog = NewMemoryLog()
		logger = memLog
		store = memLog
	}

	tracker := quota.NewTracker(cfg.DailySendLimit, store)

	orch := New(Options{
		Researcher:       researcher,
		OfferMatcher:     matcher,
		StrategySelector: selector,
		MessageGenerator: generator,
		Deliverer:        deliverer,
		Logger:           logger,
		Quota:            tracker,
		MinQualityScore:  cfg.MinQualityScore,
		Verbose:          cfg.Verbose,
		Printer:          opts.Printer,
		OnProgress:       opts.OnProgress,
	})

	return &Agent{
		Orchestrator: orch,
		Tracker:      tracker,
		Log:          memLog,
		llm:          client,
	}, nil
}
