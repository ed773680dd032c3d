// Package research implements the research stage of the outreach pipeline:
// crawl a prospect's company website, then distill what the company does,
// any concrete outreach triggers, and a personality read into a
// types.ResearchRecord for the downstream stages.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/jonathan/outreach-agent/internal/validation"
)

// DefaultMaxPages bounds the crawl when no page limit is configured.
const DefaultMaxPages = 5

// maxCorpusChars bounds how much crawled text is quoted into the analysis
// prompt. Beyond this the extra pages add cost without adding signal.
const maxCorpusChars = 12000

// maxSummaryChars bounds the corpus excerpt for the focus-summary fallback.
// A ten-word summary needs far less context than the full analysis.
const maxSummaryChars = 4000

// Discoverer finds a company's website when the prospect row lacks one.
type Discoverer interface {
	DiscoverWebsite(ctx context.Context, company string) (string, error)
}

// Options configures a research Agent.
type Options struct {
	LLM         llm.Client
	Fetcher     PageFetcher
	Discoverer  Discoverer // optional; used when the prospect has no website URL
	MaxPages    int
	ScrapeDelay time.Duration
	UseBrowser  bool
	Verbose     bool
}

// Agent researches prospects. It implements pipeline.Researcher.
type Agent struct {
	llm         llm.Client
	fetcher     PageFetcher
	discoverer  Discoverer
	maxPages    int
	scrapeDelay time.Duration
	useBrowser  bool
	verbose     bool
}

// New creates a research Agent.
func New(opts Options) *Agent {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	return &Agent{
		llm:         opts.LLM,
		fetcher:     opts.Fetcher,
		discoverer:  opts.Discoverer,
		maxPages:    opts.MaxPages,
		scrapeDelay: opts.ScrapeDelay,
		useBrowser:  opts.UseBrowser,
		verbose:     opts.Verbose,
	}
}

// Research crawls the prospect's website and produces a ResearchRecord.
//
// A failed or impossible crawl is not a research failure: the analysis then
// runs on the prospect fields alone and the record scores accordingly. Only
// an unusable analysis response fails the stage.
func (a *Agent) Research(ctx context.Context, prospect types.Prospect) (*types.ResearchRecord, error) {
	seedURL := strings.TrimSpace(prospect.WebsiteURL)
	if seedURL == "" && a.discoverer != nil && prospect.Company != "" {
		found, err := a.discoverer.DiscoverWebsite(ctx, prospect.Company)
		if err != nil {
			if a.verbose {
				log.Printf("[research] website discovery for %q failed: %v", prospect.Company, err)
			}
		} else {
			seedURL = found
		}
	}

	var session *Session
	if seedURL != "" && a.fetcher != nil {
		s, err := Crawl(ctx, CrawlOptions{
			SeedURL:     seedURL,
			Fetcher:     a.fetcher,
			MaxPages:    a.maxPages,
			ScrapeDelay: a.scrapeDelay,
			UseBrowser:  a.useBrowser,
			Verbose:     a.verbose,
		})
		if err != nil {
			if a.verbose {
				log.Printf("[research] crawl of %s failed: %v", seedURL, err)
			}
		} else {
			session = s
		}
	}

	rec, err := a.analyze(ctx, prospect, session)
	if err != nil {
		return nil, err
	}
	if rec.BusinessFocus == "" && session != nil && session.Corpus != "" {
		rec.BusinessFocus = a.summarizeFocus(ctx, prospect, session)
	}
	if session != nil {
		rec.PagesCrawled = session.CrawledURLs
	}
	return rec, nil
}

// summarizeFocus is the fallback when analysis returned no business focus
// despite crawled content: a short lite-tier summary keeps the record usable
// for offer matching. Failures leave the focus empty.
func (a *Agent) summarizeFocus(ctx context.Context, prospect types.Prospect, session *Session) string {
	corpus := llm.TruncateForPrompt(session.Corpus, maxSummaryChars)
	prompt, err := prompts.Render("research.json", "summarize-focus", map[string]string{
		"Company":     prospect.Company,
		"PageContent": validation.QuoteForPrompt(corpus, "web page content"),
	})
	if err != nil {
		return ""
	}
	focus, err := a.llm.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		if a.verbose {
			log.Printf("[research] focus summary for %q failed: %v", prospect.Company, err)
		}
		return ""
	}
	return strings.TrimSpace(focus)
}

// analysisPayload is the JSON shape the analysis prompt asks the model for.
type analysisPayload struct {
	Triggers      []triggerPayload `json:"triggers"`
	BusinessFocus string           `json:"business_focus"`
	Services      []string         `json:"services"`
	QualityScore  *float64         `json:"quality_score"`
	Personality   string           `json:"personality"`
}

type triggerPayload struct {
	Type      string `json:"type"`
	Detail    string `json:"detail"`
	Source    string `json:"source"`
	Relevance int    `json:"relevance"`
	Recent    bool   `json:"recent"`
}

func (a *Agent) analyze(ctx context.Context, prospect types.Prospect, session *Session) (*types.ResearchRecord, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("LLM client is required")
	}

	prompt, err := a.buildAnalysisPrompt(prospect, session)
	if err != nil {
		return nil, err
	}

	raw, err := a.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	return payload.toRecord(), nil
}

func (a *Agent) buildAnalysisPrompt(prospect types.Prospect, session *Session) (string, error) {
	pageContent := "No website content was available. Use only the prospect fields above and score low unless they alone support a concrete finding."
	if session != nil && session.Corpus != "" {
		corpus := llm.TruncateForPrompt(session.Corpus, maxCorpusChars)

		check := validation.ScanForInjection(corpus)
		check.Warn("research corpus for " + prospect.Company)
		if !check.Clean {
			corpus = validation.Redact(corpus)
		}

		pageContent = validation.QuoteForPrompt(corpus, "web page content")
	}

	return prompts.Render("research.json", "analyze-prospect", map[string]string{
		"ProspectName": prospect.FullName(),
		"Title":        prospect.Title,
		"Company":      prospect.Company,
		"LinkedInURL":  prospect.LinkedInURL,
		"PageContent":  pageContent,
	})
}

// toRecord converts the raw model payload into a typed record. Triggers
// without a detail are dropped, an unknown personality becomes empty, and a
// missing quality score falls back to the structural heuristic.
func (p *analysisPayload) toRecord() *types.ResearchRecord {
	rec := &types.ResearchRecord{
		BusinessFocus: strings.TrimSpace(p.BusinessFocus),
		Services:      p.Services,
	}

	for _, t := range p.Triggers {
		if strings.TrimSpace(t.Detail) == "" {
			continue
		}
		rec.Triggers = append(rec.Triggers, types.Trigger{
			Type:      t.Type,
			Detail:    t.Detail,
			Source:    t.Source,
			Relevance: min(max(t.Relevance, 0), 10),
			Recent:    t.Recent,
		})
	}

	if pt := types.PersonalityType(strings.ToLower(strings.TrimSpace(p.Personality))); pt.Valid() {
		rec.Personality = pt
	}

	if p.QualityScore != nil {
		rec.QualityScore = min(max(*p.QualityScore, 0), 5)
	} else {
		rec.QualityScore = HeuristicScore(rec)
	}

	return rec
}
