package offers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/types"
)

// Agent picks offerings for prospects. It asks the model for the match and
// falls back to the keyword scorer when the response is unusable. Implements
// pipeline.OfferMatcher.
type Agent struct {
	llm     llm.Client
	catalog *Catalog
	verbose bool
}

// Options configures the offer matching agent.
type Options struct {
	// LLM ranks the catalog against the research record. A nil client
	// skips straight to the keyword scorer.
	LLM llm.Client

	// Catalog holds the offerings to match against. Callers load it via
	// LoadCatalog so a config override is honored.
	Catalog *Catalog

	Verbose bool
}

// New creates an offer matching agent.
func New(opts Options) *Agent {
	return &Agent{
		llm:     opts.LLM,
		catalog: opts.Catalog,
		verbose: opts.Verbose,
	}
}

// matchPayload mirrors the JSON shape the matching prompt requests.
type matchPayload struct {
	OfferName       string   `json:"offer_name"`
	Rationale       string   `json:"rationale"`
	MatchedKeywords []string `json:"matched_keywords"`
	Relevance       float64  `json:"relevance"`
}

// Match selects the best-fitting offering for a researched prospect.
// Returns *types.NoMatchError when nothing in the catalog clears the
// relevance floor, or when the model explicitly reports no fit.
func (a *Agent) Match(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord) (*types.OfferSelection, error) {
	if a.catalog == nil || len(a.catalog.Offers) == 0 {
		return nil, &types.NoMatchError{Detail: "offer catalog is empty"}
	}

	if a.llm != nil {
		selection, err := a.matchWithLLM(ctx, prospect, rec)
		if err == nil {
			return applyFloor(selection)
		}
		var noMatch *types.NoMatchError
		if errors.As(err, &noMatch) {
			return nil, err
		}
		if a.verbose {
			fmt.Printf("[offers] falling back to keyword scorer: %v\n", err)
		}
	}

	return a.matchWithKeywords(rec)
}

func (a *Agent) matchWithLLM(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord) (*types.OfferSelection, error) {
	prompt, err := a.buildMatchPrompt(prospect, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to build match prompt: %w", err)
	}

	raw, err := a.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("offer matching failed: %w", err)
	}

	var payload matchPayload
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse offer match response: %w", err)
	}

	// An empty offer_name is the model's explicit judgment that nothing
	// fits, not a degraded response, so it does not trigger the fallback.
	if strings.TrimSpace(payload.OfferName) == "" {
		detail := strings.TrimSpace(payload.Rationale)
		if detail == "" {
			detail = "no offering fits the research findings"
		}
		return nil, &types.NoMatchError{Detail: detail}
	}

	offer, ok := a.catalog.Find(payload.OfferName)
	if !ok {
		return nil, fmt.Errorf("model picked %q, which is not in the catalog", payload.OfferName)
	}

	relevance := min(max(payload.Relevance, 0), 1)
	matched := payload.MatchedKeywords
	if relevance == 0 || len(matched) == 0 {
		// The keyword scorer backs a pick the model left unquantified.
		scored, keywordMatched := ScoreOffer(offer, rec)
		if relevance == 0 {
			relevance = scored
		}
		if len(matched) == 0 {
			matched = keywordMatched
		}
	}

	if a.verbose {
		fmt.Printf("[offers] model matched %s (relevance %.2f)\n", offer.Name, relevance)
	}

	return &types.OfferSelection{
		Offer:           offer,
		Rationale:       strings.TrimSpace(payload.Rationale),
		MatchedKeywords: matched,
		Relevance:       relevance,
	}, nil
}

// matchWithKeywords is the deterministic path: rank the whole catalog and
// take the top entry if it clears the floor.
func (a *Agent) matchWithKeywords(rec *types.ResearchRecord) (*types.OfferSelection, error) {
	ranked := RankOffers(a.catalog, rec)
	top := ranked[0]
	if top.Relevance < MinRelevance {
		return nil, &types.NoMatchError{
			Detail: fmt.Sprintf("best offering %q scored %.2f, below the %.2f floor", top.Offer.Name, top.Relevance, MinRelevance),
		}
	}

	if a.verbose {
		fmt.Printf("[offers] keyword scorer matched %s (relevance %.2f)\n", top.Offer.Name, top.Relevance)
	}

	return &types.OfferSelection{
		Offer:           top.Offer,
		Rationale:       fmt.Sprintf("keyword overlap on %s", strings.Join(top.MatchedKeywords, ", ")),
		MatchedKeywords: top.MatchedKeywords,
		Relevance:       top.Relevance,
	}, nil
}

func applyFloor(selection *types.OfferSelection) (*types.OfferSelection, error) {
	if selection.Relevance < MinRelevance {
		return nil, &types.NoMatchError{
			Detail: fmt.Sprintf("%q scored %.2f, below the %.2f floor", selection.Offer.Name, selection.Relevance, MinRelevance),
		}
	}
	return selection, nil
}

func (a *Agent) buildMatchPrompt(prospect types.Prospect, rec *types.ResearchRecord) (string, error) {
	focus := "unknown"
	services := "(none listed)"
	triggers := "(none)"

	if rec != nil {
		if strings.TrimSpace(rec.BusinessFocus) != "" {
			focus = rec.BusinessFocus
		}
		if s := rec.ServicesSummary(); s != "" {
			services = s
		}
		if len(rec.Triggers) > 0 {
			lines := make([]string, 0, len(rec.Triggers))
			for _, t := range rec.Triggers {
				kind := t.Type
				if kind == "" {
					kind = "other"
				}
				source := t.Source
				if source == "" {
					source = "inferred"
				}
				lines = append(lines, fmt.Sprintf("- [%s] %s (source: %s, relevance %d/10)", kind, t.Detail, source, t.Relevance))
			}
			triggers = strings.Join(lines, "\n")
		}
	}

	return prompts.Render("offers.json", "match-offer", map[string]string{
		"Company":       prospect.Company,
		"BusinessFocus": focus,
		"Services":      services,
		"Triggers":      triggers,
		"Catalog":       a.catalog.PromptBlock(),
	})
}
