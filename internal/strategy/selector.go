package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/types"
)

// hyperPersonalizedID is special-cased: its precondition on recent sourced
// research is enforced in code, not just in the prompt.
const hyperPersonalizedID = "hyper_personalized"

// Agent chooses strategies for prospects. It asks the model first and falls
// back to the personality preference table when the pick is unusable.
// Implements pipeline.StrategySelector.
type Agent struct {
	llm     llm.Client
	catalog []types.Strategy
	verbose bool
}

// Options configures the strategy selection agent.
type Options struct {
	// LLM picks from the catalog. A nil client skips straight to the
	// preference table.
	LLM llm.Client

	// Catalog overrides the built-in strategy catalog. Leave nil for
	// DefaultCatalog.
	Catalog []types.Strategy

	Verbose bool
}

// New creates a strategy selection agent.
func New(opts Options) *Agent {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Agent{
		llm:     opts.LLM,
		catalog: catalog,
		verbose: opts.Verbose,
	}
}

// selectPayload mirrors the JSON shape the selection prompt requests.
type selectPayload struct {
	StrategyID string `json:"strategy_id"`
	Rationale  string `json:"rationale"`
}

// Select chooses an outreach strategy for the prospect. It only returns
// *types.NoMatchError when the catalog is empty; any usable catalog
// yields a selection because the preference table backs every model miss.
func (a *Agent) Select(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection) (*types.StrategySelection, error) {
	if len(a.catalog) == 0 {
		return nil, &types.NoMatchError{Detail: "strategy catalog is empty"}
	}

	var personality types.PersonalityType
	if rec != nil && rec.Personality.Valid() {
		personality = rec.Personality
	}

	if a.llm != nil {
		selection, err := a.selectWithLLM(ctx, prospect, rec, offer, personality)
		if err == nil {
			return selection, nil
		}
		if a.verbose {
			fmt.Printf("[strategy] falling back to preference table: %v\n", err)
		}
	}

	return a.selectByPreference(personality), nil
}

func (a *Agent) selectWithLLM(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection, personality types.PersonalityType) (*types.StrategySelection, error) {
	prompt, err := a.buildSelectPrompt(prospect, rec, offer, personality)
	if err != nil {
		return nil, fmt.Errorf("failed to build selection prompt: %w", err)
	}

	raw, err := a.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("strategy selection failed: %w", err)
	}

	var payload selectPayload
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse strategy selection response: %w", err)
	}

	picked, ok := Find(a.catalog, payload.StrategyID)
	if !ok {
		return nil, fmt.Errorf("model picked %q, which is not in the catalog", payload.StrategyID)
	}

	if picked.ID == hyperPersonalizedID && !hasRecentSourcedTrigger(rec) {
		return nil, fmt.Errorf("model picked %s without a recent sourced trigger", hyperPersonalizedID)
	}

	if a.verbose {
		fmt.Printf("[strategy] model picked %s\n", picked.ID)
	}

	return &types.StrategySelection{
		StrategyID:  picked.ID,
		Rationale:   strings.TrimSpace(payload.Rationale),
		Personality: personality,
	}, nil
}

// selectByPreference walks the personality's ranking and takes the first
// strategy present in the catalog, then falls back to the best observed
// reply rate.
func (a *Agent) selectByPreference(personality types.PersonalityType) *types.StrategySelection {
	for _, id := range preferenceOrder(personality) {
		picked, ok := Find(a.catalog, id)
		if !ok {
			continue
		}
		label := string(personality)
		if label == "" {
			label = "default"
		}
		return &types.StrategySelection{
			StrategyID:  picked.ID,
			Rationale:   fmt.Sprintf("selected %s from the %s preference ranking", picked.ID, label),
			Personality: personality,
		}
	}

	best := a.catalog[0]
	for _, s := range a.catalog[1:] {
		if s.SuccessRate > best.SuccessRate {
			best = s
		}
	}
	return &types.StrategySelection{
		StrategyID:  best.ID,
		Rationale:   fmt.Sprintf("selected %s as the highest success rate fallback", best.ID),
		Personality: personality,
	}
}

func (a *Agent) buildSelectPrompt(prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection, personality types.PersonalityType) (string, error) {
	profile := "unknown"
	if personality != "" {
		profile = string(personality)
	}

	score := 0.0
	triggers := "(none)"
	if rec != nil {
		score = rec.QualityScore
		if len(rec.Triggers) > 0 {
			lines := make([]string, 0, len(rec.Triggers))
			for _, t := range rec.Triggers {
				line := "- " + t.Detail
				var notes []string
				if t.Recent {
					notes = append(notes, "recent")
				}
				if sourced(t) {
					notes = append(notes, "sourced")
				}
				if len(notes) > 0 {
					line += " (" + strings.Join(notes, ", ") + ")"
				}
				lines = append(lines, line)
			}
			triggers = strings.Join(lines, "\n")
		}
	}

	offerName := "none"
	if offer != nil && offer.Offer.Name != "" {
		offerName = offer.Offer.Name
	}

	return prompts.Render("strategy.json", "select-strategy", map[string]string{
		"ProspectName": prospect.DisplayLabel(),
		"Title":        valueOr(prospect.Title, "unknown"),
		"Company":      valueOr(prospect.Company, "unknown"),
		"Personality":  profile,
		"QualityScore": fmt.Sprintf("%.1f", score),
		"OfferName":    offerName,
		"Triggers":     triggers,
		"Strategies":   renderStrategies(a.catalog),
	})
}

// renderStrategies renders the catalog for the selection prompt using the
// same IDs Find accepts.
func renderStrategies(catalog []types.Strategy) string {
	lines := make([]string, 0, len(catalog))
	for _, s := range catalog {
		line := fmt.Sprintf("- %s: %s", s.ID, s.Description)
		if len(s.BestFor) > 0 {
			names := make([]string, 0, len(s.BestFor))
			for _, p := range s.BestFor {
				names = append(names, string(p))
			}
			line += fmt.Sprintf(" (best for: %s)", strings.Join(names, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// sourced reports whether a trigger cites a concrete source rather than
// model inference.
func sourced(t types.Trigger) bool {
	source := strings.TrimSpace(t.Source)
	return source != "" && !strings.EqualFold(source, "inferred")
}

func hasRecentSourcedTrigger(rec *types.ResearchRecord) bool {
	if rec == nil {
		return false
	}
	for _, t := range rec.Triggers {
		if t.Recent && sourced(t) {
			return true
		}
	}
	return false
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
