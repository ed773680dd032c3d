// Package message generates the outreach email for a researched prospect.
// A creative model pass drafts the email and an authenticity check rejects
// templated sales phrasing, with one revision attempt before the stage
// fails. When the model is unavailable or returns an unusable draft, a
// deterministic three-line template takes over.
package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/schemas"
	"github.com/jonathan/outreach-agent/internal/strategy"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/jonathan/outreach-agent/internal/validation"
)

// AuthenticityError reports a draft that still contains forbidden phrasing
// after the revision pass. It fails the generation stage outright.
type AuthenticityError struct {
	Phrases []string
}

func (e *AuthenticityError) Error() string {
	return fmt.Sprintf("authenticity check failed: forbidden phrasing %q", strings.Join(e.Phrases, ", "))
}

// Agent writes outreach messages.
type Agent struct {
	llm        llm.Client
	sender     config.SenderIdentity
	strategies []types.Strategy
	verbose    bool
}

// Options configures a message Agent.
type Options struct {
	// LLM drafts the message. Nil skips straight to the template.
	LLM llm.Client
	// Sender identifies who the message is from; it feeds the prompt and
	// the signature block.
	Sender config.SenderIdentity
	// Strategies resolves strategy descriptions for the prompt. Nil uses
	// the default catalog.
	Strategies []types.Strategy
	// Verbose enables progress logging.
	Verbose bool
}

// New creates a message Agent.
func New(opts Options) *Agent {
	strategies := opts.Strategies
	if strategies == nil {
		strategies = strategy.DefaultCatalog()
	}
	return &Agent{
		llm:        opts.LLM,
		sender:     opts.Sender,
		strategies: strategies,
		verbose:    opts.Verbose,
	}
}

// draftPayload is the JSON shape the model returns.
type draftPayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	CTAUsed string `json:"cta_used"`
}

func (p *draftPayload) toMessage(fallbackCTA string) *types.OutreachMessage {
	cta := strings.TrimSpace(p.CTAUsed)
	if cta == "" {
		cta = fallbackCTA
	}
	return &types.OutreachMessage{
		Subject: strings.TrimSpace(p.Subject),
		Body:    strings.TrimSpace(p.Body),
		CTAUsed: cta,
	}
}

// Generate writes the outreach message for a prospect. A draft that keeps
// forbidden phrasing through the revision pass fails the stage; any other
// model problem falls back to the deterministic template.
func (a *Agent) Generate(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection, sel *types.StrategySelection) (*types.OutreachMessage, error) {
	var msg *types.OutreachMessage
	if a.llm != nil {
		draft, err := a.generateWithLLM(ctx, prospect, rec, offer, sel)
		var authErr *AuthenticityError
		switch {
		case err == nil:
			msg = draft
		case errors.As(err, &authErr):
			return nil, err
		default:
			if a.verbose {
				fmt.Printf("[message] falling back to template: %v\n", err)
			}
		}
	}
	if msg == nil {
		msg = a.templateMessage(prospect, rec, offer)
	}

	msg.Body = appendSignature(msg.Body, a.sender)
	msg.OfferSummary = OfferSummary(rec, offer)
	return msg, nil
}

func (a *Agent) generateWithLLM(ctx context.Context, prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection, sel *types.StrategySelection) (*types.OutreachMessage, error) {
	prompt, err := a.buildGeneratePrompt(prospect, rec, offer, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to build message prompt: %w", err)
	}

	draft, err := a.draftMessage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	check := validation.CheckAuthenticity(draft.Subject + "\n" + draft.Body)
	if len(check.ForbiddenMatches) > 0 {
		draft, err = a.reviseDraft(ctx, draft, check.ForbiddenMatches)
		if err != nil {
			return nil, err
		}
		check = validation.CheckAuthenticity(draft.Subject + "\n" + draft.Body)
		if len(check.ForbiddenMatches) > 0 {
			return nil, &AuthenticityError{Phrases: check.ForbiddenMatches}
		}
	}
	if a.verbose && !check.IsAuthentic {
		// No forbidden phrasing, but nothing that reads peer-to-peer either.
		fmt.Printf("[message] draft carries no peer-style language\n")
	}

	return draft.toMessage(offerCTA(offer)), nil
}

// reviseDraft sends the draft back with the failed phrases and asks for a
// rewrite on the same strategy and offering.
func (a *Agent) reviseDraft(ctx context.Context, draft *draftPayload, phrases []string) (*draftPayload, error) {
	if a.verbose {
		fmt.Printf("[message] revising draft, forbidden phrasing: %s\n", strings.Join(phrases, ", "))
	}

	prompt, err := prompts.Render("message.json", "revise-message", map[string]string{
		"Failure": fmt.Sprintf("forbidden phrasing: %s", strings.Join(phrases, ", ")),
		"Subject": draft.Subject,
		"Body":    draft.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build revision prompt: %w", err)
	}
	return a.draftMessage(ctx, prompt)
}

// draftMessage runs one model pass and validates the returned JSON shape.
func (a *Agent) draftMessage(ctx context.Context, prompt string) (*draftPayload, error) {
	raw, err := a.llm.GenerateCreativeJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("message generation failed: %w", err)
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.OutreachMessageSchema, cleaned); err != nil {
		return nil, fmt.Errorf("generated message failed validation: %w", err)
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse message response: %w", err)
	}
	return &payload, nil
}

func (a *Agent) buildGeneratePrompt(prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection, sel *types.StrategySelection) (string, error) {
	strategyID := ""
	if sel != nil {
		strategyID = sel.StrategyID
	}
	strategyDesc := ""
	if s, ok := strategy.Find(a.strategies, strategyID); ok {
		strategyDesc = s.Description
	}

	offerName, offerDesc := "unknown", ""
	if offer != nil {
		offerName = offer.Offer.Name
		offerDesc = offer.Offer.Description
	}

	businessFocus := ""
	var triggerLines []string
	if rec != nil {
		businessFocus = rec.BusinessFocus
		for _, t := range rec.Triggers {
			line := "- " + t.Detail
			if t.Recent {
				line += " (recent)"
			}
			triggerLines = append(triggerLines, line)
		}
	}
	triggers := "- (none)"
	if len(triggerLines) > 0 {
		triggers = strings.Join(triggerLines, "\n")
	}

	return prompts.Render("message.json", "generate-message", map[string]string{
		"SenderName":          valueOr(a.sender.Name, "the sender"),
		"SenderTitle":         valueOr(a.sender.Title, "unknown"),
		"SenderCompany":       valueOr(a.sender.Company, "unknown"),
		"ProspectName":        prospect.FullName(),
		"Title":               valueOr(prospect.Title, "unknown"),
		"Company":             valueOr(prospect.Company, "unknown"),
		"StrategyID":          valueOr(strategyID, "short_tailored_value"),
		"StrategyDescription": strategyDesc,
		"OfferName":           offerName,
		"OfferDescription":    offerDesc,
		"CTA":                 offerCTA(offer),
		"Triggers":            triggers,
		"BusinessFocus":       valueOr(businessFocus, "unknown"),
	})
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
