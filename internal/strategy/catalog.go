// Package strategy chooses the outreach template for a prospect from a
// fixed catalog of ten community-proven cold-email strategies. The model
// picks first; a personality preference table backs every unusable pick, so
// selection never fails while the catalog is non-empty.
package strategy

import (
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

// DefaultCatalog returns the built-in strategy catalog. Success rates are
// observed reply rates and only their ordering matters: they break ties
// when no personality preference applies.
func DefaultCatalog() []types.Strategy {
	return []types.Strategy{
		{
			ID:          "short_tailored_value",
			Description: "Two or three sentences tying one concrete finding to a specific value claim, then a soft ask.",
			BestFor: []types.PersonalityType{
				types.PersonalityCorporateExec,
				types.PersonalityTechnicalOperator,
				types.PersonalityGrowthLead,
			},
			SuccessRate: 0.14,
		},
		{
			ID:          "straight_shooter",
			Description: "State who you are, what you built, and why it is relevant, in plain words with zero fluff.",
			BestFor: []types.PersonalityType{
				types.PersonalityTechnicalOperator,
				types.PersonalityStartupFounder,
			},
			SuccessRate: 0.13,
		},
		{
			ID:          "hyper_personalized",
			Description: "Build the entire message around one fresh, verifiable finding. Only works when the research has a recent sourced trigger.",
			SuccessRate: 0.12,
		},
		{
			ID:          "give_value_first",
			Description: "Offer a useful observation or resource up front with no strings attached.",
			BestFor: []types.PersonalityType{
				types.PersonalityGrowthLead,
				types.PersonalityStartupFounder,
			},
			SuccessRate: 0.11,
		},
		{
			ID:          "pain_agitate_solution",
			Description: "Name the pain the research surfaced, sharpen why it hurts, then position the offering as the way out.",
			BestFor: []types.PersonalityType{
				types.PersonalityStartupFounder,
			},
			SuccessRate: 0.10,
		},
		{
			ID:          "social_proof_case_study",
			Description: "Lead with a specific, comparable result another company got before making the ask.",
			BestFor: []types.PersonalityType{
				types.PersonalityGrowthLead,
				types.PersonalityCorporateExec,
			},
			SuccessRate: 0.09,
		},
		{
			ID:          "who_should_i_talk_to",
			Description: "Ask to be pointed at the owner of the problem instead of pitching the recipient directly.",
			BestFor: []types.PersonalityType{
				types.PersonalitySalesProfessional,
			},
			SuccessRate: 0.08,
		},
		{
			ID:          "bullet_point_benefits",
			Description: "Two or three scannable bullets of concrete benefits, for readers who skim.",
			BestFor: []types.PersonalityType{
				types.PersonalityTechnicalOperator,
				types.PersonalityCorporateExec,
			},
			SuccessRate: 0.07,
		},
		{
			ID:          "two_email_qualifier",
			Description: "A short first touch that only qualifies interest and holds the details for the reply.",
			BestFor: []types.PersonalityType{
				types.PersonalitySalesProfessional,
			},
			SuccessRate: 0.06,
		},
		{
			ID:          "humor_pattern_interrupt",
			Description: "Open with a light, unexpected line to break the cold-email pattern before the pitch.",
			BestFor: []types.PersonalityType{
				types.PersonalityStartupFounder,
			},
			SuccessRate: 0.05,
		},
	}
}

// preferences ranks strategy IDs per personality. The first entry is the
// profile's default pick; later entries back it when a trimmed catalog
// omits the default. humor_pattern_interrupt is deliberately absent from
// corporate_exec.
var preferences = map[types.PersonalityType][]string{
	types.PersonalityTechnicalOperator: {"straight_shooter", "bullet_point_benefits", "short_tailored_value"},
	types.PersonalityGrowthLead:        {"give_value_first", "social_proof_case_study", "short_tailored_value"},
	types.PersonalityCorporateExec:     {"short_tailored_value", "social_proof_case_study", "bullet_point_benefits"},
	types.PersonalityStartupFounder:    {"pain_agitate_solution", "straight_shooter", "give_value_first"},
	types.PersonalitySalesProfessional: {"who_should_i_talk_to", "two_email_qualifier", "short_tailored_value"},
}

// Find returns the catalog entry with the given ID, matched
// case-insensitively.
func Find(catalog []types.Strategy, id string) (types.Strategy, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Strategy{}, false
	}
	for _, s := range catalog {
		if strings.EqualFold(s.ID, id) {
			return s, true
		}
	}
	return types.Strategy{}, false
}

// preferenceOrder returns the ranked strategy IDs for a personality.
// Unknown or empty personalities read like risk-averse executives, so they
// get the corporate_exec ranking.
func preferenceOrder(personality types.PersonalityType) []string {
	if order, ok := preferences[personality]; ok {
		return order
	}
	return preferences[types.PersonalityCorporateExec]
}
