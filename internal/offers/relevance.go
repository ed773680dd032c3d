package offers

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	// Scoring weights for offer relevance
	weightFocusOverlap    = 0.45
	weightServicesOverlap = 0.30
	weightTriggerOverlap  = 0.25

	// MinRelevance is the floor below which the match is reported as no
	// match. One best_for keyword grazing the business focus scores
	// around 0.11, so clearing the floor takes either two focus hits or
	// hits across more than one field.
	MinRelevance = 0.2

	// minStemLength keeps suffix trimming away from short keywords where
	// the remaining stem would match unrelated words.
	minStemLength = 5
)

// ScoredOffer is one catalog entry with its computed relevance.
type ScoredOffer struct {
	Offer           types.Offer
	Relevance       float64
	MatchedKeywords []string
	Components      ScoreComponents
}

// ScoreComponents holds the individual relevance factors.
type ScoreComponents struct {
	FocusOverlap    float64
	ServicesOverlap float64
	TriggerOverlap  float64
}

// ScoreOffer calculates the keyword relevance of a single offer for a
// research record. Returns the score (0-1) and the best_for keywords that
// matched anywhere in the record.
func ScoreOffer(offer types.Offer, rec *types.ResearchRecord) (float64, []string) {
	components, matched := calculateScoreComponents(offer, rec)
	return calculateFinalScore(components), matched
}

// RankOffers scores every catalog entry and returns them sorted by
// relevance, highest first. Ties keep catalog order.
func RankOffers(catalog *Catalog, rec *types.ResearchRecord) []ScoredOffer {
	if catalog == nil || len(catalog.Offers) == 0 {
		return []ScoredOffer{}
	}

	scored := make([]ScoredOffer, 0, len(catalog.Offers))
	for _, offer := range catalog.Offers {
		components, matched := calculateScoreComponents(offer, rec)
		scored = append(scored, ScoredOffer{
			Offer:           offer,
			Relevance:       calculateFinalScore(components),
			MatchedKeywords: matched,
			Components:      components,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})

	return scored
}

// calculateScoreComponents computes per-field keyword overlap for one offer.
func calculateScoreComponents(offer types.Offer, rec *types.ResearchRecord) (ScoreComponents, []string) {
	if rec == nil || len(offer.BestFor) == 0 {
		return ScoreComponents{}, nil
	}

	focusText := strings.ToLower(rec.BusinessFocus)
	servicesText := strings.ToLower(strings.Join(rec.Services, " "))
	triggerText := strings.ToLower(triggerSummary(rec))

	focusHits := 0
	servicesHits := 0
	triggerHits := 0
	matched := make([]string, 0, len(offer.BestFor))

	for _, keyword := range offer.BestFor {
		inFocus := keywordMatches(keyword, focusText)
		inServices := keywordMatches(keyword, servicesText)
		inTriggers := keywordMatches(keyword, triggerText)

		if inFocus {
			focusHits++
		}
		if inServices {
			servicesHits++
		}
		if inTriggers {
			triggerHits++
		}
		if inFocus || inServices || inTriggers {
			matched = append(matched, keyword)
		}
	}

	total := float64(len(offer.BestFor))
	return ScoreComponents{
		FocusOverlap:    float64(focusHits) / total,
		ServicesOverlap: float64(servicesHits) / total,
		TriggerOverlap:  float64(triggerHits) / total,
	}, matched
}

// calculateFinalScore combines the components using a weighted average.
func calculateFinalScore(components ScoreComponents) float64 {
	return components.FocusOverlap*weightFocusOverlap +
		components.ServicesOverlap*weightServicesOverlap +
		components.TriggerOverlap*weightTriggerOverlap
}

// triggerSummary joins trigger types and details into one searchable string.
func triggerSummary(rec *types.ResearchRecord) string {
	if len(rec.Triggers) == 0 {
		return ""
	}
	parts := make([]string, 0, len(rec.Triggers)*2)
	for _, t := range rec.Triggers {
		if t.Type != "" {
			parts = append(parts, t.Type)
		}
		if t.Detail != "" {
			parts = append(parts, t.Detail)
		}
	}
	return strings.Join(parts, " ")
}

// keywordMatches reports whether a catalog keyword appears in the text,
// which must already be lowercased. Short keywords like "ai" must match a
// whole token; longer keywords match by substring, with a trimmed stem so
// "manufacturing" still hits "manufacturers".
func keywordMatches(keyword, text string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" || text == "" {
		return false
	}

	if len(keyword) < 4 {
		for _, token := range tokenize(text) {
			if token == keyword {
				return true
			}
		}
		return false
	}

	if strings.Contains(text, keyword) {
		return true
	}
	stem := stemKeyword(keyword)
	return stem != keyword && strings.Contains(text, stem)
}

// stemKeyword trims common English suffixes so close word forms match.
func stemKeyword(keyword string) string {
	for _, suffix := range []string{"ing", "es", "s"} {
		trimmed, ok := strings.CutSuffix(keyword, suffix)
		if ok && len(trimmed) >= minStemLength {
			return trimmed
		}
	}
	return keyword
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
