// Package research - score.go derives a structural quality score from a
// research record.
package research

import (
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

// HeuristicScore computes a 0-5 quality score from the structure of a
// research record. It is the fallback when the model omits its own score.
// Five checks contribute one point each:
//
//   - at least two triggers with a real source
//   - at least one trigger with relevance 7 or higher
//   - at least one trigger with a specific, concrete detail
//   - at least one recent trigger with a specific detail
//   - at least one trigger that is both sourced and specific
func HeuristicScore(rec *types.ResearchRecord) float64 {
	if rec == nil {
		return 0
	}

	var sourced, highRelevance, specific, recentSpecific, sourcedSpecific int
	for _, t := range rec.Triggers {
		isSourced := sourcedTrigger(t)
		isSpecific := SpecificDetail(t.Detail)

		if isSourced {
			sourced++
		}
		if t.Relevance >= 7 {
			highRelevance++
		}
		if isSpecific {
			specific++
		}
		if t.Recent && isSpecific {
			recentSpecific++
		}
		if isSourced && isSpecific {
			sourcedSpecific++
		}
	}

	score := 0.0
	if sourced >= 2 {
		score++
	}
	if highRelevance >= 1 {
		score++
	}
	if specific >= 1 {
		score++
	}
	if recentSpecific >= 1 {
		score++
	}
	if sourcedSpecific >= 1 {
		score++
	}
	return score
}

// sourcedTrigger reports whether a trigger cites a real source rather than
// being marked as inferred.
func sourcedTrigger(t types.Trigger) bool {
	source := strings.TrimSpace(t.Source)
	return source != "" && !strings.EqualFold(source, "inferred")
}

// specificTokens mark details that name a concrete point in time. Digits,
// currency, and percentages are checked separately.
var specificTokens = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
	"q1", "q2", "q3", "q4",
	"last month", "this month",
}

// SpecificDetail reports whether a trigger detail names something concrete -
// a number, date, amount, or named period - rather than a generic
// observation like "growing company".
func SpecificDetail(detail string) bool {
	if strings.ContainsAny(detail, "0123456789$%") {
		return true
	}
	lower := strings.ToLower(detail)
	for _, token := range specificTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
