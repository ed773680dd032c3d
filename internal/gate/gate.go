// Package gate decides whether a researched prospect proceeds through the
// pipeline. Evaluation is a pure function of the research record, so gate
// behavior is fully testable with synthetic records.
package gate

import (
	"github.com/jonathan/outreach-agent/internal/types"
)

// Skip reasons surfaced on outcomes.
const (
	// ReasonLowQuality is used when the research score is below the
	// configured minimum.
	ReasonLowQuality = "insufficient research quality"
	// ReasonNoFindings is used when research produced nothing concrete to
	// personalize on.
	ReasonNoFindings = "no concrete research findings"
)

// Decision is the gate's verdict for one prospect.
type Decision struct {
	Pass   bool
	Reason string // empty when Pass
}

// Evaluate checks a research record against the minimum quality score.
// A record with no concrete finding is rejected regardless of score; a
// record scoring below minScore is rejected; a score exactly at the
// threshold passes.
func Evaluate(rec *types.ResearchRecord, minScore float64) Decision {
	if !rec.HasConcreteFinding() {
		return Decision{Reason: ReasonNoFindings}
	}
	if rec.QualityScore < minScore {
		return Decision{Reason: ReasonLowQuality}
	}
	return Decision{Pass: true}
}
