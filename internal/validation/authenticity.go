// Package validation - authenticity.go checks generated outreach messages
// for stock sales phrasing that reads as templated or AI-written.
package validation

import "strings"

// ForbiddenPhrases are phrases that mark an outreach message as inauthentic:
// stock openers, unverifiable claims, and sales-letter closings. Matching is
// case-insensitive substring.
var ForbiddenPhrases = []string{
	// Stock openers and closings
	"i hope this finds you well",
	"i hope this email finds you well",
	"to whom it may concern",
	"best regards",
	"sincerely",
	"yours truly",
	"[your name]",

	// Sales-letter vocabulary
	"cutting-edge",
	"innovative",
	"streamline",
	"leverage synergies",
	"best-in-class",
	"game-changing",

	// Meeting and demo asks
	"brief call to discuss",
	"15-minute demo",
	"explore opportunities",
	"see if there's a fit",

	// Unverifiable claims
	"our client",
	"case study",
	"proven results",
	"track record",
	"time savings",
	"client results",
}

// AuthenticPhrases mark peer-to-peer language: honest context about what the
// sender is building and a natural ask.
var AuthenticPhrases = []string{
	"saw you",
	"came across",
	"noticed",
	"i've been building",
	"been working on",
	"working on",
	"curious what you think",
	"want to see what we built",
	"mind if i show you",
	"worth a quick look",
	"interested in checking it out",
	"want to take a peek",
}

// AuthenticityResult holds the outcome of an authenticity check.
type AuthenticityResult struct {
	IsAuthentic      bool     // no forbidden phrases and at least one authentic one
	ForbiddenMatches []string // forbidden phrases found, in list order
	AuthenticMatches []string // authentic phrases found, in list order
}

// Score summarizes the result as -1, 0 or 1: authentic language counts for
// one, any forbidden phrase counts against one.
func (r *AuthenticityResult) Score() int {
	score := 0
	if len(r.AuthenticMatches) > 0 {
		score++
	}
	if len(r.ForbiddenMatches) > 0 {
		score--
	}
	return score
}

// CheckAuthenticity scans message text for forbidden and authentic phrasing.
// Callers decide what to do with the result; the generation stage treats any
// forbidden match as a hard failure and missing authentic language as
// advisory only.
func CheckAuthenticity(text string) *AuthenticityResult {
	lower := strings.ToLower(text)

	result := &AuthenticityResult{}
	for _, phrase := range ForbiddenPhrases {
		if strings.Contains(lower, phrase) {
			result.ForbiddenMatches = append(result.ForbiddenMatches, phrase)
		}
	}
	for _, phrase := range AuthenticPhrases {
		if strings.Contains(lower, phrase) {
			result.AuthenticMatches = append(result.AuthenticMatches, phrase)
		}
	}

	result.IsAuthentic = len(result.ForbiddenMatches) == 0 && len(result.AuthenticMatches) > 0
	return result
}
