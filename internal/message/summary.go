package message

import (
	"fmt"
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

// builtinOfferLabels shorten the stock catalog names for the outcome log.
// Offers outside the stock catalog log under their own name.
var builtinOfferLabels = map[string]string{
	"rhyka mrp":           "MRP optimization",
	"ai consulting":       "AI automation tools",
	"govcon optimization": "government contract optimization",
	"steward voting ai":   "voting analysis AI",
}

const (
	maxSummaryLength = 60
	maxFocusSegment  = 30
)

// OfferSummary renders the one-line "what they do - what we offered" note
// attached to every logged outcome.
func OfferSummary(rec *types.ResearchRecord, offer *types.OfferSelection) string {
	focus := "business services"
	if rec != nil {
		if s := strings.TrimSpace(rec.ServicesSummary()); s != "" {
			focus = clip(s, maxFocusSegment)
		} else if s := strings.TrimSpace(rec.BusinessFocus); s != "" {
			focus = clip(s, maxFocusSegment)
		}
	}

	offered := "AI automation tools"
	if offer != nil && offer.Offer.Name != "" {
		if label, ok := builtinOfferLabels[strings.ToLower(offer.Offer.Name)]; ok {
			offered = label
		} else {
			offered = offer.Offer.Name
		}
	}

	summary := fmt.Sprintf("%s - offered %s", focus, offered)
	if len(summary) > maxSummaryLength {
		summary = summary[:maxSummaryLength-3] + "..."
	}
	return summary
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
