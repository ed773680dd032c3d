// Package types provides type definitions for structured data used throughout the outreach-agent system.
package types

// OutreachMessage is the final artifact before delivery: the drafted email
// plus a short summary of what was offered, kept for the outcome log.
type OutreachMessage struct {
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	CTAUsed      string `json:"cta_used,omitempty"`
	OfferSummary string `json:"offer_summary,omitempty"` // "what they do - offered X"
}
