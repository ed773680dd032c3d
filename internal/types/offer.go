// Package types provides type definitions for structured data used throughout the outreach-agent system.
package types

// Offer is one entry in the service offering catalog.
type Offer struct {
	Name        string   `json:"name" validate:"required,min=1"`
	Description string   `json:"description" validate:"required,min=1"`
	BestFor     []string `json:"best_for" validate:"required,min=1,dive,min=1"`
	CTA         string   `json:"cta,omitempty"`
}

// Validate validates a catalog entry using the validator.
func (o *Offer) Validate() error {
	return validate.Struct(o)
}

// OfferSelection is the offer-matching stage's artifact: the chosen offering
// plus the rationale and keywords that matched it. At most one per prospect
// per run.
type OfferSelection struct {
	Offer           Offer    `json:"offer"`
	Rationale       string   `json:"rationale,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	Relevance       float64  `json:"relevance"` // 0.0-1.0
}
