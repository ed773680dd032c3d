// Package types provides type definitions for structured data used throughout the outreach-agent system.
package types

import "strings"

// PersonalityType classifies how a prospect is likely to read cold outreach,
// which drives strategy selection downstream.
type PersonalityType string

// Recognized personality classifications.
const (
	PersonalityTechnicalOperator PersonalityType = "technical_operator"
	PersonalityGrowthLead        PersonalityType = "growth_lead"
	PersonalityCorporateExec     PersonalityType = "corporate_exec"
	PersonalityStartupFounder    PersonalityType = "startup_founder"
	PersonalitySalesProfessional PersonalityType = "sales_professional"
)

// AllPersonalityTypes returns every recognized personality classification.
func AllPersonalityTypes() []PersonalityType {
	return []PersonalityType{
		PersonalityTechnicalOperator,
		PersonalityGrowthLead,
		PersonalityCorporateExec,
		PersonalityStartupFounder,
		PersonalitySalesProfessional,
	}
}

// Valid reports whether the value is a recognized personality type.
func (p PersonalityType) Valid() bool {
	for _, known := range AllPersonalityTypes() {
		if p == known {
			return true
		}
	}
	return false
}

// Trigger is a single concrete research finding: something observed about the
// prospect or their company that outreach can hook onto.
type Trigger struct {
	Type      string `json:"type"`             // hiring, funding, launch, press, pain_point, other
	Detail    string `json:"detail"`           // the finding itself
	Source    string `json:"source,omitempty"` // URL or "inferred"
	Relevance int    `json:"relevance"`        // 1-10
	Recent    bool   `json:"recent"`           // within roughly the last quarter
}

// ResearchRecord is the research stage's artifact for one prospect. It is
// owned by the orchestrator for the lifetime of a single run and persisted
// only inside the terminal Outcome.
type ResearchRecord struct {
	Triggers      []Trigger       `json:"triggers,omitempty"`
	BusinessFocus string          `json:"business_focus,omitempty"`
	Services      []string        `json:"services,omitempty"`
	QualityScore  float64         `json:"quality_score"` // 0-5
	Personality   PersonalityType `json:"personality,omitempty"`
	PagesCrawled  []string        `json:"pages_crawled,omitempty"`
}

// HasConcreteFinding reports whether the record contains anything beyond
// boilerplate: at least one trigger, or an identified business focus.
func (r *ResearchRecord) HasConcreteFinding() bool {
	if r == nil {
		return false
	}
	return len(r.Triggers) > 0 || strings.TrimSpace(r.BusinessFocus) != ""
}

// TriggerDetails joins trigger details into a single string for the outcome log.
func (r *ResearchRecord) TriggerDetails() string {
	if r == nil || len(r.Triggers) == 0 {
		return ""
	}
	details := make([]string, 0, len(r.Triggers))
	for _, t := range r.Triggers {
		if strings.TrimSpace(t.Detail) != "" {
			details = append(details, t.Detail)
		}
	}
	return strings.Join(details, "; ")
}

// ServicesSummary joins the identified services for the outcome log.
func (r *ResearchRecord) ServicesSummary() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Services, ", ")
}
