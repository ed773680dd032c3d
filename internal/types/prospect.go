// Package types provides type definitions for structured data used throughout the outreach-agent system.
package types

import (
	"fmt"
	"strings"
)

// Prospect represents a single outreach target: the contact plus whatever
// company context the input row carried. Prospects are immutable once
// constructed; pipeline stages read them but never write back.
type Prospect struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email" validate:"required,email"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty" validate:"omitempty,url"`
	LinkedInURL string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	Phone       string `json:"phone,omitempty"`
}

// Validate checks eligibility for processing: a well-formed email address plus
// enough identity (first+last name, or a company) to personalize a message.
func (p *Prospect) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if !p.hasName() && p.Company == "" {
		return fmt.Errorf("prospect %s has neither a full name nor a company", p.Email)
	}
	return nil
}

func (p *Prospect) hasName() bool {
	return strings.TrimSpace(p.FirstName) != "" && strings.TrimSpace(p.LastName) != ""
}

// FullName returns the prospect's display name, falling back to whichever
// name part is present.
func (p *Prospect) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// DisplayLabel returns a short human-readable identifier for logs and console
// output: name when available, otherwise company, otherwise email.
func (p *Prospect) DisplayLabel() string {
	if name := p.FullName(); name != "" {
		return name
	}
	if p.Company != "" {
		return p.Company
	}
	return p.Email
}
