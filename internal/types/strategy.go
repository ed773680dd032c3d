// Package types provides type definitions for structured data used throughout the outreach-agent system.
package types

// Strategy describes one outreach template in the strategy catalog.
type Strategy struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	BestFor     []PersonalityType `json:"best_for,omitempty"`
	SuccessRate float64           `json:"success_rate,omitempty"` // observed reply rate, 0-1
}

// StrategySelection is the strategy-selection stage's artifact: the chosen
// template identifier plus the metadata the message stage needs.
type StrategySelection struct {
	StrategyID  string          `json:"strategy_id"`
	Rationale   string          `json:"rationale,omitempty"`
	Personality PersonalityType `json:"personality,omitempty"`
}
