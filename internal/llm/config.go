// Package llm provides centralized LLM configuration and client abstractions.
// This package enables easy switching between model tiers.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction, keyword matching
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: research analysis, structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: message drafting, strategy selection
	TierAdvanced ModelTier = "advanced"
)

// Config maps each tier to a concrete model name.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model configured for tier. An unknown or unconfigured
// tier falls back to the standard model, then lite, so a partial config
// still yields a usable model name.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	for _, fallback := range []ModelTier{TierStandard, TierLite} {
		if model, ok := c.Models[fallback]; ok {
			return model
		}
	}
	return ""
}
