// Package llm provides the generative-model client, model tier configuration,
// response cleanup helpers and the retry policy shared by every LLM call site.
package llm

// ModelTier selects a model by cost and capability.
type ModelTier string

const (
	// TierLite serves connectivity checks.
	TierLite ModelTier = "lite"
	// TierStandard serves resume extraction, question generation and feedback.
	TierStandard ModelTier = "standard"
)

// Provider names an LLM backend.
type Provider string

// ProviderGemini is Google Gemini, the only supported backend.
const ProviderGemini Provider = "gemini"

// Config maps tiers to provider model names.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the Gemini model table.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
}

// GetModel returns the model for tier. A tier with no entry uses the
// standard model, then the lite model.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with tier mapped to model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	models := make(map[ModelTier]string, len(c.Models)+1)
	for t, m := range c.Models {
		models[t] = m
	}
	models[tier] = model
	return &Config{Provider: c.Provider, Models: models}
}
