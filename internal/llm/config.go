// Package llm provides centralized LLM configuration and client abstractions.
// Model tiers map to concrete model names; generation profiles bundle the sampling
// parameters used by each class of document.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is the cheap, fast variant used for high-volume marketing templates
	TierLite ModelTier = "lite"
	// TierStandard is for structured advisory output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form legal, financial and narrative documents
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// ProfileName identifies a generation profile
type ProfileName string

// Generation profiles, one per class of document
const (
	ProfileLegal     ProfileName = "legal"
	ProfileFinancial ProfileName = "financial"
	ProfileNarrative ProfileName = "narrative"
	ProfileAdvisory  ProfileName = "advisory"
	ProfileFastPath  ProfileName = "fast_path"
)

// Profile bundles the model tier and sampling parameters for one class of document
type Profile struct {
	Name            ProfileName
	Tier            ModelTier
	Temperature     float32
	MaxOutputTokens int32
	JSON            bool
}

const (
	baseTimeout     = 15 * time.Second
	timeoutPerToken = 20 * time.Millisecond
)

// Timeout bounds a single oracle call in proportion to the token ceiling
func (p Profile) Timeout() time.Duration {
	return baseTimeout + time.Duration(p.MaxOutputTokens)*timeoutPerToken
}

var profiles = map[ProfileName]Profile{
	// near-deterministic: clauses must read the same way every time
	ProfileLegal:     {Name: ProfileLegal, Tier: TierAdvanced, Temperature: 0.2, MaxOutputTokens: 8192},
	ProfileFinancial: {Name: ProfileFinancial, Tier: TierAdvanced, Temperature: 0.1, MaxOutputTokens: 8192},
	ProfileNarrative: {Name: ProfileNarrative, Tier: TierAdvanced, Temperature: 0.5, MaxOutputTokens: 8192},
	ProfileAdvisory:  {Name: ProfileAdvisory, Tier: TierStandard, Temperature: 0.7, MaxOutputTokens: 4096, JSON: true},
	ProfileFastPath:  {Name: ProfileFastPath, Tier: TierLite, Temperature: 0.8, MaxOutputTokens: 2048},
}

// GetProfile returns the named profile, falling back to the legal profile
func GetProfile(name ProfileName) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return profiles[ProfileLegal]
}
