// Package llm provides the oracle boundary: LLM client abstractions, model tiers,
// and normalization of structured responses.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: parsing, structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: deep matching, edit synthesis
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, currently the only implementation.
const ProviderGemini Provider = "gemini"

// Task names an oracle call site so tiers can be tuned per task.
type Task string

// Oracle call sites.
const (
	TaskStructureResume     Task = "structure_resume"
	TaskExtractRequirements Task = "extract_requirements"
	TaskDeepMatch           Task = "deep_match"
	TaskGenerateEdits       Task = "generate_edits"
	TaskPatchRawText        Task = "patch_raw_text"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	Tasks    map[Task]ModelTier
	// Temperature is kept low so repeated analyses of one input agree.
	Temperature float32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Temperature: 0.1,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Tasks: map[Task]ModelTier{
			TaskStructureResume:     TierStandard,
			TaskExtractRequirements: TierStandard,
			TaskDeepMatch:           TierStandard,
			TaskGenerateEdits:       TierAdvanced,
			TaskPatchRawText:        TierStandard,
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

// TierFor returns the tier configured for a task, defaulting to standard.
func (c *Config) TierFor(task Task) ModelTier {
	if c != nil {
		if tier, ok := c.Tasks[task]; ok {
			return tier
		}
	}
	return TierStandard
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Tasks:       make(map[Task]ModelTier, len(c.Tasks)),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	for k, v := range c.Tasks {
		newConfig.Tasks[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
