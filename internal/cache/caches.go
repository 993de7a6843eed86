package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/types"
)

// Namespaces of the pipeline caches.
const (
	NamespaceResume       = "resume"
	NamespaceRequirements = "requirements"
	NamespaceAnalysis     = "analysis"
)

// Config holds the TTLs of the pipeline caches.
type Config struct {
	ResumeTTL       time.Duration `mapstructure:"resume_ttl" validate:"gt=0"`
	RequirementsTTL time.Duration `mapstructure:"requirements_ttl" validate:"gt=0"`
	AnalysisTTL     time.Duration `mapstructure:"analysis_ttl" validate:"gt=0"`
}

// DefaultConfig returns the standard TTLs.
func DefaultConfig() Config {
	return Config{
		ResumeTTL:       time.Hour,
		RequirementsTTL: 24 * time.Hour,
		AnalysisTTL:     time.Hour,
	}
}

// Caches bundles the independent caches used by the pipeline.
type Caches struct {
	Resumes      *TTLCache[types.StructuredResume]
	Requirements *TTLCache[[]types.Requirement]
	Analyses     *TTLCache[types.FitAnalysis]
}

// New creates the pipeline caches over a shared store. A nil store disables all of them.
func New(store Store, cfg Config, log *zap.Logger) *Caches {
	return &Caches{
		Resumes:      NewTTLCache[types.StructuredResume](store, NamespaceResume, cfg.ResumeTTL, log),
		Requirements: NewTTLCache[[]types.Requirement](store, NamespaceRequirements, cfg.RequirementsTTL, log),
		Analyses:     NewTTLCache[types.FitAnalysis](store, NamespaceAnalysis, cfg.AnalysisTTL, log),
	}
}

// Stats returns the counters of every cache by namespace.
func (c *Caches) Stats() map[string]Stats {
	if c == nil {
		return map[string]Stats{}
	}
	return map[string]Stats{
		NamespaceResume:       c.Resumes.Stats(),
		NamespaceRequirements: c.Requirements.Stats(),
		NamespaceAnalysis:     c.Analyses.Stats(),
	}
}
