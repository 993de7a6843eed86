// Package config loads the service configuration from defaults, an optional
// config file, FIT_ environment variables and bound CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/resume-fit/internal/cache"
	"github.com/jonathan/resume-fit/internal/editing"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/matching"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/scoring"
)

// EnvPrefix prefixes every environment override, e.g. FIT_SERVER_PORT.
const EnvPrefix = "FIT"

// Config is the complete service configuration.
type Config struct {
	Debug       bool   `mapstructure:"debug"`
	JSON        bool   `mapstructure:"json"`
	APIKey      string `mapstructure:"api_key"`
	DatabaseURL string `mapstructure:"database_url" validate:"omitempty,url"`

	Models   Models          `mapstructure:"models"`
	Parsing  Parsing         `mapstructure:"parsing"`
	Weights  scoring.Weights `mapstructure:"weights"`
	Matching matching.Limits `mapstructure:"matching"`
	Editing  editing.Config  `mapstructure:"editing"`
	Cache    Cache           `mapstructure:"cache"`
	Server   Server          `mapstructure:"server"`
}

// Models overrides the model used for each tier.
type Models struct {
	Lite     string `mapstructure:"lite" validate:"required"`
	Standard string `mapstructure:"standard" validate:"required"`
	Advanced string `mapstructure:"advanced" validate:"required"`
}

// Parsing holds the text budgets sent to the oracle.
type Parsing struct {
	ResumeBudget int `mapstructure:"resume_budget" validate:"min=500"`
	JobBudget    int `mapstructure:"job_budget" validate:"min=0"`
}

// Cache configures the cache stores and TTLs.
type Cache struct {
	cache.Config `mapstructure:",squash"`
	MaxEntries   int    `mapstructure:"max_entries" validate:"min=0"`
	RedisURL     string `mapstructure:"redis_url" validate:"omitempty,url"`
	Durable      bool   `mapstructure:"durable"`
}

// Server configures the HTTP surface.
type Server struct {
	Port              int           `mapstructure:"port" validate:"min=1,max=65535"`
	RequestsPerMinute float64       `mapstructure:"requests_per_minute" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"min=1"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" validate:"min=1024"`
}

var validate = validator.New()

// SetDefaults registers every key with its default so that environment
// variables can override keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	models := llm.DefaultConfig().Models
	v.SetDefault("debug", false)
	v.SetDefault("json", false)
	v.SetDefault("api_key", "")
	v.SetDefault("database_url", "")

	v.SetDefault("models.lite", models[llm.TierLite])
	v.SetDefault("models.standard", models[llm.TierStandard])
	v.SetDefault("models.advanced", models[llm.TierAdvanced])

	v.SetDefault("parsing.resume_budget", parsing.DefaultResumeBudget)
	v.SetDefault("parsing.job_budget", 0)

	w := scoring.DefaultWeights()
	v.SetDefault("weights.required", w.Required)
	v.SetDefault("weights.preferred", w.Preferred)
	v.SetDefault("weights.nice_to_have", w.NiceToHave)
	v.SetDefault("weights.critical", w.Critical)
	v.SetDefault("weights.high", w.High)
	v.SetDefault("weights.medium", w.Medium)
	v.SetDefault("weights.low", w.Low)

	limits := matching.DefaultLimits()
	v.SetDefault("matching.phase1_requirements", limits.Phase1Requirements)
	v.SetDefault("matching.context_bullets", limits.ContextBullets)
	v.SetDefault("matching.context_chars", limits.ContextChars)

	e := editing.DefaultConfig()
	v.SetDefault("editing.max_gaps", e.MaxGaps)
	v.SetDefault("editing.max_partials", e.MaxPartials)
	v.SetDefault("editing.max_edits", e.MaxEdits)
	v.SetDefault("editing.max_raw_patches", e.MaxRawPatches)
	v.SetDefault("editing.min_patch_chars", e.MinPatchChars)
	v.SetDefault("editing.timeout", e.Timeout)

	c := cache.DefaultConfig()
	v.SetDefault("cache.resume_ttl", c.ResumeTTL)
	v.SetDefault("cache.requirements_ttl", c.RequirementsTTL)
	v.SetDefault("cache.analysis_ttl", c.AnalysisTTL)
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.durable", false)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.requests_per_minute", 30.0)
	v.SetDefault("server.burst", 5)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("server.max_body_bytes", int64(1<<20))
}

// Load reads configuration into v and decodes it. path may be empty, in which
// case only defaults, environment and flags already bound to v apply.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a file with a fresh viper instance.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	return Load(viper.New(), path)
}

// Validate checks ranges and the weight ordering.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// LLMConfig returns the oracle model configuration.
func (c *Config) LLMConfig() *llm.Config {
	return llm.DefaultConfig().
		WithModel(llm.TierLite, c.Models.Lite).
		WithModel(llm.TierStandard, c.Models.Standard).
		WithModel(llm.TierAdvanced, c.Models.Advanced)
}

// PipelineSettings returns the stage settings of the analyzer.
func (c *Config) PipelineSettings() pipeline.Settings {
	return pipeline.Settings{
		Weights:      c.Weights,
		MatchLimits:  c.Matching,
		Editing:      c.Editing,
		ResumeBudget: c.Parsing.ResumeBudget,
		JobBudget:    c.Parsing.JobBudget,
	}
}
