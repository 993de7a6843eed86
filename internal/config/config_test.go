package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-fit/internal/editing"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/matching"
	"github.com/jonathan/resume-fit/internal/scoring"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, scoring.DefaultWeights(), cfg.Weights)
	assert.Equal(t, matching.DefaultLimits(), cfg.Matching)
	assert.Equal(t, editing.DefaultConfig(), cfg.Editing)
	assert.Equal(t, time.Hour, cfg.Cache.AnalysisTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.RequirementsTTL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.Burst)
	assert.Empty(t, cfg.Cache.RedisURL)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "fit.yaml", `
debug: true
weights:
  preferred: 0.5
editing:
  max_edits: 5
  timeout: 15s
cache:
  analysis_ttl: 30m
  redis_url: redis://localhost:6379/0
server:
  port: 9090
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 0.5, cfg.Weights.Preferred)
	assert.Equal(t, 1.0, cfg.Weights.Required)
	assert.Equal(t, 5, cfg.Editing.MaxEdits)
	assert.Equal(t, 15*time.Second, cfg.Editing.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Cache.AnalysisTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeConfig(t, "fit.json", `{"matching": {"phase1_requirements": 12}, "parsing": {"resume_budget": 6000}}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Matching.Phase1Requirements)
	assert.Equal(t, 6000, cfg.PipelineSettings().ResumeBudget)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("FIT_SERVER_PORT", "7070")
	t.Setenv("FIT_WEIGHTS_LOW", "0.1")
	t.Setenv("FIT_CACHE_ANALYSIS_TTL", "5m")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 0.1, cfg.Weights.Low)
	assert.Equal(t, 5*time.Minute, cfg.Cache.AnalysisTTL)
}

func TestLoad_GeminiAPIKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)

	t.Setenv("FIT_API_KEY", "explicit")
	cfg, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.APIKey)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "empty path",
			path:    func(*testing.T) string { return "" },
			wantErr: "config path is empty",
		},
		{
			name:    "missing file",
			path:    func(*testing.T) string { return "/nonexistent/fit.yaml" },
			wantErr: "failed to read config file",
		},
		{
			name: "invalid yaml",
			path: func(t *testing.T) string {
				return writeConfig(t, "fit.yaml", "weights: [unclosed")
			},
			wantErr: "failed to read config file",
		},
		{
			name: "weight out of range",
			path: func(t *testing.T) string {
				return writeConfig(t, "fit.yaml", "weights:\n  required: 1.5\n")
			},
			wantErr: "config error",
		},
		{
			name: "weights out of order",
			path: func(t *testing.T) string {
				return writeConfig(t, "fit.yaml", "weights:\n  preferred: 0.2\n  nice_to_have: 0.9\n")
			},
			wantErr: "category weights",
		},
		{
			name: "bad port",
			path: func(t *testing.T) string {
				return writeConfig(t, "fit.yaml", "server:\n  port: 70000\n")
			},
			wantErr: "config error",
		},
		{
			name: "bad database url",
			path: func(t *testing.T) string {
				return writeConfig(t, "fit.yaml", "database_url: not a url\n")
			},
			wantErr: "config error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.path(t))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMConfig(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	cfg.Models.Advanced = "custom-model"

	llmCfg := cfg.LLMConfig()
	assert.Equal(t, "custom-model", llmCfg.GetModel(llm.TierAdvanced))
	assert.Equal(t, llm.TierAdvanced, llmCfg.TierFor(llm.TaskGenerateEdits))
}
