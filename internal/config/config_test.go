package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-optimizer/internal/db"
	"github.com/jonathan/ats-optimizer/internal/llm"
	"github.com/jonathan/ats-optimizer/internal/rendering"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
api_key: from-file
database_url: sqlite://state.db
models:
  advanced: gemini-exp
retry:
  max_retries: 5
  base_delay: 500ms
  max_delay: 10s
page:
  size: Letter
  margin: 20
server:
  port: 9090
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.Retry.BaseDelay)
	assert.Equal(t, Duration(90*time.Second), cfg.Retry.AttemptTimeout)
	assert.Equal(t, "letter", cfg.Page.Size)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, db.DefaultNamespace, cfg.Namespace)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini-exp", cfg.LLMConfig().GetModel(llm.TierAdvanced))
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierLite), cfg.LLMConfig().GetModel(llm.TierLite))

	page := cfg.PageParams()
	assert.Equal(t, rendering.LetterPageParams().Width, page.Width)
	assert.Equal(t, 20.0, page.Margin)
	assert.Equal(t, rendering.DefaultPageParams().LineHeight, page.LineHeight)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"namespace": "team/alice",
		"retry": {"base_delay": "2s", "attempt_timeout": "1m"},
		"scoring": {"floor": 5, "ceiling": 95},
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "team/alice", cfg.Namespace)
	assert.True(t, cfg.Verbose)
	policy := cfg.RetryPolicy()
	assert.Equal(t, 2*time.Second, policy.BaseDelay)
	assert.Equal(t, time.Minute, policy.AttemptTimeout)
	assert.Equal(t, 3, policy.MaxRetries)
	assert.Equal(t, 5, cfg.Weights().Floor)
	assert.Equal(t, 95, cfg.Weights().Ceiling)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"empty path", "", "config path is empty"},
		{"missing file", "/nonexistent/path/config.json", "failed to read config file"},
		{"invalid json", writeConfig(t, "c.json", `{ invalid json }`), "failed to parse config JSON"},
		{"invalid yaml", writeConfig(t, "c.yml", "retry: [oops"), "failed to parse config YAML"},
		{"bad duration", writeConfig(t, "c.yaml", "retry:\n  base_delay: soon\n"), "invalid duration"},
		{"unknown format", writeConfig(t, "c.toml", "x = 1"), "unsupported config format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"floor above ceiling", func(c *Config) { c.Scoring.Floor = 90; c.Scoring.Ceiling = 50 }, true},
		{"ceiling above 100", func(c *Config) { c.Scoring.Ceiling = 120 }, true},
		{"max delay below base", func(c *Config) { c.Retry.MaxDelay = Duration(time.Millisecond) }, true},
		{"unknown page size", func(c *Config) { c.Page.Size = "a3" }, true},
		{"unknown model tier", func(c *Config) { c.Models = map[string]string{"huge": "x"} }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing template", func(c *Config) { c.Template = "/nonexistent/resume.tex" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/ats")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "3")

	cfg := Default()
	cfg.APIKey = "file-key"
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "postgres://localhost/ats", cfg.DatabaseURL)
	assert.Equal(t, 0.5, cfg.Server.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Server.RateLimit.Burst)

	t.Setenv("RATE_LIMIT_BURST", "lots")
	assert.Error(t, ApplyEnv(cfg))
}

func TestMergeWithDefaults(t *testing.T) {
	flags := Config{APIKey: "flag-key"}
	file := Config{APIKey: "file-key", Template: "resume.tex", Namespace: "ns", Scoring: ScoringConfig{Floor: 2, Ceiling: 99}}

	merged := flags.MergeWithDefaults(file)

	assert.Equal(t, "flag-key", merged.APIKey)
	assert.Equal(t, "resume.tex", merged.Template)
	assert.Equal(t, "ns", merged.Namespace)
	assert.Equal(t, 99, merged.Scoring.Ceiling)
}

func TestConfig_SnapshotDSN(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultStatePath, cfg.SnapshotDSN())

	cfg.StatePath = "/tmp/state.db"
	assert.Equal(t, "/tmp/state.db", cfg.SnapshotDSN())

	cfg.DatabaseURL = "postgres://localhost/ats"
	assert.Equal(t, "postgres://localhost/ats", cfg.SnapshotDSN())
}
