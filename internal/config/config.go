// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/ats-optimizer/internal/db"
	"github.com/jonathan/ats-optimizer/internal/llm"
	"github.com/jonathan/ats-optimizer/internal/rendering"
	"github.com/jonathan/ats-optimizer/internal/scoring"
)

// Duration is a time.Duration written as a Go duration string ("1s", "90s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config represents the application configuration. All fields are optional;
// ApplyDefaults fills what is missing.
type Config struct {
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // postgres://, sqlite:// or a file path
	StatePath   string `json:"state_path,omitempty" yaml:"state_path,omitempty"`     // local SQLite file used when DatabaseURL is empty
	Namespace   string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Template    string `json:"template,omitempty" yaml:"template,omitempty"` // LaTeX template override
	UseBrowser  bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	Models  map[string]string `json:"models,omitempty" yaml:"models,omitempty" validate:"dive,keys,oneof=lite standard advanced,endkeys,required"`
	Retry   RetryConfig       `json:"retry" yaml:"retry"`
	Scoring ScoringConfig     `json:"scoring" yaml:"scoring"`
	Page    PageConfig        `json:"page" yaml:"page"`
	Server  ServerConfig      `json:"server" yaml:"server"`
}

// RetryConfig configures the external call gateway.
type RetryConfig struct {
	MaxRetries     int      `json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay      Duration `json:"base_delay" yaml:"base_delay" validate:"gt=0"`
	MaxDelay       Duration `json:"max_delay" yaml:"max_delay" validate:"gtefield=BaseDelay"`
	AttemptTimeout Duration `json:"attempt_timeout" yaml:"attempt_timeout" validate:"gt=0"`
}

// ScoringConfig bounds the compliance score.
type ScoringConfig struct {
	Floor   int `json:"floor" yaml:"floor" validate:"gte=0,ltefield=Ceiling"`
	Ceiling int `json:"ceiling" yaml:"ceiling" validate:"lte=100"`
}

// PageConfig sets the fixed-layout page geometry. Zero values keep the
// defaults of the chosen size.
type PageConfig struct {
	Size               string  `json:"size" yaml:"size" validate:"oneof=a4 letter"`
	Margin             float64 `json:"margin,omitempty" yaml:"margin,omitempty" validate:"gte=0"`
	FooterMargin       float64 `json:"footer_margin,omitempty" yaml:"footer_margin,omitempty" validate:"gte=0"`
	TitleFontSize      float64 `json:"title_font_size,omitempty" yaml:"title_font_size,omitempty" validate:"gte=0"`
	BodyFontSize       float64 `json:"body_font_size,omitempty" yaml:"body_font_size,omitempty" validate:"gte=0"`
	LineHeight         float64 `json:"line_height,omitempty" yaml:"line_height,omitempty" validate:"gte=0"`
	BalancedLineHeight float64 `json:"balanced_line_height,omitempty" yaml:"balanced_line_height,omitempty" validate:"gte=0"`
	BalanceFactor      float64 `json:"balance_factor,omitempty" yaml:"balance_factor,omitempty" validate:"gte=0"`
	SectionGap         float64 `json:"section_gap,omitempty" yaml:"section_gap,omitempty" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               int       `json:"port" yaml:"port" validate:"min=1,max=65535"`
	JWTSecret          string    `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
	JWTExpirationHours int       `json:"jwt_expiration_hours" yaml:"jwt_expiration_hours" validate:"gte=1"`
	AllowedOrigins     []string  `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	RateLimit          RateLimit `json:"rate_limit" yaml:"rate_limit"`
}

// RateLimit configures the per-client request limiter.
type RateLimit struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" validate:"gt=0"`
	Burst             int     `json:"burst" yaml:"burst" validate:"gte=1"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from a .json, .yaml or .yml file and applies
// defaults. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q: use .json, .yaml or .yml", filepath.Ext(path))
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// DefaultStatePath is the local snapshot database, relative to the working directory.
const DefaultStatePath = ".ats-optimizer/session.db"

// SnapshotDSN returns where session snapshots live: DatabaseURL when set,
// otherwise the local state file.
func (c *Config) SnapshotDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.StatePath
}

// ApplyDefaults fills zero values with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Namespace == "" {
		cfg.Namespace = db.DefaultNamespace
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}

	policy := llm.DefaultPolicy()
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = Duration(policy.BaseDelay)
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = Duration(policy.MaxDelay)
	}
	if cfg.Retry.AttemptTimeout == 0 {
		cfg.Retry.AttemptTimeout = Duration(policy.AttemptTimeout)
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = policy.MaxRetries
	}

	weights := scoring.DefaultWeights()
	if cfg.Scoring.Floor == 0 && cfg.Scoring.Ceiling == 0 {
		cfg.Scoring.Floor = weights.Floor
		cfg.Scoring.Ceiling = weights.Ceiling
	}

	if cfg.Page.Size == "" {
		cfg.Page.Size = "a4"
	}
	cfg.Page.Size = strings.ToLower(cfg.Page.Size)

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.JWTExpirationHours == 0 {
		cfg.Server.JWTExpirationHours = 24
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = 2
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 10
	}
}

// ApplyEnv overrides values from the environment. Malformed numeric values
// are reported rather than ignored.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		cfg.Server.JWTExpirationHours = hours
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS: %v", err)
		}
		cfg.Server.RateLimit.RequestsPerSecond = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST: %v", err)
		}
		cfg.Server.RateLimit.Burst = burst
	}
	return nil
}

// Validate checks that the configuration has valid values. Required inputs
// such as the API key are checked by the commands that need them.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.StatePath == "" {
		result.StatePath = defaults.StatePath
	}
	if result.Namespace == "" {
		result.Namespace = defaults.Namespace
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if len(result.Models) == 0 {
		result.Models = defaults.Models
	}
	if result.Retry == (RetryConfig{}) {
		result.Retry = defaults.Retry
	}
	if result.Scoring == (ScoringConfig{}) {
		result.Scoring = defaults.Scoring
	}
	if result.Page == (PageConfig{}) {
		result.Page = defaults.Page
	}

	// Bool fields cannot distinguish unset from false, so CLI flags always win.
	return result
}

// RetryPolicy converts the retry section to a gateway policy.
func (c *Config) RetryPolicy() llm.Policy {
	return llm.Policy{
		MaxRetries:     c.Retry.MaxRetries,
		BaseDelay:      time.Duration(c.Retry.BaseDelay),
		MaxDelay:       time.Duration(c.Retry.MaxDelay),
		AttemptTimeout: time.Duration(c.Retry.AttemptTimeout),
	}
}

// LLMConfig returns the model configuration with configured tier overrides.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	if len(c.Models) == 0 {
		return cfg
	}
	models := make(map[llm.ModelTier]string, len(c.Models))
	for tier, model := range c.Models {
		models[llm.ModelTier(tier)] = model
	}
	return cfg.WithModels(models)
}

// Weights returns the scoring weights with the configured bounds.
func (c *Config) Weights() scoring.Weights {
	w := scoring.DefaultWeights()
	w.Floor = c.Scoring.Floor
	w.Ceiling = c.Scoring.Ceiling
	return w
}

// PageParams returns the page geometry for the configured size and overrides.
func (c *Config) PageParams() rendering.PageParams {
	p := rendering.DefaultPageParams()
	if c.Page.Size == "letter" {
		p = rendering.LetterPageParams()
	}

	overrides := []struct {
		value  float64
		target *float64
	}{
		{c.Page.Margin, &p.Margin},
		{c.Page.FooterMargin, &p.FooterMargin},
		{c.Page.TitleFontSize, &p.TitleFontSize},
		{c.Page.BodyFontSize, &p.BodyFontSize},
		{c.Page.LineHeight, &p.LineHeight},
		{c.Page.BalancedLineHeight, &p.BalancedLineHeight},
		{c.Page.BalanceFactor, &p.BalanceFactor},
		{c.Page.SectionGap, &p.SectionGap},
	}
	for _, o := range overrides {
		if o.value > 0 {
			*o.target = o.value
		}
	}
	return p
}

// RenderOptions returns the export options for this configuration.
func (c *Config) RenderOptions() rendering.Options {
	return rendering.Options{Page: c.PageParams(), TemplatePath: c.Template}
}
