package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures exponential backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the defaults: Anthropic Haiku, 3 attempts, 30s.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// envVars lists the NEUROGYM_* variables read by ConfigFromEnv.
var envVars = []struct {
	name string
	dst  func(*Config) *string
}{
	{"NEUROGYM_LLM_PROVIDER", func(c *Config) *string { return &c.Provider }},
	{"NEUROGYM_ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"NEUROGYM_ANTHROPIC_MODEL", func(c *Config) *string { return &c.Anthropic.Model }},
	{"NEUROGYM_OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"NEUROGYM_OPENAI_MODEL", func(c *Config) *string { return &c.OpenAI.Model }},
	{"NEUROGYM_OPENAI_BASE_URL", func(c *Config) *string { return &c.OpenAI.BaseURL }},
	{"NEUROGYM_GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"NEUROGYM_GEMINI_MODEL", func(c *Config) *string { return &c.Gemini.Model }},
	{"NEUROGYM_OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }},
	{"NEUROGYM_OPENROUTER_MODEL", func(c *Config) *string { return &c.OpenRouter.Model }},
}

// ConfigFromEnv overlays NEUROGYM_* environment variables on the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, v := range envVars {
		if val := os.Getenv(v.name); val != "" {
			*v.dst(&cfg) = val
		}
	}
	return cfg
}

// DiscoverConfig probes the vendors' standard API key variables (Gemini,
// OpenAI, Anthropic, OpenRouter, in that order) and configures the first
// provider found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	probes := []struct {
		env      string
		provider string
		key      *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			*p.key = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Resolve returns the NEUROGYM_* configuration when it is usable, else a
// discovered one. ok is false when no provider can be configured.
func Resolve() (Config, bool) {
	cfg := ConfigFromEnv()
	if cfg.Validate() == nil {
		return cfg, true
	}
	return DiscoverConfig()
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "NEUROGYM_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "NEUROGYM_OPENAI_API_KEY"
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "NEUROGYM_GEMINI_API_KEY"
	case ProviderOpenRouter:
		key, env = c.OpenRouter.APIKey, "NEUROGYM_OPENROUTER_API_KEY"
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
