// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Supported provider names.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
)

// Config holds configuration for model providers.
type Config struct {
	// Provider selects the backend implementation: "googleai" or "openai".
	Provider string

	// Host is the base URL for OpenAI-compatible services.
	// Ignored by the googleai provider.
	// Example: "http://localhost:11434/v1"
	Host string

	// APIKey authenticates against the provider. Required for googleai.
	APIKey string

	// ExtractionModel is the model used for per-segment extraction.
	// Example: "gemini-2.5-pro"
	ExtractionModel string

	// RefinementModel is the model used to consolidate fragments.
	// Example: "gemini-2.5-pro"
	RefinementModel string

	// CallTimeout bounds each upload+generate exchange.
	// Default: 5 minutes
	CallTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider selects the provider implementation.
func WithProvider(name string) ConfigOption {
	return func(c *Config) {
		c.Provider = name
	}
}

// WithHost sets the service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithExtractionModel sets the extraction model identifier.
func WithExtractionModel(model string) ConfigOption {
	return func(c *Config) {
		c.ExtractionModel = model
	}
}

// WithRefinementModel sets the refinement model identifier.
func WithRefinementModel(model string) ConfigOption {
	return func(c *Config) {
		c.RefinementModel = model
	}
}

// WithModel sets both extraction and refinement to the same model.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.ExtractionModel = model
		c.RefinementModel = model
	}
}

// WithCallTimeout sets the per-call timeout.
func WithCallTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.CallTimeout = d
	}
}

// DefaultConfig returns a Config targeting Gemini.
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderGoogleAI,
		ExtractionModel: "gemini-2.5-pro",
		RefinementModel: "gemini-2.5-pro",
		CallTimeout:     5 * time.Minute,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderOpenAI),
//	    WithHost("http://localhost:11434"),
//	    WithModel("qwen2.5-omni"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// For the openai provider it adds the /v1 suffix to Host if missing, which
// is required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == ProviderOpenAI && c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderGoogleAI:
		if c.APIKey == "" {
			return errors.New("ai config: APIKey is required for googleai")
		}
	case ProviderOpenAI:
		if c.Host == "" {
			return errors.New("ai config: Host is required for openai")
		}
	case "":
		return errors.New("ai config: Provider is required")
	default:
		return errors.New("ai config: unknown Provider " + c.Provider)
	}
	if c.ExtractionModel == "" {
		return errors.New("ai config: ExtractionModel is required")
	}
	if c.RefinementModel == "" {
		return errors.New("ai config: RefinementModel is required")
	}
	if c.CallTimeout <= 0 {
		return errors.New("ai config: CallTimeout must be positive")
	}
	return nil
}
