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

package openai

import (
	"log/slog"
	"net/http"

	"github.com/poiesic/podmap/ai"
	"github.com/poiesic/podmap/ai/llm"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// Segment audio is sent inline as input_audio content, so the extraction
// model must accept audio input.
type Provider struct {
	config     *ai.Config
	extraction *llm.Backend
	refinement *llm.Backend
	logger     *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	extraction, err := newBackend(config, config.ExtractionModel)
	if err != nil {
		return nil, err
	}
	refinement, err := newBackend(config, config.RefinementModel)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		extraction: extraction,
		refinement: refinement,
		logger:     slog.Default().With("component", "openai-provider"),
	}, nil
}

func newBackend(config *ai.Config, model string) (*llm.Backend, error) {
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	token := config.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithModel(model),
		openai.WithHTTPClient(newAudioClient(http.DefaultClient)),
	)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-backend", "model", model)
	return llm.New(client, llm.WithLogger(logger)), nil
}

// Extraction returns the per-segment extraction backend.
func (p *Provider) Extraction() ai.Backend {
	return p.extraction
}

// Refinement returns the consolidation backend.
func (p *Provider) Refinement() ai.Backend {
	return p.refinement
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
