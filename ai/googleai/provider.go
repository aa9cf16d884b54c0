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

// Package googleai provides an ai.Provider backed by Gemini.
package googleai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/podmap/ai"
	"github.com/poiesic/podmap/ai/llm"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Provider implements ai.Provider with one Gemini client per model.
type Provider struct {
	config     *ai.Config
	clients    []*googleai.GoogleAI
	extraction *llm.Backend
	refinement *llm.Backend
	logger     *slog.Logger
}

// NewProvider creates Gemini clients for the extraction and refinement models.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "googleai-provider"),
	}

	var err error
	if p.extraction, err = p.newBackend(ctx, config.ExtractionModel); err != nil {
		p.Close()
		return nil, err
	}
	if p.refinement, err = p.newBackend(ctx, config.RefinementModel); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Provider) newBackend(ctx context.Context, model string) (*llm.Backend, error) {
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(p.config.APIKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, err
	}
	p.clients = append(p.clients, client)

	logger := slog.Default().With("component", "googleai-backend", "model", model)
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

// Close closes the underlying gRPC clients.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	var errs []error
	for _, c := range p.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.clients = nil
	return errors.Join(errs...)
}
