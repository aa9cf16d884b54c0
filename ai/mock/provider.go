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


package mock

import "github.com/poiesic/podmap/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock extraction and refinement backends.
type MockProvider struct {
	extraction *MockBackend
	refinement *MockBackend
	closed     bool
}

// NewMockProvider creates a new mock provider with default mock backends.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockExtraction()/GetMockRefinement() to access concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return NewMockProviderWithBackends(NewMockBackend(), NewMockBackend())
}

// NewMockProviderWithBackends creates a mock provider with custom mock backends.
// This allows full control over the behavior of each backend.
func NewMockProviderWithBackends(extraction, refinement *MockBackend) *MockProvider {
	return &MockProvider{
		extraction: extraction,
		refinement: refinement,
	}
}

// Extraction returns the mock extraction backend.
func (p *MockProvider) Extraction() ai.Backend {
	return p.extraction
}

// Refinement returns the mock refinement backend.
func (p *MockProvider) Refinement() ai.Backend {
	return p.refinement
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockExtraction returns the underlying extraction backend for test assertions.
func (p *MockProvider) GetMockExtraction() *MockBackend {
	return p.extraction
}

// GetMockRefinement returns the underlying refinement backend for test assertions.
func (p *MockProvider) GetMockRefinement() *MockBackend {
	return p.refinement
}
