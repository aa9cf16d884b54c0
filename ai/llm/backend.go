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


// Package llm adapts a langchaingo llms.Model to ai.Backend.
//
// langchaingo has no file API, so uploads are held in memory and sent inline
// as binary parts of the generation request that references them.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/poiesic/podmap/ai"
	"github.com/tmc/langchaingo/llms"
)

var (
	// ErrUnknownHandle is returned by Generate when a part references content
	// that was never uploaded or has already been released.
	ErrUnknownHandle = errors.New("unknown upload handle")

	// ErrEmptyResponse is returned when the model returns no choices.
	ErrEmptyResponse = errors.New("no choices returned from model")

	// ErrEmptyRequest is returned when Generate is called without parts.
	ErrEmptyRequest = errors.New("no parts to send")
)

type upload struct {
	handle ai.Handle
	data   []byte
}

// Backend implements ai.Backend over a langchaingo model.
type Backend struct {
	model       llms.Model
	callOptions []llms.CallOption
	logger      *slog.Logger

	mu      sync.Mutex
	uploads map[string]upload
}

var _ ai.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithCallOptions replaces the default call options
// (temperature 0, JSON mode).
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(b *Backend) {
		b.callOptions = opts
	}
}

// New creates a Backend that sends requests to model.
func New(model llms.Model, opts ...Option) *Backend {
	b := &Backend{
		model:       model,
		callOptions: []llms.CallOption{llms.WithTemperature(0.0), llms.WithJSONMode()},
		logger:      slog.Default().With("component", "llm-backend"),
		uploads:     make(map[string]upload),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Upload registers data under a new handle.
func (b *Backend) Upload(ctx context.Context, data []byte, mimeType, displayName string) (ai.Handle, error) {
	if err := ctx.Err(); err != nil {
		return ai.Handle{}, err
	}

	h := ai.Handle{
		Name:        "files/" + uuid.NewString(),
		MIMEType:    mimeType,
		DisplayName: displayName,
	}

	b.mu.Lock()
	b.uploads[h.Name] = upload{handle: h, data: data}
	b.mu.Unlock()

	b.logger.Debug("registered upload", "name", h.Name, "displayName", displayName, "bytes", len(data))
	return h, nil
}

// Generate sends all parts as a single human message.
func (b *Backend) Generate(ctx context.Context, parts ...ai.Part) (string, error) {
	if len(parts) == 0 {
		return "", ErrEmptyRequest
	}

	content := make([]llms.ContentPart, 0, len(parts))
	for _, p := range parts {
		if !p.IsFile() {
			content = append(content, llms.TextPart(p.Text))
			continue
		}
		u, ok := b.lookup(p.File.Name)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownHandle, p.File.Name)
		}
		content = append(content, llms.BinaryPart(u.handle.MIMEType, u.data))
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: content,
		},
	}

	response, err := b.model.GenerateContent(ctx, messages, b.callOptions...)
	if err != nil {
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrEmptyResponse
	}
	return response.Choices[0].Content, nil
}

// Release forgets an upload.
func (b *Backend) Release(ctx context.Context, h ai.Handle) error {
	b.mu.Lock()
	delete(b.uploads, h.Name)
	b.mu.Unlock()
	return nil
}

// Pending returns the number of uploads not yet released.
func (b *Backend) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.uploads)
}

func (b *Backend) lookup(name string) (upload, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.uploads[name]
	return u, ok
}
