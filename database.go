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


package podmap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/podmap/ai"
	"github.com/poiesic/podmap/ai/googleai"
	"github.com/poiesic/podmap/ai/openai"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/ingestion"
	"github.com/poiesic/podmap/storage"
	"github.com/poiesic/podmap/storage/badger"
)

type Database struct {
	backend     *badger.Backend
	episodeRepo storage.EpisodeRepository
	graphRepo   storage.GraphRepository
	provider    ai.Provider
	pipeline    *ingestion.Pipeline
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	inMemory     bool
	pipelineOpts []ingestion.Option
}

// WithAIConfig sets the model provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an existing provider instead of building one from the
// AI config. The Database takes ownership and closes it.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithPipelineOptions passes options through to the ingestion pipeline.
func WithPipelineOptions(opts ...ingestion.Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

func NewDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Create AI provider first so a bad config never touches the store
	provider := options.provider
	if provider == nil {
		var err error
		provider, err = newProvider(ctx, options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		provider.Close()
		return nil, err
	}

	// Create episode repository
	episodeRepo, err := badger.NewEpisodeRepository(backend)
	if err != nil {
		backend.Close()
		provider.Close()
		return nil, err
	}

	// Create graph repository
	graphRepo := badger.NewGraphRepository(backend)

	// Provider timeout first so explicit pipeline options win
	pipelineOpts := make([]ingestion.Option, 0, len(options.pipelineOpts)+1)
	if options.provider == nil && options.aiConfig.CallTimeout > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithCallTimeout(options.aiConfig.CallTimeout))
	}
	pipelineOpts = append(pipelineOpts, options.pipelineOpts...)

	pipeline, err := ingestion.NewPipeline(provider, pipelineOpts...)
	if err != nil {
		graphRepo.Close()
		episodeRepo.Close()
		backend.Close()
		provider.Close()
		return nil, err
	}

	return &Database{
		backend:     backend,
		episodeRepo: episodeRepo,
		graphRepo:   graphRepo,
		provider:    provider,
		pipeline:    pipeline,
		logger:      slog.Default().With("component", "database"),
	}, nil
}

func newProvider(ctx context.Context, cfg *ai.Config) (ai.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	default:
		return googleai.NewProvider(ctx, cfg)
	}
}

func (db *Database) Close() error {
	// Stop accepting work first
	db.pipeline.Release()

	// Close AI provider
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.graphRepo.Close(); err != nil {
		db.logger.Error("error closing graph repository", "err", err)
		return err
	}
	if err := db.episodeRepo.Close(); err != nil {
		db.logger.Error("error closing episode repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) EpisodeRepository() storage.EpisodeRepository {
	return db.episodeRepo
}

func (db *Database) GraphRepository() storage.GraphRepository {
	return db.graphRepo
}

// CreateEpisode registers a new episode in the pending state.
func (db *Database) CreateEpisode(ctx context.Context, title, url string) (*core.Episode, error) {
	return db.episodeRepo.CreateEpisode(ctx, &core.Episode{Title: title, URL: url})
}

// ProcessEpisode runs the pipeline over source and persists the result
// against an existing episode.
//
// The episode is marked processing while the pipeline runs. The graph is
// saved and the episode marked complete in one transaction; if the audio
// could not be decoded or that transaction fails, the episode is marked
// failed and nothing from the run is stored.
func (db *Database) ProcessEpisode(ctx context.Context, episodeID core.ID, source io.Reader) (*core.EpisodeAnalysis, *storage.SaveResult, error) {
	if _, err := db.episodeRepo.UpdateEpisodeStatus(ctx, episodeID, core.EpisodeStatusProcessing); err != nil {
		return nil, nil, fmt.Errorf("marking episode %d processing: %w", episodeID, err)
	}

	analysis, err := db.pipeline.Process(ctx, source, episodeID)
	if err != nil {
		return nil, nil, db.fail(ctx, episodeID, err)
	}

	// The graph and the complete status commit together.
	var result *storage.SaveResult
	err = db.graphRepo.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = db.graphRepo.SaveAnalysis(ctx, analysis)
		if err != nil {
			return fmt.Errorf("saving analysis: %w", err)
		}
		if _, err := db.episodeRepo.UpdateEpisodeStatus(ctx, episodeID, core.EpisodeStatusComplete); err != nil {
			return fmt.Errorf("marking episode %d complete: %w", episodeID, err)
		}
		return nil
	})
	if err != nil {
		return analysis, nil, db.fail(ctx, episodeID, err)
	}

	db.logger.Info("episode processed",
		"episode", episodeID,
		"entities", result.Entities,
		"relationships", result.Relationships,
		"details", result.Details,
		"skippedRelationships", result.SkippedRelationships,
		"skippedDetails", result.SkippedDetails)
	return analysis, result, nil
}

// fail marks the episode failed even if ctx is already done.
func (db *Database) fail(ctx context.Context, episodeID core.ID, cause error) error {
	if _, err := db.episodeRepo.UpdateEpisodeStatus(context.WithoutCancel(ctx), episodeID, core.EpisodeStatusFailed); err != nil {
		db.logger.Error("error marking episode failed", "episode", episodeID, "err", err)
		return errors.Join(cause, err)
	}
	return cause
}
