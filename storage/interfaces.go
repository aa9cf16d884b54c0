package storage

import (
	"context"

	"github.com/poiesic/podmap/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction carried by
	// the ctx passed to fn. Repository writes made with that ctx join it.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// fn may run more than once if the commit conflicts with another writer.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// EpisodeRepository provides operations for managing episodes.
type EpisodeRepository interface {
	Repository
	// CreateEpisode stores a new episode with status pending.
	// For episodes with ID=0, generates a new ID from a sequence.
	// Returns the episode with its ID and InsertedAt populated.
	CreateEpisode(ctx context.Context, episode *core.Episode) (*core.Episode, error)

	// GetEpisode retrieves an episode by ID.
	// Returns ErrNotFound if the episode doesn't exist.
	GetEpisode(ctx context.Context, id core.ID) (*core.Episode, error)

	// UpdateEpisodeStatus sets the status of an episode. Moving to complete
	// or failed also stamps ProcessedAt.
	// Returns ErrNotFound if the episode doesn't exist.
	UpdateEpisodeStatus(ctx context.Context, id core.ID, status core.EpisodeStatus) (*core.Episode, error)

	// ListEpisodes returns every episode ordered by ID.
	ListEpisodes(ctx context.Context) ([]*core.Episode, error)
}

// GraphRepository stores the knowledge graph built from episode analyses.
// The entity namespace is shared by every episode: an entity name maps to
// exactly one stored entity no matter how many episodes mention it.
type GraphRepository interface {
	Repository
	// SaveAnalysis persists one episode analysis. Entities are resolved with
	// get-or-create by canonical name, one source record is written for the
	// analysis time range, and relationships and details are attached to that
	// source. Relationships or details naming unknown entities are skipped.
	// Saving the same analysis twice leaves the store unchanged.
	SaveAnalysis(ctx context.Context, analysis *core.EpisodeAnalysis) (*SaveResult, error)

	// GetOrCreateEntity returns the entity with the given canonical name,
	// creating it if necessary. An existing entity with an empty summary
	// takes the supplied summary.
	// Thread-safe: handles concurrent creation attempts.
	GetOrCreateEntity(ctx context.Context, name string, entityType core.EntityType, summary string) (*core.EntityRecord, error)

	// GetEntity retrieves a single entity by ID.
	// Returns ErrNotFound if the entity doesn't exist.
	GetEntity(ctx context.Context, id core.ID) (*core.EntityRecord, error)

	// FindEntityByName finds an entity by canonical name.
	// Returns ErrNotFound if no matching entity exists.
	FindEntityByName(ctx context.Context, name string) (*core.EntityRecord, error)

	// EpisodeGraph returns the nodes and edges attributed to an episode.
	// Nodes are every entity the episode's analyses saved, plus any entity
	// referenced by one of its relationships or details. Returns an empty view
	// for episodes with no stored content.
	EpisodeGraph(ctx context.Context, episodeID core.ID) (*core.GraphView, error)

	// EntityDetails returns an entity and all of its details, each with the
	// episode and time range it came from.
	// Returns ErrNotFound if the entity doesn't exist.
	EntityDetails(ctx context.Context, entityID core.ID) (*core.EntityDetailView, error)
}

// SaveResult reports what SaveAnalysis wrote.
type SaveResult struct {
	SourceID             core.ID
	Entities             int
	Relationships        int
	Details              int
	SkippedRelationships int
	SkippedDetails       int
}
