package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/storage"
)

// EpisodeRepository implements storage.EpisodeRepository for BadgerDB.
type EpisodeRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EpisodeRepository = (*EpisodeRepository)(nil)

// NewEpisodeRepository creates a new EpisodeRepository.
func NewEpisodeRepository(backend *Backend) (*EpisodeRepository, error) {
	idSeq, err := backend.GetSequence(episodeIDSeq)
	if err != nil {
		return nil, err
	}

	return &EpisodeRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *EpisodeRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *EpisodeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// CreateEpisode stores a new episode with status pending.
func (r *EpisodeRepository) CreateEpisode(ctx context.Context, episode *core.Episode) (*core.Episode, error) {
	if episode.Id == 0 {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return nil, err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			if nextID, err = r.idSeq.Next(); err != nil {
				return nil, err
			}
		}
		episode.Id = core.ID(nextID)
	}
	episode.Status = core.EpisodeStatusPending
	episode.InsertedAt = time.Now().UTC()

	if err := core.ValidateEpisode(episode); err != nil {
		return nil, err
	}

	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeEpisodeKey(episode.Id)
		existing, err := readEpisode(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}
		return tx.Set(key, storage.MarshalEpisode(episode))
	})
	if err != nil {
		return nil, err
	}
	return episode, nil
}

// GetEpisode retrieves an episode by ID.
func (r *EpisodeRepository) GetEpisode(ctx context.Context, id core.ID) (*core.Episode, error) {
	var result *core.Episode
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readEpisode(tx, makeEpisodeKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// UpdateEpisodeStatus sets the status of an episode.
func (r *EpisodeRepository) UpdateEpisodeStatus(ctx context.Context, id core.ID, status core.EpisodeStatus) (*core.Episode, error) {
	if err := core.ValidateEpisodeStatus(status); err != nil {
		return nil, err
	}

	var result *core.Episode
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeEpisodeKey(id)
		episode, err := readEpisode(tx, key)
		if err != nil {
			return err
		}
		if episode == nil {
			return storage.ErrNotFound
		}

		episode.Status = status
		if status == core.EpisodeStatusComplete || status == core.EpisodeStatusFailed {
			episode.ProcessedAt = time.Now().UTC()
		}
		result = episode
		return tx.Set(key, storage.MarshalEpisode(episode))
	})
	return result, err
}

// ListEpisodes returns every episode ordered by ID.
func (r *EpisodeRepository) ListEpisodes(ctx context.Context) ([]*core.Episode, error) {
	var results []*core.Episode
	err := r.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeScanPrefix(episodePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var episode *core.Episode
			err := iter.Item().Value(func(val []byte) error {
				var err error
				episode, err = storage.UnmarshalEpisode(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, episode)
		}
		return nil
	})
	return results, err
}

// readEpisode reads an episode from the transaction.
// Returns nil, nil if the key does not exist.
func readEpisode(tx *badger.Txn, key []byte) (*core.Episode, error) {
	return readRecord(tx, key, storage.UnmarshalEpisode)
}
