package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/storage"
)

// GetOrCreateEntity finds or creates an entity by canonical name.
func (r *GraphRepository) GetOrCreateEntity(ctx context.Context, name string, entityType core.EntityType, summary string) (*core.EntityRecord, error) {
	candidate := newEntityCandidate(name, entityType, summary)
	if err := core.ValidateEntity(&candidate); err != nil {
		return nil, err
	}

	var result *core.EntityRecord
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		var err error
		result, _, err = getOrCreateEntity(tx, candidate)
		return err
	})
	return result, err
}

// GetEntity retrieves a single entity by ID.
func (r *GraphRepository) GetEntity(ctx context.Context, id core.ID) (*core.EntityRecord, error) {
	var result *core.EntityRecord
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeEntityKey(id), storage.UnmarshalEntity)
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

// FindEntityByName finds an entity by canonical name.
func (r *GraphRepository) FindEntityByName(ctx context.Context, name string) (*core.EntityRecord, error) {
	var result *core.EntityRecord
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = findEntityByName(tx, name)
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

// newEntityCandidate builds the record that would be inserted for a name.
// Types outside the known set fall back to Concept.
func newEntityCandidate(name string, entityType core.EntityType, summary string) core.EntityRecord {
	canonical := core.CanonicalName(name)
	return core.EntityRecord{
		Id:      core.EntityIDFor(canonical),
		Name:    canonical,
		Type:    core.ParseEntityType(string(entityType)),
		Summary: summary,
	}
}

// getOrCreateEntity resolves candidate against the name index inside tx.
// The name index key is read before any write, so two transactions racing to
// create the same name conflict at commit and one of them is re-run.
// Reports whether the entity was created.
func getOrCreateEntity(tx *badger.Txn, candidate core.EntityRecord) (*core.EntityRecord, bool, error) {
	existing, err := findEntityByName(tx, candidate.Name)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	if existing != nil {
		if existing.Summary == "" && candidate.Summary != "" {
			existing.Summary = candidate.Summary
			existing.UpdatedAt = now
			if err := tx.Set(makeEntityKey(existing.Id), storage.MarshalEntity(existing)); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	}

	entity := candidate
	entity.InsertedAt = now
	entity.UpdatedAt = now
	if err := tx.Set(makeEntityKey(entity.Id), storage.MarshalEntity(&entity)); err != nil {
		return nil, false, err
	}
	if err := tx.Set(makeEntityNameKey(entity.Name), storage.MarshalID(entity.Id)); err != nil {
		return nil, false, err
	}
	return &entity, true, nil
}

// findEntityByName looks an entity up through the name index.
// Returns nil, nil if no entity has that name.
func findEntityByName(tx *badger.Txn, name string) (*core.EntityRecord, error) {
	item, err := tx.Get(makeEntityNameKey(name))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entityID core.ID
	err = item.Value(func(val []byte) error {
		entityID, err = storage.UnmarshalID(val)
		return err
	})
	if err != nil {
		return nil, err
	}

	return readRecord(tx, makeEntityKey(entityID), storage.UnmarshalEntity)
}

// readRecord reads and decodes a single value from the transaction.
// Returns nil, nil if the key does not exist.
func readRecord[T any](tx *badger.Txn, key []byte, decode func([]byte) (*T, error)) (*T, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *T
	err = item.Value(func(val []byte) error {
		var err error
		record, err = decode(val)
		return err
	})
	return record, err
}

// scanMembers returns the member IDs of every pair key under prefix:owner.
func scanMembers(tx *badger.Txn, prefix string, owner core.ID) []core.ID {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = makeIDKey(prefix, owner)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		ids = append(ids, pairMember(iter.Item().Key()))
	}
	return ids
}
