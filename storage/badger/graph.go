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


package badger

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/storage"
)

var errNilAnalysis = errors.New("analysis is nil")

// GraphRepository implements storage.GraphRepository for BadgerDB.
type GraphRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(backend *Backend) *GraphRepository {
	return &GraphRepository{
		backend: backend,
		logger:  slog.Default().With("component", "graph-repository"),
	}
}

// Close releases resources. GraphRepository has no resources to release.
func (r *GraphRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *GraphRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveAnalysis persists one episode analysis in a single transaction.
func (r *GraphRepository) SaveAnalysis(ctx context.Context, analysis *core.EpisodeAnalysis) (*storage.SaveResult, error) {
	if analysis == nil {
		return nil, errNilAnalysis
	}
	if err := core.ValidateTimeRange(analysis.Start, analysis.End); err != nil {
		return nil, err
	}

	var result storage.SaveResult
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		// Update may run this more than once.
		result = storage.SaveResult{}
		return r.saveAnalysis(tx, analysis, &result)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("saved analysis",
		"episode", analysis.EpisodeID,
		"entities", result.Entities,
		"relationships", result.Relationships,
		"details", result.Details,
		"skippedRelationships", result.SkippedRelationships,
		"skippedDetails", result.SkippedDetails)
	return &result, nil
}

func (r *GraphRepository) saveAnalysis(tx *badger.Txn, analysis *core.EpisodeAnalysis, result *storage.SaveResult) error {
	source := &core.SourceRecord{
		Id:        core.SourceIDFor(analysis.EpisodeID, analysis.Start, analysis.End),
		EpisodeID: analysis.EpisodeID,
		Start:     analysis.Start,
		End:       analysis.End,
	}
	result.SourceID = source.Id
	if err := tx.Set(makeSourceKey(source.Id), storage.MarshalSource(source)); err != nil {
		return err
	}
	if err := tx.Set(makePairKey(episodeSourcePrefix, source.EpisodeID, source.Id), []byte{}); err != nil {
		return err
	}

	fragment := analysis.Fragment
	resolved := make(map[string]core.ID, len(fragment.Entities))
	for _, e := range fragment.Entities {
		candidate := newEntityCandidate(e.Name, e.Type, e.Summary)
		if err := core.ValidateEntity(&candidate); err != nil {
			r.logger.Warn("skipping invalid entity", "name", e.Name, "err", err)
			continue
		}
		entity, _, err := getOrCreateEntity(tx, candidate)
		if err != nil {
			return err
		}
		if _, seen := resolved[entity.Name]; !seen {
			result.Entities++
		}
		resolved[entity.Name] = entity.Id
		if err := tx.Set(makePairKey(sourceEntityPrefix, source.Id, entity.Id), []byte{}); err != nil {
			return err
		}
	}

	// Names not defined by this fragment may still refer to entities stored
	// by earlier episodes.
	resolve := func(name string) (core.ID, bool, error) {
		canonical := core.CanonicalName(name)
		if id, ok := resolved[canonical]; ok {
			return id, true, nil
		}
		entity, err := findEntityByName(tx, canonical)
		if err != nil || entity == nil {
			return 0, false, err
		}
		resolved[canonical] = entity.Id
		return entity.Id, true, nil
	}

	for _, rel := range fragment.Relationships {
		sourceID, okSource, err := resolve(rel.Source)
		if err != nil {
			return err
		}
		targetID, okTarget, err := resolve(rel.Target)
		if err != nil {
			return err
		}
		if !okSource || !okTarget {
			result.SkippedRelationships++
			continue
		}

		record := &core.RelationshipRecord{
			Id:             core.RelationshipIDFor(sourceID, targetID, rel.Description, source.Id),
			SourceEntityID: sourceID,
			TargetEntityID: targetID,
			Description:    rel.Description,
			SourceID:       source.Id,
		}
		if err := tx.Set(makeRelationshipKey(record.Id), storage.MarshalRelationship(record)); err != nil {
			return err
		}
		if err := tx.Set(makePairKey(sourceRelPrefix, source.Id, record.Id), []byte{}); err != nil {
			return err
		}
		result.Relationships++
	}

	for _, d := range fragment.Details {
		entityID, ok, err := resolve(d.Entity)
		if err != nil {
			return err
		}
		if !ok || d.Text == "" {
			result.SkippedDetails++
			continue
		}

		record := &core.DetailRecord{
			Id:       core.DetailIDFor(entityID, d.Text, source.Id),
			EntityID: entityID,
			Text:     d.Text,
			SourceID: source.Id,
		}
		if err := tx.Set(makeDetailKey(record.Id), storage.MarshalDetail(record)); err != nil {
			return err
		}
		if err := tx.Set(makePairKey(sourceDetailPrefix, source.Id, record.Id), []byte{}); err != nil {
			return err
		}
		if err := tx.Set(makePairKey(entityDetailPrefix, entityID, record.Id), []byte{}); err != nil {
			return err
		}
		result.Details++
	}

	return nil
}

// EpisodeGraph returns the nodes and edges attributed to an episode.
func (r *GraphRepository) EpisodeGraph(ctx context.Context, episodeID core.ID) (*core.GraphView, error) {
	view := &core.GraphView{
		EpisodeID: episodeID,
		Nodes:     []core.GraphNode{},
		Edges:     []core.GraphEdge{},
	}

	err := r.backend.View(func(tx *badger.Txn) error {
		nodeIDs := make(map[core.ID]struct{})
		for _, sourceID := range scanMembers(tx, episodeSourcePrefix, episodeID) {
			for _, entityID := range scanMembers(tx, sourceEntityPrefix, sourceID) {
				nodeIDs[entityID] = struct{}{}
			}
			for _, detailID := range scanMembers(tx, sourceDetailPrefix, sourceID) {
				detail, err := readRecord(tx, makeDetailKey(detailID), storage.UnmarshalDetail)
				if err != nil {
					return err
				}
				if detail != nil {
					nodeIDs[detail.EntityID] = struct{}{}
				}
			}
			for _, relID := range scanMembers(tx, sourceRelPrefix, sourceID) {
				rel, err := readRecord(tx, makeRelationshipKey(relID), storage.UnmarshalRelationship)
				if err != nil {
					return err
				}
				if rel == nil {
					continue
				}
				nodeIDs[rel.SourceEntityID] = struct{}{}
				nodeIDs[rel.TargetEntityID] = struct{}{}
				view.Edges = append(view.Edges, core.GraphEdge{
					Source:      rel.SourceEntityID,
					Target:      rel.TargetEntityID,
					Description: rel.Description,
				})
			}
		}

		for id := range nodeIDs {
			entity, err := readRecord(tx, makeEntityKey(id), storage.UnmarshalEntity)
			if err != nil {
				return err
			}
			if entity == nil {
				continue
			}
			view.Nodes = append(view.Nodes, core.GraphNode{
				Id:      entity.Id,
				Name:    entity.Name,
				Type:    entity.Type,
				Summary: entity.Summary,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(view.Nodes, func(a, b core.GraphNode) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return view, nil
}

// EntityDetails returns an entity and every detail recorded about it.
func (r *GraphRepository) EntityDetails(ctx context.Context, entityID core.ID) (*core.EntityDetailView, error) {
	var view *core.EntityDetailView
	err := r.backend.View(func(tx *badger.Txn) error {
		entity, err := readRecord(tx, makeEntityKey(entityID), storage.UnmarshalEntity)
		if err != nil {
			return err
		}
		if entity == nil {
			return storage.ErrNotFound
		}

		view = &core.EntityDetailView{Entity: entity, Details: []core.DetailView{}}
		for _, detailID := range scanMembers(tx, entityDetailPrefix, entityID) {
			detail, err := readRecord(tx, makeDetailKey(detailID), storage.UnmarshalDetail)
			if err != nil {
				return err
			}
			if detail == nil {
				continue
			}
			source, err := readRecord(tx, makeSourceKey(detail.SourceID), storage.UnmarshalSource)
			if err != nil {
				return err
			}
			dv := core.DetailView{Text: detail.Text}
			if source != nil {
				dv.EpisodeID = source.EpisodeID
				dv.Start = source.Start
				dv.End = source.End
			}
			view.Details = append(view.Details, dv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(view.Details, func(a, b core.DetailView) int {
		if c := cmp.Compare(a.EpisodeID, b.EpisodeID); c != 0 {
			return c
		}
		return cmp.Compare(a.Start, b.Start)
	})
	return view, nil
}
