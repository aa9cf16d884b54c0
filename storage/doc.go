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


// Package storage provides the storage abstraction layer for podmap.
//
// This package defines repository interfaces that decouple the knowledge graph
// store from the extraction pipeline. The pipeline never touches storage; it
// hands a finished core.EpisodeAnalysis to a GraphRepository.
//
// # Architecture
//
//   - Repository: transaction support and lifecycle shared by all repositories
//   - EpisodeRepository: episodes and their processing status
//   - GraphRepository: entities, sources, relationships and details, plus the
//     graph and entity-detail read views
//
// # Entity Identity
//
// Entities are keyed by canonical name (core.CanonicalName) across the whole
// store. GetOrCreateEntity is the only way an entity comes into existence, and
// SaveAnalysis routes every fragment entity through it, so persisting the same
// analysis twice never creates a second row for a name.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	graph := badger.NewGraphRepository(backend)
//	result, err := graph.SaveAnalysis(ctx, analysis)
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
