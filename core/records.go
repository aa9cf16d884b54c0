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


package core

import (
	"strconv"
	"strings"
	"time"
)

// EpisodeStatus tracks where an episode is in its processing lifecycle.
type EpisodeStatus int

const (
	// EpisodeStatusPending is assigned when an episode is created.
	EpisodeStatusPending EpisodeStatus = iota + 1
	// EpisodeStatusProcessing is set while the pipeline runs.
	EpisodeStatusProcessing
	// EpisodeStatusComplete is set once the analysis has been persisted.
	EpisodeStatusComplete
	// EpisodeStatusFailed is set when the audio could not be decoded or persisted.
	EpisodeStatusFailed
)

func (s EpisodeStatus) String() string {
	switch s {
	case EpisodeStatusPending:
		return "pending"
	case EpisodeStatusProcessing:
		return "processing"
	case EpisodeStatusComplete:
		return "complete"
	case EpisodeStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Episode is a single piece of long-form audio known to the store.
type Episode struct {
	Id          ID
	Title       string
	URL         string
	Status      EpisodeStatus
	InsertedAt  time.Time
	ProcessedAt time.Time // Zero until processing finishes
}

// EntityRecord is a stored entity. Name is unique across the whole store.
type EntityRecord struct {
	Id         ID
	Name       string
	Type       EntityType
	Summary    string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// CanonicalName is the uniqueness key for entities. Surrounding whitespace is
// not significant; case is.
func CanonicalName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// EntityIDFor returns the content-derived ID for an entity name.
func EntityIDFor(name string) ID {
	return IDFromContent("entity:" + CanonicalName(name))
}

// SourceRecord attributes graph content to a time range of an episode.
type SourceRecord struct {
	Id        ID
	EpisodeID ID
	Start     time.Duration
	End       time.Duration
}

// SourceIDFor returns the content-derived ID for an episode time range, so
// persisting the same range twice reuses one source record.
func SourceIDFor(episodeID ID, start, end time.Duration) ID {
	return IDFromContent("source:" + strconv.FormatUint(uint64(episodeID), 10) +
		":" + strconv.FormatInt(int64(start), 10) +
		":" + strconv.FormatInt(int64(end), 10))
}

// RelationshipRecord is a stored edge between two entities.
type RelationshipRecord struct {
	Id             ID
	SourceEntityID ID
	TargetEntityID ID
	Description    string
	SourceID       ID
}

// RelationshipIDFor derives a relationship ID from its endpoints, text and source.
func RelationshipIDFor(sourceEntity, targetEntity ID, description string, sourceID ID) ID {
	return IDFromContent("rel:" + strconv.FormatUint(uint64(sourceEntity), 10) +
		":" + strconv.FormatUint(uint64(targetEntity), 10) +
		":" + strconv.FormatUint(uint64(sourceID), 10) +
		":" + description)
}

// DetailRecord is a stored fact about an entity.
type DetailRecord struct {
	Id       ID
	EntityID ID
	Text     string
	SourceID ID
}

// DetailIDFor derives a detail ID from its entity, text and source.
func DetailIDFor(entityID ID, text string, sourceID ID) ID {
	return IDFromContent("detail:" + strconv.FormatUint(uint64(entityID), 10) +
		":" + strconv.FormatUint(uint64(sourceID), 10) +
		":" + text)
}

// GraphNode is an entity as presented in a graph view.
type GraphNode struct {
	Id      ID
	Name    string
	Type    EntityType
	Summary string
}

// GraphEdge is a relationship as presented in a graph view.
type GraphEdge struct {
	Source      ID
	Target      ID
	Description string
}

// GraphView is the node/edge graph for one episode.
type GraphView struct {
	EpisodeID ID
	Nodes     []GraphNode
	Edges     []GraphEdge
}

// DetailView is a detail with the episode time range it came from.
type DetailView struct {
	Text      string
	EpisodeID ID
	Start     time.Duration
	End       time.Duration
}

// EntityDetailView is an entity together with every detail recorded about it.
type EntityDetailView struct {
	Entity  *EntityRecord
	Details []DetailView
}
