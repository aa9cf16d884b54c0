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


package storage

import (
	"fmt"

	"github.com/poiesic/podmap/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalEpisode serializes an Episode to bytes.
func MarshalEpisode(episode *core.Episode) []byte {
	buf := make([]byte, core.EpisodeMUS.Size(*episode))
	core.EpisodeMUS.Marshal(*episode, buf)
	return buf
}

// UnmarshalEpisode deserializes an Episode from bytes.
func UnmarshalEpisode(data []byte) (*core.Episode, error) {
	episode, _, err := core.EpisodeMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &episode, nil
}

// MarshalEntity serializes an EntityRecord to bytes.
func MarshalEntity(entity *core.EntityRecord) []byte {
	buf := make([]byte, core.EntityRecordMUS.Size(*entity))
	core.EntityRecordMUS.Marshal(*entity, buf)
	return buf
}

// UnmarshalEntity deserializes an EntityRecord from bytes.
func UnmarshalEntity(data []byte) (*core.EntityRecord, error) {
	entity, _, err := core.EntityRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entity, nil
}

// MarshalSource serializes a SourceRecord to bytes.
func MarshalSource(source *core.SourceRecord) []byte {
	buf := make([]byte, core.SourceRecordMUS.Size(*source))
	core.SourceRecordMUS.Marshal(*source, buf)
	return buf
}

// UnmarshalSource deserializes a SourceRecord from bytes.
func UnmarshalSource(data []byte) (*core.SourceRecord, error) {
	source, _, err := core.SourceRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &source, nil
}

// MarshalRelationship serializes a RelationshipRecord to bytes.
func MarshalRelationship(rel *core.RelationshipRecord) []byte {
	buf := make([]byte, core.RelationshipRecordMUS.Size(*rel))
	core.RelationshipRecordMUS.Marshal(*rel, buf)
	return buf
}

// UnmarshalRelationship deserializes a RelationshipRecord from bytes.
func UnmarshalRelationship(data []byte) (*core.RelationshipRecord, error) {
	rel, _, err := core.RelationshipRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &rel, nil
}

// MarshalDetail serializes a DetailRecord to bytes.
func MarshalDetail(detail *core.DetailRecord) []byte {
	buf := make([]byte, core.DetailRecordMUS.Size(*detail))
	core.DetailRecordMUS.Marshal(*detail, buf)
	return buf
}

// UnmarshalDetail deserializes a DetailRecord from bytes.
func UnmarshalDetail(data []byte) (*core.DetailRecord, error) {
	detail, _, err := core.DetailRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &detail, nil
}
