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

import "errors"

// Pipeline errors
var (
	// ErrDecodeFailure indicates the source audio could not be decoded or
	// segmented. It is the only error a pipeline run returns.
	ErrDecodeFailure = errors.New("audio decode failure")
)

// Domain validation errors
var (
	// ErrInvalidEntity indicates an EntityRecord failed validation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidEpisode indicates an Episode failed validation.
	ErrInvalidEpisode = errors.New("invalid episode")

	// ErrInvalidTimeRange indicates a source time range is negative or reversed.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrEmptyEntityName indicates the entity Name field is empty.
	ErrEmptyEntityName = errors.New("entity name cannot be empty")

	// ErrInvalidEntityType indicates an EntityType outside the known set.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrInvalidEpisodeStatus indicates an invalid EpisodeStatus value.
	ErrInvalidEpisodeStatus = errors.New("invalid episode status")
)
