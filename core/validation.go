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
	"fmt"
	"slices"
	"time"
)

// ValidateEntity validates an EntityRecord according to domain rules.
//
// Validation rules:
//   - Name must not be empty after canonicalization
//   - Type must be one of EntityTypes
//
// NOT validated:
//   - Summary (optional, may be filled in later)
//   - ID (derived from the name on insert)
func ValidateEntity(entity *EntityRecord) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if CanonicalName(entity.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyEntityName)
	}

	if err := ValidateEntityType(entity.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	return nil
}

// ValidateEntityType validates that an EntityType is one of the known types.
func ValidateEntityType(t EntityType) error {
	if !slices.Contains(EntityTypes, t) {
		return fmt.Errorf("%w: value %q", ErrInvalidEntityType, t)
	}
	return nil
}

// ValidateEpisode validates an Episode according to domain rules.
func ValidateEpisode(episode *Episode) error {
	if episode == nil {
		return fmt.Errorf("%w: episode is nil", ErrInvalidEpisode)
	}

	if err := ValidateEpisodeStatus(episode.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEpisode, err)
	}

	return nil
}

// ValidateEpisodeStatus validates that an EpisodeStatus has a valid value.
func ValidateEpisodeStatus(status EpisodeStatus) error {
	if status < EpisodeStatusPending || status > EpisodeStatusFailed {
		return fmt.Errorf("%w: value %d", ErrInvalidEpisodeStatus, status)
	}
	return nil
}

// ValidateTimeRange checks that start is non-negative and end is not before start.
// An empty range is allowed so that zero-length audio can still be recorded.
func ValidateTimeRange(start, end time.Duration) error {
	if start < 0 {
		return fmt.Errorf("%w: start %s is negative", ErrInvalidTimeRange, start)
	}
	if end < start {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidTimeRange, end, start)
	}
	return nil
}
