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

// Package refinement reduces per-segment fragments to one canonical fragment.
//
// Union concatenates fragments without deduplication. Refiner sends that
// union to a model with instructions to merge same-referent entities and
// consolidate relationships and details, and falls back to the union when the
// model cannot deliver.
package refinement
