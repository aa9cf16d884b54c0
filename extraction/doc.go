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

// Package extraction turns one audio segment into a graph fragment with a
// single model call.
//
// Extraction never fails from the caller's point of view: an upload error,
// a generation error, a timeout or an unparseable response all degrade to an
// empty fragment. The Outcome returned by ExtractWithOutcome says which of
// these happened.
//
// The parsing helpers (StripFences, ParseFragment, ParseResponse) and the
// fragment JSON schema are shared with the refinement package.
package extraction
