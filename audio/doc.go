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

// Package audio splits long-form audio into fixed-duration encoded segments.
//
// A Segmenter spools the input to a run-scoped temporary directory, probes its
// duration, and encodes one mp3 file per window:
//
//	[0, C), [C, 2C), ..., [(N-1)C, D)    where N = ceil(D/C)
//
// Windows have no gaps and no overlap; the last one may be shorter than C.
// The returned SegmentSet owns every file it references and must be released
// by the caller.
package audio
