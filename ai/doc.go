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


// Package ai provides the model abstractions used by podmap.
//
// The package defines two interfaces:
//
//   - Backend: uploads media and generates text from mixed text/media parts
//   - Provider: hands out the extraction and refinement backends
//
// # Implementation Packages
//
//   - ai/llm: a Backend over any langchaingo llms.Model
//   - ai/googleai: Gemini provider; uploaded audio is sent inline
//   - ai/openai: provider for OpenAI-compatible hosts
//   - ai/mock: test doubles for unit testing without external services
//
// # Constructor Return Type Pattern
//
// Public provider constructors (googleai.NewProvider, openai.NewProvider)
// return the ai.Provider interface. Test constructors in ai/mock return
// concrete types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithAPIKey(key))
//	provider, err := googleai.NewProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	backend := provider.Extraction()
//	h, err := backend.Upload(ctx, mp3, "audio/mpeg", "segment-0")
//	text, err := backend.Generate(ctx, ai.TextPart(prompt), ai.FilePart(h))
package ai
