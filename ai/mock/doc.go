// Package mock provides test double implementations of the ai interfaces.
//
// This package contains mock implementations of ai.Backend and ai.Provider
// for use in unit tests. The mocks allow tests to run without external model
// services and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	text, err := mockProvider.Extraction().Generate(ctx, ai.TextPart("prompt"))
//
//	// Custom behavior injection
//	backend := mock.NewMockBackend().
//	    WithGenerateFunc(func(ctx context.Context, parts ...ai.Part) (string, error) {
//	        return `{"entities":[{"name":"Alice","type":"Person"}]}`, nil
//	    })
//
//	// Check call counts
//	count := backend.GenerateCount()
//
// # Default Behavior
//
//   - Upload returns a fresh handle and records it as outstanding
//   - Generate returns an empty fragment document
//   - Release removes the handle from the outstanding set
package mock
