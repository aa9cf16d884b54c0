package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/podmap/ai"
)

// EmptyFragmentJSON is the default Generate response.
const EmptyFragmentJSON = `{"entities":[],"relationships":[],"details":[]}`

// MockBackend is a test double for ai.Backend.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type MockBackend struct {
	// UploadFunc is called by Upload if set.
	UploadFunc func(ctx context.Context, data []byte, mimeType, displayName string) (ai.Handle, error)

	// GenerateFunc is called by Generate if set.
	// If nil, returns EmptyFragmentJSON.
	GenerateFunc func(ctx context.Context, parts ...ai.Part) (string, error)

	// ReleaseFunc is called by Release if set.
	ReleaseFunc func(ctx context.Context, h ai.Handle) error

	mu            sync.Mutex
	uploadCount   int
	generateCount int
	releaseCount  int
	nextID        int
	outstanding   map[string]struct{}
	prompts       [][]ai.Part
}

var _ ai.Backend = (*MockBackend)(nil)

// NewMockBackend creates a mock backend with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		outstanding: make(map[string]struct{}),
	}
}

// WithUploadFunc sets a custom upload function and returns the mock for chaining.
func (m *MockBackend) WithUploadFunc(fn func(ctx context.Context, data []byte, mimeType, displayName string) (ai.Handle, error)) *MockBackend {
	m.UploadFunc = fn
	return m
}

// WithGenerateFunc sets a custom generate function and returns the mock for chaining.
func (m *MockBackend) WithGenerateFunc(fn func(ctx context.Context, parts ...ai.Part) (string, error)) *MockBackend {
	m.GenerateFunc = fn
	return m
}

// WithReleaseFunc sets a custom release function and returns the mock for chaining.
func (m *MockBackend) WithReleaseFunc(fn func(ctx context.Context, h ai.Handle) error) *MockBackend {
	m.ReleaseFunc = fn
	return m
}

// Upload records the call and returns a new handle.
func (m *MockBackend) Upload(ctx context.Context, data []byte, mimeType, displayName string) (ai.Handle, error) {
	m.mu.Lock()
	m.uploadCount++
	m.nextID++
	id := m.nextID
	m.mu.Unlock()

	var h ai.Handle
	if m.UploadFunc != nil {
		var err error
		h, err = m.UploadFunc(ctx, data, mimeType, displayName)
		if err != nil {
			return ai.Handle{}, err
		}
	} else {
		h = ai.Handle{
			Name:        fmt.Sprintf("files/mock-%d", id),
			MIMEType:    mimeType,
			DisplayName: displayName,
		}
	}

	m.mu.Lock()
	m.outstanding[h.Name] = struct{}{}
	m.mu.Unlock()
	return h, nil
}

// Generate records the call and its parts.
func (m *MockBackend) Generate(ctx context.Context, parts ...ai.Part) (string, error) {
	m.mu.Lock()
	m.generateCount++
	m.prompts = append(m.prompts, parts)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, parts...)
	}
	return EmptyFragmentJSON, nil
}

// Release records the call and forgets the handle.
func (m *MockBackend) Release(ctx context.Context, h ai.Handle) error {
	m.mu.Lock()
	m.releaseCount++
	delete(m.outstanding, h.Name)
	m.mu.Unlock()

	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, h)
	}
	return nil
}

// UploadCount returns the number of times Upload was called.
func (m *MockBackend) UploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploadCount
}

// GenerateCount returns the number of times Generate was called.
func (m *MockBackend) GenerateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCount
}

// ReleaseCount returns the number of times Release was called.
func (m *MockBackend) ReleaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseCount
}

// Outstanding returns the number of successful uploads not yet released.
func (m *MockBackend) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outstanding)
}

// Prompts returns the parts of every Generate call, in call order.
func (m *MockBackend) Prompts() [][]ai.Part {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]ai.Part, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Reset clears the call counts and custom functions.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCount = 0
	m.generateCount = 0
	m.releaseCount = 0
	m.outstanding = make(map[string]struct{})
	m.prompts = nil
	m.UploadFunc = nil
	m.GenerateFunc = nil
	m.ReleaseFunc = nil
}
