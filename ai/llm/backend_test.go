package llm

import (
	"context"
	"testing"

	"github.com/poiesic/podmap/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms/fake"
)

func TestBackend_UploadGenerateRelease(t *testing.T) {
	ctx := context.Background()
	backend := New(fake.NewFakeLLM([]string{`{"entities":[]}`}))

	h, err := backend.Upload(ctx, []byte("ID3"), "audio/mpeg", "episode-0")
	require.NoError(t, err)
	assert.NotEmpty(t, h.Name)
	assert.Equal(t, "audio/mpeg", h.MIMEType)
	assert.Equal(t, "episode-0", h.DisplayName)
	assert.Equal(t, 1, backend.Pending())

	out, err := backend.Generate(ctx, ai.TextPart("extract"), ai.FilePart(h))
	require.NoError(t, err)
	assert.Equal(t, `{"entities":[]}`, out)

	require.NoError(t, backend.Release(ctx, h))
	assert.Equal(t, 0, backend.Pending())

	// Releasing twice is harmless.
	require.NoError(t, backend.Release(ctx, h))
}

func TestBackend_UniqueHandles(t *testing.T) {
	ctx := context.Background()
	backend := New(fake.NewFakeLLM([]string{"ok"}))

	h1, err := backend.Upload(ctx, []byte("a"), "audio/mpeg", "same")
	require.NoError(t, err)
	h2, err := backend.Upload(ctx, []byte("b"), "audio/mpeg", "same")
	require.NoError(t, err)
	assert.NotEqual(t, h1.Name, h2.Name)
}

func TestBackend_GenerateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no parts", func(t *testing.T) {
		backend := New(fake.NewFakeLLM([]string{"ok"}))
		_, err := backend.Generate(ctx)
		assert.ErrorIs(t, err, ErrEmptyRequest)
	})

	t.Run("released handle", func(t *testing.T) {
		backend := New(fake.NewFakeLLM([]string{"ok"}))
		h, err := backend.Upload(ctx, []byte("a"), "audio/mpeg", "seg")
		require.NoError(t, err)
		require.NoError(t, backend.Release(ctx, h))

		_, err = backend.Generate(ctx, ai.FilePart(h))
		assert.ErrorIs(t, err, ErrUnknownHandle)
	})

	t.Run("model error", func(t *testing.T) {
		backend := New(fake.NewFakeLLM(nil))
		_, err := backend.Generate(ctx, ai.TextPart("hello"))
		assert.Error(t, err)
	})
}

func TestBackend_UploadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := New(fake.NewFakeLLM([]string{"ok"}))
	_, err := backend.Upload(ctx, []byte("a"), "audio/mpeg", "seg")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, backend.Pending())
}
