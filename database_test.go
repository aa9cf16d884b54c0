package podmap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/podmap/ai"
	"github.com/poiesic/podmap/ai/mock"
	"github.com/poiesic/podmap/audio"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/ingestion"
	"github.com/poiesic/podmap/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscoder struct {
	duration time.Duration
	probeErr error
}

func (f *fakeTranscoder) Probe(ctx context.Context, path string) (time.Duration, error) {
	return f.duration, f.probeErr
}

func (f *fakeTranscoder) Encode(ctx context.Context, src string, w audio.Window, dst string) error {
	return os.WriteFile(dst, []byte(w.String()), 0644)
}

const aliceAndBob = `{
	"entities": [
		{"name": "Alice", "type": "Person", "summary": "Host of the show"},
		{"name": "Bob", "type": "Person"}
	],
	"relationships": [
		{"source": "Alice", "target": "Bob", "description": "interviews"},
		{"source": "Alice", "target": "Carol", "description": "mentions"}
	],
	"details": [
		{"entity": "Bob", "detail": "Wrote a book about tides"}
	]
}`

func newTestDatabase(t *testing.T, provider ai.Provider, tr audio.Transcoder) *Database {
	t.Helper()
	segmenter, err := audio.NewSegmenter(audio.WithTranscoder(tr), audio.WithTempDir(t.TempDir()))
	require.NoError(t, err)

	db, err := NewDatabase(context.Background(), "",
		WithInMemory(),
		WithProvider(provider),
		WithPipelineOptions(ingestion.WithSegmenter(segmenter)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(ctx, tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.EpisodeRepository())
		assert.NotNil(t, db.GraphRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.pipeline)
		assert.NotNil(t, db.logger)
	})

	t.Run("openai provider from config", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithProvider(ai.ProviderOpenAI), ai.WithHost("http://localhost:11434"))
		db, err := NewDatabase(ctx, "", WithInMemory(), WithAIConfig(cfg))
		require.NoError(t, err)
		defer db.Close()
		assert.NotNil(t, db.provider)
	})

	t.Run("invalid AI config", func(t *testing.T) {
		// The default googleai config has no API key.
		db, err := NewDatabase(ctx, "", WithInMemory())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey is required")
		assert.Nil(t, db)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		provider := mock.NewMockProviderWithBackends(mock.NewMockBackend(), mock.NewMockBackend())
		db, err := NewDatabase(ctx, tmpFile, WithProvider(provider))
		assert.Error(t, err)
		assert.Nil(t, db)
		assert.True(t, provider.Closed())
	})

	t.Run("invalid pipeline option", func(t *testing.T) {
		db, err := NewDatabase(ctx, "", WithInMemory(),
			WithProvider(mock.NewMockProvider()),
			WithPipelineOptions(ingestion.WithCallTimeout(-time.Second)))
		assert.ErrorIs(t, err, ingestion.ErrInvalidCallTimeout)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	provider := mock.NewMockProviderWithBackends(mock.NewMockBackend(), mock.NewMockBackend())
	db, err := NewDatabase(context.Background(), t.TempDir(), WithProvider(provider))
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
	assert.True(t, provider.Closed())
}

func TestDatabase_ProcessEpisode(t *testing.T) {
	ctx := context.Background()

	ext := mock.NewMockBackend().WithGenerateFunc(func(ctx context.Context, parts ...ai.Part) (string, error) {
		return "```json\n" + aliceAndBob + "\n```", nil
	})
	ref := mock.NewMockBackend().WithGenerateFunc(func(ctx context.Context, parts ...ai.Part) (string, error) {
		return aliceAndBob, nil
	})
	db := newTestDatabase(t, mock.NewMockProviderWithBackends(ext, ref), &fakeTranscoder{duration: 8 * time.Minute})

	episode, err := db.CreateEpisode(ctx, "Tides", "https://example.com/tides.mp3")
	require.NoError(t, err)
	assert.Equal(t, core.EpisodeStatusPending, episode.Status)

	analysis, result, err := db.ProcessEpisode(ctx, episode.Id, strings.NewReader("mp3"))
	require.NoError(t, err)
	assert.Equal(t, 8*time.Minute, analysis.End)
	assert.Equal(t, 2, analysis.Report.Segments)

	assert.Equal(t, 2, result.Entities)
	assert.Equal(t, 1, result.Relationships)
	assert.Equal(t, 1, result.SkippedRelationships)
	assert.Equal(t, 1, result.Details)

	stored, err := db.EpisodeRepository().GetEpisode(ctx, episode.Id)
	require.NoError(t, err)
	assert.Equal(t, core.EpisodeStatusComplete, stored.Status)
	assert.False(t, stored.ProcessedAt.IsZero())

	graph, err := db.GraphRepository().EpisodeGraph(ctx, episode.Id)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)
	assert.Equal(t, "Alice", graph.Nodes[0].Name)
	assert.Equal(t, "Bob", graph.Nodes[1].Name)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "interviews", graph.Edges[0].Description)

	bob, err := db.GraphRepository().FindEntityByName(ctx, "Bob")
	require.NoError(t, err)
	details, err := db.GraphRepository().EntityDetails(ctx, bob.Id)
	require.NoError(t, err)
	require.Len(t, details.Details, 1)
	assert.Equal(t, episode.Id, details.Details[0].EpisodeID)
	assert.Equal(t, 8*time.Minute, details.Details[0].End)

	t.Run("reprocessing does not duplicate entities", func(t *testing.T) {
		_, _, err := db.ProcessEpisode(ctx, episode.Id, strings.NewReader("mp3"))
		require.NoError(t, err)

		graph, err := db.GraphRepository().EpisodeGraph(ctx, episode.Id)
		require.NoError(t, err)
		assert.Len(t, graph.Nodes, 2)
		assert.Len(t, graph.Edges, 1)

		again, err := db.GraphRepository().FindEntityByName(ctx, "Bob")
		require.NoError(t, err)
		assert.Equal(t, bob.Id, again.Id)
	})
}

// statusFailingRepository fails every move to one status.
type statusFailingRepository struct {
	storage.EpisodeRepository
	status core.EpisodeStatus
}

func (r statusFailingRepository) UpdateEpisodeStatus(ctx context.Context, id core.ID, status core.EpisodeStatus) (*core.Episode, error) {
	if status == r.status {
		return nil, assert.AnError
	}
	return r.EpisodeRepository.UpdateEpisodeStatus(ctx, id, status)
}

func TestDatabase_ProcessEpisodeSavesAtomically(t *testing.T) {
	ctx := context.Background()
	ext := mock.NewMockBackend().WithGenerateFunc(func(ctx context.Context, parts ...ai.Part) (string, error) {
		return aliceAndBob, nil
	})
	db := newTestDatabase(t, mock.NewMockProviderWithBackends(ext, mock.NewMockBackend()), &fakeTranscoder{duration: 4 * time.Minute})

	episode, err := db.CreateEpisode(ctx, "Tides", "")
	require.NoError(t, err)
	db.episodeRepo = statusFailingRepository{EpisodeRepository: db.episodeRepo, status: core.EpisodeStatusComplete}

	analysis, result, err := db.ProcessEpisode(ctx, episode.Id, strings.NewReader("mp3"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotNil(t, analysis)
	assert.Nil(t, result)

	// The graph written before the failed status update was rolled back.
	graph, err := db.GraphRepository().EpisodeGraph(ctx, episode.Id)
	require.NoError(t, err)
	assert.Empty(t, graph.Nodes)
	assert.Empty(t, graph.Edges)
	_, err = db.GraphRepository().FindEntityByName(ctx, "Alice")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stored, err := db.EpisodeRepository().GetEpisode(ctx, episode.Id)
	require.NoError(t, err)
	assert.Equal(t, core.EpisodeStatusFailed, stored.Status)
}

func TestDatabase_ProcessEpisodeDecodeFailure(t *testing.T) {
	ctx := context.Background()
	provider := mock.NewMockProviderWithBackends(mock.NewMockBackend(), mock.NewMockBackend())
	db := newTestDatabase(t, provider, &fakeTranscoder{probeErr: errors.New("moov atom not found")})

	episode, err := db.CreateEpisode(ctx, "Broken", "")
	require.NoError(t, err)

	analysis, result, err := db.ProcessEpisode(ctx, episode.Id, strings.NewReader("garbage"))
	assert.ErrorIs(t, err, core.ErrDecodeFailure)
	assert.Nil(t, analysis)
	assert.Nil(t, result)

	stored, err := db.EpisodeRepository().GetEpisode(ctx, episode.Id)
	require.NoError(t, err)
	assert.Equal(t, core.EpisodeStatusFailed, stored.Status)
	assert.Equal(t, 0, provider.GetMockExtraction().UploadCount())
}

func TestDatabase_ProcessUnknownEpisode(t *testing.T) {
	provider := mock.NewMockProviderWithBackends(mock.NewMockBackend(), mock.NewMockBackend())
	db := newTestDatabase(t, provider, &fakeTranscoder{duration: time.Minute})

	_, _, err := db.ProcessEpisode(context.Background(), core.ID(404), strings.NewReader("mp3"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 0, provider.GetMockExtraction().UploadCount())
}
