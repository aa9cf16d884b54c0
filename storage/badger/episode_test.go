package badger

import (
	"context"
	"testing"

	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpisodeBasics(t *testing.T) {
	episodeRepo, graphRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { graphRepo.Close(); episodeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	created, err := episodeRepo.CreateEpisode(ctx, &core.Episode{
		Title:  "Episode 1",
		URL:    "https://example.com/ep1.mp3",
		Status: core.EpisodeStatusComplete,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.Equal(t, core.EpisodeStatusPending, created.Status, "new episodes always start pending")
	assert.False(t, created.InsertedAt.IsZero())

	fetched, err := episodeRepo.GetEpisode(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Episode 1", fetched.Title)
	assert.Equal(t, "https://example.com/ep1.mp3", fetched.URL)
	assert.Equal(t, core.EpisodeStatusPending, fetched.Status)
	assert.True(t, fetched.ProcessedAt.IsZero())
}

func TestCreateEpisode_DuplicateID(t *testing.T) {
	episodeRepo, graphRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { graphRepo.Close(); episodeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = episodeRepo.CreateEpisode(ctx, &core.Episode{Id: 42, Title: "first"})
	require.NoError(t, err)

	_, err = episodeRepo.CreateEpisode(ctx, &core.Episode{Id: 42, Title: "second"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestGetEpisode_NotFound(t *testing.T) {
	episodeRepo, graphRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { graphRepo.Close(); episodeRepo.Close(); backend.Close() }()

	_, err = episodeRepo.GetEpisode(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateEpisodeStatus(t *testing.T) {
	episodeRepo, graphRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { graphRepo.Close(); episodeRepo.Close(); backend.Close() }()

	ctx := context.Background()
	created, err := episodeRepo.CreateEpisode(ctx, &core.Episode{Title: "status"})
	require.NoError(t, err)

	updated, err := episodeRepo.UpdateEpisodeStatus(ctx, created.Id, core.EpisodeStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, core.EpisodeStatusProcessing, updated.Status)
	assert.True(t, updated.ProcessedAt.IsZero(), "processing is not a terminal status")

	updated, err = episodeRepo.UpdateEpisodeStatus(ctx, created.Id, core.EpisodeStatusComplete)
	require.NoError(t, err)
	assert.Equal(t, core.EpisodeStatusComplete, updated.Status)
	assert.False(t, updated.ProcessedAt.IsZero())

	fetched, err := episodeRepo.GetEpisode(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, core.EpisodeStatusComplete, fetched.Status)

	_, err = episodeRepo.UpdateEpisodeStatus(ctx, created.Id, core.EpisodeStatus(99))
	assert.ErrorIs(t, err, core.ErrInvalidEpisodeStatus)

	_, err = episodeRepo.UpdateEpisodeStatus(ctx, 999, core.EpisodeStatusFailed)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListEpisodes(t *testing.T) {
	episodeRepo, graphRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { graphRepo.Close(); episodeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	episodes, err := episodeRepo.ListEpisodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, episodes)

	for _, title := range []string{"one", "two", "three"} {
		_, err := episodeRepo.CreateEpisode(ctx, &core.Episode{Title: title})
		require.NoError(t, err)
	}

	episodes, err = episodeRepo.ListEpisodes(ctx)
	require.NoError(t, err)
	require.Len(t, episodes, 3)
	assert.Equal(t, "one", episodes[0].Title)
	assert.Equal(t, "three", episodes[2].Title)
	assert.Less(t, episodes[0].Id, episodes[1].Id)
}
