package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// seedDatabase writes one processed episode and returns its ID.
func seedDatabase(t *testing.T, dbPath string) core.ID {
	t.Helper()
	ctx := context.Background()

	backend, err := badger.OpenBackend(dbPath, false)
	require.NoError(t, err)
	defer backend.Close()

	episodes, err := badger.NewEpisodeRepository(backend)
	require.NoError(t, err)
	defer episodes.Close()

	episode, err := episodes.CreateEpisode(ctx, &core.Episode{Title: "Tides"})
	require.NoError(t, err)

	graph := badger.NewGraphRepository(backend)
	_, err = graph.SaveAnalysis(ctx, &core.EpisodeAnalysis{
		EpisodeID: episode.Id,
		End:       10 * time.Minute,
		Fragment: core.GraphFragment{
			Entities: []core.Entity{
				{Name: "Alice", Type: core.EntityTypePerson, Summary: "Host"},
				{Name: "Moon", Type: core.EntityTypeConcept},
			},
			Relationships: []core.Relationship{{Source: "Alice", Target: "Moon", Description: "talks about"}},
			Details:       []core.Detail{{Entity: "Moon", Text: "Drives the tides"}},
		},
	})
	require.NoError(t, err)

	_, err = episodes.UpdateEpisodeStatus(ctx, episode.Id, core.EpisodeStatusComplete)
	require.NoError(t, err)
	return episode.Id
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"podmap", "--env-file", ""}, args...))
	return out.String(), err
}

func TestReadCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db")
	episodeID := seedDatabase(t, dbPath)

	t.Run("episodes", func(t *testing.T) {
		out, err := runApp(t, "episodes", "--db", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "STATUS")
		assert.Contains(t, out, "complete")
		assert.Contains(t, out, "Tides")
	})

	t.Run("graph", func(t *testing.T) {
		out, err := runApp(t, "graph", "--db", dbPath, "--episode", strconv.FormatUint(uint64(episodeID), 10))
		require.NoError(t, err)

		var graph core.GraphView
		require.NoError(t, json.Unmarshal([]byte(out), &graph))
		assert.Equal(t, episodeID, graph.EpisodeID)
		require.Len(t, graph.Nodes, 2)
		assert.Equal(t, "Alice", graph.Nodes[0].Name)
		require.Len(t, graph.Edges, 1)
		assert.Equal(t, "talks about", graph.Edges[0].Description)
	})

	t.Run("graph requires episode", func(t *testing.T) {
		_, err := runApp(t, "graph", "--db", dbPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "episode")
	})

	t.Run("entity by name", func(t *testing.T) {
		out, err := runApp(t, "entity", "--db", dbPath, "Moon")
		require.NoError(t, err)

		var view core.EntityDetailView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, "Moon", view.Entity.Name)
		require.Len(t, view.Details, 1)
		assert.Equal(t, "Drives the tides", view.Details[0].Text)
		assert.Equal(t, 10*time.Minute, view.Details[0].End)
	})

	t.Run("entity by id", func(t *testing.T) {
		id := core.EntityIDFor("Alice")
		out, err := runApp(t, "entity", "--db", dbPath, "--id", strconv.FormatUint(uint64(id), 10))
		require.NoError(t, err)
		assert.Contains(t, out, `"Alice"`)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := runApp(t, "entity", "--db", dbPath, "Nobody")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Nobody")
	})

	t.Run("entity requires a name or id", func(t *testing.T) {
		_, err := runApp(t, "entity", "--db", dbPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--id")
	})
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db")
	fragmentPath := filepath.Join(dir, "interview.json")
	require.NoError(t, os.WriteFile(fragmentPath, []byte("```json\n"+`{
		"entities": [{"name": "Bob", "type": "Person"}],
		"relationships": [{"source": "Bob", "target": "Ghost", "description": "fears"}],
		"details": [{"entity": "Bob", "detail": "Lives by the sea"}]
	}`+"\n```"), 0644))

	out, err := runApp(t, "import", "--db", dbPath, "--duration", "30m", fragmentPath)
	require.NoError(t, err)

	var imported struct {
		EpisodeID core.ID `json:"episode_id"`
		Saved     struct {
			Entities             int
			Details              int
			SkippedRelationships int
		} `json:"saved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &imported))
	assert.NotZero(t, imported.EpisodeID)
	assert.Equal(t, 1, imported.Saved.Entities)
	assert.Equal(t, 1, imported.Saved.Details)
	assert.Equal(t, 1, imported.Saved.SkippedRelationships)

	out, err = runApp(t, "episodes", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "interview")
	assert.Contains(t, out, "complete")

	t.Run("rejects non-JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("no entities here"), 0644))
		_, err := runApp(t, "import", "--db", dbPath, bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse fragment")
	})
}

func TestProcessCommandValidation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db")
	audioPath := filepath.Join(t.TempDir(), "episode.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("ID3"), 0644))

	t.Run("requires an audio file", func(t *testing.T) {
		_, err := runApp(t, "process", "--db", dbPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one audio file")
	})

	t.Run("workers must be positive", func(t *testing.T) {
		_, err := runApp(t, "process", "--db", dbPath, "--workers", "0", audioPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workers")
	})

	t.Run("googleai requires an API key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "")
		_, err := runApp(t, "process", "--db", dbPath, audioPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey is required")
	})

	t.Run("openai requires a host", func(t *testing.T) {
		t.Setenv("OPENAI_BASE_URL", "")
		_, err := runApp(t, "process", "--db", dbPath, "--provider", "openai", audioPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Host is required")
	})

	t.Run("missing audio file", func(t *testing.T) {
		_, err := runApp(t, "process", "--db", dbPath,
			"--provider", "openai", "--host", "http://localhost:11434",
			filepath.Join(t.TempDir(), "missing.mp3"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open audio")
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("empty path is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnv(""))
	})

	t.Run("loads variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PODMAP_TEST_LOADED=yes\n"), 0644))
		t.Cleanup(func() { os.Unsetenv("PODMAP_TEST_LOADED") })

		require.NoError(t, loadEnv(path))
		assert.Equal(t, "yes", os.Getenv("PODMAP_TEST_LOADED"))
	})

	t.Run("existing variables win", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PODMAP_TEST_KEPT=file\n"), 0644))
		t.Setenv("PODMAP_TEST_KEPT", "shell")

		require.NoError(t, loadEnv(path))
		assert.Equal(t, "shell", os.Getenv("PODMAP_TEST_KEPT"))
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "verbose", "episodes")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
