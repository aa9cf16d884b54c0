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


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/podmap"
	"github.com/poiesic/podmap/ai"
	"github.com/poiesic/podmap/audio"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
	"github.com/poiesic/podmap/ingestion"
	"github.com/poiesic/podmap/storage"
	"github.com/poiesic/podmap/storage/badger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	dbFlag := &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory",
		EnvVars: []string{"PODMAP_DB"},
		Value:   "podmap.db",
	}

	return &cli.App{
		Name:  "podmap",
		Usage: "Build a knowledge graph from podcast audio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Segment, extract and refine an audio file, then store the graph",
				ArgsUsage: "<audio-file>",
				Action:    processCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:  "title",
						Usage: "Episode title (defaults to the file name)",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Episode source URL",
					},
					&cli.Uint64Flag{
						Name:  "episode",
						Usage: "Reprocess an existing episode instead of creating one",
					},
					&cli.StringFlag{
						Name:    "provider",
						Usage:   "Model provider (googleai, openai)",
						EnvVars: []string{"PODMAP_PROVIDER"},
						Value:   ai.ProviderGoogleAI,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Provider API key",
						EnvVars: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "host",
						Usage:   "Base URL of an OpenAI-compatible service",
						EnvVars: []string{"OPENAI_BASE_URL"},
					},
					&cli.StringFlag{
						Name:    "extraction-model",
						Usage:   "Model used for per-segment extraction",
						EnvVars: []string{"PODMAP_EXTRACTION_MODEL"},
						Value:   ai.DefaultConfig().ExtractionModel,
					},
					&cli.StringFlag{
						Name:    "refinement-model",
						Usage:   "Model used to consolidate fragments",
						EnvVars: []string{"PODMAP_REFINEMENT_MODEL"},
						Value:   ai.DefaultConfig().RefinementModel,
					},
					&cli.DurationFlag{
						Name:  "call-timeout",
						Usage: "Timeout for each model call",
						Value: ai.DefaultConfig().CallTimeout,
					},
					&cli.DurationFlag{
						Name:  "chunk",
						Usage: "Segment length",
						Value: audio.DefaultChunk,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of segments extracted concurrently",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address while processing (e.g. :9090)",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not print progress",
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Store a fragment JSON file as the graph of a new episode",
				ArgsUsage: "<fragment.json>",
				Action:    importCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:  "title",
						Usage: "Episode title (defaults to the file name)",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Episode source URL",
					},
					&cli.DurationFlag{
						Name:  "duration",
						Usage: "Length of the audio the fragment describes",
					},
				},
			},
			{
				Name:   "episodes",
				Usage:  "List episodes and their processing status",
				Action: episodesCommand,
				Flags:  []cli.Flag{dbFlag},
			},
			{
				Name:   "graph",
				Usage:  "Print the nodes and edges of an episode as JSON",
				Action: graphCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.Uint64Flag{
						Name:     "episode",
						Aliases:  []string{"e"},
						Usage:    "Episode ID",
						Required: true,
					},
				},
			},
			{
				Name:      "entity",
				Usage:     "Print an entity and every detail recorded about it as JSON",
				ArgsUsage: "<name>",
				Action:    entityCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.Uint64Flag{
						Name:  "id",
						Usage: "Look up by entity ID instead of name",
					},
				},
			},
		},
	}
}

func setup(c *cli.Context) error {
	if err := loadEnv(c.String("env-file")); err != nil {
		return err
	}
	return setupLogger(c)
}

// loadEnv reads path into the environment. A missing file is not an error and
// variables already set are kept.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no env file found, using system environment variables", "path", path)
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func processCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one audio file, got %d arguments", c.NArg())
	}
	audioPath := c.Args().First()

	if c.Int("workers") < 1 {
		return fmt.Errorf("workers must be greater than 0")
	}

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithHost(c.String("host")),
		ai.WithExtractionModel(c.String("extraction-model")),
		ai.WithRefinementModel(c.String("refinement-model")),
		ai.WithCallTimeout(c.Duration("call-timeout")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	metrics := ingestion.NewMetrics("podmap")
	pipelineOpts := []ingestion.Option{
		ingestion.WithPoolSize(c.Int("workers")),
		ingestion.WithChunkDuration(c.Duration("chunk")),
		ingestion.WithMetrics(metrics),
	}
	if !c.Bool("quiet") {
		pipelineOpts = append(pipelineOpts, ingestion.WithMonitor(ingestion.NewProgress(os.Stderr)))
	}

	if addr := c.String("metrics-addr"); addr != "" {
		shutdown := serveMetrics(addr, metrics)
		defer shutdown()
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return fmt.Errorf("failed to open audio: %w", err)
	}
	defer f.Close()

	db, err := podmap.NewDatabase(ctx, c.String("db"),
		podmap.WithAIConfig(aiConfig),
		podmap.WithPipelineOptions(pipelineOpts...))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	episode, err := resolveEpisode(c, db, audioPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Episode: %d (%s)\n", episode.Id, episode.Title)
	fmt.Fprintf(os.Stderr, "Provider: %s (%s / %s)\n", aiConfig.Provider, aiConfig.ExtractionModel, aiConfig.RefinementModel)
	fmt.Fprintln(os.Stderr)

	analysis, result, err := db.ProcessEpisode(ctx, episode.Id, f)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	return writeJSON(c.App.Writer, struct {
		EpisodeID core.ID             `json:"episode_id"`
		Duration  string              `json:"duration"`
		Report    core.RunReport      `json:"report"`
		Saved     *storage.SaveResult `json:"saved"`
	}{
		EpisodeID: episode.Id,
		Duration:  analysis.End.String(),
		Report:    analysis.Report,
		Saved:     result,
	})
}

func resolveEpisode(c *cli.Context, db *podmap.Database, audioPath string) (*core.Episode, error) {
	if id := c.Uint64("episode"); id != 0 {
		episode, err := db.EpisodeRepository().GetEpisode(c.Context, core.ID(id))
		if err != nil {
			return nil, fmt.Errorf("failed to load episode %d: %w", id, err)
		}
		return episode, nil
	}

	title := c.String("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	}
	episode, err := db.CreateEpisode(c.Context, title, c.String("url"))
	if err != nil {
		return nil, fmt.Errorf("failed to create episode: %w", err)
	}
	return episode, nil
}

// serveMetrics exposes the pipeline metrics over HTTP until the returned
// function is called.
func serveMetrics(addr string, metrics *ingestion.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one fragment file, got %d arguments", c.NArg())
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fragment: %w", err)
	}
	fragment, err := extraction.ParseResponse(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	episodes, err := badger.NewEpisodeRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer episodes.Close()

	graph := badger.NewGraphRepository(backend)
	defer graph.Close()

	title := c.String("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	episode, err := episodes.CreateEpisode(c.Context, &core.Episode{Title: title, URL: c.String("url")})
	if err != nil {
		return fmt.Errorf("failed to create episode: %w", err)
	}

	analysis := &core.EpisodeAnalysis{
		EpisodeID: episode.Id,
		Fragment:  fragment,
		End:       c.Duration("duration"),
	}
	var result *storage.SaveResult
	err = graph.WithTransaction(c.Context, func(ctx context.Context) error {
		var err error
		if result, err = graph.SaveAnalysis(ctx, analysis); err != nil {
			return err
		}
		_, err = episodes.UpdateEpisodeStatus(ctx, episode.Id, core.EpisodeStatusComplete)
		return err
	})
	if err != nil {
		if _, statusErr := episodes.UpdateEpisodeStatus(c.Context, episode.Id, core.EpisodeStatusFailed); statusErr != nil {
			err = errors.Join(err, statusErr)
		}
		return fmt.Errorf("failed to save fragment: %w", err)
	}

	return writeJSON(c.App.Writer, struct {
		EpisodeID core.ID             `json:"episode_id"`
		Saved     *storage.SaveResult `json:"saved"`
	}{
		EpisodeID: episode.Id,
		Saved:     result,
	})
}

func episodesCommand(c *cli.Context) error {
	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewEpisodeRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	episodes, err := repo.ListEpisodes(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list episodes: %w", err)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tINSERTED\tPROCESSED")
	for _, e := range episodes {
		processed := "-"
		if !e.ProcessedAt.IsZero() {
			processed = e.ProcessedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.Id, e.Status, e.Title, e.InsertedAt.Format(time.RFC3339), processed)
	}
	return w.Flush()
}

func graphCommand(c *cli.Context) error {
	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewGraphRepository(backend)
	defer repo.Close()

	graph, err := repo.EpisodeGraph(c.Context, core.ID(c.Uint64("episode")))
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	return writeJSON(c.App.Writer, graph)
}

func entityCommand(c *cli.Context) error {
	id := core.ID(c.Uint64("id"))
	name := strings.Join(c.Args().Slice(), " ")
	if id == 0 && name == "" {
		return fmt.Errorf("an entity name or --id is required")
	}

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewGraphRepository(backend)
	defer repo.Close()

	if id == 0 {
		entity, err := repo.FindEntityByName(c.Context, name)
		if err != nil {
			return fmt.Errorf("failed to find entity %q: %w", name, err)
		}
		id = entity.Id
	}

	view, err := repo.EntityDetails(c.Context, id)
	if err != nil {
		return fmt.Errorf("failed to load entity %d: %w", id, err)
	}
	return writeJSON(c.App.Writer, view)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
