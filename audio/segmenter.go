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

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/podmap/core"
)

// Segmenter turns an audio stream into a SegmentSet.
type Segmenter struct {
	chunk      time.Duration
	transcoder Transcoder
	tempDir    string
	logger     *slog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter) error

// WithChunkDuration sets the window length.
// Default is DefaultChunk (300s).
func WithChunkDuration(d time.Duration) Option {
	return func(s *Segmenter) error {
		if d <= 0 {
			return ErrInvalidChunk
		}
		s.chunk = d
		return nil
	}
}

// WithTranscoder replaces the ffmpeg transcoder.
func WithTranscoder(t Transcoder) Option {
	return func(s *Segmenter) error {
		if t == nil {
			return ErrTranscoderRequired
		}
		s.transcoder = t
		return nil
	}
}

// WithTempDir sets the parent directory for run directories.
// Default is os.TempDir().
func WithTempDir(dir string) Option {
	return func(s *Segmenter) error {
		s.tempDir = dir
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Segmenter) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSegmenter creates a Segmenter that encodes with ffmpeg by default.
func NewSegmenter(opts ...Option) (*Segmenter, error) {
	s := &Segmenter{
		chunk:      DefaultChunk,
		transcoder: &FFmpeg{},
		logger:     slog.Default().With("component", "segmenter"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Chunk returns the configured window length.
func (s *Segmenter) Chunk() time.Duration {
	return s.chunk
}

// Split spools r to disk and encodes one segment per window.
//
// Any read, probe or encode failure removes everything written so far and
// returns an error wrapping core.ErrDecodeFailure. Zero-length audio yields an
// empty set. The caller must Release the returned set.
func (s *Segmenter) Split(ctx context.Context, r io.Reader) (*SegmentSet, error) {
	runID := uuid.NewString()
	dir, err := os.MkdirTemp(s.tempDir, "podmap-"+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	set := &SegmentSet{RunID: runID, Dir: dir}
	fail := func(stage string, err error) (*SegmentSet, error) {
		if releaseErr := set.Release(); releaseErr != nil {
			s.logger.Warn("failed to clean up segments", "run", runID, "err", releaseErr)
		}
		return nil, fmt.Errorf("%w: %s: %w", core.ErrDecodeFailure, stage, err)
	}

	source := filepath.Join(dir, runID+"-source")
	if err := spool(r, source); err != nil {
		return fail("reading input", err)
	}

	total, err := s.transcoder.Probe(ctx, source)
	if err != nil {
		return fail("probing input", err)
	}
	set.Duration = total

	windows := Plan(total, s.chunk)
	s.logger.Debug("planned segments", "run", runID, "duration", total, "segments", len(windows))

	set.Segments = make([]*Segment, 0, len(windows))
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return fail("encoding", err)
		}
		dst := filepath.Join(dir, runID+"-"+strconv.Itoa(w.Index)+".mp3")
		if err := s.transcoder.Encode(ctx, source, w, dst); err != nil {
			return fail(fmt.Sprintf("encoding segment %d", w.Index), err)
		}
		set.Segments = append(set.Segments, &Segment{
			Index: w.Index,
			Start: w.Start,
			End:   w.End,
			Path:  dst,
		})
	}

	// The source copy is not needed once every window is encoded.
	if err := os.Remove(source); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove spooled input", "path", source, "err", err)
	}
	return set, nil
}

func spool(r io.Reader, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
