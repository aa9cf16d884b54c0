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
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Transcoder probes and re-encodes audio files.
type Transcoder interface {
	// Probe returns the duration of the audio at path.
	Probe(ctx context.Context, path string) (time.Duration, error)

	// Encode writes window w of src to dst as mp3.
	Encode(ctx context.Context, src string, w Window, dst string) error
}

// FFmpeg implements Transcoder by running the ffprobe and ffmpeg binaries.
type FFmpeg struct {
	// FFmpegPath defaults to "ffmpeg" on PATH.
	FFmpegPath string

	// FFprobePath defaults to "ffprobe" on PATH.
	FFprobePath string

	// Bitrate of the encoded segments, e.g. "128k". Empty keeps the encoder default.
	Bitrate string
}

var _ Transcoder = (*FFmpeg)(nil)

// Probe reads the container duration with ffprobe.
func (f *FFmpeg) Probe(ctx context.Context, path string) (time.Duration, error) {
	// ffprobe -v error -show_entries format=duration -of default=noprint_wrappers=1:nokey=1 input
	cmd := exec.CommandContext(ctx, binary(f.FFprobePath, "ffprobe"),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseDuration(stdout.String())
}

// Encode cuts [w.Start, w.End) out of src and encodes it as mp3.
func (f *FFmpeg) Encode(ctx context.Context, src string, w Window, dst string) error {
	// ffmpeg -y -v error -ss start -t length -i input -vn -acodec libmp3lame -f mp3 output
	args := []string{
		"-y", "-v", "error",
		"-ss", seconds(w.Start),
		"-t", seconds(w.Length()),
		"-i", src,
		"-vn", "-acodec", "libmp3lame",
	}
	if f.Bitrate != "" {
		args = append(args, "-b:a", f.Bitrate)
	}
	args = append(args, "-f", "mp3", dst)

	cmd := exec.CommandContext(ctx, binary(f.FFmpegPath, "ffmpeg"), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func binary(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}

// seconds formats d for ffmpeg's -ss/-t arguments.
func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// parseDuration parses ffprobe's duration output, in seconds.
func parseDuration(out string) (time.Duration, error) {
	out = strings.TrimSpace(out)
	secs, err := strconv.ParseFloat(out, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("ffprobe: unreadable duration %q", out)
	}
	if secs < 0 {
		return 0, fmt.Errorf("ffprobe: negative duration %q", out)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
