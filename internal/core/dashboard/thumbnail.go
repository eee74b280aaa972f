// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dashboard implements the artifact correlation core.
//
// This file implements best-effort thumbnail extraction: the input video is
// streamed to a temporary file and FFmpeg grabs its first frame as a JPEG.
// The feature is purely cosmetic; every failure is logged and swallowed by
// the caller, and the temporary download is discarded immediately after use.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/h2non/filetype"
)

const (
	// thumbnailFfmpegArgs grabs the first frame only.
	// -analyzeduration 0 -probesize 5000000: faster probing of the input.
	// -y -hide_banner: non-interactive, quiet startup.
	// -frames:v 1: stop after a single decoded frame.
	// -f image2: force single-image output regardless of the .tmp suffix.
	thumbnailFfmpegArgs = "-analyzeduration 0 -probesize 5000000 -y -hide_banner -i %s -frames:v 1 -f image2 %s"
	thumbnailTempPrefix = "thumbnail-"
	commandSeparator    = " "
)

// ThumbnailExtractor produces a first-frame JPEG for a stored video.
type ThumbnailExtractor struct {
	Repo       ArtifactRepository
	FFmpegPath string
	Logger     *slog.Logger
}

func (t *ThumbnailExtractor) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// Extract downloads the object, verifies it looks like a video, and returns
// the first frame encoded as JPEG. All temporary files are removed before
// returning.
func (t *ThumbnailExtractor) Extract(ctx context.Context, key string) ([]byte, error) {
	if t.FFmpegPath == "" {
		return nil, fmt.Errorf("thumbnail extraction disabled: no ffmpeg path configured")
	}

	input, err := os.CreateTemp("", thumbnailTempPrefix+"input-")
	if err != nil {
		return nil, fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() { _ = os.Remove(input.Name()) }()

	if err := t.Repo.Download(ctx, key, input); err != nil {
		_ = input.Close()
		return nil, err
	}
	if err := input.Close(); err != nil {
		return nil, fmt.Errorf("flushing download: %w", err)
	}

	// Refuse to hand arbitrary bytes to FFmpeg; sniff the container first.
	head := make([]byte, 261)
	f, err := os.Open(input.Name())
	if err != nil {
		return nil, err
	}
	n, _ := f.Read(head)
	_ = f.Close()
	if !filetype.IsVideo(head[:n]) {
		return nil, fmt.Errorf("object %s is not a recognized video container", key)
	}

	output, err := os.CreateTemp("", thumbnailTempPrefix+"frame-")
	if err != nil {
		return nil, fmt.Errorf("could not create temp file: %w", err)
	}
	_ = output.Close()
	defer func() { _ = os.Remove(output.Name()) }()

	args := strings.Split(fmt.Sprintf(thumbnailFfmpegArgs, input.Name(), output.Name()), commandSeparator)
	cmd := exec.CommandContext(ctx, t.FFmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.logger().Warn("ffmpeg thumbnail extraction failed", "key", key, "output", string(out), "error", err)
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	frame, err := os.ReadFile(output.Name())
	if err != nil {
		return nil, err
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("ffmpeg produced an empty frame for %s", key)
	}
	return frame, nil
}
