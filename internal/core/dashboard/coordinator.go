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
// This file holds the Correlation Coordinator, the one component with real
// branching and partial-failure policy. For a selected job it derives the
// artifact paths, then runs the three independent fetches (input-video URL,
// detection log, clip listing with URL issuance) as a weave task graph with
// ContinueOnError, so a failure in one leg never cancels the others. The
// legs are joined into a single CorrelatedView; whatever failed is reported
// in the view's notes with enough context to tell "storage unreachable" from
// "artifact absent".
//
// Resolve never panics and never returns an error for artifact-level
// failures: every outcome short of a broken task registration is a view,
// possibly degraded.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/bpradana/weave"
	"github.com/google/uuid"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// Coordinator orchestrates key derivation, artifact fetching, and URL
// issuance into a CorrelatedView. All collaborators are injected.
type Coordinator struct {
	Repo    ArtifactRepository
	Issuer  URLIssuer
	Deriver *KeyDeriver
	// Bucket names the artifact bucket, used only to render the gs:// form
	// of the default video link.
	Bucket string
	// URLTTL bounds the validity of issued access URLs. Zero means
	// DefaultURLTTL.
	URLTTL time.Duration
	Logger *slog.Logger
}

// clipURLResult carries both the discovered clips and the URLs that could be
// issued for them; the counts differ when signing fails for individual keys.
type clipURLResult struct {
	Clips   []model.ClipArtifact
	URLs    []string
	Skipped int
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Resolve answers "for this job, give me a playable input URL, the playable
// clip URLs, and the parsed detection records", tolerating any subset of the
// three being missing.
func (c *Coordinator) Resolve(ctx context.Context, job model.Job) (*model.CorrelatedView, error) {
	rid := uuid.NewString()
	logger := c.logger().With("resolution_id", rid, "job_id", job.JobID)

	view := &model.CorrelatedView{
		Job:         job,
		ClipURLs:    []string{},
		Detections:  []model.DetectionRecord{},
		ClassCounts: map[string]int{},
		LogStatus:   model.LogNotReady,
	}

	paths, deriveErr := c.Deriver.Derive(job)
	if deriveErr != nil {
		// A malformed identity leaves nothing to fetch under the output
		// prefix, but the input video key is still usable. The log can never
		// become ready for such a job, so the status is terminal rather than
		// pending.
		logger.Warn("path derivation failed", "error", deriveErr)
		view.LogStatus = model.LogFailed
		view.Notes = append(view.Notes, deriveErr.Error())
	}

	graph := weave.NewGraph()

	inputTask, err := weave.AddTask(graph, "issue-input-url", func(ctx context.Context, _ weave.DependencyResolver) (string, error) {
		exists, err := c.Repo.ObjectExists(ctx, job.InputKey)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", newError(KindNotFound, "coordinator.input_url", job.InputKey, fmt.Errorf("input video object absent"))
		}
		return c.Issuer.Issue(ctx, job.InputKey, c.URLTTL)
	})
	if err != nil {
		return nil, err
	}

	var logTask *weave.Handle[*model.DetectionLog]
	var clipURLTask *weave.Handle[clipURLResult]
	if deriveErr == nil {
		logTask, err = weave.AddTask(graph, "fetch-detection-log", func(ctx context.Context, _ weave.DependencyResolver) (*model.DetectionLog, error) {
			return c.Repo.FetchLog(ctx, paths.DetectionLogKey)
		})
		if err != nil {
			return nil, err
		}

		clipsTask, err := weave.AddTask(graph, "list-clips", func(ctx context.Context, _ weave.DependencyResolver) ([]model.ClipArtifact, error) {
			return c.Repo.ListClips(ctx, paths.ClipsPrefix, job.JobID)
		})
		if err != nil {
			return nil, err
		}

		clipURLTask, err = weave.AddTask(graph, "issue-clip-urls", func(ctx context.Context, deps weave.DependencyResolver) (clipURLResult, error) {
			clips, err := clipsTask.Value(deps)
			if err != nil {
				return clipURLResult{}, err
			}
			// Storage listing carries no ordering guarantee of its own, so
			// pin "first clip" to lexicographic key order.
			sort.Slice(clips, func(i, j int) bool { return clips[i].Key < clips[j].Key })

			out := clipURLResult{Clips: clips, URLs: make([]string, 0, len(clips))}
			for _, clip := range clips {
				u, err := c.Issuer.Issue(ctx, clip.Key, c.URLTTL)
				if err != nil {
					// One unsignable clip degrades the gallery, not the view.
					logger.Warn("clip URL issuance failed", "clip", clip.Key, "error", err)
					out.Skipped++
					continue
				}
				out.URLs = append(out.URLs, u)
			}
			return out, nil
		}, weave.DependsOn(clipsTask))
		if err != nil {
			return nil, err
		}
	}

	// Join all legs; ContinueOnError keeps independent legs running past a
	// failure, and per-task errors are read back from the result store.
	results, _, _ := graph.Run(ctx, weave.WithErrorStrategy(weave.ContinueOnError))

	if u, err := inputTask.Value(results); err != nil {
		logger.Warn("input video URL unavailable", "key", job.InputKey, "error", err)
		view.Notes = append(view.Notes, fmt.Sprintf("input video: %v", err))
	} else {
		view.InputURL = u
	}

	var clips []model.ClipArtifact
	if clipURLTask != nil {
		if res, err := clipURLTask.Value(results); err != nil {
			logger.Warn("clip discovery failed", "prefix", paths.ClipsPrefix, "error", err)
			view.Notes = append(view.Notes, fmt.Sprintf("clips: %v", err))
		} else {
			clips = res.Clips
			view.ClipURLs = res.URLs
			if res.Skipped > 0 {
				view.Notes = append(view.Notes, fmt.Sprintf("clips: %d of %d could not be signed", res.Skipped, len(res.Clips)))
			}
		}
	}

	if logTask != nil {
		if logData, err := logTask.Value(results); err != nil {
			if IsKind(err, KindNotFound) {
				// Expected while post-processing has not produced output.
				view.LogStatus = model.LogNotReady
				logger.Info("detection log not ready", "key", paths.DetectionLogKey)
			} else {
				view.LogStatus = model.LogFailed
				logger.Error("detection log unavailable", "key", paths.DetectionLogKey, "error", err)
				view.Notes = append(view.Notes, fmt.Sprintf("detection log: %v", err))
			}
		} else {
			view.LogStatus = model.LogReady
			view.Detections = normalizeRecords(logData, clips, c.Bucket)
			for _, rec := range view.Detections {
				view.ClassCounts[rec.Class]++
			}
		}
	}

	view.TotalDetections = len(view.Detections)
	logger.Info("job resolved",
		"log_status", view.LogStatus,
		"detections", view.TotalDetections,
		"clips", len(view.ClipURLs),
		"input_url", view.InputURL != "")
	return view, nil
}
