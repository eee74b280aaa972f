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
// This file defines the Artifact Repository: the single conduit between the
// correlation core and object storage. It owns no state beyond its injected
// clients; every result is typed, every failure is classified, and nothing
// raised by the storage SDK escapes unwrapped.
//
// The GCS implementation carries a client-side rate limiter so a rendering
// burst (log fetch + clip listing + existence checks per selection) cannot
// hammer the storage API, and success/error counters for the operator
// dashboards.
package dashboard

import (
	"context"
	"errors"
	"io"
	"log"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// videoExtensions are the clip formats the dashboard recognizes. Objects
// under the clip prefix with any other extension are not clips (manifest
// files, directory markers) and are skipped silently.
var videoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
}

// ArtifactRepository is the storage-facing contract consumed by the
// coordinator. Implementations must return a KindNotFound error for absent
// objects, KindParse for malformed content, and KindTransport for
// connectivity or permission failures; "no clips under the prefix" is an
// empty result, not an error.
type ArtifactRepository interface {
	// FetchLog retrieves and parses a detection-log object.
	FetchLog(ctx context.Context, key string) (*model.DetectionLog, error)
	// ListClips returns every recognized clip under the prefix, in listing
	// order, with parentJob stamped on each artifact.
	ListClips(ctx context.Context, prefix string, parentJob string) ([]model.ClipArtifact, error)
	// ObjectExists reports whether the object is present, without reading it.
	ObjectExists(ctx context.Context, key string) (bool, error)
	// Download streams an object into dst. Used only by the best-effort
	// thumbnail path; the correlation flow never materializes videos locally.
	Download(ctx context.Context, key string, dst io.Writer) error
}

// GCSArtifactRepository is the Google Cloud Storage implementation.
type GCSArtifactRepository struct {
	client  *storage.Client
	bucket  string
	limiter *rate.Limiter

	successCounter metric.Int64Counter
	errorCounter   metric.Int64Counter
}

// NewGCSArtifactRepository wraps a storage client for one artifact bucket.
// opsPerSecond bounds the repository's call rate against the storage API; a
// non-positive value disables the guard.
func NewGCSArtifactRepository(client *storage.Client, bucket string, opsPerSecond int) *GCSArtifactRepository {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opsPerSecond), opsPerSecond)
	}

	meter := otel.Meter("github.com/indavian/gcp-go-detection-dashboard")
	successCounter, err := meter.Int64Counter("artifact_repository.counter.success")
	if err != nil {
		log.Printf("error creating success counter for artifact repository: %v\n", err)
	}
	errorCounter, err := meter.Int64Counter("artifact_repository.counter.error")
	if err != nil {
		log.Printf("error creating error counter for artifact repository: %v\n", err)
	}

	return &GCSArtifactRepository{
		client:         client,
		bucket:         bucket,
		limiter:        limiter,
		successCounter: successCounter,
		errorCounter:   errorCounter,
	}
}

// FetchLog implements ArtifactRepository.
func (r *GCSArtifactRepository) FetchLog(ctx context.Context, key string) (*model.DetectionLog, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, r.fail(ctx, KindTransport, "repository.fetch_log", key, err)
	}
	reader, err := r.client.Bucket(r.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, newError(KindNotFound, "repository.fetch_log", key, err)
		}
		return nil, r.fail(ctx, KindTransport, "repository.fetch_log", key, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close log reader for %s: %v\n", key, err)
		}
	}()

	logData, err := parseDetectionLog(reader)
	if err != nil {
		return nil, r.fail(ctx, KindParse, "repository.fetch_log", key, err)
	}
	r.successCounter.Add(ctx, 1)
	return logData, nil
}

// ListClips implements ArtifactRepository. A prefix with no matching objects
// yields an empty slice and no error; "no clips yet" is a normal outcome.
func (r *GCSArtifactRepository) ListClips(ctx context.Context, prefix string, parentJob string) ([]model.ClipArtifact, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, r.fail(ctx, KindTransport, "repository.list_clips", prefix, err)
	}
	it := r.client.Bucket(r.bucket).Objects(ctx, &storage.Query{Prefix: strings.TrimSuffix(prefix, "/") + "/"})
	clips := []model.ClipArtifact{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, r.fail(ctx, KindTransport, "repository.list_clips", prefix, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue // directory marker
		}
		if !videoExtensions[strings.ToLower(path.Ext(attrs.Name))] {
			continue
		}
		clips = append(clips, model.ClipArtifact{Key: attrs.Name, ParentJob: parentJob})
	}
	r.successCounter.Add(ctx, 1)
	return clips, nil
}

// ObjectExists implements ArtifactRepository.
func (r *GCSArtifactRepository) ObjectExists(ctx context.Context, key string) (bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return false, r.fail(ctx, KindTransport, "repository.object_exists", key, err)
	}
	_, err := r.client.Bucket(r.bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, r.fail(ctx, KindTransport, "repository.object_exists", key, err)
	}
	r.successCounter.Add(ctx, 1)
	return true, nil
}

// Download implements ArtifactRepository.
func (r *GCSArtifactRepository) Download(ctx context.Context, key string, dst io.Writer) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return r.fail(ctx, KindTransport, "repository.download", key, err)
	}
	reader, err := r.client.Bucket(r.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return newError(KindNotFound, "repository.download", key, err)
		}
		return r.fail(ctx, KindTransport, "repository.download", key, err)
	}
	defer func() { _ = reader.Close() }()

	if _, err := io.Copy(dst, reader); err != nil {
		return r.fail(ctx, KindTransport, "repository.download", key, err)
	}
	r.successCounter.Add(ctx, 1)
	return nil
}

func (r *GCSArtifactRepository) fail(ctx context.Context, kind ErrorKind, op, key string, err error) *OpError {
	r.errorCounter.Add(ctx, 1)
	return newError(kind, op, key, err)
}
