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

// In-memory fakes for the package's storage and signing contracts. They make
// the partial-failure scenarios reproducible without a bucket: each fake
// supports per-key error injection so a test can break exactly one leg of a
// correlation.
package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// fakeJobSource is a canned registry listing with an injectable error and a
// call counter for memoization tests.
type fakeJobSource struct {
	jobs  []model.Job
	err   error
	calls atomic.Int32
}

func (s *fakeJobSource) ListSuccessfulJobs(_ context.Context) ([]model.Job, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Job, len(s.jobs))
	copy(out, s.jobs)
	return out, nil
}

// fakeRepo is an in-memory ArtifactRepository. Detection logs are stored as
// raw CSV text and parsed on fetch, exercising the same parser as the real
// repository.
type fakeRepo struct {
	logs    map[string]string // detection-log key -> CSV text
	logErr  map[string]error  // detection-log key -> injected failure
	clips   map[string][]string
	clipErr error
	objects map[string]bool
	blobs   map[string][]byte
}

func (r *fakeRepo) FetchLog(_ context.Context, key string) (*model.DetectionLog, error) {
	if err, ok := r.logErr[key]; ok {
		return nil, err
	}
	raw, ok := r.logs[key]
	if !ok {
		return nil, newError(KindNotFound, "fake.fetch_log", key, fmt.Errorf("no such object"))
	}
	logData, err := parseDetectionLog(strings.NewReader(raw))
	if err != nil {
		return nil, newError(KindParse, "fake.fetch_log", key, err)
	}
	return logData, nil
}

func (r *fakeRepo) ListClips(_ context.Context, prefix string, parentJob string) ([]model.ClipArtifact, error) {
	if r.clipErr != nil {
		return nil, r.clipErr
	}
	keys := r.clips[prefix]
	out := make([]model.ClipArtifact, 0, len(keys))
	for _, k := range keys {
		out = append(out, model.ClipArtifact{Key: k, ParentJob: parentJob})
	}
	return out, nil
}

func (r *fakeRepo) ObjectExists(_ context.Context, key string) (bool, error) {
	return r.objects[key], nil
}

func (r *fakeRepo) Download(_ context.Context, key string, dst io.Writer) error {
	blob, ok := r.blobs[key]
	if !ok {
		return newError(KindNotFound, "fake.download", key, fmt.Errorf("no such object"))
	}
	_, err := io.Copy(dst, bytes.NewReader(blob))
	return err
}

// fakeIssuer signs every key deterministically unless the key is marked as
// failing. Every requested TTL is recorded so tests can assert what the
// caller asked for.
type fakeIssuer struct {
	fail map[string]bool

	mu   sync.Mutex
	ttls []time.Duration
}

func (s *fakeIssuer) Issue(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	s.ttls = append(s.ttls, ttl)
	s.mu.Unlock()
	if s.fail[key] {
		return "", newError(KindSigning, "fake.issue", key, fmt.Errorf("signer rejected key"))
	}
	return "https://signed.example/" + key, nil
}

func (s *fakeIssuer) requestedTTLs() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.ttls...)
}
