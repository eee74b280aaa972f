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
// This file holds the Job Index Cache: a memoized, date-partitioned view over
// the full set of known successful jobs. The index is built once per cache
// epoch and replaced wholesale on invalidation (copy-on-write snapshot swap),
// so concurrent readers never observe a half-built index and need no locking.
package dashboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// JobSource lists the known successful jobs from a registry backend. The
// three implementations in this package are the relational registry, the
// BigQuery registry, and the storage-listing (naming-convention) registry.
type JobSource interface {
	ListSuccessfulJobs(ctx context.Context) ([]model.Job, error)
}

// indexSnapshot is one immutable cache epoch. It is never mutated after
// construction; Invalidate discards it and the next read builds a fresh one.
type indexSnapshot struct {
	jobs    []model.Job
	byID    map[string]model.Job
	byDate  map[string][]model.Job
	builtAt time.Time
}

// JobIndex memoizes the job listing for the lifetime of a cache epoch.
type JobIndex struct {
	source JobSource
	logger *slog.Logger

	snap atomic.Pointer[indexSnapshot]
	// build serializes snapshot construction so a burst of readers after an
	// invalidation triggers exactly one backend query.
	build sync.Mutex
}

// NewJobIndex constructs an empty index over the given source. The first
// read populates it.
func NewJobIndex(source JobSource, logger *slog.Logger) *JobIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobIndex{source: source, logger: logger}
}

// Jobs returns every known successful job, newest upload first. The listing
// is fetched from the backend at most once per epoch. On backend failure it
// returns an empty sequence and a source-unavailable error; it never
// partially populates the cache.
func (x *JobIndex) Jobs(ctx context.Context) ([]model.Job, error) {
	snap, err := x.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.jobs, nil
}

// JobsOn returns the subset of cached jobs whose upload date equals date.
// It is a pure partition of the cached set: the union over all dates equals
// the full listing.
func (x *JobIndex) JobsOn(ctx context.Context, date string) ([]model.Job, error) {
	snap, err := x.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.byDate[date], nil
}

// Dates returns the distinct upload dates present in the index, newest first.
func (x *JobIndex) Dates(ctx context.Context) ([]string, error) {
	snap, err := x.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(snap.byDate))
	for d := range snap.byDate {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// Lookup returns the cached job with the given ID.
func (x *JobIndex) Lookup(ctx context.Context, jobID string) (model.Job, bool, error) {
	snap, err := x.snapshot(ctx)
	if err != nil {
		return model.Job{}, false, err
	}
	job, ok := snap.byID[jobID]
	return job, ok, nil
}

// Invalidate discards the current epoch. The next read rebuilds the index
// from the backend. There is no background refresh; staleness ends only
// through this call.
func (x *JobIndex) Invalidate() {
	x.snap.Store(nil)
	x.logger.Info("job index invalidated")
}

// BuiltAt reports when the current epoch was constructed, or the zero time
// when no epoch is live.
func (x *JobIndex) BuiltAt() time.Time {
	if snap := x.snap.Load(); snap != nil {
		return snap.builtAt
	}
	return time.Time{}
}

func (x *JobIndex) snapshot(ctx context.Context) (*indexSnapshot, error) {
	if snap := x.snap.Load(); snap != nil {
		return snap, nil
	}

	x.build.Lock()
	defer x.build.Unlock()
	// Another reader may have finished the build while we waited.
	if snap := x.snap.Load(); snap != nil {
		return snap, nil
	}

	jobs, err := x.source.ListSuccessfulJobs(ctx)
	if err != nil {
		return nil, newError(KindSourceUnavailable, "index.build", "", err)
	}

	// Backends are asked to order newest-first, but the contract belongs to
	// the index, so enforce it here. The sort is stable to keep backend
	// ordering among equal timestamps.
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].UploadTimestamp.After(jobs[j].UploadTimestamp)
	})

	snap := &indexSnapshot{
		jobs:    jobs,
		byID:    make(map[string]model.Job, len(jobs)),
		byDate:  make(map[string][]model.Job, len(jobs)),
		builtAt: time.Now(),
	}
	for _, job := range jobs {
		snap.byID[job.JobID] = job
		date := job.UploadDate()
		snap.byDate[date] = append(snap.byDate[date], job)
	}

	// Publish the fully built snapshot in one swap.
	x.snap.Store(snap)
	x.logger.Info("job index built", "jobs", len(jobs), "dates", len(snap.byDate))
	return snap, nil
}
