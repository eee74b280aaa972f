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

package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

func jobAt(id string, uploaded time.Time) model.Job {
	return model.Job{
		JobID:           id,
		FileName:        id + ".mp4",
		UploadTimestamp: uploaded,
		InputKey:        "Input/" + id + ".mp4",
		OutputPrefix:    "Output/" + id,
	}
}

// TestIndexMemoizesListing verifies that the backend is queried exactly once
// per cache epoch no matter how many reads are served from it.
func TestIndexMemoizesListing(t *testing.T) {
	source := &fakeJobSource{jobs: []model.Job{
		jobAt("2024-06-01_cam7", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
	}}
	index := NewJobIndex(source, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := index.Jobs(ctx)
		require.NoError(t, err)
		_, err = index.Dates(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), source.calls.Load())
}

// TestIndexInvalidateStartsNewEpoch verifies that invalidation discards the
// snapshot and the next read reflects new backend state.
func TestIndexInvalidateStartsNewEpoch(t *testing.T) {
	source := &fakeJobSource{jobs: []model.Job{
		jobAt("2024-06-01_cam7", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
	}}
	index := NewJobIndex(source, nil)
	ctx := context.Background()

	jobs, err := index.Jobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, len(jobs))
	firstBuild := index.BuiltAt()
	assert.False(t, firstBuild.IsZero())

	source.jobs = append(source.jobs,
		jobAt("2024-06-02_cam9", time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)))
	index.Invalidate()
	assert.True(t, index.BuiltAt().IsZero())

	jobs, err = index.Jobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, len(jobs))
	assert.Equal(t, int32(2), source.calls.Load())
}

// TestIndexPartitionsByDate verifies that date filtering is a pure partition
// of the cached set: every date bucket contains only matching jobs and their
// union is the full listing.
func TestIndexPartitionsByDate(t *testing.T) {
	source := &fakeJobSource{jobs: []model.Job{
		jobAt("2024-06-01_cam7", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
		jobAt("2024-06-01_cam9", time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)),
		jobAt("2024-06-02_cam7", time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)),
	}}
	index := NewJobIndex(source, nil)
	ctx := context.Background()

	all, err := index.Jobs(ctx)
	require.NoError(t, err)
	dates, err := index.Dates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-02", "2024-06-01"}, dates)

	var union int
	for _, d := range dates {
		part, err := index.JobsOn(ctx, d)
		require.NoError(t, err)
		for _, job := range part {
			assert.Equal(t, d, job.UploadDate())
		}
		union += len(part)
	}
	assert.Equal(t, len(all), union)

	// An unknown date is an empty partition, not an error.
	none, err := index.JobsOn(ctx, "1999-01-01")
	require.NoError(t, err)
	assert.Equal(t, 0, len(none))
}

// TestIndexOrdersNewestFirst verifies the listing order regardless of how
// the backend returned the rows.
func TestIndexOrdersNewestFirst(t *testing.T) {
	source := &fakeJobSource{jobs: []model.Job{
		jobAt("oldest", time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)),
		jobAt("newest", time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)),
		jobAt("middle", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}}
	index := NewJobIndex(source, nil)

	jobs, err := index.Jobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "middle", "oldest"},
		[]string{jobs[0].JobID, jobs[1].JobID, jobs[2].JobID})
}

// TestIndexLookup verifies the by-ID view of the snapshot.
func TestIndexLookup(t *testing.T) {
	source := &fakeJobSource{jobs: []model.Job{
		jobAt("2024-06-01_cam7", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
	}}
	index := NewJobIndex(source, nil)
	ctx := context.Background()

	job, ok, err := index.Lookup(ctx, "2024-06-01_cam7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Input/2024-06-01_cam7.mp4", job.InputKey)

	_, ok, err = index.Lookup(ctx, "no-such-job")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestIndexSourceFailure verifies that a backend failure surfaces as a
// source-unavailable error and leaves the cache empty so the next read
// retries the backend.
func TestIndexSourceFailure(t *testing.T) {
	source := &fakeJobSource{err: errors.New("connection refused")}
	index := NewJobIndex(source, nil)
	ctx := context.Background()

	_, err := index.Jobs(ctx)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindSourceUnavailable))

	// The failure must not be cached.
	source.err = nil
	source.jobs = []model.Job{jobAt("2024-06-01_cam7", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))}
	jobs, err := index.Jobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, len(jobs))
}

// TestIndexConcurrentBuild verifies that a burst of readers after an
// invalidation triggers a single backend query.
func TestIndexConcurrentBuild(t *testing.T) {
	source := &fakeJobSource{jobs: []model.Job{
		jobAt("2024-06-01_cam7", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
	}}
	index := NewJobIndex(source, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := index.Jobs(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), source.calls.Load())
}
