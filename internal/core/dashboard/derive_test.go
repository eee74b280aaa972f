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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// TestDeriveFromStoredPrefix covers the registry variant: the job carries its
// output prefix directly and the deriver only appends the artifact suffixes.
func TestDeriveFromStoredPrefix(t *testing.T) {
	d := &KeyDeriver{InputRoot: "Input", OutputRoot: "Output"}
	job := model.Job{
		JobID:        "2024-06-01_cam7",
		InputKey:     "Input/2024-06-01_cam7.mp4",
		OutputPrefix: "Output/2024-06-01_cam7",
	}

	paths, err := d.Derive(job)
	assert.NoError(t, err)
	assert.Equal(t, "Output/2024-06-01_cam7/detection_csv/detection_log.csv", paths.DetectionLogKey)
	assert.Equal(t, "Output/2024-06-01_cam7/video_clips", paths.ClipsPrefix)
}

// TestDeriveFromNamingConvention covers the variant without a stored prefix:
// the prefix comes from swapping namespace roots and stripping the extension.
func TestDeriveFromNamingConvention(t *testing.T) {
	d := &KeyDeriver{InputRoot: "Input", OutputRoot: "Output"}
	job := model.Job{
		JobID:    "2024-06-01_cam7",
		InputKey: "Input/2024-06-01_cam7.mp4",
	}

	paths, err := d.Derive(job)
	assert.NoError(t, err)
	assert.Equal(t, "Output/2024-06-01_cam7/detection_csv/detection_log.csv", paths.DetectionLogKey)
	assert.Equal(t, "Output/2024-06-01_cam7/video_clips", paths.ClipsPrefix)
}

// TestDeriveTrailingSlashes verifies that stored prefixes and configured
// roots are insensitive to trailing slashes.
func TestDeriveTrailingSlashes(t *testing.T) {
	d := &KeyDeriver{InputRoot: "Input/", OutputRoot: "Output/"}

	stored, err := d.Derive(model.Job{JobID: "a", OutputPrefix: "Output/a/"})
	assert.NoError(t, err)
	assert.Equal(t, "Output/a/video_clips", stored.ClipsPrefix)

	derived, err := d.Derive(model.Job{JobID: "b", InputKey: "Input/b.avi"})
	assert.NoError(t, err)
	assert.Equal(t, "Output/b/video_clips", derived.ClipsPrefix)
}

// TestDeriveIsDeterministic verifies that repeated derivations for the same
// job yield identical paths. The deriver performs no I/O, so this pins the
// pure-function contract the coordinator relies on.
func TestDeriveIsDeterministic(t *testing.T) {
	d := &KeyDeriver{InputRoot: "Input", OutputRoot: "Output"}
	job := model.Job{JobID: "2024-06-01_cam7", InputKey: "Input/2024-06-01_cam7.mp4"}

	first, err := d.Derive(job)
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := d.Derive(job)
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// TestDeriveMalformedIdentity verifies that jobs with no usable identity are
// rejected with a derivation error rather than a guessed path.
func TestDeriveMalformedIdentity(t *testing.T) {
	d := &KeyDeriver{InputRoot: "Input", OutputRoot: "Output"}

	cases := map[string]model.Job{
		"empty job":           {JobID: "x"},
		"extension only stem": {JobID: "y", InputKey: "Input/.mp4"},
		"outside input root":  {JobID: "z", InputKey: "Elsewhere/2024-06-01_cam7.mp4"},
	}
	for name, job := range cases {
		_, err := d.Derive(job)
		assert.Error(t, err, name)
		assert.True(t, IsKind(err, KindDerivation), name)
	}
}
