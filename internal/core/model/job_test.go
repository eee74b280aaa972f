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

// Package model_test contains unit tests for the data models defined in the
// model package.
package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// TestJobUploadDate verifies that the date partition key is the date
// component of the upload timestamp in the wire layout, independent of the
// time of day.
func TestJobUploadDate(t *testing.T) {
	job := model.Job{
		JobID:           "2024-06-01_cam7",
		UploadTimestamp: time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC),
	}
	assert.Equal(t, "2024-06-01", job.UploadDate())

	job.UploadTimestamp = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-01", job.UploadDate())
}

// TestJobJSONFieldNames pins the wire names the frontend depends on.
func TestJobJSONFieldNames(t *testing.T) {
	job := model.Job{
		JobID:        "2024-06-01_cam7",
		FileName:     "2024-06-01_cam7.mp4",
		InputKey:     "Input/2024-06-01_cam7.mp4",
		OutputPrefix: "Output/2024-06-01_cam7",
	}
	raw, err := json.Marshal(job)
	assert.NoError(t, err)

	var fields map[string]any
	assert.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"job_id", "file_name", "upload_timestamp", "input_key", "output_prefix"} {
		assert.Contains(t, fields, key)
	}
}
