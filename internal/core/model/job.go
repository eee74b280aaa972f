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

// Package model defines the core data structures for the application.
// This file, `job.go`, holds the registry-facing types: a completed
// video-analytics processing run (`Job`) and the storage locations derived
// from it (`DerivedPaths`).
//
// Jobs are produced by the upstream processing pipeline and are strictly
// read-only inside this repository. The dashboard never creates, mutates, or
// deletes a job record; it only correlates a job with the artifacts the
// pipeline left behind in object storage.
package model

import "time"

// Job is one successfully completed video-analytics processing run. The
// column tags match the `video_processing_jobs` registry table so the same
// struct can be scanned from both the relational and the BigQuery backends.
type Job struct {
	// JobID is the opaque, unique identity of the run. In the
	// naming-convention registry variant it is the input file's stem.
	JobID string `json:"job_id" bigquery:"job_id"`
	// FileName is the original name of the uploaded input video.
	FileName string `json:"file_name" bigquery:"file_name"`
	// UploadTimestamp is when the input video was uploaded. The dashboard
	// partitions the job index by the date component of this field.
	UploadTimestamp time.Time `json:"upload_timestamp" bigquery:"upload_timestamp"`
	// InputKey is the object-storage key of the source video.
	InputKey string `json:"input_key" bigquery:"s3_video_key"`
	// OutputPrefix is the storage namespace root under which the pipeline
	// wrote every derived artifact for this run.
	OutputPrefix string `json:"output_prefix" bigquery:"s3_output_key"`
}

// UploadDate returns the date component of the upload timestamp, formatted
// with DateLayout. All date filtering in the job index keys off this value.
func (j Job) UploadDate() string {
	return j.UploadTimestamp.Format(DateLayout)
}

// DateLayout is the wire format for dashboard date filters.
const DateLayout = "2006-01-02"

// DerivedPaths holds the storage locations computed from a Job's identity.
// It is a pure value object: never persisted, recomputed on every selection.
type DerivedPaths struct {
	// DetectionLogKey is the object key of the job's detection-log CSV.
	DetectionLogKey string `json:"detection_log_key"`
	// ClipsPrefix is the storage prefix under which generated clip videos live.
	ClipsPrefix string `json:"clips_prefix"`
}
