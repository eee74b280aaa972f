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
// This file holds the artifact-side types: the rows of a detection log, the
// schema observed while parsing it, discovered clip videos, and the
// `CorrelatedView` that the coordinator assembles for the presentation layer.
package model

// DetectionRecord is a single detected event from a job's detection log.
// Timestamps are carried verbatim from the CSV; the upstream pipeline owns
// their format and the dashboard only displays them.
type DetectionRecord struct {
	Class     string  `json:"class"`
	Timestamp string  `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	VideoLink string  `json:"video_link"`
}

// LogSchema records which optional columns were present in a fetched
// detection log. The coordinator uses it to apply field defaults exactly
// once, at resolution time, instead of scattering presence checks across
// the presentation layer.
type LogSchema struct {
	HasLatitude  bool `json:"has_latitude"`
	HasLongitude bool `json:"has_longitude"`
	HasVideoLink bool `json:"has_video_link"`
}

// DetectionLog is the parsed content of one detection-log object: the rows
// in file order plus the schema observed while parsing them.
type DetectionLog struct {
	Records []DetectionRecord `json:"records"`
	Schema  LogSchema         `json:"schema"`
}

// ClipArtifact is a derived clip video discovered by prefix listing. Storage
// is the source of truth for which clips exist; the job record holds no clip
// index. ParentJob is a back-reference only, never an ownership edge.
type ClipArtifact struct {
	Key       string `json:"key"`
	ParentJob string `json:"parent_job"`
}

// LogStatus describes the outcome of fetching a job's detection log.
type LogStatus string

const (
	// LogReady means the log was fetched and parsed.
	LogReady LogStatus = "READY"
	// LogNotReady means the log object does not exist yet. This is the
	// expected state for a job whose post-processing has not produced
	// output, and is distinct from a transport failure.
	LogNotReady LogStatus = "NOT_READY"
	// LogFailed means the log could not be retrieved or parsed for a reason
	// other than absence (connectivity, permissions, malformed content).
	LogFailed LogStatus = "FAILED"
)

// VideoLinkUnavailable is the sentinel written into DetectionRecord.VideoLink
// when a log omits the column and the job has no clips to fall back on.
const VideoLinkUnavailable = "N/A"

// Fallback coordinates applied when a detection log carries no location
// columns. These match the fixed site location used by the upstream pipeline.
const (
	DefaultLatitude  = 12.9716
	DefaultLongitude = 77.5946
)

// CorrelatedView is the coordinator's answer for one selected job: playable
// access URLs and the parsed detection log, with whatever subset of the three
// artifacts could actually be produced. A degraded view is still a valid
// view; Notes records what went missing and why.
type CorrelatedView struct {
	Job Job `json:"job"`
	// InputURL is a time-limited access URL for the input video, or empty
	// when the object is absent or signing failed.
	InputURL string `json:"input_url,omitempty"`
	// ClipURLs are access URLs for the discovered clips, in discovery order.
	// Signing failures drop individual entries rather than failing the view.
	ClipURLs []string `json:"clip_urls"`
	// Detections is the normalized detection log, empty when the log is not
	// ready or failed to load.
	Detections []DetectionRecord `json:"detections"`
	// TotalDetections mirrors len(Detections) for the dashboard headline.
	TotalDetections int `json:"total_detections"`
	// ClassCounts aggregates detections by class for the distribution chart.
	ClassCounts map[string]int `json:"class_counts"`
	// LogStatus distinguishes "parsed", "not produced yet", and "broken".
	LogStatus LogStatus `json:"log_status"`
	// Notes carries operator-facing descriptions of partial failures.
	Notes []string `json:"notes,omitempty"`
}
