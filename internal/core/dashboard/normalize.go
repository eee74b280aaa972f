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
// This file is the single schema-normalization step for detection logs:
// field defaults are applied here, once per resolution, so the presentation
// layer always receives fully populated records and never re-checks column
// presence.
package dashboard

import (
	"fmt"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// normalizeRecords fills the optional detection-log fields the source file
// omitted. Column-absent latitude/longitude get the fixed site fallback;
// a column-absent video link gets the job's first clip (callers pass clips
// already in deterministic order) or the unavailable sentinel when the job
// has no clips. Records are copied; the parsed log is never mutated, and
// nothing is written back to storage.
func normalizeRecords(logData *model.DetectionLog, clips []model.ClipArtifact, bucket string) []model.DetectionRecord {
	defaultLink := model.VideoLinkUnavailable
	if len(clips) > 0 {
		defaultLink = fmt.Sprintf("gs://%s/%s", bucket, clips[0].Key)
	}

	out := make([]model.DetectionRecord, len(logData.Records))
	for i, rec := range logData.Records {
		if !logData.Schema.HasLatitude {
			rec.Latitude = model.DefaultLatitude
		}
		if !logData.Schema.HasLongitude {
			rec.Longitude = model.DefaultLongitude
		}
		if !logData.Schema.HasVideoLink {
			rec.VideoLink = defaultLink
		}
		out[i] = rec
	}
	return out
}
