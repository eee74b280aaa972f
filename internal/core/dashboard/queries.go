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
// This file centralizes the SQL text used by the registry backends. Keeping
// the queries as constants in one place makes the registry contract easy to
// audit: the dashboard issues exactly these read-only statements and nothing
// else.
package dashboard

const (
	// qryListSuccessfulJobs is the relational registry listing. The result
	// set may grow unboundedly; no pagination is assumed, per the registry
	// contract.
	qryListSuccessfulJobs = `
		SELECT job_id, file_name, upload_timestamp, s3_video_key, s3_output_key
		  FROM video_processing_jobs
		 WHERE process_status = 'SUCCESS'
		 ORDER BY upload_timestamp DESC`

	// qryListSuccessfulJobsBQ is the same listing against BigQuery. The
	// placeholder receives the fully qualified `video_processing_jobs`
	// table name, dot-separated.
	qryListSuccessfulJobsBQ = "SELECT job_id, file_name, upload_timestamp, s3_video_key, s3_output_key FROM `%s` WHERE process_status = 'SUCCESS' ORDER BY upload_timestamp DESC"
)
