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
// This file provides the relational JobSource: a read-only view over the
// `video_processing_jobs` registry table, scanned through database/sql.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// SQLJobRegistry lists successful jobs from a relational registry. The *sql.DB
// is injected so tests can substitute a stub driver and so the process owns
// exactly one pool.
type SQLJobRegistry struct {
	db *sql.DB
}

// NewSQLJobRegistry wraps an open database handle.
func NewSQLJobRegistry(db *sql.DB) *SQLJobRegistry {
	return &SQLJobRegistry{db: db}
}

// ListSuccessfulJobs implements JobSource.
func (r *SQLJobRegistry) ListSuccessfulJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := r.db.QueryContext(ctx, qryListSuccessfulJobs)
	if err != nil {
		return nil, newError(KindTransport, "registry.sql.list", "", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []model.Job
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(&job.JobID, &job.FileName, &job.UploadTimestamp, &job.InputKey, &job.OutputPrefix); err != nil {
			return nil, newError(KindParse, "registry.sql.scan", job.JobID, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindTransport, "registry.sql.list", "", fmt.Errorf("row iteration: %w", err))
	}
	return jobs, nil
}
