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
// This file provides the BigQuery JobSource for deployments where the
// upstream pipeline writes its job registry into a BigQuery dataset instead
// of a relational database.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// BigQueryJobRegistry lists successful jobs from a BigQuery registry table.
type BigQueryJobRegistry struct {
	Client      *bigquery.Client
	DatasetName string
	JobsTable   string
}

// fqn returns the complete, queryable name for the jobs table, formatted
// with dots instead of colons so it can be interpolated into standard SQL.
func (r *BigQueryJobRegistry) fqn() string {
	name := r.Client.Dataset(r.DatasetName).Table(r.JobsTable).FullyQualifiedName()
	return strings.Replace(name, ":", ".", -1)
}

// ListSuccessfulJobs implements JobSource.
func (r *BigQueryJobRegistry) ListSuccessfulJobs(ctx context.Context) ([]model.Job, error) {
	q := r.Client.Query(fmt.Sprintf(qryListSuccessfulJobsBQ, r.fqn()))
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, newError(KindTransport, "registry.bigquery.list", r.fqn(), err)
	}

	var jobs []model.Job
	for {
		var job model.Job
		err := itr.Next(&job)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, newError(KindTransport, "registry.bigquery.scan", r.fqn(), err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
