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
// This file provides the storage-listing JobSource for deployments that have
// no registry database at all: the set of known jobs is the set of objects
// under the input namespace, and each job's identity (including its upload
// date) is parsed out of the object name by an IdentityParser. Objects whose
// names do not follow the convention are excluded with a warning; a bad file
// name must never take the whole listing down.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// StorageJobRegistry derives the job listing from the input namespace of the
// artifact bucket.
type StorageJobRegistry struct {
	Client    *storage.Client
	Bucket    string
	InputRoot string
	Parser    IdentityParser
	Logger    *slog.Logger
}

// ListSuccessfulJobs implements JobSource. Every object that reaches the
// input namespace did so through a completed upload, so presence is treated
// as success; there is no status column to consult in this variant.
func (r *StorageJobRegistry) ListSuccessfulJobs(ctx context.Context) ([]model.Job, error) {
	// List with a slash-terminated prefix so a sibling namespace that shares
	// the root as a string prefix (e.g. "Input-backup/" next to "Input/")
	// never enters the index.
	prefix := r.InputRoot
	if root := strings.TrimSuffix(r.InputRoot, "/"); root != "" {
		prefix = root + "/"
	}
	it := r.Client.Bucket(r.Bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, newError(KindTransport, "registry.storage.list", r.InputRoot, err)
		}
		names = append(names, attrs.Name)
	}
	return jobsFromObjectNames(names, r.Parser, r.logger()), nil
}

func (r *StorageJobRegistry) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// jobsFromObjectNames applies the identity parser to each listed name,
// dropping unparseable entries with a recorded warning.
func jobsFromObjectNames(names []string, parser IdentityParser, logger *slog.Logger) []model.Job {
	jobs := make([]model.Job, 0, len(names))
	for _, name := range names {
		job, err := parser.Parse(name)
		if err != nil {
			logger.Warn("excluding object from job index", "object", name, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}
