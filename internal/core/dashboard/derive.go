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
// This file holds the Key Deriver: the pure mapping from a job's identity to
// the storage locations of its artifacts. It performs no I/O and is fully
// deterministic, so two calls with the same job always yield byte-identical
// paths.
package dashboard

import (
	"errors"
	"path"
	"strings"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// Storage key convention shared with the upstream pipeline. Every derived
// artifact for a job lives under its output prefix.
const (
	detectionLogSuffix = "detection_csv/detection_log.csv"
	clipsFolder        = "video_clips"
)

// KeyDeriver computes a job's DerivedPaths. InputRoot and OutputRoot are only
// consulted for jobs that arrive without a stored output prefix (the
// naming-convention registry variant), where the prefix is derived by
// swapping roots and stripping the file extension.
type KeyDeriver struct {
	InputRoot  string
	OutputRoot string
}

// Derive maps a job to the keys of its detection log and clip collection.
// It fails only on a malformed identity; it never guesses a path.
func (d *KeyDeriver) Derive(job model.Job) (model.DerivedPaths, error) {
	prefix, err := d.outputPrefix(job)
	if err != nil {
		return model.DerivedPaths{}, newError(KindDerivation, "derive", job.JobID, err)
	}
	return model.DerivedPaths{
		DetectionLogKey: prefix + "/" + detectionLogSuffix,
		ClipsPrefix:     prefix + "/" + clipsFolder,
	}, nil
}

// outputPrefix resolves the artifact namespace root for a job. The registry
// variant stores it directly; the naming-convention variant derives it from
// the input key.
func (d *KeyDeriver) outputPrefix(job model.Job) (string, error) {
	if p := strings.TrimSuffix(strings.TrimSpace(job.OutputPrefix), "/"); p != "" {
		return p, nil
	}
	name := strings.TrimSpace(job.InputKey)
	if name == "" {
		name = strings.TrimSpace(job.FileName)
	}
	if name == "" {
		return "", errors.New("job carries neither an output prefix nor a file identity")
	}
	if d.InputRoot != "" {
		trimmed := strings.TrimPrefix(name, strings.TrimSuffix(d.InputRoot, "/")+"/")
		if trimmed == name && strings.Contains(name, "/") {
			return "", errors.New("input key is outside the configured input root")
		}
		name = trimmed
	}
	stem := strings.TrimSuffix(name, path.Ext(name))
	if stem == "" {
		return "", errors.New("file identity reduces to an empty stem")
	}
	root := strings.TrimSuffix(d.OutputRoot, "/")
	if root == "" {
		return stem, nil
	}
	return root + "/" + stem, nil
}
