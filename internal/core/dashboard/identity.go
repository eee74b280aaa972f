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
// This file defines the IdentityParser capability used by the storage-listing
// registry variant. File names in the input namespace embed an upload date
// (e.g. "Input/2025-07-21_cam1.mp4"); that implicit schema is fragile, so the
// parsing is isolated behind an interface with an explicit contract: an
// unparseable identity is excluded from the index with a warning, never a
// crash.
package dashboard

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// IdentityParser turns a raw storage object name into a Job. Implementations
// must be pure: no I/O, same output for the same name.
type IdentityParser interface {
	// Parse returns the Job encoded by the object name, or an error when the
	// name does not follow the convention. An error means "exclude and warn",
	// not "abort the listing".
	Parse(objectName string) (model.Job, error)
}

// DatePrefixParser is the default IdentityParser. It expects file names of
// the form `<date>_<rest>.<ext>` where `<date>` matches model.DateLayout,
// and derives the output prefix by swapping the input root for the output
// root and stripping the extension.
type DatePrefixParser struct {
	InputRoot  string
	OutputRoot string
}

// Parse implements IdentityParser.
func (p *DatePrefixParser) Parse(objectName string) (model.Job, error) {
	name := objectName
	if root := strings.TrimSuffix(p.InputRoot, "/"); root != "" {
		// A name that merely shares the root as a string prefix (for example
		// "Input-backup/..." against a root of "Input") is a sibling
		// namespace, not an input object.
		if !strings.HasPrefix(objectName, root+"/") {
			return model.Job{}, fmt.Errorf("object %q is outside the input root %q", objectName, root)
		}
		name = objectName[len(root)+1:]
	}
	if name == "" || strings.HasSuffix(objectName, "/") {
		return model.Job{}, fmt.Errorf("object %q is not a file under the input root", objectName)
	}
	base := path.Base(name)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		return model.Job{}, fmt.Errorf("object %q has an empty file stem", objectName)
	}

	datePart := stem
	if i := strings.IndexByte(stem, '_'); i >= 0 {
		datePart = stem[:i]
	}
	uploaded, err := time.Parse(model.DateLayout, datePart)
	if err != nil {
		return model.Job{}, fmt.Errorf("object %q does not embed a %s date: %w", objectName, model.DateLayout, err)
	}

	job := model.Job{
		JobID:           stem,
		FileName:        base,
		UploadTimestamp: uploaded,
		InputKey:        objectName,
	}
	if root := strings.TrimSuffix(p.OutputRoot, "/"); root != "" {
		job.OutputPrefix = root + "/" + strings.TrimSuffix(name, path.Ext(name))
	}
	return job, nil
}
