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

// Package dashboard implements the artifact correlation core: deriving the
// storage locations for a selected job, fetching and validating each artifact
// independently, and assembling a consistent, possibly degraded view for the
// presentation layer.
//
// This file defines the package's error taxonomy. Every failure that crosses
// a component boundary is classified into one of the kinds below so callers
// can tell an expected-absent artifact apart from an unreachable backend
// without string matching.
package dashboard

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for propagation-policy decisions.
type ErrorKind string

const (
	// KindSourceUnavailable means the job index could not be built at all.
	// This is the only condition that halts a rendering pass.
	KindSourceUnavailable ErrorKind = "source_unavailable"
	// KindNotFound means an expected-absent artifact, e.g. a detection log
	// the pipeline has not produced yet. A normal, user-visible state.
	KindNotFound ErrorKind = "not_found"
	// KindParse means artifact content was retrieved but is malformed.
	KindParse ErrorKind = "parse"
	// KindTransport means connectivity or permission failures reaching the
	// storage or registry backend, including transport-level timeouts.
	KindTransport ErrorKind = "transport"
	// KindDerivation means a job identity was too malformed to derive
	// artifact paths from.
	KindDerivation ErrorKind = "derivation"
	// KindSigning means access-URL issuance failed.
	KindSigning ErrorKind = "signing"
)

// OpError is the error type produced by every component in this package. It
// carries the operation, the storage key or identity involved, and the
// underlying cause, which is what operators need to act on a log line.
type OpError struct {
	Kind ErrorKind
	Op   string
	Key  string
	Err  error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %q: %v", e.Op, e.Kind, e.Key, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// newError wraps cause into an OpError. cause may be nil when the kind alone
// is the whole story (e.g. a not-found outcome from a clean API response).
func newError(kind ErrorKind, op, key string, cause error) *OpError {
	if cause == nil {
		cause = errors.New(string(kind))
	}
	return &OpError{Kind: kind, Op: op, Key: key, Err: cause}
}

// KindOf extracts the ErrorKind from err, unwrapping as needed. Errors that
// did not originate in this package report KindTransport, the conservative
// choice: an unclassified failure must never be mistaken for clean absence.
func KindOf(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindTransport
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
