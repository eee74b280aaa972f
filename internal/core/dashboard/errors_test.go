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

package dashboard

import (
	"errors"
	"fmt"
	"testing"

	"github.com/zeebo/assert"
)

// TestKindOfClassified verifies kind extraction through wrapping layers.
func TestKindOfClassified(t *testing.T) {
	base := newError(KindNotFound, "repo.fetch_log", "Output/a/log.csv", nil)
	assert.Equal(t, KindNotFound, KindOf(base))

	wrapped := fmt.Errorf("while resolving: %w", base)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindTransport))
}

// TestKindOfForeignError verifies the conservative default: an error that
// did not originate in this package reads as a transport failure, never as
// clean absence.
func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindTransport, KindOf(errors.New("something broke")))
	assert.False(t, IsKind(errors.New("something broke"), KindNotFound))
	assert.False(t, IsKind(nil, KindTransport))
}

// TestOpErrorUnwrap verifies that the original cause stays reachable for
// errors.Is checks against sentinel errors from client libraries.
func TestOpErrorUnwrap(t *testing.T) {
	cause := errors.New("object missing")
	err := newError(KindNotFound, "repo.fetch_log", "k", cause)
	assert.True(t, errors.Is(err, cause))
}
