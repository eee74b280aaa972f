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

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	test "github.com/indavian/gcp-go-detection-dashboard/internal/testutil"
)

// TestJobCompletionHandlerInvalidates verifies that a well-formed storage
// finalize notification drops the cached job index and acks the message.
func TestJobCompletionHandlerInvalidates(t *testing.T) {
	invalidated := 0
	handler := newJobCompletionHandler(func() { invalidated++ })

	err := handler(context.Background(), []byte(test.GetTestJobCompletionMessageText()))
	assert.NoError(t, err)
	assert.Equal(t, 1, invalidated)
}

// TestJobCompletionHandlerMalformedPayload verifies that an undecodable
// payload is acked without touching the index; redelivery would never make
// it parseable.
func TestJobCompletionHandlerMalformedPayload(t *testing.T) {
	invalidated := 0
	handler := newJobCompletionHandler(func() { invalidated++ })

	err := handler(context.Background(), []byte("not json"))
	assert.NoError(t, err)
	assert.Equal(t, 0, invalidated)
}
