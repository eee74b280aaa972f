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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEffectiveTTL verifies the validity-window contract: a positive ttl
// passes through untouched, anything else falls back to the one-hour default.
func TestEffectiveTTL(t *testing.T) {
	assert.Equal(t, time.Hour, DefaultURLTTL)
	assert.Equal(t, DefaultURLTTL, effectiveTTL(0))
	assert.Equal(t, DefaultURLTTL, effectiveTTL(-time.Minute))
	assert.Equal(t, 15*time.Minute, effectiveTTL(15*time.Minute))
}

// TestResolveForwardsURLTTL verifies that the coordinator hands its configured
// validity window through to the issuer unchanged, for the input video and
// every clip alike. An unset window reaches the issuer as zero, where the
// default clamp takes over, so configuration has exactly one fallback point.
func TestResolveForwardsURLTTL(t *testing.T) {
	repo := &fakeRepo{
		logs: map[string]string{testLogKey: "class,timestamp\nperson,00:00:04\n"},
		clips: map[string][]string{testClipDir: {
			testClipDir + "/clip_a.mp4",
			testClipDir + "/clip_b.mp4",
		}},
		objects: map[string]bool{"Input/2024-06-01_cam7.mp4": true},
	}

	issuer := &fakeIssuer{}
	c := testCoordinator(repo, issuer)
	c.URLTTL = 15 * time.Minute

	_, err := c.Resolve(context.Background(), testJob())
	require.NoError(t, err)

	ttls := issuer.requestedTTLs()
	require.Equal(t, 3, len(ttls)) // input video plus two clips
	for _, ttl := range ttls {
		assert.Equal(t, 15*time.Minute, ttl)
	}

	issuer = &fakeIssuer{}
	c = testCoordinator(repo, issuer)

	_, err = c.Resolve(context.Background(), testJob())
	require.NoError(t, err)
	for _, ttl := range issuer.requestedTTLs() {
		assert.Equal(t, time.Duration(0), ttl)
	}
}
