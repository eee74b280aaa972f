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

package cloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigHierarchy verifies the override order: values from later
// files replace values from earlier ones, while untouched fields survive.
func TestLoadConfigHierarchy(t *testing.T) {
	config := NewConfig()
	err := LoadConfig([]string{
		"testdata/.env.toml",
		"testdata/.env.test.toml",
	}, config)
	require.NoError(t, err)

	// Overridden by the overlay.
	assert.Equal(t, "dashboard-test", config.Application.Name)
	assert.Equal(t, RegistryBackendStorage, config.JobRegistry.Backend)
	// Inherited from the base file.
	assert.Equal(t, "base-project", config.Application.GoogleProjectId)
	assert.Equal(t, "detection-artifacts", config.Storage.Bucket)
	assert.Equal(t, "Input", config.Storage.InputRoot)
	assert.Equal(t, 3600, config.Dashboard.URLTTLSeconds)

	sub, ok := config.TopicSubscriptions["JobCompletion"]
	require.True(t, ok)
	assert.Equal(t, "artifacts-finalize", sub.Name)
}

// TestLoadConfigMissingFile verifies that a missing base file is an error,
// not a silently empty configuration.
func TestLoadConfigMissingFile(t *testing.T) {
	config := NewConfig()
	err := LoadConfig([]string{"testdata/.does-not-exist.toml"}, config)
	assert.Error(t, err)
}

// TestGetConfigOverrides verifies overlay selection: the base file is always
// listed, and the runtime overlay is appended only when it exists on disk.
func TestGetConfigOverrides(t *testing.T) {
	t.Setenv(EnvConfigFilePrefix, "testdata")

	t.Setenv(EnvConfigRuntime, "test")
	files := GetConfigOverrides()
	assert.Equal(t, []string{"testdata/.env.toml", "testdata/.env.test.toml"}, files)

	// An overlay that does not exist is skipped with a warning.
	t.Setenv(EnvConfigRuntime, "staging")
	files = GetConfigOverrides()
	assert.Equal(t, []string{"testdata/.env.toml"}, files)
}
