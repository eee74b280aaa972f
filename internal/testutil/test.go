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

// Package test provides utility functions and mock data to support the
// application's test suite. It helps in setting up a consistent test
// environment, loading test-specific configurations, and providing in-memory
// fakes for the correlation layer's storage and signing contracts.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/indavian/gcp-go-detection-dashboard/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs. This prevents the need to reload
// configuration files for every test, speeding up the test suite.
type StateManager struct {
	config *cloud.Config
}

// state holds the singleton instance of StateManager, ensuring that the
// configuration is loaded only once per test run.
var state = &StateManager{}

// HandleErr is a simple test helper function that checks if an error is not
// nil. If an error exists, it fails the test immediately by calling t.Errorf.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestDetectionLogCSV returns a small detection log with every optional
// column populated. Two classes, two records, explicit coordinates and links.
func GetTestDetectionLogCSV() string {
	return `class,timestamp,latitude,longitude,video_link
person,00:00:04,12.3456,77.1234,gs://detection-artifacts/Output/2024-06-01_cam7/video_clips/person_01.mp4
vehicle,00:00:09,12.3460,77.1240,gs://detection-artifacts/Output/2024-06-01_cam7/video_clips/vehicle_01.mp4
`
}

// GetTestDetectionLogCSVMinimal returns a detection log carrying only the
// mandatory columns. Correlation is expected to fill in fallback coordinates
// and derive the video link from the job's clips.
func GetTestDetectionLogCSVMinimal() string {
	return `class,timestamp
person,00:00:04
person,00:00:07
dog,00:00:12
`
}

// GetTestJobCompletionMessageText returns a hardcoded JSON string that
// simulates a Pub/Sub notification message from Google Cloud Storage for a
// detection log finalized by the upstream pipeline. This mock data is used to
// test the cache-invalidation listener.
//
// Returns:
//   - A string containing the JSON payload of a GCS notification.
func GetTestJobCompletionMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "detection-artifacts/Output/2024-06-01_cam7/detection_csv/detection_log.csv/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/detection-artifacts/o/Output%2F2024-06-01_cam7%2Fdetection_csv%2Fdetection_log.csv",
  "name": "Output/2024-06-01_cam7/detection_csv/detection_log.csv",
  "bucket": "detection-artifacts",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "text/csv",
  "timeCreated": "2024-06-01T03:04:08.672Z",
  "updated": "2024-06-01T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2024-06-01T03:04:08.672Z",
  "size": "2048",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/detection-artifacts/o/Output%2F2024-06-01_cam7%2Fdetection_csv%2Fdetection_log.csv?generation=1728615848664286&alt=media",
  "metadata": { "touch": "18" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
	}`
}

// SetupOS configures the necessary environment variables that the
// configuration loader (`cloud.LoadConfig`) depends on. By setting these
// variables, we can direct the loader to use the test-specific configuration
// files (e.g., `configs/.env.test.toml`) instead of production ones.
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// The "test" runtime causes the loader to look for a file named
	// ".env.test.toml" for overrides.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration.
// It ensures that the configuration is loaded from TOML files only once and
// is cached in the package-level `state` variable for subsequent calls.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(cloud.GetConfigOverrides(), config); err != nil {
			log.Fatalf("failed to load test config: %v\n", err)
		}
		state.config = config
	}
	return state.config
}
