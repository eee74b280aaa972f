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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It centralizes every configurable parameter of the
// dashboard: the artifact bucket layout, the job-registry backend selection,
// Pub/Sub invalidation subscriptions, and URL-issuance settings.
//
// Structs:
//   - Storage: Artifact bucket and namespace roots.
//   - JobRegistry: Which registry backend to use and how to reach it.
//   - Dashboard: Correlation-layer tunables (URL TTL, storage QPS, ffmpeg).
//   - TopicSubscription: One Pub/Sub subscription used for cache invalidation.
//   - Config: The top-level aggregate loaded from TOML.
//
// Functions:
//   - NewConfig: Constructor that initializes a Config with empty maps.
package cloud

// Registry backend selectors for JobRegistry.Backend.
const (
	RegistryBackendPostgres = "postgres"
	RegistryBackendBigQuery = "bigquery"
	RegistryBackendStorage  = "storage"
)

// Storage describes the artifact bucket shared with the upstream pipeline.
type Storage struct {
	Bucket     string `toml:"bucket"`      // The bucket holding input videos and derived artifacts.
	InputRoot  string `toml:"input_root"`  // Namespace root for uploaded input videos (e.g. "Input").
	OutputRoot string `toml:"output_root"` // Namespace root for derived artifacts (e.g. "Output").
}

// JobRegistry selects and configures the backend that lists successful jobs.
type JobRegistry struct {
	// Backend is one of the RegistryBackend* constants.
	Backend string `toml:"backend"`
	// PostgresDSN is the connection string for the relational variant.
	PostgresDSN string `toml:"postgres_dsn"`
	// Dataset and JobsTable locate the registry for the BigQuery variant.
	Dataset   string `toml:"dataset"`
	JobsTable string `toml:"jobs_table"`
}

// Dashboard holds the correlation-layer tunables.
type Dashboard struct {
	// URLTTLSeconds bounds the validity of issued access URLs. Zero falls
	// back to the issuer default of one hour.
	URLTTLSeconds int `toml:"url_ttl_seconds"`
	// StorageOpsPerSecond caps the artifact repository's call rate against
	// the storage API. Zero disables the cap.
	StorageOpsPerSecond int `toml:"storage_ops_per_second"`
	// FFmpegPath enables best-effort thumbnail extraction when set.
	FFmpegPath string `toml:"ffmpeg_path"`
}

// TopicSubscription represents the configuration for a Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The subscription timeout in seconds.
}

// Config represents the overall configuration for the application, loaded
// from TOML files.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`                         // The name of the application.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // The service account used for signing access URLs.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	JobRegistry        JobRegistry                  `toml:"job_registry"`
	Dashboard          Dashboard                    `toml:"dashboard"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by a logical name (e.g. "JobCompletion").
}

// NewConfig creates a new, initialized Config instance. The maps must be
// allocated before the TOML loader populates them.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
}
