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

// Package main contains the setup and initialization logic for the
// application's state. This file is responsible for creating and managing a
// centralized state manager that holds all shared dependencies: configuration,
// cloud service clients, the cached job index, and the correlation
// coordinator.
//
// It ensures that the application is configured correctly based on the
// environment, initializes all necessary clients (Storage, IAM, and whichever
// registry backend is configured), and starts background Pub/Sub listeners.
//
// Functions:
//   - SetupOS: Configures necessary environment variables for the application,
//     pointing to the correct configuration files.
//   - GetConfig: A singleton function that loads the application's configuration
//     from TOML files. It ensures the configuration is loaded only once.
//   - InitState: The core initialization function that creates all service
//     clients, wires the dashboard components, and starts Pub/Sub listeners.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/indavian/gcp-go-detection-dashboard/internal/cloud"
	"github.com/indavian/gcp-go-detection-dashboard/internal/core/dashboard"
)

// StateManager holds all the shared dependencies for the application, acting
// as a centralized container for service clients and dashboard components.
// This avoids the need for scattered global variables and makes dependency
// management cleaner.
type StateManager struct {
	config      *cloud.Config
	cloud       *cloud.ServiceClients
	index       *dashboard.JobIndex
	coordinator *dashboard.Coordinator
	thumbnails  *dashboard.ThumbnailExtractor
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the necessary environment variables that the configuration
// loader uses to find the correct TOML files.
//
// This function sets the prefix for the configuration directory and specifies
// the runtime environment (e.g., "local", "test", "prod"), allowing for
// environment-specific overrides of the base configuration.
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// The config loader will look for a ".env.local.toml" file to override
	// base settings.
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration.
// It ensures that the configuration is loaded from the file system only once.
// On the first call, it sets up the OS environment and loads the configuration
// from the TOML files. Subsequent calls return the cached configuration.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(cloud.GetConfigOverrides(), config); err != nil {
			log.Fatalf("failed to load config: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// newJobSource selects the registry backend named in the configuration. All
// three variants satisfy the same listing contract, so the rest of the
// application never knows which one is active.
func newJobSource(config *cloud.Config, clients *cloud.ServiceClients) dashboard.JobSource {
	switch config.JobRegistry.Backend {
	case cloud.RegistryBackendBigQuery:
		return &dashboard.BigQueryJobRegistry{
			Client:      clients.BigQueryClient,
			DatasetName: config.JobRegistry.Dataset,
			JobsTable:   config.JobRegistry.JobsTable,
		}
	case cloud.RegistryBackendStorage:
		return &dashboard.StorageJobRegistry{
			Client:    clients.StorageClient,
			Bucket:    config.Storage.Bucket,
			InputRoot: config.Storage.InputRoot,
			Parser: &dashboard.DatePrefixParser{
				InputRoot:  config.Storage.InputRoot,
				OutputRoot: config.Storage.OutputRoot,
			},
		}
	default:
		return dashboard.NewSQLJobRegistry(clients.DB)
	}
}

// InitState initializes the entire application state.
// It orchestrates the creation of all necessary services and clients based on
// the application configuration and wires them together.
//
// Inputs:
//   - ctx: The root context.Context for the application, used for managing
//     the lifecycle of client connections and background processes.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Initializes all cloud service clients (Storage, Pub/Sub, IAM, registry).
//  3. Wires the dashboard components: job index, key deriver, artifact
//     repository, URL issuer, correlation coordinator, thumbnail extractor.
//  4. Sets up and starts the Pub/Sub listeners that keep the job index fresh.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	source := newJobSource(config, cloudClients)
	state.index = dashboard.NewJobIndex(source, slog.Default())

	repo := dashboard.NewGCSArtifactRepository(
		cloudClients.StorageClient,
		config.Storage.Bucket,
		config.Dashboard.StorageOpsPerSecond,
	)

	issuer := &dashboard.GCSURLIssuer{
		Client:      cloudClients.StorageClient,
		IAMClient:   cloudClients.IAMClient,
		Bucket:      config.Storage.Bucket,
		SignerEmail: config.Application.SignerServiceAccountEmail,
	}

	state.coordinator = &dashboard.Coordinator{
		Repo: repo,
		Issuer: issuer,
		Deriver: &dashboard.KeyDeriver{
			InputRoot:  config.Storage.InputRoot,
			OutputRoot: config.Storage.OutputRoot,
		},
		Bucket: config.Storage.Bucket,
		URLTTL: time.Duration(config.Dashboard.URLTTLSeconds) * time.Second,
		Logger: slog.Default(),
	}

	if config.Dashboard.FFmpegPath != "" {
		state.thumbnails = &dashboard.ThumbnailExtractor{
			Repo:       repo,
			FFmpegPath: config.Dashboard.FFmpegPath,
			Logger:     slog.Default(),
		}
	}

	// Configure and start the Pub/Sub listeners that react to pipeline events.
	SetupListeners(config, cloudClients, ctx)
}
