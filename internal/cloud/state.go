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

// This file is central to the application's architecture: it initializes and
// holds all the client objects needed to communicate with external services.
// It acts as a dependency injection container, creating a single, shared
// `ServiceClients` struct that can be passed throughout the application.
//
// Logic Flow:
//  1. The `NewCloudServiceClients` function is called at application startup.
//  2. It takes the application's configuration (`Config`) and a `context.Context`.
//  3. It initializes clients for Storage, Pub/Sub, and IAM credentials.
//  4. Backend-specific clients (BigQuery, Postgres) are only created when the
//     configured job-registry backend needs them.
//  5. Pub/Sub listeners are created from the configuration with their handlers
//     unset; handlers are attached later during server setup.
//
// Structs:
//   - ServiceClients: A container struct holding all initialized service
//     clients, acting as a central state manager for external connections.
//
// Functions:
//   - Close: A convenience method to gracefully shut down all client connections.
//   - NewCloudServiceClients: A factory function that creates and configures all
//     necessary clients based on the application's configuration.
package cloud

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	_ "github.com/lib/pq"
)

// ServiceClients is a struct that acts as a central container for all the
// clients that interact with external services. This pattern is a form of
// dependency injection, making it easy to manage and share these client
// connections across the entire application.
type ServiceClients struct {
	StorageClient   *storage.Client                   // Client for Google Cloud Storage (GCS).
	PubsubClient    *pubsub.Client                    // Client for Google Cloud Pub/Sub.
	BigQueryClient  *bigquery.Client                  // Client for BigQuery. Nil unless the registry backend is "bigquery".
	IAMClient       *credentials.IamCredentialsClient // Client for IAM to sign GCS access URLs.
	DB              *sql.DB                           // Relational registry handle. Nil unless the backend is "postgres".
	PubSubListeners map[string]*PubSubListener        // A map of active Pub/Sub listeners, keyed by a logical name from the config.
}

// Close is a utility method to gracefully shut down all the active client
// connections. While client connections are typically managed by the
// application's root context, this method provides an explicit way to release
// resources, which is especially useful in tests or for controlled shutdowns.
func (c *ServiceClients) Close() {
	_ = c.StorageClient.Close()
	_ = c.PubsubClient.Close()
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

// NewCloudServiceClients is a factory function that initializes all required
// service clients based on the provided configuration. It serves as the main
// entry point for setting up the application's external dependencies.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	// Create a new Google Cloud Storage client.
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	// Create a new Google Cloud Pub/Sub client for the specified project.
	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	// The IAM credentials client backs URL signing when the server runs with
	// ambient credentials that lack a local private key (e.g. on GCE).
	ic, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		return nil, err
	}

	clients := &ServiceClients{
		StorageClient: sc,
		PubsubClient:  pc,
		IAMClient:     ic,
	}

	// Only the configured registry backend gets a client. The storage backend
	// reuses the GCS client created above.
	switch config.JobRegistry.Backend {
	case RegistryBackendBigQuery:
		bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return nil, err
		}
		clients.BigQueryClient = bc
	case RegistryBackendPostgres:
		db, err := sql.Open("postgres", config.JobRegistry.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, err
		}
		clients.DB = db
	case RegistryBackendStorage:
		// No extra client needed.
	default:
		return nil, fmt.Errorf("unknown job registry backend %q", config.JobRegistry.Backend)
	}

	// Iterate through the subscription configurations and create a
	// PubSubListener for each one. The handler is initially set to `nil`
	// because it will be attached later when the server wires its components.
	subscriptions := make(map[string]*PubSubListener)
	for subKey := range config.TopicSubscriptions {
		values := config.TopicSubscriptions[subKey]
		actual, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			return nil, err
		}
		subscriptions[subKey] = actual
	}
	clients.PubSubListeners = subscriptions

	return clients, nil
}
