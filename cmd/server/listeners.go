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

// Package main contains the logic for setting up and starting the Pub/Sub
// message listeners. The dashboard never writes to the registry or the
// bucket, so its only event-driven behavior is cache maintenance: when the
// upstream pipeline finalizes an object in the monitored bucket, the
// listener drops the cached job index so the next read rebuilds it.
//
// Functions:
//   - SetupListeners: Initializes and starts the listener for job-completion
//     events, attaching the cache-invalidation handler.
//   - newJobCompletionHandler: Builds the handler that decodes a storage
//     notification and invalidates the cached job index.
package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/indavian/gcp-go-detection-dashboard/internal/cloud"
)

// jobCompletionListener is the logical name of the subscription in the
// TOML configuration that carries GCS finalize events for the artifact
// bucket.
const jobCompletionListener = "JobCompletion"

// SetupListeners configures and starts the background Pub/Sub listeners.
//
// Inputs:
//   - config: The application's configuration, containing subscription names.
//   - cloudClients: A struct containing all the initialized service clients.
//   - ctx: The application's root context, used to manage the lifecycle of the listeners.
//
// Outputs:
//   - This function does not return any value. It starts the listeners as
//     background goroutines.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners[jobCompletionListener]
	if !ok {
		// Without a subscription the index still refreshes through the
		// explicit refresh endpoint, so this is a degraded mode, not an error.
		slog.Warn("no job-completion subscription configured, index refresh is manual only")
		return
	}

	listener.SetHandler(newJobCompletionHandler(state.index.Invalidate))
	listener.Listen(ctx)
}

// newJobCompletionHandler builds the message handler for GCS finalize
// notifications. Every successfully decoded notification drops the cached
// job index via the supplied invalidate callback.
func newJobCompletionHandler(invalidate func()) cloud.MessageHandler {
	return func(ctx context.Context, data []byte) error {
		var notification cloud.GCSPubSubNotification
		if err := json.Unmarshal(data, &notification); err != nil {
			// A malformed payload will never become parseable on redelivery;
			// log it and ack by returning nil.
			slog.ErrorContext(ctx, "unparseable storage notification", "error", err)
			return nil
		}
		slog.InfoContext(ctx, "artifact bucket changed, invalidating job index",
			"bucket", notification.Bucket,
			"object", notification.Name,
		)
		invalidate()
		return nil
	}
}
