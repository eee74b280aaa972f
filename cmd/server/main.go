// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the detection dashboard server.
//
// This application sets up and runs a web server using the Gin framework. It
// provides a read-only REST API over the output of an upstream video-analytics
// pipeline: a date-partitioned listing of completed processing jobs, and a
// per-job correlated view that joins the job's registry record with its
// detection log and generated clips in object storage, each reachable through
// a time-limited signed URL.
//
// The server is instrumented with OpenTelemetry for logging, tracing, and
// metrics. The main function initializes the application's configuration,
// sets up logging and telemetry, and initializes the application state,
// including clients for Google Cloud services. A background Pub/Sub listener
// keeps the cached job index fresh as the pipeline finishes new jobs.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server,
//     configures routes, initializes services, and handles graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/indavian/gcp-go-detection-dashboard/internal/telemetry"
)

// main is the primary entry point for the application.
// It orchestrates the setup of logging, telemetry, configuration, cloud
// services, the web server, API routes, and background listeners. It also
// handles graceful shutdown of the server upon receiving an interrupt signal.
func main() {
	// A local .env file can supply process-level variables (like the config
	// prefix) in development; its absence is fine.
	_ = godotenv.Load()

	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	// Root context for the application; cancelling it stops the Pub/Sub
	// listeners and releases client connections.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state, including all service clients and
	// the dashboard components.
	InitState(ctx)
	slog.Info("Initialized State")

	// Set up the Gin web server with default middleware.
	r := gin.Default()

	// Add OpenTelemetry middleware to the Gin router to trace incoming
	// requests. This will automatically create spans for each request.
	r.Use(otelgin.Middleware("detection-dashboard-server"))

	// Configure Cross-Origin Resource Sharing (CORS) middleware.
	// Using cors.Default() provides a permissive configuration suitable for
	// development, allowing requests from any origin.
	r.Use(cors.Default())

	// Group routes under the "/api/v1" prefix.
	apiV1 := r.Group("/api/v1")
	{
		DashboardRouter(apiV1)
	}

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	// Start the HTTP server in a separate goroutine so it doesn't block the
	// main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Block until an OS interrupt signal is received.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	// Give active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	state.cloud.Close()
	log.Println("Server exiting")
}
