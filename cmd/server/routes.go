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

// Package main contains the HTTP route definitions for the dashboard API.
// Every endpoint is read-only with respect to the registry and the artifact
// bucket; the only mutating endpoint (refresh) touches nothing but the
// in-process cache.
package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/dashboard"
)

// DashboardRouter sets up the API routes for job browsing and correlation.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the job routes will be added. This allows
//     nesting routes under a common path prefix (e.g., "/api/v1").
//
// This function defines the following endpoints:
//   - GET /jobs: Lists all successful jobs, newest first. An optional "date"
//     query parameter (YYYY-MM-DD) restricts the listing to one partition.
//   - GET /jobs/dates: Lists the distinct upload dates present in the index.
//   - POST /jobs/refresh: Drops the cached job index so the next read rebuilds it.
//   - GET /jobs/:id/view: Correlates one job with its stored artifacts and
//     returns the assembled view, including time-limited access URLs.
//   - GET /jobs/:id/thumbnail: Returns a first-frame JPEG for the job's input
//     video, when thumbnail extraction is enabled.
func DashboardRouter(r *gin.RouterGroup) {
	jobs := r.Group("/jobs")
	{
		// Handler for GET /jobs?date=<YYYY-MM-DD>
		jobs.GET("", func(c *gin.Context) {
			date := c.Query("date")
			var (
				out any
				err error
			)
			if date != "" {
				out, err = state.index.JobsOn(c, date)
			} else {
				out, err = state.index.Jobs(c)
			}
			if err != nil {
				log.Printf("Error listing jobs: %v\n", err)
				c.JSON(registryStatus(err), gin.H{"error": "job registry unavailable"})
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /jobs/dates
		jobs.GET("/dates", func(c *gin.Context) {
			dates, err := state.index.Dates(c)
			if err != nil {
				log.Printf("Error listing job dates: %v\n", err)
				c.JSON(registryStatus(err), gin.H{"error": "job registry unavailable"})
				return
			}
			c.JSON(http.StatusOK, dates)
		})

		// Handler for POST /jobs/refresh
		// Invalidation is cheap and safe: readers keep the old snapshot until
		// a new one is built.
		jobs.POST("/refresh", func(c *gin.Context) {
			state.index.Invalidate()
			c.Status(http.StatusAccepted)
		})

		// Handler for GET /jobs/:id/view
		jobs.GET("/:id/view", func(c *gin.Context) {
			id := c.Param("id")
			job, ok, err := state.index.Lookup(c, id)
			if err != nil {
				log.Printf("Error looking up job %s: %v\n", id, err)
				c.JSON(registryStatus(err), gin.H{"error": "job registry unavailable"})
				return
			}
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
				return
			}

			view, err := state.coordinator.Resolve(c, job)
			if err != nil {
				log.Printf("Error resolving job %s: %v\n", id, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not assemble job view"})
				return
			}
			c.JSON(http.StatusOK, view)
		})

		// Handler for GET /jobs/:id/thumbnail
		jobs.GET("/:id/thumbnail", func(c *gin.Context) {
			if state.thumbnails == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "thumbnails not enabled"})
				return
			}
			id := c.Param("id")
			job, ok, err := state.index.Lookup(c, id)
			if err != nil {
				log.Printf("Error looking up job %s: %v\n", id, err)
				c.JSON(registryStatus(err), gin.H{"error": "job registry unavailable"})
				return
			}
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
				return
			}

			frame, err := state.thumbnails.Extract(c, job.InputKey)
			if err != nil {
				if dashboard.IsKind(err, dashboard.KindNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "input video not found"})
					return
				}
				log.Printf("Error extracting thumbnail for job %s: %v\n", id, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not extract thumbnail"})
				return
			}
			c.Data(http.StatusOK, "image/jpeg", frame)
		})
	}
}

// registryStatus maps a registry failure to an HTTP status. An unreachable
// backing store is a 503 so clients and load balancers can distinguish it
// from a bug in this service.
func registryStatus(err error) int {
	if dashboard.IsKind(err, dashboard.KindSourceUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
