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

// Package dashboard implements the artifact correlation core.
//
// This file parses detection-log CSVs. The contract: `class` and `timestamp`
// columns are mandatory and their absence is a parse error; `latitude`,
// `longitude`, and `video_link` are optional and their presence is reported
// through the LogSchema; any other column is ignored without complaint, and
// extra columns never cause rows to be discarded.
package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/indavian/gcp-go-detection-dashboard/internal/core/model"
)

// Detection-log column names shared with the upstream pipeline.
const (
	colClass     = "class"
	colTimestamp = "timestamp"
	colLatitude  = "latitude"
	colLongitude = "longitude"
	colVideoLink = "video_link"
)

// parseDetectionLog reads a detection-log CSV into record order. Returned
// records carry zero values for absent optional columns; the coordinator
// applies defaults later, exactly once, using the schema.
func parseDetectionLog(r io.Reader) (*model.DetectionLog, error) {
	reader := csv.NewReader(r)
	// Upstream occasionally pads rows; tolerate ragged records and pick
	// fields by header position instead.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("log is empty, no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colClass]; !ok {
		return nil, fmt.Errorf("mandatory column %q missing", colClass)
	}
	if _, ok := cols[colTimestamp]; !ok {
		return nil, fmt.Errorf("mandatory column %q missing", colTimestamp)
	}

	log := &model.DetectionLog{
		Records: []model.DetectionRecord{},
		Schema: model.LogSchema{
			HasLatitude:  hasCol(cols, colLatitude),
			HasLongitude: hasCol(cols, colLongitude),
			HasVideoLink: hasCol(cols, colVideoLink),
		},
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := model.DetectionRecord{
			Class:     field(row, cols, colClass),
			Timestamp: field(row, cols, colTimestamp),
			VideoLink: field(row, cols, colVideoLink),
		}
		if log.Schema.HasLatitude {
			rec.Latitude, err = parseCoord(field(row, cols, colLatitude))
			if err != nil {
				return nil, fmt.Errorf("line %d: latitude: %w", line, err)
			}
		}
		if log.Schema.HasLongitude {
			rec.Longitude, err = parseCoord(field(row, cols, colLongitude))
			if err != nil {
				return nil, fmt.Errorf("line %d: longitude: %w", line, err)
			}
		}
		log.Records = append(log.Records, rec)
	}
	return log, nil
}

func hasCol(cols map[string]int, name string) bool {
	_, ok := cols[name]
	return ok
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCoord(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
