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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	test "github.com/indavian/gcp-go-detection-dashboard/internal/testutil"
)

// TestParseDetectionLogFull parses a log with every optional column present
// and verifies both values and the reported schema.
func TestParseDetectionLogFull(t *testing.T) {
	logData, err := parseDetectionLog(strings.NewReader(test.GetTestDetectionLogCSV()))
	require.NoError(t, err)

	assert.True(t, logData.Schema.HasLatitude)
	assert.True(t, logData.Schema.HasLongitude)
	assert.True(t, logData.Schema.HasVideoLink)
	require.Equal(t, 2, len(logData.Records))

	first := logData.Records[0]
	assert.Equal(t, "person", first.Class)
	assert.Equal(t, "00:00:04", first.Timestamp)
	assert.InDelta(t, 12.3456, first.Latitude, 1e-9)
	assert.InDelta(t, 77.1234, first.Longitude, 1e-9)
	assert.True(t, strings.HasSuffix(first.VideoLink, "person_01.mp4"))
}

// TestParseDetectionLogMinimal verifies that a log carrying only the
// mandatory columns parses cleanly and reports the missing optional columns
// through the schema, leaving defaults to the normalization step.
func TestParseDetectionLogMinimal(t *testing.T) {
	logData, err := parseDetectionLog(strings.NewReader(test.GetTestDetectionLogCSVMinimal()))
	require.NoError(t, err)

	assert.False(t, logData.Schema.HasLatitude)
	assert.False(t, logData.Schema.HasLongitude)
	assert.False(t, logData.Schema.HasVideoLink)
	require.Equal(t, 3, len(logData.Records))
	assert.Equal(t, 0.0, logData.Records[0].Latitude)
	assert.Equal(t, "", logData.Records[0].VideoLink)
	assert.Equal(t, "dog", logData.Records[2].Class)
}

// TestParseDetectionLogExtraColumns verifies that unknown columns are
// ignored without dropping rows, and that header matching is
// case-insensitive and whitespace-tolerant.
func TestParseDetectionLogExtraColumns(t *testing.T) {
	raw := ` Class , TIMESTAMP ,confidence,frame_index
person,00:00:04,0.97,120
vehicle,00:00:09,0.88,270
`
	logData, err := parseDetectionLog(strings.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 2, len(logData.Records))
	assert.Equal(t, "vehicle", logData.Records[1].Class)
	assert.Equal(t, "00:00:09", logData.Records[1].Timestamp)
}

// TestParseDetectionLogRaggedRows verifies that short rows are tolerated;
// fields past the end of a row read as empty rather than failing the file.
func TestParseDetectionLogRaggedRows(t *testing.T) {
	raw := `class,timestamp,video_link
person,00:00:04,gs://bucket/clip1.mp4
vehicle,00:00:09
`
	logData, err := parseDetectionLog(strings.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 2, len(logData.Records))
	assert.Equal(t, "gs://bucket/clip1.mp4", logData.Records[0].VideoLink)
	assert.Equal(t, "", logData.Records[1].VideoLink)
}

// TestParseDetectionLogErrors verifies the failure cases: empty files,
// missing mandatory columns, and unparseable coordinate values.
func TestParseDetectionLogErrors(t *testing.T) {
	cases := map[string]string{
		"empty file":        "",
		"missing class":     "timestamp\n00:00:04\n",
		"missing timestamp": "class\nperson\n",
		"bad latitude":      "class,timestamp,latitude\nperson,00:00:04,north\n",
	}
	for name, raw := range cases {
		_, err := parseDetectionLog(strings.NewReader(raw))
		assert.Error(t, err, name)
	}
}

// TestParseDetectionLogHeaderOnly verifies that a log with a header and no
// rows is valid and yields an empty record set.
func TestParseDetectionLogHeaderOnly(t *testing.T) {
	logData, err := parseDetectionLog(strings.NewReader("class,timestamp\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, len(logData.Records))
}
