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

// This file provides the shared setup for the package's test suite via the
// special `TestMain` entry point. The suite runs entirely against in-memory
// fakes, so setup is limited to a quiet logger; no cloud credentials or
// network access are required.
package dashboard

import (
	"log/slog"
	"os"
	"testing"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const tName = "github.com/indavian/gcp-go-detection-dashboard/tests/dashboard"

var logger = otelslog.NewLogger(tName)

// TestMain routes the suite's own log output through the OpenTelemetry slog
// bridge (a no-op without a configured provider, which keeps unit test output
// clean) and silences the default logger the components under test fall back
// to.
func TestMain(m *testing.M) {
	slog.SetDefault(logger)

	exitCode := m.Run()
	os.Exit(exitCode)
}
