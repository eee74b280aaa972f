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

package cloud

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	// EnvConfigFilePrefix is the environment variable holding the directory
	// that contains the TOML configuration files.
	EnvConfigFilePrefix = "DASH_CONFIG_PREFIX"
	// EnvConfigRuntime is the environment variable naming the runtime
	// overlay (e.g. "local", "prod"). Optional.
	EnvConfigRuntime = "DASH_RUNTIME"
	// ConfigFileBaseName is the base name of the configuration files.
	ConfigFileBaseName = ".env"
)

// GetConfigOverrides returns the ordered list of configuration files to load.
// The base file is required; a runtime overlay (".env.<runtime>.toml") is
// appended when EnvConfigRuntime is set and the file exists. Later files
// override values from earlier ones.
func GetConfigOverrides() []string {
	prefix := os.Getenv(EnvConfigFilePrefix)
	out := []string{fmt.Sprintf("%s/%s.toml", prefix, ConfigFileBaseName)}

	if runtime := os.Getenv(EnvConfigRuntime); runtime != "" {
		overlay := fmt.Sprintf("%s/%s.%s.toml", prefix, ConfigFileBaseName, runtime)
		if fileExists(overlay) {
			out = append(out, overlay)
		} else {
			slog.Warn("runtime config overlay not found, skipping", "file", overlay)
		}
	}
	return out
}

// LoadConfig decodes each of the given TOML files into config in order.
// Values in later files replace values from earlier ones, which lets a
// runtime overlay override the base configuration.
func LoadConfig(configFiles []string, config *Config) error {
	for _, file := range configFiles {
		if _, err := toml.DecodeFile(file, config); err != nil {
			return fmt.Errorf("failed to decode config file %q: %w", file, err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
