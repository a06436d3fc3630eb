// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	maxWalkDepth = 25
)

// Config represents the configuration from govir.yaml, after environment
// variables and flags have been applied.
type Config struct {
	// Output format, either "text" or "yaml".
	Format string `mapstructure:"format"`
	// Colour mode, either "auto", "always" or "never".
	Color string `mapstructure:"color"`
	// Maximum number of methods analysed concurrently (0 = unbounded).
	Workers uint `mapstructure:"workers"`
	// Enable debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.  Only flags explicitly set on the
// given command take precedence over other sources.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string, cmd *cobra.Command) (*Config, string, error) {
	v := viper.New()
	// 1. Set defaults first (lowest precedence)
	setDefaults(v)
	// 2. Set up environment variable binding
	v.SetEnvPrefix("GOVIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}
	//
	if configPath != "" {
		v.SetConfigFile(configPath)
		//
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}
	// 4. Bind flags (highest precedence)
	if cmd != nil {
		for _, key := range []string{"format", "color", "workers", "verbose"} {
			if flag := cmd.Flags().Lookup(key); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, configPath, fmt.Errorf("binding flag %s: %w", key, err)
				}
			}
		}
	}
	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	//
	if err := cfg.Validate(); err != nil {
		return nil, configPath, err
	}
	//
	return &cfg, configPath, nil
}

// Validate checks that the configuration holds sensible values.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"text", "yaml"}, c.Format) {
		return fmt.Errorf("invalid format %q (expected text or yaml)", c.Format)
	} else if !slices.Contains([]string{"auto", "always", "never"}, c.Color) {
		return fmt.Errorf("invalid color %q (expected auto, always or never)", c.Color)
	}
	//
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("format", "text")
	v.SetDefault("color", "auto")
	v.SetDefault("workers", 0)
	v.SetDefault("verbose", false)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for govir.yaml or govir.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		//
		return explicitPath, nil
	}
	// Auto-discovery: walk up to .git or maxWalkDepth
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	//
	return discoverConfigFile(cwd), nil
}

func discoverConfigFile(dir string) string {
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"govir.yaml", "govir.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		// Check for repo boundary (.git file or directory)
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
		// Move up
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		//
		dir = parent
	}
	// No config found, use defaults
	return ""
}
