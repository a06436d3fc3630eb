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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	//
	cfg, path, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, uint(0), cfg.Workers)
	assert.False(t, cfg.Verbose)
}

func Test_Config_Discovery(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "govir.yaml"), []byte("format: yaml\nworkers: 3\n"), 0o644))
	//
	assert.Equal(t, filepath.Join(root, "govir.yaml"), discoverConfigFile(nested))
	//
	t.Chdir(nested)
	//
	cfg, path, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "govir.yaml"), path)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, uint(3), cfg.Workers)
}

func Test_Config_StopsAtRepository(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "govir.yaml"), []byte("format: yaml\n"), 0o644))
	//
	assert.Empty(t, discoverConfigFile(repo))
}

func Test_Config_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOVIR_FORMAT", "yaml")
	t.Setenv("GOVIR_COLOR", "never")
	//
	cfg, _, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "never", cfg.Color)
}

func Test_Config_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("color: always\n"), 0o644))
	//
	cfg, found, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, found)
	assert.Equal(t, "always", cfg.Color)
	// Missing explicit file
	_, _, err = LoadConfig(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func Test_Config_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	//
	t.Setenv("GOVIR_FORMAT", "json")
	_, _, err := LoadConfig("", nil)
	assert.ErrorContains(t, err, "invalid format")
	//
	t.Setenv("GOVIR_FORMAT", "text")
	t.Setenv("GOVIR_COLOR", "sometimes")
	_, _, err = LoadConfig("", nil)
	assert.ErrorContains(t, err, "invalid color")
}
