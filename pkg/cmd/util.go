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
	"context"
	"fmt"
	"os"

	"github.com/consensys/go-vir/pkg/util/source"
	"github.com/consensys/go-vir/pkg/util/termio"
	"github.com/consensys/go-vir/pkg/vir"
	"github.com/spf13/cobra"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	//
	return context.WithValue(ctx, configKey{}, cfg)
}

// Get the configuration loaded for a given command, or the defaults if none
// was loaded.
func getConfig(cmd *cobra.Command) *Config {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*Config); ok {
			return cfg
		}
	}
	//
	return &Config{Format: "text", Color: "auto"}
}

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		panic(fmt.Sprintf("unknown flag %s: %v", flag, err))
	}
	//
	return r
}

// Read and parse a given program file.  Syntax errors are printed with
// appropriate highlighting.
func readProgramFile(cmd *cobra.Command, filename string) (*vir.Program, error) {
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		return nil, GeneralError("reading program", err)
	}
	//
	program, serr := vir.ParseProgram(srcfile)
	if serr != nil {
		serr.Highlight(cmd.ErrOrStderr())
		return nil, ParseError("parsing program", serr)
	}
	//
	return program, nil
}

// Determine whether colour output is enabled for a given command.
func colourEnabled(cmd *cobra.Command, cfg *Config) bool {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return termio.ColourEnabled(cfg.Color, f)
	}
	//
	return cfg.Color == "always"
}
