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
	"io"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// Execute builds the command tree and runs it, exiting with an appropriate
// code on failure.  This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		exitWithError(err)
	}
}

// newRootCmd constructs the base command along with all subcommands.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "go-vir",
		Short: "A permission requirement analyser for an intermediate verification language.",
		Long: "Determines the access and predicate permissions which must be held for the statements " +
			"and expressions of an intermediate verification language to be well-defined.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configure(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if getFlag(cmd, "version") {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			//
			return cmd.Help()
		},
	}
	//
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().String("config", "", "path to configuration file (default: auto-discover govir.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("trace", false, "enable trace logging of the analysis")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text or yaml)")
	rootCmd.PersistentFlags().String("color", "auto", "colour mode (auto, always or never)")
	rootCmd.PersistentFlags().UintP("workers", "j", 0, "maximum number of methods analysed concurrently (0 = unbounded)")
	//
	rootCmd.AddCommand(newReqsCmd())
	rootCmd.AddCommand(newFootprintCmd())
	//
	return rootCmd
}

// Load the configuration for a given command, and set the logging level
// accordingly.
func configure(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return GeneralError("reading flags", err)
	}
	//
	cfg, cfgPath, err := LoadConfig(path, cmd)
	if err != nil {
		return ConfigError("loading configuration", err)
	}
	//
	switch {
	case getFlag(cmd, "trace"):
		log.SetLevel(log.TraceLevel)
	case cfg.Verbose:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	//
	if cfgPath != "" {
		log.Debugf("using configuration %s", cfgPath)
	}
	//
	cmd.SetContext(withConfig(cmd.Context(), cfg))
	//
	return nil
}

func printVersion(out io.Writer) {
	fmt.Fprint(out, "go-vir ")
	//
	if Version != "" {
		// Built via "make"
		fmt.Fprintf(out, "%s", Version)
	} else if info, ok := debug.ReadBuildInfo(); ok {
		// Built via "go install"
		fmt.Fprintf(out, "%s", info.Main.Version)
	} else {
		// Unknown, perhaps "go run"
		fmt.Fprintf(out, "(unknown version)")
	}
	//
	fmt.Fprintln(out)
}
