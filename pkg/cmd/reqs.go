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
	"errors"

	"github.com/consensys/go-vir/pkg/foldunfold"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newReqsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reqs [flags] program_file",
		Short: "report the permissions required by each statement of each method.",
		Long: "Report the permissions which must be held before each top-level statement of each method " +
			"of a given program for that statement to be well-defined.",
		Args: cobra.ExactArgs(1),
		RunE: runReqsCmd,
	}
}

func runReqsCmd(cmd *cobra.Command, args []string) error {
	cfg := getConfig(cmd)
	//
	program, err := readProgramFile(cmd, args[0])
	if err != nil {
		return err
	}
	//
	reports, errs := foldunfold.AnalyseProgram(program, cfg.Workers)
	//
	methods := make([]MethodOutput, len(reports))
	for i := range reports {
		methods[i] = methodOutput(&reports[i])
	}
	//
	out := cmd.OutOrStdout()
	//
	if cfg.Format == "yaml" {
		if err := writeYaml(out, methods); err != nil {
			return GeneralError("writing output", err)
		}
	} else {
		writeMethodsText(out, methods, colourEnabled(cmd, cfg))
	}
	//
	if len(errs) > 0 {
		for _, e := range errs {
			log.Error(e)
		}
		//
		return AnalysisFailure("analysing program", errors.Join(errs...))
	}
	//
	return nil
}
