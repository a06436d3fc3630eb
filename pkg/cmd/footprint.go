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

	"github.com/consensys/go-vir/pkg/foldunfold"
	"github.com/consensys/go-vir/pkg/util"
	"github.com/consensys/go-vir/pkg/vir"
	"github.com/spf13/cobra"
)

func newFootprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "footprint [flags] program_file",
		Short: "report the footprint of each predicate.",
		Long: "Report the permissions obtained by unfolding each predicate of a given program.  For enum " +
			"predicates, the footprint of each variant is reported separately.",
		Args: cobra.ExactArgs(1),
		RunE: runFootprintCmd,
	}
}

func runFootprintCmd(cmd *cobra.Command, args []string) (err error) {
	cfg := getConfig(cmd)
	//
	program, err := readProgramFile(cmd, args[0])
	if err != nil {
		return err
	}
	// Malformed predicates are fatal for the footprint computation
	defer func() {
		if r := recover(); r != nil {
			err = AnalysisFailure("computing footprints", fmt.Errorf("%v", r))
		}
	}()
	//
	footprints := predicateFootprints(program.Predicates)
	out := cmd.OutOrStdout()
	//
	if cfg.Format == "yaml" {
		if err := writeYaml(out, footprints); err != nil {
			return GeneralError("writing output", err)
		}
	} else {
		writeFootprintsText(out, footprints, colourEnabled(cmd, cfg))
	}
	//
	return nil
}

func predicateFootprints(preds []vir.Predicate) []FootprintOutput {
	var footprints []FootprintOutput
	//
	for _, pred := range preds {
		none := foldunfold.BodyFootprint(pred, util.None[string]())
		footprints = append(footprints, FootprintOutput{pred.Name(), "", permsOutput(none)})
		//
		if enum, ok := pred.(*vir.EnumPredicate); ok {
			for _, v := range enum.Variants() {
				fp := foldunfold.BodyFootprint(pred, util.Some(v.Name))
				footprints = append(footprints, FootprintOutput{pred.Name(), v.Name, permsOutput(fp)})
			}
		}
	}
	//
	return footprints
}
