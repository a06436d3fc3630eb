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

	"github.com/consensys/go-vir/pkg/foldunfold"
	"github.com/consensys/go-vir/pkg/util/termio"
	"sigs.k8s.io/yaml"
)

// PermOutput is the serialisable form of a single permission.
type PermOutput struct {
	Kind     string `json:"kind"`
	Place    string `json:"place"`
	Amount   string `json:"amount"`
	Position string `json:"position,omitempty"`
}

// StmtOutput is the serialisable form of the requirements of a statement.
type StmtOutput struct {
	Index    int          `json:"index"`
	Stmt     string       `json:"stmt"`
	Required []PermOutput `json:"required"`
}

// MethodOutput is the serialisable form of the requirements of a method.
type MethodOutput struct {
	Method     string       `json:"method"`
	Statements []StmtOutput `json:"statements"`
	Required   []PermOutput `json:"required"`
}

// FootprintOutput is the serialisable form of the footprint of a predicate
// (variant).
type FootprintOutput struct {
	Predicate string       `json:"predicate"`
	Variant   string       `json:"variant,omitempty"`
	Footprint []PermOutput `json:"footprint"`
}

func permsOutput(perms foldunfold.PermSet) []PermOutput {
	out := make([]PermOutput, perms.Len())
	//
	for i, p := range perms.ToArray() {
		pos := ""
		if !p.Place().Pos().IsDefault() {
			pos = p.Place().Pos().String()
		}
		//
		out[i] = PermOutput{p.Kind().String(), p.Place().String(), p.Amount().String(), pos}
	}
	//
	return out
}

func methodOutput(report *foldunfold.MethodReport) MethodOutput {
	stmts := make([]StmtOutput, len(report.Statements))
	//
	for i, s := range report.Statements {
		stmts[i] = StmtOutput{s.Index, s.Stmt.String(), permsOutput(s.Required)}
	}
	//
	return MethodOutput{report.Method, stmts, permsOutput(report.Required())}
}

// Write a given value as YAML.
func writeYaml(out io.Writer, value any) error {
	bytes, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	//
	_, err = out.Write(bytes)
	//
	return err
}

// Write the requirements of a set of methods as text tables, one per method.
func writeMethodsText(out io.Writer, methods []MethodOutput, colour bool) {
	for i, m := range methods {
		if i != 0 {
			fmt.Fprintln(out)
		}
		//
		header := fmt.Sprintf("method %s", m.Method)
		if colour {
			header = termio.BoldAnsiEscape().Build() + header + termio.ResetAnsiEscape().Build()
		}
		//
		fmt.Fprintln(out, header)
		//
		table := termio.NewTablePrinter(3)
		table.AnsiEscapes(colour)
		//
		for _, s := range m.Statements {
			row := table.AddRow(fmt.Sprintf("%d", s.Index), s.Stmt, permsText(s.Required))
			//
			if len(s.Required) == 0 {
				table.SetEscape(2, row, termio.ResetAnsiEscape().FgColour(termio.TERM_GREEN))
			} else {
				table.SetEscape(2, row, termio.ResetAnsiEscape().FgColour(termio.TERM_YELLOW))
			}
		}
		//
		table.Print(out)
	}
}

// Write the footprints of a set of predicates as a text table.
func writeFootprintsText(out io.Writer, footprints []FootprintOutput, colour bool) {
	table := termio.NewTablePrinter(3)
	table.AnsiEscapes(colour)
	//
	for _, f := range footprints {
		row := table.AddRow(f.Predicate, f.Variant, permsText(f.Footprint))
		table.SetEscape(0, row, termio.BoldAnsiEscape().FgColour(termio.TERM_CYAN))
	}
	//
	table.Print(out)
}

func permsText(perms []PermOutput) string {
	text := "{"
	//
	for i, p := range perms {
		if i != 0 {
			text += ", "
		}
		//
		text += fmt.Sprintf("%s(%s, %s)", p.Kind, p.Place, p.Amount)
	}
	//
	return text + "}"
}
