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
package termio

import (
	"fmt"
	"io"
	"strings"
)

// TablePrinter is a utility for printing tables of strings, where each column
// is padded to the width of its widest entry.  Cells can optionally be
// decorated with an ANSI escape.
type TablePrinter struct {
	widths        []uint
	rows          [][]string
	escapes       [][]string
	enableEscapes bool
}

// NewTablePrinter constructs a new table with a given number of columns and
// no rows.
func NewTablePrinter(width uint) *TablePrinter {
	return &TablePrinter{make([]uint, width), nil, nil, true}
}

// AddRow appends a row to this table, returning its index.  The number of
// values must match the number of columns.
func (p *TablePrinter) AddRow(vals ...string) uint {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	// Update column widths
	for i := 0; i < len(p.widths); i++ {
		p.widths[i] = max(p.widths[i], uint(len(vals[i])))
	}
	//
	p.rows = append(p.rows, vals)
	p.escapes = append(p.escapes, make([]string, len(vals)))
	//
	return uint(len(p.rows) - 1)
}

// Get returns the value of a given cell.
func (p *TablePrinter) Get(col uint, row uint) string {
	return p.rows[row][col]
}

// Height returns the number of rows in this table.
func (p *TablePrinter) Height() uint {
	return uint(len(p.rows))
}

// SetEscape decorates a given cell with an ANSI escape.
func (p *TablePrinter) SetEscape(col uint, row uint, escape AnsiEscape) {
	p.escapes[row][col] = escape.Build()
}

// AnsiEscapes enables or disables the printing of escapes.
func (p *TablePrinter) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// SetMaxWidth limits the width of a given column.  Longer values are
// truncated when printed.
func (p *TablePrinter) SetMaxWidth(col uint, width uint) {
	p.widths[col] = min(p.widths[col], max(width, 2))
}

// Print writes this table to a given writer.
func (p *TablePrinter) Print(out io.Writer) {
	for i, row := range p.rows {
		var line strings.Builder
		//
		for j, col := range row {
			jth := col
			jthWidth := p.widths[j]
			jthEscape := p.escapes[i][j]
			//
			if j != 0 {
				line.WriteString(" | ")
			}
			// Print colour (if applicable)
			if p.enableEscapes && jthEscape != "" {
				line.WriteString(jthEscape)
			}
			// Print data
			if uint(len(col)) > jthWidth {
				jth = col[0 : jthWidth-2]
				line.WriteString(fmt.Sprintf("%-*s..", jthWidth-2, jth))
			} else {
				line.WriteString(fmt.Sprintf("%-*s", jthWidth, jth))
			}
			// Cancel colour (if applicable)
			if p.enableEscapes && jthEscape != "" {
				line.WriteString(ResetAnsiEscape().Build())
			}
		}
		//
		fmt.Fprintln(out, strings.TrimRight(line.String(), " "))
	}
}
