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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Table_Print(t *testing.T) {
	var buf bytes.Buffer
	//
	table := NewTablePrinter(2)
	table.AddRow("a", "bbb")
	table.AddRow("cccc", "d")
	table.Print(&buf)
	//
	assert.Equal(t, "a    | bbb\ncccc | d\n", buf.String())
}

func Test_Table_Truncate(t *testing.T) {
	var buf bytes.Buffer
	//
	table := NewTablePrinter(2)
	table.AddRow("abcdefgh", "x")
	table.SetMaxWidth(0, 5)
	table.Print(&buf)
	//
	assert.Equal(t, "abc.. | x\n", buf.String())
}

func Test_Table_Escapes(t *testing.T) {
	var buf bytes.Buffer
	//
	table := NewTablePrinter(1)
	row := table.AddRow("x")
	table.SetEscape(0, row, BoldAnsiEscape().FgColour(TERM_RED))
	table.Print(&buf)
	assert.Equal(t, "\033[1;31mx\033[0m\n", buf.String())
	// Disabled
	buf.Reset()
	table.AnsiEscapes(false)
	table.Print(&buf)
	assert.Equal(t, "x\n", buf.String())
}
