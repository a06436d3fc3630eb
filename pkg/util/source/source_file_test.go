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
package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SourceFile_Lines(t *testing.T) {
	srcfile := NewSourceFile("test", []byte("(a)\n  (b c)\n\n(d)"))
	//
	check_LineAndColumn(t, srcfile, 0, 1, 1)
	check_LineAndColumn(t, srcfile, 2, 1, 3)
	check_LineAndColumn(t, srcfile, 3, 1, 4)
	check_LineAndColumn(t, srcfile, 6, 2, 3)
	check_LineAndColumn(t, srcfile, 12, 3, 1)
	check_LineAndColumn(t, srcfile, 13, 4, 1)
	// Beyond the end of the file
	check_LineAndColumn(t, srcfile, 20, 4, 8)
}

func Test_SourceFile_EnclosingLine(t *testing.T) {
	srcfile := NewSourceFile("test", []byte("(a)\n  (b c)\n(d)"))
	//
	line := srcfile.FindFirstEnclosingLine(NewSpan(7, 8))
	assert.Equal(t, 2, line.Number())
	assert.Equal(t, "  (b c)", line.String())
	assert.Equal(t, 4, line.Start())
	assert.Equal(t, 7, line.Length())
	//
	line = srcfile.FindFirstEnclosingLine(NewSpan(12, 15))
	assert.Equal(t, "(d)", line.String())
}

func Test_SourceFile_Empty(t *testing.T) {
	srcfile := NewSourceFile("test", nil)
	line := srcfile.FindFirstEnclosingLine(NewSpan(0, 0))
	//
	assert.Equal(t, 1, line.Number())
	assert.Equal(t, "", line.String())
}

func Test_SourceFile_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vir")
	require.NoError(t, os.WriteFile(path, []byte("(field f int)"), 0o644))
	//
	srcfile, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, srcfile.Filename())
	assert.Equal(t, "(field f int)", string(srcfile.Contents()))
	//
	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.vir"))
	assert.Error(t, err)
}

func Test_SyntaxError_Highlight(t *testing.T) {
	var out bytes.Buffer
	//
	srcfile := NewSourceFile("test.vir", []byte("(method m ()\n\t(assign zz 1))"))
	err := srcfile.SyntaxError(NewSpan(22, 24), "unknown variable")
	err.Highlight(&out)
	//
	assert.Equal(t, "test.vir:2:10: unknown variable", err.Error())
	assert.Equal(t, "test.vir:2:10: unknown variable\n\t(assign zz 1))\n\t        ^^\n", out.String())
}

func Test_SourceMap(t *testing.T) {
	srcfile := NewSourceFile("test", []byte("x\n y"))
	srcmap := NewSourceMap[string](srcfile)
	srcmap.Put("x", NewSpan(0, 1))
	srcmap.Put("y", NewSpan(3, 4))
	//
	line, col := srcmap.LineAndColumn("y")
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
	assert.Equal(t, "test:1:1: oops", srcmap.SyntaxError("x", "oops").Error())
	//
	assert.Panics(t, func() { srcmap.Put("x", NewSpan(0, 1)) })
	assert.Panics(t, func() { srcmap.Get("z") })
	assert.Panics(t, func() { NewSpan(2, 1) })
}

func check_LineAndColumn(t *testing.T, srcfile *File, index int, line int, col int) {
	t.Helper()
	//
	l, c := srcfile.LineAndColumn(NewSpan(index, index))
	assert.Equal(t, line, l, "line of index %d", index)
	assert.Equal(t, col, c, "column of index %d", index)
}
