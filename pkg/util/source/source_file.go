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
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ReadFile reads a given source file from disk, or produces an error.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return NewSourceFile(filename, bytes), nil
}

// Line provides information about a given line within a source file.  This
// includes the line number (counting from 1), and the span of the line within
// the file.
type Line struct {
	// Original text
	text []rune
	// Span within original text of this line (excluding the newline).
	span Span
	// Line number of this line (counting from 1).
	number int
}

// Get the string representing this line.
func (p *Line) String() string {
	return string(p.text[p.span.start:p.span.end])
}

// Number gets the line number of this line, where the first line in a file
// has line number 1.
func (p *Line) Number() int {
	return p.number
}

// Start returns the starting index of this line in the original text.
func (p *Line) Start() int {
	return p.span.start
}

// Length returns the number of characters in this line.
func (p *Line) Length() int {
	return p.span.Length()
}

// File represents a given source file (typically stored on disk).  The offset
// at which each line starts is computed once on construction, such that
// positions can be recovered for every node of a parsed program without
// rescanning the file.
type File struct {
	// File name for this source file.
	filename string
	// Contents of this file.
	contents []rune
	// Starting offset of each line.
	lines []int
}

// NewSourceFile constructs a new source file from a given byte array.
func NewSourceFile(filename string, bytes []byte) *File {
	// Convert bytes into runes for easier parsing
	contents := []rune(string(bytes))
	lines := []int{0}
	//
	for i, c := range contents {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	//
	return &File{filename, contents, lines}
}

// Filename returns the filename associated with this source file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the contents of this source file.
func (s *File) Contents() []rune {
	return s.contents
}

// SyntaxError constructs a syntax error over a given span of this file with a
// given message.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// LineAndColumn returns the line (counting from 1) and column (counting from
// 1) at which a given span starts.
func (s *File) LineAndColumn(span Span) (int, int) {
	line := s.FindFirstEnclosingLine(span)
	//
	return line.Number(), span.start - line.Start() + 1
}

// FindFirstEnclosingLine determines the first line in this source file which
// encloses the start of a span.  A span starting beyond the end of the file is
// enclosed by the last line.
func (s *File) FindFirstEnclosingLine(span Span) Line {
	// Index of first line starting after the span.
	n := sort.SearchInts(s.lines, span.start+1)
	start := s.lines[n-1]
	end := len(s.contents)
	//
	if n < len(s.lines) {
		end = s.lines[n] - 1
	}
	//
	return Line{s.contents, Span{start, end}, n}
}

// SyntaxError is a structured error which retains the span of the original
// text where an error occurred, along with an error message.
type SyntaxError struct {
	srcfile *File
	// Span of the text being parsed where the error arose.
	span Span
	// Error message being reported
	msg string
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	line, col := p.srcfile.LineAndColumn(p.span)
	return fmt.Sprintf("%s:%d:%d: %s", p.srcfile.filename, line, col, p.msg)
}

// FirstEnclosingLine determines the first line in the source file to which
// this error is associated.
func (p *SyntaxError) FirstEnclosingLine() Line {
	return p.srcfile.FindFirstEnclosingLine(p.span)
}

// Highlight writes this error to a given writer, followed by the offending
// line and a row of carets beneath the offending span.  A span crossing
// multiple lines is highlighted only up to the end of its first line.
func (p *SyntaxError) Highlight(out io.Writer) {
	line := p.FirstEnclosingLine()
	offset := max(p.span.start-line.Start(), 0)
	length := max(min(p.span.Length(), line.Length()-offset), 1)
	// Expand tabs so the caret lines up
	indent := []rune(line.String())[:min(offset, line.Length())]
	//
	for i, c := range indent {
		if c != '\t' {
			indent[i] = ' '
		}
	}
	//
	fmt.Fprintln(out, p.Error())
	fmt.Fprintln(out, line.String())
	fmt.Fprintln(out, string(indent)+strings.Repeat("^", length))
}
