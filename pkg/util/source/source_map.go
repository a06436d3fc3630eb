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
)

// Span represents a contiguous slice of a source file.  Retaining physical
// indices, rather than a string slice, allows the enclosing line to be
// recovered when reporting errors or positions.
type Span struct {
	// The first character of this span in the original text.
	start int
	// One past the final character of this span in the original text.
	end int
}

// NewSpan constructs a new span whilst checking the internal invariants are
// maintained.
func NewSpan(start int, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{start, end}
}

// Start returns the starting index of this span in the original text.
func (p *Span) Start() int {
	return p.start
}

// End returns one past the last index of this span in the original text.
func (p *Span) End() int {
	return p.end
}

// Length returns the number of characters covered by this span.
func (p *Span) Length() int {
	return p.end - p.start
}

// Map associates parsed terms with the spans of the source file from which
// they originated.  This is used both to report errors against the offending
// text, and to give translated nodes their source positions.
type Map[T comparable] struct {
	mapping map[T]Span
	srcfile *File
}

// NewSourceMap constructs an initially empty source map for a given file.
func NewSourceMap[T comparable](srcfile *File) *Map[T] {
	return &Map[T]{make(map[T]Span), srcfile}
}

// Source returns the underlying source file on which this map operates.
func (p *Map[T]) Source() *File {
	return p.srcfile
}

// Put registers a new term with a given span.  Registering the same term twice
// is an error, and will panic.
func (p *Map[T]) Put(item T, span Span) {
	if _, ok := p.mapping[item]; ok {
		panic(fmt.Sprintf("source map key already exists: %v", any(item)))
	}
	//
	p.mapping[item] = span
}

// Get determines the span associated with a given term.  If the term is not
// registered with this source map, then it will panic.
func (p *Map[T]) Get(item T) Span {
	if s, ok := p.mapping[item]; ok {
		return s
	}

	panic(fmt.Sprintf("invalid source map key: %v", any(item)))
}

// LineAndColumn returns the line and column (both counting from 1) at which a
// given term starts.
func (p *Map[T]) LineAndColumn(item T) (int, int) {
	return p.srcfile.LineAndColumn(p.Get(item))
}

// SyntaxError constructs a syntax error for a given term.
func (p *Map[T]) SyntaxError(node T, msg string) *SyntaxError {
	return p.srcfile.SyntaxError(p.Get(node), msg)
}
