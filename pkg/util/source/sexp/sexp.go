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
package sexp

import (
	"strings"
)

// SExp is an S-Expression, which is either a List of zero or more
// S-Expressions, or a Symbol.  Every term of a program in the textual IVL is
// an S-Expression.
type SExp interface {
	// AsList checks whether this S-Expression is a list and, if
	// so, returns it.  Otherwise, it returns nil.
	AsList() *List
	// AsSymbol checks whether this S-Expression is a symbol and,
	// if so, returns it.  Otherwise, it returns nil.
	AsSymbol() *Symbol
	// String generates the textual form of this S-Expression, with a single
	// space separating the elements of a list.
	String() string
}

// ===================================================================
// List
// ===================================================================

// List represents a list of zero or more S-Expressions.
type List struct {
	Elements []SExp
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*List)(nil)

// AsList returns the given list.
func (l *List) AsList() *List { return l }

// AsSymbol returns nil for a list.
func (l *List) AsSymbol() *Symbol { return nil }

// Len gets the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

// Get the ith element of this list
func (l *List) Get(i int) SExp { return l.Elements[i] }

// Tail returns the elements of this list from the ith onwards.  For a list of
// at most i elements, this is empty.
func (l *List) Tail(i int) []SExp {
	if i >= len(l.Elements) {
		return nil
	}
	//
	return l.Elements[i:]
}

// Head returns the first element of this list when that is a symbol, or the
// empty string otherwise.  For a declaration or statement, this is its
// keyword.
func (l *List) Head() string {
	if len(l.Elements) > 0 {
		if s := l.Elements[0].AsSymbol(); s != nil {
			return s.Value
		}
	}
	//
	return ""
}

// SymbolAt returns the value of the ith element of this list, provided that
// it exists and is a symbol.
func (l *List) SymbolAt(i int) (string, bool) {
	if i < len(l.Elements) {
		if s := l.Elements[i].AsSymbol(); s != nil {
			return s.Value, true
		}
	}
	//
	return "", false
}

func (l *List) String() string {
	var s strings.Builder
	//
	s.WriteString("(")
	//
	for i, e := range l.Elements {
		if i != 0 {
			s.WriteString(" ")
		}
		//
		s.WriteString(e.String())
	}
	//
	s.WriteString(")")
	//
	return s.String()
}

// MatchSymbols matches a list which starts with at least n elements, of which
// the first m are symbols matching the given strings.
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}
	//
	for i, symbol := range symbols {
		if s, ok := l.SymbolAt(i); !ok || s != symbol {
			return false
		}
	}
	//
	return true
}

// ===================================================================
// Symbol
// ===================================================================

// Symbol represents a terminating symbol, such as an identifier, keyword or
// integer literal.  A symbol never contains whitespace, parentheses or
// semicolons.
type Symbol struct {
	Value string
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*Symbol)(nil)

// AsList returns nil for a symbol.
func (s *Symbol) AsList() *List { return nil }

// AsSymbol returns the given symbol
func (s *Symbol) AsSymbol() *Symbol { return s }

func (s *Symbol) String() string {
	return s.Value
}
