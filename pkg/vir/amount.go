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
package vir

import "fmt"

// PermAmount identifies how much of a given resource is held (or required).
// Only two amounts are distinguished here: full ownership and some read-only
// fraction.  The read fraction is never made concrete.
type PermAmount uint8

const (
	// READ represents some (unspecified) non-zero fraction of a resource,
	// sufficient for reading but not for writing.
	READ PermAmount = iota
	// WRITE represents full ownership of a resource.
	WRITE
)

// Mul scales this amount by another.  Full ownership is the identity, whilst
// a read fraction of anything remains a read fraction.
func (p PermAmount) Mul(other PermAmount) PermAmount {
	if p == WRITE {
		return other
	}
	//
	return READ
}

// Cmp compares two amounts, where a read fraction is less than full ownership.
func (p PermAmount) Cmp(other PermAmount) int {
	return int(p) - int(other)
}

func (p PermAmount) String() string {
	switch p {
	case READ:
		return "read"
	case WRITE:
		return "write"
	default:
		panic(fmt.Sprintf("unknown permission amount %d", p))
	}
}

// ParsePermAmount converts a string (e.g. "read") into its permission amount.
func ParsePermAmount(s string) (PermAmount, bool) {
	switch s {
	case "read":
		return READ, true
	case "write":
		return WRITE, true
	default:
		return 0, false
	}
}

// Position identifies the location in some source file from which a given
// node originated.  The zero position is the default position, and indicates
// that the location is unknown.
type Position struct {
	Line   int
	Column int
	// Id distinguishes positions which share a line and column, e.g. when a
	// node is synthesised by an earlier encoding pass.
	Id uint64
}

// NewPosition constructs a new (non-default) position.
func NewPosition(line int, column int, id uint64) Position {
	return Position{line, column, id}
}

// Pos returns this position.  Since positions are embedded in the nodes of
// the IVL, this gives every node a Pos() method.
func (p Position) Pos() Position {
	return p
}

// IsDefault checks whether this is the default (i.e. unknown) position.
func (p Position) IsDefault() bool {
	return p == Position{}
}

func (p Position) String() string {
	if p.IsDefault() {
		return "?"
	}
	//
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
