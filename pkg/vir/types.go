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

// Type represents the type of an IVL expression.
type Type interface {
	// Name returns the name under which predicates for this type are
	// registered.
	Name() string
	// IsTypedRefOrTypeVar checks whether this is a typed reference, or a type
	// variable (which may be instantiated to a typed reference).
	IsTypedRefOrTypeVar() bool
	// String returns a human-readable representation of this type.
	String() string
}

// INT is the (unbounded) mathematical integer type.
var INT Type = &IntType{}

// BOOL is the boolean type.
var BOOL Type = &BoolType{}

// ============================================================================
// Int
// ============================================================================

// IntType represents mathematical integers.
type IntType struct{}

// Name implementation for Type interface.
func (p *IntType) Name() string { return "Int" }

// IsTypedRefOrTypeVar implementation for Type interface.
func (p *IntType) IsTypedRefOrTypeVar() bool { return false }

func (p *IntType) String() string { return "Int" }

// ============================================================================
// Bool
// ============================================================================

// BoolType represents booleans.
type BoolType struct{}

// Name implementation for Type interface.
func (p *BoolType) Name() string { return "Bool" }

// IsTypedRefOrTypeVar implementation for Type interface.
func (p *BoolType) IsTypedRefOrTypeVar() bool { return false }

func (p *BoolType) String() string { return "Bool" }

// ============================================================================
// TypedRef
// ============================================================================

// TypedRefType represents a reference to a heap location whose contents are
// described by the predicate of the same label.  When the referent is given,
// this is a reference type whose target is reachable through a single
// dereference (i.e. the "val_ref" field).
type TypedRefType struct {
	Label    string
	Referent Type
}

// NewTypedRef constructs a typed reference for a given predicate.
func NewTypedRef(label string) *TypedRefType {
	return &TypedRefType{label, nil}
}

// NewReference constructs a typed reference whose target can be accessed via
// a one-step dereference.
func NewReference(label string, referent Type) *TypedRefType {
	return &TypedRefType{label, referent}
}

// Name implementation for Type interface.
func (p *TypedRefType) Name() string { return p.Label }

// IsTypedRefOrTypeVar implementation for Type interface.
func (p *TypedRefType) IsTypedRefOrTypeVar() bool { return true }

func (p *TypedRefType) String() string { return fmt.Sprintf("Ref(%s)", p.Label) }

// ============================================================================
// TypeVar
// ============================================================================

// TypeVarType represents a (not yet instantiated) generic type.
type TypeVarType struct {
	Label string
}

// Name implementation for Type interface.
func (p *TypeVarType) Name() string { return p.Label }

// IsTypedRefOrTypeVar implementation for Type interface.
func (p *TypeVarType) IsTypedRefOrTypeVar() bool { return true }

func (p *TypeVarType) String() string { return fmt.Sprintf("TypeVar(%s)", p.Label) }

// ============================================================================
// Domain
// ============================================================================

// DomainType represents a value of some (mathematical) domain.
type DomainType struct {
	Label string
}

// Name implementation for Type interface.
func (p *DomainType) Name() string { return p.Label }

// IsTypedRefOrTypeVar implementation for Type interface.
func (p *DomainType) IsTypedRefOrTypeVar() bool { return false }

func (p *DomainType) String() string { return fmt.Sprintf("Domain(%s)", p.Label) }

// ============================================================================
// Seq
// ============================================================================

// SeqType represents a (mathematical) sequence of elements.
type SeqType struct {
	Element Type
}

// Name implementation for Type interface.
func (p *SeqType) Name() string { return p.String() }

// IsTypedRefOrTypeVar implementation for Type interface.
func (p *SeqType) IsTypedRefOrTypeVar() bool { return false }

func (p *SeqType) String() string { return fmt.Sprintf("Seq[%s]", p.Element.String()) }

// ============================================================================
// Variables & Fields
// ============================================================================

// LocalVar represents a local variable (or bound variable) of a given type.
type LocalVar struct {
	Name string
	Typ  Type
}

// NewLocalVar constructs a new local variable.
func NewLocalVar(name string, typ Type) LocalVar {
	return LocalVar{name, typ}
}

func (p LocalVar) String() string {
	return fmt.Sprintf("%s: %s", p.Name, p.Typ.String())
}

// Field represents a named field of a given type.  Fields are used both for
// the fields of a struct, and for the variants of an enum.
type Field struct {
	Name string
	Typ  Type
}

// NewField constructs a new field.
func NewField(name string, typ Type) Field {
	return Field{name, typ}
}

func (p Field) String() string {
	return fmt.Sprintf("%s: %s", p.Name, p.Typ.String())
}
