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

import (
	"fmt"

	"github.com/consensys/go-vir/pkg/util"
)

// Predicate is a named resource specification, whose body describes the
// resources abstracted by an instance of the predicate.
type Predicate interface {
	// Name returns the name of this predicate (which is the name of the type
	// it describes).
	Name() string
	// SelfPlace returns the place used within the body of this predicate to
	// refer to the instance being described.
	SelfPlace() Expr
	// String returns a human-readable representation of this predicate.
	String() string
}

// ============================================================================
// StructPredicate
// ============================================================================

// StructPredicate describes a struct-like type.  An abstract predicate has no
// body.
type StructPredicate struct {
	name string
	this LocalVar
	body util.Option[Expr]
}

// NewStructPredicate constructs a new struct predicate.
func NewStructPredicate(name string, this LocalVar, body util.Option[Expr]) *StructPredicate {
	return &StructPredicate{name, this, body}
}

// Name implementation for Predicate interface.
func (p *StructPredicate) Name() string { return p.name }

// SelfPlace implementation for Predicate interface.
func (p *StructPredicate) SelfPlace() Expr { return NewLocal(p.this) }

// Body returns the body of this predicate, or none if it is abstract.
func (p *StructPredicate) Body() util.Option[Expr] { return p.body }

func (p *StructPredicate) String() string {
	if p.body.HasValue() {
		return fmt.Sprintf("predicate %s(%s) { %s }", p.name, p.this.String(), p.body.Unwrap().String())
	}
	//
	return fmt.Sprintf("predicate %s(%s)", p.name, p.this.String())
}

// ============================================================================
// EnumPredicate
// ============================================================================

// EnumVariant describes one variant of an enum predicate.  The field
// identifies the variant view of the enum place, and the predicate describes
// the contents of the variant.
type EnumVariant struct {
	Name      string
	Field     Field
	Predicate *StructPredicate
}

// EnumPredicate describes an enum-like type.  The discriminant field
// determines which variant an instance holds.
type EnumPredicate struct {
	name         string
	this         LocalVar
	discriminant Field
	variants     []EnumVariant
}

// NewEnumPredicate constructs a new enum predicate.
func NewEnumPredicate(name string, this LocalVar, discriminant Field, variants []EnumVariant) *EnumPredicate {
	return &EnumPredicate{name, this, discriminant, variants}
}

// Name implementation for Predicate interface.
func (p *EnumPredicate) Name() string { return p.name }

// SelfPlace implementation for Predicate interface.
func (p *EnumPredicate) SelfPlace() Expr { return NewLocal(p.this) }

// DiscriminantField returns the field holding the discriminant of this enum.
func (p *EnumPredicate) DiscriminantField() Field { return p.discriminant }

// Variants returns the variants of this enum.
func (p *EnumPredicate) Variants() []EnumVariant { return p.variants }

// Variant returns the variant of a given name, or false if no such variant
// exists.
func (p *EnumPredicate) Variant(name string) (EnumVariant, bool) {
	for _, v := range p.variants {
		if v.Name == name {
			return v, true
		}
	}
	//
	return EnumVariant{}, false
}

func (p *EnumPredicate) String() string {
	return fmt.Sprintf("enum predicate %s(%s) [%s; %d variants]", p.name, p.this.String(), p.discriminant.Name,
		len(p.variants))
}
