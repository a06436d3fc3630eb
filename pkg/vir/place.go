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
	"reflect"

	"github.com/consensys/go-vir/pkg/util"
)

// DEREF_FIELD is the name of the field through which the target of a reference
// is accessed.
const DEREF_FIELD = "val_ref"

// ============================================================================
// Constructors
// ============================================================================

// NewLocal constructs an access to a given local variable.
func NewLocal(v LocalVar) *Local {
	return &Local{Variable: v}
}

// NewFieldAccess constructs an access to a given field of a given place.
func NewFieldAccess(base Expr, field Field) *FieldExpr {
	return &FieldExpr{Base: base, Field: field}
}

// NewVariant constructs a view of a given enum place as one of its variants.
func NewVariant(base Expr, variant Field) *Variant {
	return &Variant{Base: base, Variant: variant}
}

// True constructs the constant true.
func True() *Const {
	return NewBoolConst(true)
}

// And constructs the conjunction of two expressions.
func And(left Expr, right Expr) *BinOp {
	return &BinOp{Op: AND, Left: left, Right: right}
}

// AccPermission constructs an assertion of ownership of a given amount of a
// given place.
func AccPermission(place Expr, amount PermAmount) *FieldAccessPredicate {
	return &FieldAccessPredicate{Base: place, Permission: amount}
}

// PredPermission constructs an assertion of ownership of the predicate
// instance for a given place.  This is only possible when the place has a
// typed reference type, otherwise false is returned.
func PredPermission(place Expr, amount PermAmount) (*PredicateAccessPredicate, bool) {
	if _, ok := place.Type().(*TypedRefType); !ok {
		return nil, false
	}
	//
	return &PredicateAccessPredicate{PredicateType: place.Type(), Argument: place, Permission: amount}, true
}

// NewDowncast constructs an expression which evaluates a given base under the
// knowledge that a given enum place holds the variant identified by field.
func NewDowncast(base Expr, enumPlace Expr, field Field) *DowncastExpr {
	return &DowncastExpr{Base: base, EnumPlace: enumPlace, Field: field}
}

// ============================================================================
// Places
// ============================================================================

// IsPlace checks whether a given expression denotes a storage location, i.e.
// is a local variable followed by zero or more field, variant or address-of
// steps (possibly evaluated in an old state).
func IsPlace(e Expr) bool {
	switch e := e.(type) {
	case *Local:
		return true
	case *FieldExpr:
		return IsPlace(e.Base)
	case *Variant:
		return IsPlace(e.Base)
	case *AddrOf:
		return IsPlace(e.Base)
	case *LabelledOld:
		return IsPlace(e.Base)
	default:
		return false
	}
}

// LabelOf returns the label of the old state in which a given place is
// evaluated, or false if it is evaluated in the current state.
func LabelOf(e Expr) (string, bool) {
	switch e := e.(type) {
	case *LabelledOld:
		return e.Label, true
	case *FieldExpr:
		return LabelOf(e.Base)
	case *Variant:
		return LabelOf(e.Base)
	case *AddrOf:
		return LabelOf(e.Base)
	default:
		return "", false
	}
}

// IsOld checks whether any part of a given expression is evaluated in an old
// state.
func IsOld(e Expr) bool {
	old := false
	//
	Visit(e, func(e Expr) bool {
		if _, ok := e.(*LabelledOld); ok {
			old = true
		}
		// Stop as soon as we know
		return !old
	})
	//
	return old
}

// Old evaluates a given place in the old state identified by label.  Any old
// labels already within the place are dropped, such that the result has a
// single label at its root.
func Old(e Expr, label string) *LabelledOld {
	return &LabelledOld{Label: label, Base: stripOld(e), Position: e.Pos()}
}

func stripOld(e Expr) Expr {
	switch e := e.(type) {
	case *LabelledOld:
		return stripOld(e.Base)
	case *FieldExpr:
		return &FieldExpr{stripOld(e.Base), e.Field, e.Position}
	case *Variant:
		return &Variant{stripOld(e.Base), e.Variant, e.Position}
	case *AddrOf:
		return &AddrOf{stripOld(e.Base), e.Typ, e.Position}
	default:
		return e
	}
}

// TryDeref returns the target of a given reference place, or false if the
// place does not have a reference type.
func TryDeref(e Expr) (Expr, bool) {
	if t, ok := e.Type().(*TypedRefType); ok && t.Referent != nil {
		return NewFieldAccess(e, NewField(DEREF_FIELD, t.Referent)), true
	}
	//
	return nil, false
}

// Equal checks whether two expressions are structurally equal.  Positions are
// ignored.
func Equal(lhs Expr, rhs Expr) bool {
	return reflect.TypeOf(lhs) == reflect.TypeOf(rhs) && lhs.String() == rhs.String() &&
		lhs.Type().String() == rhs.Type().String()
}

// ReplacePlace substitutes every occurrence of a given place (target) within
// an expression with another expression (replacement).  This constructs a new
// expression, and leaves the original untouched.
func ReplacePlace(e Expr, target Expr, replacement Expr) Expr {
	return Transform(e, func(e Expr) (Expr, bool) {
		if Equal(e, target) {
			return replacement, true
		}
		//
		return nil, false
	})
}

// WithPos returns a (shallow) copy of a given place with its position set to
// pos.
func WithPos(e Expr, pos Position) Expr {
	switch e := e.(type) {
	case *Local:
		c := *e
		c.Position = pos
		return &c
	case *FieldExpr:
		c := *e
		c.Position = pos
		return &c
	case *Variant:
		c := *e
		c.Position = pos
		return &c
	case *AddrOf:
		c := *e
		c.Position = pos
		return &c
	case *LabelledOld:
		c := *e
		c.Position = pos
		return &c
	default:
		panic(fmt.Sprintf("cannot set position of non-place \"%s\"", e.String()))
	}
}

// ============================================================================
// Traversal
// ============================================================================

// Visit traverses a given expression in pre-order, calling fn on each node
// visited.  The traversal of a given node's children is skipped when fn
// returns false.
func Visit(e Expr, fn func(Expr) bool) {
	if fn(e) {
		for _, child := range Children(e) {
			Visit(child, fn)
		}
	}
}

// Children returns the immediate subexpressions of a given expression.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *Local, *Const:
		return nil
	case *Variant:
		return []Expr{e.Base}
	case *FieldExpr:
		return []Expr{e.Base}
	case *AddrOf:
		return []Expr{e.Base}
	case *LabelledOld:
		return []Expr{e.Base}
	case *MagicWand:
		return []Expr{e.Left, e.Right}
	case *PredicateAccessPredicate:
		return []Expr{e.Argument}
	case *FieldAccessPredicate:
		return []Expr{e.Base}
	case *UnaryOp:
		return []Expr{e.Argument}
	case *BinOp:
		return []Expr{e.Left, e.Right}
	case *ContainerOp:
		return []Expr{e.Left, e.Right}
	case *Seq:
		return e.Elements
	case *Unfolding:
		return append(append([]Expr{}, e.Arguments...), e.Base)
	case *Cond:
		return []Expr{e.Guard, e.Then, e.Else}
	case *ForAll:
		return []Expr{e.Body}
	case *Exists:
		return []Expr{e.Body}
	case *LetExpr:
		return []Expr{e.Def, e.Body}
	case *FuncApp:
		return e.Arguments
	case *DomainFuncApp:
		return e.Arguments
	case *InhaleExhale:
		return []Expr{e.Inhale, e.Exhale}
	case *DowncastExpr:
		return []Expr{e.Base, e.EnumPlace}
	case *SnapApp:
		return []Expr{e.Base}
	default:
		name := reflect.TypeOf(e)
		panic(fmt.Sprintf("unknown IVL expression \"%s\"", name.String()))
	}
}

// Transform rebuilds a given expression top-down.  At each node, fn is called
// first: if it returns true, then its result replaces that node (and the
// traversal does not descend further); otherwise, the node is rebuilt from its
// transformed children.
func Transform(e Expr, fn func(Expr) (Expr, bool)) Expr {
	if r, ok := fn(e); ok {
		return r
	}
	//
	t := func(child Expr) Expr { return Transform(child, fn) }
	ts := func(children []Expr) []Expr {
		nchildren := make([]Expr, len(children))
		for i, c := range children {
			nchildren[i] = t(c)
		}
		//
		return nchildren
	}
	//
	switch e := e.(type) {
	case *Local:
		c := *e
		return &c
	case *Const:
		c := *e
		return &c
	case *Variant:
		return &Variant{t(e.Base), e.Variant, e.Position}
	case *FieldExpr:
		return &FieldExpr{t(e.Base), e.Field, e.Position}
	case *AddrOf:
		return &AddrOf{t(e.Base), e.Typ, e.Position}
	case *LabelledOld:
		return &LabelledOld{e.Label, t(e.Base), e.Position}
	case *MagicWand:
		return &MagicWand{t(e.Left), t(e.Right), e.Borrow, e.Position}
	case *PredicateAccessPredicate:
		return &PredicateAccessPredicate{e.PredicateType, t(e.Argument), e.Permission, e.Position}
	case *FieldAccessPredicate:
		return &FieldAccessPredicate{t(e.Base), e.Permission, e.Position}
	case *UnaryOp:
		return &UnaryOp{e.Op, t(e.Argument), e.Position}
	case *BinOp:
		return &BinOp{e.Op, t(e.Left), t(e.Right), e.Position}
	case *ContainerOp:
		return &ContainerOp{e.Op, t(e.Left), t(e.Right), e.Position}
	case *Seq:
		return &Seq{e.Typ, ts(e.Elements), e.Position}
	case *Unfolding:
		return &Unfolding{e.Predicate, ts(e.Arguments), t(e.Base), e.Permission, e.Variant, e.Position}
	case *Cond:
		return &Cond{t(e.Guard), t(e.Then), t(e.Else), e.Position}
	case *ForAll:
		return &ForAll{e.Variables, transformTriggers(e.Triggers, ts), t(e.Body), e.Position}
	case *Exists:
		return &Exists{e.Variables, transformTriggers(e.Triggers, ts), t(e.Body), e.Position}
	case *LetExpr:
		return &LetExpr{e.Variable, t(e.Def), t(e.Body), e.Position}
	case *FuncApp:
		return &FuncApp{e.FunctionName, ts(e.Arguments), e.FormalArguments, e.ReturnType, e.Position}
	case *DomainFuncApp:
		return &DomainFuncApp{e.Function, ts(e.Arguments), e.Position}
	case *InhaleExhale:
		return &InhaleExhale{t(e.Inhale), t(e.Exhale), e.Position}
	case *DowncastExpr:
		return &DowncastExpr{t(e.Base), t(e.EnumPlace), e.Field, e.Position}
	case *SnapApp:
		return &SnapApp{t(e.Base), e.Position}
	default:
		name := reflect.TypeOf(e)
		panic(fmt.Sprintf("unknown IVL expression \"%s\"", name.String()))
	}
}

func transformTriggers(triggers [][]Expr, ts func([]Expr) []Expr) [][]Expr {
	ntriggers := make([][]Expr, len(triggers))
	for i, trigger := range triggers {
		ntriggers[i] = ts(trigger)
	}
	//
	return ntriggers
}

// MaybeVariant converts an optional variant name into an option.
func MaybeVariant(name string) util.Option[string] {
	if name == "" {
		return util.None[string]()
	}
	//
	return util.Some(name)
}
