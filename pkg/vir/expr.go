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
	"strings"

	"github.com/consensys/go-vir/pkg/util"
)

// Expr represents an expression (or assertion) of the intermediate
// verification language.  Expressions are immutable trees: operations over
// them construct new trees, rather than modifying existing ones.
type Expr interface {
	// Type returns the type of this expression.
	Type() Type
	// Pos returns the position from which this expression originated.
	Pos() Position
	// String returns a canonical representation of this expression.  Observe
	// that positions are never included, hence two expressions which differ
	// only in their positions have the same representation.
	String() string
}

// ============================================================================
// Local
// ============================================================================

// Local represents an access to a local variable.
type Local struct {
	Variable LocalVar
	Position
}

// Type implementation for the Expr interface.
func (p *Local) Type() Type { return p.Variable.Typ }

func (p *Local) String() string { return p.Variable.Name }

// ============================================================================
// Variant
// ============================================================================

// Variant represents a view of an enum value as one of its variants.
type Variant struct {
	Base    Expr
	Variant Field
	Position
}

// Type implementation for the Expr interface.
func (p *Variant) Type() Type { return p.Variant.Typ }

func (p *Variant) String() string { return fmt.Sprintf("%s.%s", p.Base.String(), p.Variant.Name) }

// ============================================================================
// Field
// ============================================================================

// FieldExpr represents an access to a field of some heap location.
type FieldExpr struct {
	Base  Expr
	Field Field
	Position
}

// Type implementation for the Expr interface.
func (p *FieldExpr) Type() Type { return p.Field.Typ }

func (p *FieldExpr) String() string { return fmt.Sprintf("%s.%s", p.Base.String(), p.Field.Name) }

// ============================================================================
// AddrOf
// ============================================================================

// AddrOf represents the address of some heap location.
type AddrOf struct {
	Base Expr
	Typ  Type
	Position
}

// Type implementation for the Expr interface.
func (p *AddrOf) Type() Type { return p.Typ }

func (p *AddrOf) String() string { return fmt.Sprintf("&(%s)", p.Base.String()) }

// ============================================================================
// LabelledOld
// ============================================================================

// LabelledOld represents an expression evaluated in the state at a given
// (labelled) program point, rather than in the current state.
type LabelledOld struct {
	Label string
	Base  Expr
	Position
}

// Type implementation for the Expr interface.
func (p *LabelledOld) Type() Type { return p.Base.Type() }

func (p *LabelledOld) String() string { return fmt.Sprintf("old[%s](%s)", p.Label, p.Base.String()) }

// ============================================================================
// Const
// ============================================================================

// Const represents a constant (i.e. literal) value.  The value is either a
// bool or an int64.
type Const struct {
	Value any
	Position
}

// NewBoolConst constructs a boolean constant.
func NewBoolConst(value bool) *Const {
	return &Const{Value: value}
}

// NewIntConst constructs an integer constant.
func NewIntConst(value int64) *Const {
	return &Const{Value: value}
}

// Type implementation for the Expr interface.
func (p *Const) Type() Type {
	switch p.Value.(type) {
	case bool:
		return BOOL
	case int64:
		return INT
	default:
		panic(fmt.Sprintf("unknown constant \"%v\"", p.Value))
	}
}

func (p *Const) String() string { return fmt.Sprintf("%v", p.Value) }

// ============================================================================
// MagicWand
// ============================================================================

// MagicWand represents a magic wand (Left --* Right) which, when applied,
// exchanges the resources of its left-hand side for those of its right-hand
// side.  A wand may be associated with the borrow it was created for.
type MagicWand struct {
	Left   Expr
	Right  Expr
	Borrow util.Option[uint]
	Position
}

// Type implementation for the Expr interface.
func (p *MagicWand) Type() Type { return BOOL }

func (p *MagicWand) String() string {
	return fmt.Sprintf("(%s) --* (%s)", p.Left.String(), p.Right.String())
}

// ============================================================================
// PredicateAccessPredicate
// ============================================================================

// PredicateAccessPredicate asserts ownership of a given amount of a predicate
// instance.
type PredicateAccessPredicate struct {
	PredicateType Type
	Argument      Expr
	Permission    PermAmount
	Position
}

// Type implementation for the Expr interface.
func (p *PredicateAccessPredicate) Type() Type { return BOOL }

func (p *PredicateAccessPredicate) String() string {
	return fmt.Sprintf("acc(%s(%s), %s)", p.PredicateType.Name(), p.Argument.String(), p.Permission.String())
}

// ============================================================================
// FieldAccessPredicate
// ============================================================================

// FieldAccessPredicate asserts ownership of a given amount of a heap location.
type FieldAccessPredicate struct {
	Base       Expr
	Permission PermAmount
	Position
}

// Type implementation for the Expr interface.
func (p *FieldAccessPredicate) Type() Type { return BOOL }

func (p *FieldAccessPredicate) String() string {
	return fmt.Sprintf("acc(%s, %s)", p.Base.String(), p.Permission.String())
}

// ============================================================================
// UnaryOp
// ============================================================================

// UnaryOpKind identifies a unary operator.
type UnaryOpKind uint8

const (
	// NOT represents logical negation.
	NOT UnaryOpKind = iota
	// MINUS represents arithmetic negation.
	MINUS
)

// UnaryOp represents the application of a unary operator.
type UnaryOp struct {
	Op       UnaryOpKind
	Argument Expr
	Position
}

// Type implementation for the Expr interface.
func (p *UnaryOp) Type() Type {
	if p.Op == NOT {
		return BOOL
	}
	//
	return p.Argument.Type()
}

func (p *UnaryOp) String() string {
	if p.Op == NOT {
		return fmt.Sprintf("!(%s)", p.Argument.String())
	}
	//
	return fmt.Sprintf("-(%s)", p.Argument.String())
}

// ============================================================================
// BinOp
// ============================================================================

// BinaryOpKind identifies a binary operator.
type BinaryOpKind uint8

const (
	// EQ_CMP represents equality
	EQ_CMP BinaryOpKind = iota
	// NE_CMP represents inequality
	NE_CMP
	// GT_CMP represents greater-than
	GT_CMP
	// GE_CMP represents greater-than-or-equals
	GE_CMP
	// LT_CMP represents less-than
	LT_CMP
	// LE_CMP represents less-than-or-equals
	LE_CMP
	// ADD represents addition
	ADD
	// SUB represents subtraction
	SUB
	// MUL represents multiplication
	MUL
	// DIV represents division
	DIV
	// MOD represents remainder
	MOD
	// AND represents conjunction (including separating conjunction)
	AND
	// OR represents disjunction
	OR
	// IMPLIES represents implication
	IMPLIES
)

var binaryOpSymbols = []string{"==", "!=", ">", ">=", "<", "<=", "+", "-", "*", "/", "%", "&&", "||", "==>"}

// Symbol returns the concrete syntax of this operator.
func (p BinaryOpKind) Symbol() string {
	return binaryOpSymbols[p]
}

// IsArithmetic checks whether this operator produces an integer (rather than a
// boolean).
func (p BinaryOpKind) IsArithmetic() bool {
	return p >= ADD && p <= MOD
}

// BinOp represents the application of a binary operator.
type BinOp struct {
	Op    BinaryOpKind
	Left  Expr
	Right Expr
	Position
}

// Type implementation for the Expr interface.
func (p *BinOp) Type() Type {
	if p.Op.IsArithmetic() {
		return p.Left.Type()
	}
	//
	return BOOL
}

func (p *BinOp) String() string {
	return fmt.Sprintf("(%s) %s (%s)", p.Left.String(), p.Op.Symbol(), p.Right.String())
}

// ============================================================================
// ContainerOp
// ============================================================================

// ContainerOpKind identifies an operation over a container.
type ContainerOpKind uint8

const (
	// SEQ_INDEX represents indexing a sequence.
	SEQ_INDEX ContainerOpKind = iota
	// SEQ_CONCAT represents appending two sequences.
	SEQ_CONCAT
)

// ContainerOp represents an operation over a container (e.g. a sequence).
type ContainerOp struct {
	Op    ContainerOpKind
	Left  Expr
	Right Expr
	Position
}

// Type implementation for the Expr interface.
func (p *ContainerOp) Type() Type {
	if t, ok := p.Left.Type().(*SeqType); ok && p.Op == SEQ_INDEX {
		return t.Element
	}
	//
	return p.Left.Type()
}

func (p *ContainerOp) String() string {
	if p.Op == SEQ_INDEX {
		return fmt.Sprintf("%s[%s]", p.Left.String(), p.Right.String())
	}
	//
	return fmt.Sprintf("(%s) ++ (%s)", p.Left.String(), p.Right.String())
}

// ============================================================================
// Seq
// ============================================================================

// Seq represents a sequence literal.
type Seq struct {
	Typ      Type
	Elements []Expr
	Position
}

// Type implementation for the Expr interface.
func (p *Seq) Type() Type { return p.Typ }

func (p *Seq) String() string {
	return fmt.Sprintf("Seq(%s)", joinExprs(p.Elements))
}

// ============================================================================
// Unfolding
// ============================================================================

// Unfolding represents the evaluation of an expression in a state where a
// given predicate instance is temporarily unfolded.
type Unfolding struct {
	Predicate  string
	Arguments  []Expr
	Base       Expr
	Permission PermAmount
	Variant    util.Option[string]
	Position
}

// Type implementation for the Expr interface.
func (p *Unfolding) Type() Type { return p.Base.Type() }

func (p *Unfolding) String() string {
	variant := ""
	if p.Variant.HasValue() {
		variant = fmt.Sprintf("[%s]", p.Variant.Unwrap())
	}
	//
	return fmt.Sprintf("(unfolding acc(%s%s(%s), %s) in %s)", p.Predicate, variant, joinExprs(p.Arguments),
		p.Permission.String(), p.Base.String())
}

// ============================================================================
// Cond
// ============================================================================

// Cond represents a conditional (i.e. ternary) expression.
type Cond struct {
	Guard Expr
	Then  Expr
	Else  Expr
	Position
}

// Type implementation for the Expr interface.
func (p *Cond) Type() Type { return p.Then.Type() }

func (p *Cond) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", p.Guard.String(), p.Then.String(), p.Else.String())
}

// ============================================================================
// Quantifiers
// ============================================================================

// ForAll represents a universally quantified expression.
type ForAll struct {
	Variables []LocalVar
	Triggers  [][]Expr
	Body      Expr
	Position
}

// Type implementation for the Expr interface.
func (p *ForAll) Type() Type { return BOOL }

func (p *ForAll) String() string {
	return quantifierString("forall", p.Variables, p.Triggers, p.Body)
}

// Exists represents an existentially quantified expression.
type Exists struct {
	Variables []LocalVar
	Triggers  [][]Expr
	Body      Expr
	Position
}

// Type implementation for the Expr interface.
func (p *Exists) Type() Type { return BOOL }

func (p *Exists) String() string {
	return quantifierString("exists", p.Variables, p.Triggers, p.Body)
}

func quantifierString(kind string, vars []LocalVar, triggers [][]Expr, body Expr) string {
	var builder strings.Builder
	//
	builder.WriteString(kind)
	builder.WriteString(" ")
	//
	for i, v := range vars {
		if i != 0 {
			builder.WriteString(", ")
		}

		builder.WriteString(v.String())
	}

	builder.WriteString(" ::")
	//
	for _, trigger := range triggers {
		builder.WriteString(" {")
		builder.WriteString(joinExprs(trigger))
		builder.WriteString("}")
	}
	//
	builder.WriteString(" ")
	builder.WriteString(body.String())
	//
	return builder.String()
}

// ============================================================================
// LetExpr
// ============================================================================

// LetExpr binds a variable to the value of some expression within a body.
type LetExpr struct {
	Variable LocalVar
	Def      Expr
	Body     Expr
	Position
}

// Type implementation for the Expr interface.
func (p *LetExpr) Type() Type { return p.Body.Type() }

func (p *LetExpr) String() string {
	return fmt.Sprintf("(let %s == (%s) in %s)", p.Variable.Name, p.Def.String(), p.Body.String())
}

// ============================================================================
// Function Application
// ============================================================================

// FuncApp represents the application of a (pure) function.
type FuncApp struct {
	FunctionName    string
	Arguments       []Expr
	FormalArguments []LocalVar
	ReturnType      Type
	Position
}

// Type implementation for the Expr interface.
func (p *FuncApp) Type() Type { return p.ReturnType }

func (p *FuncApp) String() string {
	return fmt.Sprintf("%s(%s)", p.FunctionName, joinExprs(p.Arguments))
}

// DomainFunc identifies a function declared within a domain.
type DomainFunc struct {
	Name            string
	FormalArguments []LocalVar
	ReturnType      Type
	DomainName      string
}

// DomainFuncApp represents the application of a domain function.
type DomainFuncApp struct {
	Function  DomainFunc
	Arguments []Expr
	Position
}

// Type implementation for the Expr interface.
func (p *DomainFuncApp) Type() Type { return p.Function.ReturnType }

func (p *DomainFuncApp) String() string {
	return fmt.Sprintf("%s::%s(%s)", p.Function.DomainName, p.Function.Name, joinExprs(p.Arguments))
}

// ============================================================================
// InhaleExhale
// ============================================================================

// InhaleExhale represents an assertion which is interpreted differently
// depending on whether it is being inhaled or exhaled.
type InhaleExhale struct {
	Inhale Expr
	Exhale Expr
	Position
}

// Type implementation for the Expr interface.
func (p *InhaleExhale) Type() Type { return BOOL }

func (p *InhaleExhale) String() string {
	return fmt.Sprintf("[(%s), (%s)]", p.Inhale.String(), p.Exhale.String())
}

// ============================================================================
// DowncastExpr
// ============================================================================

// DowncastExpr represents the evaluation of an expression under the
// knowledge that a given enum place holds a specific variant.
type DowncastExpr struct {
	Base      Expr
	EnumPlace Expr
	Field     Field
	Position
}

// Type implementation for the Expr interface.
func (p *DowncastExpr) Type() Type { return p.Base.Type() }

func (p *DowncastExpr) String() string {
	return fmt.Sprintf("(downcast %s to %s in %s)", p.EnumPlace.String(), p.Field.Name, p.Base.String())
}

// ============================================================================
// SnapApp
// ============================================================================

// SnapApp represents the snapshot (i.e. mathematical value) of an expression.
type SnapApp struct {
	Base Expr
	Position
}

// Type implementation for the Expr interface.
func (p *SnapApp) Type() Type { return &DomainType{"Snap$" + p.Base.Type().Name()} }

func (p *SnapApp) String() string { return fmt.Sprintf("snap(%s)", p.Base.String()) }

// ============================================================================
// Helpers
// ============================================================================

func joinExprs(exprs []Expr) string {
	strs := make([]string, len(exprs))
	for i, e := range exprs {
		strs[i] = e.String()
	}
	//
	return strings.Join(strs, ", ")
}
