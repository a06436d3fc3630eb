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

// Stmt represents a statement of the intermediate verification language.  As
// for expressions, statements are immutable.
type Stmt interface {
	// Keyword returns the keyword identifying this kind of statement (e.g.
	// "fold"), as used in diagnostics.
	Keyword() string
	// String returns a human-readable representation of this statement.
	String() string
}

// Comment is a statement which has no effect.
type Comment struct {
	Text string
}

// Keyword implementation for Stmt interface.
func (p *Comment) Keyword() string { return "comment" }

func (p *Comment) String() string { return fmt.Sprintf("// %s", p.Text) }

// Label marks a program point, such that its state can be referred to by old
// expressions.
type Label struct {
	Label string
}

// Keyword implementation for Stmt interface.
func (p *Label) Keyword() string { return "label" }

func (p *Label) String() string { return fmt.Sprintf("label %s", p.Label) }

// Inhale adds the resources (and assumes the facts) described by an assertion.
type Inhale struct {
	Expr Expr
}

// Keyword implementation for Stmt interface.
func (p *Inhale) Keyword() string { return "inhale" }

func (p *Inhale) String() string { return fmt.Sprintf("inhale %s", p.Expr.String()) }

// Exhale removes the resources (and checks the facts) described by an
// assertion.
type Exhale struct {
	Expr Expr
	Position
}

// Keyword implementation for Stmt interface.
func (p *Exhale) Keyword() string { return "exhale" }

func (p *Exhale) String() string { return fmt.Sprintf("exhale %s", p.Expr.String()) }

// Assert checks an assertion holds, without removing any resources.
type Assert struct {
	Expr Expr
	Position
}

// Keyword implementation for Stmt interface.
func (p *Assert) Keyword() string { return "assert" }

func (p *Assert) String() string { return fmt.Sprintf("assert %s", p.Expr.String()) }

// Obtain requests that the resources described by an assertion are made
// available (e.g. by folding or unfolding), without otherwise affecting the
// state.
type Obtain struct {
	Expr Expr
	Position
}

// Keyword implementation for Stmt interface.
func (p *Obtain) Keyword() string { return "obtain" }

func (p *Obtain) String() string { return fmt.Sprintf("obtain %s", p.Expr.String()) }

// MethodCall calls a given method, assigning its results to the targets.
type MethodCall struct {
	MethodName string
	Arguments  []Expr
	Targets    []LocalVar
}

// Keyword implementation for Stmt interface.
func (p *MethodCall) Keyword() string { return "call" }

func (p *MethodCall) String() string {
	targets := make([]string, len(p.Targets))
	for i, t := range p.Targets {
		targets[i] = t.Name
	}
	//
	return fmt.Sprintf("%s := %s(%s)", strings.Join(targets, ", "), p.MethodName, joinExprs(p.Arguments))
}

// AssignKind identifies the kind of an assignment.
type AssignKind uint8

const (
	// COPY_ASSIGN represents an assignment which copies its source.
	COPY_ASSIGN AssignKind = iota
	// MOVE_ASSIGN represents an assignment which moves its source.
	MOVE_ASSIGN
	// MUTABLE_BORROW_ASSIGN represents an assignment which mutably borrows its
	// source.
	MUTABLE_BORROW_ASSIGN
	// SHARED_BORROW_ASSIGN represents an assignment which immutably borrows its
	// source.
	SHARED_BORROW_ASSIGN
	// GHOST_ASSIGN represents an assignment to a ghost location.
	GHOST_ASSIGN
)

// Assign assigns the value of an expression to a given place.
type Assign struct {
	Target Expr
	Source Expr
	Kind   AssignKind
}

// Keyword implementation for Stmt interface.
func (p *Assign) Keyword() string { return "assign" }

func (p *Assign) String() string {
	return fmt.Sprintf("%s := %s", p.Target.String(), p.Source.String())
}

// Fold exchanges the body of a predicate instance for the instance itself.
type Fold struct {
	Predicate   string
	Arguments   []Expr
	Permission  PermAmount
	EnumVariant util.Option[string]
	Position
}

// Keyword implementation for Stmt interface.
func (p *Fold) Keyword() string { return "fold" }

func (p *Fold) String() string {
	return fmt.Sprintf("fold acc(%s(%s), %s)", p.Predicate, joinExprs(p.Arguments), p.Permission.String())
}

// Unfold exchanges a predicate instance for its body.
type Unfold struct {
	Predicate   string
	Arguments   []Expr
	Permission  PermAmount
	EnumVariant util.Option[string]
}

// Keyword implementation for Stmt interface.
func (p *Unfold) Keyword() string { return "unfold" }

func (p *Unfold) String() string {
	return fmt.Sprintf("unfold acc(%s(%s), %s)", p.Predicate, joinExprs(p.Arguments), p.Permission.String())
}

// BeginFrame begins a new frame of the fold/unfold state.
type BeginFrame struct{}

// Keyword implementation for Stmt interface.
func (p *BeginFrame) Keyword() string { return "begin-frame" }

func (p *BeginFrame) String() string { return "begin frame" }

// EndFrame ends the current frame of the fold/unfold state.
type EndFrame struct{}

// Keyword implementation for Stmt interface.
func (p *EndFrame) Keyword() string { return "end-frame" }

func (p *EndFrame) String() string { return "end frame" }

// TransferPerm moves the permissions held on one place (left) to another
// (right).  When unchecked, the source is not required to be accessible.
type TransferPerm struct {
	Left      Expr
	Right     Expr
	Unchecked bool
}

// Keyword implementation for Stmt interface.
func (p *TransferPerm) Keyword() string { return "transfer" }

func (p *TransferPerm) String() string {
	unchecked := ""
	if p.Unchecked {
		unchecked = " (unchecked)"
	}
	//
	return fmt.Sprintf("transfer perm %s --> %s%s", p.Left.String(), p.Right.String(), unchecked)
}

// PackageMagicWand packages a magic wand using a given sequence of
// statements.
type PackageMagicWand struct {
	MagicWand    Expr
	PackageStmts []Stmt
	Label        string
	Variables    []LocalVar
	Position
}

// Keyword implementation for Stmt interface.
func (p *PackageMagicWand) Keyword() string { return "package" }

func (p *PackageMagicWand) String() string {
	return fmt.Sprintf("package[%s] %s {%s}", p.Label, p.MagicWand.String(), joinStmts(p.PackageStmts))
}

// ApplyMagicWand applies a given magic wand.
type ApplyMagicWand struct {
	MagicWand Expr
	Position
}

// Keyword implementation for Stmt interface.
func (p *ApplyMagicWand) Keyword() string { return "apply" }

func (p *ApplyMagicWand) String() string { return fmt.Sprintf("apply %s", p.MagicWand.String()) }

// ReborrowingDAG describes the order in which a set of borrows expire.  Each
// node identifies a borrow, and the borrows which it reborrows from.
type ReborrowingDAG struct {
	Nodes []ReborrowingNode
}

// ReborrowingNode is a single node within a reborrowing DAG.
type ReborrowingNode struct {
	Borrow     uint
	Reborrowed []uint
}

// ExpireBorrows expires the borrows described by a reborrowing DAG.
type ExpireBorrows struct {
	DAG ReborrowingDAG
}

// Keyword implementation for Stmt interface.
func (p *ExpireBorrows) Keyword() string { return "expire-borrows" }

func (p *ExpireBorrows) String() string {
	borrows := make([]string, len(p.DAG.Nodes))
	for i, n := range p.DAG.Nodes {
		borrows[i] = fmt.Sprintf("%d", n.Borrow)
	}
	//
	return fmt.Sprintf("expire borrows {%s}", strings.Join(borrows, ", "))
}

// If executes one of two sequences of statements, depending on a guard.
type If struct {
	Guard Expr
	Then  []Stmt
	Else  []Stmt
}

// Keyword implementation for Stmt interface.
func (p *If) Keyword() string { return "if" }

func (p *If) String() string {
	return fmt.Sprintf("if %s {%s} else {%s}", p.Guard.String(), joinStmts(p.Then), joinStmts(p.Else))
}

// Downcast records that a given enum place holds the variant identified by
// a given field.
type Downcast struct {
	Base  Expr
	Field Field
}

// Keyword implementation for Stmt interface.
func (p *Downcast) Keyword() string { return "downcast" }

func (p *Downcast) String() string {
	return fmt.Sprintf("downcast %s to %s", p.Base.String(), p.Field.Name)
}

func joinStmts(stmts []Stmt) string {
	strs := make([]string, len(stmts))
	for i, s := range stmts {
		strs[i] = s.String()
	}
	//
	return strings.Join(strs, "; ")
}
