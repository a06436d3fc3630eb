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
package foldunfold

import (
	"testing"

	"github.com/consensys/go-vir/pkg/util"
	"github.com/consensys/go-vir/pkg/vir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Predicate T(self) describes acc(self.f, write)
func structPredicate() *vir.StructPredicate {
	this := vir.NewLocalVar("self", refT)
	body := vir.AccPermission(field(vir.NewLocal(this), fieldF), vir.WRITE)
	//
	return vir.NewStructPredicate("T", this, util.Some[vir.Expr](body))
}

// Enum predicate E(self) with discriminant "disc", and variant A (accessed
// through field "a") describing acc(self.f, write).
func enumPredicate() *vir.EnumPredicate {
	var (
		refE  = vir.NewTypedRef("E")
		refA  = vir.NewTypedRef("A")
		this  = vir.NewLocalVar("self", refE)
		athis = vir.NewLocalVar("self", refA)
		body  = vir.AccPermission(field(vir.NewLocal(athis), fieldF), vir.WRITE)
		a     = vir.NewStructPredicate("A", athis, util.Some[vir.Expr](body))
	)
	//
	return vir.NewEnumPredicate("E", this, vir.NewField("disc", vir.INT),
		[]vir.EnumVariant{{Name: "A", Field: vir.NewField("a", refA), Predicate: a}})
}

func testPredicates() *Predicates {
	return NewPredicates(structPredicate(), enumPredicate())
}

func checkRequirements(t *testing.T, expected PermSet, actual PermSet) {
	t.Helper()
	assert.True(t, expected.Equals(actual), "expected %s, got %s", expected.String(), actual.String())
}

// ============================================================================
// Statements
// ============================================================================

func Test_Stmt_Empty(t *testing.T) {
	preds := testPredicates()
	x := local("x", refT)
	//
	stmts := []vir.Stmt{
		&vir.Comment{Text: "hello"},
		&vir.Label{Label: "l"},
		&vir.BeginFrame{},
		&vir.EndFrame{},
		&vir.TransferPerm{Left: x, Right: x, Unchecked: true},
		&vir.PackageMagicWand{MagicWand: &vir.MagicWand{Left: vir.True(), Right: vir.True()}},
		&vir.ExpireBorrows{},
	}
	//
	for _, s := range stmts {
		assert.True(t, StmtRequirements(s, preds).IsEmpty(), s.Keyword())
	}
}

func Test_Stmt_Inhale(t *testing.T) {
	preds := testPredicates()
	x := local("x", refT)
	xf := field(x, fieldF)
	// inhale acc(x.f) && x.f == 0
	e := vir.And(vir.AccPermission(xf, vir.WRITE), &vir.BinOp{Op: vir.EQ_CMP, Left: xf, Right: vir.NewIntConst(0)})
	//
	checkRequirements(t, EmptyPermSet(), StmtRequirements(&vir.Inhale{Expr: e}, preds))
	// inhale x.g.f == 0
	xgf := field(field(x, fieldG), fieldF)
	e = &vir.BinOp{Op: vir.EQ_CMP, Left: xgf, Right: vir.NewIntConst(0)}
	//
	checkRequirements(t, NewPermSet(Acc(xgf, vir.READ)), StmtRequirements(&vir.Inhale{Expr: e}, preds))
}

func Test_Stmt_Inhale_Old(t *testing.T) {
	preds := testPredicates()
	x := local("x", refT)
	// inhale pred(old[l](x).g), which grants what it requires
	inner := field(vir.Old(x, "l"), fieldG)
	e, ok := vir.PredPermission(inner, vir.WRITE)
	require.True(t, ok)
	//
	checkRequirements(t, NewPermSet(Pred(vir.Old(inner, "l"), vir.READ)), ExprRequirements(e, preds))
	checkRequirements(t, EmptyPermSet(), StmtRequirements(&vir.Inhale{Expr: e}, preds))
}

func Test_Stmt_Exhale(t *testing.T) {
	preds := testPredicates()
	pos := vir.NewPosition(5, 6, 7)
	xf := field(local("x", refT), fieldF)
	e := vir.AccPermission(xf, vir.WRITE)
	//
	stmts := []vir.Stmt{&vir.Exhale{Expr: e, Position: pos}, &vir.Assert{Expr: e, Position: pos},
		&vir.Obtain{Expr: e, Position: pos}}
	//
	for _, s := range stmts {
		perms := StmtRequirements(s, preds)
		checkRequirements(t, NewPermSet(Acc(xf, vir.READ)), perms)
		assert.Equal(t, pos, perms.ToArray()[0].Place().Pos())
	}
}

func Test_Stmt_MethodCall(t *testing.T) {
	preds := testPredicates()
	x, y := vir.NewLocalVar("x", refT), vir.NewLocalVar("y", vir.INT)
	s := &vir.MethodCall{MethodName: "m", Targets: []vir.LocalVar{x, y}}
	//
	expected := NewPermSet(Acc(vir.NewLocal(x), vir.WRITE), Acc(vir.NewLocal(y), vir.WRITE))
	checkRequirements(t, expected, StmtRequirements(s, preds))
}

func Test_Stmt_MethodCall_Arguments(t *testing.T) {
	preds := testPredicates()
	s := &vir.MethodCall{MethodName: "m", Arguments: []vir.Expr{vir.True()}}
	//
	require.Panics(t, func() { StmtRequirements(s, preds) })
}

func Test_Stmt_Assign(t *testing.T) {
	preds := testPredicates()
	x := local("x", refT)
	targets := []vir.Expr{local("i", vir.INT), field(x, fieldF)}
	sources := []vir.Expr{
		vir.NewIntConst(1),
		field(field(x, fieldG), fieldF),
		&vir.BinOp{Op: vir.ADD, Left: field(x, fieldF), Right: field(local("y", refT), fieldF)},
	}
	// requirements(assign t s) = requirements(s) + acc(t, write)
	for _, target := range targets {
		for _, source := range sources {
			s := &vir.Assign{Target: target, Source: source}
			expected := ExprRequirements(source, preds).Union(NewPermSet(Acc(target, vir.WRITE)))
			checkRequirements(t, expected, StmtRequirements(s, preds))
		}
	}
}

func Test_Stmt_Fold(t *testing.T) {
	preds := testPredicates()
	p := local("p", refT)
	s := &vir.Fold{Predicate: "T", Arguments: []vir.Expr{p}, Permission: vir.WRITE}
	//
	checkRequirements(t, NewPermSet(Acc(field(p, fieldF), vir.WRITE)), StmtRequirements(s, preds))
	// Amount is initialised
	s.Permission = vir.READ
	checkRequirements(t, NewPermSet(Acc(field(p, fieldF), vir.READ)), StmtRequirements(s, preds))
}

func Test_Stmt_Fold_Enum(t *testing.T) {
	preds := testPredicates()
	refE, refA := vir.NewTypedRef("E"), vir.NewTypedRef("A")
	p := local("p", refE)
	s := &vir.Fold{Predicate: "E", Arguments: []vir.Expr{p}, Permission: vir.READ,
		EnumVariant: util.Some("A")}
	//
	disc := field(p, vir.NewField("disc", vir.INT))
	af := field(vir.NewVariant(p, vir.NewField("a", refA)), fieldF)
	//
	checkRequirements(t, NewPermSet(Acc(disc, vir.READ), Acc(af, vir.READ)), StmtRequirements(s, preds))
	// Without a variant, only the discriminant
	s.EnumVariant = util.None[string]()
	checkRequirements(t, NewPermSet(Acc(disc, vir.READ)), StmtRequirements(s, preds))
	// Unknown variant
	s.EnumVariant = util.Some("B")
	require.Panics(t, func() { StmtRequirements(s, preds) })
}

func Test_Stmt_Fold_Malformed(t *testing.T) {
	preds := testPredicates()
	p, q := local("p", refT), local("q", refT)
	// Two arguments
	s := &vir.Fold{Predicate: "T", Arguments: []vir.Expr{p, q}, Permission: vir.WRITE}
	require.Panics(t, func() { StmtRequirements(s, preds) })
	// Not a place
	s = &vir.Fold{Predicate: "T", Arguments: []vir.Expr{vir.True()}, Permission: vir.WRITE}
	require.Panics(t, func() { StmtRequirements(s, preds) })
	// No predicate
	s = &vir.Fold{Predicate: "U", Arguments: []vir.Expr{local("u", vir.NewTypedRef("U"))}, Permission: vir.WRITE}
	require.Panics(t, func() { StmtRequirements(s, preds) })
}

func Test_Stmt_Unfold(t *testing.T) {
	preds := testPredicates()
	p := local("p", refT)
	s := &vir.Unfold{Predicate: "T", Arguments: []vir.Expr{p}, Permission: vir.WRITE}
	//
	checkRequirements(t, NewPermSet(Pred(p, vir.WRITE)), StmtRequirements(s, preds))
	// Nested place
	pg := field(p, fieldG)
	s = &vir.Unfold{Predicate: "T", Arguments: []vir.Expr{pg}, Permission: vir.READ}
	checkRequirements(t, NewPermSet(Acc(pg, vir.READ), Pred(pg, vir.READ)), StmtRequirements(s, preds))
}

func Test_Stmt_Transfer(t *testing.T) {
	preds := testPredicates()
	x, y := local("x", refT), local("y", refT)
	s := &vir.TransferPerm{Left: x, Right: y}
	//
	checkRequirements(t, NewPermSet(Acc(x, vir.READ)), StmtRequirements(s, preds))
}

func Test_Stmt_ApplyMagicWand(t *testing.T) {
	preds := testPredicates()
	xf, yf := field(local("x", refT), fieldF), field(local("y", refT), fieldF)
	w := &vir.MagicWand{Left: vir.AccPermission(xf, vir.WRITE), Right: vir.AccPermission(yf, vir.WRITE)}
	//
	checkRequirements(t, NewPermSet(Acc(xf, vir.READ)), StmtRequirements(&vir.ApplyMagicWand{MagicWand: w}, preds))
}

func Test_Stmt_If(t *testing.T) {
	preds := testPredicates()
	x, y, z := local("x", vir.INT), local("y", vir.INT), local("z", vir.INT)
	assign := func(e vir.Expr) vir.Stmt { return &vir.Assign{Target: e, Source: vir.NewIntConst(0)} }
	s := &vir.If{
		Guard: vir.True(),
		Then:  []vir.Stmt{assign(x), assign(y)},
		Else:  []vir.Stmt{assign(y), assign(z)},
	}
	//
	checkRequirements(t, NewPermSet(Acc(y, vir.WRITE)), StmtRequirements(s, preds))
	// Guard requirements are always included
	gf := field(local("g", refT), fieldF)
	s.Guard = &vir.BinOp{Op: vir.EQ_CMP, Left: gf, Right: vir.NewIntConst(0)}
	checkRequirements(t, NewPermSet(Acc(y, vir.WRITE), Acc(gf, vir.READ)), StmtRequirements(s, preds))
}

func Test_Stmt_If_Amounts(t *testing.T) {
	preds := testPredicates()
	z := local("z", vir.INT)
	yf := field(local("y", refT), fieldF)
	// if (true) { y.f := 0 } else { z := y.f }
	s := &vir.If{
		Guard: vir.True(),
		Then:  []vir.Stmt{&vir.Assign{Target: yf, Source: vir.NewIntConst(0)}},
		Else:  []vir.Stmt{&vir.Assign{Target: z, Source: yf}},
	}
	// Both branches need y.f, so at least read access is required
	checkRequirements(t, NewPermSet(Acc(yf, vir.READ)), StmtRequirements(s, preds))
	// Symmetric
	s.Then, s.Else = s.Else, s.Then
	checkRequirements(t, NewPermSet(Acc(yf, vir.READ)), StmtRequirements(s, preds))
}

func Test_Stmt_Downcast(t *testing.T) {
	preds := testPredicates()
	p := local("p", vir.NewTypedRef("E"))
	s := &vir.Downcast{Base: p, Field: vir.NewField("a", vir.NewTypedRef("A"))}
	//
	disc := field(p, vir.NewField("disc", vir.INT))
	checkRequirements(t, NewPermSet(Acc(disc, vir.READ)), StmtRequirements(s, preds))
	// Not an enum
	s = &vir.Downcast{Base: local("q", refT), Field: fieldF}
	require.Panics(t, func() { StmtRequirements(s, preds) })
}

type unknownStmt struct{}

func (p *unknownStmt) Keyword() string { return "unknown" }
func (p *unknownStmt) String() string  { return "unknown" }

func Test_Stmt_Unknown(t *testing.T) {
	require.Panics(t, func() { StmtRequirements(&unknownStmt{}, testPredicates()) })
}

// ============================================================================
// Expressions
// ============================================================================

func Test_Expr_Empty(t *testing.T) {
	preds := testPredicates()
	xf := field(local("x", refT), fieldF)
	//
	exprs := []vir.Expr{
		vir.True(),
		local("x", refT),
		vir.Old(xf, "l"),
		&vir.MagicWand{Left: vir.AccPermission(xf, vir.WRITE), Right: vir.True()},
		&vir.InhaleExhale{Inhale: vir.AccPermission(xf, vir.WRITE), Exhale: vir.True()},
	}
	//
	for _, e := range exprs {
		assert.True(t, ExprRequirements(e, preds).IsEmpty(), e.String())
	}
}

func Test_Expr_Field(t *testing.T) {
	preds := testPredicates()
	xgf := field(field(local("x", refT), fieldG), fieldF)
	// Only the place itself
	checkRequirements(t, NewPermSet(Acc(xgf, vir.READ)), ExprRequirements(xgf, preds))
	//
	v := vir.NewVariant(local("p", vir.NewTypedRef("E")), vir.NewField("a", vir.NewTypedRef("A")))
	checkRequirements(t, NewPermSet(Acc(v, vir.READ)), ExprRequirements(v, preds))
}

func Test_Expr_Compound(t *testing.T) {
	preds := testPredicates()
	x := local("x", refT)
	xf, xgf := field(x, fieldF), field(field(x, fieldG), fieldF)
	expected := NewPermSet(Acc(xf, vir.READ), Acc(xgf, vir.READ))
	//
	exprs := []vir.Expr{
		&vir.BinOp{Op: vir.ADD, Left: xf, Right: xgf},
		&vir.ContainerOp{Op: vir.SEQ_INDEX, Left: xf, Right: xgf},
		&vir.Seq{Typ: &vir.SeqType{Element: vir.INT}, Elements: []vir.Expr{xf, xgf, xf}},
		&vir.Cond{Guard: vir.True(), Then: xf, Else: xgf},
		&vir.UnaryOp{Op: vir.MINUS, Argument: &vir.BinOp{Op: vir.SUB, Left: xgf, Right: xf}},
		vir.AccPermission(&vir.BinOp{Op: vir.ADD, Left: xf, Right: xgf}, vir.WRITE),
	}
	//
	for _, e := range exprs {
		checkRequirements(t, expected, ExprRequirements(e, preds))
	}
}

func Test_Expr_PredicateAccess(t *testing.T) {
	preds := testPredicates()
	x := local("x", refT)
	xg := field(x, fieldG)
	// Current state
	e, _ := vir.PredPermission(xg, vir.WRITE)
	checkRequirements(t, NewPermSet(Pred(xg, vir.READ), Acc(xg, vir.READ)), ExprRequirements(e, preds))
	// Old state
	old := vir.Old(xg, "l")
	e, _ = vir.PredPermission(old, vir.WRITE)
	checkRequirements(t, NewPermSet(Pred(old, vir.READ)), ExprRequirements(e, preds))
	// Labelled within place
	inner := field(vir.Old(x, "l"), fieldG)
	e, _ = vir.PredPermission(inner, vir.WRITE)
	checkRequirements(t, NewPermSet(Pred(old, vir.READ)), ExprRequirements(e, preds))
}

func Test_Expr_Unfolding(t *testing.T) {
	preds := testPredicates()
	p := local("p", refT)
	pf := field(p, fieldF)
	qf := field(local("q", refT), fieldF)
	body := &vir.BinOp{Op: vir.ADD, Left: pf, Right: qf}
	//
	for _, amount := range []vir.PermAmount{vir.READ, vir.WRITE} {
		e := &vir.Unfolding{Predicate: "T", Arguments: []vir.Expr{p}, Base: body, Permission: amount}
		perms := ExprRequirements(e, preds)
		//
		checkRequirements(t, NewPermSet(Acc(qf, vir.READ), Pred(p, amount)), perms)
		assert.True(t, perms.Contains(Pred(p, amount)))
		assert.False(t, perms.ContainsResource(Acc(pf, vir.READ)))
	}
}

func Test_Expr_Unfolding_Enum(t *testing.T) {
	preds := testPredicates()
	refA := vir.NewTypedRef("A")
	p := local("p", vir.NewTypedRef("E"))
	disc := field(p, vir.NewField("disc", vir.INT))
	af := field(vir.NewVariant(p, vir.NewField("a", refA)), fieldF)
	body := &vir.BinOp{Op: vir.ADD, Left: disc, Right: af}
	//
	e := &vir.Unfolding{Predicate: "E", Arguments: []vir.Expr{p}, Base: body, Permission: vir.READ,
		Variant: util.Some("A")}
	checkRequirements(t, NewPermSet(Pred(p, vir.READ)), ExprRequirements(e, preds))
	// Without variant, only the discriminant is available
	e.Variant = util.None[string]()
	checkRequirements(t, NewPermSet(Pred(p, vir.READ), Acc(af, vir.READ)), ExprRequirements(e, preds))
}

func Test_Expr_Quantifier(t *testing.T) {
	preds := testPredicates()
	v := vir.NewLocalVar("v", vir.INT)
	vf := field(local("x", refT), fieldF)
	body := &vir.BinOp{Op: vir.EQ_CMP, Left: vir.NewLocal(v), Right: vf}
	//
	forall := &vir.ForAll{Variables: []vir.LocalVar{v}, Body: body}
	exists := &vir.Exists{Variables: []vir.LocalVar{v}, Body: body}
	//
	checkRequirements(t, NewPermSet(Acc(vf, vir.READ)), ExprRequirements(forall, preds))
	checkRequirements(t, NewPermSet(Acc(vf, vir.READ)), ExprRequirements(exists, preds))
	// Reference-typed bound variables are not permitted
	bad := &vir.ForAll{Variables: []vir.LocalVar{vir.NewLocalVar("r", refT)}, Body: vir.True()}
	require.Panics(t, func() { ExprRequirements(bad, preds) })
	// Nor are type variables
	tvar := vir.NewLocalVar("t", &vir.TypeVarType{Label: "X"})
	bad = &vir.ForAll{Variables: []vir.LocalVar{tvar}, Body: vir.True()}
	require.Panics(t, func() { ExprRequirements(bad, preds) })
	//
	ex := &vir.Exists{Variables: []vir.LocalVar{tvar}, Body: vir.True()}
	require.Panics(t, func() { ExprRequirements(ex, preds) })
}

func Test_Expr_Quantifier_Scope(t *testing.T) {
	preds := testPredicates()
	v := vir.NewLocalVar("v", vir.INT)
	xf := field(local("x", refT), fieldF)
	// pred(v) && x.f == 0
	pv := &vir.PredicateAccessPredicate{PredicateType: vir.INT, Argument: vir.NewLocal(v), Permission: vir.WRITE}
	body := vir.And(pv, &vir.BinOp{Op: vir.EQ_CMP, Left: xf, Right: vir.NewIntConst(0)})
	// Unquantified, access to v itself is required
	free := ExprRequirements(body, preds)
	assert.True(t, free.ContainsResource(Acc(vir.NewLocal(v), vir.READ)))
	// Quantified, it is not
	for _, e := range []vir.Expr{
		&vir.ForAll{Variables: []vir.LocalVar{v}, Body: body},
		&vir.Exists{Variables: []vir.LocalVar{v}, Body: body},
	} {
		perms := ExprRequirements(e, preds)
		//
		assert.False(t, perms.ContainsResource(Acc(vir.NewLocal(v), vir.READ)), e.String())
		checkRequirements(t, NewPermSet(Pred(vir.NewLocal(v), vir.READ), Acc(xf, vir.READ)), perms)
	}
}

func Test_Expr_Quantifier_Bound(t *testing.T) {
	v := vir.NewLocalVar("v", vir.INT)
	w := local("w", vir.INT)
	// A body requiring {acc(v, write), acc(w, write)}
	body := NewPermSet(Acc(vir.NewLocal(v), vir.WRITE), Acc(w, vir.WRITE))
	//
	checkRequirements(t, NewPermSet(Acc(w, vir.WRITE)), withoutBound([]vir.LocalVar{v}, body))
	// Regardless of amount
	body = NewPermSet(Acc(vir.NewLocal(v), vir.READ), Acc(w, vir.WRITE))
	checkRequirements(t, NewPermSet(Acc(w, vir.WRITE)), withoutBound([]vir.LocalVar{v}, body))
}

func Test_Expr_FuncApp(t *testing.T) {
	preds := testPredicates()
	p := local("p", refT)
	i := local("i", vir.INT)
	// Non-dereferenceable reference
	e := &vir.FuncApp{FunctionName: "f", Arguments: []vir.Expr{p, i}, ReturnType: vir.INT}
	perms := ExprRequirements(e, preds)
	//
	assert.True(t, perms.Contains(Pred(p, vir.READ)))
	checkRequirements(t, NewPermSet(Pred(p, vir.READ), Acc(p, vir.READ)), perms)
	// Dereferenceable reference
	r := local("r", vir.NewReference("ref$T", refT))
	target, ok := vir.TryDeref(r)
	require.True(t, ok)
	//
	d := &vir.DomainFuncApp{Function: vir.DomainFunc{Name: "g", ReturnType: vir.INT, DomainName: "D"},
		Arguments: []vir.Expr{r}}
	checkRequirements(t, NewPermSet(Acc(target, vir.READ), Pred(target, vir.READ)), ExprRequirements(d, preds))
	// Non-place arguments pass through
	pf := field(p, fieldF)
	e = &vir.FuncApp{FunctionName: "f", Arguments: []vir.Expr{&vir.BinOp{Op: vir.ADD, Left: pf, Right: i}}}
	checkRequirements(t, NewPermSet(Acc(pf, vir.READ)), ExprRequirements(e, preds))
}

func Test_Expr_Downcast(t *testing.T) {
	preds := testPredicates()
	p := local("p", vir.NewTypedRef("E"))
	e := vir.NewDowncast(field(local("x", refT), fieldF), p, vir.NewField("a", vir.NewTypedRef("A")))
	//
	disc := field(p, vir.NewField("disc", vir.INT))
	checkRequirements(t, NewPermSet(Acc(disc, vir.READ)), ExprRequirements(e, preds))
}

func Test_Expr_Fatal(t *testing.T) {
	preds := testPredicates()
	x := local("x", refT)
	v := vir.NewLocalVar("v", vir.INT)
	//
	exprs := []vir.Expr{
		&vir.LetExpr{Variable: v, Def: vir.NewIntConst(1), Body: vir.NewLocal(v)},
		&vir.AddrOf{Base: x, Typ: refT},
		&vir.SnapApp{Base: x},
	}
	//
	for _, e := range exprs {
		require.Panics(t, func() { ExprRequirements(e, preds) }, e.String())
	}
}

func Test_Requirements_Deterministic(t *testing.T) {
	preds := testPredicates()
	p := local("p", refT)
	xf := field(local("x", refT), fieldF)
	//
	stmts := []vir.Stmt{
		&vir.Unfold{Predicate: "T", Arguments: []vir.Expr{p}, Permission: vir.WRITE},
		&vir.Assign{Target: xf, Source: field(p, fieldF)},
		&vir.Fold{Predicate: "T", Arguments: []vir.Expr{p}, Permission: vir.WRITE},
	}
	//
	first := StmtsRequirements(stmts, preds)
	//
	for range 10 {
		assert.Equal(t, first.String(), StmtsRequirements(stmts, preds).String())
	}
	// Order and duplication are irrelevant
	reversed := []vir.Stmt{stmts[2], stmts[1], stmts[0], stmts[1]}
	checkRequirements(t, first, StmtsRequirements(reversed, preds))
}
