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
	"fmt"
	"reflect"

	"github.com/consensys/go-vir/pkg/util/collection/set"
	"github.com/consensys/go-vir/pkg/vir"
	log "github.com/sirupsen/logrus"
)

// SeqRequirements returns the permissions required by a sequence of items,
// which is simply the union of the permissions required by each item.  Hence,
// neither the order of items nor any duplication affects the result.
func SeqRequirements[T any](items []T, fn func(T, *Predicates) PermSet, preds *Predicates) PermSet {
	perms := set.UnionAnySortedSets(items, func(item T) *set.AnySortedSet[Perm] {
		return fn(item, preds).sortedSet()
	})
	//
	return PermSet{perms}
}

// ExprsRequirements returns the permissions required by a sequence of
// expressions.
func ExprsRequirements(exprs []vir.Expr, preds *Predicates) PermSet {
	return SeqRequirements(exprs, ExprRequirements, preds)
}

// StmtsRequirements returns the permissions required by a sequence of
// statements.
func StmtsRequirements(stmts []vir.Stmt, preds *Predicates) PermSet {
	return SeqRequirements(stmts, StmtRequirements, preds)
}

func (p PermSet) sortedSet() *set.AnySortedSet[Perm] {
	if p.perms == nil {
		return set.NewAnySortedSet[Perm]()
	}
	//
	return p.perms
}

// ============================================================================
// Statements
// ============================================================================

// StmtRequirements returns the permissions which must be held for a given
// statement to be well-defined.
//
//nolint:revive
func StmtRequirements(stmt vir.Stmt, preds *Predicates) PermSet {
	switch s := stmt.(type) {
	case *vir.Comment, *vir.Label, *vir.BeginFrame, *vir.EndFrame:
		return EmptyPermSet()
	case *vir.Inhale:
		// Whatever the assertion grants is not needed up front
		return ExprRequirements(s.Expr, preds).Difference(Footprint(s.Expr))
	case *vir.Exhale:
		return ExprRequirements(s.Expr, preds).SetDefaultPos(s.Position)
	case *vir.Assert:
		return ExprRequirements(s.Expr, preds).SetDefaultPos(s.Position)
	case *vir.Obtain:
		return ExprRequirements(s.Expr, preds).SetDefaultPos(s.Position)
	case *vir.MethodCall:
		if len(s.Arguments) != 0 {
			panic(fmt.Sprintf("method call \"%s\" has arguments", s.String()))
		}
		// Targets are (re)initialised by the call
		perms := make([]Perm, len(s.Targets))
		for i, target := range s.Targets {
			perms[i] = Acc(vir.NewLocal(target), vir.WRITE)
		}
		//
		return NewPermSet(perms...)
	case *vir.Assign:
		return ExprRequirements(s.Source, preds).With(Acc(s.Target, vir.WRITE))
	case *vir.Fold:
		return foldRequirements(s, preds)
	case *vir.Unfold:
		place := singlePlace(s.Arguments, s)
		// The folded predicate instance itself is needed
		return ExprRequirements(place, preds).With(Pred(place, s.Permission)).InitAmount(s.Permission)
	case *vir.TransferPerm:
		if s.Unchecked {
			return EmptyPermSet()
		}
		//
		return NewPermSet(Acc(s.Left, vir.READ))
	case *vir.PackageMagicWand:
		return EmptyPermSet()
	case *vir.ApplyMagicWand:
		if wand, ok := s.MagicWand.(*vir.MagicWand); ok {
			return ExprRequirements(wand.Left, preds)
		}
		//
		panic(fmt.Sprintf("cannot apply \"%s\" (not a magic wand)", s.MagicWand.String()))
	case *vir.ExpireBorrows:
		// TODO: the expiry of borrows is not yet modelled, so nothing is
		// required here.  Requires the reborrowing DAG to be interpreted.
		return EmptyPermSet()
	case *vir.If:
		guard := ExprRequirements(s.Guard, preds)
		then := StmtsRequirements(s.Then, preds)
		els := StmtsRequirements(s.Else, preds)
		// Only what both branches need is needed before the branch
		return guard.Union(then.Intersection(els))
	case *vir.Downcast:
		return ExprRequirements(vir.NewDowncast(vir.True(), s.Base, s.Field), preds)
	default:
		name := reflect.TypeOf(stmt).String()
		panic(fmt.Sprintf("unimplemented statement \"%s\"", name))
	}
}

func foldRequirements(s *vir.Fold, preds *Predicates) PermSet {
	place := singlePlace(s.Arguments, s)
	pred := preds.Get(place.Type())
	self := pred.SelfPlace()
	// The body of the predicate, as seen from the folded place
	return BodyFootprint(pred, s.EnumVariant).MapPlace(func(e vir.Expr) vir.Expr {
		return vir.ReplacePlace(e, self, place)
	}).InitAmount(s.Permission)
}

// Extract the single place argument of a fold, unfold or unfolding.
func singlePlace(args []vir.Expr, node fmt.Stringer) vir.Expr {
	if len(args) != 1 {
		panic(fmt.Sprintf("expected exactly one argument for \"%s\"", node.String()))
	} else if !vir.IsPlace(args[0]) {
		panic(fmt.Sprintf("expected place argument for \"%s\"", node.String()))
	}
	//
	return args[0]
}

// ============================================================================
// Expressions
// ============================================================================

// ExprRequirements returns the permissions which must be held for a given
// expression to be well-defined.  For function applications this is an
// over-approximation, since the actual precondition of the function is not
// consulted.
func ExprRequirements(expr vir.Expr, preds *Predicates) PermSet {
	log.Tracef("[enter] requirements(expr=%s)", expr.String())
	//
	perms := exprRequirements(expr, preds)
	//
	log.Tracef("[exit] requirements(expr=%s): %s", expr.String(), perms.String())
	//
	return perms
}

//nolint:revive
func exprRequirements(expr vir.Expr, preds *Predicates) PermSet {
	switch e := expr.(type) {
	case *vir.Const, *vir.Local, *vir.LabelledOld, *vir.MagicWand, *vir.InhaleExhale:
		return EmptyPermSet()
	case *vir.Unfolding:
		return unfoldingRequirements(e, preds)
	case *vir.PredicateAccessPredicate:
		return predicateAccessRequirements(e)
	case *vir.FieldAccessPredicate:
		return ExprRequirements(e.Base, preds)
	case *vir.UnaryOp:
		return ExprRequirements(e.Argument, preds)
	case *vir.BinOp:
		return ExprsRequirements([]vir.Expr{e.Left, e.Right}, preds)
	case *vir.ContainerOp:
		return ExprsRequirements([]vir.Expr{e.Left, e.Right}, preds)
	case *vir.Seq:
		return ExprsRequirements(e.Elements, preds)
	case *vir.Cond:
		// Both arms are required, unlike for a conditional statement
		return ExprsRequirements([]vir.Expr{e.Guard, e.Then, e.Else}, preds)
	case *vir.LetExpr:
		panic(fmt.Sprintf("let expression \"%s\" should be desugared before fold/unfold", e.String()))
	case *vir.ForAll:
		return quantifierRequirements(e.Variables, e.Body, preds)
	case *vir.Exists:
		return quantifierRequirements(e.Variables, e.Body, preds)
	case *vir.AddrOf:
		panic(fmt.Sprintf("address-of \"%s\" cannot be analysed", e.String()))
	case *vir.Variant, *vir.FieldExpr:
		return NewPermSet(Acc(expr, vir.READ))
	case *vir.FuncApp:
		return argumentRequirements(e.Arguments, preds)
	case *vir.DomainFuncApp:
		return argumentRequirements(e.Arguments, preds)
	case *vir.DowncastExpr:
		enum, ok := preds.Get(e.EnumPlace.Type()).(*vir.EnumPredicate)
		if !ok {
			panic(fmt.Sprintf("downcast \"%s\" of non-enum place", e.String()))
		}
		// The discriminant must be accessible
		return ExprRequirements(vir.NewFieldAccess(e.EnumPlace, enum.DiscriminantField()), preds)
	case *vir.SnapApp:
		panic(fmt.Sprintf("snapshot \"%s\" should be eliminated before fold/unfold", e.String()))
	default:
		name := reflect.TypeOf(expr).String()
		panic(fmt.Sprintf("unimplemented expression \"%s\"", name))
	}
}

// The requirements of an unfolding are those of its body, except for those
// permissions made available by temporarily unfolding the predicate instance.
// The predicate instance itself is required instead.
func unfoldingRequirements(e *vir.Unfolding, preds *Predicates) PermSet {
	place := singlePlace(e.Arguments, e)
	pred := preds.Get(place.Type())
	self := pred.SelfPlace()
	//
	opened := BodyFootprint(pred, e.Variant).MapPlace(func(p vir.Expr) vir.Expr {
		return vir.ReplacePlace(p, self, place)
	}).UpdateAmount(e.Permission)
	//
	return ExprRequirements(e.Base, preds).Difference(opened).With(Pred(place, e.Permission))
}

func predicateAccessRequirements(e *vir.PredicateAccessPredicate) PermSet {
	var (
		epsilon = vir.READ
		place   = e.Argument
	)
	//
	if !vir.IsPlace(place) {
		panic(fmt.Sprintf("expected place argument for \"%s\"", e.String()))
	}
	// Labelled places are normalised to a single outermost label
	if label, ok := vir.LabelOf(place); ok {
		place = vir.Old(place, label)
	}
	//
	if vir.IsOld(e.Argument) {
		return NewPermSet(Pred(place, epsilon))
	}
	//
	return NewPermSet(Pred(place, epsilon), Acc(place, epsilon))
}

func quantifierRequirements(vars []vir.LocalVar, body vir.Expr, preds *Predicates) PermSet {
	for _, v := range vars {
		if v.Typ.IsTypedRefOrTypeVar() {
			panic(fmt.Sprintf("bound variable \"%s\" cannot have type %s", v.Name, v.Typ.String()))
		}
	}
	//
	return withoutBound(vars, ExprRequirements(body, preds))
}

// Remove any requirement on bound variables, since these are introduced
// locally.
func withoutBound(vars []vir.LocalVar, perms PermSet) PermSet {
	bound := make([]Perm, len(vars))
	for i, v := range vars {
		bound[i] = Acc(vir.NewLocal(v), vir.WRITE)
	}
	//
	return perms.Difference(NewPermSet(bound...))
}

// The arguments of a function application which are references are assumed
// to require read access to the referenced predicate instance.  This
// over-approximates the precondition of the function.
func argumentRequirements(args []vir.Expr, preds *Predicates) PermSet {
	nargs := make([]vir.Expr, len(args))
	//
	for i, arg := range args {
		switch {
		case !vir.IsPlace(arg) || !arg.Type().IsTypedRefOrTypeVar():
			log.Debugf("argument %s is not a reference place", arg.String())
			nargs[i] = arg
		default:
			if target, ok := vir.TryDeref(arg); ok {
				pred, ok := vir.PredPermission(target, vir.READ)
				if !ok {
					panic(fmt.Sprintf("cannot access predicate of \"%s\"", target.String()))
				}
				//
				nargs[i] = vir.And(vir.AccPermission(target, vir.READ), pred)
			} else {
				nargs[i] = &vir.PredicateAccessPredicate{PredicateType: arg.Type(), Argument: arg, Permission: vir.READ}
			}
		}
	}
	//
	return ExprsRequirements(nargs, preds)
}
