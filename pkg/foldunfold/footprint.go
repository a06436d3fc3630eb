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

	"github.com/consensys/go-vir/pkg/util"
	"github.com/consensys/go-vir/pkg/vir"
)

// Footprint returns the permissions which a given assertion grants when it is
// inhaled.  Where an assertion grants permissions only conditionally, only
// those granted on every path are included.
func Footprint(e vir.Expr) PermSet {
	switch e := e.(type) {
	case *vir.FieldAccessPredicate:
		return NewPermSet(Acc(e.Base, e.Permission))
	case *vir.PredicateAccessPredicate:
		return NewPermSet(Pred(e.Argument, e.Permission))
	case *vir.BinOp:
		switch e.Op {
		case vir.AND:
			return Footprint(e.Left).Union(Footprint(e.Right))
		case vir.IMPLIES:
			return Footprint(e.Right)
		default:
			return EmptyPermSet()
		}
	case *vir.Cond:
		return Footprint(e.Then).Intersection(Footprint(e.Else))
	case *vir.Unfolding:
		return Footprint(e.Base)
	default:
		return EmptyPermSet()
	}
}

// BodyFootprint returns the permissions obtained by unfolding an instance of a
// given predicate, expressed in terms of the predicate's self place.  For an
// enum predicate, this always includes the discriminant along with, when a
// variant is given, the footprint of that variant.
func BodyFootprint(pred vir.Predicate, variant util.Option[string]) PermSet {
	switch p := pred.(type) {
	case *vir.StructPredicate:
		if variant.HasValue() {
			panic(fmt.Sprintf("struct predicate \"%s\" has no variant \"%s\"", p.Name(), variant.Unwrap()))
		} else if p.Body().IsEmpty() {
			// Abstract predicate
			return EmptyPermSet()
		}
		//
		return Footprint(p.Body().Unwrap())
	case *vir.EnumPredicate:
		self := p.SelfPlace()
		discriminant := vir.NewFieldAccess(self, p.DiscriminantField())
		perms := NewPermSet(Acc(discriminant, vir.WRITE))
		//
		if variant.IsEmpty() {
			return perms
		}
		//
		v, ok := p.Variant(variant.Unwrap())
		if !ok {
			panic(fmt.Sprintf("enum predicate \"%s\" has no variant \"%s\"", p.Name(), variant.Unwrap()))
		}
		// Rewrite variant body in terms of the enum's self place
		vself := v.Predicate.SelfPlace()
		place := vir.NewVariant(self, v.Field)
		body := BodyFootprint(v.Predicate, util.None[string]()).MapPlace(func(e vir.Expr) vir.Expr {
			return vir.ReplacePlace(e, vself, place)
		})
		//
		return perms.Union(body)
	default:
		name := reflect.TypeOf(pred).String()
		panic(fmt.Sprintf("unknown predicate \"%s\"", name))
	}
}
