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
	"cmp"
	"fmt"
	"strings"

	"github.com/consensys/go-vir/pkg/util/collection/set"
	"github.com/consensys/go-vir/pkg/vir"
)

// PermKind distinguishes access permissions from predicate permissions.
type PermKind uint8

const (
	// ACC identifies an access permission to a concrete memory location.
	ACC PermKind = iota
	// PRED identifies a permission to the predicate instance of a place.
	PRED
)

func (p PermKind) String() string {
	if p == ACC {
		return "acc"
	}
	//
	return "pred"
}

// Perm is a permission of some amount over a given place.  Two permissions
// are identical when they have the same kind, the same (structurally equal)
// place and the same amount.  Old labels within a place are normalised, and
// the position of the place is never taken into account.
type Perm struct {
	kind   PermKind
	place  vir.Expr
	amount vir.PermAmount
	// Canonical identity of the place.
	key string
}

// Acc constructs an access permission for a given place.
func Acc(place vir.Expr, amount vir.PermAmount) Perm {
	return newPerm(ACC, place, amount)
}

// Pred constructs a predicate permission for a given place.
func Pred(place vir.Expr, amount vir.PermAmount) Perm {
	return newPerm(PRED, place, amount)
}

func newPerm(kind PermKind, place vir.Expr, amount vir.PermAmount) Perm {
	return Perm{kind, place, amount, placeKey(place)}
}

// Determine the canonical identity of a place.  A place evaluated in an old
// state is identified by its normalised form, such that old[l](x).g and
// old[l](x.g) denote the same place.
func placeKey(place vir.Expr) string {
	if label, ok := vir.LabelOf(place); ok {
		place = vir.Old(place, label)
	}
	//
	return fmt.Sprintf("%s:%s", place.String(), place.Type().String())
}

// Kind returns the kind of this permission.
func (p Perm) Kind() PermKind { return p.kind }

// Place returns the place to which this permission applies.
func (p Perm) Place() vir.Expr { return p.place }

// Amount returns the amount of this permission.
func (p Perm) Amount() vir.PermAmount { return p.amount }

// Cmp implementation for the set.Comparable interface.  Permissions are
// ordered by kind, then place, then amount.
func (p Perm) Cmp(other Perm) int {
	if c := cmp.Compare(p.kind, other.kind); c != 0 {
		return c
	} else if c := strings.Compare(p.key, other.key); c != 0 {
		return c
	}
	//
	return p.amount.Cmp(other.amount)
}

// SameResource checks whether two permissions are for the same resource,
// regardless of their amount.
func (p Perm) SameResource(other Perm) bool {
	return p.kind == other.kind && p.key == other.key
}

// InitAmount returns this permission with its amount replaced.
func (p Perm) InitAmount(amount vir.PermAmount) Perm {
	return Perm{p.kind, p.place, amount, p.key}
}

// UpdateAmount returns this permission with its amount scaled by another.
func (p Perm) UpdateAmount(amount vir.PermAmount) Perm {
	return Perm{p.kind, p.place, p.amount.Mul(amount), p.key}
}

// MapPlace returns this permission with its place rewritten by a given
// function.
func (p Perm) MapPlace(fn func(vir.Expr) vir.Expr) Perm {
	return newPerm(p.kind, fn(p.place), p.amount)
}

// SetDefaultPos gives the place of this permission a given position, provided
// its position is currently unknown.
func (p Perm) SetDefaultPos(pos vir.Position) Perm {
	if p.place.Pos().IsDefault() && vir.IsPlace(p.place) {
		return Perm{p.kind, vir.WithPos(p.place, pos), p.amount, p.key}
	}
	//
	return p
}

func (p Perm) String() string {
	return fmt.Sprintf("%s(%s, %s)", p.kind.String(), p.place.String(), p.amount.String())
}

// ============================================================================
// PermSet
// ============================================================================

// PermSet is an immutable, duplicate-free set of permissions.  Iteration
// order is sorted and, hence, deterministic.
type PermSet struct {
	perms *set.AnySortedSet[Perm]
}

// NewPermSet constructs a permission set from zero or more permissions.
func NewPermSet(perms ...Perm) PermSet {
	return PermSet{set.NewAnySortedSet(perms...)}
}

// EmptyPermSet constructs an empty permission set.
func EmptyPermSet() PermSet {
	return NewPermSet()
}

func (p PermSet) items() []Perm {
	if p.perms == nil {
		return nil
	}
	//
	return *p.perms
}

// Len returns the number of permissions in this set.
func (p PermSet) Len() int {
	return len(p.items())
}

// IsEmpty checks whether this set contains no permissions.
func (p PermSet) IsEmpty() bool {
	return p.Len() == 0
}

// ToArray returns the permissions of this set in sorted order.  The returned
// array should not be modified.
func (p PermSet) ToArray() []Perm {
	return p.items()
}

// Contains checks whether this set contains a given permission (including its
// amount).
func (p PermSet) Contains(perm Perm) bool {
	return p.perms != nil && p.perms.Contains(perm)
}

// ContainsResource checks whether this set contains a permission for the same
// resource as a given permission, regardless of amount.
func (p PermSet) ContainsResource(perm Perm) bool {
	for _, q := range p.items() {
		if q.SameResource(perm) {
			return true
		}
	}
	//
	return false
}

// With returns this set extended with zero or more permissions.
func (p PermSet) With(perms ...Perm) PermSet {
	return p.Union(NewPermSet(perms...))
}

// Union returns the set of permissions in either this or another set.
func (p PermSet) Union(other PermSet) PermSet {
	if other.IsEmpty() {
		return p
	} else if p.IsEmpty() {
		return other
	}
	//
	result := p.perms.Clone()
	result.InsertSorted(other.perms)
	//
	return PermSet{result}
}

// Intersection returns the permissions for resources (i.e. kind and place)
// held in both this and another set.  Where the amounts differ, the smaller
// amount is retained.
func (p PermSet) Intersection(other PermSet) PermSet {
	var perms []Perm
	//
	for _, lhs := range p.items() {
		for _, rhs := range other.items() {
			if lhs.SameResource(rhs) {
				perms = append(perms, lhs.UpdateAmount(rhs.amount))
			}
		}
	}
	//
	return NewPermSet(perms...)
}

// Difference returns the permissions of this set for which there is no
// permission of the same kind and place in another set.  Amounts are ignored.
func (p PermSet) Difference(other PermSet) PermSet {
	if p.IsEmpty() || other.IsEmpty() {
		return p
	}
	//
	result := p.perms.Clone()
	result.RemoveIf(other.ContainsResource)
	//
	return PermSet{result}
}

// Map returns the set obtained by applying a given function to every
// permission in this set.
func (p PermSet) Map(fn func(Perm) Perm) PermSet {
	perms := make([]Perm, p.Len())
	for i, perm := range p.items() {
		perms[i] = fn(perm)
	}
	//
	return NewPermSet(perms...)
}

// InitAmount returns this set with the amount of every permission replaced.
func (p PermSet) InitAmount(amount vir.PermAmount) PermSet {
	return p.Map(func(perm Perm) Perm { return perm.InitAmount(amount) })
}

// UpdateAmount returns this set with the amount of every permission scaled by
// a given amount.
func (p PermSet) UpdateAmount(amount vir.PermAmount) PermSet {
	return p.Map(func(perm Perm) Perm { return perm.UpdateAmount(amount) })
}

// MapPlace returns this set with every place rewritten by a given function.
func (p PermSet) MapPlace(fn func(vir.Expr) vir.Expr) PermSet {
	return p.Map(func(perm Perm) Perm { return perm.MapPlace(fn) })
}

// SetDefaultPos returns this set with every place of unknown position given a
// position.
func (p PermSet) SetDefaultPos(pos vir.Position) PermSet {
	return p.Map(func(perm Perm) Perm { return perm.SetDefaultPos(pos) })
}

// Equals checks whether two sets contain exactly the same permissions.
func (p PermSet) Equals(other PermSet) bool {
	lhs, rhs := p.items(), other.items()
	//
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if lhs[i].Cmp(rhs[i]) != 0 {
			return false
		}
	}
	//
	return true
}

func (p PermSet) String() string {
	strs := make([]string, p.Len())
	for i, perm := range p.items() {
		strs[i] = perm.String()
	}
	//
	return fmt.Sprintf("{%s}", strings.Join(strs, ", "))
}
