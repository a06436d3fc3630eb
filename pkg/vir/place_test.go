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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testT = NewTypedRef("T")
	testX = NewLocalVar("x", testT)
	testF = NewField("f", INT)
	testG = NewField("g", testT)
)

func Test_Place_IsPlace(t *testing.T) {
	x := NewLocal(testX)
	//
	assert.True(t, IsPlace(x))
	assert.True(t, IsPlace(NewFieldAccess(NewFieldAccess(x, testG), testF)))
	assert.True(t, IsPlace(Old(NewFieldAccess(x, testF), "l")))
	assert.False(t, IsPlace(True()))
	assert.False(t, IsPlace(And(x, x)))
}

func Test_Place_Old(t *testing.T) {
	x := NewLocal(testX)
	// Nested labels are stripped
	e := Old(NewFieldAccess(Old(x, "l1"), testF), "l2")
	//
	assert.Equal(t, "old[l2](x.f)", e.String())
	assert.True(t, IsOld(e))
	assert.False(t, IsOld(NewFieldAccess(x, testF)))
	//
	label, ok := LabelOf(NewFieldAccess(e, testG))
	require.True(t, ok)
	assert.Equal(t, "l2", label)
	//
	_, ok = LabelOf(NewFieldAccess(x, testG))
	assert.False(t, ok)
}

func Test_Place_IsOld_Nested(t *testing.T) {
	x := NewLocal(testX)
	e := And(True(), &FieldAccessPredicate{Base: Old(x, "l"), Permission: READ})
	//
	assert.True(t, IsOld(e))
}

func Test_Place_TryDeref(t *testing.T) {
	r := NewLocal(NewLocalVar("r", NewReference("ref$T", testT)))
	//
	e, ok := TryDeref(r)
	require.True(t, ok)
	assert.Equal(t, "r.val_ref", e.String())
	assert.Equal(t, testT, e.Type())
	//
	_, ok = TryDeref(NewLocal(testX))
	assert.False(t, ok)
}

func Test_Place_ReplacePlace(t *testing.T) {
	x := NewLocal(testX)
	y := NewLocal(NewLocalVar("y", testT))
	e := And(AccPermission(NewFieldAccess(x, testF), WRITE), AccPermission(NewFieldAccess(y, testF), READ))
	//
	r := ReplacePlace(e, x, NewFieldAccess(y, testG))
	//
	assert.Equal(t, "(acc(y.g.f, write)) && (acc(y.f, read))", r.String())
	// Original untouched
	assert.Equal(t, "(acc(x.f, write)) && (acc(y.f, read))", e.String())
}

func Test_Place_Equal(t *testing.T) {
	x1 := WithPos(NewFieldAccess(NewLocal(testX), testF), NewPosition(1, 1, 1))
	x2 := NewFieldAccess(NewLocal(testX), testF)
	z := NewFieldAccess(NewLocal(testX), NewField("f", BOOL))
	//
	assert.True(t, Equal(x1, x2))
	assert.False(t, Equal(x1, NewLocal(testX)))
	assert.False(t, Equal(x2, z))
	assert.False(t, Equal(NewLocal(testX), NewLocal(NewLocalVar("x", INT))))
}

func Test_Place_WithPos(t *testing.T) {
	pos := NewPosition(3, 4, 5)
	x := NewFieldAccess(NewLocal(testX), testF)
	//
	e := WithPos(x, pos)
	//
	assert.Equal(t, pos, e.Pos())
	assert.True(t, x.Pos().IsDefault())
	assert.Panics(t, func() { WithPos(True(), pos) })
}

func Test_Place_PredPermission(t *testing.T) {
	p, ok := PredPermission(NewLocal(testX), READ)
	require.True(t, ok)
	assert.Equal(t, "acc(T(x), read)", p.String())
	//
	_, ok = PredPermission(NewLocal(NewLocalVar("i", INT)), READ)
	assert.False(t, ok)
}

func Test_Amount_Mul(t *testing.T) {
	assert.Equal(t, WRITE, WRITE.Mul(WRITE))
	assert.Equal(t, READ, WRITE.Mul(READ))
	assert.Equal(t, READ, READ.Mul(WRITE))
	assert.Equal(t, READ, READ.Mul(READ))
}
