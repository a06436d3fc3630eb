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
package set

import (
	"slices"
)

// Comparable provides an interface which types used in a AnySortedSet must implement.
type Comparable[T any] interface {
	// Cmp returns < 0 if this is less than other, or 0 if they are equal, or >
	// 0 if this is greater than other.
	Cmp(other T) int
}

// AnySortedSet is an array of unique sorted values (i.e. no duplicates).
// Since iteration follows the sort order, anything rendered from a set is
// independent of the order in which its elements were inserted.
type AnySortedSet[T Comparable[T]] []T

// NewAnySortedSet creates a sorted set from a given array by first cloning that
// array, and then sorting it appropriately, etc.  This means the given array
// will not be mutated by this function, or any subsequent calls on the
// resulting set.
func NewAnySortedSet[T Comparable[T]](items ...T) *AnySortedSet[T] {
	var nitems AnySortedSet[T] = slices.Clone(items)
	// Sort incoming data
	slices.SortFunc(nitems, compare[T])
	// Remove duplicates
	nitems = slices.CompactFunc(nitems, func(a, b T) bool {
		return a.Cmp(b) == 0
	})
	//
	return &nitems
}

// ToArray extracts the underlying array from this sorted set.
func (p *AnySortedSet[T]) ToArray() []T {
	return *p
}

// Len returns the number of elements in this set.
func (p *AnySortedSet[T]) Len() int {
	return len(*p)
}

// Clone returns a copy of this set which can be modified without affecting
// this set.
func (p *AnySortedSet[T]) Clone() *AnySortedSet[T] {
	var nitems AnySortedSet[T] = slices.Clone(*p)
	return &nitems
}

// Contains returns true if a given element is in the set.
func (p *AnySortedSet[T]) Contains(element T) bool {
	_, found := slices.BinarySearchFunc(*p, element, compare[T])
	return found
}

// Insert an element into this sorted set.
func (p *AnySortedSet[T]) Insert(element T) {
	if i, found := slices.BinarySearchFunc(*p, element, compare[T]); !found {
		*p = slices.Insert(*p, i, element)
	}
}

// InsertSorted inserts all elements in a given sorted set into this set.
//
//nolint:revive
func (p *AnySortedSet[T]) InsertSorted(q *AnySortedSet[T]) {
	var (
		left  = *p
		right = *q
		ndata = make([]T, 0, len(left)+len(right))
		i, j  = 0, 0
	)
	// Merge overlap of both sets
	for i < len(left) && j < len(right) {
		switch c := left[i].Cmp(right[j]); {
		case c == 0:
			ndata = append(ndata, left[i])
			i, j = i+1, j+1
		case c < 0:
			ndata = append(ndata, left[i])
			i++
		default:
			ndata = append(ndata, right[j])
			j++
		}
	}
	// Handle anything left
	ndata = append(ndata, left[i:]...)
	ndata = append(ndata, right[j:]...)
	//
	*p = ndata
}

// RemoveIf removes all elements matching a given predicate from this set.
// Since removal cannot reorder elements, the set remains sorted.
func (p *AnySortedSet[T]) RemoveIf(predicate func(T) bool) {
	*p = slices.DeleteFunc(*p, predicate)
}

// UnionAnySortedSets unions together a number of things which can be turn into a
// sorted set using a given mapping function.  At some level, this is a
// map/reduce function.
func UnionAnySortedSets[S any, T Comparable[T]](elems []S, fn func(S) *AnySortedSet[T]) *AnySortedSet[T] {
	set := NewAnySortedSet[T]()
	//
	for _, elem := range elems {
		set.InsertSorted(fn(elem))
	}
	//
	return set
}

func compare[T Comparable[T]](a, b T) int {
	return a.Cmp(b)
}
