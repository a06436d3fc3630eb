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
	"slices"

	"github.com/consensys/go-vir/pkg/vir"
)

// Predicates is an immutable registry of predicates, indexed by the name of
// the type they describe.  A registry is fully populated on construction, and
// can be shared freely between concurrent analyses.
type Predicates struct {
	predicates map[string]vir.Predicate
	names      []string
}

// NewPredicates constructs a registry from a given set of predicates.  The
// struct predicates describing the variants of an enum predicate are
// registered as well, unless a predicate of the same name is given
// explicitly.  Observe that duplicate predicates are not permitted.
func NewPredicates(preds ...vir.Predicate) *Predicates {
	registry := &Predicates{make(map[string]vir.Predicate), nil}
	//
	for _, pred := range preds {
		if _, ok := registry.predicates[pred.Name()]; ok {
			panic(fmt.Sprintf("duplicate predicate \"%s\"", pred.Name()))
		}
		//
		registry.predicates[pred.Name()] = pred
	}
	// Register variant predicates
	for _, pred := range preds {
		if enum, ok := pred.(*vir.EnumPredicate); ok {
			for _, v := range enum.Variants() {
				if _, ok := registry.predicates[v.Predicate.Name()]; !ok {
					registry.predicates[v.Predicate.Name()] = v.Predicate
				}
			}
		}
	}
	//
	for name := range registry.predicates {
		registry.names = append(registry.names, name)
	}
	//
	slices.Sort(registry.names)
	//
	return registry
}

// Get returns the predicate describing a given type.  A missing predicate
// indicates the registry is inconsistent with the program being analysed,
// which is always fatal.
func (p *Predicates) Get(typ vir.Type) vir.Predicate {
	if pred, ok := p.predicates[typ.Name()]; ok {
		return pred
	}
	//
	panic(fmt.Sprintf("no predicate for type \"%s\"", typ.String()))
}

// Lookup returns the predicate of a given name, or false if no such predicate
// is registered.
func (p *Predicates) Lookup(name string) (vir.Predicate, bool) {
	pred, ok := p.predicates[name]
	return pred, ok
}

// Names returns the names of all registered predicates, in sorted order.
func (p *Predicates) Names() []string {
	return slices.Clone(p.names)
}

// Len returns the number of registered predicates.
func (p *Predicates) Len() int {
	return len(p.names)
}
