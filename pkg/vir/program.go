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

// Method is a named sequence of statements over a given set of locals.
type Method struct {
	Name   string
	Locals []LocalVar
	Body   []Stmt
}

// Program is a set of field, predicate and method declarations.
type Program struct {
	Fields     []Field
	Predicates []Predicate
	Methods    []*Method
}

// Method returns the method of a given name, or false if no such method
// exists.
func (p *Program) Method(name string) (*Method, bool) {
	for _, m := range p.Methods {
		if m.Name == name {
			return m, true
		}
	}
	//
	return nil, false
}
