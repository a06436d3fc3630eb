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

	"github.com/consensys/go-vir/pkg/vir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const driverProgram = `
(field f int)
(predicate T (self (ref T)) (acc (. self f)))
(method ok ((x (ref T)) (y int))
  (unfold x write)
  (assign y (. x f))
  (fold x write))
(method bad ((x (ref T)))
  (assert (snap x)))
(method empty ())
`

func Test_AnalyseMethod(t *testing.T) {
	p, err := vir.ParseProgramString(driverProgram)
	require.Nil(t, err)
	//
	m, _ := p.Method("ok")
	report := AnalyseMethod(m, NewPredicates(p.Predicates...))
	//
	assert.Equal(t, "ok", report.Method)
	require.Len(t, report.Statements, 3)
	assert.Equal(t, "{pred(x, write)}", report.Statements[0].Required.String())
	assert.Equal(t, "{acc(x.f, read), acc(y, write)}", report.Statements[1].Required.String())
	assert.Equal(t, "{acc(x.f, write)}", report.Statements[2].Required.String())
	// Overall requirements
	assert.Equal(t, "{acc(x.f, read), acc(x.f, write), acc(y, write), pred(x, write)}", report.Required().String())
}

func Test_AnalyseProgram(t *testing.T) {
	p, err := vir.ParseProgramString(driverProgram)
	require.Nil(t, err)
	//
	for _, workers := range []uint{0, 1, 2, 8} {
		reports, errs := AnalyseProgram(p, workers)
		// Reports are in declaration order
		require.Len(t, reports, 2)
		assert.Equal(t, "ok", reports[0].Method)
		assert.Equal(t, "empty", reports[1].Method)
		assert.Empty(t, reports[1].Statements)
		// Failure is reported, not propagated
		require.Len(t, errs, 1)
		//
		var aerr *AnalysisError
		require.ErrorAs(t, errs[0], &aerr)
		assert.Equal(t, "bad", aerr.Method)
	}
}
