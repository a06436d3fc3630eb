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

	"github.com/consensys/go-vir/pkg/util"
	"github.com/consensys/go-vir/pkg/vir"
	log "github.com/sirupsen/logrus"
)

// StmtReport records the permissions required by a single statement.
type StmtReport struct {
	// Index of the statement within its method.
	Index int
	// The statement itself.
	Stmt vir.Stmt
	// Permissions required by the statement.
	Required PermSet
}

// MethodReport records the permissions required by each top-level statement
// of a given method.
type MethodReport struct {
	Method     string
	Statements []StmtReport
}

// Required returns the permissions required by any statement of the method.
func (p *MethodReport) Required() PermSet {
	return SeqRequirements(p.Statements, func(s StmtReport, _ *Predicates) PermSet {
		return s.Required
	}, nil)
}

// AnalysisError reports that the analysis of a given method failed.  Since
// the analysis only fails on malformed input, this indicates an earlier stage
// produced something it should not have.
type AnalysisError struct {
	Method string
	Cause  any
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of method %s failed: %v", e.Method, e.Cause)
}

// AnalyseMethod determines the permissions required by each top-level
// statement of a given method.
func AnalyseMethod(method *vir.Method, preds *Predicates) MethodReport {
	stmts := make([]StmtReport, len(method.Body))
	//
	for i, stmt := range method.Body {
		stmts[i] = StmtReport{i, stmt, StmtRequirements(stmt, preds)}
	}
	//
	return MethodReport{method.Name, stmts}
}

// AnalyseProgram analyses every method of a given program, using at most a
// given number of concurrent workers (where zero means one worker per
// method).  Reports are returned in declaration order.  A method whose
// analysis fails has no report, and an AnalysisError is returned for it
// instead.
func AnalyseProgram(program *vir.Program, workers uint) ([]MethodReport, []error) {
	var (
		stats  = util.NewPerfStats()
		preds  = NewPredicates(program.Predicates...)
		n      = len(program.Methods)
		c      = make(chan methodOutcome, n)
		tokens = make(chan struct{}, workerCount(workers, n))
	)
	// Launch analysis for each method
	for i, m := range program.Methods {
		go func() {
			tokens <- struct{}{}
			defer func() { <-tokens }()
			// Send outcome back
			c <- analyseMethodSafely(i, m, preds)
		}()
	}
	// Read responses back from each method
	outcomes := make([]methodOutcome, n)
	//
	for range n {
		outcome := <-c
		outcomes[outcome.index] = outcome
	}
	//
	var (
		reports []MethodReport
		errs    []error
	)
	//
	for _, outcome := range outcomes {
		if outcome.err != nil {
			errs = append(errs, outcome.err)
		} else {
			reports = append(reports, outcome.report)
		}
	}
	//
	stats.Log(fmt.Sprintf("Analysing %d methods", n))
	//
	return reports, errs
}

type methodOutcome struct {
	index  int
	report MethodReport
	err    error
}

func analyseMethodSafely(index int, method *vir.Method, preds *Predicates) (outcome methodOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("analysis of method %s failed: %v", method.Name, r)
			outcome = methodOutcome{index, MethodReport{}, &AnalysisError{method.Name, r}}
		}
	}()
	//
	return methodOutcome{index, AnalyseMethod(method, preds), nil}
}

func workerCount(workers uint, n int) int {
	if workers == 0 || int(workers) > n {
		return max(n, 1)
	}
	//
	return int(workers)
}
