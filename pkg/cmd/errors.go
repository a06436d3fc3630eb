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
package cmd

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes reported by the command-line interface.
const (
	ExitSuccess  = 0
	ExitGeneral  = 1
	ExitConfig   = 2
	ExitParse    = 3
	ExitAnalysis = 4
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	//
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ConfigError creates an ExitError with ExitConfig code.
func ConfigError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

// ParseError creates an ExitError with ExitParse code.
func ParseError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitParse, Message: msg, Err: err}
}

// AnalysisFailure creates an ExitError with ExitAnalysis code.
func AnalysisFailure(msg string, err error) *ExitError {
	return &ExitError{Code: ExitAnalysis, Message: msg, Err: err}
}

// GeneralError creates an ExitError with ExitGeneral code.
func GeneralError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitGeneral, Message: msg, Err: err}
}

// exitCode determines the code with which to exit for a given error.
func exitCode(err error) int {
	var exitErr *ExitError
	//
	if err == nil {
		return ExitSuccess
	} else if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	//
	return ExitGeneral
}

// exitWithError prints the error and exits with the appropriate code.
func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitCode(err))
}
