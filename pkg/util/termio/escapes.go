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
package termio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Colour identifies one of the eight standard ANSI terminal colours.
type Colour uint

// TERM_RED is the ANSI colour red.
const TERM_RED = Colour(1)

// TERM_GREEN is the ANSI colour green.
const TERM_GREEN = Colour(2)

// TERM_YELLOW is the ANSI colour yellow.
const TERM_YELLOW = Colour(3)

// TERM_BLUE is the ANSI colour blue.
const TERM_BLUE = Colour(4)

// TERM_MAGENTA is the ANSI colour magenta.
const TERM_MAGENTA = Colour(5)

// TERM_CYAN is the ANSI colour cyan.
const TERM_CYAN = Colour(6)

// AnsiEscape represents an ANSI escape sequence under construction, which can
// combine several attributes (e.g. bold and a foreground colour).
type AnsiEscape struct {
	codes []uint
}

// ResetAnsiEscape constructs an escape which resets all attributes.
func ResetAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{0}}
}

// BoldAnsiEscape constructs an escape which enables bold text.
func BoldAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{1}}
}

// FgColour adds a foreground colour to this escape.
func (p AnsiEscape) FgColour(col Colour) AnsiEscape {
	return AnsiEscape{append(p.codes[:len(p.codes):len(p.codes)], uint(col)+30)}
}

// Build generates the string representing this escape.
func (p AnsiEscape) Build() string {
	escape := "\033["
	//
	for i, c := range p.codes {
		if i != 0 {
			escape += ";"
		}
		//
		escape += fmt.Sprintf("%d", c)
	}
	//
	return escape + "m"
}

// ColourEnabled determines whether or not ANSI escapes should be written to
// a given file, based on a mode which is either "always", "never" or "auto".
// In the latter case, escapes are enabled only when the file is a terminal.
func ColourEnabled(mode string, file *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(file.Fd()))
	}
}
