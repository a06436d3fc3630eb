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
package sexp

import (
	"unicode"

	"github.com/consensys/go-vir/pkg/util/source"
)

// ParseAll converts a given source file into zero or more S-expressions, or
// returns an error if the file is malformed.  A source map is also returned,
// which gives the span of every term parsed.  Text following a semicolon up to
// the end of the line is a comment.
func ParseAll(s *source.File) ([]SExp, *source.Map[SExp], *source.SyntaxError) {
	p := NewParser(s)
	//
	terms := make([]SExp, 0)
	// Parse the input
	for {
		term, err := p.Parse()
		// Sanity check everything was parsed
		if err != nil {
			return terms, p.srcmap, err
		} else if term == nil {
			// EOF reached
			return terms, p.srcmap, nil
		}
		//
		terms = append(terms, term)
	}
}

// Parser represents a parser in the process of parsing a given source file
// into one or more S-expressions.
type Parser struct {
	// Source file being parsed
	srcfile *source.File
	// Cache (for simplicity)
	text []rune
	// Determine current position within text
	index int
	// Mapping from constructed S-Expressions to their spans in the original text.
	srcmap *source.Map[SExp]
}

// NewParser constructs a new instance of Parser
func NewParser(srcfile *source.File) *Parser {
	return &Parser{
		srcfile: srcfile,
		text:    srcfile.Contents(),
		index:   0,
		srcmap:  source.NewSourceMap[SExp](srcfile),
	}
}

// SourceMap returns the internal source map constructed during parsing.
func (p *Parser) SourceMap() *source.Map[SExp] {
	return p.srcmap
}

// Parse the next S-Expression from the source file, or produce an error.  This
// returns nil (and no error) when the end of the file is reached.
func (p *Parser) Parse() (SExp, *source.SyntaxError) {
	var term SExp
	// Skip over any whitespace.  This is important to get the correct
	// starting point for this term.
	p.skipWhiteSpace()
	// Record start of this term
	start := p.index
	// Extract next token from the stream
	token := p.next()
	//
	switch {
	case token == nil:
		return nil, nil
	case len(token) == 1 && token[0] == ')':
		p.index-- // backup
		return nil, p.error("unexpected end-of-list")
	case len(token) == 1 && token[0] == '(':
		elements, err := p.parseList(start)
		// Check for error
		if err != nil {
			return nil, err
		}
		//
		term = &List{elements}
	default:
		term = &Symbol{string(token)}
	}
	// Register item in source map
	p.srcmap.Put(term, source.NewSpan(start, p.index))
	//
	return term, nil
}

// Extract the next token, which is either a parenthesis or a symbol.
func (p *Parser) next() []rune {
	// Skip any whitespace and/or comments.
	p.skipWhiteSpace()
	// Catch end-of-file
	if p.index == len(p.text) {
		return nil
	} else if c := p.text[p.index]; c == '(' || c == ')' {
		p.index++
		return p.text[p.index-1 : p.index]
	}
	// Symbol
	return p.parseSymbol()
}

// Skip over any whitespace, including comments.
func (p *Parser) skipWhiteSpace() {
	for p.index < len(p.text) {
		switch c := p.text[p.index]; {
		case c == ';':
			p.index = findEndOfComment(p.index, p.text)
		case unicode.IsSpace(c):
			p.index++
		default:
			return
		}
	}
}

// Lookahead to the next non-whitespace character, returning false if the end
// of file is reached.
func (p *Parser) lookahead() (rune, bool) {
	p.skipWhiteSpace()
	//
	if p.index < len(p.text) {
		return p.text[p.index], true
	}
	//
	return 0, false
}

func (p *Parser) parseSymbol() []rune {
	i := len(p.text)
	//
	for j := p.index; j < i; j++ {
		if !isSymbolLetter(p.text[j]) {
			i = j
			break
		}
	}
	// Reached end of token
	token := p.text[p.index:i]
	p.index = i
	//
	return token
}

// Parse the elements of a list whose opening parenthesis is at a given index,
// upto and including its closing parenthesis.
func (p *Parser) parseList(start int) ([]SExp, *source.SyntaxError) {
	var elements []SExp
	//
	for {
		c, ok := p.lookahead()
		//
		if !ok {
			return nil, p.srcfile.SyntaxError(source.NewSpan(start, start+1), "unclosed list")
		} else if c == ')' {
			break
		}
		// Parse next element
		element, err := p.Parse()
		if err != nil {
			return nil, err
		}
		//
		elements = append(elements, element)
	}
	// Consume terminator
	p.index++
	//
	return elements, nil
}

// Construct a parser error at the current position in the input stream.
func (p *Parser) error(msg string) *source.SyntaxError {
	end := min(p.index+1, len(p.text))
	span := source.NewSpan(min(p.index, end), end)
	//
	return p.srcfile.SyntaxError(span, msg)
}

func findEndOfComment(index int, text []rune) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i + 1
		}
	}
	//
	return len(text)
}

func isSymbolLetter(r rune) bool {
	return r != '(' && r != ')' && r != ';' && !unicode.IsSpace(r)
}
