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
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/go-vir/pkg/util"
	"github.com/consensys/go-vir/pkg/util/source"
	"github.com/consensys/go-vir/pkg/util/source/sexp"
)

// ===================================================================
// Public
// ===================================================================

// ParseProgram parses a sequence of zero or more IVL declarations from a given
// source file.  Internally, this uses sexp.ParseAll to split the file into
// terms, and then translates each term in turn.
func ParseProgram(srcfile *source.File) (*Program, *source.SyntaxError) {
	// Parse bytes into S-Expressions
	terms, srcmap, err := sexp.ParseAll(srcfile)
	// Check file parsed ok
	if err != nil {
		return nil, err
	}
	// Translate terms into a program
	p := newVirParser(srcmap)
	//
	for _, term := range terms {
		// Process declaration
		if err := p.parseDeclaration(term); err != nil {
			return nil, err
		}
	}
	// Done
	return p.program, nil
}

// ParseProgramString parses a program represented as a string.  This is
// primarily useful for testing.
func ParseProgramString(str string) (*Program, *source.SyntaxError) {
	return ParseProgram(source.NewSourceFile("<string>", []byte(str)))
}

// ===================================================================
// Private
// ===================================================================

type virParser struct {
	// Source map used for reporting errors and recording positions.
	srcmap *source.Map[sexp.SExp]
	// Declared fields, by name.
	fields map[string]Field
	// Names of declared predicates.
	predicates map[string]bool
	// Variables in scope when parsing expressions.
	scope map[string]LocalVar
	// Identifier given to the next position constructed.
	nextId uint64
	// Program being constructed.
	program *Program
}

func newVirParser(srcmap *source.Map[sexp.SExp]) *virParser {
	program := &Program{nil, nil, nil}
	//
	return &virParser{srcmap, make(map[string]Field), make(map[string]bool), nil, 1, program}
}

func (p *virParser) parseDeclaration(s sexp.SExp) *source.SyntaxError {
	if e := s.AsList(); e != nil {
		if e.MatchSymbols(2, "field") {
			return p.parseFieldDeclaration(e)
		} else if e.MatchSymbols(2, "predicate") {
			return p.parsePredicateDeclaration(e)
		} else if e.MatchSymbols(2, "enum") {
			return p.parseEnumDeclaration(e)
		} else if e.MatchSymbols(2, "method") {
			return p.parseMethodDeclaration(e)
		}
	}
	// Error
	return p.srcmap.SyntaxError(s, "unexpected declaration")
}

// Parse a field declaration, e.g. (field f int)
func (p *virParser) parseFieldDeclaration(l *sexp.List) *source.SyntaxError {
	// Sanity check declaration
	if l.Len() != 3 {
		return p.srcmap.SyntaxError(l, "malformed field declaration")
	}
	// Extract field name
	name, err := p.parseIdentifier(l.Get(1))
	if err != nil {
		return err
	} else if _, ok := p.fields[name]; ok {
		return p.srcmap.SyntaxError(l, "duplicate field declaration")
	}
	// Parse field type
	typ, err := p.parseType(l.Get(2))
	if err != nil {
		return err
	}
	//
	field := NewField(name, typ)
	p.fields[name] = field
	p.program.Fields = append(p.program.Fields, field)
	//
	return nil
}

// Parse a predicate declaration, e.g. (predicate T (self (ref T)) body)
func (p *virParser) parsePredicateDeclaration(l *sexp.List) *source.SyntaxError {
	if l.Len() != 3 && l.Len() != 4 {
		return p.srcmap.SyntaxError(l, "malformed predicate declaration")
	}
	//
	name, err := p.parseIdentifier(l.Get(1))
	if err != nil {
		return err
	} else if p.predicates[name] {
		return p.srcmap.SyntaxError(l, "duplicate predicate declaration")
	}
	//
	pred, err := p.parseStructPredicate(name, l.Tail(2))
	if err != nil {
		return err
	}
	//
	p.predicates[name] = true
	p.program.Predicates = append(p.program.Predicates, pred)
	//
	return nil
}

// Parse the remainder of a struct predicate, i.e. its self variable and
// (optional) body.
func (p *virParser) parseStructPredicate(name string, elements []sexp.SExp) (*StructPredicate, *source.SyntaxError) {
	this, err := p.parseLocalVar(elements[0])
	if err != nil {
		return nil, err
	}
	// Abstract predicate
	if len(elements) == 1 {
		return NewStructPredicate(name, this, util.None[Expr]()), nil
	}
	// Body is parsed with only the self variable in scope
	p.scope = map[string]LocalVar{this.Name: this}
	body, err := p.parseExpr(elements[1])
	p.scope = nil
	//
	if err != nil {
		return nil, err
	}
	//
	return NewStructPredicate(name, this, util.Some(body)), nil
}

// Parse an enum declaration, e.g.
//
// (enum T (self (ref T)) (discriminant d) (variant A fA (self (ref A)) body))
func (p *virParser) parseEnumDeclaration(l *sexp.List) *source.SyntaxError {
	if l.Len() < 4 {
		return p.srcmap.SyntaxError(l, "malformed enum declaration")
	}
	//
	name, err := p.parseIdentifier(l.Get(1))
	if err != nil {
		return err
	} else if p.predicates[name] {
		return p.srcmap.SyntaxError(l, "duplicate predicate declaration")
	}
	//
	this, err := p.parseLocalVar(l.Get(2))
	if err != nil {
		return err
	}
	// Parse discriminant
	disc := l.Get(3).AsList()
	if disc == nil || disc.Len() != 2 || !disc.MatchSymbols(2, "discriminant") {
		return p.srcmap.SyntaxError(l.Get(3), "malformed discriminant")
	}
	//
	discriminant, err := p.parseField(disc.Get(1))
	if err != nil {
		return err
	}
	// Parse variants
	variants := make([]EnumVariant, 0)
	names := make(map[string]bool)
	//
	for _, s := range l.Tail(4) {
		v := s.AsList()
		if v == nil || (v.Len() != 4 && v.Len() != 5) || !v.MatchSymbols(3, "variant") {
			return p.srcmap.SyntaxError(s, "malformed enum variant")
		}
		//
		vname, err := p.parseIdentifier(v.Get(1))
		if err != nil {
			return err
		} else if names[vname] {
			return p.srcmap.SyntaxError(s, "duplicate enum variant")
		}
		//
		field, err := p.parseField(v.Get(2))
		if err != nil {
			return err
		}
		// Variant predicates are named after the type they describe.
		vthis, err := p.parseLocalVar(v.Get(3))
		if err != nil {
			return err
		}
		//
		pred, err := p.parseStructPredicate(vthis.Typ.Name(), v.Tail(3))
		if err != nil {
			return err
		}
		//
		names[vname] = true
		variants = append(variants, EnumVariant{vname, field, pred})
	}
	//
	p.predicates[name] = true
	p.program.Predicates = append(p.program.Predicates, NewEnumPredicate(name, this, discriminant, variants))
	//
	return nil
}

// Parse a method declaration, e.g. (method m ((x int) (y (ref T))) stmt...)
func (p *virParser) parseMethodDeclaration(l *sexp.List) *source.SyntaxError {
	if l.Len() < 3 {
		return p.srcmap.SyntaxError(l, "malformed method declaration")
	}
	//
	name, err := p.parseIdentifier(l.Get(1))
	if err != nil {
		return err
	} else if _, ok := p.program.Method(name); ok {
		return p.srcmap.SyntaxError(l, "duplicate method declaration")
	}
	// Parse locals
	locals, err := p.parseLocalVars(l.Get(2))
	if err != nil {
		return err
	}
	//
	p.scope = make(map[string]LocalVar)
	for _, v := range locals {
		p.scope[v.Name] = v
	}
	// Parse body
	body, err := p.parseStmts(l.Tail(3))
	p.scope = nil
	//
	if err != nil {
		return err
	}
	//
	p.program.Methods = append(p.program.Methods, &Method{name, locals, body})
	//
	return nil
}

// ===================================================================
// Statements
// ===================================================================

func (p *virParser) parseStmts(elements []sexp.SExp) ([]Stmt, *source.SyntaxError) {
	stmts := make([]Stmt, len(elements))
	//
	for i, s := range elements {
		stmt, err := p.parseStmt(s)
		if err != nil {
			return nil, err
		}
		//
		stmts[i] = stmt
	}
	//
	return stmts, nil
}

func (p *virParser) parseStmt(s sexp.SExp) (Stmt, *source.SyntaxError) {
	l := s.AsList()
	if l == nil || l.Head() == "" {
		return nil, p.srcmap.SyntaxError(s, "expected statement")
	}
	//
	args := l.Tail(1)
	//
	switch l.Head() {
	case "comment":
		words := make([]string, len(args))
		for i, w := range args {
			words[i] = w.String()
		}
		//
		return &Comment{strings.Join(words, " ")}, nil
	case "label":
		if len(args) != 1 {
			break
		}
		//
		label, err := p.parseIdentifier(args[0])
		//
		return &Label{label}, err
	case "begin-frame":
		if len(args) != 0 {
			break
		}
		//
		return &BeginFrame{}, nil
	case "end-frame":
		if len(args) != 0 {
			break
		}
		//
		return &EndFrame{}, nil
	case "inhale", "exhale", "assert", "obtain", "apply":
		if len(args) != 1 {
			break
		}
		//
		return p.parseAssertionStmt(l, args[0])
	case "call-method":
		return p.parseMethodCallStmt(l)
	case "assign":
		return p.parseAssignStmt(l)
	case "fold", "unfold":
		return p.parseFoldUnfoldStmt(l)
	case "transfer":
		return p.parseTransferStmt(l)
	case "package":
		return p.parsePackageStmt(l)
	case "expire-borrows":
		return p.parseExpireBorrowsStmt(l)
	case "if":
		return p.parseIfStmt(l)
	case "downcast":
		if len(args) != 2 {
			break
		}
		//
		base, err := p.parsePlace(args[0])
		if err != nil {
			return nil, err
		}
		//
		field, err := p.parseField(args[1])
		//
		return &Downcast{base, field}, err
	default:
		return nil, p.srcmap.SyntaxError(l, "unknown statement")
	}
	//
	return nil, p.srcmap.SyntaxError(l, fmt.Sprintf("malformed %s statement", l.Head()))
}

// Parse a statement consisting of a single assertion, such as inhale.
func (p *virParser) parseAssertionStmt(l *sexp.List, arg sexp.SExp) (Stmt, *source.SyntaxError) {
	expr, err := p.parseExpr(arg)
	if err != nil {
		return nil, err
	}
	//
	pos := p.position(l)
	//
	switch l.Head() {
	case "inhale":
		return &Inhale{expr}, nil
	case "exhale":
		return &Exhale{expr, pos}, nil
	case "assert":
		return &Assert{expr, pos}, nil
	case "obtain":
		return &Obtain{expr, pos}, nil
	default:
		if _, ok := expr.(*MagicWand); !ok {
			return nil, p.srcmap.SyntaxError(arg, "expected magic wand")
		}
		//
		return &ApplyMagicWand{expr, pos}, nil
	}
}

// Parse a method call, e.g. (call-method m (x y) e1 e2)
func (p *virParser) parseMethodCallStmt(l *sexp.List) (Stmt, *source.SyntaxError) {
	name, ok := l.SymbolAt(1)
	//
	if !ok || l.Len() < 3 || l.Get(2).AsList() == nil {
		return nil, p.srcmap.SyntaxError(l, "malformed call-method statement")
	}
	//
	targets := make([]LocalVar, 0)
	//
	for _, t := range l.Get(2).AsList().Elements {
		v, err := p.parseVariable(t)
		if err != nil {
			return nil, err
		}
		//
		targets = append(targets, v)
	}
	//
	args, err := p.parseExprs(l.Tail(3))
	if err != nil {
		return nil, err
	}
	//
	return &MethodCall{name, args, targets}, nil
}

var assignKinds = map[string]AssignKind{
	"copy":          COPY_ASSIGN,
	"move":          MOVE_ASSIGN,
	"borrow-mut":    MUTABLE_BORROW_ASSIGN,
	"borrow-shared": SHARED_BORROW_ASSIGN,
	"ghost":         GHOST_ASSIGN,
}

// Parse an assignment, e.g. (assign x.f (+ y 1) [kind])
func (p *virParser) parseAssignStmt(l *sexp.List) (Stmt, *source.SyntaxError) {
	if l.Len() != 3 && l.Len() != 4 {
		return nil, p.srcmap.SyntaxError(l, "malformed assign statement")
	}
	//
	target, err := p.parsePlace(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	src, err := p.parseExpr(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	kind := COPY_ASSIGN
	//
	if l.Len() == 4 {
		var ok bool
		//
		if kind, ok = assignKinds[l.Get(3).String()]; !ok {
			return nil, p.srcmap.SyntaxError(l.Get(3), "unknown assignment kind")
		}
	}
	//
	return &Assign{target, src, kind}, nil
}

// Parse a fold or unfold, e.g. (fold x write [Variant])
func (p *virParser) parseFoldUnfoldStmt(l *sexp.List) (Stmt, *source.SyntaxError) {
	if l.Len() != 3 && l.Len() != 4 {
		return nil, p.srcmap.SyntaxError(l, fmt.Sprintf("malformed %s statement", l.Head()))
	}
	//
	place, err := p.parsePlace(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	amount, err := p.parseAmount(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	variant := util.None[string]()
	//
	if l.Len() == 4 {
		name, err := p.parseIdentifier(l.Get(3))
		if err != nil {
			return nil, err
		}
		//
		variant = util.Some(name)
	}
	//
	args := []Expr{place}
	//
	if l.Head() == "fold" {
		return &Fold{place.Type().Name(), args, amount, variant, p.position(l)}, nil
	}
	//
	return &Unfold{place.Type().Name(), args, amount, variant}, nil
}

// Parse a permission transfer, e.g. (transfer x y [unchecked])
func (p *virParser) parseTransferStmt(l *sexp.List) (Stmt, *source.SyntaxError) {
	if l.Len() != 3 && (l.Len() != 4 || !l.MatchSymbols(4, "transfer") || l.Get(3).String() != "unchecked") {
		return nil, p.srcmap.SyntaxError(l, "malformed transfer statement")
	}
	//
	left, err := p.parsePlace(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	right, err := p.parsePlace(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	return &TransferPerm{left, right, l.Len() == 4}, nil
}

// Parse a magic wand package, e.g. (package (wand l r) stmt...)
func (p *virParser) parsePackageStmt(l *sexp.List) (Stmt, *source.SyntaxError) {
	if l.Len() < 2 {
		return nil, p.srcmap.SyntaxError(l, "malformed package statement")
	}
	//
	wand, err := p.parseExpr(l.Get(1))
	if err != nil {
		return nil, err
	} else if _, ok := wand.(*MagicWand); !ok {
		return nil, p.srcmap.SyntaxError(l.Get(1), "expected magic wand")
	}
	//
	stmts, err := p.parseStmts(l.Tail(2))
	if err != nil {
		return nil, err
	}
	//
	pos := p.position(l)
	label := fmt.Sprintf("package$%d", pos.Id)
	//
	return &PackageMagicWand{wand, stmts, label, nil, pos}, nil
}

// Parse an expiration of borrows, e.g. (expire-borrows 1 2)
func (p *virParser) parseExpireBorrowsStmt(l *sexp.List) (Stmt, *source.SyntaxError) {
	nodes := make([]ReborrowingNode, 0)
	//
	for _, s := range l.Tail(1) {
		n, err := strconv.ParseUint(s.String(), 10, 32)
		if err != nil || s.AsSymbol() == nil {
			return nil, p.srcmap.SyntaxError(s, "invalid borrow")
		}
		//
		nodes = append(nodes, ReborrowingNode{uint(n), nil})
	}
	//
	return &ExpireBorrows{ReborrowingDAG{nodes}}, nil
}

// Parse a conditional statement, e.g. (if g (stmt...) (stmt...))
func (p *virParser) parseIfStmt(l *sexp.List) (Stmt, *source.SyntaxError) {
	if l.Len() != 4 || l.Get(2).AsList() == nil || l.Get(3).AsList() == nil {
		return nil, p.srcmap.SyntaxError(l, "malformed if statement")
	}
	//
	guard, err := p.parseExpr(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	then, err := p.parseStmts(l.Get(2).AsList().Elements)
	if err != nil {
		return nil, err
	}
	//
	els, err := p.parseStmts(l.Get(3).AsList().Elements)
	if err != nil {
		return nil, err
	}
	//
	return &If{guard, then, els}, nil
}

// ===================================================================
// Expressions
// ===================================================================

var binaryOps = map[string]BinaryOpKind{
	"==": EQ_CMP, "!=": NE_CMP, ">": GT_CMP, ">=": GE_CMP, "<": LT_CMP, "<=": LE_CMP,
	"+": ADD, "-": SUB, "*": MUL, "/": DIV, "%": MOD,
	"&&": AND, "||": OR, "==>": IMPLIES,
}

func (p *virParser) parseExprs(elements []sexp.SExp) ([]Expr, *source.SyntaxError) {
	exprs := make([]Expr, len(elements))
	//
	for i, s := range elements {
		e, err := p.parseExpr(s)
		if err != nil {
			return nil, err
		}
		//
		exprs[i] = e
	}
	//
	return exprs, nil
}

// Parse an expression which is required to be a place.
func (p *virParser) parsePlace(s sexp.SExp) (Expr, *source.SyntaxError) {
	e, err := p.parseExpr(s)
	if err != nil {
		return nil, err
	} else if !IsPlace(e) {
		return nil, p.srcmap.SyntaxError(s, "expected place")
	}
	//
	return e, nil
}

func (p *virParser) parseExpr(s sexp.SExp) (Expr, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		return p.parseSymbolExpr(sym)
	}
	//
	l := s.AsList()
	if l.Head() == "" {
		return nil, p.srcmap.SyntaxError(s, "expected expression")
	}
	//
	if op, ok := binaryOps[l.Head()]; ok {
		if l.Len() != 3 {
			return nil, p.srcmap.SyntaxError(l, "binary operator requires two arguments")
		}
		//
		args, err := p.parseExprs(l.Tail(1))
		if err != nil {
			return nil, err
		}
		//
		return &BinOp{op, args[0], args[1], p.position(l)}, nil
	}
	//
	return p.parseCompoundExpr(l)
}

func (p *virParser) parseSymbolExpr(sym *sexp.Symbol) (Expr, *source.SyntaxError) {
	pos := p.position(sym)
	//
	switch sym.Value {
	case "true":
		return &Const{true, pos}, nil
	case "false":
		return &Const{false, pos}, nil
	}
	//
	if v, err := strconv.ParseInt(sym.Value, 10, 64); err == nil {
		return &Const{v, pos}, nil
	} else if v, ok := p.scope[sym.Value]; ok {
		return &Local{v, pos}, nil
	}
	//
	return nil, p.srcmap.SyntaxError(sym, "unknown variable")
}

// Parse a compound expression (i.e. a list) other than a binary operator.
func (p *virParser) parseCompoundExpr(l *sexp.List) (Expr, *source.SyntaxError) {
	var (
		pos  = p.position(l)
		args = l.Tail(1)
	)
	//
	switch l.Head() {
	case ".":
		if len(args) != 2 {
			break
		}
		//
		base, err := p.parsePlace(args[0])
		if err != nil {
			return nil, err
		} else if args[1].String() == DEREF_FIELD {
			if e, ok := TryDeref(base); ok {
				return WithPos(e, pos), nil
			}
			//
			return nil, p.srcmap.SyntaxError(l, "cannot dereference non-reference")
		}
		//
		field, err := p.parseField(args[1])
		//
		return &FieldExpr{base, field, pos}, err
	case "variant":
		if len(args) != 2 {
			break
		}
		//
		base, err := p.parsePlace(args[0])
		if err != nil {
			return nil, err
		}
		//
		field, err := p.parseField(args[1])
		//
		return &Variant{base, field, pos}, err
	case "old":
		if len(args) != 2 {
			break
		}
		//
		label, err := p.parseIdentifier(args[0])
		if err != nil {
			return nil, err
		}
		//
		base, err := p.parseExpr(args[1])
		//
		return &LabelledOld{label, base, pos}, err
	case "acc", "pred":
		return p.parseAccessPredicate(l, pos)
	case "unfolding":
		return p.parseUnfolding(l, pos)
	case "!", "neg":
		if len(args) != 1 {
			break
		}
		//
		arg, err := p.parseExpr(args[0])
		op := NOT
		//
		if l.Head() == "neg" {
			op = MINUS
		}
		//
		return &UnaryOp{op, arg, pos}, err
	case "seq-index", "seq-concat":
		if len(args) != 2 {
			break
		}
		//
		es, err := p.parseExprs(args)
		if err != nil {
			return nil, err
		}
		//
		op := SEQ_INDEX
		if l.Head() == "seq-concat" {
			op = SEQ_CONCAT
		}
		//
		return &ContainerOp{op, es[0], es[1], pos}, nil
	case "seq":
		if len(args) < 1 {
			break
		}
		//
		elem, err := p.parseType(args[0])
		if err != nil {
			return nil, err
		}
		//
		es, err := p.parseExprs(args[1:])
		//
		return &Seq{&SeqType{elem}, es, pos}, err
	case "?":
		if len(args) != 3 {
			break
		}
		//
		es, err := p.parseExprs(args)
		if err != nil {
			return nil, err
		}
		//
		return &Cond{es[0], es[1], es[2], pos}, nil
	case "forall", "exists":
		return p.parseQuantifier(l, pos)
	case "let":
		return p.parseLet(l, pos)
	case "addr-of":
		if len(args) != 2 {
			break
		}
		//
		base, err := p.parsePlace(args[0])
		if err != nil {
			return nil, err
		}
		//
		typ, err := p.parseType(args[1])
		//
		return &AddrOf{base, typ, pos}, err
	case "wand":
		if len(args) != 2 {
			break
		}
		//
		es, err := p.parseExprs(args)
		if err != nil {
			return nil, err
		}
		//
		return &MagicWand{es[0], es[1], util.None[uint](), pos}, nil
	case "call", "domain-call":
		return p.parseFunctionCall(l, pos)
	case "inhale-exhale":
		if len(args) != 2 {
			break
		}
		//
		es, err := p.parseExprs(args)
		if err != nil {
			return nil, err
		}
		//
		return &InhaleExhale{es[0], es[1], pos}, nil
	case "downcast":
		if len(args) != 3 {
			break
		}
		//
		base, err := p.parseExpr(args[0])
		if err != nil {
			return nil, err
		}
		//
		place, err := p.parsePlace(args[1])
		if err != nil {
			return nil, err
		}
		//
		field, err := p.parseField(args[2])
		//
		return &DowncastExpr{base, place, field, pos}, err
	case "snap":
		if len(args) != 1 {
			break
		}
		//
		base, err := p.parseExpr(args[0])
		//
		return &SnapApp{base, pos}, err
	default:
		return nil, p.srcmap.SyntaxError(l, "unknown expression")
	}
	//
	return nil, p.srcmap.SyntaxError(l, fmt.Sprintf("malformed %s expression", l.Head()))
}

// Parse an access predicate, e.g. (acc x.f read) or (pred x).  When the amount
// is omitted, full ownership is assumed.
func (p *virParser) parseAccessPredicate(l *sexp.List, pos Position) (Expr, *source.SyntaxError) {
	if l.Len() != 2 && l.Len() != 3 {
		return nil, p.srcmap.SyntaxError(l, fmt.Sprintf("malformed %s expression", l.Head()))
	}
	//
	place, err := p.parsePlace(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	amount := WRITE
	//
	if l.Len() == 3 {
		if amount, err = p.parseAmount(l.Get(2)); err != nil {
			return nil, err
		}
	}
	//
	if l.Head() == "acc" {
		return &FieldAccessPredicate{place, amount, pos}, nil
	} else if pred, ok := PredPermission(place, amount); ok {
		pred.Position = pos
		return pred, nil
	}
	//
	return nil, p.srcmap.SyntaxError(l.Get(1), "predicate access requires reference type")
}

// Parse an unfolding expression, e.g. (unfolding x read [Variant] body).
func (p *virParser) parseUnfolding(l *sexp.List, pos Position) (Expr, *source.SyntaxError) {
	if l.Len() != 4 && l.Len() != 5 {
		return nil, p.srcmap.SyntaxError(l, "malformed unfolding expression")
	}
	//
	place, err := p.parsePlace(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	amount, err := p.parseAmount(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	variant := util.None[string]()
	//
	if l.Len() == 5 {
		name, err := p.parseIdentifier(l.Get(3))
		if err != nil {
			return nil, err
		}
		//
		variant = util.Some(name)
	}
	//
	body, err := p.parseExpr(l.Get(l.Len() - 1))
	if err != nil {
		return nil, err
	}
	//
	return &Unfolding{place.Type().Name(), []Expr{place}, body, amount, variant, pos}, nil
}

// Parse a quantifier, e.g. (forall ((i int) (j int)) body).
func (p *virParser) parseQuantifier(l *sexp.List, pos Position) (Expr, *source.SyntaxError) {
	if l.Len() != 3 {
		return nil, p.srcmap.SyntaxError(l, fmt.Sprintf("malformed %s expression", l.Head()))
	}
	//
	vars, err := p.parseLocalVars(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	body, err := p.parseScopedExpr(l.Get(2), vars...)
	if err != nil {
		return nil, err
	}
	//
	if l.Head() == "forall" {
		return &ForAll{vars, nil, body, pos}, nil
	}
	//
	return &Exists{vars, nil, body, pos}, nil
}

// Parse a let binding, e.g. (let (x int) def body).
func (p *virParser) parseLet(l *sexp.List, pos Position) (Expr, *source.SyntaxError) {
	if l.Len() != 4 {
		return nil, p.srcmap.SyntaxError(l, "malformed let expression")
	}
	//
	v, err := p.parseLocalVar(l.Get(1))
	if err != nil {
		return nil, err
	}
	//
	def, err := p.parseExpr(l.Get(2))
	if err != nil {
		return nil, err
	}
	//
	body, err := p.parseScopedExpr(l.Get(3), v)
	if err != nil {
		return nil, err
	}
	//
	return &LetExpr{v, def, body, pos}, nil
}

// Parse a function application, e.g. (call f int x y) or (domain-call D f int
// x y).
func (p *virParser) parseFunctionCall(l *sexp.List, pos Position) (Expr, *source.SyntaxError) {
	var (
		n      = 3
		domain = ""
	)
	//
	if l.Head() == "domain-call" {
		if l.Len() < 2 {
			return nil, p.srcmap.SyntaxError(l, "malformed domain-call expression")
		}
		//
		domain = l.Get(1).String()
		n = 4
	}
	//
	name, ok := l.SymbolAt(n - 2)
	//
	if !ok || l.Len() < n {
		return nil, p.srcmap.SyntaxError(l, fmt.Sprintf("malformed %s expression", l.Head()))
	}
	//
	ret, err := p.parseType(l.Get(n - 1))
	if err != nil {
		return nil, err
	}
	//
	args, err := p.parseExprs(l.Tail(n))
	if err != nil {
		return nil, err
	}
	// Formal arguments are named positionally
	formals := make([]LocalVar, len(args))
	for i, arg := range args {
		formals[i] = NewLocalVar(fmt.Sprintf("_%d", i+1), arg.Type())
	}
	//
	if domain != "" {
		return &DomainFuncApp{DomainFunc{name, formals, ret, domain}, args, pos}, nil
	}
	//
	return &FuncApp{name, args, formals, ret, pos}, nil
}

// Parse an expression with some additional variables in scope.
func (p *virParser) parseScopedExpr(s sexp.SExp, vars ...LocalVar) (Expr, *source.SyntaxError) {
	outer := p.scope
	// Construct inner scope
	p.scope = make(map[string]LocalVar)
	for k, v := range outer {
		p.scope[k] = v
	}
	//
	for _, v := range vars {
		p.scope[v.Name] = v
	}
	//
	e, err := p.parseExpr(s)
	p.scope = outer
	//
	return e, err
}

// ===================================================================
// Helpers
// ===================================================================

// Parse a type, e.g. int or (ref T).
func (p *virParser) parseType(s sexp.SExp) (Type, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		switch sym.Value {
		case "int":
			return INT, nil
		case "bool":
			return BOOL, nil
		}
		//
		return nil, p.srcmap.SyntaxError(s, "unknown type")
	}
	//
	l := s.AsList()
	//
	switch {
	case l.Len() == 2 && l.MatchSymbols(2, "ref"):
		return NewTypedRef(l.Get(1).String()), nil
	case l.Len() == 3 && l.MatchSymbols(2, "ref"):
		referent, err := p.parseType(l.Get(2))
		if err != nil {
			return nil, err
		}
		//
		return NewReference(l.Get(1).String(), referent), nil
	case l.Len() == 2 && l.MatchSymbols(2, "tvar"):
		return &TypeVarType{l.Get(1).String()}, nil
	case l.Len() == 2 && l.MatchSymbols(2, "domain"):
		return &DomainType{l.Get(1).String()}, nil
	case l.Len() == 2 && l.MatchSymbols(1, "seq"):
		elem, err := p.parseType(l.Get(1))
		if err != nil {
			return nil, err
		}
		//
		return &SeqType{elem}, nil
	}
	//
	return nil, p.srcmap.SyntaxError(s, "unknown type")
}

// Parse a list of typed variables, e.g. ((x int) (y bool)).
func (p *virParser) parseLocalVars(s sexp.SExp) ([]LocalVar, *source.SyntaxError) {
	l := s.AsList()
	if l == nil {
		return nil, p.srcmap.SyntaxError(s, "expected variable list")
	}
	//
	vars := make([]LocalVar, l.Len())
	names := make(map[string]bool)
	//
	for i, e := range l.Elements {
		v, err := p.parseLocalVar(e)
		if err != nil {
			return nil, err
		} else if names[v.Name] {
			return nil, p.srcmap.SyntaxError(e, "duplicate variable")
		}
		//
		names[v.Name] = true
		vars[i] = v
	}
	//
	return vars, nil
}

// Parse a typed variable, e.g. (x int).
func (p *virParser) parseLocalVar(s sexp.SExp) (LocalVar, *source.SyntaxError) {
	l := s.AsList()
	if l == nil || l.Len() != 2 {
		return LocalVar{}, p.srcmap.SyntaxError(s, "expected typed variable")
	}
	//
	name, err := p.parseIdentifier(l.Get(0))
	if err != nil {
		return LocalVar{}, err
	}
	//
	typ, err := p.parseType(l.Get(1))
	if err != nil {
		return LocalVar{}, err
	}
	//
	return NewLocalVar(name, typ), nil
}

// Parse a reference to a variable in scope.
func (p *virParser) parseVariable(s sexp.SExp) (LocalVar, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		if v, ok := p.scope[sym.Value]; ok {
			return v, nil
		}
	}
	//
	return LocalVar{}, p.srcmap.SyntaxError(s, "unknown variable")
}

// Parse a reference to a declared field.
func (p *virParser) parseField(s sexp.SExp) (Field, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		if f, ok := p.fields[sym.Value]; ok {
			return f, nil
		}
	}
	//
	return Field{}, p.srcmap.SyntaxError(s, "unknown field")
}

func (p *virParser) parseAmount(s sexp.SExp) (PermAmount, *source.SyntaxError) {
	if amount, ok := ParsePermAmount(s.String()); ok && s.AsSymbol() != nil {
		return amount, nil
	}
	//
	return 0, p.srcmap.SyntaxError(s, "invalid permission amount")
}

func (p *virParser) parseIdentifier(s sexp.SExp) (string, *source.SyntaxError) {
	if sym := s.AsSymbol(); sym != nil {
		return sym.Value, nil
	}
	//
	return "", p.srcmap.SyntaxError(s, "expected identifier")
}

// Construct a fresh position for a given node, based on its location in the
// original source file.
func (p *virParser) position(s sexp.SExp) Position {
	line, col := p.srcmap.LineAndColumn(s)
	id := p.nextId
	p.nextId++
	//
	return NewPosition(line, col, id)
}
