/*
File    : dreamberd/parser/parser.go

Package parser implements a recursive-descent parser with a
whitespace-sensitive operator grouper for DreamBerd. It converts a token
stream from dreamberd/lexer into the dreamberd/ast syntax tree.

The parser maintains a flat token slice and a cursor rather than an
iterator, which keeps lookahead (needed for `const`/`var`/ident/`(`
disambiguation) a matter of indexing instead of a dedicated peekable
wrapper. Parse failures are returned as plain `error`s naming the
unexpected token.
*/
package parser

import (
	"fmt"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/lexer"
	"github.com/dreamberd-go/dreamberd/token"
)

// Parser holds the token stream being consumed and a cursor into it.
type Parser struct {
	toks []token.Token
	pos  int
}

// Parse tokenizes and parses src, producing the top-level syntax. Most
// callers pass src already wrapped in `{...}` (the CLI and REPL do this so
// every file and line parses as one block; so does the `eval` keyword, for
// consistency). Parse does not assume this, though: it repeatedly parses
// top-level statements until the token stream is exhausted and collects
// them into one Block, so bare, brace-free snippets parse too. The result
// then runs through the singleton-block collapse pass, so a one-statement
// wrapping usually comes back as the statement itself rather than a Block
// around it.
func Parse(src string) (ast.Syntax, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	var statements []ast.Syntax
	for {
		p.consumeWhitespace()
		if p.peekType() == token.EOF {
			break
		}
		stmt, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		statements = append(statements, p.consumeTerminator(stmt))
	}
	return optimize(ast.Block{Statements: statements}), nil
}

// optimize is the parser's single post-processing pass: a block holding
// exactly one statement collapses to that statement, applied
// bottom-up through the whole tree. Multi-statement nested blocks are left
// alone — inlining them into their parent would merge scopes. The collapse
// is what lets a REPL line wrapped as `{line}` declare into the persistent
// environment instead of a throwaway block scope.
func optimize(syn ast.Syntax) ast.Syntax {
	switch s := syn.(type) {
	case ast.Block:
		stmts := make([]ast.Syntax, len(s.Statements))
		for i, st := range s.Statements {
			stmts[i] = optimize(st)
		}
		if len(stmts) == 1 {
			return stmts[0]
		}
		return ast.Block{Statements: stmts}
	case ast.Statement:
		return ast.Statement{IsDebug: s.IsDebug, Inner: optimize(s.Inner), Level: s.Level}
	case ast.Declare:
		if s.Value == nil {
			return s
		}
		return ast.Declare{Type: s.Type, Name: s.Name, Value: optimize(s.Value)}
	case ast.Function:
		return ast.Function{Params: s.Params, Body: optimize(s.Body)}
	case ast.Call:
		args := make([]ast.Syntax, len(s.Args))
		for i, a := range s.Args {
			args[i] = optimize(a)
		}
		return ast.Call{Callee: s.Callee, Args: args}
	case ast.OperationNode:
		return ast.OperationNode{Lhs: optimize(s.Lhs), Op: s.Op, Rhs: optimize(s.Rhs), Precision: s.Precision}
	case ast.UnaryOperation:
		return ast.UnaryOperation{Op: s.Op, Operand: optimize(s.Operand)}
	default:
		return syn
	}
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekType() token.Type { return p.peek().Type }

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

// consumeWhitespace skips a run of Space tokens (there is never more than
// one in a row, since the lexer already collapses whitespace runs, but a
// helper keeps call sites uniform) and returns the total width skipped.
func (p *Parser) consumeWhitespace() int {
	total := 0
	for p.peekType() == token.Space {
		total += p.advance().Count
	}
	return total
}

// consumeTerminator checks for a trailing `!`/`?` run after a just-parsed
// statement and wraps it into a Statement node if present. A statement
// with nothing trailing (e.g. the last statement before `}`) is returned
// unwrapped.
func (p *Parser) consumeTerminator(inner ast.Syntax) ast.Syntax {
	switch p.peekType() {
	case token.Bang:
		count := p.advance().Count
		return ast.Statement{IsDebug: false, Inner: inner, Level: count}
	case token.Question:
		count := p.advance().Count
		return ast.Statement{IsDebug: true, Inner: inner, Level: count}
	default:
		return inner
	}
}

// parsePrimary parses one atom: a literal, identifier, call, declaration,
// parenthesized/braced group, or a `;`-prefixed negation. This is the
// grammar's `atom` production; parseGroup (group.go) is what assembles
// atoms into whitespace-precedence-ordered operator trees.
func (p *Parser) parsePrimary() (ast.Syntax, error) {
	tok := p.peek()
	switch tok.Type {
	case token.EOF:
		return nil, fmt.Errorf("unexpected end of file")
	case token.Space:
		p.advance()
		return p.parsePrimary()
	case token.String:
		p.advance()
		return ast.StringLit{Segments: tok.Segments}, nil
	case token.Semicolon:
		p.advance()
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOperation{Op: ast.Negate, Operand: operand}, nil
	case token.Ident:
		p.advance()
		return p.parseIdentForm(tok.Literal)
	case token.LBrace:
		p.advance()
		return p.parseBlockBody()
	case token.LParen:
		p.advance()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return args[0], nil
		}
		return ast.Block{Statements: args}, nil
	default:
		return nil, fmt.Errorf("unexpected token `%s` at %d:%d", tok, tok.Line, tok.Column)
	}
}

// parseIdentForm continues parsing after an identifier token has already
// been consumed: it may start a `const`/`var` declaration, a call
// (`name(args)`, whitespace before `(` is permitted), or stand alone as a
// bare identifier reference.
func (p *Parser) parseIdentForm(name string) (ast.Syntax, error) {
	afterName := p.pos
	p.consumeWhitespace()
	if name == "const" || name == "var" {
		return p.parseDeclare(name)
	}
	if p.peekType() == token.LParen {
		p.advance()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return ast.Call{Callee: name, Args: args}, nil
	}
	// Not a call: leave the whitespace for the grouper, which counts it as
	// the left-hand width of the operator that follows.
	p.pos = afterName
	return ast.Ident{Name: name}, nil
}

// parseDeclare parses the remainder of a `const`/`var` declaration after
// the first axis keyword has been consumed and its trailing whitespace
// skipped: the second axis keyword, the variable name, and either a bare
// `!` (no initializer) or `= expr`.
func (p *Parser) parseDeclare(first string) (ast.Syntax, error) {
	second := p.peek()
	if second.Type != token.Ident || (second.Literal != "const" && second.Literal != "var") {
		return nil, fmt.Errorf("expected `const` or `var` after `%s`, got `%s`", first, second)
	}
	p.advance()
	varType, err := declareVarType(first, second.Literal)
	if err != nil {
		return nil, err
	}
	p.consumeWhitespace()

	nameTok := p.peek()
	if nameTok.Type != token.Ident {
		return nil, fmt.Errorf("expected a variable name after `%s %s`, got `%s`", first, second.Literal, nameTok)
	}
	p.advance()
	p.consumeWhitespace()

	// An optional `: type` annotation is accepted and discarded; there is
	// no static type system to hand it to.
	if p.peekType() == token.Colon {
		p.advance()
		p.consumeWhitespace()
		typeTok := p.peek()
		if typeTok.Type != token.Ident {
			return nil, fmt.Errorf("expected a type name after `:`, got `%s`", typeTok)
		}
		p.advance()
		p.consumeWhitespace()
	}

	next := p.peek()
	switch {
	case next.Type == token.Bang:
		p.advance()
		return ast.Declare{Type: varType, Name: nameTok.Literal, Value: nil}, nil
	case next.Type == token.Equal && next.Count == 1:
		p.advance()
		p.consumeWhitespace()
		value, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		return ast.Declare{Type: varType, Name: nameTok.Literal, Value: value}, nil
	default:
		return nil, fmt.Errorf("expected `!` or `=` after variable name, got `%s`", next)
	}
}

func declareVarType(first, second string) (ast.VarType, error) {
	switch {
	case first == "var" && second == "var":
		return ast.VarVar, nil
	case first == "var" && second == "const":
		return ast.VarConst, nil
	case first == "const" && second == "var":
		return ast.ConstVar, nil
	case first == "const" && second == "const":
		return ast.ConstConst, nil
	default:
		return 0, fmt.Errorf("invalid declaration `%s %s`", first, second)
	}
}

// parseBlockBody parses statements up to a closing `}`, which must already
// be pending (the opening `{` has been consumed by the caller).
func (p *Parser) parseBlockBody() (ast.Syntax, error) {
	var statements []ast.Syntax
	for {
		p.consumeWhitespace()
		if p.peekType() == token.RBrace {
			p.advance()
			return ast.Block{Statements: statements}, nil
		}
		if p.peekType() == token.EOF {
			return nil, fmt.Errorf("expected `}`")
		}
		stmt, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		statements = append(statements, p.consumeTerminator(stmt))
	}
}

// parseArgs parses a comma-separated list of grouped expressions up to a
// closing `)` (the opening `(` has already been consumed). Used both for
// call argument lists and for generic parenthesization/tuples.
func (p *Parser) parseArgs() ([]ast.Syntax, error) {
	var args []ast.Syntax
	p.consumeWhitespace()
	if p.peekType() == token.RParen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.consumeWhitespace()
		switch p.peekType() {
		case token.Comma:
			p.advance()
			p.consumeWhitespace()
		case token.RParen:
			p.advance()
			return args, nil
		default:
			return nil, fmt.Errorf("expected `,` or `)`, got `%s`", p.peek())
		}
	}
}
