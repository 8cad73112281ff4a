/*
File    : dreamberd/parser/group.go

The whitespace-sensitive operator grouper. DreamBerd has no fixed operator
precedence table: which operator binds tightest is decided purely by how
much whitespace surrounds it — the less space, the tighter the bind. The
algorithm: flatten a run of atoms and operators into a list annotated with
the whitespace width around each operator, reverse it, then recursively
peel operators whose width is strictly less than the current "spacing"
threshold, working the threshold down from the widest gap seen to zero.
*/
package parser

import (
	"fmt"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/token"
)

type itemKind int

const (
	itemSyntax itemKind = iota
	itemOperation
	itemUnary
)

type groupItem struct {
	kind      itemKind
	syntax    ast.Syntax
	op        ast.Operation
	precision int
	unary     ast.UnaryOp
	space     int
}

// parseGroup assembles one whitespace-ordered operator tree: a run of atoms
// and operators up to (but not including) a stop token — `)`, `!`, `?`,
// `]`, `,`, `}`, or end of input.
func (p *Parser) parseGroup() (ast.Syntax, error) {
	items, err := p.fancifyToks()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("expected an expression, got `%s`", p.peek())
	}
	maxSpace := 0
	for _, it := range items {
		if it.space > maxSpace {
			maxSpace = it.space
		}
	}
	reversed := make([]groupItem, len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}
	stack := &itemStack{items: reversed}
	result, err := groupRec(stack, maxSpace+1)
	if err != nil {
		return nil, err
	}
	if !stack.empty() {
		return nil, fmt.Errorf("unexpected leftover token while grouping expression")
	}
	return result, nil
}

// fancifyToks turns the upcoming run of tokens into a flat list of atoms,
// binary operators, and postfix (`++`/`--`) unary markers, stopping
// (without consuming) at a stop token.
func (p *Parser) fancifyToks() ([]groupItem, error) {
	var items []groupItem
	for {
		ws := p.consumeWhitespace()
		switch p.peekType() {
		case token.MinusMinus:
			p.advance()
			items = append(items, groupItem{kind: itemUnary, unary: ast.Decrement, space: ws})
		case token.PlusPlus:
			p.advance()
			items = append(items, groupItem{kind: itemUnary, unary: ast.Increment, space: ws})
		case token.RParen, token.Bang, token.Question, token.RBracket, token.Comma, token.RBrace, token.EOF:
			return items, nil
		default:
			if op, precision, ok := operationFromToken(p.peek()); ok {
				p.advance()
				ws += p.consumeWhitespace()
				items = append(items, groupItem{kind: itemOperation, op: op, precision: precision, space: ws})
			} else {
				inner, err := p.parsePrimary()
				if err != nil {
					return nil, err
				}
				items = append(items, groupItem{kind: itemSyntax, syntax: inner, space: ws})
			}
		}
	}
}

// operationFromToken reports the ast.Operation a token denotes, if any.
// `-` is always Sub here: a leading negation is only ever written `;x`
// (handled in parsePrimary) since grouping tries this conversion before
// ever falling back to atom-parsing, so a bare `-` never reaches the atom
// parser as a prefix.
func operationFromToken(tok token.Token) (ast.Operation, int, bool) {
	switch tok.Type {
	case token.Equal:
		return ast.OpEqual, tok.Count, true
	case token.Plus:
		return ast.OpAdd, 0, true
	case token.PlusEq:
		return ast.OpAddEq, 0, true
	case token.Minus:
		return ast.OpSub, 0, true
	case token.MinusEq:
		return ast.OpSubEq, 0, true
	case token.Star:
		return ast.OpMul, 0, true
	case token.StarEq:
		return ast.OpMulEq, 0, true
	case token.Slash:
		return ast.OpDiv, 0, true
	case token.SlashEq:
		return ast.OpDivEq, 0, true
	case token.Percent:
		return ast.OpMod, 0, true
	case token.PercentEq:
		return ast.OpModEq, 0, true
	case token.Dot:
		return ast.OpDot, 0, true
	case token.And:
		return ast.OpAnd, 0, true
	case token.Or:
		return ast.OpOr, 0, true
	case token.LCaret:
		return ast.OpLt, 0, true
	case token.LCaretEq:
		return ast.OpLe, 0, true
	case token.RCaret:
		return ast.OpGt, 0, true
	case token.RCaretEq:
		return ast.OpGe, 0, true
	case token.Arrow:
		return ast.OpArrow, 0, true
	default:
		return 0, 0, false
	}
}

// itemStack is a forward cursor over an already-reversed []groupItem, so
// "pop the front" reads as peeling the rightmost-remaining unconsumed item
// of the source-order token run.
type itemStack struct {
	items []groupItem
	pos   int
}

func (s *itemStack) peek() (groupItem, bool) {
	if s.pos >= len(s.items) {
		return groupItem{}, false
	}
	return s.items[s.pos], true
}

func (s *itemStack) pop() (groupItem, bool) {
	it, ok := s.peek()
	if ok {
		s.pos++
	}
	return it, ok
}

func (s *itemStack) empty() bool { return s.pos >= len(s.items) }

// groupRec peels one expression bound at the given spacing threshold:
// operators narrower than spacing bind here; operators at or above it are
// left for an outer, larger-spacing call to claim. Recursing into spacing-1
// first means the narrowest gaps are resolved at the deepest recursion,
// i.e. bind tightest.
func groupRec(stack *itemStack, spacing int) (ast.Syntax, error) {
	if it, ok := stack.peek(); ok && it.kind == itemUnary {
		stack.pop()
		operand, err := groupRec(stack, it.space+1)
		if err != nil {
			return nil, err
		}
		return ast.UnaryOperation{Op: it.unary, Operand: operand}, nil
	}

	if spacing == 0 {
		it, ok := stack.pop()
		if !ok {
			return nil, fmt.Errorf("unexpected end of expression")
		}
		if it.kind != itemSyntax {
			return nil, fmt.Errorf("expected an expression, found an operator")
		}
		return it.syntax, nil
	}

	rhs, err := groupRec(stack, spacing-1)
	if err != nil {
		return nil, err
	}

	it, ok := stack.peek()
	if !ok || it.kind != itemOperation || it.space >= spacing {
		return rhs, nil
	}
	stack.pop()
	lhs, err := groupRec(stack, spacing)
	if err != nil {
		return nil, err
	}
	return makeOperation(lhs, it.op, it.precision, rhs)
}

// makeOperation combines lhs op rhs, applying the two rewrites that happen
// at construction time rather than during evaluation:
//
//   - `->` never survives as an ast.Operation: its left side is read as a
//     parameter list and the pair becomes an ast.Function. The grouper, not
//     the evaluator, owns this rewrite.
//   - a chain of same-family assignment operators (`=`, `+=`, ...)
//     associates right-to-left, the one documented exception to this
//     grouper's otherwise left-to-right handling of equal-width chains.
func makeOperation(lhs ast.Syntax, op ast.Operation, precision int, rhs ast.Syntax) (ast.Syntax, error) {
	if op == ast.OpArrow {
		params, err := extractParams(lhs)
		if err != nil {
			return nil, err
		}
		return ast.Function{Params: params, Body: rhs}, nil
	}
	if lhsOp, ok := lhs.(ast.OperationNode); ok && op.IsAssignFamily() && lhsOp.Op.IsAssignFamily() {
		inner, err := makeOperation(lhsOp.Rhs, op, precision, rhs)
		if err != nil {
			return nil, err
		}
		return ast.OperationNode{Lhs: lhsOp.Lhs, Op: lhsOp.Op, Rhs: inner, Precision: lhsOp.Precision}, nil
	}
	return ast.OperationNode{Lhs: lhs, Op: op, Rhs: rhs, Precision: precision}, nil
}

// extractParams reads a Function literal's parameter list off the arrow's
// left-hand side: a single identifier for a one-parameter function, or a
// parenthesized (and therefore already-Block-wrapped) list of identifiers
// for several.
func extractParams(lhs ast.Syntax) ([]string, error) {
	switch v := lhs.(type) {
	case ast.Ident:
		return []string{v.Name}, nil
	case ast.Block:
		params := make([]string, len(v.Statements))
		for i, stmt := range v.Statements {
			id, ok := stmt.(ast.Ident)
			if !ok {
				return nil, fmt.Errorf("function parameter list must contain only identifiers")
			}
			params[i] = id.Name
		}
		return params, nil
	default:
		return nil, fmt.Errorf("function input must be an identifier or a parenthesized list of identifiers")
	}
}
