/*
File    : dreamberd/eval/eval.go

Package eval tree-walks the ast.Syntax produced by the parser against a
state.State environment, producing the *value.Pointer the expression
resolves to (or an error, for the handful of failures that surface
explicitly — assignment to a const binding, a malformed keyword call, a
comparison between non-numbers — everything else degrades to the undefined
value rather than raising).

Evaluator carries only an io.Writer: the target for the `?`/`??`/`???`
debug-print statement levels. It holds no other state — every binding
lives in the state.State threaded through each call.
*/
package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/state"
	"github.com/dreamberd-go/dreamberd/token"
	"github.com/dreamberd-go/dreamberd/value"
)

// Evaluator walks syntax trees against a state.State, writing debug-print
// output to Writer.
type Evaluator struct {
	Writer io.Writer
}

// New returns an Evaluator that writes debug-print output to w.
func New(w io.Writer) *Evaluator { return &Evaluator{Writer: w} }

// Eval evaluates one syntax node against env, returning the live Pointer it
// resolves to. For l-value-producing nodes (Ident, object member access)
// the returned Pointer is the actual binding, not a copy — callers that
// need an independent value should call .Peek() and not mutate through it.
func (e *Evaluator) Eval(syn ast.Syntax, env *state.State) (*value.Pointer, error) {
	switch s := syn.(type) {
	case ast.Block:
		return e.evalBlock(s, env)
	case ast.Statement:
		return e.evalStatement(s, env)
	case ast.Declare:
		return e.evalDeclare(s, env)
	case ast.Ident:
		return env.Get(s.Name), nil
	case ast.StringLit:
		return e.evalString(s, env)
	case ast.Function:
		return value.NewConstConst(value.Fn(&value.FunctionVal{Params: s.Params, Body: s.Body})), nil
	case ast.Call:
		return e.evalCall(s, env)
	case ast.UnaryOperation:
		return e.evalUnary(s, env)
	case ast.OperationNode:
		return e.evalOperation(s, env)
	default:
		return nil, fmt.Errorf("cannot evaluate %T", syn)
	}
}

// evalBlock runs each statement in a fresh child scope and returns the last
// statement's Pointer (or the shared undefined sentinel for an empty block).
func (e *Evaluator) evalBlock(b ast.Block, env *state.State) (*value.Pointer, error) {
	child := state.NewChild(env)
	var result *value.Pointer = child.Undefined()
	for _, stmt := range b.Statements {
		ptr, err := e.Eval(stmt, child)
		if err != nil {
			return nil, err
		}
		result = ptr
	}
	return result, nil
}

// debugColor is used for the `?`-level statement print, so debug output
// stands apart from anything the program itself writes.
var debugColor = color.New(color.FgCyan)

// evalStatement evaluates the wrapped expression, then — for a `?` run —
// prints its value at the level the run length selects: 1 prints the
// display form, 2 additionally prints the debug form, 3+ additionally
// prints the statement's own syntax tree. A `!` run never prints; it only
// marks where the statement ends.
func (e *Evaluator) evalStatement(st ast.Statement, env *state.State) (*value.Pointer, error) {
	ptr, err := e.Eval(st.Inner, env)
	if err != nil {
		return nil, err
	}
	if !st.IsDebug {
		return ptr, nil
	}
	v := ptr.Peek()
	debugColor.Fprintln(e.Writer, v.ToDisplayString())
	if st.Level >= 2 {
		debugColor.Fprintln(e.Writer, v.ToDebugString())
	}
	if st.Level >= 3 {
		debugColor.Fprintln(e.Writer, st.Inner.String())
	}
	return ptr, nil
}

// evalDeclare evaluates the initializer (if any) and binds its pointer,
// converted to the declared kind, into env. Conversion (not a plain
// re-boxing) is what makes a cell-backed initializer keep its shared cell
// when the declared kind is cell-backed too: `const var h = next(x)!`
// leaves h watching x's cell rather than snapshotting it.
func (e *Evaluator) evalDeclare(d ast.Declare, env *state.State) (*value.Pointer, error) {
	kind := value.FromVarType(d.Type.Rebindable(), d.Type.Mutable())
	var ptr *value.Pointer
	if d.Value == nil {
		ptr = value.Convert(value.NewConstConst(value.Undefined()), kind)
	} else {
		initPtr, err := e.Eval(d.Value, env)
		if err != nil {
			return nil, err
		}
		ptr = value.Convert(initPtr, kind)
	}
	env.Insert(d.Name, ptr, state.Forever)
	return env.Undefined(), nil
}

// evalString resolves each interpolation segment: literal text copied
// verbatim, an identifier segment resolved and stringified through its
// display form, matching string interpolation's "insert the value the way
// it would print" rule.
func (e *Evaluator) evalString(s ast.StringLit, env *state.State) (*value.Pointer, error) {
	var sb strings.Builder
	for _, seg := range s.Segments {
		switch seg.Kind {
		case token.SegmentLiteral:
			sb.WriteString(seg.Text)
		case token.SegmentIdent:
			sb.WriteString(env.Get(seg.Text).Peek().ToDisplayString())
		}
	}
	return value.NewConstConst(value.Str(sb.String())), nil
}

// evalUnary applies `;` (negate), or the postfix `++`/`--` in-place
// mutation, to the operand's resolved l-value.
func (e *Evaluator) evalUnary(u ast.UnaryOperation, env *state.State) (*value.Pointer, error) {
	if u.Op == ast.Negate {
		ptr, err := e.Eval(u.Operand, env)
		if err != nil {
			return nil, err
		}
		return value.NewConstConst(value.Negate(ptr.Peek())), nil
	}

	ptr, err := e.resolveLValue(u.Operand, env)
	if err != nil {
		return nil, err
	}
	delta := 1.0
	if u.Op == ast.Decrement {
		delta = -1.0
	}
	if err := ptr.InPlace(value.Num(delta), func(cur, rhs value.Value) (value.Value, error) {
		return value.Add(cur, rhs), nil
	}); err != nil {
		return nil, fmt.Errorf("cannot %s: %w", u.Op, err)
	}
	if err := e.fireListeners(ptr, env); err != nil {
		return nil, err
	}
	return ptr, nil
}
