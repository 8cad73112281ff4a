/*
File    : dreamberd/eval/eval_reactive.go

The reactive update protocol: after any mutation (plain assignment or an
in-place operator), every `when`-listener registered on the mutated cell
re-runs its stored `if(condition, body)` fragment under its captured
environment. Cell.Previous/Cell.Next bookkeeping already lives in
value.Pointer/value.Cell (value/pointer.go); this file is just the
eval-side half: firing listeners, and resolving the addressable l-value an
assignment or in-place operator targets.
*/
package eval

import (
	"fmt"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/state"
	"github.com/dreamberd-go/dreamberd/value"
)

// resolveLValue evaluates syn down to the addressable *Pointer an
// assignment or in-place operator should mutate: a bare identifier's live
// environment binding, or an object member reached through a `.` chain.
// Anything else (a literal, an arithmetic expression, a call) is not a
// valid assignment target.
func (e *Evaluator) resolveLValue(syn ast.Syntax, env *state.State) (*value.Pointer, error) {
	switch s := syn.(type) {
	case ast.Ident:
		return env.Get(s.Name), nil
	case ast.OperationNode:
		if s.Op == ast.OpDot {
			return e.evalDot(s, env)
		}
	}
	return nil, fmt.Errorf("%s is not an assignable target", syn)
}

// fireListeners runs every `when`-listener registered on ptr's cell,
// depth-first and serial. There is no cycle detection: a listener body
// that mutates the same cell it watches will re-trigger itself, and that
// is left to the user to avoid.
func (e *Evaluator) fireListeners(ptr *value.Pointer, env *state.State) error {
	for _, l := range ptr.PendingListeners() {
		capturedEnv, ok := l.Env.(*state.State)
		if !ok {
			continue
		}
		syn, ok := l.Body.(ast.Syntax)
		if !ok {
			continue
		}
		if _, err := e.Eval(syn, capturedEnv); err != nil {
			return err
		}
	}
	return nil
}

// freeIdents walks an expression collecting the names of every bare
// identifier it references, in the order first seen. Used by the `when`
// keyword to find which cells to subscribe a listener to.
func freeIdents(syn ast.Syntax) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(ast.Syntax)
	walk = func(s ast.Syntax) {
		if s == nil {
			return
		}
		switch v := s.(type) {
		case ast.Ident:
			if !seen[v.Name] {
				seen[v.Name] = true
				out = append(out, v.Name)
			}
		case ast.OperationNode:
			walk(v.Lhs)
			walk(v.Rhs)
		case ast.UnaryOperation:
			walk(v.Operand)
		case ast.Call:
			for _, a := range v.Args {
				walk(a)
			}
		case ast.Block:
			for _, stmt := range v.Statements {
				walk(stmt)
			}
		case ast.Statement:
			walk(v.Inner)
		case ast.Declare:
			walk(v.Value)
		}
	}
	walk(syn)
	return out
}
