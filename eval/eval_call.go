/*
File    : dreamberd/eval/eval_call.go

Call dispatch: a callee resolves to a Keyword, an Object carrying a "call"
entry, a Function value, or — the multiplication fallback — a bare Number.
Everything else is a non-callable-value error.
*/
package eval

import (
	"fmt"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/state"
	"github.com/dreamberd-go/dreamberd/value"
)

func (e *Evaluator) evalCall(c ast.Call, env *state.State) (*value.Pointer, error) {
	calleePtr := env.Get(c.Callee)
	calleeVal := calleePtr.Peek()

	if calleeVal.Kind == value.KindKeyword {
		return e.evalKeyword(calleeVal.Kw, c.Args, env)
	}

	if calleeVal.Kind == value.KindObject && !calleeVal.IsUndefined() {
		callPtr, ok := calleeVal.Obj.Get(value.Str("call"))
		if !ok {
			return nil, fmt.Errorf("%s has no \"call\" entry and cannot be used as a function", c.Callee)
		}
		return e.invokeFunction(callPtr.Peek(), c.Args, env, calleeVal)
	}

	if calleeVal.Kind == value.KindFunction {
		return e.invokeFunction(calleeVal, c.Args, env, value.Value{})
	}

	// Multiplication fallback: a bare number called like a function acts as
	// `callee * arg`, which is what makes `2(x)` behave as `2 * x`.
	if calleeVal.Kind == value.KindNumber {
		if len(c.Args) != 1 {
			return nil, fmt.Errorf("numeric call %s(...) takes exactly 1 argument, got %d", c.Callee, len(c.Args))
		}
		argPtr, err := e.Eval(c.Args[0], env)
		if err != nil {
			return nil, err
		}
		return value.NewConstConst(value.Mul(calleeVal, argPtr.Peek())), nil
	}

	return nil, fmt.Errorf("%s (%s) is not callable", c.Callee, calleeVal.Kind)
}

// invokeFunction runs a Function value's body in a fresh scope chained off
// the caller's environment — DreamBerd functions capture no closure state
// beyond that lexical chain. self, when non-zero, is an Object bound to
// "self" for the Object-callee ("call" entry) case.
func (e *Evaluator) invokeFunction(fnVal value.Value, args []ast.Syntax, callerEnv *state.State, self value.Value) (*value.Pointer, error) {
	if fnVal.Kind != value.KindFunction {
		return nil, fmt.Errorf("value is not a function")
	}
	child := state.NewChild(callerEnv)
	if self.Kind == value.KindObject {
		// ConstVar: self can't be rebound, but self.member assignment may
		// still vivify new keys through the cell-mutability gate.
		child.Insert("self", value.NewConstVar(self), state.Forever)
	}
	for i, name := range fnVal.Fn.Params {
		var argVal value.Value
		if i < len(args) {
			argPtr, err := e.Eval(args[i], callerEnv)
			if err != nil {
				return nil, err
			}
			argVal = argPtr.Peek()
		} else {
			argVal = value.Undefined()
		}
		child.Insert(name, value.NewVarVar(argVal), state.Forever)
	}
	return e.Eval(fnVal.Fn.Body, child)
}
