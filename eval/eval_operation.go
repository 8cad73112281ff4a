/*
File    : dreamberd/eval/eval_operation.go

Binary operator evaluation: dot/member access gets a special
l-value-aware path so assignment and in-place mutation can reach into
Objects; every other operator reduces both sides to Value and hands off to
the value algebra in dreamberd/value.
*/
package eval

import (
	"fmt"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/state"
	"github.com/dreamberd-go/dreamberd/value"
)

func (e *Evaluator) evalOperation(o ast.OperationNode, env *state.State) (*value.Pointer, error) {
	switch o.Op {
	case ast.OpDot:
		return e.evalDot(o, env)
	case ast.OpEqual:
		if o.Precision <= 1 {
			return e.evalAssign(o, env)
		}
		return e.evalGradedEqual(o, env)
	case ast.OpAddEq, ast.OpSubEq, ast.OpMulEq, ast.OpDivEq, ast.OpModEq:
		return e.evalInPlace(o, env)
	case ast.OpArrow:
		// The grouper always rewrites Arrow into a Function literal before
		// returning one, so reaching this case means a parser bug, not a
		// value to compute. Reject rather than silently succeed or panic.
		return nil, fmt.Errorf("arrow operator reached the evaluator; this is a parser bug")
	}

	lhsPtr, err := e.Eval(o.Lhs, env)
	if err != nil {
		return nil, err
	}
	rhsPtr, err := e.Eval(o.Rhs, env)
	if err != nil {
		return nil, err
	}
	lhs, rhs := lhsPtr.Peek(), rhsPtr.Peek()

	switch o.Op {
	case ast.OpAdd:
		return value.NewConstConst(value.Add(lhs, rhs)), nil
	case ast.OpSub:
		return value.NewConstConst(value.Sub(lhs, rhs)), nil
	case ast.OpMul:
		return value.NewConstConst(value.Mul(lhs, rhs)), nil
	case ast.OpDiv:
		return value.NewConstConst(value.Div(lhs, rhs)), nil
	case ast.OpMod:
		return value.NewConstConst(value.Mod(lhs, rhs)), nil
	case ast.OpAnd:
		return value.NewConstConst(value.And(lhs, rhs)), nil
	case ast.OpOr:
		return value.NewConstConst(value.Or(lhs, rhs)), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return e.evalCompare(o.Op, lhs, rhs)
	default:
		return nil, fmt.Errorf("unsupported operator %s", o.Op)
	}
}

// evalDot implements `.`'s two valid shapes: object member lookup against
// an identifier right-hand side (auto-vivifying a missing key to undefined
// when the object's own binding allows cell mutation), or
// folding two numeric lexemes into a single decimal literal. Anything else
// is undefined. Returning the member's own *Pointer (rather than a copy) is
// what lets `obj.field = x` and `obj.field += x` work through resolveLValue.
func (e *Evaluator) evalDot(o ast.OperationNode, env *state.State) (*value.Pointer, error) {
	lhsPtr, err := e.Eval(o.Lhs, env)
	if err != nil {
		return nil, err
	}
	lhsVal := lhsPtr.Peek()

	if lhsVal.Kind == value.KindObject && !lhsVal.IsUndefined() {
		rhsIdent, ok := o.Rhs.(ast.Ident)
		if !ok {
			return nil, fmt.Errorf("object member access requires an identifier after `.`")
		}
		key := value.Str(rhsIdent.Name)
		if p, found := lhsVal.Obj.Get(key); found {
			return p, nil
		}
		if lhsPtr.Kind.Mutable() {
			// Auto-vivify with a fresh mutable slot, never the shared
			// undefined sentinel: the new member has to accept `=` and `+=`.
			fresh := value.NewVarVar(value.Undefined())
			lhsVal.Obj.Set(key, fresh)
			return fresh, nil
		}
		return env.Undefined(), nil
	}

	rhsPtr, err := e.Eval(o.Rhs, env)
	if err != nil {
		return nil, err
	}
	if combined, ok := value.DotNumber(lhsVal, rhsPtr.Peek()); ok {
		return value.NewConstConst(combined), nil
	}
	return value.NewConstConst(value.Undefined()), nil
}

// evalGradedEqual implements the `=`-family comparison operators at
// precision >= 2. Precision 4+ is pointer identity, the strictest grade;
// every lower precision is value.Value.Equal's coercion ladder.
func (e *Evaluator) evalGradedEqual(o ast.OperationNode, env *state.State) (*value.Pointer, error) {
	lhsPtr, err := e.Eval(o.Lhs, env)
	if err != nil {
		return nil, err
	}
	rhsPtr, err := e.Eval(o.Rhs, env)
	if err != nil {
		return nil, err
	}
	if o.Precision >= 4 {
		return value.NewConstConst(value.Bool(boolOf(value.IdentityEqual(lhsPtr, rhsPtr)))), nil
	}
	return value.NewConstConst(value.Bool(lhsPtr.Peek().Equal(rhsPtr.Peek(), o.Precision))), nil
}

// evalAssign implements plain `=`: resolve the left side to an addressable
// Pointer, then hand the right side's value to Pointer.Assign, which
// enforces the binding-axis rule. A successful mutation fires the
// pointer's `when` listeners.
func (e *Evaluator) evalAssign(o ast.OperationNode, env *state.State) (*value.Pointer, error) {
	targetPtr, err := e.resolveLValue(o.Lhs, env)
	if err != nil {
		return nil, err
	}
	rhsPtr, err := e.Eval(o.Rhs, env)
	if err != nil {
		return nil, err
	}
	if err := targetPtr.Assign(rhsPtr.Peek()); err != nil {
		return nil, fmt.Errorf("cannot assign to %s: %w", o.Lhs, err)
	}
	if err := e.fireListeners(targetPtr, env); err != nil {
		return nil, err
	}
	return targetPtr, nil
}

// evalInPlace implements `+=`/`-=`/`*=`/`/=`/`%=`: resolve the left side to
// an addressable Pointer, then hand Pointer.InPlace the matching value
// algebra combinator, which enforces the cell-axis rule.
func (e *Evaluator) evalInPlace(o ast.OperationNode, env *state.State) (*value.Pointer, error) {
	targetPtr, err := e.resolveLValue(o.Lhs, env)
	if err != nil {
		return nil, err
	}
	rhsPtr, err := e.Eval(o.Rhs, env)
	if err != nil {
		return nil, err
	}
	combine := combinatorFor(o.Op)
	if combine == nil {
		return nil, fmt.Errorf("unsupported in-place operator %s", o.Op)
	}
	if err := targetPtr.InPlace(rhsPtr.Peek(), combine); err != nil {
		return nil, fmt.Errorf("cannot %s: %w", o.Op, err)
	}
	if err := e.fireListeners(targetPtr, env); err != nil {
		return nil, err
	}
	return targetPtr, nil
}

func combinatorFor(op ast.Operation) func(cur, rhs value.Value) (value.Value, error) {
	switch op {
	case ast.OpAddEq:
		return func(cur, rhs value.Value) (value.Value, error) { return value.Add(cur, rhs), nil }
	case ast.OpSubEq:
		return func(cur, rhs value.Value) (value.Value, error) { return value.Sub(cur, rhs), nil }
	case ast.OpMulEq:
		return func(cur, rhs value.Value) (value.Value, error) { return value.Mul(cur, rhs), nil }
	case ast.OpDivEq:
		return func(cur, rhs value.Value) (value.Value, error) { return value.Div(cur, rhs), nil }
	case ast.OpModEq:
		return func(cur, rhs value.Value) (value.Value, error) { return value.Mod(cur, rhs), nil }
	default:
		return nil
	}
}

func (e *Evaluator) evalCompare(op ast.Operation, lhs, rhs value.Value) (*value.Pointer, error) {
	cmp, err := value.Compare(lhs, rhs)
	if err != nil {
		return nil, err
	}
	var b value.Boolean
	switch op {
	case ast.OpLt:
		b = boolOf(cmp < 0)
	case ast.OpLe:
		b = boolOf(cmp <= 0)
	case ast.OpGt:
		b = boolOf(cmp > 0)
	case ast.OpGe:
		b = boolOf(cmp >= 0)
	}
	return value.NewConstConst(value.Bool(b)), nil
}

func boolOf(b bool) value.Boolean {
	if b {
		return value.True
	}
	return value.False
}
