/*
File    : dreamberd/eval/eval_keywords.go

Keyword call semantics: `if`, `delete`, `forget`, `previous`, `next`,
`when`, `function`, `class`, `new`, `eval`. Each of these is an ordinary
Keyword value, bound in the root environment (state.NewRoot) or, for
`function`, produced by the root's default-value cascade, that evalCall
dispatches here by identity rather than by name, so shadowing a keyword
identifier with an ordinary binding makes it stop behaving like one —
"everything is a value" holds for the keyword set too.
*/
package eval

import (
	"fmt"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/parser"
	"github.com/dreamberd-go/dreamberd/state"
	"github.com/dreamberd-go/dreamberd/value"
)

func (e *Evaluator) evalKeyword(kw value.Keyword, args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	switch kw {
	case value.KwIf:
		return e.evalIf(args, env)
	case value.KwDelete:
		return e.evalDeleteKeyword(args, env)
	case value.KwForget:
		return e.evalForget(args, env)
	case value.KwPrevious:
		return e.evalPrevious(args, env)
	case value.KwNext:
		return e.evalNext(args, env)
	case value.KwWhen:
		return e.evalWhen(args, env)
	case value.KwFunction:
		return e.evalFunctionKeyword(args, env)
	case value.KwClass:
		return e.evalClassKeyword(args, env)
	case value.KwNew:
		return e.evalNewKeyword(args, env)
	case value.KwEval:
		return e.evalEvalKeyword(args, env)
	default:
		return nil, fmt.Errorf("keyword %s is not callable", kw)
	}
}

// evalIf implements the 2/3/4-arity conditional: True takes the then
// branch; False takes the else branch (arg 3) if present, else undefined;
// Maybe takes the maybe branch (arg 4) if present, else the else branch if
// present, else undefined. Branches are evaluated lazily — only the
// selected one ever runs.
func (e *Evaluator) evalIf(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	if len(args) < 2 || len(args) > 4 {
		return nil, fmt.Errorf("if expects 2 to 4 arguments, got %d", len(args))
	}
	condPtr, err := e.Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	switch condPtr.Peek().ToBoolean() {
	case value.True:
		return e.Eval(args[1], env)
	case value.False:
		if len(args) >= 3 {
			return e.Eval(args[2], env)
		}
		return env.Undefined(), nil
	default: // value.Maybe
		if len(args) >= 4 {
			return e.Eval(args[3], env)
		}
		if len(args) >= 3 {
			return e.Eval(args[2], env)
		}
		return env.Undefined(), nil
	}
}

func identArg(args []ast.Syntax, name string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
	}
	id, ok := args[0].(ast.Ident)
	if !ok {
		return "", fmt.Errorf("%s expects an identifier argument", name)
	}
	return id.Name, nil
}

// evalDeleteKeyword overwrites the name with undefined via the
// environment's cascading delete: the nearest enclosing scope that binds
// it is the one that gets overwritten.
func (e *Evaluator) evalDeleteKeyword(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	name, err := identArg(args, "delete")
	if err != nil {
		return nil, err
	}
	env.Delete(name)
	return env.Undefined(), nil
}

// evalForget inserts undefined into the current scope only, shadowing the
// name locally without disturbing any outer binding.
func (e *Evaluator) evalForget(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	name, err := identArg(args, "forget")
	if err != nil {
		return nil, err
	}
	env.Insert(name, env.Undefined(), state.Forever)
	return env.Undefined(), nil
}

// evalPrevious returns the operand's last-prior cell snapshot, boxed as a
// fresh ConstConst, or undefined if the operand has no mutable cell (or has
// never been mutated yet).
func (e *Evaluator) evalPrevious(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("previous expects 1 argument, got %d", len(args))
	}
	ptr, err := e.Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	if prev, ok := ptr.Previous(); ok {
		return value.NewConstConst(prev), nil
	}
	return env.Undefined(), nil
}

// evalNext returns a fresh ConstVar handle that will receive the operand's
// next mutation, or undefined if the operand has no cell to subscribe to.
func (e *Evaluator) evalNext(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("next expects 1 argument, got %d", len(args))
	}
	ptr, err := e.Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	if !ptr.HasCell() {
		return env.Undefined(), nil
	}
	return ptr.NextHandle(), nil
}

// evalWhen registers a listener on every free identifier in the condition
// that resolves to a mutable cell: on any mutation of that cell, the
// listener re-evaluates `if(condition, body)` under the environment
// captured here.
func (e *Evaluator) evalWhen(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("when expects 2 arguments, got %d", len(args))
	}
	cond, body := args[0], args[1]
	ifCall := ast.Call{Callee: "if", Args: []ast.Syntax{cond, body}}
	for _, name := range freeIdents(cond) {
		ptr := env.Get(name)
		if ptr.HasCell() {
			ptr.AddListener(value.Listener{Body: ifCall, Env: env})
		}
	}
	return env.Undefined(), nil
}

// evalFunctionKeyword is the declarative form of `name = (params) -> body`:
// bind a Function value built from the explicit parameter list and body to
// name in the current scope.
func (e *Evaluator) evalFunctionKeyword(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("function expects 3 arguments, got %d", len(args))
	}
	nameIdent, ok := args[0].(ast.Ident)
	if !ok {
		return nil, fmt.Errorf("function's first argument must be a name")
	}
	params, err := paramNames(args[1])
	if err != nil {
		return nil, err
	}
	fn := value.Fn(&value.FunctionVal{Params: params, Body: args[2]})
	ptr := value.NewVarVar(fn)
	env.Insert(nameIdent.Name, ptr, state.Forever)
	return ptr, nil
}

// paramNames reads a parameter list off its unevaluated syntax: a bare
// identifier names a single parameter; a Block (the result of parsing a
// parenthesized comma list) must contain only identifiers.
func paramNames(syn ast.Syntax) ([]string, error) {
	switch v := syn.(type) {
	case ast.Ident:
		return []string{v.Name}, nil
	case ast.Block:
		out := make([]string, len(v.Statements))
		for i, stmt := range v.Statements {
			id, ok := stmt.(ast.Ident)
			if !ok {
				return nil, fmt.Errorf("function parameter list must contain only identifiers")
			}
			out[i] = id.Name
		}
		return out, nil
	default:
		return nil, fmt.Errorf("function parameter list must be an identifier or a parenthesized list of identifiers")
	}
}

// evalClassKeyword binds name to a Class value wrapping body, unevaluated,
// for later instantiation by `new`.
func (e *Evaluator) evalClassKeyword(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("class expects 2 arguments, got %d", len(args))
	}
	nameIdent, ok := args[0].(ast.Ident)
	if !ok {
		return nil, fmt.Errorf("class's first argument must be a name")
	}
	cls := value.Cls(&value.ClassVal{Body: args[1]})
	ptr := value.NewConstConst(cls)
	env.Insert(nameIdent.Name, ptr, state.Forever)
	return ptr, nil
}

// evalNewKeyword instantiates a class: its body runs in a fresh child
// scope, and that scope's own bindings (not the parent chain) are
// materialized into an Object.
func (e *Evaluator) evalNewKeyword(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("new expects 1 argument, got %d", len(args))
	}
	clsPtr, err := e.Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	clsVal := clsPtr.Peek()
	if clsVal.Kind != value.KindClass {
		return nil, fmt.Errorf("new requires a class value, got %s", clsVal.Kind)
	}
	child := state.NewChild(env)
	stmts := []ast.Syntax{clsVal.Cls.Body}
	if blk, ok := clsVal.Cls.Body.(ast.Block); ok {
		// Run the body's statements directly in child rather than through
		// evalBlock, whose own scope would swallow the locals being collected.
		stmts = blk.Statements
	}
	for _, stmt := range stmts {
		if _, err := e.Eval(stmt, child); err != nil {
			return nil, err
		}
	}
	obj := value.NewObject()
	for name, ptr := range child.Locals() {
		obj.Set(value.Str(name), ptr)
	}
	return value.NewConstConst(value.Obj(obj)), nil
}

// evalEvalKeyword re-enters the lexer and parser at runtime against the
// stringified argument, then evaluates the result under the current
// environment. This is why parser.Parse is an ordinary library call and
// not a driver-only entry point.
func (e *Evaluator) evalEvalKeyword(args []ast.Syntax, env *state.State) (*value.Pointer, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("eval expects 1 argument, got %d", len(args))
	}
	argPtr, err := e.Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	src := argPtr.Peek().ToDisplayString()
	syn, err := parser.Parse("{" + src + "}")
	if err != nil {
		return nil, err
	}
	return e.Eval(syn, env)
}
