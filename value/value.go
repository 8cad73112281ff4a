/*
File    : dreamberd/value/value.go

Package value implements the runtime value and binding model: the tagged
Value variants, the four-way Pointer cross-product (binding axis x cell
axis), and the graded value algebra (arithmetic, comparison, equality,
coercions) that the evaluator drives.

Value is a flat, comparable struct rather than an interface: every field
that would normally demand a type switch (Obj, Fn, Cls) is a pointer, so
Value itself stays comparable and can be used directly as an Object map key,
matching the data model's "ordered mapping from Value to Pointer".
*/
package value

import (
	"fmt"
	"strings"

	"github.com/dreamberd-go/dreamberd/ast"
)

// Kind tags which arm of Value is populated.
type Kind int

const (
	KindBoolean Kind = iota
	KindString
	KindNumber
	KindObject
	KindFunction
	KindClass
	KindKeyword
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindKeyword:
		return "keyword"
	default:
		return "value"
	}
}

// Boolean is DreamBerd's three-valued truth type: True, False, and the
// third value Maybe, which is its own fixed point under negation.
type Boolean int

const (
	False Boolean = iota
	True
	Maybe
)

func (b Boolean) String() string {
	switch b {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "maybe"
	}
}

func (b Boolean) Not() Boolean {
	switch b {
	case True:
		return False
	case False:
		return True
	default:
		return Maybe
	}
}

// Keyword tags one of the bare-identifier keyword values seeded into the
// root environment. A Keyword is a first-class Value, not a special
// evaluator-only token, so it can be passed around, shadowed, and compared
// like anything else.
type Keyword int

const (
	KwIf Keyword = iota
	KwDelete
	KwForget
	KwPrevious
	KwNext
	KwWhen
	KwFunction
	KwClass
	KwNew
	KwEval
	KwConst
	KwVar
)

func (k Keyword) String() string {
	names := map[Keyword]string{
		KwIf: "if", KwDelete: "delete", KwForget: "forget", KwPrevious: "previous",
		KwNext: "next", KwWhen: "when", KwFunction: "function", KwClass: "class",
		KwNew: "new", KwEval: "eval", KwConst: "const", KwVar: "var",
	}
	return names[k]
}

// FunctionVal is a closure-free function value: parameter names plus the
// unevaluated body AST. DreamBerd functions capture no state beyond the
// lexical chain already reachable through whatever environment eval uses
// at call time, so there is no captured-scope field here.
type FunctionVal struct {
	Params []string
	Body   ast.Syntax
}

// ClassVal wraps an unevaluated block kept for later instantiation by `new`.
type ClassVal struct {
	Body ast.Syntax
}

// Value is the tagged runtime value. All fields are comparable (primitives
// or pointers), so Value itself is a valid Go map key.
type Value struct {
	Kind Kind
	B    Boolean
	S    string
	N    float64
	Obj  *Object
	Fn   *FunctionVal
	Cls  *ClassVal
	Kw   Keyword
}

func Bool(b Boolean) Value   { return Value{Kind: KindBoolean, B: b} }
func Str(s string) Value     { return Value{Kind: KindString, S: s} }
func Num(n float64) Value    { return Value{Kind: KindNumber, N: n} }
func Obj(o *Object) Value    { return Value{Kind: KindObject, Obj: o} }
func Fn(f *FunctionVal) Value { return Value{Kind: KindFunction, Fn: f} }
func Cls(c *ClassVal) Value  { return Value{Kind: KindClass, Cls: c} }
func KwVal(k Keyword) Value  { return Value{Kind: KindKeyword, Kw: k} }

// IsUndefined reports whether v is the canonical empty-object sentinel.
func (v Value) IsUndefined() bool {
	return v.Kind == KindObject && v.Obj != nil && v.Obj.Len() == 0
}

// Clone returns an independent copy of v, suitable for boxing into a new
// Pointer. Objects get a shallow copy (new backing map, same child
// Pointers): inserting or deleting keys on the clone never perturbs the
// source object, but mutating a shared child cell through either copy is
// visible to both.
func (v Value) Clone() Value {
	if v.Kind == KindObject && v.Obj != nil {
		return Obj(v.Obj.ShallowClone())
	}
	return v
}

// ToDisplayString renders v the way the `?`-level debug print and string
// interpolation both want: the "user form" of a value.
func (v Value) ToDisplayString() string {
	switch v.Kind {
	case KindBoolean:
		return v.B.String()
	case KindString:
		return v.S
	case KindNumber:
		return formatNumber(v.N)
	case KindObject:
		if v.IsUndefined() {
			return "undefined"
		}
		return v.Obj.String()
	case KindFunction:
		return fmt.Sprintf("function(%s)", strings.Join(v.Fn.Params, ", "))
	case KindClass:
		return "class"
	case KindKeyword:
		return v.Kw.String()
	default:
		return "undefined"
	}
}

// ToDebugString is the `??`-level form: same as the display form except it
// also names the Kind, in a verbose "<kind(value)>" rendering.
func (v Value) ToDebugString() string {
	switch v.Kind {
	case KindBoolean:
		return fmt.Sprintf("<boolean(%s)>", v.B)
	case KindString:
		return fmt.Sprintf("<string(%q)>", v.S)
	case KindNumber:
		return fmt.Sprintf("<number(%s)>", formatNumber(v.N))
	case KindObject:
		if v.IsUndefined() {
			return "<undefined>"
		}
		return fmt.Sprintf("<object(%s)>", v.Obj.String())
	case KindFunction:
		return fmt.Sprintf("<function(%s)>", strings.Join(v.Fn.Params, ", "))
	case KindClass:
		return "<class>"
	case KindKeyword:
		return fmt.Sprintf("<keyword(%s)>", v.Kw)
	default:
		return "<undefined>"
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) && n < 1e15 && n > -1e15 {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

// ToBoolean is the bool() projection used by logical operators and by loose
// equality's cross-type fallback: numbers >=1 are True, <=0 are False, else
// Maybe; non-empty strings are True, empty is False; booleans pass through;
// anything else (Object, Function, Class, Keyword) is Maybe.
func (v Value) ToBoolean() Boolean {
	switch v.Kind {
	case KindBoolean:
		return v.B
	case KindNumber:
		switch {
		case v.N >= 1:
			return True
		case v.N <= 0:
			return False
		default:
			return Maybe
		}
	case KindString:
		if v.S == "" {
			return False
		}
		return True
	default:
		return Maybe
	}
}
