/*
File    : dreamberd/state/state.go

Package state implements the lexically chained environment eval walks:
name resolution through a parent chain, and the cascade that lets a lookup
against an unbound name still produce a value instead of an error. The
cascade is part of the language, not a convenience: every bare identifier
resolves to something, which is what gives DreamBerd its "everything is a
value" feel.
*/
package state

import (
	"math"
	"regexp"
	"strconv"

	"github.com/dreamberd-go/dreamberd/value"
)

// State is one lexical scope: a flat binding map plus an optional parent.
// Block evaluation creates a child State; function calls create one as a
// child of the caller's State (eval does this), not of the definition site.
type State struct {
	vars      map[string]*value.Pointer
	lifetimes map[string]int
	parent    *State
	undefined *value.Pointer
}

// Lifetime controls how long a binding survives tick()s of its scope.
// Declarations without an explicit lifetime (the overwhelming majority)
// live forever; a binding can instead be inserted for a finite number of
// ticks, after which it reverts to undefined.
type Lifetime int

// Forever marks a binding with no expiry; it is the Lifetime every ordinary
// declaration uses.
const Forever Lifetime = -1

// For returns a finite lifetime of n ticks. n must be >= 1.
func For(n int) Lifetime { return Lifetime(n) }

var fuzzyFunction = regexp.MustCompile(`^f?u?n?c?t?i?o?n?$`)

// NewRoot builds the top-level environment with the language's seed set:
// the boolean constants, the numeric constants, and every keyword except
// `function` bound as an ordinary (shadowable) value. `function` is not
// seeded; the default-value cascade resolves it to the function keyword.
func NewRoot() *State {
	s := &State{vars: make(map[string]*value.Pointer), lifetimes: make(map[string]int)}
	s.undefined = value.NewConstConst(value.Obj(value.NewObject()))

	seed := func(name string, v value.Value) {
		s.vars[name] = value.NewConstConst(v)
	}
	seed("🥧", value.Num(math.Pi))
	seed("class", value.KwVal(value.KwClass))
	seed("const", value.KwVal(value.KwConst))
	seed("delete", value.KwVal(value.KwDelete))
	seed("eval", value.KwVal(value.KwEval))
	seed("false", value.Bool(value.False))
	seed("forget", value.KwVal(value.KwForget))
	seed("if", value.KwVal(value.KwIf))
	seed("infinity", value.Num(math.Inf(1)))
	seed("maybe", value.Bool(value.Maybe))
	seed("new", value.KwVal(value.KwNew))
	seed("next", value.KwVal(value.KwNext))
	seed("previous", value.KwVal(value.KwPrevious))
	seed("true", value.Bool(value.True))
	seed("var", value.KwVal(value.KwVar))
	seed("when", value.KwVal(value.KwWhen))
	seed("∞", value.Num(math.Inf(1)))
	s.vars["undefined"] = s.undefined
	return s
}

// NewChild opens a nested scope under parent, sharing its undefined sentinel.
func NewChild(parent *State) *State {
	return &State{vars: make(map[string]*value.Pointer), lifetimes: make(map[string]int), parent: parent, undefined: parent.undefined}
}

// Undefined returns the environment's shared undefined sentinel pointer.
func (s *State) Undefined() *value.Pointer { return s.undefined }

// Get resolves name: a hit anywhere up the parent chain returns that
// binding. A total miss falls back to the default-value cascade, applied
// at the point in the chain where the walk ran out of parents (the global
// scope), and the cascade's result is cached there so repeated lookups of
// the same never-declared name are stable and share one Pointer.
func (s *State) Get(name string) *value.Pointer {
	if p, ok := s.vars[name]; ok {
		return p
	}
	if s.parent != nil {
		return s.parent.Get(name)
	}
	return s.cascade(name)
}

// cascade implements the three-step default: a name that parses as a
// float64 becomes that Number; failing that, a name that fuzzily matches
// "function" (each letter independently optional, in order — "fn", "func",
// "fnctn" all qualify) becomes the function keyword; anything else becomes
// its own text as a String. Each outcome is memoized into this (necessarily
// root) scope.
func (s *State) cascade(name string) *value.Pointer {
	if n, err := strconv.ParseFloat(name, 64); err == nil {
		p := value.NewConstConst(value.Num(n))
		s.vars[name] = p
		return p
	}
	if fuzzyFunction.MatchString(name) {
		p := value.NewConstConst(value.KwVal(value.KwFunction))
		s.vars[name] = p
		return p
	}
	p := value.NewConstConst(value.Str(name))
	s.vars[name] = p
	return p
}

// Locals returns a copy of this scope's own bindings, without walking the
// parent chain. Used by `new` to materialize a class instantiation's scope
// into an Object.
func (s *State) Locals() map[string]*value.Pointer {
	out := make(map[string]*value.Pointer, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// Insert binds name to ptr in this scope only, shadowing any outer binding.
// A Forever lifetime never expires; a finite one is consumed by Tick.
func (s *State) Insert(name string, ptr *value.Pointer, lifetime Lifetime) {
	s.vars[name] = ptr
	if lifetime == Forever {
		delete(s.lifetimes, name)
		return
	}
	s.lifetimes[name] = int(lifetime)
}

// Tick advances every finite-lifetime binding in this scope one step toward
// expiry, deleting any that reach zero, then recurses up the parent
// chain, so a tick on the innermost scope ages it and every enclosing
// scope. Child scopes of the ticked scope are not reached.
func (s *State) Tick() {
	for name, remaining := range s.lifetimes {
		remaining--
		if remaining <= 0 {
			delete(s.lifetimes, name)
			s.vars[name] = s.undefined
			continue
		}
		s.lifetimes[name] = remaining
	}
	if s.parent != nil {
		s.parent.Tick()
	}
}

// Delete resets name to the shared undefined sentinel, at whichever scope
// in the chain currently holds it (or at the root if it was never bound).
func (s *State) Delete(name string) {
	if _, ok := s.vars[name]; ok {
		s.vars[name] = s.undefined
		return
	}
	if s.parent != nil {
		s.parent.Delete(name)
		return
	}
	s.vars[name] = s.undefined
}
