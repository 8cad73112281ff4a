package state_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamberd-go/dreamberd/state"
	"github.com/dreamberd-go/dreamberd/value"
)

func TestRootSeedsConstants(t *testing.T) {
	root := state.NewRoot()
	assert.Equal(t, math.Pi, root.Get("🥧").Peek().N)
	assert.Equal(t, value.True, root.Get("true").Peek().B)
	assert.Equal(t, value.KwIf, root.Get("if").Peek().Kw)
	assert.True(t, root.Get("undefined").Peek().IsUndefined())
}

func TestCascadeResolvesNumberThenFunctionThenSelf(t *testing.T) {
	root := state.NewRoot()

	n := root.Get("42")
	assert.Equal(t, value.KindNumber, n.Peek().Kind)
	assert.Equal(t, float64(42), n.Peek().N)

	fn := root.Get("fnctn")
	assert.Equal(t, value.KwFunction, fn.Peek().Kw)

	self := root.Get("banana")
	assert.Equal(t, "banana", self.Peek().S)
}

func TestCascadeIsMemoizedPerName(t *testing.T) {
	root := state.NewRoot()
	first := root.Get("xyz")
	second := root.Get("xyz")
	assert.Same(t, first, second)
}

func TestChildShadowsParentAndFallsThrough(t *testing.T) {
	root := state.NewRoot()
	root.Insert("greeting", value.NewConstConst(value.Str("hi")), state.Forever)

	child := state.NewChild(root)
	assert.Equal(t, "hi", child.Get("greeting").Peek().S)

	child.Insert("greeting", value.NewConstConst(value.Str("yo")), state.Forever)
	assert.Equal(t, "yo", child.Get("greeting").Peek().S)
	assert.Equal(t, "hi", root.Get("greeting").Peek().S)
}

func TestDeleteWalksChainToOwningScope(t *testing.T) {
	root := state.NewRoot()
	root.Insert("x", value.NewConstConst(value.Num(5)), state.Forever)
	child := state.NewChild(root)

	child.Delete("x")
	assert.True(t, root.Get("x").Peek().IsUndefined())
}

func TestForgetViaInsertOnlyShadowsLocalScope(t *testing.T) {
	root := state.NewRoot()
	root.Insert("x", value.NewConstConst(value.Num(5)), state.Forever)
	child := state.NewChild(root)

	child.Insert("x", child.Undefined(), state.Forever)
	assert.True(t, child.Get("x").Peek().IsUndefined())
	assert.Equal(t, float64(5), root.Get("x").Peek().N)
}

func TestTickExpiresFiniteLifetimeBindings(t *testing.T) {
	root := state.NewRoot()
	root.Insert("temp", value.NewConstConst(value.Num(1)), state.For(2))

	root.Tick()
	assert.Equal(t, float64(1), root.Get("temp").Peek().N)

	root.Tick()
	assert.True(t, root.Get("temp").Peek().IsUndefined())
}

func TestLocalsExcludesParentBindings(t *testing.T) {
	root := state.NewRoot()
	root.Insert("outer", value.NewConstConst(value.Num(1)), state.Forever)
	child := state.NewChild(root)
	child.Insert("inner", value.NewConstConst(value.Num(2)), state.Forever)

	locals := child.Locals()
	_, hasInner := locals["inner"]
	_, hasOuter := locals["outer"]
	assert.True(t, hasInner)
	assert.False(t, hasOuter)
}
