package eval_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/eval"
	"github.com/dreamberd-go/dreamberd/parser"
	"github.com/dreamberd-go/dreamberd/state"
	"github.com/dreamberd-go/dreamberd/value"
)

// run parses src (wrapped in a block, the way the CLI/REPL always do) and
// evaluates it against a fresh root environment, returning the resulting
// Value for assertions.
func run(t *testing.T, src string) value.Value {
	t.Helper()
	syn, err := parser.Parse("{" + src + "}")
	require.NoError(t, err, src)
	var out bytes.Buffer
	ptr, err := eval.New(&out).Eval(syn, state.NewRoot())
	require.NoError(t, err, src)
	return ptr.Peek()
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	syn, err := parser.Parse("{" + src + "}")
	require.NoError(t, err, src)
	var out bytes.Buffer
	_, err = eval.New(&out).Eval(syn, state.NewRoot())
	return err
}

// In-place addition on a var-cell binding.
func TestInPlaceAddCounter(t *testing.T) {
	got := run(t, `const var count = 0! count += 1! count`)
	assert.Equal(t, value.KindNumber, got.Kind)
	assert.Equal(t, float64(1), got.N)
}

// In-place string concatenation.
func TestInPlaceStringConcat(t *testing.T) {
	got := run(t, `const var msg = 'hello'! msg += 'world'! msg`)
	assert.Equal(t, "helloworld", got.S)
}

// Graded equality: precision 3 coerces across kind,
// precision 4 is pointer identity and fails for two distinct evaluations.
func TestGradedEqualityPointerIdentity(t *testing.T) {
	eq3 := run(t, "`true` === true")
	assert.Equal(t, value.True, eq3.B)

	eq4 := run(t, "`true` ==== true")
	assert.Equal(t, value.False, eq4.B)
}

// Whitespace-driven precedence changes grouping.
func TestWhitespacePrecedence(t *testing.T) {
	assert.Equal(t, float64(7), run(t, "1 + 2*3").N)
	assert.Equal(t, float64(9), run(t, "1+2 * 3").N)
}

// String multiplication with a fractional count.
func TestStringMultiplication(t *testing.T) {
	got := run(t, "`johnny` * 1.5")
	assert.Equal(t, "johnnyjoh", got.S)
}

// Three-valued logic over the maybe value.
func TestMaybeLogic(t *testing.T) {
	assert.Equal(t, value.Maybe, run(t, "maybe | false").B)
	assert.Equal(t, value.False, run(t, "maybe & false").B)
}

func TestConstBindingRejectsAssignment(t *testing.T) {
	err := runErr(t, `const const x = 1! x = 2!`)
	assert.Error(t, err)
}

func TestVarBindingAllowsAssignment(t *testing.T) {
	got := run(t, `var const x = 1! x = 2! x`)
	assert.Equal(t, float64(2), got.N)
}

func TestConstCellRejectsInPlace(t *testing.T) {
	err := runErr(t, `const const x = 1! x += 1!`)
	assert.Error(t, err)
}

// previous(x) immediately after x = v equals x's value prior to the
// assignment. The binding must be var-var: `=` needs the rebindable
// binding axis, `previous` needs the mutable cell.
func TestPreviousSeesValueBeforeAssignment(t *testing.T) {
	got := run(t, `var var x = 1! x = 2! previous(x)`)
	assert.Equal(t, float64(1), got.N)
}

func TestIfThreeValued(t *testing.T) {
	assert.Equal(t, "yes", run(t, `if(true, "yes", "no")`).S)
	assert.Equal(t, "no", run(t, `if(false, "yes", "no")`).S)
	assert.Equal(t, "maybe-branch", run(t, `if(maybe, "yes", "no", "maybe-branch")`).S)
	assert.True(t, run(t, `if(maybe, "yes")`).IsUndefined())
}

func TestFunctionCallAndBinding(t *testing.T) {
	// The body's `+` is written tight so it binds before the wider-spaced
	// arrow claims its right-hand side.
	got := run(t, `const const add = (a, b) -> a+b! add(2, 3)`)
	assert.Equal(t, float64(5), got.N)
}

func TestNumericCallIsMultiplication(t *testing.T) {
	got := run(t, `const const two = 2! two(21)`)
	assert.Equal(t, float64(42), got.N)
}

func TestObjectMemberAccessAndMutation(t *testing.T) {
	got := run(t, `
		class(Point, {
			const var x = 1!
			const var y = 2!
		})!
		const var p = new(Point)!
		p.x += 10!
		p.x
	`)
	assert.Equal(t, float64(11), got.N)
}

func TestObjectMemberAssignmentVivifiesMissingKey(t *testing.T) {
	got := run(t, `
		class(Box, {
			const var tag = "box"!
		})!
		const var b = new(Box)!
		b.extra = 7!
		b.extra
	`)
	assert.Equal(t, float64(7), got.N)
}

func TestWhenFiresOnMutation(t *testing.T) {
	got := run(t, `
		var var n = 0!
		var var seen = false!
		when(n > 5, seen = true)!
		n = 10!
		seen
	`)
	assert.Equal(t, value.True, got.B)
}

// Declaring the handle `const var` keeps it cell-backed through the
// declaration's pointer conversion, so it still observes the one mutation
// it subscribed to; a `const const` declaration would have snapshotted the
// pre-mutation value.
func TestNextHandleSeesFollowingMutation(t *testing.T) {
	got := run(t, `
		var var x = 1!
		const var handle = next(x)!
		x = 9!
		handle
	`)
	assert.Equal(t, float64(9), got.N)
}

func TestDeleteAndForget(t *testing.T) {
	deleted := run(t, `const const x = 5! delete(x)! x`)
	assert.True(t, deleted.IsUndefined())

	forgotten := run(t, `const const x = 5! { forget(x)! x }`)
	assert.True(t, forgotten.IsUndefined())
}

func TestEvalKeywordReentersPipeline(t *testing.T) {
	got := run(t, `eval("1 + 2")`)
	assert.Equal(t, float64(3), got.N)
}

func TestNegateReversesStrings(t *testing.T) {
	got := run(t, `;'hello there'`)
	assert.Equal(t, "ereht olleh", got.S)
}

// The `=`-run length *is* the precision, so `==` (run length 2) compares
// exact stringified forms, not the loose, coercive grade — level 1 is
// unreachable via surface syntax since a bare `=` always parses as
// assignment. 22/7's and 🥧's display forms differ, so `==` between them
// is false; `===` (typed, cross-kind still falls back to stringified) and
// `====` (pointer identity) are false too.
func TestStringifiedEqualityIsExactNotLoose(t *testing.T) {
	assert.Equal(t, value.False, run(t, `22/7 == 🥧`).B)
}

func TestComparisonOnNonNumbersErrors(t *testing.T) {
	err := runErr(t, `"a" < "b"`)
	assert.Error(t, err)
}

func TestArrowOperatorRejectedIfReachesEvaluator(t *testing.T) {
	// The grouper always rewrites -> into a Function literal, so this
	// exercises the evaluator's explicit rejection path directly.
	var out bytes.Buffer
	arrow := ast.OperationNode{Lhs: ast.Ident{Name: "a"}, Op: ast.OpArrow, Rhs: ast.Ident{Name: "b"}}
	_, err := eval.New(&out).Eval(arrow, state.NewRoot())
	assert.Error(t, err)
}
