package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dreamberd-go/dreamberd/ast"
	"github.com/dreamberd-go/dreamberd/parser"
)

// single parses src and returns the one statement these tests want to
// assert on: the optimization pass collapses both the driver loop's
// wrapping Block and the `{...}` literal's Block around a lone statement,
// so Parse hands it back directly.
func single(t *testing.T, src string) ast.Syntax {
	t.Helper()
	syn, err := parser.Parse(src)
	require.NoError(t, err)
	return syn
}

// The trailing `!` of an initializer-less declaration is the declaration's
// own "no value" marker, consumed by the declare production itself — it is
// not a statement terminator, so no Statement wrapper appears.
func TestDeclareWithoutInitializer(t *testing.T) {
	got := single(t, "{const var age!}")
	want := ast.Declare{Type: ast.ConstVar, Name: "age"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclareWithInitializer(t *testing.T) {
	got := single(t, "{const const age = 1!}")
	want := ast.Statement{
		IsDebug: false,
		Level:   1,
		Inner: ast.Declare{
			Type:  ast.ConstConst,
			Name:  "age",
			Value: ast.Ident{Name: "1"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// Type annotations parse and vanish: there is no static type system to
// carry them into.
func TestDeclareTypeAnnotationIsDiscarded(t *testing.T) {
	got := single(t, "{const const age: Int = 1!}")
	want := ast.Statement{
		IsDebug: false,
		Level:   1,
		Inner:   ast.Declare{Type: ast.ConstConst, Name: "age", Value: ast.Ident{Name: "1"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclareMalformedTypeAnnotationIsAnError(t *testing.T) {
	_, err := parser.Parse("{const const age: = 1!}")
	require.Error(t, err)
}

func TestNarrowerSpacingBindsTighter(t *testing.T) {
	// "a + b*c" -> a + (b*c): `*` has no surrounding space, `+` does.
	got := single(t, "{a + b*c}")
	want := ast.OperationNode{
		Lhs: ast.Ident{Name: "a"},
		Op:  ast.OpAdd,
		Rhs: ast.OperationNode{Lhs: ast.Ident{Name: "b"}, Op: ast.OpMul, Rhs: ast.Ident{Name: "c"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWiderSpacingBindsLooser(t *testing.T) {
	// "a+b * c" -> (a+b)*c: `+` has no surrounding space, `*` does.
	got := single(t, "{a+b * c}")
	want := ast.OperationNode{
		Lhs: ast.OperationNode{Lhs: ast.Ident{Name: "a"}, Op: ast.OpAdd, Rhs: ast.Ident{Name: "b"}},
		Op:  ast.OpMul,
		Rhs: ast.Ident{Name: "c"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEqualSpacingIsLeftAssociative(t *testing.T) {
	got := single(t, "{a+b+c}")
	want := ast.OperationNode{
		Lhs: ast.OperationNode{Lhs: ast.Ident{Name: "a"}, Op: ast.OpAdd, Rhs: ast.Ident{Name: "b"}},
		Op:  ast.OpAdd,
		Rhs: ast.Ident{Name: "c"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignmentChainIsRightAssociative(t *testing.T) {
	got := single(t, "{a=b=c}")
	want := ast.OperationNode{
		Lhs: ast.Ident{Name: "a"},
		Op:  ast.OpEqual,
		Rhs: ast.OperationNode{Lhs: ast.Ident{Name: "b"}, Op: ast.OpEqual, Rhs: ast.Ident{Name: "c"}, Precision: 1},
		Precision: 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGradedEqualityCarriesRunLength(t *testing.T) {
	got := single(t, "{a === b}")
	op, ok := got.(ast.OperationNode)
	require.True(t, ok, "%T", got)
	require.Equal(t, ast.OpEqual, op.Op)
	require.Equal(t, 3, op.Precision)
}

func TestNegationIsSemicolonPrefixed(t *testing.T) {
	got := single(t, "{;x}")
	want := ast.UnaryOperation{Op: ast.Negate, Operand: ast.Ident{Name: "x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPostfixIncrementAndDecrement(t *testing.T) {
	got := single(t, "{x++}")
	require.Equal(t, ast.UnaryOperation{Op: ast.Increment, Operand: ast.Ident{Name: "x"}}, got)

	got = single(t, "{x--}")
	require.Equal(t, ast.UnaryOperation{Op: ast.Decrement, Operand: ast.Ident{Name: "x"}}, got)
}

func TestArrowRewritesToFunctionAtParseTime(t *testing.T) {
	got := single(t, "{x -> x+1}")
	want := ast.Function{
		Params: []string{"x"},
		Body:   ast.OperationNode{Lhs: ast.Ident{Name: "x"}, Op: ast.OpAdd, Rhs: ast.Ident{Name: "1"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArrowWithMultipleParameters(t *testing.T) {
	got := single(t, "{(a, b) -> a+b}")
	fn, ok := got.(ast.Function)
	require.True(t, ok, "%T", got)
	require.Equal(t, []string{"a", "b"}, fn.Params)
}

func TestCallParsesArguments(t *testing.T) {
	got := single(t, "{add(1, 2)}")
	want := ast.Call{Callee: "add", Args: []ast.Syntax{ast.Ident{Name: "1"}, ast.Ident{Name: "2"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCallAllowsWhitespaceBeforeParen(t *testing.T) {
	got := single(t, "{greet (name)}")
	want := ast.Call{Callee: "greet", Args: []ast.Syntax{ast.Ident{Name: "name"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDebugTerminatorLevelsAreCountedSeparately(t *testing.T) {
	got := single(t, "{x???}")
	want := ast.Statement{IsDebug: true, Level: 3, Inner: ast.Ident{Name: "x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedBlockCollapsesParens(t *testing.T) {
	got := single(t, "{a+(x)}")
	want := ast.OperationNode{Lhs: ast.Ident{Name: "a"}, Op: ast.OpAdd, Rhs: ast.Ident{Name: "x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParenthesizedTupleBecomesBlock(t *testing.T) {
	got := single(t, "{(1, 2)}")
	want := ast.Block{Statements: []ast.Syntax{ast.Ident{Name: "1"}, ast.Ident{Name: "2"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStringLiteralWithInterpolation(t *testing.T) {
	got := single(t, `{"Hi ${name}"}`)
	str, ok := got.(ast.StringLit)
	require.True(t, ok, "%T", got)
	require.Len(t, str.Segments, 2)
}

func TestMissingClosingBraceIsAnError(t *testing.T) {
	_, err := parser.Parse("{const const x = 1!")
	require.Error(t, err)
}

func TestUnexpectedTokenIsAnError(t *testing.T) {
	_, err := parser.Parse("{)}")
	require.Error(t, err)
}
