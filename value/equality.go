package value

import (
	"math"
	"strconv"
	"strings"
)

// Equal implements the graded `=`-family comparison operators. precision is
// the run length of the `=` token: a bare `=` (precision 1) never reaches
// here, since the parser always reads it as assignment, so callers pass 2
// or higher.
//
//   - precision 2 ("=="): always compares the exact stringified form of
//     both sides, whatever their kind.
//   - precision 3 ("==="): typed, no numeric coercion — same-kind values
//     compare exactly (no folding, no log tolerance); cross-kind values
//     still fall back to an exact stringified comparison, since "no
//     coercion" here means no number<->string parsing, not "different
//     kinds are never equal" (`` `true` === true `` holds at this grade).
//   - precision 4+ ("===="...): strict. Same-kind values compare exactly;
//     cross-kind values are never equal, full stop.
//
// precision 1's "loose" grade (case/whitespace-folded strings, log-tolerant
// numbers, bool()-projected cross-kind fallback) is implemented for
// completeness even though no surface syntax reaches it with a single `=`.
func (v Value) Equal(other Value, precision int) Boolean {
	switch {
	case precision <= 1:
		return boolOf(looseEqual(v, other))
	case precision == 2:
		return boolOf(v.ToDisplayString() == other.ToDisplayString())
	case v.Kind == other.Kind:
		return boolOf(strictSameKindEqual(v, other))
	case precision == 3:
		return boolOf(v.ToDisplayString() == other.ToDisplayString())
	default:
		return False
	}
}

func boolOf(b bool) Boolean {
	if b {
		return True
	}
	return False
}

func looseEqual(a, b Value) bool {
	if a.Kind == b.Kind {
		switch a.Kind {
		case KindNumber:
			return looseNumberEqual(a.N, b.N)
		case KindString:
			return foldString(a.S) == foldString(b.S)
		case KindBoolean:
			return a.B == b.B
		default:
			return strictSameKindEqual(a, b)
		}
	}
	if n, s, ok := numberAndString(a, b); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return looseNumberEqual(n, f)
		}
	}
	return a.ToBoolean() == b.ToBoolean()
}

func numberAndString(a, b Value) (n float64, s string, ok bool) {
	if a.Kind == KindNumber && b.Kind == KindString {
		return a.N, b.S, true
	}
	if b.Kind == KindNumber && a.Kind == KindString {
		return b.N, a.S, true
	}
	return 0, "", false
}

func looseNumberEqual(a, b float64) bool {
	if a == b {
		return true
	}
	if a == 0 || b == 0 {
		return false
	}
	if (a < 0) != (b < 0) {
		return false
	}
	return math.Abs(math.Log(math.Abs(a/b))) < 0.1
}

func foldString(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func strictSameKindEqual(a, b Value) bool {
	switch a.Kind {
	case KindNumber:
		return a.N == b.N
	case KindString:
		return a.S == b.S
	case KindBoolean:
		return a.B == b.B
	case KindKeyword:
		return a.Kw == b.Kw
	case KindFunction:
		return a.Fn == b.Fn
	case KindClass:
		return a.Cls == b.Cls
	case KindObject:
		return objectsEqual(a.Obj, b.Obj)
	default:
		return false
	}
}

func objectsEqual(a, b *Object) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.keys {
		pa, _ := a.Get(k)
		pb, ok := b.Get(k)
		if !ok {
			return false
		}
		va, vb := pa.Peek(), pb.Peek()
		if va.Kind != vb.Kind || !strictSameKindEqual(va, vb) {
			return false
		}
	}
	return true
}
