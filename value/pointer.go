package value

import "fmt"

// PointerKind names one of the four binding-axis x cell-axis combinations.
// The binding axis (first word) says whether the name can be rebound by
// `=`; the cell axis (second word) says whether the stored value can be
// mutated in place by `+=`-family operators, and whether it participates in
// the `when`/`next`/`previous` reactive protocol at all.
type PointerKind int

const (
	// PtrConstConst: fixed binding, immutable value.
	PtrConstConst PointerKind = iota
	// PtrConstVar: fixed binding, shared mutable cell.
	PtrConstVar
	// PtrVarConst: rebindable slot, immutable value.
	PtrVarConst
	// PtrVarVar: rebindable slot, shared mutable cell.
	PtrVarVar
)

// FromVarType maps a declaration's two axes onto the matching PointerKind.
// Callers pass the already decoded (rebindable, mutable) pair rather than
// an ast.VarType.
func FromVarType(rebindable, mutable bool) PointerKind {
	switch {
	case !rebindable && !mutable:
		return PtrConstConst
	case !rebindable && mutable:
		return PtrConstVar
	case rebindable && !mutable:
		return PtrVarConst
	default:
		return PtrVarVar
	}
}

func (k PointerKind) Rebindable() bool { return k == PtrVarConst || k == PtrVarVar }
func (k PointerKind) Mutable() bool    { return k == PtrConstVar || k == PtrVarVar }

// Listener is a `when` body plus the opaque environment it closed over. Env
// is untyped here (value must not import state) — eval type-asserts it back
// to *state.State before running the body.
type Listener struct {
	Body fmt.Stringer
	Env  interface{}
}

// Cell is the shared mutable box behind ConstVar/VarVar pointers. Every
// Pointer that shares a Cell observes the same mutations, which is what
// lets converted bindings and `when` listeners see updates made through
// a different reference to "the same variable". A `next` handle has a Cell
// of its own, listed in Next and written by mutateCell.
type Cell struct {
	Value     Value
	Previous  Value
	hasPrev   bool
	Next      []*Cell
	Listeners []Listener
}

// Pointer is a binding: either a plain (possibly rebindable) Value slot, or
// a (possibly rebindable) reference to a shared Cell. Environments and
// Objects store *Pointer (not Pointer) so that in-place mutation and
// rebinding are both visible through every other holder of the same
// *Pointer.
type Pointer struct {
	Kind PointerKind
	val  Value
	cell *Cell
}

// NewConstConst boxes v as a fixed, immutable binding.
func NewConstConst(v Value) *Pointer { return &Pointer{Kind: PtrConstConst, val: v} }

// NewVarConst boxes v as a rebindable, immutable-cell binding.
func NewVarConst(v Value) *Pointer { return &Pointer{Kind: PtrVarConst, val: v} }

// NewConstVar boxes v behind a fresh shared cell with a fixed binding.
func NewConstVar(v Value) *Pointer {
	return &Pointer{Kind: PtrConstVar, cell: &Cell{Value: v}}
}

// NewVarVar boxes v behind a fresh shared cell with a rebindable binding.
func NewVarVar(v Value) *Pointer {
	return &Pointer{Kind: PtrVarVar, cell: &Cell{Value: v}}
}

// Peek returns the pointer's current value without cloning.
func (p *Pointer) Peek() Value {
	if p.cell != nil {
		return p.cell.Value
	}
	return p.val
}

// Clone returns an independent copy of the pointee, safe to box into a
// fresh Pointer of any kind.
func (p *Pointer) Clone() Value { return p.Peek().Clone() }

// HasCell reports whether p has reactive machinery (previous/next/when) at
// all. Const-cell pointers (ConstConst, VarConst) never do.
func (p *Pointer) HasCell() bool { return p.cell != nil }

// Previous returns the cell's last-recorded value and whether one exists
// yet (a cell that has never been mutated has no previous).
func (p *Pointer) Previous() (Value, bool) {
	if p.cell == nil {
		return Value{}, false
	}
	return p.cell.Previous, p.cell.hasPrev
}

// NextHandle returns a fresh ConstVar pointer backed by a new Cell that
// starts with p's current value and is registered in p's cell to
// receive exactly the next mutation made to p (a `next` handle is one-shot:
// it sees one update then stops being tracked). Calling NextHandle on a
// pointer with no cell is a caller error (checked by eval before calling).
func (p *Pointer) NextHandle() *Pointer {
	next := &Cell{Value: p.cell.Value}
	p.cell.Next = append(p.cell.Next, next)
	return &Pointer{Kind: PtrConstVar, cell: next}
}

// AddListener registers a `when` body to re-run (via the caller) whenever
// p's cell mutates.
func (p *Pointer) AddListener(l Listener) {
	if p.cell != nil {
		p.cell.Listeners = append(p.cell.Listeners, l)
	}
}

// PendingListeners returns the listeners to run after a mutation, without
// clearing them (a `when` subscription is permanent for the cell's life).
func (p *Pointer) PendingListeners() []Listener {
	if p.cell == nil {
		return nil
	}
	return p.cell.Listeners
}

// Assign implements `=`: rebinding succeeds only when the binding axis is
// Var (VarConst, VarVar); ConstConst/ConstVar reject it. On a cell-backed
// pointer the existing Cell is mutated in place (not replaced), so any
// `next` handles and `when` listeners registered against it keep working;
// mutating in place also lets previous() observe the pre-assignment value.
func (p *Pointer) Assign(rhs Value) error {
	if !p.Kind.Rebindable() {
		return fmt.Errorf("cannot assign to a const binding")
	}
	if p.cell != nil {
		mutateCell(p.cell, rhs)
		return nil
	}
	p.val = rhs
	return nil
}

// InPlace implements `+=`/`-=`/`*=`/`/=`/`%=`: only a mutable cell (Var cell
// axis: ConstVar, VarVar) accepts in-place mutation; a const cell rejects it
// regardless of the binding axis.
func (p *Pointer) InPlace(rhs Value, combine func(cur, rhs Value) (Value, error)) error {
	if p.cell == nil {
		return fmt.Errorf("cannot mutate a const cell in place")
	}
	next, err := combine(p.cell.Value, rhs)
	if err != nil {
		return err
	}
	mutateCell(p.cell, next)
	return nil
}

// mutateCell writes next into c, recording the prior value, and fires every
// pending `next` handle exactly once: each handle in c.Next is written and
// dropped from the list (a handle only ever observes the single mutation
// that follows its creation), with the write recursing so a handle's own
// handles see it too. Propagation is depth-first and serial; the handle
// list is snapshotted and cleared before recursing so a handle
// re-registered during propagation waits for the following mutation.
func mutateCell(c *Cell, next Value) {
	c.Previous = c.Value
	c.hasPrev = true
	c.Value = next
	pending := c.Next
	c.Next = nil
	for _, n := range pending {
		mutateCell(n, next)
	}
}

// IdentityEqual implements precision-4 graded equality: true pointer
// identity, not value equality. Two cell-backed pointers are identical
// when they share the same Cell; two non-cell pointers are identical only
// when they are the very same *Pointer (e.g. the same Ident looked up
// twice against the same scope). A cell-backed pointer is never identical
// to a non-cell one.
func IdentityEqual(a, b *Pointer) bool {
	if a.cell != nil && b.cell != nil {
		return a.cell == b.cell
	}
	if a.cell == nil && b.cell == nil {
		return a == b
	}
	return false
}

// Convert re-boxes p's current value under a new PointerKind. Converting
// into a cell-backed kind reuses the source's existing Cell when there is
// one, so the converted pointer still observes live mutations made through
// the source; otherwise it allocates a fresh Cell around a clone of the
// current value. Converting into a non-cell kind always takes a fresh
// immutable snapshot.
func Convert(p *Pointer, to PointerKind) *Pointer {
	switch to {
	case PtrConstConst:
		return &Pointer{Kind: PtrConstConst, val: p.Clone()}
	case PtrVarConst:
		return &Pointer{Kind: PtrVarConst, val: p.Clone()}
	case PtrConstVar, PtrVarVar:
		if p.cell != nil {
			return &Pointer{Kind: to, cell: p.cell}
		}
		return &Pointer{Kind: to, cell: &Cell{Value: p.Clone()}}
	default:
		return &Pointer{Kind: PtrConstConst, val: p.Clone()}
	}
}
