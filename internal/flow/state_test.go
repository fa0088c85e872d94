package flow

import (
	"testing"

	"phpc/internal/types"
)

func TestContextSlotsAreStable(t *testing.T) {
	ctx := NewContext(nil)
	a := ctx.Slot("a")
	b := ctx.Slot("b")
	if a == b || ctx.Slot("a") != a {
		t.Fatalf("slots a=%d b=%d", a, b)
	}
	if _, ok := ctx.Lookup("A"); ok {
		t.Fatalf("variable names are case-sensitive")
	}
	if ctx.Name(b) != "b" || ctx.Len() != 2 {
		t.Fatalf("Name(%d)=%q Len=%d", b, ctx.Name(b), ctx.Len())
	}
}

func TestStateMerge(t *testing.T) {
	ctx := NewContext(nil)
	tc := ctx.TypeCtx
	x := ctx.Slot("x")
	y := ctx.Slot("y")

	a := NewState(ctx.Len())
	a.Set(x, tc.LongTypeMask())
	b := NewState(ctx.Len())
	b.Set(x, tc.DoubleTypeMask())
	b.Set(y, tc.StringTypeMask())

	m := Merge(a, b)
	if m.Get(x) != tc.LongTypeMask()|tc.DoubleTypeMask() {
		t.Fatalf("x = %s", tc.ToString(m.Get(x)))
	}
	if m.Get(y) != tc.StringTypeMask() {
		t.Fatalf("y = %s", tc.ToString(m.Get(y)))
	}
	if a.Get(y) != types.VoidType {
		t.Fatalf("merge mutated its input")
	}
	if !m.Includes(a) || !m.Includes(b) || a.Includes(m) {
		t.Fatalf("inclusion is wrong")
	}
	if Merge(nil, nil) != nil {
		t.Fatalf("merge of two unreached states must stay unreached")
	}
	if !Merge(nil, a).Equal(a) {
		t.Fatalf("merge with unreached must copy the other state")
	}
}

func TestStateGrowsOnWrite(t *testing.T) {
	s := NewState(0)
	s.Union(3, types.MaskOf(1))
	if s.Len() != 4 || s.Get(3) != types.MaskOf(1) || s.Get(10) != types.VoidType {
		t.Fatalf("state = %v", s.Masks())
	}
	short := FromMasks([]types.TypeRefMask{types.MaskOf(1)})
	long := FromMasks([]types.TypeRefMask{types.MaskOf(1), 0, 0})
	if !short.Equal(long) {
		t.Fatalf("trailing void slots must compare equal")
	}
}

func TestStateFormat(t *testing.T) {
	ctx := NewContext(nil)
	s := NewState(0)
	s.Set(ctx.Slot("i"), ctx.TypeCtx.LongTypeMask())
	if got := s.Format(ctx); got != "{$i: int}" {
		t.Fatalf("Format = %q", got)
	}
	var unreached *State
	if unreached.Format(ctx) != "<unreached>" {
		t.Fatalf("nil state format")
	}
}
