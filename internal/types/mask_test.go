package types

import "testing"

func TestMaskPredicates(t *testing.T) {
	if !AnyType.IsAnyType() {
		t.Fatalf("AnyType.IsAnyType() = false")
	}
	var zero TypeRefMask
	if !zero.IsUninitialized() || !zero.IsVoid() {
		t.Fatalf("zero mask must be uninitialized and void")
	}
	hinted := zero.WithIsHint(true)
	if hinted.IsUninitialized() {
		t.Fatalf("flagged mask is not uninitialized")
	}
	if !hinted.IsVoid() {
		t.Fatalf("flags alone must not make a mask non-void")
	}
	single := MaskOf(5)
	if !single.IsSingleType() {
		t.Fatalf("mask with one bit must be single type")
	}
	if !single.WithIncludesSubclasses(true).IsSingleType() {
		t.Fatalf("flags must not affect IsSingleType")
	}
	if MaskOf(1, 2).IsSingleType() || zero.IsSingleType() {
		t.Fatalf("IsSingleType must require exactly one type bit")
	}
}

func TestFlagRoundTrip(t *testing.T) {
	for _, m := range []TypeRefMask{0, MaskOf(0), MaskOf(3, 61), MaskOf(7).WithIncludesSubclasses(true)} {
		if got := m.WithIsHint(true).WithIsHint(false); got != m {
			t.Fatalf("hint round trip of %#x gave %#x", uint64(m), uint64(got))
		}
		if got := m.WithIncludesSubclasses(true).WithIncludesSubclasses(false); got != m.WithIncludesSubclasses(false) {
			t.Fatalf("subclass flag round trip of %#x gave %#x", uint64(m), uint64(got))
		}
	}
	if AnyType.WithIsHint(false) != AnyType || AnyType.WithIncludesSubclasses(false) != AnyType {
		t.Fatalf("flag changes must be no-ops on AnyType")
	}
}

func TestAddTypeOverflow(t *testing.T) {
	priors := []TypeRefMask{0, MaskOf(1), MaskOf(2).WithIsHint(true), AnyType}
	for _, prior := range priors {
		for _, idx := range []int{-1, -100, IndicesCount, IndicesCount + 1, 63, 1000} {
			if got := prior.AddType(idx); !got.IsAnyType() {
				t.Fatalf("AddType(%d) on %v = %v, want mixed", idx, prior, got)
			}
		}
	}
	if got := TypeRefMask(0).AddType(IndicesCount - 1); got.IsAnyType() || !got.HasType(IndicesCount-1) {
		t.Fatalf("last index must be addressable, got %#x", uint64(got))
	}
}

func TestUnionLaws(t *testing.T) {
	samples := []TypeRefMask{0, MaskOf(0), MaskOf(1, 5), MaskOf(61), MaskOf(2).WithIsHint(true), MaskOf(3).WithIncludesSubclasses(true), AnyType}
	for _, a := range samples {
		if a.Union(a) != a {
			t.Fatalf("union must be idempotent for %v", a)
		}
		for _, b := range samples {
			u := a.Union(b)
			if u != b.Union(a) {
				t.Fatalf("union must be commutative: %v, %v", a, b)
			}
			if u&a != a || u&b != b {
				t.Fatalf("union must include both operands: %v, %v", a, b)
			}
			for _, c := range samples {
				if a.Union(b).Union(c) != a.Union(b.Union(c)) {
					t.Fatalf("union must be associative")
				}
			}
		}
	}
}

func TestUnionStreamConverges(t *testing.T) {
	stream := []TypeRefMask{MaskOf(1), MaskOf(2), MaskOf(1), MaskOf(4, 2), MaskOf(1)}
	var acc TypeRefMask
	for round := 0; round < 3; round++ {
		prev := acc
		for _, m := range stream {
			acc = acc.Union(m)
		}
		if round > 0 && acc != prev {
			t.Fatalf("union stream did not reach a fixpoint after one pass")
		}
	}
	if acc != MaskOf(1, 2, 4) {
		t.Fatalf("unexpected fixpoint %v", acc)
	}
}

func TestSetTypeClears(t *testing.T) {
	m := MaskOf(1, 2)
	if got := m.SetType(1, false); got != MaskOf(2) {
		t.Fatalf("SetType clear = %v", got)
	}
	if AnyType.SetType(3, false) != AnyType {
		t.Fatalf("clearing a bit of AnyType must keep AnyType")
	}
	if !m.HasType(2) || m.HasType(3) || m.HasType(-1) || !AnyType.HasType(99) {
		t.Fatalf("HasType mismatch")
	}
}

func TestMaskString(t *testing.T) {
	cases := []struct {
		mask TypeRefMask
		want string
	}{
		{AnyType, "mixed"},
		{0, "void"},
		{MaskOf(0), "0"},
		{MaskOf(10, 2, 5), "2,5,10"},
		{MaskOf(1, 3).WithIsHint(true), "1,3 (hint)"},
		{TypeRefMask(0).WithIsHint(true), "void (hint)"},
		{MaskOf(4).WithIncludesSubclasses(true), "4"},
	}
	for _, tc := range cases {
		if got := tc.mask.String(); got != tc.want {
			t.Fatalf("String(%#x) = %q, want %q", uint64(tc.mask), got, tc.want)
		}
	}
}

func TestOutOfRangeIndicesAreNotMembers(t *testing.T) {
	for _, idx := range []int{-1, IndicesCount, 1 << 40} {
		if VoidType.HasType(idx) || MaskOf(0, 5).HasType(idx) {
			t.Fatalf("index %d must not be a member", idx)
		}
		if !AnyType.HasType(idx) {
			t.Fatalf("AnyType must contain index %d", idx)
		}
		if m := MaskOf(3).SetType(idx, false); m != MaskOf(3) {
			t.Fatalf("clearing index %d changed the mask to %v", idx, m)
		}
	}
}
