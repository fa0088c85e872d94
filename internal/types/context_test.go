package types

import "testing"

func TestContextAssignsStableIndices(t *testing.T) {
	c := NewTypeRefContext()
	long := c.LongTypeMask()
	str := c.StringTypeMask()
	if long == str || !long.IsSingleType() {
		t.Fatalf("expected distinct single-type masks, got %v and %v", long, str)
	}
	if c.LongTypeMask() != long {
		t.Fatalf("primitive masks must be stable")
	}
	a := c.ClassTypeMask("Foo", false)
	b := c.ClassTypeMask(`\foo`, false)
	if a != b {
		t.Fatalf("class names must be case-insensitive: %v vs %v", a, b)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}
}

func TestContextOverflowYieldsAnyType(t *testing.T) {
	c := NewTypeRefContext()
	for i := 0; i < IndicesCount; i++ {
		if m := c.ClassTypeMask("C"+string(rune('A'+i%26))+string(rune('a'+i/26)), false); m.IsAnyType() {
			t.Fatalf("index %d overflowed too early", i)
		}
	}
	if idx := c.AddToContext(ClassRef("Overflow")); idx != -1 {
		t.Fatalf("AddToContext past capacity = %d, want -1", idx)
	}
	if m := c.ClassTypeMask("Overflow", false); !m.IsAnyType() {
		t.Fatalf("overflowing reference must give mixed, got %v", m)
	}
}

func TestContextPredicates(t *testing.T) {
	c := NewTypeRefContext()
	num := c.NumberTypeMask()
	if !c.IsNumber(num) || c.IsLong(num) {
		t.Fatalf("number mask predicates wrong")
	}
	nullable := c.StringTypeMask() | c.NullTypeMask()
	if !c.IsNullable(nullable) || c.IsString(nullable) {
		t.Fatalf("nullable string predicates wrong")
	}
	if got := c.WithoutNull(nullable); !c.IsString(got) {
		t.Fatalf("WithoutNull = %s", c.ToString(got))
	}
	if !c.IsNullable(AnyType) || c.IsString(AnyType) || c.WithoutNull(AnyType) != AnyType {
		t.Fatalf("AnyType predicates wrong")
	}
	obj := c.ClassTypeMask("A", true)
	if !c.IsObject(obj) || !obj.IncludesSubclasses() {
		t.Fatalf("class mask predicates wrong")
	}
	if got := c.ToString(num | c.NullTypeMask()); got != "float|int|null" {
		t.Fatalf("ToString = %q", got)
	}
	if c.ToString(0) != "void" || c.ToString(AnyType) != "mixed" {
		t.Fatalf("special ToString values wrong")
	}
}

func TestTransferFrom(t *testing.T) {
	src := NewTypeRefContext()
	dst := NewTypeRefContext()
	dst.StringTypeMask() // shift indices
	m := src.LongTypeMask() | src.ClassTypeMask("B", false)
	m = m.WithIsHint(true)

	got := dst.TransferFrom(src, m)
	if got == m {
		t.Fatalf("indices should have been remapped")
	}
	if got.IsHint() != true {
		t.Fatalf("flags must survive transfer")
	}
	if dst.ToString(got) != "B|int" {
		t.Fatalf("transferred mask = %s", dst.ToString(got))
	}
	if dst.TransferFrom(src, AnyType) != AnyType {
		t.Fatalf("AnyType must transfer unchanged")
	}
}

func TestArrayElementMasks(t *testing.T) {
	c := NewTypeRefContext()
	ints := c.ArrayOfTypeMask(c.LongTypeMask())
	strs := c.ArrayOfTypeMask(c.StringTypeMask())
	if ints == strs || ints == c.ArrayTypeMask() {
		t.Fatalf("typed arrays must get their own index: %v %v", ints, strs)
	}
	if c.ArrayOfTypeMask(c.LongTypeMask()) != ints {
		t.Fatalf("array of int must be interned once")
	}
	if !c.IsArray(ints|strs) || c.IsArray(ints|c.NullTypeMask()) {
		t.Fatalf("typed arrays must count as arrays")
	}
	if got := c.ToString(ints | strs); got != "int[]|string[]" {
		t.Fatalf("ToString = %q", got)
	}
	if got := c.ElementType(ints | strs); got != c.LongTypeMask()|c.StringTypeMask() {
		t.Fatalf("ElementType = %s", c.ToString(got))
	}
	if c.ElementType(ints|c.ArrayTypeMask()) != AnyType || c.ElementType(c.LongTypeMask()) != AnyType {
		t.Fatalf("unknown elements must give mixed")
	}
	if c.ArrayOfTypeMask(AnyType) != c.ArrayTypeMask() || c.ArrayOfTypeMask(VoidType) != c.ArrayTypeMask() {
		t.Fatalf("mixed or empty elements must give the plain array")
	}

	union := c.ArrayOfTypeMask(c.LongTypeMask() | c.StringTypeMask())
	if got := c.ToString(union); got != "(int|string)[]" {
		t.Fatalf("ToString = %q", got)
	}
	nested := c.ArrayOfTypeMask(ints)
	if got := c.ToString(nested); got != "array[]" {
		t.Fatalf("nested arrays must be flattened, got %q", got)
	}
	if c.ArrayOfTypeMask(nested|ints) != nested {
		t.Fatalf("flattening must reach a fixpoint")
	}
}

func TestTransferFromReindexesElements(t *testing.T) {
	src := NewTypeRefContext()
	dst := NewTypeRefContext()
	dst.NullTypeMask()
	dst.ClassTypeMask("Other", false)
	m := src.ArrayOfTypeMask(src.ClassTypeMask("Foo", false))

	got := dst.TransferFrom(src, m)
	if got := dst.ToString(got); got != "Foo[]" {
		t.Fatalf("transferred mask = %s", got)
	}
	elem := dst.ElementType(got)
	if elem != dst.ClassTypeMask("Foo", false) {
		t.Fatalf("element must be re-indexed, got %s", dst.ToString(elem))
	}
}
