package resolve

import (
	"testing"

	"phpc/internal/symbols"
)

func TestIdentityConversion(t *testing.T) {
	tab := symbols.NewTable()
	conv := NewConversions(tab)
	for _, id := range tab.TypeIDs() {
		c := conv.ClassifyConversion(id, id)
		if !c.Exists() || !c.IsIdentity() || !c.IsImplicit() || ConvCost(c, false) != 0 || ConvCost(c, true) != 0 {
			t.Fatalf("identity conversion of %s = %v", tab.TypeName(id), c)
		}
	}
}

func TestNumericDirectionality(t *testing.T) {
	tab := symbols.NewTable()
	conv := NewConversions(tab)
	s := tab.Special
	cases := []struct {
		from, to symbols.SpecialType
		implicit bool
	}{
		{symbols.SpecialUInt8, symbols.SpecialInt32, true},
		{symbols.SpecialUInt8, symbols.SpecialUInt32, true},
		{symbols.SpecialUInt16, symbols.SpecialInt64, true},
		{symbols.SpecialInt64, symbols.SpecialInt32, false},
		{symbols.SpecialUInt32, symbols.SpecialUInt8, false},
		{symbols.SpecialInt32, symbols.SpecialUInt32, false},
		{symbols.SpecialUInt64, symbols.SpecialInt64, false},
		{symbols.SpecialInt16, symbols.SpecialInt16, true},
		{symbols.SpecialInt32, symbols.SpecialDouble, true},
		{symbols.SpecialBoolean, symbols.SpecialInt8, true},
	}
	for _, tc := range cases {
		c := conv.ClassifyConversion(s(tc.from), s(tc.to))
		if !c.Exists() {
			t.Fatalf("%s -> %s: no conversion", tc.from, tc.to)
		}
		if tc.from != tc.to && !c.IsNumeric() {
			t.Fatalf("%s -> %s: expected numeric, got %v", tc.from, tc.to, c)
		}
		if c.IsImplicit() != tc.implicit {
			t.Fatalf("%s -> %s: implicit = %v, want %v", tc.from, tc.to, c.IsImplicit(), tc.implicit)
		}
	}
}

func TestEnumUsesUnderlyingType(t *testing.T) {
	tab := symbols.NewTable()
	enum, _ := tab.Declare(symbols.Type{Name: "Color", Kind: symbols.KindEnum, Underlying: tab.Special(symbols.SpecialUInt8)})
	c := NewConversions(tab).ClassifyConversion(enum, tab.Special(symbols.SpecialInt32))
	if c.Kind != ConvImplicitNumeric {
		t.Fatalf("enum -> int32 = %v", c)
	}
}

func TestReferenceConversions(t *testing.T) {
	tab := symbols.NewTable()
	obj := tab.Special(symbols.SpecialObject)
	iface, _ := tab.Declare(symbols.Type{Name: "Countable", Kind: symbols.KindInterface})
	base, _ := tab.Declare(symbols.Type{Name: "Base", Kind: symbols.KindClass, Base: obj})
	derived, _ := tab.Declare(symbols.Type{Name: "Derived", Kind: symbols.KindClass, Base: base, Interfaces: []symbols.TypeID{iface}})
	conv := NewConversions(tab)

	if c := conv.ClassifyConversion(derived, base); c.Kind != ConvImplicitReference {
		t.Fatalf("upcast = %v", c)
	}
	if c := conv.ClassifyConversion(derived, iface); c.Kind != ConvImplicitReference {
		t.Fatalf("interface upcast = %v", c)
	}
	if c := conv.ClassifyConversion(iface, obj); c.Kind != ConvImplicitReference {
		t.Fatalf("interface -> object = %v", c)
	}
	if c := conv.ClassifyConversion(base, derived); c.Kind != ConvExplicitReference {
		t.Fatalf("downcast = %v", c)
	}
	for _, surrogate := range []symbols.SpecialType{symbols.SpecialPhpString, symbols.SpecialPhpArray, symbols.SpecialPhpAlias, symbols.SpecialPhpResource} {
		c := conv.ClassifyConversion(tab.Special(surrogate), obj)
		if c.IsImplicit() {
			t.Fatalf("%s must not implicitly become object, got %v", surrogate, c)
		}
	}
	if c := conv.ClassifyConversion(tab.Special(symbols.SpecialString), obj); c.Kind != ConvImplicitReference {
		t.Fatalf("string -> object = %v", c)
	}
	if c := conv.ClassifyConversion(tab.Special(symbols.SpecialPhpArray), base); c.Exists() {
		t.Fatalf("array -> class must not fall back to a reference conversion, got %v", c)
	}
}

func TestVoidTargetIsIdentity(t *testing.T) {
	tab := symbols.NewTable()
	c := NewConversions(tab).ClassifyConversion(tab.Special(symbols.SpecialInt64), tab.Special(symbols.SpecialVoid))
	if !c.IsIdentity() {
		t.Fatalf("conversion to void = %v", c)
	}
}

func TestConvCostAsymmetry(t *testing.T) {
	implicit := Conversion{Kind: ConvImplicitNumeric}
	explicit := Conversion{Kind: ConvExplicitNumeric}
	if ConvCost(implicit, false) != 1 || ConvCost(explicit, true) != 1 {
		t.Fatalf("direction-matching conversions cost 1")
	}
	if ConvCost(implicit, true) != 3 || ConvCost(explicit, false) != 3 {
		t.Fatalf("direction-mismatching conversions cost 3")
	}
}

func TestOperatorSearch(t *testing.T) {
	tab := symbols.NewTable()
	long := tab.Special(symbols.SpecialInt64)
	value := tab.Special(symbols.SpecialPhpValue)
	ctx := tab.Special(symbols.SpecialContext)
	money, _ := tab.Declare(symbols.Type{Name: "Money", Kind: symbols.KindStruct})
	toLong := tab.AddMethod(symbols.Method{Name: "ToLong", Declaring: money, Return: long, Access: symbols.Public})
	tab.AddMethod(symbols.Method{Name: "op_Explicit", Declaring: money, Return: tab.Special(symbols.SpecialString), Access: symbols.Public, Static: true,
		Params: []symbols.Param{{Name: "m", Type: money}}})

	conv := NewConversions(tab)
	if c := conv.ClassifyConversion(money, long); c.Kind != ConvImplicitUserDefined || c.Method != toLong {
		t.Fatalf("Money -> int64 = %v (%s)", c, tab.MethodName(c.Method))
	}
	if c := conv.ClassifyConversion(money, tab.Special(symbols.SpecialString)); c.Kind != ConvExplicitUserDefined {
		t.Fatalf("Money -> string = %v", c)
	}
	if c := conv.ClassifyConversionWith(money, long, Options{}); c.Exists() {
		t.Fatalf("operator search must be opt-in, got %v", c)
	}

	// extension container: Convert::ToPhpString(Context, Money) beats the
	// plain overload through the context parameter.
	phpString := tab.Special(symbols.SpecialPhpString)
	convert, _ := tab.Declare(symbols.Type{Name: "Convert", Kind: symbols.KindClass, Base: tab.Special(symbols.SpecialObject), Library: true})
	tab.AddExtension(convert)
	tab.AddMethod(symbols.Method{Name: "ToPhpString", Declaring: convert, Return: phpString, Access: symbols.Public, Static: true,
		Params: []symbols.Param{{Name: "m", Type: money}}})
	withCtx := tab.AddMethod(symbols.Method{Name: "ToPhpString", Declaring: convert, Return: phpString, Access: symbols.Public, Static: true,
		Params: []symbols.Param{{Name: "ctx", Type: ctx, IsContext: true}, {Name: "m", Type: money}}})
	tab.AddMethod(symbols.Method{Name: "ToPhpString", Declaring: convert, Return: phpString, Access: symbols.Private, Static: true,
		Params: []symbols.Param{{Name: "m", Type: money}}})
	if c := conv.ClassifyConversion(money, phpString); c.Method != withCtx {
		t.Fatalf("expected the context-taking operator, got %s", tab.MethodName(c.Method))
	}

	byRef, _ := tab.Declare(symbols.Type{Name: "Ticket", Kind: symbols.KindStruct})
	tab.AddMethod(symbols.Method{Name: "op_Implicit", Declaring: byRef, Return: value, Access: symbols.Public, Static: true,
		Params: []symbols.Param{{Name: "t", Type: byRef, IsByRef: true}}})
	if c := conv.ClassifyConversion(byRef, value); c.Exists() {
		t.Fatalf("by-ref operand needs a referenceable receiver, got %v", c)
	}
	if c := conv.ClassifyConversionWith(byRef, value, Options{Implicit: true, ReferenceableReceiver: true}); c.Kind != ConvImplicitUserDefined {
		t.Fatalf("by-ref operand with referenceable receiver = %v", c)
	}
}
