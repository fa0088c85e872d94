package resolve

import "phpc/internal/symbols"

type numericClass struct {
	floating bool
	signed   bool
	width    int
}

// classifyNumeric describes numeric types as (floating, signed, width).
// Booleans are 1-bit numbers; enums use their underlying integer type.
func classifyNumeric(table *symbols.Table, id symbols.TypeID) (numericClass, bool) {
	ty := table.Type(id)
	if ty == nil {
		return numericClass{}, false
	}
	if ty.Kind == symbols.KindEnum {
		if !ty.Underlying.IsValid() || ty.Underlying == id {
			return numericClass{}, false
		}
		return classifyNumeric(table, ty.Underlying)
	}
	switch ty.Special {
	case symbols.SpecialBoolean:
		return numericClass{width: 1}, true
	case symbols.SpecialInt8:
		return numericClass{signed: true, width: 8}, true
	case symbols.SpecialInt16:
		return numericClass{signed: true, width: 16}, true
	case symbols.SpecialInt32:
		return numericClass{signed: true, width: 32}, true
	case symbols.SpecialInt64:
		return numericClass{signed: true, width: 64}, true
	case symbols.SpecialUInt8:
		return numericClass{width: 8}, true
	case symbols.SpecialUInt16:
		return numericClass{width: 16}, true
	case symbols.SpecialUInt32:
		return numericClass{width: 32}, true
	case symbols.SpecialUInt64:
		return numericClass{width: 64}, true
	case symbols.SpecialSingle:
		return numericClass{floating: true, signed: true, width: 32}, true
	case symbols.SpecialDouble:
		return numericClass{floating: true, signed: true, width: 64}, true
	}
	return numericClass{}, false
}

// numericConversion is implicit when the target is strictly wider, or as wide
// with the same signedness. Floating-ness is not consulted; this is a width
// heuristic, not numeric promotion.
func numericConversion(from, to numericClass) ConversionKind {
	if to.width > from.width || (to.width == from.width && to.signed == from.signed) {
		return ConvImplicitNumeric
	}
	return ConvExplicitNumeric
}
