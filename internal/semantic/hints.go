package semantic

import (
	"strings"

	"phpc/internal/phpsyntax"
	"phpc/internal/symbols"
	"phpc/internal/types"
)

// primitiveHints maps PHP type keywords to host types.
var primitiveHints = map[string]symbols.SpecialType{
	"int":      symbols.SpecialInt64,
	"float":    symbols.SpecialDouble,
	"bool":     symbols.SpecialBoolean,
	"false":    symbols.SpecialBoolean,
	"true":     symbols.SpecialBoolean,
	"string":   symbols.SpecialString,
	"array":    symbols.SpecialPhpArray,
	"iterable": symbols.SpecialPhpValue,
	"callable": symbols.SpecialPhpValue,
	"mixed":    symbols.SpecialPhpValue,
	"object":   symbols.SpecialObject,
	"void":     symbols.SpecialVoid,
	"never":    symbols.SpecialVoid,
}

// isKeywordHint reports type names that never denote a class.
func isKeywordHint(name string) bool {
	_, ok := primitiveHints[strings.ToLower(name)]
	return ok
}

// HintType maps a declared type to a host type. Absent, nullable and union
// hints become PhpValue. Unknown class names yield NoTypeID with ok false.
func (c *Compilation) HintType(h *phpsyntax.TypeHint, self string) (id symbols.TypeID, ok bool) {
	value := c.Table.Special(symbols.SpecialPhpValue)
	if h == nil || h.Nullable || len(h.Names) != 1 {
		return value, true
	}
	name := h.Names[0]
	if s, found := primitiveHints[strings.ToLower(name)]; found {
		return c.Table.Special(s), true
	}
	switch strings.ToLower(name) {
	case "self", "static":
		name = self
	}
	if tid, found := c.Table.Lookup(name); found {
		return tid, true
	}
	return value, false
}

// HintMask maps a declared or documented type to a mask in ctx. A nil hint
// is any type.
func HintMask(ctx *types.TypeRefContext, h *phpsyntax.TypeHint, self string) types.TypeRefMask {
	if h == nil {
		return types.AnyType
	}
	var mask types.TypeRefMask
	for _, name := range h.Names {
		if elem, ok := strings.CutSuffix(name, "[]"); ok {
			inner := types.AnyType
			if elem != "" {
				inner = HintMask(ctx, &phpsyntax.TypeHint{Names: []string{elem}}, self)
			}
			mask |= ctx.ArrayOfTypeMask(inner)
			continue
		}
		switch strings.ToLower(name) {
		case "int":
			mask |= ctx.LongTypeMask()
		case "float":
			mask |= ctx.DoubleTypeMask()
		case "bool", "false", "true":
			mask |= ctx.BoolTypeMask()
		case "string":
			mask |= ctx.StringTypeMask()
		case "array", "iterable":
			mask |= ctx.ArrayTypeMask()
		case "callable":
			mask |= ctx.CallableTypeMask()
		case "object":
			mask |= ctx.ObjectTypeMask()
		case "resource":
			mask |= ctx.ResourceTypeMask()
		case "null", "void", "never":
			mask |= ctx.NullTypeMask()
		case "mixed":
			return types.AnyType
		case "self", "static", "$this":
			if self == "" {
				return types.AnyType
			}
			mask |= ctx.ClassTypeMask(self, true)
		default:
			mask |= ctx.ClassTypeMask(name, true)
		}
	}
	if h.Nullable {
		mask |= ctx.NullTypeMask()
	}
	if mask.IsVoid() {
		return types.AnyType
	}
	return mask
}

// HostMask maps a host type to the mask of the PHP values it carries.
func (c *Compilation) HostMask(ctx *types.TypeRefContext, id symbols.TypeID) types.TypeRefMask {
	ty := c.Table.Type(id)
	if ty == nil {
		return types.AnyType
	}
	switch ty.Special {
	case symbols.SpecialVoid:
		return ctx.NullTypeMask()
	case symbols.SpecialBoolean:
		return ctx.BoolTypeMask()
	case symbols.SpecialInt8, symbols.SpecialInt16, symbols.SpecialInt32, symbols.SpecialInt64,
		symbols.SpecialUInt8, symbols.SpecialUInt16, symbols.SpecialUInt32, symbols.SpecialUInt64:
		return ctx.LongTypeMask()
	case symbols.SpecialSingle, symbols.SpecialDouble:
		return ctx.DoubleTypeMask()
	case symbols.SpecialString, symbols.SpecialPhpString:
		return ctx.StringTypeMask()
	case symbols.SpecialPhpArray:
		return ctx.ArrayTypeMask()
	case symbols.SpecialPhpResource:
		return ctx.ResourceTypeMask()
	case symbols.SpecialPhpNumber:
		return ctx.NumberTypeMask()
	case symbols.SpecialObject:
		return ctx.ObjectTypeMask()
	case symbols.SpecialPhpValue, symbols.SpecialPhpAlias, symbols.SpecialContext:
		return types.AnyType
	}
	if ty.IsReference() {
		return ctx.ClassTypeMask(ty.Name, true)
	}
	return types.AnyType
}

// HostType picks the host type that carries every value of mask. Masks
// mixing kinds fall back to PhpValue; null carries no host type of its own.
func (c *Compilation) HostType(ctx *types.TypeRefContext, mask types.TypeRefMask) symbols.TypeID {
	value := c.Table.Special(symbols.SpecialPhpValue)
	if mask.IsAnyType() || mask.IsVoid() {
		return value
	}
	if ctx.IsArray(mask) {
		return c.Table.Special(symbols.SpecialPhpArray)
	}
	refs := ctx.Types(mask)
	if len(refs) == 2 && ctx.IsNumber(mask) {
		return c.Table.Special(symbols.SpecialPhpNumber)
	}
	if len(refs) != 1 {
		return value
	}
	switch ref := refs[0]; ref.Kind {
	case types.RefBool:
		return c.Table.Special(symbols.SpecialBoolean)
	case types.RefLong:
		return c.Table.Special(symbols.SpecialInt64)
	case types.RefDouble:
		return c.Table.Special(symbols.SpecialDouble)
	case types.RefString:
		return c.Table.Special(symbols.SpecialString)
	case types.RefArray:
		return c.Table.Special(symbols.SpecialPhpArray)
	case types.RefResource:
		return c.Table.Special(symbols.SpecialPhpResource)
	case types.RefObject:
		return c.Table.Special(symbols.SpecialObject)
	case types.RefClass:
		if id, ok := c.Table.Lookup(ref.Name); ok {
			return id
		}
		return c.Table.Special(symbols.SpecialObject)
	}
	return value
}
