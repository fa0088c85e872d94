package resolve

import "phpc/internal/symbols"

// Options selects which steps ClassifyConversionWith may take.
type Options struct {
	// Implicit and Explicit enable the conversion operator searches.
	Implicit bool
	Explicit bool
	// ReferenceableReceiver allows operators taking the operand by reference.
	ReferenceableReceiver bool
}

// FullSearch enables both operator searches.
var FullSearch = Options{Implicit: true, Explicit: true}

// Conversions classifies conversions over one type table.
type Conversions struct {
	table *symbols.Table
}

// NewConversions creates a classifier.
func NewConversions(table *symbols.Table) *Conversions {
	if table == nil {
		panic("resolve: nil type table")
	}
	return &Conversions{table: table}
}

// Table returns the underlying type table.
func (c *Conversions) Table() *symbols.Table { return c.table }

// ClassifyConversion classifies from -> to with every step enabled.
func (c *Conversions) ClassifyConversion(from, to symbols.TypeID) Conversion {
	return c.ClassifyConversionWith(from, to, FullSearch)
}

// ClassifyConversionWith classifies from -> to.
func (c *Conversions) ClassifyConversionWith(from, to symbols.TypeID, opts Options) Conversion {
	if from == to {
		return Conversion{Kind: ConvIdentity}
	}
	if c.table.Is(to, symbols.SpecialVoid) {
		return Conversion{Kind: ConvIdentity}
	}
	fromTy, toTy := c.table.Type(from), c.table.Type(to)
	if fromTy == nil || toTy == nil {
		return NoConversion
	}

	if fromTy.IsReference() && toTy.IsReference() {
		toObject := c.table.Is(to, symbols.SpecialObject)
		if !(toObject && fromTy.Special.IsPhpSurrogate()) && c.table.IsA(from, to) {
			return Conversion{Kind: ConvImplicitReference}
		}
		if toObject && fromTy.IsInterface() {
			return Conversion{Kind: ConvImplicitReference}
		}
	}

	if fn, ok := classifyNumeric(c.table, from); ok {
		if tn, ok := classifyNumeric(c.table, to); ok {
			return Conversion{Kind: numericConversion(fn, tn)}
		}
	}

	if opts.Implicit {
		if m := c.searchOperator(from, to, implicitOperatorNames(toTy.Special), opts); m.IsValid() {
			return Conversion{Kind: ConvImplicitUserDefined, Method: m}
		}
	}
	if opts.Explicit {
		if m := c.searchOperator(from, to, explicitOperatorNames(toTy.Special), opts); m.IsValid() {
			return Conversion{Kind: ConvExplicitUserDefined, Method: m}
		}
	}

	if fromTy.IsReference() && toTy.IsReference() &&
		!fromTy.Special.IsPhpSurrogate() && !toTy.Special.IsPhpSurrogate() &&
		!fromTy.IsArray && !toTy.IsArray {
		// runtime-checked downcast
		return Conversion{Kind: ConvExplicitReference}
	}
	return NoConversion
}
