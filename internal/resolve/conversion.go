package resolve

import (
	"fmt"

	"phpc/internal/symbols"
)

// ConversionKind classifies how a value changes type.
type ConversionKind uint8

const (
	ConvNone ConversionKind = iota
	ConvIdentity
	ConvImplicitNumeric
	ConvExplicitNumeric
	ConvImplicitReference
	ConvExplicitReference
	ConvImplicitUserDefined
	ConvExplicitUserDefined
)

func (k ConversionKind) String() string {
	switch k {
	case ConvNone:
		return "none"
	case ConvIdentity:
		return "identity"
	case ConvImplicitNumeric:
		return "implicit numeric"
	case ConvExplicitNumeric:
		return "explicit numeric"
	case ConvImplicitReference:
		return "implicit reference"
	case ConvExplicitReference:
		return "explicit reference"
	case ConvImplicitUserDefined:
		return "implicit operator"
	case ConvExplicitUserDefined:
		return "explicit operator"
	default:
		return fmt.Sprintf("ConversionKind(%d)", k)
	}
}

// Conversion is the outcome of ClassifyConversion. Method is set for
// user-defined conversions.
type Conversion struct {
	Kind   ConversionKind
	Method symbols.MethodID
}

// NoConversion reports that no conversion exists.
var NoConversion = Conversion{}

func (c Conversion) Exists() bool     { return c.Kind != ConvNone }
func (c Conversion) IsIdentity() bool { return c.Kind == ConvIdentity }

// IsImplicit reports whether the conversion needs no cast. Identity counts.
func (c Conversion) IsImplicit() bool {
	switch c.Kind {
	case ConvIdentity, ConvImplicitNumeric, ConvImplicitReference, ConvImplicitUserDefined:
		return true
	}
	return false
}

// IsExplicit reports whether the conversion needs a cast.
func (c Conversion) IsExplicit() bool { return c.Exists() && !c.IsImplicit() }

func (c Conversion) IsNumeric() bool {
	return c.Kind == ConvImplicitNumeric || c.Kind == ConvExplicitNumeric
}

func (c Conversion) IsReference() bool {
	return c.Kind == ConvImplicitReference || c.Kind == ConvExplicitReference
}

func (c Conversion) IsUserDefined() bool {
	return c.Kind == ConvImplicitUserDefined || c.Kind == ConvExplicitUserDefined
}

func (c Conversion) String() string { return c.Kind.String() }

// ConvCost scores a conversion for overload ranking. Identity is free. A
// conversion whose direction fits the position costs 1: implicit when a value
// is consumed, explicit when it satisfies a return type. Anything else
// costs 3.
func ConvCost(conv Conversion, returning bool) int {
	if conv.IsIdentity() {
		return 0
	}
	if conv.IsImplicit() != returning {
		return 1
	}
	return 3
}
