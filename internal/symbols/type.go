package symbols

import (
	"fmt"

	"phpc/internal/source"
)

// TypeKind classifies host types.
type TypeKind uint8

const (
	KindInvalid TypeKind = iota
	KindPrimitive
	KindStruct // value type
	KindEnum
	KindClass
	KindInterface
	KindTrait
)

func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	default:
		return "invalid"
	}
}

// SpecialType tags the well-known types of the host runtime.
type SpecialType uint8

const (
	SpecialNone SpecialType = iota
	SpecialVoid
	SpecialObject
	SpecialBoolean
	SpecialInt8
	SpecialInt16
	SpecialInt32
	SpecialInt64
	SpecialUInt8
	SpecialUInt16
	SpecialUInt32
	SpecialUInt64
	SpecialSingle
	SpecialDouble
	SpecialString
	SpecialPhpValue
	SpecialPhpString
	SpecialPhpArray
	SpecialPhpAlias
	SpecialPhpResource
	SpecialPhpNumber
	SpecialContext
	specialCount
)

var specialNames = [...]string{
	SpecialVoid:        "void",
	SpecialObject:      "object",
	SpecialBoolean:     "bool",
	SpecialInt8:        "int8",
	SpecialInt16:       "int16",
	SpecialInt32:       "int32",
	SpecialInt64:       "int64",
	SpecialUInt8:       "uint8",
	SpecialUInt16:      "uint16",
	SpecialUInt32:      "uint32",
	SpecialUInt64:      "uint64",
	SpecialSingle:      "float32",
	SpecialDouble:      "float64",
	SpecialString:      "string",
	SpecialPhpValue:    "PhpValue",
	SpecialPhpString:   "PhpString",
	SpecialPhpArray:    "PhpArray",
	SpecialPhpAlias:    "PhpAlias",
	SpecialPhpResource: "PhpResource",
	SpecialPhpNumber:   "PhpNumber",
	SpecialContext:     "Context",
}

func (s SpecialType) String() string {
	if s > SpecialNone && s < specialCount {
		return specialNames[s]
	}
	return fmt.Sprintf("SpecialType(%d)", s)
}

// IsPhpSurrogate reports the dynamic value wrappers that are reference types
// on the host but never objects in PHP terms.
func (s SpecialType) IsPhpSurrogate() bool {
	switch s {
	case SpecialPhpString, SpecialPhpArray, SpecialPhpAlias, SpecialPhpResource:
		return true
	}
	return false
}

// Type is one node of the type graph. Base and Interfaces are indices into
// the same table.
type Type struct {
	ID         TypeID
	Name       string
	Kind       TypeKind
	Special    SpecialType
	Base       TypeID
	Interfaces []TypeID
	// Underlying is the integer type of an enum.
	Underlying TypeID
	Members    []MethodID
	Abstract   bool
	Sealed     bool
	IsArray    bool
	// Library marks types that come from the runtime library rather than
	// from compiled source.
	Library bool
	Span    source.Span
}

// IsReference reports whether values of the type are host references.
func (t *Type) IsReference() bool {
	return t.Kind == KindClass || t.Kind == KindInterface || t.Kind == KindTrait
}

// IsValueType reports whether values of the type are copied by value.
func (t *Type) IsValueType() bool {
	return t.Kind == KindStruct || t.Kind == KindPrimitive || t.Kind == KindEnum
}

// IsInterface reports whether the type is an interface.
func (t *Type) IsInterface() bool { return t.Kind == KindInterface }
