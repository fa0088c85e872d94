package types

import (
	"fmt"
	"strconv"
	"strings"
)

// RefKind enumerates the kinds of type references a context can index.
type RefKind uint8

const (
	RefInvalid RefKind = iota
	RefNull
	RefBool
	RefLong
	RefDouble
	RefString
	RefArray
	RefResource
	RefCallable
	RefObject // any object of unknown class
	RefClass
)

func (k RefKind) String() string {
	switch k {
	case RefNull:
		return "null"
	case RefBool:
		return "bool"
	case RefLong:
		return "int"
	case RefDouble:
		return "float"
	case RefString:
		return "string"
	case RefArray:
		return "array"
	case RefResource:
		return "resource"
	case RefCallable:
		return "callable"
	case RefObject:
		return "object"
	case RefClass:
		return "class"
	default:
		return fmt.Sprintf("RefKind(%d)", k)
	}
}

// TypeRef is a concrete type a mask bit can stand for. Closures and
// generators are the library classes Closure and Generator.
type TypeRef struct {
	Kind RefKind
	// Name is the class name as written; only set for RefClass.
	Name string
	// Elem is the element mask of a RefArray, relative to the context the
	// reference lives in. Void means the elements are unknown.
	Elem TypeRefMask
}

// Primitive type references.
var (
	NullRef     = TypeRef{Kind: RefNull}
	BoolRef     = TypeRef{Kind: RefBool}
	LongRef     = TypeRef{Kind: RefLong}
	DoubleRef   = TypeRef{Kind: RefDouble}
	StringRef   = TypeRef{Kind: RefString}
	ArrayRef    = TypeRef{Kind: RefArray}
	ResourceRef = TypeRef{Kind: RefResource}
	CallableRef = TypeRef{Kind: RefCallable}
	ObjectRef   = TypeRef{Kind: RefObject}
)

// ClassRef references a class by name.
func ClassRef(name string) TypeRef {
	return TypeRef{Kind: RefClass, Name: strings.TrimPrefix(name, `\`)}
}

// ArrayOf references an array holding elem. Unknown or mixed elements give
// the plain ArrayRef.
func ArrayOf(elem TypeRefMask) TypeRef {
	elem = elem.WithoutFlags()
	if elem.IsVoid() || elem.IsAnyType() {
		return ArrayRef
	}
	return TypeRef{Kind: RefArray, Elem: elem}
}

// IsObject reports whether the reference denotes an object.
func (r TypeRef) IsObject() bool { return r.Kind == RefObject || r.Kind == RefClass }

// key is the identity of the reference; class names are case-insensitive.
func (r TypeRef) key() string {
	switch {
	case r.Kind == RefClass:
		return "c:" + strings.ToLower(r.Name)
	case r.Kind == RefArray && r.Elem != VoidType:
		return "a:" + strconv.FormatUint(uint64(r.Elem), 16)
	}
	return r.Kind.String()
}

func (r TypeRef) String() string {
	if r.Kind == RefClass {
		return r.Name
	}
	return r.Kind.String()
}
