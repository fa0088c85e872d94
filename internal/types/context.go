package types

import (
	"sort"
	"strings"
)

// TypeRefContext gives meaning to the bits of TypeRefMask values within one
// routine. Entries are never removed, so a mask stays valid for the whole
// analysis run. Not safe for concurrent use.
type TypeRefContext struct {
	refs  []TypeRef
	index map[string]int

	// cached primitive masks, zero until first use
	cache [RefObject + 1]TypeRefMask
}

// NewTypeRefContext creates an empty context.
func NewTypeRefContext() *TypeRefContext {
	return &TypeRefContext{index: make(map[string]int, 8)}
}

// Len returns the number of registered references.
func (c *TypeRefContext) Len() int { return len(c.refs) }

// Types returns the references behind the type bits of mask. AnyType yields nil.
func (c *TypeRefContext) Types(mask TypeRefMask) []TypeRef {
	if mask.IsAnyType() {
		return nil
	}
	out := make([]TypeRef, 0, mask.TypesCount())
	for _, i := range mask.Indices() {
		if i < len(c.refs) {
			out = append(out, c.refs[i])
		}
	}
	return out
}

// Ref returns the reference at index.
func (c *TypeRefContext) Ref(index int) (TypeRef, bool) {
	if index < 0 || index >= len(c.refs) {
		return TypeRef{}, false
	}
	return c.refs[index], true
}

// AddToContext registers ref and returns its index, or -1 once all
// IndicesCount slots are taken.
func (c *TypeRefContext) AddToContext(ref TypeRef) int {
	key := ref.key()
	if i, ok := c.index[key]; ok {
		return i
	}
	if len(c.refs) >= IndicesCount {
		return -1
	}
	i := len(c.refs)
	c.refs = append(c.refs, ref)
	c.index[key] = i
	return i
}

// GetTypeMask returns the mask of a single reference. Overflowing the index
// space yields AnyType.
func (c *TypeRefContext) GetTypeMask(ref TypeRef, includeSubclasses bool) TypeRefMask {
	m := VoidType.AddType(c.AddToContext(ref))
	if includeSubclasses && ref.IsObject() {
		m = m.WithIncludesSubclasses(true)
	}
	return m
}

func (c *TypeRefContext) primitive(ref TypeRef) TypeRefMask {
	if m := c.cache[ref.Kind]; m != 0 {
		return m
	}
	m := c.GetTypeMask(ref, false)
	c.cache[ref.Kind] = m
	return m
}

func (c *TypeRefContext) NullTypeMask() TypeRefMask     { return c.primitive(NullRef) }
func (c *TypeRefContext) BoolTypeMask() TypeRefMask     { return c.primitive(BoolRef) }
func (c *TypeRefContext) LongTypeMask() TypeRefMask     { return c.primitive(LongRef) }
func (c *TypeRefContext) DoubleTypeMask() TypeRefMask   { return c.primitive(DoubleRef) }
func (c *TypeRefContext) StringTypeMask() TypeRefMask   { return c.primitive(StringRef) }
func (c *TypeRefContext) ArrayTypeMask() TypeRefMask    { return c.primitive(ArrayRef) }
func (c *TypeRefContext) ResourceTypeMask() TypeRefMask { return c.primitive(ResourceRef) }
func (c *TypeRefContext) CallableTypeMask() TypeRefMask { return c.primitive(CallableRef) }
func (c *TypeRefContext) ObjectTypeMask() TypeRefMask   { return c.primitive(ObjectRef) }

// NumberTypeMask is int|float.
func (c *TypeRefContext) NumberTypeMask() TypeRefMask {
	return c.LongTypeMask() | c.DoubleTypeMask()
}

// ClassTypeMask returns the mask of a named class.
func (c *TypeRefContext) ClassTypeMask(name string, includeSubclasses bool) TypeRefMask {
	return c.GetTypeMask(ClassRef(name), includeSubclasses)
}

// ArrayOfTypeMask returns the mask of an array holding elem. Arrays inside
// elem lose their own element types, so literals nested in a loop converge.
func (c *TypeRefContext) ArrayOfTypeMask(elem TypeRefMask) TypeRefMask {
	return c.GetTypeMask(ArrayOf(c.flatten(elem)), false)
}

// flatten replaces the typed arrays of mask by the plain array.
func (c *TypeRefContext) flatten(mask TypeRefMask) TypeRefMask {
	if mask.IsAnyType() {
		return mask
	}
	out := mask
	for _, i := range mask.Indices() {
		if i < len(c.refs) && c.refs[i].Kind == RefArray && c.refs[i].Elem != VoidType {
			out = out.SetType(i, false) | c.ArrayTypeMask()
		}
	}
	return out
}

// ElementType unions the element masks of the arrays in mask. A plain array,
// a non-array type or AnyType gives AnyType.
func (c *TypeRefContext) ElementType(mask TypeRefMask) TypeRefMask {
	if mask.IsAnyType() || mask.IsVoid() {
		return AnyType
	}
	var out TypeRefMask
	for _, i := range mask.Indices() {
		if i >= len(c.refs) {
			return AnyType
		}
		ref := c.refs[i]
		if ref.Kind != RefArray || ref.Elem == VoidType {
			return AnyType
		}
		out |= ref.Elem
	}
	return out
}

// only reports whether mask is non-void and every type bit satisfies pred.
func (c *TypeRefContext) only(mask TypeRefMask, pred func(TypeRef) bool) bool {
	if mask.IsAnyType() || mask.IsVoid() {
		return false
	}
	for _, i := range mask.Indices() {
		if i >= len(c.refs) || !pred(c.refs[i]) {
			return false
		}
	}
	return true
}

// any reports whether some type bit satisfies pred. AnyType satisfies all.
func (c *TypeRefContext) any(mask TypeRefMask, pred func(TypeRef) bool) bool {
	if mask.IsAnyType() {
		return true
	}
	for _, i := range mask.Indices() {
		if i < len(c.refs) && pred(c.refs[i]) {
			return true
		}
	}
	return false
}

func kindIs(kinds ...RefKind) func(TypeRef) bool {
	return func(r TypeRef) bool {
		for _, k := range kinds {
			if r.Kind == k {
				return true
			}
		}
		return false
	}
}

// IsNull reports whether mask is exactly null.
func (c *TypeRefContext) IsNull(mask TypeRefMask) bool { return c.only(mask, kindIs(RefNull)) }

// IsBoolean reports whether mask contains only bool.
func (c *TypeRefContext) IsBoolean(mask TypeRefMask) bool { return c.only(mask, kindIs(RefBool)) }

// IsLong reports whether mask contains only int.
func (c *TypeRefContext) IsLong(mask TypeRefMask) bool { return c.only(mask, kindIs(RefLong)) }

// IsDouble reports whether mask contains only float.
func (c *TypeRefContext) IsDouble(mask TypeRefMask) bool { return c.only(mask, kindIs(RefDouble)) }

// IsNumber reports whether mask contains only int and float.
func (c *TypeRefContext) IsNumber(mask TypeRefMask) bool {
	return c.only(mask, kindIs(RefLong, RefDouble))
}

// IsString reports whether mask contains only string.
func (c *TypeRefContext) IsString(mask TypeRefMask) bool { return c.only(mask, kindIs(RefString)) }

// IsArray reports whether mask contains only array.
func (c *TypeRefContext) IsArray(mask TypeRefMask) bool { return c.only(mask, kindIs(RefArray)) }

// IsObject reports whether mask contains only objects.
func (c *TypeRefContext) IsObject(mask TypeRefMask) bool { return c.only(mask, TypeRef.IsObject) }

// IsNullable reports whether null may be in mask.
func (c *TypeRefContext) IsNullable(mask TypeRefMask) bool { return c.any(mask, kindIs(RefNull)) }

// HasObjects reports whether some object may be in mask.
func (c *TypeRefContext) HasObjects(mask TypeRefMask) bool { return c.any(mask, TypeRef.IsObject) }

// WithoutNull removes null from mask. AnyType is returned unchanged.
func (c *TypeRefContext) WithoutNull(mask TypeRefMask) TypeRefMask {
	return c.Without(mask, NullRef)
}

// Without removes the references of the given kinds. AnyType is returned
// unchanged.
func (c *TypeRefContext) Without(mask TypeRefMask, refs ...TypeRef) TypeRefMask {
	if mask.IsAnyType() {
		return mask
	}
	for _, ref := range refs {
		if i, ok := c.index[ref.key()]; ok {
			mask = mask.SetType(i, false)
		}
	}
	return mask
}

// Filter keeps the type bits satisfying pred together with the flags.
func (c *TypeRefContext) Filter(mask TypeRefMask, pred func(TypeRef) bool) TypeRefMask {
	if mask.IsAnyType() {
		return mask
	}
	out := mask & FlagsMask
	for _, i := range mask.Indices() {
		if i < len(c.refs) && pred(c.refs[i]) {
			out = out.AddType(i)
		}
	}
	return out
}

// Classes returns the class names in mask.
func (c *TypeRefContext) Classes(mask TypeRefMask) []string {
	var out []string
	for _, ref := range c.Types(mask) {
		if ref.Kind == RefClass {
			out = append(out, ref.Name)
		}
	}
	return out
}

// TransferFrom re-indexes a mask of another context into this one, so masks
// of different routines can be unioned.
func (c *TypeRefContext) TransferFrom(other *TypeRefContext, mask TypeRefMask) TypeRefMask {
	if other == c || mask.IsAnyType() {
		return mask
	}
	out := mask & FlagsMask
	for _, ref := range other.Types(mask) {
		if ref.Kind == RefArray && ref.Elem != VoidType {
			ref = ArrayOf(c.TransferFrom(other, ref.Elem))
		}
		i := c.AddToContext(ref)
		if i < 0 {
			return AnyType
		}
		out = out.AddType(i)
	}
	return out
}

// ToString renders mask as a PHP type union such as "int|string".
func (c *TypeRefContext) ToString(mask TypeRefMask) string {
	if mask.IsAnyType() {
		return "mixed"
	}
	if mask.IsVoid() {
		return "void"
	}
	refs := c.Types(mask)
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, c.refName(ref))
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// refName renders typed arrays as "int[]" or "(int|string)[]".
func (c *TypeRefContext) refName(ref TypeRef) string {
	if ref.Kind != RefArray || ref.Elem == VoidType {
		return ref.String()
	}
	elem := c.ToString(ref.Elem)
	if strings.Contains(elem, "|") {
		elem = "(" + elem + ")"
	}
	return elem + "[]"
}
