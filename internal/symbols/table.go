package symbols

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Table is the host type graph: types reference their base and interfaces by
// index. It is populated before analysis and read-only afterwards; only the
// memoized override tables are computed lazily.
type Table struct {
	types     []Type
	methods   []Method
	byName    map[string]TypeID
	functions map[string][]MethodID
	special   [specialCount]TypeID
	ext       []TypeID
	overrides Memo[TypeID, []OverrideInfo]
}

// NewTable creates a table seeded with the special host types.
func NewTable() *Table {
	t := &Table{
		types:     make([]Type, 1, 64), // index 0 reserved for NoTypeID
		methods:   make([]Method, 1, 128),
		byName:    make(map[string]TypeID, 64),
		functions: make(map[string][]MethodID, 64),
	}
	object := t.addSpecial(SpecialObject, KindClass, NoTypeID)
	t.addSpecial(SpecialVoid, KindPrimitive, NoTypeID)
	for s := SpecialBoolean; s <= SpecialDouble; s++ {
		t.addSpecial(s, KindPrimitive, NoTypeID)
	}
	str := t.addSpecial(SpecialString, KindClass, object)
	t.Type(str).Sealed = true
	t.addSpecial(SpecialPhpValue, KindStruct, NoTypeID)
	t.addSpecial(SpecialPhpString, KindClass, object)
	arr := t.addSpecial(SpecialPhpArray, KindClass, object)
	t.Type(arr).IsArray = true
	t.addSpecial(SpecialPhpAlias, KindClass, object)
	t.addSpecial(SpecialPhpResource, KindClass, object)
	t.addSpecial(SpecialPhpNumber, KindStruct, NoTypeID)
	t.addSpecial(SpecialContext, KindClass, object)
	return t
}

func (t *Table) addSpecial(s SpecialType, kind TypeKind, base TypeID) TypeID {
	id, _ := t.Declare(Type{Name: s.String(), Kind: kind, Special: s, Base: base, Library: true})
	t.special[s] = id
	return id
}

// Special returns the ID of a well-known type.
func (t *Table) Special(s SpecialType) TypeID {
	if s >= specialCount {
		return NoTypeID
	}
	return t.special[s]
}

// Is reports whether id is the given special type.
func (t *Table) Is(id TypeID, s SpecialType) bool {
	return id.IsValid() && t.special[s] == id
}

// Declare adds a type. When the name is taken the existing ID is returned
// with ok == false and the table is unchanged.
func (t *Table) Declare(ty Type) (id TypeID, ok bool) {
	key := FoldName(ty.Name)
	if existing, taken := t.byName[key]; taken {
		return existing, false
	}
	n, err := safecast.Conv[uint32](len(t.types))
	if err != nil {
		panic(fmt.Errorf("types arena overflow: %w", err))
	}
	id = TypeID(n)
	ty.ID = id
	t.types = append(t.types, ty)
	t.byName[key] = id
	return id, true
}

// AddMethod adds a method to its declaring type, or a global function when
// Declaring is NoTypeID. Functions may share a name.
func (t *Table) AddMethod(m Method) MethodID {
	n, err := safecast.Conv[uint32](len(t.methods))
	if err != nil {
		panic(fmt.Errorf("methods arena overflow: %w", err))
	}
	id := MethodID(n)
	m.ID = id
	t.methods = append(t.methods, m)
	if m.Declaring.IsValid() {
		owner := t.Type(m.Declaring)
		if owner == nil {
			panic(fmt.Errorf("method %s declared on unknown type %d", m.Name, m.Declaring))
		}
		owner.Members = append(owner.Members, id)
	} else {
		key := FoldName(m.Name)
		t.functions[key] = append(t.functions[key], id)
	}
	return id
}

// AddExtension registers a container searched for conversion operators of
// other types.
func (t *Table) AddExtension(id TypeID) { t.ext = append(t.ext, id) }

// Extensions returns the registered extension containers.
func (t *Table) Extensions() []TypeID { return t.ext }

// Type returns the type or nil for invalid IDs.
func (t *Table) Type(id TypeID) *Type {
	if !id.IsValid() || int(id) >= len(t.types) {
		return nil
	}
	return &t.types[id]
}

// Method returns the method or nil for invalid IDs.
func (t *Table) Method(id MethodID) *Method {
	if !id.IsValid() || int(id) >= len(t.methods) {
		return nil
	}
	return &t.methods[id]
}

// Lookup finds a type by case-insensitive name.
func (t *Table) Lookup(name string) (TypeID, bool) {
	id, ok := t.byName[FoldName(name)]
	return id, ok
}

// Functions returns every global function declared under name.
func (t *Table) Functions(name string) []MethodID {
	return t.functions[FoldName(name)]
}

// TypeIDs lists all types in declaration order.
func (t *Table) TypeIDs() []TypeID {
	out := make([]TypeID, 0, len(t.types)-1)
	for i := 1; i < len(t.types); i++ {
		out = append(out, TypeID(i)) //nolint:gosec // bounded by Declare
	}
	return out
}

// TypeName returns a printable name.
func (t *Table) TypeName(id TypeID) string {
	if ty := t.Type(id); ty != nil {
		return ty.Name
	}
	return "<none>"
}

// MethodName returns "Type::name" or the function name.
func (t *Table) MethodName(id MethodID) string {
	m := t.Method(id)
	if m == nil {
		return "<none>"
	}
	if m.IsFunction() {
		return m.Name
	}
	return t.TypeName(m.Declaring) + "::" + m.Name
}

// IsReference reports whether id is a host reference type.
func (t *Table) IsReference(id TypeID) bool {
	ty := t.Type(id)
	return ty != nil && ty.IsReference()
}

// IsArray reports whether id is an array type.
func (t *Table) IsArray(id TypeID) bool {
	ty := t.Type(id)
	return ty != nil && ty.IsArray
}

// BaseChain returns id followed by its base types, nearest first.
func (t *Table) BaseChain(id TypeID) []TypeID {
	var out []TypeID
	for cur := id; cur.IsValid(); {
		ty := t.Type(cur)
		if ty == nil {
			break
		}
		out = append(out, cur)
		cur = ty.Base
		if len(out) > len(t.types) {
			panic(fmt.Errorf("inheritance cycle through %s", ty.Name))
		}
	}
	return out
}

// AllInterfaces returns every interface implemented by id, directly, through
// base types or through interface inheritance. id itself is not included.
func (t *Table) AllInterfaces(id TypeID) map[TypeID]bool {
	out := make(map[TypeID]bool)
	var visit func(TypeID)
	visit = func(iface TypeID) {
		if out[iface] {
			return
		}
		out[iface] = true
		if ty := t.Type(iface); ty != nil {
			for _, parent := range ty.Interfaces {
				visit(parent)
			}
		}
	}
	for _, cur := range t.BaseChain(id) {
		for _, iface := range t.Type(cur).Interfaces {
			visit(iface)
		}
	}
	delete(out, id)
	return out
}

// IsA reports whether from equals to, derives from it or implements it.
func (t *Table) IsA(from, to TypeID) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	for _, cur := range t.BaseChain(from) {
		if cur == to {
			return true
		}
	}
	if target := t.Type(to); target != nil && target.IsInterface() {
		return t.AllInterfaces(from)[to]
	}
	return false
}

// MembersNamed returns the members of type id named name, own members only.
func (t *Table) MembersNamed(id TypeID, name string) []MethodID {
	ty := t.Type(id)
	if ty == nil {
		return nil
	}
	key := FoldName(name)
	var out []MethodID
	for _, m := range ty.Members {
		if FoldName(t.methods[m].Name) == key {
			out = append(out, m)
		}
	}
	return out
}

// FindMethods looks name up on id and its bases, returning the members of the
// nearest type that declares it. Interfaces are consulted last.
func (t *Table) FindMethods(id TypeID, name string) []MethodID {
	for _, cur := range t.BaseChain(id) {
		if found := t.MembersNamed(cur, name); len(found) > 0 {
			return found
		}
	}
	for _, iface := range SortedIDs(t.AllInterfaces(id)) {
		if found := t.MembersNamed(iface, name); len(found) > 0 {
			return found
		}
	}
	return nil
}

// SignatureEquals compares parameter shapes and return types.
func (t *Table) SignatureEquals(a, b MethodID) bool {
	ma, mb := t.Method(a), t.Method(b)
	if ma == nil || mb == nil {
		return false
	}
	if ma.Return != mb.Return || len(ma.Params) != len(mb.Params) {
		return false
	}
	for i := range ma.Params {
		pa, pb := ma.Params[i], mb.Params[i]
		if pa.Type != pb.Type || pa.IsByRef != pb.IsByRef || pa.IsVariadic != pb.IsVariadic || pa.IsContext != pb.IsContext {
			return false
		}
	}
	return true
}

// SortedIDs returns the keys of set in ascending order.
func SortedIDs(set map[TypeID]bool) []TypeID {
	out := make([]TypeID, 0, len(set))
	for id, ok := range set {
		if ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
