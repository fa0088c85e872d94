package resolve

import "phpc/internal/symbols"

// Scope is the static scope a member is referenced from.
type Scope struct {
	// Type is the class whose code makes the reference, NoTypeID outside
	// classes.
	Type symbols.TypeID
	// IsDynamic marks scopes whose class is only known at runtime: global
	// code, closures outside classes and traits.
	IsDynamic bool
}

// GlobalScope is the scope of top-level code.
var GlobalScope = Scope{IsDynamic: true}

// ClassScope is the scope of code inside class t.
func ClassScope(t symbols.TypeID) Scope { return Scope{Type: t} }

// IsAccessible reports whether m can be bound statically from scope. Dynamic
// scopes skip the visibility check; runtime dispatch re-checks it.
func IsAccessible(table *symbols.Table, m *symbols.Method, scope Scope) bool {
	if m == nil || m.Kind == symbols.MethodFieldInitConstructor {
		return false
	}
	switch m.Access {
	case symbols.Internal, symbols.ProtectedAndInternal:
		return false
	}
	if scope.IsDynamic {
		return true
	}
	switch m.Access {
	case symbols.Private:
		return m.Declaring.IsValid() && scope.Type == m.Declaring
	case symbols.Protected:
		if !scope.Type.IsValid() {
			return false
		}
		return table.IsA(scope.Type, m.Declaring) || table.IsA(m.Declaring, scope.Type)
	default:
		return true
	}
}
