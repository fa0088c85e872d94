package symbols

import "phpc/internal/source"

// Accessibility is the declared visibility of a member.
type Accessibility uint8

const (
	Public Accessibility = iota
	Protected
	Private
	Internal
	ProtectedAndInternal
)

func (a Accessibility) String() string {
	switch a {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	case Internal:
		return "internal"
	case ProtectedAndInternal:
		return "private protected"
	default:
		return "unknown"
	}
}

// MethodKind distinguishes method shapes.
type MethodKind uint8

const (
	MethodOrdinary MethodKind = iota
	MethodConstructor
	// MethodFieldInitConstructor only initializes fields and is never
	// callable from user code.
	MethodFieldInitConstructor
	MethodOperator
)

// Param is a declared parameter.
type Param struct {
	Name       string
	Type       TypeID
	HasDefault bool
	IsVariadic bool
	IsByRef    bool
	// IsContext marks the implicit runtime context parameter; call sites do
	// not pass it.
	IsContext bool
}

// Method is a method of a type or a global function (Declaring is NoTypeID).
type Method struct {
	ID        MethodID
	Name      string
	Declaring TypeID
	Params    []Param
	Return    TypeID
	Access    Accessibility
	Kind      MethodKind
	Static    bool
	Abstract  bool
	Virtual   bool
	Sealed    bool
	Generic   bool
	// Invalid marks structurally broken signatures.
	Invalid bool
	Span    source.Span
}

// IsFunction reports whether the method is a global function.
func (m *Method) IsFunction() bool { return !m.Declaring.IsValid() }

// IsOverridable reports whether the method can occupy an override slot.
func (m *Method) IsOverridable() bool {
	if m.Static || m.Kind != MethodOrdinary {
		return false
	}
	if m.Access != Public && m.Access != Protected {
		return false
	}
	return m.Abstract || m.Virtual
}

// Arity returns the number of arguments a call site must and may pass,
// excluding context parameters. max is -1 with a variadic tail.
func (m *Method) Arity() (mandatory, max int) {
	for _, p := range m.Params {
		if p.IsContext {
			continue
		}
		if p.IsVariadic {
			return mandatory, -1
		}
		if !p.HasDefault {
			mandatory = max + 1
		}
		max++
	}
	return mandatory, max
}

// UserParams returns the parameters a call site passes.
func (m *Method) UserParams() []Param {
	out := make([]Param, 0, len(m.Params))
	for _, p := range m.Params {
		if !p.IsContext {
			out = append(out, p)
		}
	}
	return out
}

// HasContextParam reports whether the method takes the runtime context.
func (m *Method) HasContextParam() bool {
	for _, p := range m.Params {
		if p.IsContext {
			return true
		}
	}
	return false
}
