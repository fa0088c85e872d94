// Package bound holds bound operations: syntax with names classified, access
// kinds decided and a type mask slot on every expression.
package bound

import (
	"phpc/internal/phpsyntax"
	"phpc/internal/resolve"
	"phpc/internal/source"
	"phpc/internal/symbols"
	"phpc/internal/types"
)

// Node is any bound operation.
type Node interface {
	Span() source.Span
}

// Expression is a bound expression. Its type mask only grows across
// analysis passes.
type Expression interface {
	Node
	TypeMask() types.TypeRefMask
	MergeType(types.TypeRefMask)
	exprNode()
}

// Statement is a bound statement.
type Statement interface {
	Node
	stmtNode()
}

type exprBase struct {
	Sp   source.Span
	Mask types.TypeRefMask
}

func (e *exprBase) Span() source.Span             { return e.Sp }
func (e *exprBase) TypeMask() types.TypeRefMask   { return e.Mask }
func (e *exprBase) MergeType(m types.TypeRefMask) { e.Mask = e.Mask.Union(m) }
func (*exprBase) exprNode()                       {}

type stmtBase struct{ Sp source.Span }

func (s *stmtBase) Span() source.Span { return s.Sp }
func (*stmtBase) stmtNode()           {}

// NoSlot marks a variable reference not yet resolved to a slot.
const NoSlot = -1

// Argument is a bound call argument.
type Argument struct {
	Value  Expression
	Unpack bool
}

// Call carries what every call-like operation shares. Resolution and
// Conversions are filled after the analysis converges.
type Call struct {
	Args        []Argument
	Resolution  resolve.Result
	Conversions []resolve.Conversion
	Bound       bool
}

// ResolvedSymbol returns the resolved method or NoMethodID.
func (c *Call) ResolvedSymbol() symbols.MethodID {
	if c.Resolution.Outcome == resolve.Resolved {
		return c.Resolution.Symbol
	}
	return symbols.NoMethodID
}

type (
	Literal struct {
		exprBase
		Kind  phpsyntax.LiteralKind
		Value string
	}
	Variable struct {
		exprBase
		Name   string
		Slot   int
		Access Access
	}
	Assign struct {
		exprBase
		Target Expression
		Value  Expression
		ByRef  bool
	}
	CompoundAssign struct {
		exprBase
		Op     BinaryOp
		Target Expression
		Value  Expression
	}
	IncDec struct {
		exprBase
		Target    Expression
		Increment bool
		Prefix    bool
	}
	BinaryEx struct {
		exprBase
		Op          BinaryOp
		Left, Right Expression
	}
	UnaryEx struct {
		exprBase
		Op      UnaryOp
		Operand Expression
	}
	Conditional struct {
		exprBase
		Cond Expression
		Then Expression // nil for "?:"
		Else Expression
	}
	ArrayItem struct {
		Key    Expression
		Value  Expression
		ByRef  bool
		Unpack bool
	}
	ArrayEx struct {
		exprBase
		Items []ArrayItem
	}
	FieldRef struct {
		exprBase
		Instance Expression
		Name     string
		Access   Access
	}
	ArrayItemRef struct {
		exprBase
		Array  Expression
		Index  Expression // nil for "$a[]"
		Access Access
	}
	GlobalFunctionCall struct {
		exprBase
		Call
		Name string
	}
	IndirectCall struct {
		exprBase
		Call
		Callee Expression
	}
	InstanceMethodCall struct {
		exprBase
		Call
		Instance Expression
		Name     string
	}
	StaticMethodCall struct {
		exprBase
		Call
		// Class is the resolved class name; self and parent are replaced.
		Class      string
		Name       string
		LateStatic bool
		// ParentCall marks "parent::" calls, which may target an abstract
		// slot.
		ParentCall bool
	}
	NewEx struct {
		exprBase
		Call
		Class string
	}
	LambdaUse struct {
		Name  string
		ByRef bool
		// Value reads the captured variable in the enclosing routine.
		Value *Variable
	}
	Lambda struct {
		exprBase
		Syntax *phpsyntax.Closure
		Uses   []LambdaUse
		Static bool
		// Routine is the handle of the routine compiled from Syntax.
		Routine int
	}
	InstanceOf struct {
		exprBase
		Operand Expression
		Class   string
	}
	Isset struct {
		exprBase
		Vars []Expression
	}
	Empty struct {
		exprBase
		Operand Expression
	}
	Cast struct {
		exprBase
		Target  string
		Operand Expression
	}
	Interpolated struct {
		exprBase
		Parts []Expression
	}
	ConstFetch struct {
		exprBase
		Name string
	}
	ClassConst struct {
		exprBase
		Class string
		Name  string
	}
	ThrowEx struct {
		exprBase
		Thrown Expression
	}
	// YieldEx suspends a generator; Key and Value may be nil.
	YieldEx struct {
		exprBase
		Key   Expression
		Value Expression
		From  bool
	}
	// Unsupported stands for constructs the binder does not model.
	Unsupported struct {
		exprBase
		Kind string
	}
)

// IsThis reports whether v is "$this".
func (v *Variable) IsThis() bool { return v.Name == "this" }

type (
	ExpressionStatement struct {
		stmtBase
		X Expression
	}
	ReturnStatement struct {
		stmtBase
		Result Expression
		// Implicit marks the return added at the end of a routine body.
		Implicit bool
	}
	EchoStatement struct {
		stmtBase
		Args []Expression
	}
	UnsetStatement struct {
		stmtBase
		Vars []Expression
	}
	GlobalStatement struct {
		stmtBase
		Vars []*Variable
	}
	StaticVar struct {
		Var     *Variable
		Default Expression
	}
	StaticStatement struct {
		stmtBase
		Vars []StaticVar
	}
	ThrowStatement struct {
		stmtBase
		Thrown Expression
	}
	ExitStatement struct {
		stmtBase
		Status Expression
	}
	// DeclarationStatement is a function or class declared inside a body.
	DeclarationStatement struct {
		stmtBase
		Decl phpsyntax.Stmt
	}
	UnsupportedStatement struct {
		stmtBase
		Kind string
	}
)

// NewReturn builds a return statement; it is exported for the graph builder.
func NewReturn(sp source.Span, result Expression, implicit bool) *ReturnStatement {
	return &ReturnStatement{stmtBase: stmtBase{Sp: sp}, Result: result, Implicit: implicit}
}

// NewExpressionStatement wraps x as a statement.
func NewExpressionStatement(x Expression) *ExpressionStatement {
	return &ExpressionStatement{stmtBase: stmtBase{Sp: x.Span()}, X: x}
}
