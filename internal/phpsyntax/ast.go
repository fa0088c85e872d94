// Package phpsyntax is the syntax tree consumed by the binder, together with
// the adapter that produces it from tree-sitter-php parse trees.
package phpsyntax

import "phpc/internal/source"

// Node is any syntax node.
type Node interface {
	Span() source.Span
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// At carries the source span of a node.
type At struct{ Sp source.Span }

func (a At) Span() source.Span { return a.Sp }

// File is a parsed script.
type File struct {
	ID    source.FileID
	Path  string
	Stmts []Stmt
	// Errors lists syntax error locations reported by the parser.
	Errors []SyntaxError
}

// SyntaxError is an ERROR or MISSING node of the parse tree.
type SyntaxError struct {
	Span    source.Span
	Missing bool
	Text    string
}

// TypeHint is a declared type: a single name, a nullable name or a union.
type TypeHint struct {
	At
	Names    []string
	Nullable bool
}

// Visibility is a member visibility modifier.
type Visibility uint8

const (
	VisPublic Visibility = iota
	VisProtected
	VisPrivate
)

// Param is a formal parameter.
type Param struct {
	At
	Name     string
	Type     *TypeHint
	Default  Expr
	Variadic bool
	ByRef    bool
}

// Arg is a call argument.
type Arg struct {
	At
	Value  Expr
	Unpack bool
	Name   string // named argument label
}

// ---- statements ----

type (
	ExprStmt struct {
		At
		X Expr
	}
	EchoStmt struct {
		At
		Args []Expr
	}
	ReturnStmt struct {
		At
		Result Expr // nil for a bare return
	}
	ElseIf struct {
		At
		Cond Expr
		Body []Stmt
	}
	IfStmt struct {
		At
		Cond    Expr
		Then    []Stmt
		ElseIfs []ElseIf
		Else    []Stmt
		HasElse bool
	}
	WhileStmt struct {
		At
		Cond Expr
		Body []Stmt
	}
	DoWhileStmt struct {
		At
		Body []Stmt
		Cond Expr
	}
	ForStmt struct {
		At
		Init []Expr
		Cond []Expr
		Step []Expr
		Body []Stmt
	}
	ForeachStmt struct {
		At
		Collection Expr
		Key        Expr // nil without "$k =>"
		Value      Expr
		ByRef      bool
		Body       []Stmt
	}
	SwitchCase struct {
		At
		Value Expr // nil for default
		Body  []Stmt
	}
	SwitchStmt struct {
		At
		Subject Expr
		Cases   []SwitchCase
	}
	CatchClause struct {
		At
		Types []string
		Var   string // empty without a variable
		Body  []Stmt
	}
	TryStmt struct {
		At
		Body       []Stmt
		Catches    []CatchClause
		Finally    []Stmt
		HasFinally bool
	}
	BreakStmt struct {
		At
		Depth int
	}
	ContinueStmt struct {
		At
		Depth int
	}
	BlockStmt struct {
		At
		Stmts []Stmt
	}
	GlobalStmt struct {
		At
		Names []string
	}
	StaticVar struct {
		Name    string
		Default Expr
	}
	StaticStmt struct {
		At
		Vars []StaticVar
	}
	UnsetStmt struct {
		At
		Vars []Expr
	}
	ExitStmt struct {
		At
		Status Expr
	}
	FuncDecl struct {
		At
		Name       string
		Params     []Param
		ReturnType *TypeHint
		Body       []Stmt
		Doc        *DocComment
	}
	MethodDecl struct {
		At
		Name       string
		Params     []Param
		ReturnType *TypeHint
		Body       []Stmt
		HasBody    bool
		Visibility Visibility
		Static     bool
		Abstract   bool
		Final      bool
		Doc        *DocComment
	}
	PropertyDecl struct {
		At
		Name       string
		Type       *TypeHint
		Default    Expr
		Visibility Visibility
		Static     bool
	}
	ClassDecl struct {
		At
		Kind       ClassKind
		Name       string
		Extends    []string // one for classes, many for interfaces
		Implements []string
		Uses       []string // traits
		Abstract   bool
		Final      bool
		Methods    []*MethodDecl
		Properties []*PropertyDecl
	}
	// UnsupportedStmt is a construct the binder does not model.
	UnsupportedStmt struct {
		At
		Kind string
	}
)

// ClassKind distinguishes class-like declarations.
type ClassKind uint8

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindTrait
)

func (*ExprStmt) stmtNode()        {}
func (*EchoStmt) stmtNode()        {}
func (*ReturnStmt) stmtNode()      {}
func (*IfStmt) stmtNode()          {}
func (*WhileStmt) stmtNode()       {}
func (*DoWhileStmt) stmtNode()     {}
func (*ForStmt) stmtNode()         {}
func (*ForeachStmt) stmtNode()     {}
func (*SwitchStmt) stmtNode()      {}
func (*TryStmt) stmtNode()         {}
func (*BreakStmt) stmtNode()       {}
func (*ContinueStmt) stmtNode()    {}
func (*BlockStmt) stmtNode()       {}
func (*GlobalStmt) stmtNode()      {}
func (*StaticStmt) stmtNode()      {}
func (*UnsetStmt) stmtNode()       {}
func (*ExitStmt) stmtNode()        {}
func (*FuncDecl) stmtNode()        {}
func (*ClassDecl) stmtNode()       {}
func (*UnsupportedStmt) stmtNode() {}

// ---- expressions ----

// LiteralKind is the kind of a scalar literal.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

type (
	Variable struct {
		At
		Name string // without "$"
	}
	Literal struct {
		At
		Kind  LiteralKind
		Value string
	}
	Interpolated struct {
		At
		Parts []Expr
	}
	ArrayItem struct {
		At
		Key    Expr
		Value  Expr
		ByRef  bool
		Unpack bool
	}
	ArrayLit struct {
		At
		Items []ArrayItem
	}
	Assign struct {
		At
		Target Expr
		Value  Expr
		ByRef  bool
	}
	CompoundAssign struct {
		At
		Op     string // "+", ".", "??", ...
		Target Expr
		Value  Expr
	}
	IncDec struct {
		At
		Op     string // "++" or "--"
		Prefix bool
		Target Expr
	}
	Binary struct {
		At
		Op   string
		X, Y Expr
	}
	Unary struct {
		At
		Op string // "!", "-", "+", "~", "@"
		X  Expr
	}
	InstanceOf struct {
		At
		X     Expr
		Class string // empty when the class is dynamic
	}
	Cast struct {
		At
		Type string // normalized: int, float, string, bool, array, object, unset
		X    Expr
	}
	Ternary struct {
		At
		Cond Expr
		Then Expr // nil for "?:"
		Else Expr
	}
	Call struct {
		At
		Name string // empty when Func is dynamic
		Func Expr
		Args []Arg
	}
	MethodCall struct {
		At
		Object   Expr
		Name     string // empty when the name is dynamic
		Args     []Arg
		NullSafe bool
	}
	StaticCall struct {
		At
		Class string // "self", "parent", "static" or a class name
		Name  string
		Args  []Arg
	}
	New struct {
		At
		Class string // empty when the class is dynamic
		Args  []Arg
	}
	PropertyFetch struct {
		At
		Object   Expr
		Name     string
		NullSafe bool
	}
	ClassConstFetch struct {
		At
		Class string
		Name  string
	}
	ArrayDim struct {
		At
		X     Expr
		Index Expr // nil for "$a[]"
	}
	ConstFetch struct {
		At
		Name string
	}
	Isset struct {
		At
		Vars []Expr
	}
	Empty struct {
		At
		X Expr
	}
	ClosureUse struct {
		Name  string
		ByRef bool
	}
	Closure struct {
		At
		Params     []Param
		Uses       []ClosureUse
		ReturnType *TypeHint
		Body       []Stmt
		Static     bool
		// Arrow marks "fn() => expr"; the body is a single return.
		Arrow bool
		Doc   *DocComment
	}
	Throw struct {
		At
		X Expr
	}
	// Yield is "yield", "yield v", "yield k => v" or, with From set,
	// "yield from v".
	Yield struct {
		At
		Key   Expr
		Value Expr
		From  bool
	}
	// UnsupportedExpr is a construct the binder does not model.
	UnsupportedExpr struct {
		At
		Kind string
	}
)

func (*Variable) exprNode()        {}
func (*Literal) exprNode()         {}
func (*Interpolated) exprNode()    {}
func (*ArrayLit) exprNode()        {}
func (*Assign) exprNode()          {}
func (*CompoundAssign) exprNode()  {}
func (*IncDec) exprNode()          {}
func (*Binary) exprNode()          {}
func (*Unary) exprNode()           {}
func (*InstanceOf) exprNode()      {}
func (*Cast) exprNode()            {}
func (*Ternary) exprNode()         {}
func (*Call) exprNode()            {}
func (*MethodCall) exprNode()      {}
func (*StaticCall) exprNode()      {}
func (*New) exprNode()             {}
func (*PropertyFetch) exprNode()   {}
func (*ClassConstFetch) exprNode() {}
func (*ArrayDim) exprNode()        {}
func (*ConstFetch) exprNode()      {}
func (*Isset) exprNode()           {}
func (*Empty) exprNode()           {}
func (*Closure) exprNode()         {}
func (*Throw) exprNode()           {}
func (*Yield) exprNode()           {}
func (*UnsupportedExpr) exprNode() {}
