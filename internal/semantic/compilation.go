// Package semantic turns parsed files into the host type table and the set
// of routines the analysis runs over.
package semantic

import (
	"fmt"
	"strings"
	"sync"

	"phpc/internal/bound"
	"phpc/internal/diag"
	"phpc/internal/flow"
	"phpc/internal/phpsyntax"
	"phpc/internal/resolve"
	"phpc/internal/source"
	"phpc/internal/symbols"
	"phpc/internal/types"
)

type classSource struct {
	file source.FileID
	decl *phpsyntax.ClassDecl
	id   symbols.TypeID
}

type funcSource struct {
	file        source.FileID
	decl        *phpsyntax.FuncDecl
	conditional bool
}

// Compilation owns the type table and every routine of one program.
type Compilation struct {
	Table    *symbols.Table
	Conv     *resolve.Conversions
	Reporter diag.Reporter

	files     []*phpsyntax.File
	classes   []classSource
	functions []funcSource
	declared  bool

	mu       sync.Mutex
	routines []*Routine
	byMethod map[symbols.MethodID]*Routine
	classOf  map[symbols.TypeID]*phpsyntax.ClassDecl
}

// New creates a compilation with the runtime library loaded. A nil reporter
// drops diagnostics.
func New(reporter diag.Reporter) *Compilation {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	table := symbols.NewTable()
	loadLibrary(table)
	return &Compilation{
		Table:    table,
		Conv:     resolve.NewConversions(table),
		Reporter: reporter,
		byMethod: make(map[symbols.MethodID]*Routine),
		classOf:  make(map[symbols.TypeID]*phpsyntax.ClassDecl),
	}
}

// AddFile registers a parsed file: its main code becomes a routine and its
// declarations are collected for Declare.
func (c *Compilation) AddFile(f *phpsyntax.File) *Routine {
	if c.declared {
		panic("semantic: AddFile after Declare")
	}
	c.files = append(c.files, f)
	main := c.addRoutine(&Routine{
		Name:    "main@" + f.Path,
		Kind:    RoutineMain,
		File:    f.ID,
		Span:    source.Span{File: f.ID},
		Body:    f.Stmts,
		HasBody: true,
		Scope:   resolve.GlobalScope,
	})
	c.collect(f.ID, f.Stmts, false)
	return main
}

// Files returns the registered files.
func (c *Compilation) Files() []*phpsyntax.File { return c.files }

// collect records the function and class declarations reachable from
// stmts. Declarations below the top level of a file are conditional.
func (c *Compilation) collect(file source.FileID, stmts []phpsyntax.Stmt, nested bool) {
	top := make(map[phpsyntax.Stmt]bool, len(stmts))
	if !nested {
		for _, s := range stmts {
			top[s] = true
		}
	}
	phpsyntax.WalkStmts(stmts, func(s phpsyntax.Stmt) bool {
		switch d := s.(type) {
		case *phpsyntax.FuncDecl:
			c.functions = append(c.functions, funcSource{file: file, decl: d, conditional: !top[s]})
			c.collect(file, d.Body, true)
			return false
		case *phpsyntax.ClassDecl:
			c.classes = append(c.classes, classSource{file: file, decl: d})
			for _, m := range d.Methods {
				c.collect(file, m.Body, true)
			}
			return false
		}
		return true
	})
}

func (c *Compilation) addRoutine(r *Routine) *Routine {
	if r.Flow == nil {
		r.Flow = flow.NewContext(nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	r.ID = len(c.routines)
	c.routines = append(c.routines, r)
	if r.Symbol.IsValid() {
		c.byMethod[r.Symbol] = r
	}
	return r
}

// Routines returns a copy of the routine list, in creation order.
func (c *Compilation) Routines() []*Routine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Routine(nil), c.routines...)
}

// Routine returns the routine with the given ID or nil.
func (c *Compilation) Routine(id int) *Routine {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id < 0 || id >= len(c.routines) {
		return nil
	}
	return c.routines[id]
}

// RoutineOf returns the routine compiled for a function or method symbol.
func (c *Compilation) RoutineOf(mid symbols.MethodID) *Routine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byMethod[mid]
}

// ClassDecl returns the declaration behind a user type.
func (c *Compilation) ClassDecl(id symbols.TypeID) *phpsyntax.ClassDecl {
	return c.classOf[id]
}

// UserTypes lists the types declared from source, in declaration order.
func (c *Compilation) UserTypes() []symbols.TypeID {
	out := make([]symbols.TypeID, 0, len(c.classes))
	for _, cs := range c.classes {
		if cs.id.IsValid() {
			out = append(out, cs.id)
		}
	}
	return out
}

// RegisterLambda creates the routine of a closure found while binding
// parent. Safe for concurrent use.
func (c *Compilation) RegisterLambda(parent *Routine, l *bound.Lambda) *Routine {
	if parent == nil || l == nil || l.Syntax == nil {
		panic("semantic: RegisterLambda without a closure")
	}
	return c.addRoutine(&Routine{
		Name:       parent.Name + "{closure}",
		Kind:       RoutineLambda,
		File:       parent.File,
		Span:       l.Span(),
		Params:     l.Syntax.Params,
		ReturnHint: l.Syntax.ReturnType,
		Doc:        l.Syntax.Doc,
		Body:       l.Syntax.Body,
		HasBody:    true,
		Static:     l.Static,
		Class:      parent.Class,
		ClassName:  parent.ClassName,
		ParentName: parent.ParentName,
		Scope:      c.lambdaScope(parent),
		Parent:     parent,
		Lambda:     l,
	})
}

// lambdaScope is the scope a closure binds members from: the class it was
// created in, or the dynamic scope outside classes and inside traits.
func (c *Compilation) lambdaScope(parent *Routine) resolve.Scope {
	ty := c.Table.Type(parent.Class)
	if ty == nil || ty.Kind == symbols.KindTrait {
		return resolve.GlobalScope
	}
	return resolve.ClassScope(parent.Class)
}

// Declare builds the type table from the collected declarations: types,
// then heritage, then members, then functions. It runs once; diagnostics go
// to the reporter and the number of unresolved abstract members is returned.
func (c *Compilation) Declare() int {
	if c.declared {
		return 0
	}
	c.declared = true
	c.declareTypes()
	c.declareHeritage()
	c.breakCycles()
	c.declareMembers()
	c.declareFunctions()
	return c.Table.ReportUnresolvedAbstracts(c.Reporter)
}

func classKind(k phpsyntax.ClassKind) symbols.TypeKind {
	switch k {
	case phpsyntax.ClassKindInterface:
		return symbols.KindInterface
	case phpsyntax.ClassKindTrait:
		return symbols.KindTrait
	}
	return symbols.KindClass
}

func (c *Compilation) declareTypes() {
	for i := range c.classes {
		cs := &c.classes[i]
		d := cs.decl
		kind := classKind(d.Kind)
		id, ok := c.Table.Declare(symbols.Type{
			Name:     d.Name,
			Kind:     kind,
			Abstract: d.Abstract || kind != symbols.KindClass,
			Sealed:   d.Final,
			Span:     d.Span(),
		})
		if !ok {
			diag.ReportError(c.Reporter, diag.SemaDuplicateDecl, d.Span(),
				fmt.Sprintf("cannot redeclare %s %s", kind, d.Name)).
				WithNote(c.Table.Type(id).Span, "previously declared here").
				Emit()
			continue
		}
		cs.id = id
		c.classOf[id] = d
	}
}

func (c *Compilation) lookupType(name string, sp source.Span, what string) (symbols.TypeID, bool) {
	if id, ok := c.Table.Lookup(name); ok {
		return id, true
	}
	diag.ReportError(c.Reporter, diag.SemaUndefinedType, sp,
		fmt.Sprintf("%s %s not found", what, name)).Emit()
	return symbols.NoTypeID, false
}

func (c *Compilation) declareHeritage() {
	object := c.Table.Special(symbols.SpecialObject)
	for _, cs := range c.classes {
		if !cs.id.IsValid() {
			continue
		}
		ty := c.Table.Type(cs.id)
		d := cs.decl
		switch ty.Kind {
		case symbols.KindClass:
			ty.Base = object
			if len(d.Extends) > 0 {
				if base, ok := c.lookupType(d.Extends[0], d.Span(), "class"); ok {
					if bt := c.Table.Type(base); bt.Kind != symbols.KindClass {
						diag.ReportError(c.Reporter, diag.SemaUndefinedType, d.Span(),
							fmt.Sprintf("class %s cannot extend %s %s", d.Name, bt.Kind, bt.Name)).Emit()
					} else {
						ty.Base = base
					}
				}
			}
			ty.Interfaces = c.interfaceList(d.Implements, d)
		case symbols.KindInterface:
			ty.Interfaces = c.interfaceList(d.Extends, d)
		}
	}
}

func (c *Compilation) interfaceList(names []string, d *phpsyntax.ClassDecl) []symbols.TypeID {
	var out []symbols.TypeID
	for _, name := range names {
		id, ok := c.lookupType(name, d.Span(), "interface")
		if !ok {
			continue
		}
		if !c.Table.Type(id).IsInterface() {
			diag.ReportError(c.Reporter, diag.SemaUndefinedType, d.Span(),
				fmt.Sprintf("%s is not an interface", name)).Emit()
			continue
		}
		out = append(out, id)
	}
	return out
}

// breakCycles cuts base chains that loop back; the type table assumes
// acyclic heritage.
func (c *Compilation) breakCycles() {
	object := c.Table.Special(symbols.SpecialObject)
	for _, cs := range c.classes {
		if !cs.id.IsValid() {
			continue
		}
		seen := map[symbols.TypeID]bool{cs.id: true}
		for cur := c.Table.Type(cs.id).Base; cur.IsValid(); cur = c.Table.Type(cur).Base {
			if seen[cur] {
				ty := c.Table.Type(cs.id)
				diag.ReportError(c.Reporter, diag.SemaInheritanceCycle, cs.decl.Span(),
					fmt.Sprintf("class %s inherits from itself", ty.Name)).Emit()
				ty.Base = object
				break
			}
			seen[cur] = true
		}
	}
}

func accessOf(v phpsyntax.Visibility) symbols.Accessibility {
	switch v {
	case phpsyntax.VisPrivate:
		return symbols.Private
	case phpsyntax.VisProtected:
		return symbols.Protected
	}
	return symbols.Public
}

func (c *Compilation) params(ps []phpsyntax.Param, self string) []symbols.Param {
	out := make([]symbols.Param, 0, len(ps))
	for _, p := range ps {
		tid, _ := c.HintType(p.Type, self)
		out = append(out, symbols.Param{
			Name:       p.Name,
			Type:       tid,
			HasDefault: p.Default != nil,
			IsVariadic: p.Variadic,
			IsByRef:    p.ByRef,
		})
	}
	return out
}

func (c *Compilation) returnType(h *phpsyntax.TypeHint, self string) symbols.TypeID {
	tid, _ := c.HintType(h, self)
	return tid
}

func (c *Compilation) declareMembers() {
	for _, cs := range c.classes {
		if !cs.id.IsValid() {
			continue
		}
		for _, m := range cs.decl.Methods {
			c.declareMethod(cs, m)
		}
	}
	// trait members are copied after every type has its own members
	for _, cs := range c.classes {
		if !cs.id.IsValid() || len(cs.decl.Uses) == 0 {
			continue
		}
		c.useTraits(cs)
	}
}

func (c *Compilation) declareMethod(cs classSource, m *phpsyntax.MethodDecl) {
	ty := c.Table.Type(cs.id)
	kind := symbols.MethodOrdinary
	if symbols.SameName(m.Name, "__construct") {
		kind = symbols.MethodConstructor
	}
	abstract := m.Abstract || !m.HasBody
	mid := c.Table.AddMethod(symbols.Method{
		Name:      m.Name,
		Declaring: cs.id,
		Params:    c.params(m.Params, ty.Name),
		Return:    c.returnType(m.ReturnType, ty.Name),
		Access:    accessOf(m.Visibility),
		Kind:      kind,
		Static:    m.Static,
		Abstract:  abstract,
		Virtual:   !m.Static,
		Sealed:    m.Final || ty.Sealed,
		Span:      m.Span(),
	})
	if !m.HasBody {
		return
	}
	scope := resolve.ClassScope(cs.id)
	if ty.Kind == symbols.KindTrait {
		scope = resolve.Scope{Type: cs.id, IsDynamic: true}
	}
	parent := ""
	if len(cs.decl.Extends) > 0 && ty.Kind == symbols.KindClass {
		parent = cs.decl.Extends[0]
	}
	c.addRoutine(&Routine{
		Name:       ty.Name + "::" + m.Name,
		Kind:       RoutineMethod,
		File:       cs.file,
		Span:       m.Span(),
		Params:     m.Params,
		ReturnHint: m.ReturnType,
		Doc:        m.Doc,
		Body:       m.Body,
		HasBody:    true,
		Static:     m.Static,
		Symbol:     mid,
		Class:      cs.id,
		ClassName:  ty.Name,
		ParentName: parent,
		Scope:      scope,
	})
}

// useTraits copies trait methods into the using class unless the class
// declares a member of the same name. Copies share the trait's routine.
func (c *Compilation) useTraits(cs classSource) {
	for _, name := range cs.decl.Uses {
		tid, ok := c.lookupType(name, cs.decl.Span(), "trait")
		if !ok {
			continue
		}
		trait := c.Table.Type(tid)
		if trait.Kind != symbols.KindTrait {
			diag.ReportError(c.Reporter, diag.SemaUndefinedType, cs.decl.Span(),
				fmt.Sprintf("%s is not a trait", name)).Emit()
			continue
		}
		for _, src := range append([]symbols.MethodID(nil), trait.Members...) {
			m := *c.Table.Method(src)
			if len(c.Table.MembersNamed(cs.id, m.Name)) > 0 {
				continue
			}
			m.Declaring = cs.id
			copied := c.Table.AddMethod(m)
			if r := c.RoutineOf(src); r != nil {
				c.mu.Lock()
				c.byMethod[copied] = r
				c.mu.Unlock()
			}
		}
	}
}

func (c *Compilation) declareFunctions() {
	firm := make(map[string]funcSource)
	for _, fs := range c.functions {
		d := fs.decl
		key := symbols.FoldName(d.Name)
		if prev, ok := firm[key]; ok && !fs.conditional {
			diag.ReportError(c.Reporter, diag.SemaDuplicateDecl, d.Span(),
				fmt.Sprintf("cannot redeclare function %s", d.Name)).
				WithNote(prev.decl.Span(), "previously declared here").
				Emit()
			continue
		}
		if !fs.conditional {
			firm[key] = fs
		}
		mid := c.Table.AddMethod(symbols.Method{
			Name:   d.Name,
			Params: c.params(d.Params, ""),
			Return: c.returnType(d.ReturnType, ""),
			Access: symbols.Public,
			Static: true,
			Span:   d.Span(),
		})
		c.addRoutine(&Routine{
			Name:       d.Name,
			Kind:       RoutineFunction,
			File:       fs.file,
			Span:       d.Span(),
			Params:     d.Params,
			ReturnHint: d.ReturnType,
			Doc:        d.Doc,
			Body:       d.Body,
			HasBody:    true,
			Symbol:     mid,
		})
	}
}

// ReturnMaskOf returns the values a call to mid yields, seen from ctx. The
// second result is the callee routine when the mask comes from its
// inferred return type and thus may still grow.
func (c *Compilation) ReturnMaskOf(ctx *types.TypeRefContext, mid symbols.MethodID) (types.TypeRefMask, *Routine) {
	m := c.Table.Method(mid)
	if m == nil {
		return types.AnyType, nil
	}
	r := c.RoutineOf(mid)
	if r == nil {
		return c.HostMask(ctx, m.Return), nil
	}
	if r.ReturnHint != nil {
		return HintMask(ctx, r.ReturnHint, r.ClassName), nil
	}
	if r.Doc != nil && r.Doc.Return != nil {
		return HintMask(ctx, r.Doc.Return, r.ClassName).WithIsHint(true), nil
	}
	if r.Generator {
		return ctx.ClassTypeMask("Generator", false), nil
	}
	return ctx.TransferFrom(r.TypeCtx(), r.ReturnMask()), r
}

// IsClassName reports whether name denotes a declared or library class.
func (c *Compilation) IsClassName(name string) bool {
	if isKeywordHint(name) {
		return false
	}
	_, ok := c.Table.Lookup(strings.TrimPrefix(name, `\`))
	return ok
}
