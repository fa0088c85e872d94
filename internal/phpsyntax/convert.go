package phpsyntax

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"phpc/internal/source"
)

type node = tree_sitter.Node

type converter struct {
	src  []byte
	file source.FileID
	errs []SyntaxError
}

func offset(v uint) uint32 {
	n, err := safecast.Conv[uint32](v)
	if err != nil {
		panic(fmt.Errorf("source offset overflow: %w", err))
	}
	return n
}

func (c *converter) span(n *node) source.Span {
	return source.Span{File: c.file, Start: offset(n.StartByte()), End: offset(n.EndByte())}
}

func (c *converter) at(n *node) At { return At{Sp: c.span(n)} }

func (c *converter) text(n *node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(c.src)
}

func named(n *node) []*node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*node, 0, count)
	for i := uint(0); i < count; i++ {
		if ch := n.NamedChild(i); ch != nil && ch.Kind() != "comment" {
			out = append(out, ch)
		}
	}
	return out
}

func children(n *node) []*node {
	count := n.ChildCount()
	out := make([]*node, 0, count)
	for i := uint(0); i < count; i++ {
		if ch := n.Child(i); ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

func childOfKind(n *node, kinds ...string) *node {
	for _, ch := range children(n) {
		for _, k := range kinds {
			if ch.Kind() == k {
				return ch
			}
		}
	}
	return nil
}

func hasChild(n *node, kind string) bool { return childOfKind(n, kind) != nil }

func sameNode(a, b *node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

// shortName drops the namespace qualifier of a name.
func shortName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\\'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (c *converter) collectErrors(n *node) {
	if n.IsMissing() {
		c.errs = append(c.errs, SyntaxError{Span: c.span(n), Missing: true, Text: n.Kind()})
		return
	}
	if n.IsError() {
		c.errs = append(c.errs, SyntaxError{Span: c.span(n), Text: c.text(n)})
		return
	}
	if !n.HasError() {
		return
	}
	for _, ch := range children(n) {
		c.collectErrors(ch)
	}
}

// ---- statements ----

// stmtList converts the statement children of n, attaching doc comments to
// the declaration that follows them.
func (c *converter) stmtList(n *node) []Stmt {
	if n == nil {
		return nil
	}
	var out []Stmt
	var doc *DocComment
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		ch := n.NamedChild(i)
		if ch == nil {
			continue
		}
		if ch.Kind() == "comment" {
			doc = ParseDocComment(c.text(ch))
			continue
		}
		out = append(out, c.stmts(ch, doc)...)
		doc = nil
	}
	return out
}

// body converts a statement used as a loop or branch body.
func (c *converter) body(n *node) []Stmt {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "compound_statement", "colon_block":
		return c.stmtList(n)
	}
	return c.stmts(n, nil)
}

func (c *converter) stmts(n *node, doc *DocComment) []Stmt {
	switch n.Kind() {
	case "php_tag", "text_interpolation", "text", "empty_statement", "namespace_use_declaration",
		"declare_statement", "ERROR":
		return nil
	case "namespace_definition":
		return c.stmtList(n.ChildByFieldName("body"))
	case "compound_statement":
		return []Stmt{&BlockStmt{At: c.at(n), Stmts: c.stmtList(n)}}
	case "colon_block":
		return c.stmtList(n)
	}
	if s := c.stmt(n, doc); s != nil {
		return []Stmt{s}
	}
	return nil
}

func (c *converter) stmt(n *node, doc *DocComment) Stmt {
	switch n.Kind() {
	case "expression_statement":
		kids := named(n)
		if len(kids) == 0 {
			return nil
		}
		x := c.expr(kids[0])
		if cl, ok := x.(*Closure); ok && cl.Doc == nil {
			cl.Doc = doc
		}
		return &ExprStmt{At: c.at(n), X: x}
	case "echo_statement":
		return &EchoStmt{At: c.at(n), Args: c.exprSeq(named(n))}
	case "return_statement":
		ret := &ReturnStmt{At: c.at(n)}
		if kids := named(n); len(kids) > 0 {
			ret.Result = c.expr(kids[0])
		}
		return ret
	case "if_statement":
		return c.ifStmt(n)
	case "while_statement":
		return &WhileStmt{
			At:   c.at(n),
			Cond: c.expr(n.ChildByFieldName("condition")),
			Body: c.body(n.ChildByFieldName("body")),
		}
	case "do_statement":
		return &DoWhileStmt{
			At:   c.at(n),
			Body: c.body(n.ChildByFieldName("body")),
			Cond: c.expr(n.ChildByFieldName("condition")),
		}
	case "for_statement":
		return c.forStmt(n)
	case "foreach_statement":
		return c.foreachStmt(n)
	case "switch_statement":
		return c.switchStmt(n)
	case "try_statement":
		return c.tryStmt(n)
	case "break_statement":
		return &BreakStmt{At: c.at(n), Depth: c.depth(n)}
	case "continue_statement":
		return &ContinueStmt{At: c.at(n), Depth: c.depth(n)}
	case "unset_statement":
		return &UnsetStmt{At: c.at(n), Vars: c.exprSeq(named(n))}
	case "global_declaration":
		g := &GlobalStmt{At: c.at(n)}
		for _, v := range named(n) {
			if v.Kind() == "variable_name" {
				g.Names = append(g.Names, c.varName(v))
			}
		}
		return g
	case "function_static_declaration":
		s := &StaticStmt{At: c.at(n)}
		for _, d := range named(n) {
			if d.Kind() != "static_variable_declaration" {
				continue
			}
			sv := StaticVar{Name: c.varName(d.ChildByFieldName("name"))}
			if v := d.ChildByFieldName("value"); v != nil {
				sv.Default = c.expr(v)
			}
			s.Vars = append(s.Vars, sv)
		}
		return s
	case "exit_statement":
		e := &ExitStmt{At: c.at(n)}
		if kids := named(n); len(kids) > 0 {
			e.Status = c.expr(kids[0])
		}
		return e
	case "function_definition":
		return c.funcDecl(n, doc)
	case "class_declaration", "interface_declaration", "trait_declaration":
		return c.classDecl(n)
	}
	return &UnsupportedStmt{At: c.at(n), Kind: n.Kind()}
}

func (c *converter) depth(n *node) int {
	kids := named(n)
	if len(kids) == 0 || kids[0].Kind() != "integer" {
		return 1
	}
	d := 0
	for _, r := range c.text(kids[0]) {
		if r < '0' || r > '9' {
			return 1
		}
		d = d*10 + int(r-'0')
	}
	if d < 1 {
		return 1
	}
	return d
}

func (c *converter) ifStmt(n *node) Stmt {
	s := &IfStmt{
		At:   c.at(n),
		Cond: c.expr(n.ChildByFieldName("condition")),
		Then: c.body(n.ChildByFieldName("body")),
	}
	for _, ch := range named(n) {
		switch ch.Kind() {
		case "else_if_clause":
			s.ElseIfs = append(s.ElseIfs, ElseIf{
				At:   c.at(ch),
				Cond: c.expr(ch.ChildByFieldName("condition")),
				Body: c.body(ch.ChildByFieldName("body")),
			})
		case "else_clause":
			s.HasElse = true
			body := ch.ChildByFieldName("body")
			if body == nil {
				if kids := named(ch); len(kids) > 0 {
					body = kids[len(kids)-1]
				}
			}
			// "else if" parses as an else clause wrapping an if statement.
			s.Else = c.body(body)
		}
	}
	return s
}

// forStmt splits the header on ";" tokens so it does not depend on field
// names that differ between grammar releases.
func (c *converter) forStmt(n *node) Stmt {
	s := &ForStmt{At: c.at(n)}
	section := 0
	inHeader := false
	var bodyNode *node
	for _, ch := range children(n) {
		switch {
		case !ch.IsNamed() && ch.Kind() == "(" && !inHeader && section == 0:
			inHeader = true
		case !ch.IsNamed() && ch.Kind() == ";" && inHeader:
			section++
		case !ch.IsNamed() && ch.Kind() == ")" && inHeader:
			inHeader = false
			section = 3
		case ch.IsNamed() && ch.Kind() != "comment":
			if !inHeader {
				bodyNode = ch
				continue
			}
			xs := c.exprSeq([]*node{ch})
			switch section {
			case 0:
				s.Init = append(s.Init, xs...)
			case 1:
				s.Cond = append(s.Cond, xs...)
			default:
				s.Step = append(s.Step, xs...)
			}
		}
	}
	if b := n.ChildByFieldName("body"); b != nil {
		bodyNode = b
	}
	s.Body = c.body(bodyNode)
	return s
}

func (c *converter) foreachStmt(n *node) Stmt {
	s := &ForeachStmt{At: c.at(n)}
	kids := named(n)
	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil && len(kids) > 2 {
		bodyNode = kids[len(kids)-1]
	}
	if len(kids) > 0 {
		s.Collection = c.expr(kids[0])
	}
	if len(kids) > 1 {
		target := kids[1]
		switch target.Kind() {
		case "pair", "foreach_pair":
			parts := named(target)
			if len(parts) == 2 {
				s.Key = c.expr(parts[0])
				s.Value, s.ByRef = c.foreachValue(parts[1])
			}
		default:
			s.Value, s.ByRef = c.foreachValue(target)
		}
	}
	s.Body = c.body(bodyNode)
	return s
}

func (c *converter) foreachValue(n *node) (Expr, bool) {
	if n.Kind() == "by_ref" {
		if kids := named(n); len(kids) > 0 {
			return c.expr(kids[0]), true
		}
	}
	return c.expr(n), false
}

func (c *converter) switchStmt(n *node) Stmt {
	s := &SwitchStmt{At: c.at(n), Subject: c.expr(n.ChildByFieldName("condition"))}
	block := n.ChildByFieldName("body")
	if block == nil {
		block = childOfKind(n, "switch_block")
	}
	for _, ch := range named(block) {
		switch ch.Kind() {
		case "case_statement":
			valueNode := ch.ChildByFieldName("value")
			sc := SwitchCase{At: c.at(ch), Value: c.expr(valueNode)}
			for _, st := range named(ch) {
				if sameNode(st, valueNode) {
					continue
				}
				sc.Body = append(sc.Body, c.stmts(st, nil)...)
			}
			s.Cases = append(s.Cases, sc)
		case "default_statement":
			sc := SwitchCase{At: c.at(ch)}
			for _, st := range named(ch) {
				sc.Body = append(sc.Body, c.stmts(st, nil)...)
			}
			s.Cases = append(s.Cases, sc)
		}
	}
	return s
}

func (c *converter) tryStmt(n *node) Stmt {
	s := &TryStmt{At: c.at(n), Body: c.body(n.ChildByFieldName("body"))}
	for _, ch := range named(n) {
		switch ch.Kind() {
		case "catch_clause":
			cc := CatchClause{At: c.at(ch), Body: c.body(ch.ChildByFieldName("body"))}
			if tl := ch.ChildByFieldName("type"); tl != nil {
				cc.Types = c.typeNames(tl)
			}
			if v := ch.ChildByFieldName("name"); v != nil {
				cc.Var = c.varName(v)
			}
			s.Catches = append(s.Catches, cc)
		case "finally_clause":
			s.HasFinally = true
			s.Finally = c.body(ch.ChildByFieldName("body"))
			if s.Finally == nil {
				if b := childOfKind(ch, "compound_statement"); b != nil {
					s.Finally = c.stmtList(b)
				}
			}
		}
	}
	return s
}

// ---- declarations ----

func (c *converter) funcDecl(n *node, doc *DocComment) Stmt {
	return &FuncDecl{
		At:         c.at(n),
		Name:       c.text(n.ChildByFieldName("name")),
		Params:     c.params(n.ChildByFieldName("parameters")),
		ReturnType: c.typeHint(n.ChildByFieldName("return_type")),
		Body:       c.stmtList(n.ChildByFieldName("body")),
		Doc:        doc,
	}
}

func (c *converter) classDecl(n *node) Stmt {
	d := &ClassDecl{At: c.at(n), Name: c.text(n.ChildByFieldName("name"))}
	switch n.Kind() {
	case "interface_declaration":
		d.Kind = ClassKindInterface
	case "trait_declaration":
		d.Kind = ClassKindTrait
	}
	for _, ch := range children(n) {
		switch ch.Kind() {
		case "abstract_modifier", "abstract":
			d.Abstract = true
		case "final_modifier", "final":
			d.Final = true
		case "base_clause":
			d.Extends = append(d.Extends, c.typeNames(ch)...)
		case "class_interface_clause":
			d.Implements = append(d.Implements, c.typeNames(ch)...)
		}
	}
	var doc *DocComment
	for _, m := range c.declChildren(n.ChildByFieldName("body")) {
		switch m.Kind() {
		case "comment":
			doc = ParseDocComment(c.text(m))
			continue
		case "method_declaration":
			d.Methods = append(d.Methods, c.methodDecl(m, doc, d.Kind == ClassKindInterface))
		case "property_declaration":
			d.Properties = append(d.Properties, c.propertyDecls(m)...)
		case "use_declaration":
			d.Uses = append(d.Uses, c.typeNames(m)...)
		}
		doc = nil
	}
	return d
}

func (c *converter) declChildren(n *node) []*node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*node, 0, count)
	for i := uint(0); i < count; i++ {
		if ch := n.NamedChild(i); ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

func (c *converter) methodDecl(n *node, doc *DocComment, inInterface bool) *MethodDecl {
	m := &MethodDecl{
		At:         c.at(n),
		Name:       c.text(n.ChildByFieldName("name")),
		Params:     c.params(n.ChildByFieldName("parameters")),
		ReturnType: c.typeHint(n.ChildByFieldName("return_type")),
		Doc:        doc,
	}
	for _, ch := range children(n) {
		switch ch.Kind() {
		case "visibility_modifier":
			m.Visibility = visibility(c.text(ch))
		case "static_modifier":
			m.Static = true
		case "abstract_modifier":
			m.Abstract = true
		case "final_modifier":
			m.Final = true
		}
	}
	if b := n.ChildByFieldName("body"); b != nil {
		m.HasBody = true
		m.Body = c.stmtList(b)
	}
	if inInterface {
		m.Abstract = true
	}
	return m
}

func visibility(s string) Visibility {
	switch strings.ToLower(s) {
	case "private":
		return VisPrivate
	case "protected":
		return VisProtected
	}
	return VisPublic
}

func (c *converter) propertyDecls(n *node) []*PropertyDecl {
	var vis Visibility
	static := false
	var hint *TypeHint
	for _, ch := range children(n) {
		switch ch.Kind() {
		case "visibility_modifier":
			vis = visibility(c.text(ch))
		case "static_modifier":
			static = true
		}
	}
	if t := n.ChildByFieldName("type"); t != nil {
		hint = c.typeHint(t)
	}
	var out []*PropertyDecl
	for _, el := range named(n) {
		if el.Kind() != "property_element" {
			continue
		}
		p := &PropertyDecl{At: c.at(el), Type: hint, Visibility: vis, Static: static}
		if nm := el.ChildByFieldName("name"); nm != nil {
			p.Name = c.varName(nm)
		} else if v := childOfKind(el, "variable_name"); v != nil {
			p.Name = c.varName(v)
		}
		if dv := el.ChildByFieldName("default_value"); dv != nil {
			p.Default = c.expr(dv)
		}
		out = append(out, p)
	}
	return out
}

func (c *converter) params(n *node) []Param {
	var out []Param
	for _, p := range named(n) {
		switch p.Kind() {
		case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
		default:
			continue
		}
		param := Param{
			At:       c.at(p),
			Name:     c.varName(p.ChildByFieldName("name")),
			Type:     c.typeHint(p.ChildByFieldName("type")),
			Variadic: p.Kind() == "variadic_parameter",
			ByRef:    hasChild(p, "reference_modifier") || hasChild(p, "&"),
		}
		if dv := p.ChildByFieldName("default_value"); dv != nil {
			param.Default = c.expr(dv)
		}
		out = append(out, param)
	}
	return out
}

// typeHint converts a type node; nil input yields nil.
func (c *converter) typeHint(n *node) *TypeHint {
	if n == nil {
		return nil
	}
	h := &TypeHint{At: c.at(n)}
	c.fillHint(h, n)
	if len(h.Names) == 0 && !h.Nullable {
		return nil
	}
	return h
}

func (c *converter) fillHint(h *TypeHint, n *node) {
	switch n.Kind() {
	case "optional_type":
		h.Nullable = true
	case "primitive_type", "name", "qualified_name", "bottom_type", "relative_scope":
		name := shortName(c.text(n))
		if strings.EqualFold(name, "null") {
			h.Nullable = true
			return
		}
		h.Names = append(h.Names, name)
		return
	}
	for _, ch := range named(n) {
		c.fillHint(h, ch)
	}
}

// typeNames collects the class names below n (base clauses, catch types).
func (c *converter) typeNames(n *node) []string {
	var out []string
	for _, ch := range named(n) {
		switch ch.Kind() {
		case "name", "qualified_name":
			out = append(out, shortName(c.text(ch)))
		case "named_type", "type_list":
			out = append(out, c.typeNames(ch)...)
		}
	}
	return out
}

func (c *converter) varName(n *node) string {
	if n == nil {
		return ""
	}
	return strings.TrimPrefix(c.text(n), "$")
}
