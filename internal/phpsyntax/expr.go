package phpsyntax

import "strings"

// exprSeq flattens sequence expressions ("a, b") into a list.
func (c *converter) exprSeq(nodes []*node) []Expr {
	var out []Expr
	for _, n := range nodes {
		if n.Kind() == "sequence_expression" {
			out = append(out, c.exprSeq(named(n))...)
			continue
		}
		out = append(out, c.expr(n))
	}
	return out
}

func (c *converter) unsupported(n *node) Expr {
	return &UnsupportedExpr{At: c.at(n), Kind: n.Kind()}
}

// expr converts an expression node; nil input yields nil.
func (c *converter) expr(n *node) Expr {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "parenthesized_expression":
		kids := named(n)
		if len(kids) == 0 {
			return c.unsupported(n)
		}
		return c.expr(kids[0])
	case "variable_name":
		return &Variable{At: c.at(n), Name: c.varName(n)}
	case "integer":
		return &Literal{At: c.at(n), Kind: LitInt, Value: c.text(n)}
	case "float":
		return &Literal{At: c.at(n), Kind: LitFloat, Value: c.text(n)}
	case "boolean":
		return &Literal{At: c.at(n), Kind: LitBool, Value: strings.ToLower(c.text(n))}
	case "null":
		return &Literal{At: c.at(n), Kind: LitNull, Value: "null"}
	case "string", "nowdoc", "heredoc":
		return &Literal{At: c.at(n), Kind: LitString, Value: unquote(c.text(n))}
	case "encapsed_string":
		return c.encapsed(n)
	case "name", "qualified_name":
		return c.constFetch(n)
	case "array_creation_expression":
		return c.arrayLit(n)
	case "list_literal":
		return c.listLit(n)
	case "assignment_expression":
		return &Assign{
			At:     c.at(n),
			Target: c.expr(n.ChildByFieldName("left")),
			Value:  c.expr(n.ChildByFieldName("right")),
		}
	case "reference_assignment_expression":
		return &Assign{
			At:     c.at(n),
			Target: c.expr(n.ChildByFieldName("left")),
			Value:  c.expr(n.ChildByFieldName("right")),
			ByRef:  true,
		}
	case "augmented_assignment_expression":
		op := strings.TrimSuffix(c.text(n.ChildByFieldName("operator")), "=")
		return &CompoundAssign{
			At:     c.at(n),
			Op:     op,
			Target: c.expr(n.ChildByFieldName("left")),
			Value:  c.expr(n.ChildByFieldName("right")),
		}
	case "binary_expression":
		return c.binary(n)
	case "unary_op_expression":
		return c.unary(n)
	case "error_suppression_expression":
		kids := named(n)
		if len(kids) == 0 {
			return c.unsupported(n)
		}
		return &Unary{At: c.at(n), Op: "@", X: c.expr(kids[0])}
	case "update_expression":
		return c.update(n)
	case "cast_expression":
		return &Cast{
			At:   c.at(n),
			Type: castType(c.text(n.ChildByFieldName("type"))),
			X:    c.expr(n.ChildByFieldName("value")),
		}
	case "conditional_expression":
		return &Ternary{
			At:   c.at(n),
			Cond: c.expr(n.ChildByFieldName("condition")),
			Then: c.expr(n.ChildByFieldName("body")),
			Else: c.expr(n.ChildByFieldName("alternative")),
		}
	case "function_call_expression":
		return c.call(n)
	case "member_call_expression", "nullsafe_member_call_expression":
		return &MethodCall{
			At:       c.at(n),
			Object:   c.expr(n.ChildByFieldName("object")),
			Name:     c.memberName(n.ChildByFieldName("name")),
			Args:     c.args(n.ChildByFieldName("arguments")),
			NullSafe: n.Kind() == "nullsafe_member_call_expression",
		}
	case "scoped_call_expression":
		return &StaticCall{
			At:    c.at(n),
			Class: shortName(c.text(n.ChildByFieldName("scope"))),
			Name:  c.memberName(n.ChildByFieldName("name")),
			Args:  c.args(n.ChildByFieldName("arguments")),
		}
	case "object_creation_expression":
		return c.newExpr(n)
	case "member_access_expression", "nullsafe_member_access_expression":
		return &PropertyFetch{
			At:       c.at(n),
			Object:   c.expr(n.ChildByFieldName("object")),
			Name:     c.memberName(n.ChildByFieldName("name")),
			NullSafe: n.Kind() == "nullsafe_member_access_expression",
		}
	case "class_constant_access_expression":
		kids := named(n)
		if len(kids) != 2 {
			return c.unsupported(n)
		}
		return &ClassConstFetch{At: c.at(n), Class: shortName(c.text(kids[0])), Name: c.text(kids[1])}
	case "subscript_expression":
		kids := named(n)
		if len(kids) == 0 {
			return c.unsupported(n)
		}
		dim := &ArrayDim{At: c.at(n), X: c.expr(kids[0])}
		if len(kids) > 1 {
			dim.Index = c.expr(kids[1])
		}
		return dim
	case "anonymous_function", "anonymous_function_creation_expression":
		return c.closure(n)
	case "arrow_function":
		return c.arrowFn(n)
	case "throw_expression":
		kids := named(n)
		if len(kids) == 0 {
			return c.unsupported(n)
		}
		return &Throw{At: c.at(n), X: c.expr(kids[0])}
	case "yield_expression":
		return c.yield(n)
	case "print_intrinsic":
		return &Call{At: c.at(n), Name: "print", Args: c.plainArgs(named(n))}
	case "exit_statement":
		return &Call{At: c.at(n), Name: "exit", Args: c.plainArgs(named(n))}
	}
	return c.unsupported(n)
}

func (c *converter) constFetch(n *node) Expr {
	name := shortName(c.text(n))
	switch strings.ToLower(name) {
	case "true", "false":
		return &Literal{At: c.at(n), Kind: LitBool, Value: strings.ToLower(name)}
	case "null":
		return &Literal{At: c.at(n), Kind: LitNull, Value: "null"}
	}
	return &ConstFetch{At: c.at(n), Name: name}
}

// memberName returns the identifier of a member; dynamic names yield "".
func (c *converter) memberName(n *node) string {
	if n == nil || n.Kind() != "name" {
		return ""
	}
	return c.text(n)
}

func (c *converter) binary(n *node) Expr {
	op := c.text(n.ChildByFieldName("operator"))
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if strings.EqualFold(op, "instanceof") {
		io := &InstanceOf{At: c.at(n), X: c.expr(left)}
		if right != nil && (right.Kind() == "name" || right.Kind() == "qualified_name") {
			io.Class = shortName(c.text(right))
		}
		return io
	}
	switch strings.ToLower(op) {
	case "and":
		op = "&&"
	case "or":
		op = "||"
	case "xor":
		op = "xor"
	}
	return &Binary{At: c.at(n), Op: op, X: c.expr(left), Y: c.expr(right)}
}

func (c *converter) unary(n *node) Expr {
	kids := named(n)
	if len(kids) == 0 {
		return c.unsupported(n)
	}
	op := ""
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = c.text(opNode)
	} else if first := n.Child(0); first != nil && !first.IsNamed() {
		op = first.Kind()
	}
	return &Unary{At: c.at(n), Op: op, X: c.expr(kids[len(kids)-1])}
}

func (c *converter) update(n *node) Expr {
	u := &IncDec{At: c.at(n)}
	for i, ch := range children(n) {
		if ch.IsNamed() {
			u.Target = c.expr(ch)
			continue
		}
		if k := ch.Kind(); k == "++" || k == "--" {
			u.Op = k
			u.Prefix = i == 0
		}
	}
	return u
}

func castType(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.Trim(s, "()")))
	switch s {
	case "int", "integer":
		return "int"
	case "bool", "boolean":
		return "bool"
	case "float", "double", "real":
		return "float"
	case "string", "binary":
		return "string"
	}
	return s
}

func (c *converter) call(n *node) Expr {
	fn := n.ChildByFieldName("function")
	args := c.args(n.ChildByFieldName("arguments"))
	call := &Call{At: c.at(n), Args: args}
	if fn != nil && (fn.Kind() == "name" || fn.Kind() == "qualified_name") {
		call.Name = shortName(c.text(fn))
	} else {
		call.Func = c.expr(fn)
	}
	switch strings.ToLower(call.Name) {
	case "isset":
		is := &Isset{At: c.at(n)}
		for _, a := range args {
			is.Vars = append(is.Vars, a.Value)
		}
		return is
	case "empty":
		if len(args) == 1 {
			return &Empty{At: c.at(n), X: args[0].Value}
		}
	}
	return call
}

func (c *converter) args(n *node) []Arg {
	if n == nil {
		return nil
	}
	var out []Arg
	for _, a := range named(n) {
		if a.Kind() != "argument" {
			out = append(out, Arg{At: c.at(a), Value: c.expr(a)})
			continue
		}
		arg := Arg{At: c.at(a)}
		if nm := a.ChildByFieldName("name"); nm != nil {
			arg.Name = c.text(nm)
		}
		for _, v := range named(a) {
			if arg.Name != "" && v.Kind() == "name" && c.text(v) == arg.Name && arg.Value == nil {
				continue
			}
			if v.Kind() == "reference_modifier" {
				continue
			}
			if v.Kind() == "variadic_unpacking" {
				arg.Unpack = true
				if inner := named(v); len(inner) > 0 {
					arg.Value = c.expr(inner[0])
				}
				continue
			}
			arg.Value = c.expr(v)
		}
		if hasChild(a, "...") {
			arg.Unpack = true
		}
		out = append(out, arg)
	}
	return out
}

func (c *converter) plainArgs(nodes []*node) []Arg {
	out := make([]Arg, 0, len(nodes))
	for _, x := range nodes {
		out = append(out, Arg{At: c.at(x), Value: c.expr(x)})
	}
	return out
}

func (c *converter) newExpr(n *node) Expr {
	ne := &New{At: c.at(n)}
	for _, ch := range named(n) {
		switch ch.Kind() {
		case "name", "qualified_name":
			ne.Class = shortName(c.text(ch))
		case "arguments":
			ne.Args = c.args(ch)
		case "anonymous_class", "declaration_list":
			return c.unsupported(n)
		}
	}
	return ne
}

func (c *converter) arrayLit(n *node) Expr {
	lit := &ArrayLit{At: c.at(n)}
	for _, el := range named(n) {
		if el.Kind() != "array_element_initializer" {
			continue
		}
		item := ArrayItem{At: c.at(el)}
		kids := named(el)
		switch {
		case len(kids) == 1 && kids[0].Kind() == "variadic_unpacking":
			item.Unpack = true
			if inner := named(kids[0]); len(inner) > 0 {
				item.Value = c.expr(inner[0])
			}
		case len(kids) == 1 && kids[0].Kind() == "by_ref":
			item.ByRef = true
			if inner := named(kids[0]); len(inner) > 0 {
				item.Value = c.expr(inner[0])
			}
		case len(kids) == 1:
			item.Value = c.expr(kids[0])
		case len(kids) >= 2:
			item.Key = c.expr(kids[0])
			v := kids[len(kids)-1]
			if v.Kind() == "by_ref" {
				item.ByRef = true
				if inner := named(v); len(inner) > 0 {
					v = inner[0]
				}
			}
			item.Value = c.expr(v)
		}
		lit.Items = append(lit.Items, item)
	}
	return lit
}

// listLit converts a destructuring target. Keys and values are siblings
// separated by "=>", so items are paired while scanning.
func (c *converter) listLit(n *node) Expr {
	lit := &ArrayLit{At: c.at(n)}
	keyed := false
	for _, ch := range children(n) {
		if !ch.IsNamed() {
			if ch.Kind() == "=>" {
				keyed = true
			}
			continue
		}
		if ch.Kind() == "comment" {
			continue
		}
		item := ArrayItem{At: c.at(ch)}
		if ch.Kind() == "by_ref" {
			item.ByRef = true
			if inner := named(ch); len(inner) > 0 {
				ch = inner[0]
			}
		}
		item.Value = c.expr(ch)
		if keyed && len(lit.Items) > 0 {
			last := &lit.Items[len(lit.Items)-1]
			last.Key, last.Value, last.ByRef = last.Value, item.Value, item.ByRef
			keyed = false
			continue
		}
		lit.Items = append(lit.Items, item)
	}
	return lit
}

func (c *converter) yield(n *node) Expr {
	y := &Yield{At: c.at(n)}
	kids := named(n)
	if len(kids) == 0 {
		return y
	}
	if kids[0].Kind() != "array_element_initializer" {
		y.From = true
		y.Value = c.expr(kids[0])
		return y
	}
	switch el := named(kids[0]); len(el) {
	case 0:
	case 1:
		y.Value = c.expr(el[0])
	default:
		y.Key = c.expr(el[0])
		y.Value = c.expr(el[len(el)-1])
	}
	return y
}

func (c *converter) closure(n *node) Expr {
	cl := &Closure{
		At:         c.at(n),
		Params:     c.params(n.ChildByFieldName("parameters")),
		ReturnType: c.typeHint(n.ChildByFieldName("return_type")),
		Body:       c.stmtList(n.ChildByFieldName("body")),
		Static:     hasChild(n, "static_modifier") || hasChild(n, "static"),
	}
	if uses := childOfKind(n, "anonymous_function_use_clause"); uses != nil {
		for _, u := range named(uses) {
			switch u.Kind() {
			case "variable_name":
				cl.Uses = append(cl.Uses, ClosureUse{Name: c.varName(u)})
			case "by_ref":
				if inner := named(u); len(inner) > 0 {
					cl.Uses = append(cl.Uses, ClosureUse{Name: c.varName(inner[0]), ByRef: true})
				}
			}
		}
	}
	return cl
}

func (c *converter) arrowFn(n *node) Expr {
	cl := &Closure{
		At:         c.at(n),
		Params:     c.params(n.ChildByFieldName("parameters")),
		ReturnType: c.typeHint(n.ChildByFieldName("return_type")),
		Static:     hasChild(n, "static_modifier") || hasChild(n, "static"),
		Arrow:      true,
	}
	if b := n.ChildByFieldName("body"); b != nil {
		cl.Body = []Stmt{&ReturnStmt{At: c.at(b), Result: c.expr(b)}}
	}
	return cl
}

func (c *converter) encapsed(n *node) Expr {
	var parts []Expr
	for _, ch := range named(n) {
		switch ch.Kind() {
		case "string_content", "string_value", "escape_sequence", "text":
			continue
		}
		parts = append(parts, c.expr(ch))
	}
	if len(parts) == 0 {
		return &Literal{At: c.at(n), Kind: LitString, Value: unquote(c.text(n))}
	}
	return &Interpolated{At: c.at(n), Parts: parts}
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
