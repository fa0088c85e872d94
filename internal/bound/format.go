package bound

import (
	"fmt"
	"strings"

	"phpc/internal/phpsyntax"
)

// Format renders n as PHP-like text for graph dumps.
func Format(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Literal:
		switch n.Kind {
		case phpsyntax.LitString:
			fmt.Fprintf(sb, "%q", n.Value)
		default:
			sb.WriteString(n.Value)
		}
	case *Variable:
		sb.WriteString("$" + n.Name)
	case *Assign:
		writeNode(sb, n.Target)
		if n.ByRef {
			sb.WriteString(" =& ")
		} else {
			sb.WriteString(" = ")
		}
		writeNode(sb, n.Value)
	case *CompoundAssign:
		writeNode(sb, n.Target)
		sb.WriteString(" " + n.Op.String() + "= ")
		writeNode(sb, n.Value)
	case *IncDec:
		op := "--"
		if n.Increment {
			op = "++"
		}
		if n.Prefix {
			sb.WriteString(op)
			writeNode(sb, n.Target)
		} else {
			writeNode(sb, n.Target)
			sb.WriteString(op)
		}
	case *BinaryEx:
		writeNode(sb, n.Left)
		sb.WriteString(" " + n.Op.String() + " ")
		writeNode(sb, n.Right)
	case *UnaryEx:
		sb.WriteString(n.Op.String())
		writeNode(sb, n.Operand)
	case *Conditional:
		writeNode(sb, n.Cond)
		if n.Then != nil {
			sb.WriteString(" ? ")
			writeNode(sb, n.Then)
			sb.WriteString(" : ")
		} else {
			sb.WriteString(" ?: ")
		}
		writeNode(sb, n.Else)
	case *ArrayEx:
		sb.WriteString("[")
		for i, it := range n.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if it.Unpack {
				sb.WriteString("...")
			}
			if it.Key != nil {
				writeNode(sb, it.Key)
				sb.WriteString(" => ")
			}
			if it.ByRef {
				sb.WriteString("&")
			}
			writeNode(sb, it.Value)
		}
		sb.WriteString("]")
	case *FieldRef:
		writeNode(sb, n.Instance)
		sb.WriteString("->" + n.Name)
	case *ArrayItemRef:
		writeNode(sb, n.Array)
		sb.WriteString("[")
		if n.Index != nil {
			writeNode(sb, n.Index)
		}
		sb.WriteString("]")
	case *GlobalFunctionCall:
		sb.WriteString(n.Name)
		writeArgs(sb, n.Args)
	case *IndirectCall:
		writeNode(sb, n.Callee)
		writeArgs(sb, n.Args)
	case *InstanceMethodCall:
		writeNode(sb, n.Instance)
		sb.WriteString("->" + n.Name)
		writeArgs(sb, n.Args)
	case *StaticMethodCall:
		sb.WriteString(n.Class + "::" + n.Name)
		writeArgs(sb, n.Args)
	case *NewEx:
		sb.WriteString("new " + n.Class)
		writeArgs(sb, n.Args)
	case *Lambda:
		sb.WriteString("function(...)")
		if len(n.Uses) > 0 {
			names := make([]string, 0, len(n.Uses))
			for _, u := range n.Uses {
				names = append(names, "$"+u.Name)
			}
			sb.WriteString(" use (" + strings.Join(names, ", ") + ")")
		}
	case *InstanceOf:
		writeNode(sb, n.Operand)
		sb.WriteString(" instanceof " + n.Class)
	case *Isset:
		sb.WriteString("isset(")
		writeList(sb, n.Vars)
		sb.WriteString(")")
	case *Empty:
		sb.WriteString("empty(")
		writeNode(sb, n.Operand)
		sb.WriteString(")")
	case *Cast:
		sb.WriteString("(" + n.Target + ")")
		writeNode(sb, n.Operand)
	case *Interpolated:
		sb.WriteString(`"`)
		writeList(sb, n.Parts)
		sb.WriteString(`"`)
	case *ConstFetch:
		sb.WriteString(n.Name)
	case *ClassConst:
		sb.WriteString(n.Class + "::" + n.Name)
	case *ThrowEx:
		sb.WriteString("throw ")
		writeNode(sb, n.Thrown)
	case *YieldEx:
		sb.WriteString("yield")
		if n.From {
			sb.WriteString(" from")
		}
		if n.Key != nil {
			sb.WriteString(" ")
			writeNode(sb, n.Key)
			sb.WriteString(" =>")
		}
		if n.Value != nil {
			sb.WriteString(" ")
			writeNode(sb, n.Value)
		}
	case *Unsupported:
		sb.WriteString("<" + n.Kind + ">")
	case *ExpressionStatement:
		writeNode(sb, n.X)
	case *ReturnStatement:
		sb.WriteString("return")
		if n.Result != nil {
			sb.WriteString(" ")
			writeNode(sb, n.Result)
		}
	case *EchoStatement:
		sb.WriteString("echo ")
		writeList(sb, n.Args)
	case *UnsetStatement:
		sb.WriteString("unset(")
		writeList(sb, n.Vars)
		sb.WriteString(")")
	case *GlobalStatement:
		sb.WriteString("global")
		for i, v := range n.Vars {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" $" + v.Name)
		}
	case *StaticStatement:
		sb.WriteString("static")
		for i, v := range n.Vars {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" $" + v.Var.Name)
		}
	case *ThrowStatement:
		sb.WriteString("throw ")
		writeNode(sb, n.Thrown)
	case *ExitStatement:
		sb.WriteString("exit")
	case *DeclarationStatement:
		switch d := n.Decl.(type) {
		case *phpsyntax.FuncDecl:
			sb.WriteString("function " + d.Name)
		case *phpsyntax.ClassDecl:
			sb.WriteString("class " + d.Name)
		}
	case *UnsupportedStatement:
		sb.WriteString("<" + n.Kind + ">")
	default:
		fmt.Fprintf(sb, "<%T>", n)
	}
}

func writeArgs(sb *strings.Builder, args []Argument) {
	sb.WriteString("(")
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if a.Unpack {
			sb.WriteString("...")
		}
		writeNode(sb, a.Value)
	}
	sb.WriteString(")")
}

func writeList(sb *strings.Builder, xs []Expression) {
	for i, x := range xs {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeNode(sb, x)
	}
}
