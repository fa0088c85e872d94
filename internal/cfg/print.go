package cfg

import (
	"fmt"
	"io"
	"strings"

	"phpc/internal/bound"
	"phpc/internal/flow"
)

// Print writes a readable dump of g. With a non-nil ctx the flow state of
// each block and the mask of each statement expression are shown.
func Print(w io.Writer, g *Graph, ctx *flow.Context) error {
	var sb strings.Builder
	for _, b := range g.Blocks {
		fmt.Fprintf(&sb, "#%d %s", b.Ordinal, b.Kind)
		if b.Guard != nil {
			fmt.Fprintf(&sb, " guarded")
		}
		if ctx != nil {
			sb.WriteString(" " + b.FlowState.Format(ctx))
		}
		sb.WriteString("\n")
		for _, s := range b.Statements {
			sb.WriteString("    " + bound.Format(s))
			if ctx != nil {
				if x := statementExpr(s); x != nil {
					sb.WriteString("  : " + ctx.TypeCtx.ToString(x.TypeMask()))
				}
			}
			sb.WriteString("\n")
		}
		if line := edgeLine(b.NextEdge); line != "" {
			sb.WriteString("    " + line + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func statementExpr(s bound.Statement) bound.Expression {
	switch s := s.(type) {
	case *bound.ExpressionStatement:
		return s.X
	case *bound.ReturnStatement:
		return s.Result
	}
	return nil
}

func ordinal(b *Block) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("#%d", b.Ordinal)
}

func edgeLine(e Edge) string {
	switch e := e.(type) {
	case *SimpleEdge:
		return "-> " + ordinal(e.Target)
	case *ConditionalEdge:
		return fmt.Sprintf("if %s -> %s else %s", bound.Format(e.Condition), ordinal(e.True), ordinal(e.False))
	case *TryCatchEdge:
		parts := []string{"try " + ordinal(e.Body)}
		for _, c := range e.Catches {
			parts = append(parts, fmt.Sprintf("catch(%s) %s", strings.Join(c.Types, "|"), ordinal(c.Block)))
		}
		if e.Finally != nil {
			parts = append(parts, "finally "+ordinal(e.Finally))
		}
		parts = append(parts, "end "+ordinal(e.End))
		return strings.Join(parts, " ")
	case *ForeachEnumereeEdge:
		return fmt.Sprintf("foreach %s -> %s", bound.Format(e.Enumeree), ordinal(e.MoveNext))
	case *ForeachMoveNextEdge:
		target := bound.Format(e.Value)
		if e.Key != nil {
			target = bound.Format(e.Key) + " => " + target
		}
		return fmt.Sprintf("next %s -> %s else %s", target, ordinal(e.Body), ordinal(e.End))
	case *SwitchEdge:
		parts := []string{"switch " + bound.Format(e.Value)}
		for _, c := range e.Cases {
			label := "default"
			if c.Value != nil {
				label = "case " + bound.Format(c.Value)
			}
			parts = append(parts, label+" "+ordinal(c.Block))
		}
		parts = append(parts, "end "+ordinal(e.End))
		return strings.Join(parts, " ")
	}
	return ""
}
