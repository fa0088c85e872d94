package analysis

import (
	"phpc/internal/bound"
	"phpc/internal/cfg"
	"phpc/internal/semantic"
)

// ResolveVariables assigns a flow slot to every variable reference of r's
// graph and returns the number of slots in use.
func ResolveVariables(r *semantic.Routine) int {
	if r.CFG == nil {
		panic("analysis: ResolveVariables before Bind of " + r.String())
	}
	cfg.WalkGraph(r.CFG, cfg.NodeVisitor{Fn: func(n bound.Node) bool {
		if v, ok := n.(*bound.Variable); ok {
			v.Slot = r.Flow.Slot(v.Name)
		}
		return true
	}})
	return r.Flow.Len()
}
