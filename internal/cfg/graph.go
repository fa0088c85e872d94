package cfg

// Graph is the control-flow graph of one routine. Start is the only entry.
type Graph struct {
	Start  *Block
	Exit   *Block
	Blocks []*Block // ordered by Ordinal; Start first, Exit last
}

// Unreachable returns the blocks with user code that no analyzed path
// reaches. It is meaningful once the analysis converged.
func (g *Graph) Unreachable() []*Block {
	var out []*Block
	for _, b := range g.Blocks {
		if b == g.Exit || b.FlowState != nil || !b.HasCode() {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Len returns the number of blocks.
func (g *Graph) Len() int { return len(g.Blocks) }
