package cfg

import "phpc/internal/bound"

// Edge leaves a block. Exactly one edge ends a block.
type Edge interface {
	Targets() []*Block
	edgeNode()
}

// SimpleEdge jumps unconditionally.
type SimpleEdge struct {
	Target *Block
}

// ConditionalEdge branches on Condition.
type ConditionalEdge struct {
	Condition   bound.Expression
	True, False *Block
}

// CatchBlock is one catch clause of a try.
type CatchBlock struct {
	Block *Block
	Types []string
	// Variable is nil for catch clauses without a variable.
	Variable *bound.Variable
}

// TryCatchEdge enters a try body. Every block created for the body has the
// edge as its Guard.
type TryCatchEdge struct {
	Body    *Block
	Catches []CatchBlock
	Finally *Block // nil without finally
	End     *Block
}

// ForeachEnumereeEdge evaluates the enumerated collection once.
type ForeachEnumereeEdge struct {
	Enumeree bound.Expression
	MoveNext *Block
}

// ForeachMoveNextEdge assigns the next key and value or leaves the loop.
type ForeachMoveNextEdge struct {
	Key   bound.Expression // nil without a key
	Value bound.Expression
	ByRef bool
	Body  *Block
	End   *Block
}

// CaseBlock is one switch case; Value is nil for default.
type CaseBlock struct {
	Block *Block
	Value bound.Expression
}

// SwitchEdge dispatches on Value.
type SwitchEdge struct {
	Value bound.Expression
	Cases []CaseBlock
	End   *Block
}

// HasDefault reports whether one case is the default.
func (e *SwitchEdge) HasDefault() bool {
	for _, c := range e.Cases {
		if c.Value == nil {
			return true
		}
	}
	return false
}

func (e *SimpleEdge) Targets() []*Block      { return []*Block{e.Target} }
func (e *ConditionalEdge) Targets() []*Block { return []*Block{e.True, e.False} }

func (e *TryCatchEdge) Targets() []*Block {
	out := []*Block{e.Body}
	for _, c := range e.Catches {
		out = append(out, c.Block)
	}
	if e.Finally != nil {
		out = append(out, e.Finally)
	}
	return append(out, e.End)
}

func (e *ForeachEnumereeEdge) Targets() []*Block { return []*Block{e.MoveNext} }
func (e *ForeachMoveNextEdge) Targets() []*Block { return []*Block{e.Body, e.End} }

func (e *SwitchEdge) Targets() []*Block {
	out := make([]*Block, 0, len(e.Cases)+1)
	for _, c := range e.Cases {
		out = append(out, c.Block)
	}
	return append(out, e.End)
}

func (*SimpleEdge) edgeNode()          {}
func (*ConditionalEdge) edgeNode()     {}
func (*TryCatchEdge) edgeNode()        {}
func (*ForeachEnumereeEdge) edgeNode() {}
func (*ForeachMoveNextEdge) edgeNode() {}
func (*SwitchEdge) edgeNode()          {}
