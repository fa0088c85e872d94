// Package cfg is the control-flow graph of a routine: blocks of bound
// statements connected by typed edges.
package cfg

import (
	"phpc/internal/bound"
	"phpc/internal/flow"
)

// BlockKind classifies blocks for printing and diagnostics.
type BlockKind uint8

const (
	BlockPlain BlockKind = iota
	BlockStart
	BlockExit
	BlockLoopHead
	BlockMoveNext
	BlockCase
	BlockCatch
	BlockFinally
	// BlockDead holds statements that follow a jump; it has no predecessor.
	BlockDead
)

func (k BlockKind) String() string {
	switch k {
	case BlockStart:
		return "start"
	case BlockExit:
		return "exit"
	case BlockLoopHead:
		return "loop"
	case BlockMoveNext:
		return "movenext"
	case BlockCase:
		return "case"
	case BlockCatch:
		return "catch"
	case BlockFinally:
		return "finally"
	case BlockDead:
		return "dead"
	}
	return "block"
}

// Block is a straight-line run of statements ending in one edge.
type Block struct {
	Ordinal    int
	Kind       BlockKind
	Statements []bound.Statement
	// FlowState is the state reaching the block start; nil until some
	// predecessor reaches it.
	FlowState *flow.State
	// NextEdge is nil for the exit block and after throw or exit.
	NextEdge Edge
	// Guard is the innermost try protecting the block.
	Guard *TryCatchEdge
}

// Successors returns the targets of the block's edge.
func (b *Block) Successors() []*Block {
	if b.NextEdge == nil {
		return nil
	}
	return b.NextEdge.Targets()
}

// HasCode reports whether the block holds statements written by the user.
func (b *Block) HasCode() bool {
	for _, s := range b.Statements {
		if r, ok := s.(*bound.ReturnStatement); ok && r.Implicit {
			continue
		}
		return true
	}
	return false
}

// FirstStatement returns the first user statement or nil.
func (b *Block) FirstStatement() bound.Statement {
	for _, s := range b.Statements {
		if r, ok := s.(*bound.ReturnStatement); ok && r.Implicit {
			continue
		}
		return s
	}
	return nil
}
