package cfg

import "phpc/internal/bound"

// Visitor receives the parts of a graph during Walk.
type Visitor interface {
	// VisitBlock is called on entering a block; returning false skips the
	// block's statements and successors.
	VisitBlock(b *Block) bool
	VisitStatement(s bound.Statement)
	// VisitExpression receives the expressions held by edges: conditions,
	// enumerees, foreach targets, switch values and catch variables.
	VisitExpression(e bound.Expression)
}

// Walk visits the graph depth-first from b: statements in order, then the
// edge expressions, then the successors. It keeps no visited set; a visitor
// on a cyclic graph must stop re-entry through VisitBlock (see NewWalker).
// Nested functions, classes and closures are separate routines and are not
// entered.
func Walk(b *Block, v Visitor) {
	if b == nil || !v.VisitBlock(b) {
		return
	}
	for _, s := range b.Statements {
		v.VisitStatement(s)
	}
	visit := func(e bound.Expression) {
		if e != nil {
			v.VisitExpression(e)
		}
	}
	switch e := b.NextEdge.(type) {
	case *ConditionalEdge:
		visit(e.Condition)
	case *TryCatchEdge:
		for _, c := range e.Catches {
			if c.Variable != nil {
				visit(c.Variable)
			}
		}
	case *ForeachEnumereeEdge:
		visit(e.Enumeree)
	case *ForeachMoveNextEdge:
		visit(e.Key)
		visit(e.Value)
	case *SwitchEdge:
		visit(e.Value)
		for _, c := range e.Cases {
			visit(c.Value)
		}
	}
	for _, next := range b.Successors() {
		Walk(next, v)
	}
}

// Walker decorates a Visitor so every block is visited once.
type Walker struct {
	inner   Visitor
	visited map[*Block]bool
}

// NewWalker wraps v with a visited set.
func NewWalker(v Visitor) *Walker {
	return &Walker{inner: v, visited: make(map[*Block]bool)}
}

func (w *Walker) VisitBlock(b *Block) bool {
	if w.visited[b] {
		return false
	}
	w.visited[b] = true
	return w.inner.VisitBlock(b)
}

func (w *Walker) VisitStatement(s bound.Statement)   { w.inner.VisitStatement(s) }
func (w *Walker) VisitExpression(e bound.Expression) { w.inner.VisitExpression(e) }

// Visited reports whether b was entered.
func (w *Walker) Visited(b *Block) bool { return w.visited[b] }

// WalkGraph walks every block of g once, including blocks that are not
// reachable from Start, in ordinal order of discovery.
func WalkGraph(g *Graph, v Visitor) {
	w := NewWalker(v)
	for _, b := range g.Blocks {
		Walk(b, w)
	}
}

// NodeVisitor adapts a bound.Inspect callback to Visitor: every operation of
// every statement and edge expression is passed to Fn.
type NodeVisitor struct {
	Fn func(bound.Node) bool
}

func (NodeVisitor) VisitBlock(*Block) bool { return true }

func (n NodeVisitor) VisitStatement(s bound.Statement) { bound.Inspect(s, n.Fn) }

func (n NodeVisitor) VisitExpression(e bound.Expression) { bound.Inspect(e, n.Fn) }
