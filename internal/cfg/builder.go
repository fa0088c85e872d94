package cfg

import (
	"phpc/internal/bound"
	"phpc/internal/flow"
	"phpc/internal/phpsyntax"
	"phpc/internal/source"
)

type jumpTarget struct {
	breakTo    *Block
	continueTo *Block
}

type builder struct {
	binder *bound.Binder
	blocks []*Block
	exit   *Block
	cur    *Block
	loops  []jumpTarget
	guard  *TryCatchEdge
	end    source.Span
}

// Build splits body into blocks. The start block receives initial as its
// flow state; a body that falls off its end gets an implicit return.
func Build(body []phpsyntax.Stmt, binder *bound.Binder, initial *flow.State) *Graph {
	if binder == nil {
		binder = &bound.Binder{}
	}
	b := &builder{binder: binder}
	start := b.newBlock(BlockStart)
	b.exit = &Block{Kind: BlockExit}
	b.cur = start
	if len(body) > 0 {
		last := body[len(body)-1].Span()
		b.end = source.Span{File: last.File, Start: last.End, End: last.End}
	}
	b.stmts(body)
	if b.cur != nil {
		b.add(bound.NewReturn(b.end, nil, true))
		b.jump(b.exit)
	}
	b.blocks = append(b.blocks, b.exit)
	for i, blk := range b.blocks {
		blk.Ordinal = i
	}
	start.FlowState = initial.Clone()
	return &Graph{Start: start, Exit: b.exit, Blocks: b.blocks}
}

func (b *builder) newBlock(kind BlockKind) *Block {
	blk := &Block{Kind: kind, Guard: b.guard}
	b.blocks = append(b.blocks, blk)
	return blk
}

// current returns the block receiving statements, opening a dead block after
// a jump.
func (b *builder) current() *Block {
	if b.cur == nil {
		b.cur = b.newBlock(BlockDead)
	}
	return b.cur
}

func (b *builder) add(s bound.Statement) {
	blk := b.current()
	blk.Statements = append(blk.Statements, s)
}

// jump ends the current block with an edge to target.
func (b *builder) jump(target *Block) {
	if b.cur != nil {
		b.cur.NextEdge = &SimpleEdge{Target: target}
		b.cur = nil
	}
}

// branch ends the current block with e and continues in next.
func (b *builder) branch(e Edge, next *Block) {
	b.current().NextEdge = e
	b.cur = next
}

func (b *builder) stmts(list []phpsyntax.Stmt) {
	for _, s := range list {
		b.stmt(s)
	}
}

func (b *builder) stmt(s phpsyntax.Stmt) {
	switch s := s.(type) {
	case *phpsyntax.BlockStmt:
		b.stmts(s.Stmts)
	case *phpsyntax.ReturnStmt:
		b.add(b.binder.BindStatement(s))
		b.jump(b.exit)
	case *phpsyntax.ExitStmt:
		b.add(b.binder.BindStatement(s))
		b.terminate()
	case *phpsyntax.ExprStmt:
		st := b.binder.BindStatement(s)
		b.add(st)
		if _, ok := st.(*bound.ThrowStatement); ok {
			b.terminate()
		}
	case *phpsyntax.IfStmt:
		b.ifStmt(s)
	case *phpsyntax.WhileStmt:
		b.whileStmt(s)
	case *phpsyntax.DoWhileStmt:
		b.doWhileStmt(s)
	case *phpsyntax.ForStmt:
		b.forStmt(s)
	case *phpsyntax.ForeachStmt:
		b.foreachStmt(s)
	case *phpsyntax.SwitchStmt:
		b.switchStmt(s)
	case *phpsyntax.TryStmt:
		b.tryStmt(s)
	case *phpsyntax.BreakStmt:
		b.loopJump(s, s.Depth, true)
	case *phpsyntax.ContinueStmt:
		b.loopJump(s, s.Depth, false)
	default:
		b.add(b.binder.BindStatement(s))
	}
}

// terminate ends the current block without a successor.
func (b *builder) terminate() {
	if b.cur != nil {
		b.cur.NextEdge = nil
		b.cur = nil
	}
}

func (b *builder) cond(e phpsyntax.Expr) bound.Expression {
	return b.binder.BindExpr(e, bound.AccessRead)
}

func (b *builder) ifStmt(s *phpsyntax.IfStmt) {
	end := b.newBlock(BlockPlain)
	conds := []phpsyntax.Expr{s.Cond}
	bodies := [][]phpsyntax.Stmt{s.Then}
	for _, ei := range s.ElseIfs {
		conds = append(conds, ei.Cond)
		bodies = append(bodies, ei.Body)
	}
	for i, c := range conds {
		then := b.newBlock(BlockPlain)
		var next *Block
		if i == len(conds)-1 && !s.HasElse {
			next = end
		} else {
			next = b.newBlock(BlockPlain)
		}
		b.branch(&ConditionalEdge{Condition: b.cond(c), True: then, False: next}, then)
		b.stmts(bodies[i])
		b.jump(end)
		b.cur = next
	}
	if s.HasElse {
		b.stmts(s.Else)
		b.jump(end)
	}
	b.cur = end
}

func (b *builder) loop(breakTo, continueTo *Block, body func()) {
	b.loops = append(b.loops, jumpTarget{breakTo: breakTo, continueTo: continueTo})
	body()
	b.loops = b.loops[:len(b.loops)-1]
}

func (b *builder) whileStmt(s *phpsyntax.WhileStmt) {
	head := b.newBlock(BlockLoopHead)
	body := b.newBlock(BlockPlain)
	end := b.newBlock(BlockPlain)
	b.jump(head)
	b.cur = head
	b.branch(&ConditionalEdge{Condition: b.cond(s.Cond), True: body, False: end}, body)
	b.loop(end, head, func() { b.stmts(s.Body) })
	b.jump(head)
	b.cur = end
}

func (b *builder) doWhileStmt(s *phpsyntax.DoWhileStmt) {
	body := b.newBlock(BlockLoopHead)
	check := b.newBlock(BlockPlain)
	end := b.newBlock(BlockPlain)
	b.jump(body)
	b.cur = body
	b.loop(end, check, func() { b.stmts(s.Body) })
	b.jump(check)
	b.cur = check
	b.branch(&ConditionalEdge{Condition: b.cond(s.Cond), True: body, False: end}, end)
}

func (b *builder) exprStmts(xs []phpsyntax.Expr) {
	for _, x := range xs {
		b.add(bound.NewExpressionStatement(b.binder.BindExpr(x, bound.AccessRead)))
	}
}

func (b *builder) forStmt(s *phpsyntax.ForStmt) {
	b.exprStmts(s.Init)
	head := b.newBlock(BlockLoopHead)
	body := b.newBlock(BlockPlain)
	step := b.newBlock(BlockPlain)
	end := b.newBlock(BlockPlain)
	b.jump(head)
	b.cur = head
	if n := len(s.Cond); n > 0 {
		// Only the last condition decides; the others are evaluated for
		// their effects.
		b.exprStmts(s.Cond[:n-1])
		b.branch(&ConditionalEdge{Condition: b.cond(s.Cond[n-1]), True: body, False: end}, body)
	} else {
		b.jump(body)
		b.cur = body
	}
	b.loop(end, step, func() { b.stmts(s.Body) })
	b.jump(step)
	b.cur = step
	b.exprStmts(s.Step)
	b.jump(head)
	b.cur = end
}

func (b *builder) foreachStmt(s *phpsyntax.ForeachStmt) {
	moveNext := b.newBlock(BlockMoveNext)
	body := b.newBlock(BlockPlain)
	end := b.newBlock(BlockPlain)
	enumeree := b.binder.BindExpr(s.Collection, bound.AccessRead)
	if s.ByRef {
		enumeree = b.binder.BindExpr(s.Collection, bound.AccessReadWrite)
	}
	b.branch(&ForeachEnumereeEdge{Enumeree: enumeree, MoveNext: moveNext}, moveNext)
	edge := &ForeachMoveNextEdge{
		Value: b.binder.BindExpr(s.Value, bound.AccessWrite),
		ByRef: s.ByRef,
		Body:  body,
		End:   end,
	}
	if s.Key != nil {
		edge.Key = b.binder.BindExpr(s.Key, bound.AccessWrite)
	}
	b.branch(edge, body)
	b.loop(end, moveNext, func() { b.stmts(s.Body) })
	b.jump(moveNext)
	b.cur = end
}

func (b *builder) switchStmt(s *phpsyntax.SwitchStmt) {
	end := b.newBlock(BlockPlain)
	edge := &SwitchEdge{Value: b.binder.BindExpr(s.Subject, bound.AccessRead), End: end}
	for _, c := range s.Cases {
		edge.Cases = append(edge.Cases, CaseBlock{
			Block: b.newBlock(BlockCase),
			Value: b.binder.BindExpr(c.Value, bound.AccessRead),
		})
	}
	b.branch(edge, nil)
	// A switch counts as a loop for break and continue.
	b.loop(end, end, func() {
		for i, c := range s.Cases {
			// Falling off a case enters the next one.
			b.jump(edge.Cases[i].Block)
			b.cur = edge.Cases[i].Block
			b.stmts(c.Body)
		}
	})
	b.jump(end)
	b.cur = end
}

func (b *builder) tryStmt(s *phpsyntax.TryStmt) {
	edge := &TryCatchEdge{End: b.newBlock(BlockPlain)}
	for _, c := range s.Catches {
		cb := CatchBlock{Block: b.newBlock(BlockCatch), Types: c.Types}
		if c.Var != "" {
			cb.Variable = b.binder.NewVariable(c.Span(), c.Var, bound.AccessWrite)
		}
		edge.Catches = append(edge.Catches, cb)
	}
	if s.HasFinally {
		edge.Finally = b.newBlock(BlockFinally)
	}
	after := edge.End
	if edge.Finally != nil {
		after = edge.Finally
	}

	outer := b.guard
	b.guard = edge
	edge.Body = b.newBlock(BlockPlain)
	b.branch(edge, edge.Body)
	b.stmts(s.Body)
	b.jump(after)
	b.guard = outer

	for i, c := range s.Catches {
		b.cur = edge.Catches[i].Block
		b.stmts(c.Body)
		b.jump(after)
	}
	if edge.Finally != nil {
		b.cur = edge.Finally
		b.stmts(s.Finally)
		b.jump(edge.End)
	}
	b.cur = edge.End
}

func (b *builder) loopJump(s phpsyntax.Stmt, depth int, isBreak bool) {
	if depth < 1 {
		depth = 1
	}
	if depth > len(b.loops) {
		kind := "continue outside loop"
		if isBreak {
			kind = "break outside loop"
		}
		b.add(b.binder.BindStatement(&phpsyntax.UnsupportedStmt{At: phpsyntax.At{Sp: s.Span()}, Kind: kind}))
		b.terminate()
		return
	}
	t := b.loops[len(b.loops)-depth]
	if isBreak {
		b.jump(t.breakTo)
	} else {
		b.jump(t.continueTo)
	}
}
