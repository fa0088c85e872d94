package bound

// Inspect visits n and its operands depth-first in evaluation order. Lambda
// bodies belong to their own routine and are not entered; the captured
// variables of a lambda are visited. Returning false skips the children.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	each := func(xs ...Expression) {
		for _, x := range xs {
			if x != nil {
				Inspect(x, fn)
			}
		}
	}
	args := func(c *Call) {
		for _, a := range c.Args {
			each(a.Value)
		}
	}
	switch n := n.(type) {
	case *Assign:
		each(n.Value, n.Target)
	case *CompoundAssign:
		each(n.Target, n.Value)
	case *IncDec:
		each(n.Target)
	case *BinaryEx:
		each(n.Left, n.Right)
	case *UnaryEx:
		each(n.Operand)
	case *Conditional:
		each(n.Cond, n.Then, n.Else)
	case *ArrayEx:
		for _, it := range n.Items {
			each(it.Key, it.Value)
		}
	case *FieldRef:
		each(n.Instance)
	case *ArrayItemRef:
		each(n.Array, n.Index)
	case *GlobalFunctionCall:
		args(&n.Call)
	case *IndirectCall:
		each(n.Callee)
		args(&n.Call)
	case *InstanceMethodCall:
		each(n.Instance)
		args(&n.Call)
	case *StaticMethodCall:
		args(&n.Call)
	case *NewEx:
		args(&n.Call)
	case *Lambda:
		for _, u := range n.Uses {
			each(u.Value)
		}
	case *InstanceOf:
		each(n.Operand)
	case *Isset:
		each(n.Vars...)
	case *Empty:
		each(n.Operand)
	case *Cast:
		each(n.Operand)
	case *Interpolated:
		each(n.Parts...)
	case *ThrowEx:
		each(n.Thrown)
	case *YieldEx:
		each(n.Key, n.Value)
	case *ExpressionStatement:
		each(n.X)
	case *ReturnStatement:
		each(n.Result)
	case *EchoStatement:
		each(n.Args...)
	case *UnsetStatement:
		each(n.Vars...)
	case *GlobalStatement:
		for _, v := range n.Vars {
			each(v)
		}
	case *StaticStatement:
		for _, v := range n.Vars {
			each(v.Default, v.Var)
		}
	case *ThrowStatement:
		each(n.Thrown)
	case *ExitStatement:
		each(n.Status)
	}
}
