package resolve

import (
	"math"

	"phpc/internal/symbols"
)

const (
	opImplicit = "op_Implicit"
	opExplicit = "op_Explicit"
)

// implicitOperatorNames lists the method names tried for an implicit
// conversion to a type, the well-known operator first.
func implicitOperatorNames(target symbols.SpecialType) []string {
	names := []string{opImplicit}
	switch target {
	case symbols.SpecialBoolean:
		names = append(names, "ToBoolean")
	case symbols.SpecialInt8, symbols.SpecialInt16, symbols.SpecialInt32, symbols.SpecialInt64,
		symbols.SpecialUInt8, symbols.SpecialUInt16, symbols.SpecialUInt32, symbols.SpecialUInt64:
		names = append(names, "ToLong")
	case symbols.SpecialSingle, symbols.SpecialDouble:
		names = append(names, "ToDouble")
	case symbols.SpecialString:
		names = append(names, "ToString")
	case symbols.SpecialPhpString:
		names = append(names, "ToPhpString")
	case symbols.SpecialPhpNumber:
		names = append(names, "ToNumber")
	case symbols.SpecialPhpValue:
		names = append(names, "FromValue", "Create")
	}
	return names
}

// explicitOperatorNames lists the method names tried for an explicit
// conversion.
func explicitOperatorNames(target symbols.SpecialType) []string {
	names := []string{opExplicit}
	switch target {
	case symbols.SpecialPhpArray:
		names = append(names, "ToArray", "AsArray")
	case symbols.SpecialObject:
		names = append(names, "ToClass", "AsObject")
	case symbols.SpecialString:
		names = append(names, "ToStringOrThrow")
	case symbols.SpecialInt64:
		names = append(names, "ToLongOrThrow")
	case symbols.SpecialPhpResource:
		names = append(names, "AsResource")
	}
	return names
}

type operatorCandidate struct {
	method    symbols.MethodID
	cost      int
	costMinor int
}

// searchOperator looks for a conversion method over the base chain of from,
// then over the extension containers. The cheapest candidate wins; ties go
// to the smaller minor cost, then to the first one found.
func (c *Conversions) searchOperator(from, to symbols.TypeID, names []string, opts Options) symbols.MethodID {
	containers := append(c.table.BaseChain(from), c.table.Extensions()...)
	best := operatorCandidate{cost: math.MaxInt, costMinor: math.MaxInt}
	for _, container := range containers {
		ct := c.table.Type(container)
		if ct == nil {
			continue
		}
		for _, name := range names {
			for _, mid := range c.table.MembersNamed(container, name) {
				cand, ok := c.operatorCost(mid, ct, from, to, opts)
				if !ok {
					continue
				}
				if cand.cost < best.cost || (cand.cost == best.cost && cand.costMinor < best.costMinor) {
					best = cand
				}
			}
		}
	}
	return best.method
}

// operatorCost checks the shape of one candidate. Static operators take the
// operand as the single user parameter; instance methods convert their
// receiver and must live on the operand's own base chain.
func (c *Conversions) operatorCost(mid symbols.MethodID, container *symbols.Type, from, to symbols.TypeID, opts Options) (operatorCandidate, bool) {
	m := c.table.Method(mid)
	if m.Access != symbols.Public || m.Generic || m.Invalid || m.Kind == symbols.MethodConstructor || m.Kind == symbols.MethodFieldInitConstructor {
		return operatorCandidate{}, false
	}
	cand := operatorCandidate{method: mid}
	params := m.UserParams()
	sub := Options{ReferenceableReceiver: opts.ReferenceableReceiver}

	if m.Static {
		if len(params) != 1 {
			return operatorCandidate{}, false
		}
		operand := params[0]
		if operand.IsByRef && !opts.ReferenceableReceiver {
			return operatorCandidate{}, false
		}
		conv := c.ClassifyConversionWith(from, operand.Type, sub)
		if !conv.Exists() {
			return operatorCandidate{}, false
		}
		cand.cost += ConvCost(conv, false)
	} else {
		if len(params) != 0 || !c.table.IsA(from, container.ID) {
			return operatorCandidate{}, false
		}
	}

	ret := c.ClassifyConversionWith(m.Return, to, sub)
	if !ret.Exists() {
		return operatorCandidate{}, false
	}
	cand.cost += ConvCost(ret, true)

	if m.HasContextParam() {
		cand.costMinor--
	}
	if container.IsValueType() {
		cand.costMinor++
	}
	return cand, true
}
