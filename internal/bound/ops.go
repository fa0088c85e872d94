package bound

// BinaryOp is a binary operator.
type BinaryOp uint8

const (
	OpInvalid BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpConcat
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpEq
	OpNotEq
	OpIdentical
	OpNotIdentical
	OpLt
	OpLe
	OpGt
	OpGe
	OpSpaceship
	OpCoalesce
)

var binaryOpText = [...]string{
	OpInvalid:      "?",
	OpAdd:          "+",
	OpSub:          "-",
	OpMul:          "*",
	OpDiv:          "/",
	OpMod:          "%",
	OpPow:          "**",
	OpConcat:       ".",
	OpBitAnd:       "&",
	OpBitOr:        "|",
	OpBitXor:       "^",
	OpShl:          "<<",
	OpShr:          ">>",
	OpAnd:          "&&",
	OpOr:           "||",
	OpXor:          "xor",
	OpEq:           "==",
	OpNotEq:        "!=",
	OpIdentical:    "===",
	OpNotIdentical: "!==",
	OpLt:           "<",
	OpLe:           "<=",
	OpGt:           ">",
	OpGe:           ">=",
	OpSpaceship:    "<=>",
	OpCoalesce:     "??",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp maps operator text to a BinaryOp; unknown text yields OpInvalid.
func ParseBinaryOp(s string) BinaryOp {
	switch s {
	case "<>":
		return OpNotEq
	case "and":
		return OpAnd
	case "or":
		return OpOr
	}
	for i, text := range binaryOpText {
		if i != int(OpInvalid) && text == s {
			return BinaryOp(i)
		}
	}
	return OpInvalid
}

// IsArithmetic reports operators whose result is a number.
func (op BinaryOp) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return true
	}
	return false
}

// IsComparison reports operators whose result is a boolean.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNotEq, OpIdentical, OpNotIdentical, OpLt, OpLe, OpGt, OpGe, OpAnd, OpOr, OpXor:
		return true
	}
	return false
}

// UnaryOp is a prefix operator.
type UnaryOp uint8

const (
	UnaryInvalid UnaryOp = iota
	UnaryNot
	UnaryNeg
	UnaryPlus
	UnaryBitNot
	UnarySilence
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNot:
		return "!"
	case UnaryNeg:
		return "-"
	case UnaryPlus:
		return "+"
	case UnaryBitNot:
		return "~"
	case UnarySilence:
		return "@"
	}
	return "?"
}

// ParseUnaryOp maps operator text to a UnaryOp.
func ParseUnaryOp(s string) UnaryOp {
	switch s {
	case "!":
		return UnaryNot
	case "-":
		return UnaryNeg
	case "+":
		return UnaryPlus
	case "~":
		return UnaryBitNot
	case "@":
		return UnarySilence
	}
	return UnaryInvalid
}

// Access describes how an expression uses a variable.
type Access uint8

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
	// AccessQuiet is a read that tolerates undefined variables (isset, empty, ??).
	AccessQuiet
	AccessUnset
)

func (a Access) String() string {
	switch a {
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "readwrite"
	case AccessQuiet:
		return "quiet"
	case AccessUnset:
		return "unset"
	}
	return "read"
}

// IsRead reports whether the access observes the previous value.
func (a Access) IsRead() bool { return a == AccessRead || a == AccessReadWrite }

// IsWrite reports whether the access assigns the variable.
func (a Access) IsWrite() bool { return a == AccessWrite || a == AccessReadWrite }
