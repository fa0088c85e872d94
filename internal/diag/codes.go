package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Синтаксис (ошибки дерева от парсера)
	SynInfo         Code = 2000
	SynError        Code = 2001
	SynMissingToken Code = 2002

	// Семантика
	SemaInfo               Code = 3000
	SemaUndefinedFunction  Code = 3001
	SemaUndefinedMethod    Code = 3002
	SemaUndefinedType      Code = 3003
	SemaAmbiguousCall      Code = 3004
	SemaInaccessibleMember Code = 3005
	SemaUnresolvedAbstract Code = 3006
	SemaUndefinedVariable  Code = 3007
	SemaUnreachableCode    Code = 3008
	SemaArgumentCount      Code = 3009
	SemaNotYetImplemented  Code = 3010
	SemaDuplicateDecl      Code = 3011
	SemaAbstractCall       Code = 3012
	SemaInheritanceCycle   Code = 3013

	// IO
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	SynInfo:                "Syntax information",
	SynError:               "Syntax error",
	SynMissingToken:        "Missing token",
	SemaInfo:               "Semantic information",
	SemaUndefinedFunction:  "Call to undefined function",
	SemaUndefinedMethod:    "Call to undefined method",
	SemaUndefinedType:      "Type name cannot be resolved",
	SemaAmbiguousCall:      "Call resolved at runtime",
	SemaInaccessibleMember: "Member is not accessible",
	SemaUnresolvedAbstract: "Abstract member is not implemented",
	SemaUndefinedVariable:  "Variable might not be defined",
	SemaUnreachableCode:    "Unreachable code",
	SemaArgumentCount:      "Wrong number of arguments",
	SemaNotYetImplemented:  "Construct not yet implemented",
	SemaDuplicateDecl:      "Duplicate declaration",
	SemaAbstractCall:       "Cannot call abstract method",
	SemaInheritanceCycle:   "Inheritance cycle",
	IOLoadFileError:        "Failed to load file",
}

func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
