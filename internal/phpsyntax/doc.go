package phpsyntax

import "strings"

// DocComment holds the type tags of a "/** ... */" block.
type DocComment struct {
	Params map[string]*TypeHint // keyed by variable name without "$"
	Return *TypeHint
}

// ParamHint returns the @param hint of name, or nil.
func (d *DocComment) ParamHint(name string) *TypeHint {
	if d == nil {
		return nil
	}
	return d.Params[name]
}

// ParseDocComment extracts @param and @return tags. Blocks without either tag
// yield nil.
func ParseDocComment(text string) *DocComment {
	if !strings.HasPrefix(text, "/**") {
		return nil
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	doc := &DocComment{Params: make(map[string]*TypeHint)}
	found := false
	for line := range strings.SplitSeq(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "@param", "@phpstan-param", "@psalm-param":
			hint, name := docParam(fields[1:])
			if hint != nil && name != "" {
				doc.Params[name] = hint
				found = true
			}
		case "@return", "@phpstan-return", "@psalm-return":
			if hint := docType(fields[1]); hint != nil {
				doc.Return = hint
				found = true
			}
		}
	}
	if !found {
		return nil
	}
	return doc
}

// docParam handles both "@param int $x" and "@param $x int".
func docParam(fields []string) (*TypeHint, string) {
	if strings.HasPrefix(fields[0], "$") {
		if len(fields) < 2 {
			return nil, ""
		}
		return docType(fields[1]), strings.TrimPrefix(fields[0], "$")
	}
	if len(fields) < 2 {
		return nil, ""
	}
	name := strings.TrimPrefix(fields[1], "...")
	name = strings.TrimPrefix(name, "&")
	if !strings.HasPrefix(name, "$") {
		return nil, ""
	}
	return docType(fields[0]), strings.TrimPrefix(name, "$")
}

// docType parses "int|string", "?Foo" and "Foo[]" forms; the last keeps its
// suffix. Generic and shape syntax falls back to the outer name.
func docType(s string) *TypeHint {
	if s == "" {
		return nil
	}
	hint := &TypeHint{}
	if strings.HasPrefix(s, "?") {
		hint.Nullable = true
		s = s[1:]
	}
	for part := range strings.SplitSeq(s, "|") {
		if i := strings.IndexAny(part, "<{("); i >= 0 {
			part = part[:i]
		}
		part = strings.TrimPrefix(part, `\`)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, "null") {
			hint.Nullable = true
			continue
		}
		hint.Names = append(hint.Names, part)
	}
	if len(hint.Names) == 0 && !hint.Nullable {
		return nil
	}
	return hint
}
