package symbols

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldName returns the case-insensitive key of a PHP name. Leading
// namespace separators are dropped.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimPrefix(name, `\`))
}

// SameName compares PHP names case-insensitively.
func SameName(a, b string) bool { return FoldName(a) == FoldName(b) }
