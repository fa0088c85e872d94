package diagfmt

import (
	"fmt"
	"strings"

	"phpc/internal/source"
)

// resolved is a span mapped to a file of the set. ok is false for spans that
// point nowhere, such as load failures reported before any file was read.
type resolved struct {
	file       *source.File
	start, end source.LineCol
	ok         bool
}

func resolve(fs *source.FileSet, sp source.Span) resolved {
	if fs == nil || int(sp.File) >= fs.Len() {
		return resolved{}
	}
	start, end := fs.Resolve(sp)
	return resolved{file: fs.Get(sp.File), start: start, end: end, ok: true}
}

func (r resolved) String() string {
	if !r.ok {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", r.file.Path, r.start.Line, r.start.Col)
}

// line returns the text of the 1-based line n without its newline. LineIdx
// holds the offsets of the newline characters.
func (r resolved) line(n uint32) string {
	if !r.ok || n == 0 || int(n) > len(r.file.LineIdx)+1 {
		return ""
	}
	var start uint32
	if n > 1 {
		start = r.file.LineIdx[n-2] + 1
	}
	end := uint32(len(r.file.Content)) //nolint:gosec // file size checked by FileSet.Add
	if int(n) <= len(r.file.LineIdx) {
		end = r.file.LineIdx[n-1]
	}
	return strings.TrimRight(string(r.file.Content[start:end]), "\r")
}
