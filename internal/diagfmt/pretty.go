package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"phpc/internal/diag"
	"phpc/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := &prettyPrinter{fs: fs, opts: opts}
	p.sevColors = map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan, color.Bold),
	}
	p.accent = color.New(color.FgGreen, color.Bold)
	p.faint = color.New(color.Faint)
	for _, c := range []*color.Color{p.accent, p.faint, p.sevColors[diag.SevError], p.sevColors[diag.SevWarning], p.sevColors[diag.SevInfo]} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	var sb strings.Builder
	for _, d := range items {
		p.diagnostic(&sb, d)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type prettyPrinter struct {
	fs        *source.FileSet
	opts      PrettyOpts
	sevColors map[diag.Severity]*color.Color
	accent    *color.Color
	faint     *color.Color
}

func (p *prettyPrinter) diagnostic(sb *strings.Builder, d diag.Diagnostic) {
	loc := resolve(p.fs, d.Primary)
	sev := p.sevColors[d.Severity].Sprint(d.Severity.String())
	fmt.Fprintf(sb, "%s: %s %s: %s\n", loc, sev, d.Code.ID(), d.Message)
	if p.opts.Context {
		p.snippet(sb, loc)
	}
	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nloc := resolve(p.fs, n.Span)
		fmt.Fprintf(sb, "  %s %s: %s\n", p.faint.Sprint("note:"), nloc, n.Msg)
		if p.opts.Context {
			p.snippet(sb, nloc)
		}
	}
}

// snippet prints the first line of loc and underlines the span on it.
func (p *prettyPrinter) snippet(sb *strings.Builder, loc resolved) {
	if !loc.ok {
		return
	}
	text := loc.line(loc.start.Line)
	if text == "" {
		return
	}
	gutter := fmt.Sprintf("%5d | ", loc.start.Line)
	sb.WriteString(p.faint.Sprint(gutter))
	sb.WriteString(text + "\n")

	startCol := int(loc.start.Col)
	endCol := len(text) + 1
	if loc.end.Line == loc.start.Line && int(loc.end.Col) > startCol {
		endCol = min(int(loc.end.Col), endCol)
	}
	width := max(endCol-startCol, 1)
	pad := strings.Repeat(" ", len(gutter)+startCol-1)
	sb.WriteString(pad + p.accent.Sprint("^"+strings.Repeat("~", width-1)) + "\n")
}
