package phpsyntax

import (
	"context"
	"fmt"
	"runtime"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	"golang.org/x/sync/errgroup"

	"phpc/internal/diag"
	"phpc/internal/source"
)

// Parser wraps a tree-sitter parser configured for PHP. A Parser is not safe
// for concurrent use; create one per worker.
type Parser struct {
	ts *tree_sitter.Parser
}

// NewParser creates a PHP parser.
func NewParser() (*Parser, error) {
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())); err != nil {
		p.Close()
		return nil, fmt.Errorf("set php language: %w", err)
	}
	return &Parser{ts: p}, nil
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	if p.ts != nil {
		p.ts.Close()
		p.ts = nil
	}
}

// Parse converts content into a File. Syntax errors do not fail the parse;
// they are collected in File.Errors.
func (p *Parser) Parse(id source.FileID, path string, content []byte) (*File, error) {
	tree := p.ts.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: parser returned no tree", path)
	}
	defer tree.Close()

	c := &converter{src: content, file: id}
	root := tree.RootNode()
	f := &File{ID: id, Path: path}
	c.collectErrors(root)
	f.Stmts = c.stmtList(root)
	f.Errors = c.errs
	return f, nil
}

// Parse is a convenience wrapper that parses one file with a fresh parser.
func Parse(id source.FileID, path string, content []byte) (*File, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Parse(id, path, content)
}

// ParseAll parses every file of the set in parallel. The result is indexed
// like ids. jobs <= 0 uses GOMAXPROCS.
func ParseAll(ctx context.Context, fs *source.FileSet, ids []source.FileID, jobs int) ([]*File, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(ids) {
		jobs = len(ids)
	}
	out := make([]*File, len(ids))
	next := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(next)
		for i := range ids {
			select {
			case next <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for range jobs {
		g.Go(func() error {
			p, err := NewParser()
			if err != nil {
				return err
			}
			defer p.Close()
			for i := range next {
				file := fs.Get(ids[i])
				parsed, err := p.Parse(file.ID, file.Path, file.Content)
				if err != nil {
					return err
				}
				out[i] = parsed
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReportErrors turns the syntax errors of f into diagnostics.
func (f *File) ReportErrors(r diag.Reporter) {
	for _, e := range f.Errors {
		if e.Missing {
			diag.ReportError(r, diag.SynMissingToken, e.Span, fmt.Sprintf("missing %s", e.Text)).Emit()
			continue
		}
		diag.ReportError(r, diag.SynError, e.Span, "syntax error").Emit()
	}
}
