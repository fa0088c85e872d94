package driver

import (
	"context"
	"fmt"

	"phpc/internal/diag"
	"phpc/internal/observ"
	"phpc/internal/phpsyntax"
	"phpc/internal/semantic"
	"phpc/internal/source"
	"phpc/internal/trace"
)

// LoadFiles collects the *.php scripts under paths (files or directories)
// into a new file set. Unreadable scripts are reported and skipped.
func LoadFiles(paths []string, rep diag.Reporter) (*source.FileSet, []source.FileID, error) {
	fs := source.NewFileSet()
	var ids []source.FileID
	seen := make(map[string]bool)
	for _, root := range paths {
		files, err := source.ListPHPFiles(root)
		if err != nil {
			return nil, nil, fmt.Errorf("list %s: %w", root, err)
		}
		for _, path := range files {
			if seen[path] {
				continue
			}
			seen[path] = true
			id, err := fs.Load(path)
			if err != nil {
				diag.ReportError(rep, diag.IOLoadFileError, source.Span{},
					fmt.Sprintf("failed to load %s: %v", path, err)).Emit()
				continue
			}
			ids = append(ids, id)
		}
	}
	return fs, ids, nil
}

// Compile parses the scripts ids of fs in parallel, reports their syntax
// errors and declares every symbol they contain. timer may be nil.
func Compile(ctx context.Context, fs *source.FileSet, ids []source.FileID, rep diag.Reporter, jobs int, timer *observ.Timer) (*semantic.Compilation, error) {
	if timer == nil {
		timer = observ.NewTimer()
	}
	tracer := trace.FromContext(ctx)

	span := trace.Begin(tracer, trace.ScopePhase, "parse", 0)
	idx := timer.Begin("parse")
	files, err := phpsyntax.ParseAll(ctx, fs, ids, jobs)
	if err != nil {
		timer.End(idx, "failed")
		span.End(err.Error())
		return nil, fmt.Errorf("parse: %w", err)
	}
	for _, f := range files {
		f.ReportErrors(rep)
	}
	note := fmt.Sprintf("%d files", len(files))
	timer.End(idx, note)
	span.End(note)

	span = trace.Begin(tracer, trace.ScopePhase, "declare", 0)
	idx = timer.Begin("declare")
	c := semantic.New(rep)
	for _, f := range files {
		c.AddFile(f)
	}
	open := c.Declare()
	note = fmt.Sprintf("%d types, %d unresolved abstracts", len(c.UserTypes()), open)
	timer.End(idx, note)
	span.End(note)
	return c, nil
}
