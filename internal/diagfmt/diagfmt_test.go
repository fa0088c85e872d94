package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"phpc/internal/diag"
	"phpc/internal/source"
)

func fixture() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.php", []byte("<?php\necho $missing;\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevWarning, diag.SemaUndefinedVariable,
		source.Span{File: id, Start: 11, End: 19}, "variable $missing might not be defined").
		WithNote(source.Span{File: id, Start: 0, End: 5}, "script starts here"))
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: 7}, "failed to load b.php"))
	return bag, fs
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	bag, fs := fixture()
	var sb strings.Builder
	if err := Pretty(&sb, bag, fs, PrettyOpts{Context: true, ShowNotes: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := "a.php:2:6: WARNING SEM3007: variable $missing might not be defined\n" +
		"    2 | echo $missing;\n" +
		"             ^~~~~~~~\n" +
		"  note: a.php:1:1: script starts here\n" +
		"    1 | <?php\n" +
		"        ^~~~~\n" +
		"<unknown>: ERROR IO4001: failed to load b.php\n"
	if got := sb.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyMax(t *testing.T) {
	bag, fs := fixture()
	var sb strings.Builder
	if err := Pretty(&sb, bag, fs, PrettyOpts{Max: 1}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if got := strings.Count(sb.String(), "\n"); got != 1 {
		t.Fatalf("want one line, got %q", sb.String())
	}
}

func TestJSONOutput(t *testing.T) {
	bag, fs := fixture()
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true})
	if out.Count != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Code != "SEM3007" || first.Location.File != "a.php" || first.Location.StartLine != 2 || first.Location.StartCol != 6 {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	if len(first.Notes) != 1 {
		t.Fatalf("notes = %+v", first.Notes)
	}
	if out.Diagnostics[1].Location.File != "" {
		t.Fatalf("load failure should have no file: %+v", out.Diagnostics[1])
	}

	var sb strings.Builder
	if err := JSON(&sb, out, JSONOpts{Indent: true}); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(sb.String(), "\n  \"diagnostics\": [") {
		t.Fatalf("output is not indented:\n%s", sb.String())
	}
	var back DiagnosticsOutput
	if err := json.Unmarshal([]byte(sb.String()), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back.Count != 2 {
		t.Fatalf("round trip count = %d", back.Count)
	}
}
