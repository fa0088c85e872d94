package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"phpc/internal/diag"
	"phpc/internal/driver"
	"phpc/internal/phpsyntax"
	"phpc/internal/source"
	"phpc/internal/testkit"
)

// runTimeout is the maximum time allowed for one input. Exceeding it points
// at a fixpoint that does not converge.
const runTimeout = 5 * time.Second

func FuzzParseKeepsSpansInBounds(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		id := fs.AddVirtual("fuzz.php", input)
		file := fs.Get(id)

		tree, err := phpsyntax.Parse(id, file.Path, file.Content)
		if err != nil {
			t.Skip(err)
		}
		if err := testkit.CheckSpanInvariants(tree, file); err != nil {
			t.Fatalf("span invariants: %v", err)
		}
	})
}

func FuzzAnalyzeConverges(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		id := fs.AddVirtual("fuzz.php", input)

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		bag := diag.NewBag(128)
		rep := diag.BagReporter{Bag: bag}
		comp, err := driver.Compile(ctx, fs, []source.FileID{id}, rep, 1, nil)
		if err != nil {
			t.Skip(err)
		}
		session := driver.NewSession(comp, rep, driver.Options{Jobs: 1, MaxSteps: 1 << 16})
		if err := session.Run(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("analysis did not finish within %s", runTimeout)
			}
			t.Fatalf("run: %v", err)
		}
		if n := session.Pending(); n != 0 {
			t.Fatalf("%d blocks left in the worklist", n)
		}
	})
}
