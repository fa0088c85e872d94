package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("bind")
	tm.End(a, "3 routines")
	b := tm.Begin("analyze")
	tm.End(b, "")
	tm.End(42, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(rep.Phases))
	}
	if rep.Phases[0].Name != "bind" || rep.Phases[0].Note != "3 routines" {
		t.Fatalf("unexpected first phase: %+v", rep.Phases[0])
	}
	if rep.TotalMS < rep.Phases[0].DurationMS {
		t.Fatalf("total must cover every phase")
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "bind") || !strings.Contains(sum, "// 3 routines") || !strings.Contains(sum, "total") {
		t.Fatalf("unexpected summary:\n%s", sum)
	}
}

func TestEmptyTimer(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMS != 0 || len(rep.Phases) != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}
}

func TestCountersSnapshot(t *testing.T) {
	var c Counters
	c.BlocksAnalyzed.Add(5)
	c.Enqueued.Add(7)
	c.Deduplicated.Add(2)
	s := c.Snapshot()
	if s.BlocksAnalyzed != 5 || s.Enqueued != 7 || s.Deduplicated != 2 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if !strings.Contains(s.String(), "blocks=5") {
		t.Fatalf("unexpected string %q", s.String())
	}
}
