package diag

import (
	"sync"
	"testing"

	"phpc/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	ReportWarning(r, SemaUndefinedVariable, source.Span{Start: 1, End: 2}, "w").Emit()
	ReportError(r, SemaUndefinedFunction, source.Span{Start: 3, End: 4}, "e").Emit()
	ReportError(r, SemaUndefinedFunction, source.Span{Start: 5, End: 6}, "dropped").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected limit 2, got %d", bag.Len())
	}
	if !bag.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestDedupReporterConcurrent(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(SemaUnresolvedAbstract, SevError, source.Span{Start: 10, End: 20}, "same", nil)
		}()
	}
	wg.Wait()
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic after dedup, got %d", bag.Len())
	}
}

func TestSortOrdersBySpanThenSeverity(t *testing.T) {
	bag := NewBag(0)
	bag.Add(New(SevWarning, SemaUnreachableCode, source.Span{Start: 5, End: 6}, "b"))
	bag.Add(New(SevInfo, SemaAmbiguousCall, source.Span{Start: 1, End: 2}, "a"))
	bag.Add(New(SevError, SemaUndefinedMethod, source.Span{Start: 5, End: 6}, "c"))
	bag.Sort()
	items := bag.Items()
	if items[0].Message != "a" || items[1].Message != "c" || items[2].Message != "b" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestCodeID(t *testing.T) {
	if got := SemaUnresolvedAbstract.ID(); got != "SEM3006" {
		t.Fatalf("ID = %s", got)
	}
	if got := SynError.ID(); got != "SYN2001" {
		t.Fatalf("ID = %s", got)
	}
}
