package patient

import "testing"

func TestTestCount(t *testing.T) {
	p := &Patient{}
	if p.TestCount() != 0 {
		t.Errorf("expected 0 for nil collection, got %d", p.TestCount())
	}
	p.Tests = []*Test{{TestName: "CBC"}, {TestName: "Glucose"}}
	if p.TestCount() != 2 {
		t.Errorf("expected 2, got %d", p.TestCount())
	}
}
