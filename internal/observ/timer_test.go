package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.Add("assemble", 2*time.Millisecond, "")
	tm.Add("emit", 3*time.Millisecond, "cached")
	idx := tm.Begin("write")
	tm.End(idx, "")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 3 {
		t.Fatalf("phases = %d, want 3", len(r.Phases))
	}
	if r.Phases[1].Note != "cached" || r.Phases[1].DurationMS != 3 {
		t.Fatalf("unexpected emit phase: %+v", r.Phases[1])
	}
	if r.TotalMS < 5 {
		t.Fatalf("total = %v, want >= 5", r.TotalMS)
	}

	s := tm.Summary()
	for _, want := range []string{"timings:", "assemble", "// cached", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
}
