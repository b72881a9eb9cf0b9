package kernel

import "testing"

func TestTraceKeepsLatest(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < TraceDepth+6; i++ {
		h.k.uptime = uint64(i)
		h.k.record(index(i%MaxThreads), index((i+1)%MaxThreads))
	}

	tr := h.k.Trace()
	if len(tr) != TraceDepth {
		t.Fatalf("len(Trace()) = %d, want %d", len(tr), TraceDepth)
	}
	if n := h.k.Switches(); n != TraceDepth+6 {
		t.Fatalf("Switches() = %d, want %d", n, TraceDepth+6)
	}
	if first := tr[0]; first.At != 6*h.k.cfg.SleepPeriod || first.From != 6 {
		t.Fatalf("oldest entry = %+v, want the 7th switch", first)
	}
	if last := tr[len(tr)-1]; last.To != ThreadID((TraceDepth+6)%MaxThreads) {
		t.Fatalf("newest entry = %+v", last)
	}
}
