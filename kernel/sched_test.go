package kernel

import (
	"testing"
)

func TestSchedulePrefersHigherPriority(t *testing.T) {
	h := newHarness(t)
	hi := index(h.add("hi", 0, nop))
	lo := index(h.add("lo", 1, nop))

	for _, run := range []index{hi, lo} {
		h.k.run = run
		h.k.schedule()
		if h.k.next != hi {
			t.Fatalf("from %d: next = %d, want %d", run, h.k.next, hi)
		}
	}

	h.k.tcbs[hi].sleep = 2
	h.k.ready.exclude(0)
	h.k.run = hi
	h.k.schedule()
	if h.k.next != lo {
		t.Fatalf("with hi asleep: next = %d, want %d", h.k.next, lo)
	}
}

func TestScheduleRoundRobin(t *testing.T) {
	h := newHarness(t)
	a := index(h.add("a", 2, nop))
	b := index(h.add("b", 2, nop))
	c := index(h.add("c", 2, nop))

	// Ring order is c, b, a.
	h.k.run = c
	var got []index
	for i := 0; i < 6; i++ {
		h.k.schedule()
		got = append(got, h.k.next)
		h.k.run = h.k.next
	}
	if !equalRing(got, b, a, c, b, a, c) {
		t.Fatalf("picks = %v, want [%d %d %d %d %d %d]", got, b, a, c, b, a, c)
	}
}

func TestScheduleSkipsExcluded(t *testing.T) {
	h := newHarness(t)
	a := index(h.add("a", 2, nop))
	b := index(h.add("b", 2, nop))
	c := index(h.add("c", 2, nop))

	h.k.tcbs[b].sleep = 5
	h.k.ready.exclude(2)

	h.k.run = c
	h.k.schedule()
	if h.k.next != a {
		t.Fatalf("next = %d, want %d", h.k.next, a)
	}

	h.k.tcbs[a].blockedOn = &Semaphore{}
	h.k.ready.exclude(2)
	h.k.run = c
	h.k.schedule()
	if h.k.next != c {
		t.Fatalf("only c available: next = %d, want %d", h.k.next, c)
	}
}

func TestScheduleLowerLevelStartsAtHead(t *testing.T) {
	h := newHarness(t)
	hi := index(h.add("hi", 0, nop))
	h.add("x", 3, nop)
	y := index(h.add("y", 3, nop))

	h.k.tcbs[hi].sleep = 1
	h.k.ready.exclude(0)
	h.k.run = hi
	h.k.schedule()
	if h.k.next != y {
		t.Fatalf("next = %d, want head %d", h.k.next, y)
	}
}

func TestPriorityThreadAlwaysWins(t *testing.T) {
	h := newHarness(t)
	h.idle()
	h.add("lo", 1, func() {
		h.log("lo")
		h.sleepForever()
	})
	h.add("hi", 0, func() {
		for i := 0; i < 5; i++ {
			h.log("hi")
			h.k.Suspend()
		}
		h.k.Kill()
	})
	h.launch()

	ev := h.waitEvents(6)
	want := []string{"hi", "hi", "hi", "hi", "hi", "lo"}
	if !equalEvents(ev, want) {
		t.Fatalf("events = %v, want %v", ev, want)
	}
	h.check()
}

func TestSliceRotatesEqualPriority(t *testing.T) {
	h := newHarness(t)
	h.idle()
	for _, name := range []string{"a", "b"} {
		name := name
		h.add(name, 2, func() {
			for {
				h.log(name)
				h.k.WaitForInterrupt()
			}
		})
	}
	h.launch()

	ev := h.tickUntil(10)
	seen := map[string]bool{}
	for _, e := range ev {
		seen[e] = true
	}
	if !seen["a"] || !seen["b"] || seen["idle"] {
		t.Fatalf("events = %v, want both threads to run", ev)
	}

	var switches uint64
	var trace []Switch
	h.call(func() {
		switches = h.k.Switches()
		trace = h.k.Trace()
	})
	if switches == 0 || len(trace) == 0 {
		t.Fatalf("Switches() = %d with %d trace entries, want > 0", switches, len(trace))
	}
	if uint64(len(trace)) > switches || len(trace) > TraceDepth {
		t.Fatalf("trace has %d entries for %d switches", len(trace), switches)
	}
}
