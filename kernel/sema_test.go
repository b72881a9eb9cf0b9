package kernel

import (
	"fmt"
	"testing"
)

func TestSemaphoreWaitWithoutBlocking(t *testing.T) {
	h := newHarness(t)
	s := NewSemaphore(h.k, 2)
	s.Wait()
	s.Wait()
	if v := s.Value(); v != 0 {
		t.Fatalf("Value() = %d, want 0", v)
	}
	s.Signal()
	if v := s.Value(); v != 1 {
		t.Fatalf("Value() = %d, want 1", v)
	}
}

func TestSemaphoreWakesInBlockOrder(t *testing.T) {
	h := newHarness(t)
	s := NewSemaphore(h.k, 0)
	h.idle()
	names := map[ThreadID]string{}
	for n := 1; n <= 3; n++ {
		name := fmt.Sprintf("w%d", n)
		id := h.add(name, 2, func() {
			h.log("%s-wait", name)
			s.Wait()
			h.log("%s-go", name)
			h.sleepForever()
		})
		names[id] = name
	}
	h.launch()

	ev := h.waitEvents(3)
	var blocked []ThreadID
	var value int32
	h.call(func() {
		blocked = s.waiters()
		value = s.value
	})
	if value != -3 {
		t.Fatalf("value = %d, want -3", value)
	}
	if len(blocked) != 3 {
		t.Fatalf("waiters = %v, want 3", blocked)
	}
	for i, id := range blocked {
		if want := names[id] + "-wait"; ev[i] != want {
			t.Fatalf("waiter %d is %s, but events = %v", i, names[id], ev)
		}
	}

	for round := 0; round < 3; round++ {
		var rest []ThreadID
		h.call(func() {
			s.Signal()
			rest = s.waiters()
		})
		if len(rest) != 2-round {
			t.Fatalf("after %d signals waiters = %v", round+1, rest)
		}
		for i := range rest {
			if rest[i] != blocked[round+1+i] {
				t.Fatalf("after %d signals waiters = %v, want tail of %v", round+1, rest, blocked)
			}
		}

		ev = h.tickUntil(4 + round)
		if want := names[blocked[round]] + "-go"; ev[3+round] != want {
			t.Fatalf("events = %v, want %s next", ev, want)
		}
	}
	h.check()
}

func TestSemaphoreBlockedThreadIsUnavailable(t *testing.T) {
	h := newHarness(t)
	s := NewSemaphore(h.k, 0)
	h.idle()
	w := h.add("w", 3, func() {
		s.BWait()
		h.log("w-go")
		h.sleepForever()
	})
	h.launch()
	h.waitIdle()

	var lv LevelInfo
	var state ThreadState
	h.call(func() {
		lv = h.k.Levels()[3]
		for _, info := range h.k.Threads() {
			if info.ID == w {
				state = info.State
			}
		}
	})
	if lv.Total != 1 || lv.Available != 0 {
		t.Fatalf("level 3 = %+v, want total 1 available 0", lv)
	}
	if state != StateBlocked {
		t.Fatalf("state = %s, want blocked", state)
	}
	h.check()

	h.tick(4)
	if ev := h.snapshot(); len(ev) != 0 {
		t.Fatalf("events = %v, want none before signal", ev)
	}

	h.call(func() { s.BSignal() })
	h.tickUntil(1)
	h.check()
}

func TestSpinSemaphoreMutualExclusion(t *testing.T) {
	h := newHarness(t)
	s := NewSemaphore(h.k, 1)
	h.idle()
	for _, name := range []string{"a", "b"} {
		name := name
		h.add(name, 2, func() {
			s.SpinWait()
			h.log("%s-acquire", name)
			h.k.Sleep(3)
			h.log("%s-release", name)
			s.SpinSignal()
			h.sleepForever()
		})
	}
	h.launch()

	ev := h.tickUntil(4)
	first, second := "a", "b"
	if ev[0] == "b-acquire" {
		first, second = "b", "a"
	}
	want := []string{first + "-acquire", first + "-release", second + "-acquire", second + "-release"}
	if !equalEvents(ev[:4], want) {
		t.Fatalf("events = %v, want %v", ev, want)
	}

	var v int32
	h.call(func() { v = s.value })
	if v != 1 {
		t.Fatalf("value = %d, want 1", v)
	}
}

func TestSpinSignalWakesBlockedWaiter(t *testing.T) {
	h := newHarness(t)
	s := NewSemaphore(h.k, 1)
	h.idle()
	h.add("spin", 1, func() {
		s.SpinWait()
		h.log("spin-acquire")
		h.k.Sleep(3)
		h.log("spin-release")
		s.SpinSignal()
		h.sleepForever()
	})
	h.add("block", 2, func() {
		s.BWait()
		h.log("block-acquire")
		s.BSignal()
		h.sleepForever()
	})
	h.launch()

	ev := h.tickUntil(3)
	want := []string{"spin-acquire", "spin-release", "block-acquire"}
	if !equalEvents(ev[:3], want) {
		t.Fatalf("events = %v, want %v", ev, want)
	}
	h.waitIdle()
	var v int32
	h.call(func() { v = s.value })
	if v != 1 {
		t.Fatalf("value = %d, want 1", v)
	}
}
