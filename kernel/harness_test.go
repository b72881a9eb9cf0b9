package kernel

import (
	"fmt"
	"testing"
	"time"

	"ember/hal"
)

const testTimeout = 2 * time.Second

// harness runs a kernel on a manual clock. Before launch the test goroutine
// owns the core; afterwards all inspection goes through call.
type harness struct {
	t      *testing.T
	clock  *hal.ManualClock
	core   *hal.Core
	k      *Kernel
	faults chan Fault
	idleID ThreadID

	// events is only touched on the core.
	events []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := hal.NewManualClock()
	core := hal.NewCore(clock)
	h := &harness{
		t:      t,
		clock:  clock,
		core:   core,
		faults: make(chan Fault, 1),
	}
	h.k = New(core, Config{TimeSlice: 2 * time.Millisecond, SleepPeriod: time.Millisecond})
	h.k.SetFaultHandler(func(f Fault) { h.faults <- f })
	return h
}

func (h *harness) add(name string, priority uint8, fn func()) ThreadID {
	h.t.Helper()
	id, res := h.k.AddThreadResult(name, TaskFunc(fn), priority)
	if res != AddOK {
		h.t.Fatalf("AddThreadResult(%s) = %s, want ok", name, res)
	}
	return id
}

// idle adds a lowest priority thread that waits for interrupts forever.
func (h *harness) idle() ThreadID {
	h.idleID = h.add("idle", PriorityLevels-1, func() {
		for {
			h.k.WaitForInterrupt()
		}
	})
	return h.idleID
}

// waitIdle waits until the idle thread holds the core, which means every
// other thread is asleep or blocked.
func (h *harness) waitIdle() {
	h.t.Helper()
	deadline := time.Now().Add(testTimeout)
	for {
		var idle bool
		h.call(func() { idle = h.k.run == index(h.idleID) })
		if idle {
			return
		}
		if time.Now().After(deadline) {
			h.t.Fatal("timed out waiting for the idle thread")
		}
		time.Sleep(time.Millisecond)
	}
}

// sleepForever parks the calling thread.
func (h *harness) sleepForever() {
	for {
		h.k.Sleep(1 << 30)
	}
}

func (h *harness) launch() {
	go h.k.Launch()
	h.call(func() {})
}

func (h *harness) log(format string, args ...any) {
	h.events = append(h.events, fmt.Sprintf(format, args...))
}

// call runs fn on the core.
func (h *harness) call(fn func()) {
	h.t.Helper()
	done := make(chan struct{})
	go func() {
		h.core.Call(fn)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(testTimeout):
		h.t.Fatal("timed out waiting for the core")
	}
}

// tick advances the clock by n sleep periods, letting the core take each
// tick before the next.
func (h *harness) tick(n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		h.clock.Advance(time.Millisecond)
		h.call(func() {})
	}
}

func (h *harness) snapshot() []string {
	h.t.Helper()
	var out []string
	h.call(func() { out = append(out, h.events...) })
	return out
}

// tickUntil ticks until at least n events were logged.
func (h *harness) tickUntil(n int) []string {
	h.t.Helper()
	for i := 0; i < 200; i++ {
		if ev := h.snapshot(); len(ev) >= n {
			return ev
		}
		h.tick(1)
	}
	h.t.Fatalf("events = %v, want at least %d", h.snapshot(), n)
	return nil
}

// waitEvents waits without moving the clock.
func (h *harness) waitEvents(n int) []string {
	h.t.Helper()
	deadline := time.Now().Add(testTimeout)
	for {
		ev := h.snapshot()
		if len(ev) >= n {
			return ev
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("events = %v, want at least %d", ev, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func (h *harness) waitFault() Fault {
	h.t.Helper()
	select {
	case f := <-h.faults:
		return f
	case <-time.After(testTimeout):
		h.t.Fatal("timed out waiting for a fault")
		return Fault{}
	}
}

func (h *harness) check() {
	h.t.Helper()
	var err error
	h.call(func() { err = h.k.ready.check() })
	if err != nil {
		h.t.Fatal(err)
	}
}

func equalEvents(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
