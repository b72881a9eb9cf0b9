package hal

import (
	"math"
	"testing"
	"time"
)

const testTimeout = 1 * time.Second

// runOnCore runs fn as the first context on c and waits for it to finish.
// The context keeps the core afterwards.
func runOnCore(t *testing.T, c *Core, fn func()) {
	t.Helper()
	done := make(chan struct{})
	ctx := c.NewContext(func() {
		fn()
		close(done)
		select {}
	})
	c.Start(ctx)
	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for core")
	}
}

func TestCoreBootsMasked(t *testing.T) {
	c := NewCore(NewManualClock())
	if s := c.DisableInterrupts(); !s.Masked() {
		t.Fatal("DisableInterrupts() before start = unmasked, want masked")
	}
}

func TestCoreNestedMaskDefersInterrupts(t *testing.T) {
	clk := NewManualClock()
	c := NewCore(clk)

	fired := 0
	if _, ok := c.StartPeriodic(time.Millisecond, 1, func() { fired++ }); !ok {
		t.Fatal("StartPeriodic() ok = false, want true")
	}

	var outer, inner IntrState
	var afterInner, afterOuter int
	runOnCore(t, c, func() {
		outer = c.DisableInterrupts()
		inner = c.DisableInterrupts()
		clk.Advance(time.Millisecond)
		c.RestoreInterrupts(inner)
		afterInner = fired
		c.RestoreInterrupts(outer)
		afterOuter = fired
	})

	if outer.Masked() {
		t.Fatal("outer state masked, want unmasked")
	}
	if !inner.Masked() {
		t.Fatal("inner state unmasked, want masked")
	}
	if afterInner != 0 {
		t.Fatalf("fired after inner restore = %d, want 0", afterInner)
	}
	if afterOuter != 1 {
		t.Fatalf("fired after outer restore = %d, want 1", afterOuter)
	}
}

func TestCoreServicesByPriorityThenSwitch(t *testing.T) {
	clk := NewManualClock()
	c := NewCore(clk)

	var order []string
	c.StartPeriodic(time.Millisecond, 5, func() { order = append(order, "low") })
	c.StartPeriodic(time.Millisecond, 1, func() { order = append(order, "high") })
	c.SetSwitchHandler(func() { order = append(order, "switch") })

	runOnCore(t, c, func() {
		s := c.DisableInterrupts()
		c.PendSwitch()
		clk.Advance(time.Millisecond)
		c.RestoreInterrupts(s)
	})

	want := []string{"high", "low", "switch"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestCoreSwitchHandsOff(t *testing.T) {
	c := NewCore(NewManualClock())

	trace := make(chan string, 8)
	var a, b, cur, next *Context
	c.SetSwitchHandler(func() {
		from := cur
		cur = next
		c.Switch(from, next, false)
	})

	a = c.NewContext(func() {
		trace <- "a1"
		next = b
		c.PendSwitch()
		c.RestoreInterrupts(c.DisableInterrupts())
		trace <- "a2"
		select {}
	})
	b = c.NewContext(func() {
		trace <- "b1"
		next = a
		c.PendSwitch()
		c.RestoreInterrupts(c.DisableInterrupts())
		trace <- "b2"
		select {}
	})
	cur = a
	c.Start(a)

	want := []string{"a1", "b1", "a2"}
	for _, w := range want {
		select {
		case got := <-trace:
			if got != w {
				t.Fatalf("trace = %q, want %q", got, w)
			}
		case <-time.After(testTimeout):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}

func TestCoreCallRunsOnCore(t *testing.T) {
	c := NewCore(NewManualClock())
	ctx := c.NewContext(func() {
		for {
			c.WaitForInterrupt()
		}
	})
	c.Start(ctx)

	got := make(chan int, 1)
	go func() {
		c.Call(func() { got <- 42 })
	}()

	select {
	case v := <-got:
		if v != 42 {
			t.Fatalf("Call() value = %d, want 42", v)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for Call")
	}
}

func TestCoreTimerLimit(t *testing.T) {
	c := NewCore(NewManualClock())
	for i := 0; i < MaxTimers; i++ {
		if _, ok := c.StartPeriodic(time.Millisecond, 0, func() {}); !ok {
			t.Fatalf("StartPeriodic() ok = false at line %d, want true", i)
		}
	}
	if _, ok := c.StartPeriodic(time.Millisecond, 0, func() {}); ok {
		t.Fatal("StartPeriodic() ok = true when exhausted, want false")
	}
}

func TestCoreCounterCountsDown(t *testing.T) {
	clk := NewManualClock()
	c := NewCore(clk)

	if got := c.Counter(); got != math.MaxUint32 {
		t.Fatalf("Counter() at zero = %d, want %d", got, uint32(math.MaxUint32))
	}
	clk.Advance(time.Microsecond)
	if got, want := c.Counter(), uint32(math.MaxUint32-80); got != want {
		t.Fatalf("Counter() after 1us = %d, want %d", got, want)
	}
}
