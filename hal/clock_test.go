package hal

import (
	"testing"
	"time"
)

func TestManualClockFiresInDeadlineOrder(t *testing.T) {
	clk := NewManualClock()

	var got []byte
	clk.Every(2*time.Millisecond, func() { got = append(got, 'a') })
	clk.Every(3*time.Millisecond, func() { got = append(got, 'b') })

	clk.Advance(6 * time.Millisecond)

	if string(got) != "abaab" {
		t.Fatalf("fire order = %q, want %q", got, "abaab")
	}
	if now := clk.Now(); now != 6*time.Millisecond {
		t.Fatalf("Now() = %v, want 6ms", now)
	}
}

func TestManualTickerResetAndStop(t *testing.T) {
	clk := NewManualClock()

	n := 0
	tk := clk.Every(2*time.Millisecond, func() { n++ })

	clk.Advance(time.Millisecond)
	tk.Reset()
	clk.Advance(time.Millisecond)
	if n != 0 {
		t.Fatalf("fired = %d after reset, want 0", n)
	}
	clk.Advance(time.Millisecond)
	if n != 1 {
		t.Fatalf("fired = %d, want 1", n)
	}

	tk.Stop()
	clk.Advance(10 * time.Millisecond)
	if n != 1 {
		t.Fatalf("fired = %d after stop, want 1", n)
	}
}
