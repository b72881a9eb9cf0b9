package hal

import (
	"math"
	"sync"
	"time"

	"github.com/gammazero/deque"
)

const (
	// MaxTimers is the number of periodic timer lines on the core.
	MaxTimers = 12

	// BusHz is the rate of the free-running counter returned by Counter.
	BusHz = 80_000_000
)

// IntrState is the interrupt mask state saved by DisableInterrupts.
type IntrState bool

// Masked reports whether interrupts were masked when the state was saved.
func (s IntrState) Masked() bool { return bool(s) }

type irqLine struct {
	prio    uint8
	fn      func()
	pending bool
	ticker  Ticker
}

type call struct {
	fn   func()
	done chan struct{}
}

// Core models the single execution unit the kernel runs on.
//
// Exactly one goroutine holds the core at a time: the running thread's
// context. Timer interrupts are latched as pending lines by the clock and are
// serviced on the goroutine holding the core at its next safe point (any
// DisableInterrupts or RestoreInterrupts call, Timer.Trigger, or
// WaitForInterrupt). A line never preempts a handler that is already running.
// The deferred switch is the lowest priority line.
//
// The core comes out of reset with interrupts masked.
type Core struct {
	clock Clock

	mu         sync.Mutex
	lines      [MaxTimers]irqLine
	nlines     int
	calls      deque.Deque[*call]
	pendSwitch bool
	onSwitch   func()

	wake chan struct{}

	// Only touched by the goroutine holding the core.
	masked bool
}

// NewCore returns a core whose timers are driven by clock.
func NewCore(clock Clock) *Core {
	return &Core{
		clock:  clock,
		wake:   make(chan struct{}, 1),
		masked: true,
	}
}

// Clock returns the clock driving the core's timers.
func (c *Core) Clock() Clock { return c.clock }

// DisableInterrupts masks interrupts and returns the previous state.
// Interrupts already pending while unmasked are taken first.
func (c *Core) DisableInterrupts() IntrState {
	c.service()
	prev := c.masked
	c.masked = true
	return IntrState(prev)
}

// RestoreInterrupts restores a state returned by DisableInterrupts.
func (c *Core) RestoreInterrupts(s IntrState) {
	c.masked = bool(s)
	c.service()
}

// WaitForInterrupt sleeps until an interrupt is pending and services it.
func (c *Core) WaitForInterrupt() {
	for !c.hasPending() {
		<-c.wake
	}
	c.service()
}

// Timer is a periodic interrupt line allocated by StartPeriodic.
type Timer struct {
	c    *Core
	line int
}

// StartPeriodic allocates a timer line that raises fn at the given interrupt
// priority (0 is highest) every period. It fails when no line is free.
func (c *Core) StartPeriodic(period time.Duration, prio uint8, fn func()) (*Timer, bool) {
	if period <= 0 || fn == nil {
		return nil, false
	}

	c.mu.Lock()
	if c.nlines >= MaxTimers {
		c.mu.Unlock()
		return nil, false
	}
	n := c.nlines
	c.nlines++
	c.lines[n] = irqLine{prio: prio, fn: fn}
	c.mu.Unlock()

	tk := c.clock.Every(period, func() { c.raise(n) })

	c.mu.Lock()
	c.lines[n].ticker = tk
	c.mu.Unlock()
	return &Timer{c: c, line: n}, true
}

// Trigger pends the timer's interrupt immediately and restarts its period.
// It must be called on the core.
func (t *Timer) Trigger() {
	c := t.c
	c.mu.Lock()
	l := &c.lines[t.line]
	l.pending = true
	tk := l.ticker
	c.mu.Unlock()

	if tk != nil {
		tk.Reset()
	}
	c.service()
}

// SetSwitchHandler installs the routine run by the deferred switch line.
func (c *Core) SetSwitchHandler(fn func()) {
	c.mu.Lock()
	c.onSwitch = fn
	c.mu.Unlock()
}

// PendSwitch requests a deferred context switch. It is safe to call from an
// interrupt handler.
func (c *Core) PendSwitch() {
	c.mu.Lock()
	c.pendSwitch = true
	c.mu.Unlock()
}

// Call runs fn on the core in interrupt context and waits for it to return.
// It must not be called from the goroutine holding the core.
func (c *Core) Call(fn func()) {
	cl := &call{fn: fn, done: make(chan struct{})}
	c.mu.Lock()
	c.calls.PushBack(cl)
	c.mu.Unlock()
	c.kick()
	<-cl.done
}

// Counter returns a free-running down-counter clocked at BusHz.
func (c *Core) Counter() uint32 {
	now := c.clock.Now()
	const perMicro = BusHz / 1_000_000
	cycles := uint64(now/time.Microsecond)*perMicro + uint64(now%time.Microsecond)*perMicro/1000
	return math.MaxUint32 - uint32(cycles)
}

// Context is the execution context of one thread: a goroutine that only runs
// while it holds the core.
type Context struct {
	resume chan struct{}
}

// NewContext prepares a context that starts executing entry the first time
// it is switched to. A fresh context starts with interrupts enabled.
func (c *Core) NewContext(entry func()) *Context {
	ctx := &Context{resume: make(chan struct{})}
	go func() {
		<-ctx.resume
		c.masked = false
		c.service()
		entry()
	}()
	return ctx
}

// Start hands the core to ctx. The caller gives up the core and must not
// touch it again.
func (c *Core) Start(ctx *Context) {
	ctx.resume <- struct{}{}
}

// Switch hands the core from one context to another. It runs inside the
// switch handler on from's goroutine and returns once from is switched back
// to. With release set, from's goroutine parks forever instead of waiting,
// so nothing it deferred runs without the core.
func (c *Core) Switch(from, to *Context, release bool) {
	if from == to {
		return
	}
	to.resume <- struct{}{}
	if release {
		select {}
	}
	<-from.resume
}

func (c *Core) raise(line int) {
	c.mu.Lock()
	c.lines[line].pending = true
	c.mu.Unlock()
	c.kick()
}

func (c *Core) kick() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Core) hasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < c.nlines; i++ {
		if c.lines[i].pending {
			return true
		}
	}
	return c.calls.Len() > 0 || (c.pendSwitch && c.onSwitch != nil)
}

// next claims the highest priority pending handler.
func (c *Core) next() func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	best := -1
	for i := 0; i < c.nlines; i++ {
		l := &c.lines[i]
		if l.pending && (best < 0 || l.prio < c.lines[best].prio) {
			best = i
		}
	}
	if best >= 0 {
		c.lines[best].pending = false
		return c.lines[best].fn
	}

	if c.calls.Len() > 0 {
		cl := c.calls.PopFront()
		return func() {
			cl.fn()
			close(cl.done)
		}
	}

	if c.pendSwitch && c.onSwitch != nil {
		c.pendSwitch = false
		return c.onSwitch
	}
	return nil
}

func (c *Core) service() {
	for !c.masked {
		fn := c.next()
		if fn == nil {
			return
		}
		c.masked = true
		fn()
		c.masked = false
	}
}
