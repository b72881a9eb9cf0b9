// Package kernel is a preemptive, priority-based real-time kernel for a
// single core.
//
// Threads live in a fixed pool of thread control blocks. Each priority level
// keeps a ring of its threads plus a count of how many are available (not
// sleeping and not blocked). A periodic scheduler tick picks the next thread
// from the highest available level, round-robin within the level, and pends
// a deferred switch on the core. A separate sleep tick counts down sleeping
// threads.
//
// All kernel state is owned by the core: kernel calls must be made from a
// thread or an interrupt handler running on it, or through hal.Core.Call.
package kernel

import (
	"fmt"
	"time"

	"ember/hal"

	"github.com/gammazero/deque"
)

const (
	// MaxThreads is the capacity of the thread pool.
	MaxThreads = 10
	// PriorityLevels is the number of priority levels; 0 is the highest.
	PriorityLevels = 8
	// MaxPeriodicThreads is the number of periodic background thread slots.
	MaxPeriodicThreads = 8
	// FIFOSize is the default FIFO capacity in words.
	FIFOSize = 256
	// TraceDepth is the number of context switches kept by Trace.
	TraceDepth = 64
)

const (
	DefaultTimeSlice   = 2 * time.Millisecond
	DefaultSleepPeriod = time.Millisecond
)

// Interrupt priorities of the kernel's own timer lines.
const (
	irqPrioSleep = 1
	irqPrioSched = 6
)

// ThreadID is the index of a thread's slot in the pool.
type ThreadID uint8

// Config holds kernel settings.
type Config struct {
	// TimeSlice is the scheduler tick period.
	TimeSlice time.Duration
	// SleepPeriod is the sleep tick period; Sleep counts in these ticks.
	SleepPeriod time.Duration
	// Logger receives lifecycle events. Optional.
	Logger hal.Logger
}

// Kernel is the scheduler and synchronization state of one core.
type Kernel struct {
	core *hal.Core
	cfg  Config
	log  hal.Logger

	tcbs        [MaxThreads]tcb
	threadCount int
	runHead     index
	ready       readyTable

	// run is the thread holding the core, next the scheduler's pick.
	run   index
	next  index
	dying *hal.Context

	sysTick  *hal.Timer
	periodic int
	launched bool

	msTime   uint32
	uptime   uint64
	switches uint64
	trace    deque.Deque[Switch]

	fault faultState
}

// New creates a kernel on core. Interrupts stay masked until Launch.
func New(core *hal.Core, cfg Config) *Kernel {
	if cfg.TimeSlice <= 0 {
		cfg.TimeSlice = DefaultTimeSlice
	}
	if cfg.SleepPeriod <= 0 {
		cfg.SleepPeriod = DefaultSleepPeriod
	}

	k := &Kernel{
		core:    core,
		cfg:     cfg,
		log:     cfg.Logger,
		runHead: none,
		run:     none,
		next:    none,
	}
	k.initPool()
	k.ready.init(&k.tcbs)
	core.SetSwitchHandler(k.contextSwitch)
	return k
}

// Core returns the core the kernel runs on.
func (k *Kernel) Core() *hal.Core { return k.core }

// Launch starts the scheduler on the head of the highest available priority
// level and never returns. At least one thread must stay available for the
// lifetime of the system; launching with none is a fatal fault.
func (k *Kernel) Launch() {
	k.core.DisableInterrupts()

	pri := k.ready.highest()
	if pri == PriorityLevels {
		k.trap(Fault{Kind: FaultStarvation})
	}
	k.run = k.ready.levels[pri].head
	k.next = k.run

	if _, ok := k.core.StartPeriodic(k.cfg.SleepPeriod, irqPrioSleep, k.sleepTick); !ok {
		panic("kernel: no timer line for the sleep tick")
	}
	t, ok := k.core.StartPeriodic(k.cfg.TimeSlice, irqPrioSched, k.schedule)
	if !ok {
		panic("kernel: no timer line for the scheduler tick")
	}
	k.sysTick = t
	k.launched = true

	k.logf("launch threads=%d first=%d slice=%v", k.threadCount, k.run, k.cfg.TimeSlice)
	k.core.Start(k.tcbs[k.run].ctx)
	select {}
}

func (k *Kernel) logf(format string, args ...any) {
	if k.log == nil {
		return
	}
	k.log.WriteLineString(fmt.Sprintf(format, args...))
}
