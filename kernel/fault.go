package kernel

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// FaultKind classifies a fatal kernel condition.
type FaultKind uint8

const (
	// FaultStarvation: no thread at any level was available to run.
	FaultStarvation FaultKind = iota + 1
	// FaultKillReturned: a killed thread was resumed.
	FaultKillReturned
	// FaultThreadPanic: a thread panicked.
	FaultThreadPanic
)

func (f FaultKind) String() string {
	switch f {
	case FaultStarvation:
		return "starvation"
	case FaultKillReturned:
		return "kill returned"
	case FaultThreadPanic:
		return "thread panic"
	default:
		return "unknown"
	}
}

// Fault contains details about a fatal kernel condition.
type Fault struct {
	Kind   FaultKind
	Thread ThreadID
	Value  any
	Stack  []byte
}

func (f Fault) String() string {
	if f.Value != nil {
		return fmt.Sprintf("%s thread=%d: %v", f.Kind, f.Thread, f.Value)
	}
	return fmt.Sprintf("%s thread=%d", f.Kind, f.Thread)
}

type faultState struct {
	active  atomic.Bool
	once    sync.Once
	handler atomic.Value // func(Fault)
}

// Faulted reports whether the kernel has stopped on a fault.
func (k *Kernel) Faulted() bool {
	return k.fault.active.Load()
}

// SetFaultHandler installs the handler run on the first fault.
//
// The handler runs on the core with interrupts masked. It must not call into
// the kernel or panic.
func (k *Kernel) SetFaultHandler(fn func(Fault)) {
	k.fault.handler.Store(fn)
}

// trap stops the system. The calling goroutine holds the core and never
// gives it back.
func (k *Kernel) trap(f Fault) {
	k.fault.once.Do(func() {
		k.fault.active.Store(true)
		f.Stack = captureStack()
		k.logf("fault %s", f)
		if v := k.fault.handler.Load(); v != nil {
			if fn, ok := v.(func(Fault)); ok && fn != nil {
				fn(f)
			}
		}
	})
	select {}
}
