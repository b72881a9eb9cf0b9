package kernel

import "time"

// Switch records one context switch.
type Switch struct {
	At   time.Duration
	From ThreadID
	To   ThreadID
}

func (k *Kernel) record(from, to index) {
	k.switches++
	if k.trace.Len() == TraceDepth {
		k.trace.PopFront()
	}
	k.trace.PushBack(Switch{
		At:   time.Duration(k.uptime) * k.cfg.SleepPeriod,
		From: ThreadID(from),
		To:   ThreadID(to),
	})
}

// Trace returns the most recent context switches, oldest first.
func (k *Kernel) Trace() []Switch {
	cs := k.enter()
	defer cs.exit()
	out := make([]Switch, k.trace.Len())
	for i := range out {
		out[i] = k.trace.At(i)
	}
	return out
}

// Switches returns the number of context switches since launch.
func (k *Kernel) Switches() uint64 {
	cs := k.enter()
	defer cs.exit()
	return k.switches
}
