package kernel

import "time"

// AddPeriodicThread runs task every period as an interrupt handler at the
// given interrupt priority (0 is highest). The task runs with interrupts
// masked and must not sleep, wait or kill. It reports false when all
// MaxPeriodicThreads slots or the core's timer lines are taken.
func (k *Kernel) AddPeriodicThread(task Task, period time.Duration, priority uint8) bool {
	if task == nil || period <= 0 {
		return false
	}

	cs := k.enter()
	defer cs.exit()
	if k.periodic >= MaxPeriodicThreads {
		k.logf("add periodic thread: all %d slots in use", MaxPeriodicThreads)
		return false
	}
	if _, ok := k.core.StartPeriodic(period, priority, task.Run); !ok {
		k.logf("add periodic thread: no timer line")
		return false
	}
	k.periodic++
	k.logf("add periodic thread slot=%d period=%v priority=%d", k.periodic-1, period, priority)
	return true
}
