package kernel

import (
	"math"
	"time"
)

// Time returns the free-running system counter in bus cycles. It counts
// down and wraps; compare readings with TimeDifference.
func (k *Kernel) Time() uint32 {
	return k.core.Counter()
}

// TimeDifference returns the cycles elapsed between two Time readings taken
// from the down-counter, allowing for one wraparound.
func TimeDifference(start, stop uint32) uint32 {
	if start > stop {
		return start - stop
	}
	return math.MaxUint32 - stop + start
}

// ReadMsTime returns the sleep ticks counted since launch or the last
// ClearMsTime.
func (k *Kernel) ReadMsTime() uint32 {
	cs := k.enter()
	defer cs.exit()
	return k.msTime
}

// ClearMsTime resets the counter read by ReadMsTime.
func (k *Kernel) ClearMsTime() {
	cs := k.enter()
	defer cs.exit()
	k.msTime = 0
}

// Uptime returns the time since launch, counted in sleep ticks.
func (k *Kernel) Uptime() time.Duration {
	cs := k.enter()
	defer cs.exit()
	return time.Duration(k.uptime) * k.cfg.SleepPeriod
}
