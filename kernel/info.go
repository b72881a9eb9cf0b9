package kernel

// ThreadState is the scheduling state reported by Threads.
type ThreadState uint8

const (
	StateReady ThreadState = iota
	StateRunning
	StateSleeping
	StateBlocked
)

func (s ThreadState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// ThreadInfo is a snapshot of one live thread.
type ThreadInfo struct {
	ID         ThreadID
	Name       string
	Priority   uint8
	State      ThreadState
	SleepTicks uint32
	Generation uint16
}

// LevelInfo is a snapshot of one priority level.
type LevelInfo struct {
	Total     int
	Available int
}

// Threads returns the live threads in run list order.
func (k *Kernel) Threads() []ThreadInfo {
	cs := k.enter()
	defer cs.exit()

	out := make([]ThreadInfo, 0, k.threadCount)
	if k.runHead == none {
		return out
	}
	i := k.runHead
	for {
		t := &k.tcbs[i]
		info := ThreadInfo{
			ID:         t.id,
			Name:       t.name,
			Priority:   t.priority,
			SleepTicks: t.sleep,
			Generation: t.gen,
		}
		switch {
		case t.blockedOn != nil:
			info.State = StateBlocked
		case t.sleep != 0:
			info.State = StateSleeping
		case k.launched && i == k.run:
			info.State = StateRunning
		}
		out = append(out, info)

		i = t.next
		if i == k.runHead {
			break
		}
	}
	return out
}

// Levels returns the member and available counts of every priority level.
func (k *Kernel) Levels() [PriorityLevels]LevelInfo {
	cs := k.enter()
	defer cs.exit()
	var out [PriorityLevels]LevelInfo
	for p, l := range k.ready.levels {
		out[p] = LevelInfo{Total: l.total, Available: l.available}
	}
	return out
}
