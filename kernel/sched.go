package kernel

// schedule is the scheduler tick handler. It picks the next thread and pends
// the deferred switch; it never switches itself.
func (k *Kernel) schedule() {
	pri := k.ready.highest()
	if pri == PriorityLevels {
		k.trap(Fault{Kind: FaultStarvation, Thread: ThreadID(k.run)})
	}

	from := k.ready.levels[pri].head
	if cur := &k.tcbs[k.run]; k.dying == nil && cur.status == statusRunnable && cur.priority == pri {
		from = cur.nextPriority
	}
	k.next = k.ready.firstAvailable(from)
	k.core.PendSwitch()
}

// contextSwitch is the deferred switch handler. It runs on the goroutine of
// the outgoing thread and returns when that thread is switched back in.
func (k *Kernel) contextSwitch() {
	from, to := k.run, k.next
	fromCtx := k.tcbs[from].ctx
	release := false
	if k.dying != nil {
		fromCtx = k.dying
		release = true
		k.dying = nil
	}
	if from == to && !release {
		return
	}

	k.record(from, to)
	k.run = to
	k.core.Switch(fromCtx, k.tcbs[to].ctx, release)
}

// suspend pends the scheduler tick now and restarts its period. With
// interrupts masked the switch happens when the caller unmasks.
func (k *Kernel) suspend() {
	if k.sysTick == nil {
		return
	}
	k.sysTick.Trigger()
}

// Suspend gives up the rest of the running thread's time slice.
func (k *Kernel) Suspend() {
	k.suspend()
}
