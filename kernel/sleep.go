package kernel

// Sleep makes the running thread unavailable for n sleep ticks and yields.
// It returns after the tick that brings the countdown to zero has passed and
// the thread has been scheduled again. Sleep(0) only yields.
func (k *Kernel) Sleep(n uint32) {
	if n == 0 {
		k.suspend()
		return
	}

	cs := k.enter()
	defer cs.exit()
	t := &k.tcbs[k.run]
	t.sleep = n
	k.ready.exclude(t.priority)
	k.suspend()
}

// sleepTick is the sleep tick handler. Threads whose countdown expires on
// the same tick become available in pool order.
func (k *Kernel) sleepTick() {
	k.msTime++
	k.uptime++

	for i := range k.tcbs {
		t := &k.tcbs[i]
		if t.status != statusRunnable || t.sleep == 0 {
			continue
		}
		t.sleep--
		if t.sleep == 0 && t.blockedOn == nil {
			k.ready.include(t.priority)
		}
	}
}
