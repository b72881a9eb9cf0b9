package kernel

import "ember/hal"

// index addresses a pool slot; none marks an empty link.
type index int8

const none index = -1

type status uint8

const (
	statusFree status = iota
	statusRunnable
)

// tcb is a thread control block. A live tcb is always on the run list, and
// on its priority ring. Sleeping and blocked threads stay on the ring and
// are skipped by the scheduler.
type tcb struct {
	id       ThreadID
	status   status
	gen      uint16
	name     string
	priority uint8

	// sleep is the remaining sleep ticks; 0 means awake.
	sleep     uint32
	blockedOn *Semaphore

	next, prev   index // run list
	nextPriority index // priority ring
	nextBlocked  index // semaphore wait list

	ctx  *hal.Context
	task Task
}

// excluded reports whether the scheduler must skip t.
func (t *tcb) excluded() bool {
	return t.sleep != 0 || t.blockedOn != nil
}

func (k *Kernel) initPool() {
	for i := range k.tcbs {
		k.tcbs[i] = tcb{
			id:           ThreadID(i),
			status:       statusFree,
			next:         none,
			prev:         none,
			nextPriority: none,
			nextBlocked:  none,
		}
	}
}

// alloc claims the lowest free slot.
func (k *Kernel) alloc() (index, bool) {
	for i := range k.tcbs {
		if k.tcbs[i].status == statusFree {
			return index(i), true
		}
	}
	return none, false
}

// linkRun adds i to the run list just before the running thread, or before
// the list head when the running slot is not live.
func (k *Kernel) linkRun(i index) {
	t := &k.tcbs[i]
	if k.threadCount == 0 {
		t.next, t.prev = i, i
		k.runHead = i
		k.threadCount++
		return
	}

	anchor := k.runHead
	if k.run != none && k.run != i && k.tcbs[k.run].status == statusRunnable {
		anchor = k.run
	}
	end := k.tcbs[anchor].prev
	t.next = anchor
	t.prev = end
	k.tcbs[anchor].prev = i
	k.tcbs[end].next = i
	k.threadCount++
}

func (k *Kernel) unlinkRun(i index) {
	t := &k.tcbs[i]
	if k.threadCount == 1 {
		k.runHead = none
	} else {
		k.tcbs[t.prev].next = t.next
		k.tcbs[t.next].prev = t.prev
		if k.runHead == i {
			k.runHead = t.next
		}
	}
	t.next, t.prev = none, none
	k.threadCount--
}

// ThreadCount returns the number of live threads.
func (k *Kernel) ThreadCount() int {
	cs := k.enter()
	defer cs.exit()
	return k.threadCount
}
