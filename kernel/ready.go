package kernel

import "fmt"

// level is one priority level: a ring over nextPriority plus its counts.
// head is the newest member; last's successor is head.
type level struct {
	head      index
	last      index
	total     int
	available int
}

type readyTable struct {
	tcbs   *[MaxThreads]tcb
	levels [PriorityLevels]level
}

func (r *readyTable) init(tcbs *[MaxThreads]tcb) {
	r.tcbs = tcbs
	for p := range r.levels {
		r.levels[p] = level{head: none, last: none}
	}
}

// insert puts i after last and makes it the new head.
func (r *readyTable) insert(i index) {
	t := &r.tcbs[i]
	l := &r.levels[t.priority]
	if l.total == 0 {
		l.head = i
		l.last = i
		t.nextPriority = i
	} else {
		t.nextPriority = r.tcbs[l.last].nextPriority
		r.tcbs[l.last].nextPriority = i
		l.head = i
	}
	l.total++
	if !t.excluded() {
		l.available++
	}
}

// remove unlinks i from its ring. Only the head case is O(1).
func (r *readyTable) remove(i index) {
	t := &r.tcbs[i]
	l := &r.levels[t.priority]

	switch {
	case l.head == i && l.last == i:
		l.head = none
		l.last = none
	case l.head == i:
		r.tcbs[l.last].nextPriority = t.nextPriority
		l.head = t.nextPriority
	default:
		prev := l.head
		for r.tcbs[prev].nextPriority != i {
			prev = r.tcbs[prev].nextPriority
		}
		r.tcbs[prev].nextPriority = t.nextPriority
		if l.last == i {
			l.last = prev
		}
	}

	l.total--
	if !t.excluded() {
		l.available--
	}
	t.nextPriority = none
}

func (r *readyTable) exclude(p uint8) { r.levels[p].available-- }
func (r *readyTable) include(p uint8) { r.levels[p].available++ }

// highest returns the first level with an available member, or
// PriorityLevels when nothing can run.
func (r *readyTable) highest() uint8 {
	for p := range r.levels {
		if r.levels[p].available > 0 {
			return uint8(p)
		}
	}
	return PriorityLevels
}

// firstAvailable walks the ring from i until a member is not excluded. The
// caller guarantees the level has an available member.
func (r *readyTable) firstAvailable(i index) index {
	for r.tcbs[i].excluded() {
		i = r.tcbs[i].nextPriority
	}
	return i
}

// check verifies ring lengths and counts against the pool.
func (r *readyTable) check() error {
	var seen [MaxThreads]bool
	for p := range r.levels {
		l := &r.levels[p]
		if l.total == 0 {
			if l.head != none || l.last != none || l.available != 0 {
				return fmt.Errorf("level %d: empty level with head=%d last=%d available=%d", p, l.head, l.last, l.available)
			}
			continue
		}
		if r.tcbs[l.last].nextPriority != l.head {
			return fmt.Errorf("level %d: last %d does not close the ring at head %d", p, l.last, l.head)
		}

		n, avail := 0, 0
		i := l.head
		for {
			t := &r.tcbs[i]
			if t.status != statusRunnable {
				return fmt.Errorf("level %d: free slot %d on ring", p, i)
			}
			if int(t.priority) != p {
				return fmt.Errorf("level %d: slot %d has priority %d", p, i, t.priority)
			}
			if seen[i] {
				return fmt.Errorf("level %d: slot %d linked twice", p, i)
			}
			seen[i] = true
			n++
			if !t.excluded() {
				avail++
			}
			i = t.nextPriority
			if i == l.head {
				break
			}
			if n > MaxThreads {
				return fmt.Errorf("level %d: ring does not close", p)
			}
		}
		if n != l.total {
			return fmt.Errorf("level %d: ring length %d, total %d", p, n, l.total)
		}
		if avail != l.available {
			return fmt.Errorf("level %d: %d members available, count %d", p, avail, l.available)
		}
	}

	for i := range r.tcbs {
		if r.tcbs[i].status == statusRunnable && !seen[i] {
			return fmt.Errorf("slot %d is live but on no ring", i)
		}
	}
	return nil
}
