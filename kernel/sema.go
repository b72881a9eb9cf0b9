package kernel

// Semaphore is a counting semaphore. A negative value is the number of
// blocked waiters, which are woken in the order they blocked.
//
// Binary use goes through BWait and BSignal. The value is not clamped:
// signalling more often than waiting lets it drift above 1.
type Semaphore struct {
	k     *Kernel
	value int32
	head  index
	tail  index
}

// NewSemaphore returns a semaphore with the given initial value.
func NewSemaphore(k *Kernel, value int32) *Semaphore {
	s := &Semaphore{}
	k.InitSemaphore(s, value)
	return s
}

// InitSemaphore sets s to value with no waiters.
func (k *Kernel) InitSemaphore(s *Semaphore, value int32) {
	cs := k.enter()
	defer cs.exit()
	s.k = k
	s.value = value
	s.head = none
	s.tail = none
}

// Value returns the current count.
func (s *Semaphore) Value() int32 {
	cs := s.k.enter()
	defer cs.exit()
	return s.value
}

// Wait decrements the count and blocks the running thread while it is
// negative.
func (s *Semaphore) Wait() {
	k := s.k
	cs := k.enter()
	defer cs.exit()
	s.value--
	if s.value < 0 {
		k.block(s)
	}
}

// Signal increments the count and wakes the oldest waiter, if any. It does
// not yield; a woken thread runs from the next scheduler tick.
func (s *Semaphore) Signal() {
	k := s.k
	cs := k.enter()
	defer cs.exit()
	s.value++
	if s.value <= 0 {
		k.unblock(s)
	}
}

// BWait is Wait for binary use.
func (s *Semaphore) BWait() { s.Wait() }

// BSignal is Signal for binary use.
func (s *Semaphore) BSignal() { s.Signal() }

// SpinWait takes the semaphore without joining the blocked list: the thread
// keeps yielding until the count is positive.
func (s *Semaphore) SpinWait() {
	k := s.k
	for {
		cs := k.enter()
		if s.value > 0 {
			s.value--
			cs.exit()
			return
		}
		cs.exit()
		k.suspend()
	}
}

// SpinSignal releases a semaphore taken with SpinWait. It wakes a blocked
// waiter like Signal, so SpinWait and Wait callers may share s.
func (s *Semaphore) SpinSignal() { s.Signal() }

// block appends the running thread to s's waiters and pends a switch.
// Interrupts are masked; the switch happens when the caller unmasks.
func (k *Kernel) block(s *Semaphore) {
	i := k.run
	t := &k.tcbs[i]
	t.blockedOn = s
	t.nextBlocked = none
	k.ready.exclude(t.priority)

	if s.head == none {
		s.head = i
	} else {
		k.tcbs[s.tail].nextBlocked = i
	}
	s.tail = i
	k.suspend()
}

func (k *Kernel) unblock(s *Semaphore) {
	i := s.head
	t := &k.tcbs[i]
	s.head = t.nextBlocked
	if s.head == none {
		s.tail = none
	}
	t.nextBlocked = none
	t.blockedOn = nil
	if t.sleep == 0 {
		k.ready.include(t.priority)
	}
}

// waiters returns the blocked list in wake order.
func (s *Semaphore) waiters() []ThreadID {
	var ids []ThreadID
	for i := s.head; i != none; i = s.k.tcbs[i].nextBlocked {
		ids = append(ids, ThreadID(i))
	}
	return ids
}
