package kernel

// FIFO is a bounded queue of words. Put never blocks and may be called from
// interrupt handlers; Get blocks until data is available. Index updates run
// with interrupts masked, so any number of producers and consumers may share
// one FIFO.
type FIFO struct {
	k   *Kernel
	buf []uint32
	get int
	put int
	n   int

	// data counts stored words; negative while consumers wait.
	data Semaphore
}

// NewFIFO returns an empty FIFO holding up to capacity words. A capacity
// below 1 selects FIFOSize.
func NewFIFO(k *Kernel, capacity int) *FIFO {
	if capacity < 1 {
		capacity = FIFOSize
	}
	f := &FIFO{k: k, buf: make([]uint32, capacity)}
	k.InitSemaphore(&f.data, 0)
	return f
}

// Put appends v and reports whether there was room. A full FIFO is left
// unchanged.
func (f *FIFO) Put(v uint32) bool {
	cs := f.k.enter()
	defer cs.exit()
	if f.n == len(f.buf) {
		return false
	}
	f.buf[f.put] = v
	f.put = (f.put + 1) % len(f.buf)
	f.n++
	f.data.Signal()
	return true
}

// Get removes and returns the oldest word, blocking while the FIFO is empty.
func (f *FIFO) Get() uint32 {
	f.data.Wait()

	cs := f.k.enter()
	defer cs.exit()
	v := f.buf[f.get]
	f.get = (f.get + 1) % len(f.buf)
	f.n--
	return v
}

// Size returns the number of stored words.
func (f *FIFO) Size() int {
	cs := f.k.enter()
	defer cs.exit()
	return f.n
}

// Cap returns the capacity.
func (f *FIFO) Cap() int { return len(f.buf) }
