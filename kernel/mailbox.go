package kernel

// Mailbox passes one word at a time from a sender to a receiver. Send blocks
// while a previous message is unread; Recv blocks until a message arrives.
// Concurrent senders must be serialized by the caller.
type Mailbox struct {
	data  uint32
	empty Semaphore
	full  Semaphore
}

// NewMailbox returns an empty mailbox.
func NewMailbox(k *Kernel) *Mailbox {
	m := &Mailbox{}
	k.InitSemaphore(&m.empty, 1)
	k.InitSemaphore(&m.full, 0)
	return m
}

// Send stores v once the box is empty.
func (m *Mailbox) Send(v uint32) {
	m.empty.BWait()
	m.data = v
	m.full.BSignal()
}

// Recv waits for a message and takes it.
func (m *Mailbox) Recv() uint32 {
	m.full.BWait()
	v := m.data
	m.empty.BSignal()
	return v
}
