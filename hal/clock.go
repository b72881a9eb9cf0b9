package hal

import (
	"sync"
	"time"
)

type realClock struct {
	start time.Time
}

// NewRealClock returns a clock backed by the runtime's timers.
func NewRealClock() Clock {
	return &realClock{start: time.Now()}
}

func (c *realClock) Now() time.Duration { return time.Since(c.start) }

func (c *realClock) Every(period time.Duration, fn func()) Ticker {
	t := &realTicker{
		period: period,
		t:      time.NewTicker(period),
		stop:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.t.C:
				fn()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

type realTicker struct {
	period time.Duration
	t      *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *realTicker) Reset() { t.t.Reset(t.period) }

func (t *realTicker) Stop() {
	t.once.Do(func() {
		t.t.Stop()
		close(t.stop)
	})
}

// ManualClock is a clock that only moves when Advance is called.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Duration
	tickers []*manualTicker
}

// NewManualClock returns a stopped clock at time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (m *ManualClock) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualClock) Every(period time.Duration, fn func()) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{m: m, period: period, due: m.now + period, fn: fn}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance moves the clock forward by d and fires every ticker deadline that
// passes, in deadline order. Tickers due at the same instant fire in
// registration order.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		var next *manualTicker
		for _, t := range m.tickers {
			if t.stopped || t.due > target {
				continue
			}
			if next == nil || t.due < next.due {
				next = t
			}
		}
		if next == nil {
			break
		}
		m.now = next.due
		next.due += next.period
		fn := next.fn

		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

type manualTicker struct {
	m       *ManualClock
	period  time.Duration
	due     time.Duration
	fn      func()
	stopped bool
}

func (t *manualTicker) Reset() {
	t.m.mu.Lock()
	t.due = t.m.now + t.period
	t.m.mu.Unlock()
}

func (t *manualTicker) Stop() {
	t.m.mu.Lock()
	t.stopped = true
	t.m.mu.Unlock()
}
