// Package app wires the kernel to a board and runs the demo system.
package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"ember/app/monitor"
	"ember/hal"
	"ember/kernel"
)

// Thread priorities of the demo system.
const (
	prioConsumer = 1
	prioReporter = 2
	prioBlinker  = 3
	prioRed      = 4
	prioMonitor  = 6
	prioIdle     = kernel.PriorityLevels - 1

	// Interrupt priority of the producer.
	irqPrioProducer = 3
)

// Config configures the system.
type Config struct {
	Kernel kernel.Config

	// Demo starts the blinkers and the producer/consumer pipeline.
	Demo bool
	// ProducePeriod is the producer's period.
	ProducePeriod time.Duration
	// ReportEvery forwards every nth consumed value to the reporter.
	ReportEvery uint32

	// Monitor starts the status monitor.
	Monitor bool
	// MonitorTicks is the monitor's frame period in sleep ticks.
	MonitorTicks uint32
	// MonitorLogEvery logs every nth monitor frame. 0 disables logging.
	MonitorLogEvery uint64
}

// DefaultConfig returns the configuration of the stock demo.
func DefaultConfig() Config {
	return Config{
		Kernel:        kernel.Config{TimeSlice: kernel.DefaultTimeSlice},
		Demo:          true,
		ProducePeriod: 10 * time.Millisecond,
		ReportEvery:   10,
		Monitor:       true,
		MonitorTicks:  monitor.DefaultPeriodTicks,
	}
}

// Stats counts the pipeline's traffic. It is only touched on the core.
type Stats struct {
	Produced uint32
	Dropped  uint32
	Consumed uint32
	Reported uint32
	LastSent uint32
	RedFlips uint32
}

// System is a kernel plus the demo threads.
type System struct {
	h   hal.HAL
	k   *kernel.Kernel
	cfg Config

	red  *kernel.Semaphore
	data *kernel.FIFO
	mail *kernel.Mailbox
	mon  *monitor.Monitor

	stats Stats
}

// New builds the system on h. Threads are added but nothing runs until
// Launch or Start.
func New(h hal.HAL, cfg Config) (*System, error) {
	if h == nil {
		return nil, errors.New("app: nil HAL")
	}
	if cfg.Kernel.Logger == nil {
		cfg.Kernel.Logger = h.Logger()
	}
	if cfg.ProducePeriod <= 0 {
		cfg.ProducePeriod = 10 * time.Millisecond
	}
	if cfg.ReportEvery == 0 {
		cfg.ReportEvery = 10
	}

	core := hal.NewCore(h.Clock())
	k := kernel.New(core, cfg.Kernel)
	s := &System{h: h, k: k, cfg: cfg}
	installFaultHandler(h, k)

	if cfg.Demo {
		if err := s.addDemo(); err != nil {
			return nil, err
		}
	}
	if cfg.Monitor {
		s.mon = monitor.New(k, h.Display(), monitor.Config{
			PeriodTicks: cfg.MonitorTicks,
			Logger:      s.monitorLogger(),
			LogEvery:    cfg.MonitorLogEvery,
			Extra:       s.writeStats,
		})
		if err := s.add("monitor", s.mon, prioMonitor); err != nil {
			return nil, err
		}
	}
	if err := s.add("idle", kernel.TaskFunc(s.idle), prioIdle); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *System) monitorLogger() hal.Logger {
	if s.cfg.MonitorLogEvery == 0 {
		return nil
	}
	return s.h.Logger()
}

func (s *System) add(name string, task kernel.Task, priority uint8) error {
	if _, res := s.k.AddThreadResult(name, task, priority); res != kernel.AddOK {
		return fmt.Errorf("add thread %s: %s", name, res)
	}
	return nil
}

func (s *System) addDemo() error {
	s.red = kernel.NewSemaphore(s.k, 1)
	s.data = kernel.NewFIFO(s.k, kernel.FIFOSize)
	s.mail = kernel.NewMailbox(s.k)

	threads := []struct {
		name string
		task kernel.Task
		prio uint8
	}{
		{"consumer", kernel.TaskFunc(s.consume), prioConsumer},
		{"reporter", kernel.TaskFunc(s.report), prioReporter},
		{"green", blinker(s.k, s.h.LED(hal.LEDGreen), 250), prioBlinker},
		{"blue", blinker(s.k, s.h.LED(hal.LEDBlue), 100), prioBlinker},
		{"red", kernel.TaskFunc(s.flashRed), prioRed},
		{"red-spin", kernel.TaskFunc(s.flashRedSpin), prioRed},
	}
	for _, t := range threads {
		if err := s.add(t.name, t.task, t.prio); err != nil {
			return err
		}
	}
	if !s.k.AddPeriodicThread(kernel.TaskFunc(s.produce), s.cfg.ProducePeriod, irqPrioProducer) {
		return errors.New("add periodic thread producer: no slot")
	}
	return nil
}

// Kernel returns the system's kernel.
func (s *System) Kernel() *kernel.Kernel { return s.k }

// Monitor returns the status monitor, or nil when disabled.
func (s *System) Monitor() *monitor.Monitor { return s.mon }

// Stats returns a copy of the pipeline counters. Call it on the core.
func (s *System) Stats() Stats { return s.stats }

// Launch starts the kernel on the calling goroutine and never returns.
func (s *System) Launch() {
	s.h.Logger().WriteLineString("ember: launching")
	s.k.Launch()
}

// Start launches the kernel on its own goroutine.
func (s *System) Start() {
	go s.Launch()
}

// Boot builds and starts the system; it matches the host runners' boot hook.
func Boot(cfg Config) func(hal.HAL) error {
	return func(h hal.HAL) error {
		s, err := New(h, cfg)
		if err != nil {
			return err
		}
		s.Start()
		return nil
	}
}

// Run builds the system and launches it on the calling goroutine.
func Run(h hal.HAL, cfg Config) {
	s, err := New(h, cfg)
	if err != nil {
		h.Logger().WriteLineString("ember: " + err.Error())
		select {}
	}
	s.Launch()
}

func (s *System) idle() {
	for {
		s.k.WaitForInterrupt()
	}
}

// produce runs in interrupt context.
func (s *System) produce() {
	s.stats.Produced++
	if !s.data.Put(s.stats.Produced) {
		s.stats.Dropped++
	}
}

func (s *System) consume() {
	for {
		v := s.data.Get()
		s.stats.Consumed++
		if v%s.cfg.ReportEvery == 0 {
			s.mail.Send(v)
		}
	}
}

func (s *System) report() {
	for {
		v := s.mail.Recv()
		s.stats.Reported++
		s.stats.LastSent = v
	}
}

func blinker(k *kernel.Kernel, led hal.LED, ticks uint32) kernel.Task {
	return kernel.TaskFunc(func() {
		for {
			if led != nil {
				led.Toggle()
			}
			k.Sleep(ticks)
		}
	})
}

// flashRed and flashRedSpin share the red LED, one through the blocking
// semaphore calls and one through the spinning ones.
func (s *System) flashRed() {
	led := s.h.LED(hal.LEDRed)
	for {
		s.red.BWait()
		s.flip(led)
		s.red.BSignal()
		s.k.Sleep(50)
	}
}

func (s *System) flashRedSpin() {
	led := s.h.LED(hal.LEDRed)
	for {
		s.red.SpinWait()
		s.flip(led)
		s.red.SpinSignal()
		s.k.Sleep(70)
	}
}

func (s *System) flip(led hal.LED) {
	s.stats.RedFlips++
	if led != nil {
		led.Toggle()
	}
}

func (s *System) writeStats(w io.Writer) {
	if s.data == nil {
		return
	}
	st := s.stats
	fmt.Fprintf(w, "fifo %d/%d  produced %d  dropped %d\n", s.data.Size(), s.data.Cap(), st.Produced, st.Dropped)
	fmt.Fprintf(w, "consumed %d  mailed %d  last %d  red %d\n", st.Consumed, st.Reported, st.LastSent, st.RedFlips)
	fmt.Fprint(w, "leds")
	for c := hal.LEDRed; c < hal.NumLEDs; c++ {
		state := "-"
		if led := s.h.LED(c); led != nil && led.IsHigh() {
			state = "on"
		}
		fmt.Fprintf(w, " %s:%s", c, state)
	}
	fmt.Fprintln(w)
}
