// Package monitor shows the kernel's thread table on the display.
package monitor

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	"ember/hal"
	"ember/internal/buildinfo"
	"ember/kernel"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	// DefaultPeriodTicks is the frame period in kernel sleep ticks.
	DefaultPeriodTicks = 500

	fontHeight = 10
	fontOffset = 6

	traceShown = 6
)

// Config configures a Monitor.
type Config struct {
	// PeriodTicks is the number of sleep ticks between frames.
	PeriodTicks uint32
	// Logger, when set, also receives each frame as log lines.
	Logger hal.Logger
	// LogEvery sends only every nth frame to Logger. 0 means every frame.
	LogEvery uint64
	// Extra appends application lines below the thread table.
	Extra func(w io.Writer)
}

// Monitor is a kernel thread that renders kernel state to a framebuffer.
// All of its methods run on the kernel's core.
type Monitor struct {
	k   *kernel.Kernel
	fb  hal.Framebuffer
	d   *Display
	cfg Config

	text   bytes.Buffer
	frames uint64
}

// New returns a monitor drawing to disp. A nil display only logs.
func New(k *kernel.Kernel, disp hal.Display, cfg Config) *Monitor {
	if cfg.PeriodTicks == 0 {
		cfg.PeriodTicks = DefaultPeriodTicks
	}
	m := &Monitor{k: k, cfg: cfg}
	if disp != nil {
		m.fb = disp.Framebuffer()
	}
	m.d = NewDisplay(m.fb)
	return m
}

// Run renders a frame every period.
func (m *Monitor) Run() {
	for {
		m.Render()
		m.k.Sleep(m.cfg.PeriodTicks)
	}
}

// Frames returns the number of frames rendered.
func (m *Monitor) Frames() uint64 { return m.frames }

// Text returns the text of the last frame.
func (m *Monitor) Text() string { return m.text.String() }

// Render draws one frame from the current kernel state.
func (m *Monitor) Render() {
	m.text.Reset()
	m.writeFrame(&m.text)
	m.frames++

	if m.fb != nil {
		m.draw(m.text.Bytes())
	}
	if m.cfg.Logger != nil && (m.cfg.LogEvery <= 1 || m.frames%m.cfg.LogEvery == 1) {
		sc := bufio.NewScanner(bytes.NewReader(m.text.Bytes()))
		for sc.Scan() {
			m.cfg.Logger.WriteLineString(sc.Text())
		}
	}
}

func (m *Monitor) draw(text []byte) {
	m.fb.ClearRGB(0, 0, 0)
	t := tinyterm.NewTerminal(m.d)
	t.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: fontHeight,
		FontOffset: fontOffset,
	})

	rows := m.fb.Height()/fontHeight - 1
	for _, line := range bytes.SplitAfter(text, []byte("\n")) {
		if rows <= 0 {
			break
		}
		_, _ = t.Write(line)
		rows--
	}
	if err := m.d.Display(); err != nil && m.cfg.Logger != nil {
		m.cfg.Logger.WriteLineString("monitor: present: " + err.Error())
	}
}

func (m *Monitor) writeFrame(w io.Writer) {
	up := m.k.Uptime().Truncate(time.Millisecond)
	fmt.Fprintf(w, "ember %s  up %v  switches %d\n", buildinfo.Short(), up, m.k.Switches())
	fmt.Fprintf(w, "%-2s %-10s %3s %-8s %s\n", "ID", "NAME", "PRI", "STATE", "SLEEP")
	for _, t := range m.k.Threads() {
		fmt.Fprintf(w, "%2d %-10.10s %3d %-8s %d\n", t.ID, t.Name, t.Priority, t.State, t.SleepTicks)
	}

	fmt.Fprint(w, "levels")
	for p, l := range m.k.Levels() {
		if l.Total == 0 {
			continue
		}
		fmt.Fprintf(w, " %d:%d/%d", p, l.Available, l.Total)
	}
	fmt.Fprintln(w)

	if m.cfg.Extra != nil {
		m.cfg.Extra(w)
	}

	tr := m.k.Trace()
	if len(tr) > traceShown {
		tr = tr[len(tr)-traceShown:]
	}
	if len(tr) > 0 {
		fmt.Fprint(w, "last")
		for _, s := range tr {
			fmt.Fprintf(w, " %d>%d", s.From, s.To)
		}
		fmt.Fprintln(w)
	}
}
