// Command ktrace runs a kernel scenario on a simulated clock and prints the
// context switches it made.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ember/app"
	"ember/hal"
	"ember/kernel"
)

const callTimeout = 5 * time.Second

func main() {
	var (
		ms       = flag.Int("ms", 50, "Simulated milliseconds to run.")
		scenario = flag.String("scenario", "demo", "demo|rr.")
		slice    = flag.Duration("slice", kernel.DefaultTimeSlice, "Scheduler time slice.")
		verbose  = flag.Bool("v", false, "Write the kernel log to stderr.")
	)
	flag.Parse()

	if *ms <= 0 {
		fatalf("usage: ktrace [-scenario demo|rr] [-ms 50] [-slice 2ms] [-v]")
	}
	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	if err := run(os.Stdout, logOut, *scenario, *ms, *slice); err != nil {
		fatalf("ktrace: %v", err)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func run(w, logOut io.Writer, scenario string, ms int, slice time.Duration) error {
	clock := hal.NewManualClock()
	h, err := hal.NewHost(hal.HostConfig{LogOutput: logOut, LogLevel: "debug", Clock: clock})
	if err != nil {
		return err
	}
	kcfg := kernel.Config{TimeSlice: slice, Logger: h.Logger()}

	var k *kernel.Kernel
	switch strings.ToLower(scenario) {
	case "demo":
		cfg := app.DefaultConfig()
		cfg.Kernel = kcfg
		cfg.Monitor = false
		s, err := app.New(h, cfg)
		if err != nil {
			return err
		}
		k = s.Kernel()
		s.Start()
	case "rr":
		k = kernel.New(hal.NewCore(clock), kcfg)
		for _, name := range []string{"a", "b", "c"} {
			if _, res := k.AddThreadResult(name, kernel.TaskFunc(func() {
				for {
					k.WaitForInterrupt()
				}
			}), 2); res != kernel.AddOK {
				return fmt.Errorf("add %s: %s", name, res)
			}
		}
		go k.Launch()
	default:
		return fmt.Errorf("unknown scenario: %s", scenario)
	}

	if err := call(k, func() {}); err != nil {
		return err
	}
	for i := 0; i < ms; i++ {
		clock.Advance(time.Millisecond)
		if err := call(k, func() {}); err != nil {
			return err
		}
		if k.Faulted() {
			return fmt.Errorf("kernel faulted at %dms", i+1)
		}
	}

	var (
		trace    []kernel.Switch
		switches uint64
		threads  []kernel.ThreadInfo
		levels   [kernel.PriorityLevels]kernel.LevelInfo
	)
	if err := call(k, func() {
		trace = k.Trace()
		switches = k.Switches()
		threads = k.Threads()
		levels = k.Levels()
	}); err != nil {
		return err
	}

	names := make(map[kernel.ThreadID]string, len(threads))
	for _, t := range threads {
		names[t.ID] = t.Name
	}
	name := func(id kernel.ThreadID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return fmt.Sprintf("#%d", id)
	}

	fmt.Fprintf(w, "scenario %s: %dms, %d switches, showing last %d\n", scenario, ms, switches, len(trace))
	for _, sw := range trace {
		fmt.Fprintf(w, "%10v  %-10s -> %s\n", sw.At, name(sw.From), name(sw.To))
	}
	fmt.Fprintln(w, "threads:")
	for _, t := range threads {
		fmt.Fprintf(w, "  %2d %-10s p%d %s\n", t.ID, t.Name, t.Priority, t.State)
	}
	fmt.Fprint(w, "levels:")
	for p, l := range levels {
		if l.Total > 0 {
			fmt.Fprintf(w, " %d:%d/%d", p, l.Available, l.Total)
		}
	}
	fmt.Fprintln(w)
	return nil
}

// call runs fn on k's core, giving up if the core stops servicing calls.
func call(k *kernel.Kernel, fn func()) error {
	done := make(chan struct{})
	go func() {
		k.Core().Call(fn)
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(callTimeout):
		return fmt.Errorf("core did not answer within %v", callTimeout)
	}
}
