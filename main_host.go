//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"ember/app"
	"ember/hal"
	"ember/internal/buildinfo"
)

func main() {
	cfg := app.DefaultConfig()
	var headless hal.HeadlessConfig
	var hostCfg hal.HostConfig
	var version bool

	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.DurationVar(&headless.Duration, "run", 0, "Stop after this long in headless mode (0 = run until interrupted).")
	flag.DurationVar(&cfg.Kernel.TimeSlice, "slice", cfg.Kernel.TimeSlice, "Scheduler time slice.")
	flag.StringVar(&hostCfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error).")
	flag.BoolVar(&cfg.Demo, "demo", cfg.Demo, "Start the demo threads.")
	flag.BoolVar(&version, "version", false, "Print the build and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String())
		return
	}

	if headless.Enabled {
		// Without a window the monitor frames go to the log once a second.
		cfg.MonitorLogEvery = 1000 / uint64(cfg.MonitorTicks)
		if cfg.MonitorLogEvery == 0 {
			cfg.MonitorLogEvery = 1
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if _, err := hal.RunHeadless(ctx, app.Boot(cfg), hostCfg, headless); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(app.Boot(cfg), hostCfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
