//go:build !tinygo

package hal

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// HostConfig configures the host HAL.
type HostConfig struct {
	// LogLevel is a logrus level name; empty means "info".
	LogLevel string
	// LogOutput defaults to stdout.
	LogOutput io.Writer
	// Clock defaults to the real-time clock.
	Clock Clock
}

type hostHAL struct {
	logger *hostLogger
	leds   [NumLEDs]*hostLED
	fb     *hostFramebuffer
	clock  Clock
}

// New returns a host HAL implementation with default settings.
func New() HAL {
	h, _ := NewHost(HostConfig{})
	return h
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) (HAL, error) {
	lvl := logrus.InfoLevel
	if cfg.LogLevel != "" {
		l, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		lvl = l
	}
	out := cfg.LogOutput
	if out == nil {
		out = os.Stdout
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewRealClock()
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		DisableQuote:     true,
		QuoteEmptyFields: true,
	})

	h := &hostHAL{
		logger: &hostLogger{e: log.WithField("component", "kernel")},
		fb:     newHostFramebuffer(320, 240),
		clock:  clock,
	}
	for i := range h.leds {
		h.leds[i] = &hostLED{}
	}
	return h, nil
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Clock() Clock     { return h.clock }

func (h *hostHAL) LED(c LEDColor) LED {
	if int(c) >= len(h.leds) {
		return nil
	}
	return h.leds[c]
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	e *logrus.Entry
}

func (l *hostLogger) WriteLineString(s string) { l.e.Info(s) }

func (l *hostLogger) WriteLineBytes(b []byte) { l.e.Info(string(b)) }

type hostLED struct {
	on atomic.Bool
}

func (l *hostLED) High()        { l.on.Store(true) }
func (l *hostLED) Low()         { l.on.Store(false) }
func (l *hostLED) IsHigh() bool { return l.on.Load() }

func (l *hostLED) Toggle() {
	for {
		v := l.on.Load()
		if l.on.CompareAndSwap(v, !v) {
			return
		}
	}
}
