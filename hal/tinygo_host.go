//go:build tinygo && !baremetal

package hal

import (
	"fmt"
	"runtime"
)

type tinyGoHostHAL struct {
	logger *tinyGoHostLogger
	leds   [NumLEDs]*tinyGoHostLED
	fb     *tinyGoHostFramebuffer
	clock  Clock
}

// New returns a TinyGo-on-host HAL implementation.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU pin mapping.
// LED changes are printed.
func New() HAL {
	l := &tinyGoHostLogger{}
	h := &tinyGoHostHAL{
		logger: l,
		fb:     newTinyGoHostFramebuffer(320, 240),
		clock:  NewRealClock(),
	}
	for i := range h.leds {
		h.leds[i] = &tinyGoHostLED{color: LEDColor(i), logger: l}
	}
	return h
}

func (h *tinyGoHostHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHostHAL) Display() Display { return tinyGoHostDisplay{fb: h.fb} }
func (h *tinyGoHostHAL) Clock() Clock     { return h.clock }

func (h *tinyGoHostHAL) LED(c LEDColor) LED {
	if int(c) >= len(h.leds) {
		return nil
	}
	return h.leds[c]
}

type tinyGoHostDisplay struct {
	fb Framebuffer
}

func (d tinyGoHostDisplay) Framebuffer() Framebuffer { return d.fb }

type tinyGoHostLogger struct{}

func (l *tinyGoHostLogger) WriteLineString(s string) {
	println(s)
}

func (l *tinyGoHostLogger) WriteLineBytes(b []byte) {
	println(string(b))
}

type tinyGoHostLED struct {
	on     bool
	color  LEDColor
	logger *tinyGoHostLogger
}

func (l *tinyGoHostLED) set(on bool) {
	l.on = on
	state := "LOW"
	if on {
		state = "HIGH"
	}
	l.logger.WriteLineString(fmt.Sprintf("led %s: %s (tinygo/%s)", l.color, state, runtime.GOOS))
}

func (l *tinyGoHostLED) High()        { l.set(true) }
func (l *tinyGoHostLED) Low()         { l.set(false) }
func (l *tinyGoHostLED) Toggle()      { l.set(!l.on) }
func (l *tinyGoHostLED) IsHigh() bool { return l.on }
