package hal

import (
	"errors"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
	Toggle()
	IsHigh() bool
}

// LEDColor selects one of the board's status LEDs.
type LEDColor uint8

const (
	LEDRed LEDColor = iota
	LEDGreen
	LEDBlue

	NumLEDs = 3
)

func (c LEDColor) String() string {
	switch c {
	case LEDRed:
		return "red"
	case LEDGreen:
		return "green"
	case LEDBlue:
		return "blue"
	default:
		return "unknown"
	}
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
//
// Buffer returns the back buffer; Present publishes it.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Clock drives the periodic hardware timers.
//
// Now is the time elapsed since the clock was created.
type Clock interface {
	Now() time.Duration
	Every(period time.Duration, fn func()) Ticker
}

// Ticker is one running periodic timer.
type Ticker interface {
	// Reset restarts the current period from now.
	Reset()
	Stop()
}

// HAL provides the only contact point between the kernel and the board.
type HAL interface {
	Logger() Logger
	LED(c LEDColor) LED
	Display() Display
	Clock() Clock
}
