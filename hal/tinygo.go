//go:build tinygo && baremetal

package hal

import "machine"

type tinyGoHAL struct {
	logger *uartLogger
	leds   [NumLEDs]*pinLED
	fb     Framebuffer
	clock  Clock
}

// New returns a Pico (RP2040/RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// LEDs: red GP13, green on-board LED, blue GP15.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	h := &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		fb:     &stubFramebuffer{w: 320, h: 240, format: PixelFormatRGB565},
		clock:  NewRealClock(),
	}
	for i, pin := range [NumLEDs]machine.Pin{machine.GP13, machine.LED, machine.GP15} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		h.leds[i] = &pinLED{pin: pin}
	}
	return h
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Clock() Clock     { return h.clock }

func (h *tinyGoHAL) LED(c LEDColor) LED {
	if int(c) >= len(h.leds) {
		return nil
	}
	return h.leds[c]
}
