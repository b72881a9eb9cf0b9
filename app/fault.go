package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"ember/app/monitor"
	"ember/hal"
	"ember/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	faultFontHeight = 10
	faultFontOffset = 7
)

// installFaultHandler logs a kernel fault, lights every LED and paints the
// details on the display. The kernel halts afterwards.
func installFaultHandler(h hal.HAL, k *kernel.Kernel) {
	k.SetFaultHandler(func(f kernel.Fault) {
		lines := faultLines(f)
		if l := h.Logger(); l != nil {
			for _, line := range lines {
				l.WriteLineString(line)
			}
		}

		for c := hal.LEDRed; c < hal.NumLEDs; c++ {
			if led := h.LED(c); led != nil {
				led.High()
			}
		}

		disp := h.Display()
		if disp == nil {
			return
		}
		if fb := disp.Framebuffer(); fb != nil {
			drawFault(fb, lines)
		}
	})
}

func faultLines(f kernel.Fault) []string {
	lines := []string{
		"ember fault: " + f.Kind.String(),
		fmt.Sprintf("thread: %d", f.Thread),
	}
	if f.Value != nil {
		lines = append(lines, fmt.Sprintf("value: %v", f.Value))
	}
	if len(f.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(f.Stack), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
	}
	return lines
}

func drawFault(fb hal.Framebuffer, lines []string) {
	fb.ClearRGB(128, 0, 0)

	font := &proggy.TinySZ8pt7b
	_, outbox := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outbox)
	if fontWidth <= 0 {
		_ = fb.Present()
		return
	}

	d := monitor.NewDisplay(fb)
	fg := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	cols := int16(fb.Width()) / fontWidth
	maxH := int16(fb.Height())

	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 && y+faultFontHeight <= maxH {
			chunk, rest := takeRunes(line, cols)
			x := int16(0)
			for _, r := range chunk {
				tinyfont.DrawChar(d, font, x, y+faultFontOffset, r, fg)
				x += fontWidth
			}
			y += faultFontHeight
			line = strings.TrimLeft(rest, " ")
		}
		if y+faultFontHeight > maxH {
			break
		}
	}
	_ = fb.Present()
}

// takeRunes splits s after n runes.
func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 {
		return s, ""
	}
	i := 0
	for count := int16(0); i < len(s) && count < n; count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
